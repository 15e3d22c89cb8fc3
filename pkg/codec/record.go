package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Record types as stored in the ut_type field.
const (
	Empty        int32 = 0 // no valid info (formerly UT_UNKNOWN)
	RunLevel     int32 = 1 // change in system run-level
	BootTime     int32 = 2 // time of system boot
	NewTime      int32 = 3 // time after system clock change
	OldTime      int32 = 4 // time before system clock change
	InitProcess  int32 = 5 // process spawned by init
	LoginProcess int32 = 6 // session leader process for user login
	UserProcess  int32 = 7 // normal process
	DeadProcess  int32 = 8 // terminated process
	Accounting   int32 = 9
	Signature    int32 = 10
	ShutdownTime int32 = 11

	MaxRecordType = ShutdownTime
)

// Field widths and the fixed record size.
const (
	LineSize     = 32
	IDSize       = 4
	NameSize     = 32
	HostSize     = 256
	AddrWords    = 4
	ReservedSize = 20
	RecordSize   = 384
)

// Byte offsets of each field inside a record.
const (
	offType        = 0
	offPID         = 4
	offLine        = 8
	offID          = offLine + LineSize    // 40
	offUser        = offID + IDSize        // 44
	offHost        = offUser + NameSize    // 76
	offTermination = offHost + HostSize    // 332
	offExit        = offTermination + 2    // 334
	offSession     = offExit + 2           // 336
	offTimeSec     = offSession + 4        // 340
	offTimeUsec    = offTimeSec + 4        // 344
	offAddr        = offTimeUsec + 4       // 348
	offReserved    = offAddr + 4*AddrWords // 364
)

var (
	// ErrInvalidRecordType is matched by every *FormatError.
	ErrInvalidRecordType = errors.New("invalid record type")
	// ErrShortBlock is returned when Decode is handed fewer than RecordSize bytes.
	ErrShortBlock = errors.New("block shorter than record size")
)

// FormatError reports a record whose type tag is outside [0, MaxRecordType].
type FormatError struct {
	Type int32
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("ut_type(%d) is invalid", e.Type)
}

// Is lets errors.Is(err, ErrInvalidRecordType) match any FormatError.
func (e *FormatError) Is(target error) bool {
	return target == ErrInvalidRecordType
}

// Record is one decoded session-accounting entry.
// Text fields hold the bytes up to the first NUL of their on-disk field.
type Record struct {
	Type        int32
	PID         int32
	Line        string
	ID          string
	User        string
	Host        string
	Termination int16
	Exit        int16
	Session     int32
	TimeSec     uint32
	TimeUsec    uint32
	Addr        [AddrWords]uint32
	Reserved    [ReservedSize]byte // kept on decode, always written as zero
}

// RecordCodec converts records to and from their fixed 384-byte layout.
// All multi-byte integers use the host's native byte order.
type RecordCodec struct{}

// NewRecordCodec creates a new record codec instance
func NewRecordCodec() *RecordCodec {
	return &RecordCodec{}
}

// Encode serializes a record into exactly RecordSize bytes.
// Text longer than its field is truncated; reserved bytes are zeroed.
func (c *RecordCodec) Encode(r *Record) []byte {
	buf := make([]byte, RecordSize)
	c.EncodeTo(buf, r)
	return buf
}

// EncodeTo writes r into buf, which must hold at least RecordSize bytes.
func (c *RecordCodec) EncodeTo(buf []byte, r *Record) {
	buf = buf[:RecordSize]
	clear(buf)

	ne := binary.NativeEndian
	ne.PutUint32(buf[offType:], uint32(r.Type))
	ne.PutUint32(buf[offPID:], uint32(r.PID))
	putText(buf[offLine:offID], r.Line)
	putText(buf[offID:offUser], r.ID)
	putText(buf[offUser:offHost], r.User)
	putText(buf[offHost:offTermination], r.Host)
	ne.PutUint16(buf[offTermination:], uint16(r.Termination))
	ne.PutUint16(buf[offExit:], uint16(r.Exit))
	ne.PutUint32(buf[offSession:], uint32(r.Session))
	ne.PutUint32(buf[offTimeSec:], r.TimeSec)
	ne.PutUint32(buf[offTimeUsec:], r.TimeUsec)
	for i, w := range r.Addr {
		ne.PutUint32(buf[offAddr+4*i:], w)
	}
}

// Decode parses the first RecordSize bytes of data.
// Only the type tag is validated; any other byte pattern is accepted.
func (c *RecordCodec) Decode(data []byte) (*Record, error) {
	if len(data) < RecordSize {
		return nil, fmt.Errorf("%w: %d < %d", ErrShortBlock, len(data), RecordSize)
	}

	ne := binary.NativeEndian
	r := &Record{}
	r.Type = int32(ne.Uint32(data[offType:]))
	if r.Type < Empty || r.Type > MaxRecordType {
		return nil, &FormatError{Type: r.Type}
	}

	r.PID = int32(ne.Uint32(data[offPID:]))
	r.Line = ExtractText(data[offLine:offID])
	r.ID = ExtractText(data[offID:offUser])
	r.User = ExtractText(data[offUser:offHost])
	r.Host = ExtractText(data[offHost:offTermination])
	r.Termination = int16(ne.Uint16(data[offTermination:]))
	r.Exit = int16(ne.Uint16(data[offExit:]))
	r.Session = int32(ne.Uint32(data[offSession:]))
	r.TimeSec = ne.Uint32(data[offTimeSec:])
	r.TimeUsec = ne.Uint32(data[offTimeUsec:])
	for i := range r.Addr {
		r.Addr[i] = ne.Uint32(data[offAddr+4*i:])
	}
	copy(r.Reserved[:], data[offReserved:RecordSize])

	return r, nil
}

// AddrBytes returns the 16 address bytes exactly as they are laid out on disk.
func (r *Record) AddrBytes() [4 * AddrWords]byte {
	var b [4 * AddrWords]byte
	for i, w := range r.Addr {
		binary.NativeEndian.PutUint32(b[4*i:], w)
	}
	return b
}

// ExtractText returns the field contents up to the first NUL byte,
// or the whole field when it holds no NUL.
func ExtractText(field []byte) string {
	for i, c := range field {
		if c == 0 {
			return string(field[:i])
		}
	}
	return string(field)
}

// putText copies s into a zeroed field, truncating to the field width.
func putText(field []byte, s string) {
	copy(field, s)
}
