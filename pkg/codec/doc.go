// Package codec provides serialization and deserialization of utmp/wtmp/btmp
// session-accounting records.
//
// Each record occupies a fixed 384-byte slot on disk. Files carry no header and
// no byte-order marker: producer and consumer are assumed to share the host's
// native byte order, so every multi-byte field is read and written with
// binary.NativeEndian.
//
// # Record Format
//
//	Field         Offset  Size  Type
//	ut_type            0     4  int32
//	ut_pid             4     4  int32
//	ut_line            8    32  NUL-terminated text
//	ut_id             40     4  NUL-terminated text
//	ut_user           44    32  NUL-terminated text
//	ut_host           76   256  NUL-terminated text
//	ut_termination   332     2  int16
//	ut_exit          334     2  int16
//	ut_session       336     4  int32
//	ut_tv.tv_sec     340     4  uint32
//	ut_tv.tv_usec    344     4  uint32
//	ut_addr_v6       348    16  4 x uint32
//	reserved         364    20  opaque
//
// Fields are read at these literal offsets rather than through any struct
// layout, so the Go representation never influences the on-disk bytes.
//
// # Usage
//
//	c := codec.NewRecordCodec()
//
//	rec, err := c.Decode(block)
//	if errors.Is(err, codec.ErrInvalidRecordType) {
//	    // stop scanning this file
//	}
//
//	block = c.Encode(rec)
//
// # Error Handling
//
// Decode validates only the type tag; it must be in [0, 11]. Text and numeric
// fields accept any byte pattern. Encode never fails: text longer than its
// field is truncated and the 20 reserved bytes are always written as zero,
// which makes a decode/encode round trip lossy for the reserved area only.
//
// # Thread Safety
//
// RecordCodec holds no state and is safe for concurrent use.
package codec
