// Package entry turns decoded records into display and match ready entries.
package entry

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"github.com/ssargent/utmptrace/pkg/codec"
)

var typeLabels = [...]string{
	"EMPTY",
	"RUN_LVL",
	"BOOT_TIME",
	"NEW_TIME",
	"OLD_TIME",
	"INIT_PROCESS",
	"LOGIN_PROCESS",
	"USER_PROCESS",
	"DEAD_PROCESS",
	"ACCOUNTING",
	"SIGNATURE",
	"SHUTDOWN_TIME",
}

// Entry is a read-only view of one record plus its derived values.
type Entry struct {
	TypeID      int32      `json:"type_id"`
	TypeLabel   string     `json:"type"`
	UnionCode   string     `json:"union_code"`
	PID         int32      `json:"pid"`
	Line        string     `json:"line"`
	TerminalID  string     `json:"terminal_id"`
	User        string     `json:"user"`
	Host        string     `json:"host"`
	Termination int16      `json:"termination"`
	Exit        int16      `json:"exit"`
	Session     int32      `json:"session"`
	Time        time.Time  `json:"time"`
	Addr        netip.Addr `json:"addr"`
}

// TypeLabel returns the name of a record type.
func TypeLabel(typ int32) (string, error) {
	if typ < 0 || int(typ) >= len(typeLabels) {
		return "", &codec.FormatError{Type: typ}
	}
	return typeLabels[typ], nil
}

// Classify derives an Entry from a decoded record.
// It fails only for a type tag Decode would already have rejected.
func Classify(r *codec.Record) (*Entry, error) {
	label, err := TypeLabel(r.Type)
	if err != nil {
		return nil, err
	}

	return &Entry{
		TypeID:      r.Type,
		TypeLabel:   label,
		UnionCode:   UnionCode(r.TimeSec, r.TimeUsec),
		PID:         r.PID,
		Line:        displayText(r.Line),
		TerminalID:  displayText(r.ID),
		User:        displayText(r.User),
		Host:        displayText(r.Host),
		Termination: r.Termination,
		Exit:        r.Exit,
		Session:     r.Session,
		Time:        Timestamp(r.TimeSec, r.TimeUsec),
		Addr:        DeriveAddress(r),
	}, nil
}

// TypeString renders the type the way the table shows it, e.g. " 7 - USER_PROCESS".
func (e *Entry) TypeString() string {
	return fmt.Sprintf("%2d - %s", e.TypeID, e.TypeLabel)
}

// AddrString is empty when the record carries no address.
func (e *Entry) AddrString() string {
	if !e.Addr.IsValid() {
		return ""
	}
	return e.Addr.String()
}

// Keys returns the values a match condition is compared against:
// pid, hostname, union code and, when present, the address.
func (e *Entry) Keys() []string {
	keys := []string{strconv.FormatInt(int64(e.PID), 10), e.Host, e.UnionCode}
	if e.Addr.IsValid() {
		keys = append(keys, e.Addr.String())
	}
	return keys
}

// Timestamp combines seconds and microseconds into a UTC time.
func Timestamp(sec, usec uint32) time.Time {
	return time.Unix(int64(sec), int64(usec)*int64(time.Microsecond)).UTC()
}

// DeriveAddress recovers the remote address. Any non-zero word among 1..3
// selects IPv6 over all 16 bytes; otherwise a non-zero word 0 is IPv4.
func DeriveAddress(r *codec.Record) netip.Addr {
	b := r.AddrBytes()
	switch {
	case r.Addr[1] != 0 || r.Addr[2] != 0 || r.Addr[3] != 0:
		return netip.AddrFrom16(b)
	case r.Addr[0] != 0:
		return netip.AddrFrom4([4]byte(b[:4]))
	default:
		return netip.Addr{}
	}
}

func displayText(s string) string {
	return strings.ToValidUTF8(s, "�")
}
