//go:build fuzz
// +build fuzz

package codec

import (
	"bytes"
	"testing"
)

// FuzzRecordCodec_Decode checks that any 384-byte block either decodes or
// fails with a FormatError, and that a decoded block re-encodes to the same
// bytes everywhere except the reserved area and past text terminators.
func FuzzRecordCodec_Decode(f *testing.F) {
	codec := NewRecordCodec()

	f.Add(make([]byte, RecordSize))
	f.Add(codec.Encode(&Record{Type: UserProcess, User: "root", Host: "localhost"}))
	f.Add(bytes.Repeat([]byte{0xFF}, RecordSize))

	f.Fuzz(func(t *testing.T, data []byte) {
		if len(data) < RecordSize {
			t.Skip("Input shorter than one record")
		}

		rec, err := codec.Decode(data)
		if err != nil {
			if rec != nil {
				t.Fatalf("Decode returned both a record and an error: %v", err)
			}
			return
		}

		encoded := codec.Encode(rec)
		if len(encoded) != RecordSize {
			t.Fatalf("Encode produced %d bytes", len(encoded))
		}

		again, err := codec.Decode(encoded)
		if err != nil {
			t.Fatalf("re-decode failed: %v", err)
		}
		rec.Reserved = [ReservedSize]byte{}
		if *again != *rec {
			t.Errorf("round trip mismatch:\n got %+v\nwant %+v", again, rec)
		}
	})
}

// FuzzRecordCodec_RoundTrip tests encode/decode round-trip with random text fields
func FuzzRecordCodec_RoundTrip(f *testing.F) {
	codec := NewRecordCodec()

	f.Add(int32(7), int32(100), "pts/0", "opc", "example.org", uint32(1), uint32(2))
	f.Add(int32(0), int32(0), "", "", "", uint32(0), uint32(0))

	f.Fuzz(func(t *testing.T, typ, pid int32, line, user, host string, sec, usec uint32) {
		if typ < Empty || typ > MaxRecordType {
			t.Skip("Type outside the valid range")
		}
		if len(line) > LineSize || len(user) > NameSize || len(host) > HostSize {
			t.Skip("Text larger than its field")
		}
		if bytes.IndexByte([]byte(line+user+host), 0) >= 0 {
			t.Skip("Text contains NUL")
		}

		rec := &Record{Type: typ, PID: pid, Line: line, User: user, Host: host, TimeSec: sec, TimeUsec: usec}
		decoded, err := codec.Decode(codec.Encode(rec))
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		if *decoded != *rec {
			t.Errorf("round trip mismatch:\n got %+v\nwant %+v", decoded, rec)
		}
	})
}
