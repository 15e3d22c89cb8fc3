package store

import "github.com/ssargent/utmptrace/pkg/codec"

// SizeLevel classifies how large a record file is.
type SizeLevel int

const (
	SizeNormal SizeLevel = iota
	SizeLarge            // a bit large
	SizeTooLarge
)

// SizeThresholds are the byte sizes above which a file is reported as large.
type SizeThresholds struct {
	LargeBytes    int64
	TooLargeBytes int64
}

// DefaultSizeThresholds warns above 500 records and again above 5000.
func DefaultSizeThresholds() SizeThresholds {
	return SizeThresholds{
		LargeBytes:    codec.RecordSize * 500,
		TooLargeBytes: codec.RecordSize * 5000,
	}
}

// SizeAdvisory describes a file's size relative to the record layout.
type SizeAdvisory struct {
	Size      int64
	Level     SizeLevel
	Aligned   bool  // size is an exact multiple of codec.RecordSize
	Records   int64 // whole records the size can hold
	Remainder int64 // trailing bytes that do not form a record
}

// CheckSize reports size warnings. It never rejects a file.
func CheckSize(size int64, t SizeThresholds) SizeAdvisory {
	a := SizeAdvisory{
		Size:      size,
		Records:   size / codec.RecordSize,
		Remainder: size % codec.RecordSize,
	}
	a.Aligned = a.Remainder == 0

	switch {
	case t.TooLargeBytes > 0 && size > t.TooLargeBytes:
		a.Level = SizeTooLarge
	case t.LargeBytes > 0 && size > t.LargeBytes:
		a.Level = SizeLarge
	}
	return a
}
