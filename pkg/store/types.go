package store

import (
	"github.com/ssargent/utmptrace/pkg/codec"
)

// Block is one decoded record slot together with the bytes it came from.
type Block struct {
	Position int           // zero-based record index within the file
	Offset   int64         // byte offset of Raw within the file
	Raw      []byte        // exactly codec.RecordSize bytes, shares the loaded buffer
	Record   *codec.Record // decoded view of Raw
}

// LogReaderConfig holds configuration for the log reader
type LogReaderConfig struct {
	FilePath string // Path to the record file
}

// LogWriterConfig holds configuration for the log writer
type LogWriterConfig struct {
	FilePath   string // Path to the record file being replaced
	InPlace    bool   // Truncate and overwrite instead of temp file + rename
	BufferSize int    // Write buffer size
}

// RecordIterator provides streaming access to decoded blocks
type RecordIterator interface {
	Next() bool
	Block() Block
	Err() error
	Consumed() int
}

// Errors
var (
	ErrNotRegular = &StoreError{"target is not a regular file"}
	ErrEmptyPath  = &StoreError{"file path is empty"}
)

// StoreError represents a record file error
type StoreError struct {
	Message string
}

func (e *StoreError) Error() string {
	return e.Message
}
