package store

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/ssargent/utmptrace/pkg/codec"
)

// LogReader loads a record file into one contiguous buffer.
type LogReader struct {
	config LogReaderConfig
	size   int64
	data   []byte
}

// NewLogReader creates a new log reader for the specified file
func NewLogReader(config LogReaderConfig) (*LogReader, error) {
	if config.FilePath == "" {
		return nil, ErrEmptyPath
	}

	info, err := os.Stat(config.FilePath)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%s: %w", config.FilePath, ErrNotRegular)
	}

	return &LogReader{
		config: config,
		size:   info.Size(),
	}, nil
}

// Size returns the file size observed when the reader was created
func (r *LogReader) Size() int64 {
	return r.size
}

// Path returns the file path
func (r *LogReader) Path() string {
	return r.config.FilePath
}

// Load reads the whole file into memory. Later calls return the same buffer.
func (r *LogReader) Load() ([]byte, error) {
	if r.data != nil {
		return r.data, nil
	}

	file, err := os.Open(r.config.FilePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", r.config.FilePath, err)
	}

	r.data = data
	r.size = int64(len(data))
	return data, nil
}

// Iterator returns a streaming iterator over the loaded records
func (r *LogReader) Iterator() (RecordIterator, error) {
	data, err := r.Load()
	if err != nil {
		return nil, err
	}
	return NewBlockIterator(data), nil
}

// DecodeAll splits buf into RecordSize chunks and decodes them in order.
// It stops at the first malformed record and returns everything decoded
// before it together with the error. A trailing partial chunk is never
// decoded. consumed is the number of bytes covered by the returned blocks.
func DecodeAll(buf []byte) (consumed int, blocks []Block, err error) {
	it := NewBlockIterator(buf)
	blocks = make([]Block, 0, len(buf)/codec.RecordSize)
	for it.Next() {
		blocks = append(blocks, it.Block())
	}
	return it.Consumed(), blocks, it.Err()
}

// BlockIterator walks a buffer one record at a time. It is finite and
// cannot be restarted.
type BlockIterator struct {
	buf      []byte
	codec    *codec.RecordCodec
	position int
	consumed int
	block    Block
	err      error
}

// NewBlockIterator creates an iterator over buf starting at offset 0
func NewBlockIterator(buf []byte) *BlockIterator {
	return &BlockIterator{
		buf:   buf,
		codec: codec.NewRecordCodec(),
	}
}

// Next decodes the next block. It returns false at the end of the buffer,
// before a trailing partial chunk, or after a decode failure.
func (it *BlockIterator) Next() bool {
	if it.err != nil || len(it.buf)-it.consumed < codec.RecordSize {
		return false
	}

	raw := it.buf[it.consumed : it.consumed+codec.RecordSize : it.consumed+codec.RecordSize]
	record, err := it.codec.Decode(raw)
	if err != nil {
		it.err = fmt.Errorf("record %d at offset %d: %w", it.position, it.consumed, err)
		return false
	}

	it.block = Block{
		Position: it.position,
		Offset:   int64(it.consumed),
		Raw:      raw,
		Record:   record,
	}
	it.position++
	it.consumed += codec.RecordSize
	return true
}

// Block returns the block decoded by the last successful Next
func (it *BlockIterator) Block() Block {
	return it.block
}

// Err returns the decode failure that stopped iteration, if any
func (it *BlockIterator) Err() error {
	return it.err
}

// Consumed returns the number of bytes covered by successfully decoded blocks
func (it *BlockIterator) Consumed() int {
	return it.consumed
}
