// Package storage keeps a copy of every record block removed from a file,
// so a rewrite can be inspected or undone later.
package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/klauspost/compress/zstd"
	"github.com/segmentio/ksuid"
)

// ErrNotFound is returned when an archive id is unknown
var ErrNotFound = errors.New("archived block not found")

// ArchivedBlock is one removed record slot
type ArchivedBlock struct {
	ID        ksuid.KSUID
	Source    string    // file the block was removed from
	Position  int       // record index in the source before the rewrite
	RemovedAt time.Time // UTC
	Raw       []byte    // original bytes, unmodified
}

// RemovedBlock is a block handed to PutBatch
type RemovedBlock struct {
	Position int
	Raw      []byte
}

// Archive is a pebble database of removed blocks keyed by KSUID, so
// iteration order follows removal order. Values are zstd compressed.
type Archive struct {
	db  *pebble.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
	now func() time.Time
}

// OpenArchive opens or creates the archive in dir
func OpenArchive(dir string) (*Archive, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open archive: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		db.Close()
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		db.Close()
		return nil, err
	}

	return &Archive{db: db, enc: enc, dec: dec, now: time.Now}, nil
}

// PutBatch stores the blocks removed from source in one synced batch and
// returns their ids in the same order.
func (a *Archive) PutBatch(source string, blocks []RemovedBlock) ([]ksuid.KSUID, error) {
	if len(blocks) == 0 {
		return nil, nil
	}

	removedAt := a.now().UTC()
	id, err := ksuid.NewRandomWithTime(removedAt)
	if err != nil {
		return nil, err
	}

	batch := a.db.NewBatch()
	defer batch.Close()

	ids := make([]ksuid.KSUID, 0, len(blocks))
	for _, b := range blocks {
		value := a.enc.EncodeAll(encodeValue(source, b.Position, removedAt, b.Raw), nil)
		if err := batch.Set(id.Bytes(), value, nil); err != nil {
			return nil, err
		}
		ids = append(ids, id)
		id = id.Next()
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return nil, fmt.Errorf("failed to commit archive batch: %w", err)
	}
	return ids, nil
}

// Get reads one archived block
func (a *Archive) Get(id ksuid.KSUID) (*ArchivedBlock, error) {
	data, closer, err := a.db.Get(id.Bytes())
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()

	return a.decode(id, data)
}

// List returns every archived block, oldest removal first
func (a *Archive) List() ([]ArchivedBlock, error) {
	iter, err := a.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var out []ArchivedBlock
	for iter.First(); iter.Valid(); iter.Next() {
		id, err := ksuid.FromBytes(iter.Key())
		if err != nil {
			return nil, fmt.Errorf("corrupt archive key: %w", err)
		}
		block, err := a.decode(id, iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, *block)
	}
	return out, iter.Error()
}

// Delete drops one archived block
func (a *Archive) Delete(id ksuid.KSUID) error {
	return a.db.Delete(id.Bytes(), pebble.Sync)
}

// Close releases the database and codecs
func (a *Archive) Close() error {
	a.dec.Close()
	encErr := a.enc.Close()
	if err := a.db.Close(); err != nil {
		return err
	}
	return encErr
}

func (a *Archive) decode(id ksuid.KSUID, value []byte) (*ArchivedBlock, error) {
	plain, err := a.dec.DecodeAll(value, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %s: %w", id, err)
	}
	block, err := decodeValue(plain)
	if err != nil {
		return nil, fmt.Errorf("archived block %s: %w", id, err)
	}
	block.ID = id
	return block, nil
}

// Value layout, little-endian:
// [SourceLen(2)][Source][Position(4)][RemovedAt unix nanos(8)][Raw]
const valueHeader = 2 + 4 + 8

func encodeValue(source string, position int, removedAt time.Time, raw []byte) []byte {
	buf := make([]byte, valueHeader+len(source)+len(raw))
	binary.LittleEndian.PutUint16(buf[0:], uint16(len(source)))
	n := 2 + copy(buf[2:], source)
	binary.LittleEndian.PutUint32(buf[n:], uint32(position))
	binary.LittleEndian.PutUint64(buf[n+4:], uint64(removedAt.UnixNano()))
	copy(buf[n+12:], raw)
	return buf
}

func decodeValue(data []byte) (*ArchivedBlock, error) {
	if len(data) < valueHeader {
		return nil, fmt.Errorf("value too short: %d bytes", len(data))
	}
	srcLen := int(binary.LittleEndian.Uint16(data[0:]))
	if len(data) < valueHeader+srcLen {
		return nil, fmt.Errorf("value too short for source of %d bytes", srcLen)
	}
	n := 2 + srcLen
	return &ArchivedBlock{
		Source:    string(data[2:n]),
		Position:  int(binary.LittleEndian.Uint32(data[n:])),
		RemovedAt: time.Unix(0, int64(binary.LittleEndian.Uint64(data[n+4:]))).UTC(),
		Raw:       append([]byte(nil), data[n+12:]...),
	}, nil
}
