package store

import (
	"testing"

	"github.com/ssargent/utmptrace/pkg/codec"
	"github.com/stretchr/testify/assert"
)

func TestCheckSize(t *testing.T) {
	th := DefaultSizeThresholds()

	tests := []struct {
		name      string
		size      int64
		level     SizeLevel
		aligned   bool
		records   int64
		remainder int64
	}{
		{"empty", 0, SizeNormal, true, 0, 0},
		{"one record", codec.RecordSize, SizeNormal, true, 1, 0},
		{"partial", codec.RecordSize + 10, SizeNormal, false, 1, 10},
		{"at large threshold", codec.RecordSize * 500, SizeNormal, true, 500, 0},
		{"a bit large", codec.RecordSize * 501, SizeLarge, true, 501, 0},
		{"too large", codec.RecordSize*5000 + 1, SizeTooLarge, false, 5000, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := CheckSize(tt.size, th)
			assert.Equal(t, tt.level, a.Level)
			assert.Equal(t, tt.aligned, a.Aligned)
			assert.Equal(t, tt.records, a.Records)
			assert.Equal(t, tt.remainder, a.Remainder)
		})
	}
}

func TestCheckSize_DisabledThresholds(t *testing.T) {
	a := CheckSize(1<<40, SizeThresholds{})
	assert.Equal(t, SizeNormal, a.Level)
}
