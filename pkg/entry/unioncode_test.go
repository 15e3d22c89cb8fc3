package entry

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnionCode_KnownValues(t *testing.T) {
	assert.Equal(t, "0", UnionCode(0, 0))
	assert.Equal(t, "1", UnionCode(0, 1))
	assert.Equal(t, "A", UnionCode(0, 10))
	assert.Equal(t, "z", UnionCode(0, 61))
	assert.Equal(t, "10", UnionCode(0, 62))
	// 1 * (2^32 - 1) = 4294967295
	assert.Equal(t, encodeBase62(4294967295), UnionCode(1, 0))
	assert.Equal(t, "4gfFC3", UnionCode(1, 0))
}

func TestUnionCode_MaxInputFits(t *testing.T) {
	code := UnionCode(^uint32(0), ^uint32(0))
	assert.NotEmpty(t, code)
	assert.LessOrEqual(t, len(code), 11)
	assert.False(t, strings.HasPrefix(code, "0"))
}

func TestUnionCode_NoCollisions(t *testing.T) {
	seen := make(map[string][2]uint32)
	secs := []uint32{0, 1, 2, 1646638312, 1660277141, ^uint32(0) - 1, ^uint32(0)}
	usecs := []uint32{0, 1, 999999, 1000000, ^uint32(0) - 1}

	for _, s := range secs {
		for _, u := range usecs {
			code := UnionCode(s, u)
			if prev, dup := seen[code]; dup {
				t.Fatalf("collision: %v and %v both encode to %q", prev, [2]uint32{s, u}, code)
			}
			seen[code] = [2]uint32{s, u}
		}
	}
}

func TestEncodeBase62_Alphabet(t *testing.T) {
	assert.Len(t, base62Alphabet, 62)
	for i := 0; i < 62; i++ {
		assert.Equal(t, string(base62Alphabet[i]), encodeBase62(uint64(i)))
	}
	assert.Equal(t, "zz", encodeBase62(62*62-1))
	assert.Equal(t, "100", encodeBase62(62*62))
}
