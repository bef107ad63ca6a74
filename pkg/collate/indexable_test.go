package collate

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

// The ordering invariant of the codec: byte order over the
// encoded form equals collation order over the values.
func TestIndexableStringMatchesCollation(t *testing.T) {
	for _, a := range collationDomain {
		ea := ToIndexableString(a)
		for _, b := range collationDomain {
			eb := ToIndexableString(b)
			assert.Equal(t,
				sign(Collate(a, b)),
				sign(bytes.Compare(ea, eb)),
				"%v vs %v", a, b,
			)
		}
	}
}

func TestIndexableStringNormalizes(t *testing.T) {
	assert.Equal(t, ToIndexableString(nil), ToIndexableString(math.NaN()))
	assert.Equal(t, ToIndexableString(3.0), ToIndexableString(int64(3)))
	assert.Equal(t, ToIndexableString(0), ToIndexableString(math.Copysign(0, -1)))
}

func TestCompositeKeyOrdering(t *testing.T) {
	// primary by key, then doc id, then value, then emit index
	keys := [][]byte{
		CompositeKey("a", "doc1", 1, 0),
		CompositeKey("a", "doc1", 1, 1),
		CompositeKey("a", "doc1", 2, 0),
		CompositeKey("a", "doc2", 1, 0),
		CompositeKey("b", "doc1", 1, 0),
		CompositeKey([]interface{}{"b", 1}, "doc1", 1, 0),
	}

	for i := 0; i < len(keys)-1; i++ {
		assert.Equal(t, -1, bytes.Compare(keys[i], keys[i+1]),
			"key %d must sort before key %d", i, i+1)
	}
}

func TestScanBoundsEncloseKey(t *testing.T) {
	for _, key := range collationDomain {
		lower := LowerBound(key)
		upper := UpperBound(key)
		ck := CompositeKey(key, "doc", "value", 7)

		assert.Equal(t, -1, bytes.Compare(lower, ck), "lower bound of %v", key)
		assert.Equal(t, 1, bytes.Compare(upper, ck), "upper bound of %v", key)
	}
}

func TestScanBoundsExcludeNeighbors(t *testing.T) {
	// rows of a different key stay outside the bounds
	assert.Equal(t, 1, bytes.Compare(LowerBound("b"), CompositeKey("a", "doc", nil, 0)))
	assert.Equal(t, -1, bytes.Compare(UpperBound("a"), CompositeKey("b", "doc", nil, 0)))

	// a string key extending the bound key stays outside
	assert.Equal(t, 1, bytes.Compare(LowerBound("ab"), CompositeKey("a", "doc", nil, 0)))
	assert.Equal(t, -1, bytes.Compare(UpperBound("a"), CompositeKey("ab", "doc", nil, 0)))
}
