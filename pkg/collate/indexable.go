package collate

import (
	"bytes"
	"encoding/binary"
	"math"
)

// Tag per type, ascending in collation order. The encoded form
// compares byte wise exactly like Collate compares the values:
//
//	sign(Collate(a, b)) == sign(bytes.Compare(enc(a), enc(b)))
//
// The byte layout is part of the on-disk contract of an index,
// changing it requires rebuilding all indices.
const (
	tagNull   = '1'
	tagFalse  = '2'
	tagTrue   = '3'
	tagNumber = '4'
	tagString = '5'
	tagArray  = '6'
	tagObject = '7'

	terminator = 0x00
	escape     = 0x01
)

// ToIndexableString encodes a JSON value to a byte string whose
// lexicographic order equals collation order. The value is
// normalized first.
func ToIndexableString(value interface{}) []byte {
	var buf bytes.Buffer
	encodeValue(&buf, NormalizeKey(value))
	return buf.Bytes()
}

func encodeValue(buf *bytes.Buffer, value interface{}) {
	switch v := value.(type) {
	case nil:
		buf.WriteByte(tagNull)
	case bool:
		if v {
			buf.WriteByte(tagTrue)
		} else {
			buf.WriteByte(tagFalse)
		}
	case float64:
		buf.WriteByte(tagNumber)
		encodeNumber(buf, v)
	case string:
		buf.WriteByte(tagString)
		encodeString(buf, v)
	case []interface{}:
		buf.WriteByte(tagArray)
		for _, item := range v {
			encodeValue(buf, item)
		}
		buf.WriteByte(terminator)
	case Object:
		buf.WriteByte(tagObject)
		for _, member := range v {
			encodeValue(buf, member.Key)
			encodeValue(buf, member.Value)
		}
		buf.WriteByte(terminator)
	default:
		panic("encode of non normalized value")
	}
}

// encodeNumber writes the IEEE-754 bits transformed so that the
// big endian byte order matches numeric order: non negative
// numbers get the sign bit flipped, negative numbers all bits.
// Fixed width, so embedded zero bytes cannot disturb ordering.
func encodeNumber(buf *bytes.Buffer, f float64) {
	b := math.Float64bits(f)
	if f >= 0 {
		b ^= 1 << 63
	} else {
		b = ^b
	}
	var enc [8]byte
	binary.BigEndian.PutUint64(enc[:], b)
	buf.Write(enc[:])
}

// encodeString writes the UTF-8 bytes with 0x00 and 0x01 byte
// stuffed behind 0x01, then the terminator. The stuffing keeps
// byte order intact while making the terminator unambiguous.
func encodeString(buf *bytes.Buffer, s string) {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case terminator:
			buf.WriteByte(escape)
			buf.WriteByte(0x01)
		case escape:
			buf.WriteByte(escape)
			buf.WriteByte(0x02)
		default:
			buf.WriteByte(s[i])
		}
	}
	buf.WriteByte(terminator)
}

// CompositeKey builds the store key of one emitted row. Ordering
// over the encoded form is primary by emitted key, then doc id,
// then emitted value, then the 0-based emit index, which also
// makes duplicate (key, value) emissions of one document unique.
func CompositeKey(key interface{}, docID string, value interface{}, emitIndex int) []byte {
	return ToIndexableString([]interface{}{key, docID, value, emitIndex})
}

// maxSentinel collates after any doc id (a string) and therefore
// after every composite key sharing the logical key prefix.
func maxSentinel() interface{} {
	return Object{}
}

// LowerBound returns a scan bound that collates before every
// composite key whose logical key is >= key.
func LowerBound(key interface{}) []byte {
	return ToIndexableString([]interface{}{key})
}

// UpperBound returns a scan bound that collates after every
// composite key whose logical key is <= key.
func UpperBound(key interface{}) []byte {
	return ToIndexableString([]interface{}{key, maxSentinel(), maxSentinel(), maxSentinel()})
}
