// Package extra implements the "extra data bag" carried across
// redirect-based login flows: an ordered mapping of string keys to nullable
// string values, serialized with the same length-prefixed binary shape as
// the envelope codec and protected under the "Extra" purpose so it survives
// a redirect hop without being readable or tamperable by the browser.
package extra

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

// Bag is an ordered string -> nullable-string mapping. Order is
// significant: it is preserved across Encode/Decode so the bag round-trips
// byte-for-byte regardless of insertion order at the call site.
type Bag struct {
	keys   []string
	values []*string
	index  map[string]int
}

// New returns an empty bag.
func New() *Bag {
	return &Bag{index: make(map[string]int)}
}

// Set assigns key to value, appending it if key is new and overwriting in
// place (preserving position) if key already exists.
func (b *Bag) Set(key string, value *string) {
	if b.index == nil {
		b.index = make(map[string]int)
	}
	if i, ok := b.index[key]; ok {
		b.values[i] = value
		return
	}
	b.index[key] = len(b.keys)
	b.keys = append(b.keys, key)
	b.values = append(b.values, value)
}

// SetString is a convenience wrapper for Set with a non-null value.
func (b *Bag) SetString(key, value string) {
	v := value
	b.Set(key, &v)
}

// Get returns the value for key and whether it was present. A present key
// with a null value returns (nil, true).
func (b *Bag) Get(key string) (*string, bool) {
	i, ok := b.index[key]
	if !ok {
		return nil, false
	}
	return b.values[i], true
}

// Len reports the number of keys in the bag.
func (b *Bag) Len() int {
	return len(b.keys)
}

// Keys returns the keys in insertion order. The returned slice must not be
// mutated by the caller.
func (b *Bag) Keys() []string {
	return b.keys
}

var (
	errTruncated = errors.New("extra: truncated bag")
	errTooLong   = errors.New("extra: entry too long")
)

const maxEntryLen = 1 << 20

// Encode serializes the bag as: uint16 entry count, then for each entry a
// length-prefixed key, a presence byte, and (if present) a length-prefixed
// value.
func (b *Bag) Encode() ([]byte, error) {
	if len(b.keys) > 1<<16-1 {
		return nil, errTooLong
	}
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.BigEndian, uint16(len(b.keys))); err != nil {
		return nil, err
	}
	for i, key := range b.keys {
		if err := writeString(&buf, key); err != nil {
			return nil, err
		}
		val := b.values[i]
		if val == nil {
			buf.WriteByte(0)
			continue
		}
		buf.WriteByte(1)
		if err := writeString(&buf, *val); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// Decode parses a bag previously produced by Encode.
func Decode(raw []byte) (*Bag, error) {
	r := bytes.NewReader(raw)
	var count uint16
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, errTruncated
	}

	b := New()
	for i := 0; i < int(count); i++ {
		key, err := readString(r)
		if err != nil {
			return nil, err
		}
		present, err := r.ReadByte()
		if err != nil {
			return nil, errTruncated
		}
		if present == 0 {
			b.Set(key, nil)
			continue
		}
		val, err := readString(r)
		if err != nil {
			return nil, err
		}
		b.Set(key, &val)
	}
	return b, nil
}

func writeString(buf *bytes.Buffer, s string) error {
	if len(s) > maxEntryLen {
		return errTooLong
	}
	if err := binary.Write(buf, binary.BigEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := buf.WriteString(s)
	return err
}

func readString(r *bytes.Reader) (string, error) {
	var n uint32
	if err := binary.Read(r, binary.BigEndian, &n); err != nil {
		return "", errTruncated
	}
	if n > maxEntryLen {
		return "", errTooLong
	}
	raw := make([]byte, n)
	if _, err := io.ReadFull(r, raw); err != nil {
		return "", errTruncated
	}
	return string(raw), nil
}
