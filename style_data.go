package userstyle

import (
	"bytes"
	"sort"
	"strings"
)

// UserStyleData is the compact wire form of a style: setting id to raw
// option id bytes. Unknown keys are tolerated when decoding against a schema.
type UserStyleData map[string][]byte

// Clone deep-copies the map and its byte slices.
func (d UserStyleData) Clone() UserStyleData {
	if d == nil {
		return nil
	}
	out := make(UserStyleData, len(d))
	for key, value := range d {
		out[key] = append([]byte(nil), value...)
	}
	return out
}

// Equal compares keys and bytes.
func (d UserStyleData) Equal(other UserStyleData) bool {
	if len(d) != len(other) {
		return false
	}
	for key, value := range d {
		theirs, ok := other[key]
		if !ok || !bytes.Equal(value, theirs) {
			return false
		}
	}
	return true
}

// Keys returns the setting ids in ascending order.
func (d UserStyleData) Keys() []string {
	keys := make([]string, 0, len(d))
	for key := range d {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func (d UserStyleData) String() string {
	var b strings.Builder
	b.WriteByte('{')
	for i, key := range d.Keys() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(OptionID(d[key]).String())
	}
	b.WriteByte('}')
	return b.String()
}
