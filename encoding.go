package userstyle

import (
	"encoding/binary"
	"unicode/utf16"
	"unicode/utf8"
)

const maxEncodedIDLength = 0xFFFF

// MarshalBinary writes the local persistence format: a 4-byte big-endian
// record count followed by (id, 4-byte big-endian length, option bytes)
// records in ascending id order. Ids use the 2-byte length prefixed modified
// UTF-8 form so existing blobs stay readable.
func (d UserStyleData) MarshalBinary() ([]byte, error) {
	keys := d.Keys()
	buf := make([]byte, 4, 4+len(keys)*16)
	binary.BigEndian.PutUint32(buf, uint32(len(keys)))
	for _, key := range keys {
		encoded := encodeModifiedUTF8(key)
		if len(encoded) > maxEncodedIDLength {
			return nil, newValidationError(ErrCodeInvalidID, key, "encoded setting id is %d bytes, max %d", len(encoded), maxEncodedIDLength)
		}
		buf = binary.BigEndian.AppendUint16(buf, uint16(len(encoded)))
		buf = append(buf, encoded...)
		value := d[key]
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(value)))
		buf = append(buf, value...)
	}
	return buf, nil
}

// UnmarshalBinary replaces d's contents with the decoded records.
func (d *UserStyleData) UnmarshalBinary(data []byte) error {
	decoded, err := DecodeUserStyleData(data)
	if err != nil {
		return err
	}
	*d = decoded
	return nil
}

// DecodeUserStyleData parses the binary form written by MarshalBinary.
func DecodeUserStyleData(data []byte) (UserStyleData, error) {
	r := byteReader{data: data}
	count, ok := r.u32()
	if !ok {
		return nil, malformed("record count truncated")
	}
	// Each record is at least 6 bytes, which bounds count before allocating.
	if uint64(count)*6 > uint64(r.remaining()) {
		return nil, malformed("record count %d exceeds payload", count)
	}
	out := make(UserStyleData, count)
	for i := uint32(0); i < count; i++ {
		idLen, ok := r.u16()
		if !ok {
			return nil, malformed("record %d id length truncated", i)
		}
		rawID, ok := r.bytes(int(idLen))
		if !ok {
			return nil, malformed("record %d id truncated", i)
		}
		id, ok := decodeModifiedUTF8(rawID)
		if !ok {
			return nil, malformed("record %d id is not valid modified UTF-8", i)
		}
		valueLen, ok := r.u32()
		if !ok {
			return nil, malformed("record %d length truncated", i)
		}
		if uint64(valueLen) > uint64(r.remaining()) {
			return nil, malformed("record %d value truncated", i)
		}
		value, _ := r.bytes(int(valueLen))
		out[id] = append([]byte(nil), value...)
	}
	if r.remaining() != 0 {
		return nil, malformed("%d trailing bytes", r.remaining())
	}
	return out, nil
}

// EncodeUserStyle writes style in the binary form.
func EncodeUserStyle(style *UserStyle) ([]byte, error) {
	return style.ToUserStyleData().MarshalBinary()
}

// DecodeUserStyle decodes the binary form and resolves it against schema.
func DecodeUserStyle(data []byte, schema *UserStyleSchema) (*UserStyle, error) {
	decoded, err := DecodeUserStyleData(data)
	if err != nil {
		return nil, err
	}
	return NewUserStyleFromData(decoded, schema), nil
}

func malformed(format string, args ...any) error {
	return newValidationError(ErrCodeMalformedData, "", format, args...)
}

type byteReader struct {
	data []byte
	pos  int
}

func (r *byteReader) remaining() int { return len(r.data) - r.pos }

func (r *byteReader) bytes(n int) ([]byte, bool) {
	if n < 0 || n > r.remaining() {
		return nil, false
	}
	out := r.data[r.pos : r.pos+n]
	r.pos += n
	return out, true
}

func (r *byteReader) u16() (uint16, bool) {
	b, ok := r.bytes(2)
	if !ok {
		return 0, false
	}
	return binary.BigEndian.Uint16(b), true
}

func (r *byteReader) u32() (uint32, bool) {
	b, ok := r.bytes(4)
	if !ok {
		return 0, false
	}
	return binary.BigEndian.Uint32(b), true
}

// encodeModifiedUTF8 encodes NUL as two bytes and supplementary characters as
// surrogate pairs of three bytes each.
func encodeModifiedUTF8(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		if r >= 0x10000 {
			hi, lo := utf16.EncodeRune(r)
			out = appendUnit(out, uint16(hi))
			out = appendUnit(out, uint16(lo))
			continue
		}
		out = appendUnit(out, uint16(r))
	}
	return out
}

func appendUnit(out []byte, c uint16) []byte {
	switch {
	case c != 0 && c < 0x80:
		return append(out, byte(c))
	case c < 0x800:
		return append(out, 0xC0|byte(c>>6), 0x80|byte(c&0x3F))
	default:
		return append(out, 0xE0|byte(c>>12), 0x80|byte((c>>6)&0x3F), 0x80|byte(c&0x3F))
	}
}

func decodeModifiedUTF8(b []byte) (string, bool) {
	units := make([]uint16, 0, len(b))
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c < 0x80:
			units = append(units, uint16(c))
			i++
		case c&0xE0 == 0xC0:
			if i+1 >= len(b) || b[i+1]&0xC0 != 0x80 {
				return "", false
			}
			units = append(units, uint16(c&0x1F)<<6|uint16(b[i+1]&0x3F))
			i += 2
		case c&0xF0 == 0xE0:
			if i+2 >= len(b) || b[i+1]&0xC0 != 0x80 || b[i+2]&0xC0 != 0x80 {
				return "", false
			}
			units = append(units, uint16(c&0x0F)<<12|uint16(b[i+1]&0x3F)<<6|uint16(b[i+2]&0x3F))
			i += 3
		default:
			return "", false
		}
	}
	s := string(utf16.Decode(units))
	return s, utf8.ValidString(s)
}
