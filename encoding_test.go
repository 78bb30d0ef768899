package userstyle

import (
	"bytes"
	"errors"
	"testing"
)

func TestMarshalBinaryLayout(t *testing.T) {
	data := UserStyleData{"b": {}, "a": {1}}
	got, err := data.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := []byte{
		0, 0, 0, 2,
		0, 1, 'a', 0, 0, 0, 1, 1,
		0, 1, 'b', 0, 0, 0, 0,
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("expected % x, got % x", want, got)
	}
}

func TestModifiedUTF8Keys(t *testing.T) {
	cases := []struct {
		key  string
		want []byte
	}{
		{"\x00", []byte{0xC0, 0x80}},
		{"é", []byte{0xC3, 0xA9}},
		{"\U0001F600", []byte{0xED, 0xA0, 0xBD, 0xED, 0xB8, 0x80}},
	}
	for _, tc := range cases {
		t.Run(tc.key, func(t *testing.T) {
			encoded := encodeModifiedUTF8(tc.key)
			if !bytes.Equal(encoded, tc.want) {
				t.Fatalf("expected % x, got % x", tc.want, encoded)
			}
			decoded, ok := decodeModifiedUTF8(encoded)
			if !ok || decoded != tc.key {
				t.Fatalf("expected %q back, got %q", tc.key, decoded)
			}

			blob, err := UserStyleData{tc.key: {7}}.MarshalBinary()
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var back UserStyleData
			if err := back.UnmarshalBinary(blob); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if !bytes.Equal(back[tc.key], []byte{7}) {
				t.Fatalf("expected value for %q, got %v", tc.key, back)
			}
		})
	}
}

func TestDecodeUserStyleDataRejectsMalformed(t *testing.T) {
	valid, err := UserStyleData{"color": []byte("red")}.MarshalBinary()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	cases := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short count", []byte{0, 0}},
		{"count exceeds payload", []byte{0, 0, 0, 9, 0, 0}},
		{"truncated value", valid[:len(valid)-1]},
		{"trailing bytes", append(append([]byte(nil), valid...), 0)},
		{"bad id bytes", []byte{0, 0, 0, 1, 0, 1, 0xFF, 0, 0, 0, 0}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeUserStyleData(tc.data)
			expectCode(t, err, ErrCodeMalformedData)
			if !errors.Is(err, ErrInvalidSchema) {
				t.Fatalf("expected malformed data to match ErrInvalidSchema, got %v", err)
			}
		})
	}
}

func TestDecodeUserStyleDataEmptyRecordSet(t *testing.T) {
	data, err := DecodeUserStyleData([]byte{0, 0, 0, 0})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(data) != 0 {
		t.Fatalf("expected no records, got %v", data)
	}
}

func TestEncodeUserStyleRoundTrip(t *testing.T) {
	f := newFaceFixture(t)
	custom := must(NewCustomValueSetting(LayerBase, []byte{1, 2, 3}))
	schema := must(NewUserStyleSchema([]Setting{f.color, f.ticks, f.hands, f.steps, custom}))

	style := NewUserStyleFromData(UserStyleData{
		"color":                      []byte("blue"),
		"hands":                      EncodeDouble(0.25),
		string(CustomValueSettingID): {0, 9, 0},
	}, schema)

	blob, err := EncodeUserStyle(style)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeUserStyle(blob, schema)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !decoded.Equal(style) {
		t.Fatalf("expected %s, got %s", style, decoded)
	}
	option, _ := decoded.Get(custom)
	if !bytes.Equal(option.Value().([]byte), []byte{0, 9, 0}) {
		t.Fatalf("expected custom payload preserved, got %v", option.Value())
	}
}
