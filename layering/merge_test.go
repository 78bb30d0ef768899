package layering

import (
	"reflect"
	"testing"
)

type styleData map[string][]byte

func TestMergeLayersStrongestWins(t *testing.T) {
	cases := []struct {
		name   string
		layers []styleData
		expect styleData
	}{
		{
			name:   "single layer is copied",
			layers: []styleData{{"color": []byte("red")}},
			expect: styleData{"color": []byte("red")},
		},
		{
			name: "stronger layer overrides",
			layers: []styleData{
				{"color": []byte("blue")},
				{"color": []byte("red"), "hands": []byte("sport")},
			},
			expect: styleData{"color": []byte("blue"), "hands": []byte("sport")},
		},
		{
			name: "nil value falls through",
			layers: []styleData{
				{"color": nil, "ticks": []byte{1}},
				{"color": []byte("red")},
			},
			expect: styleData{"color": []byte("red"), "ticks": []byte{1}},
		},
		{
			name: "empty value still overrides",
			layers: []styleData{
				{"color": []byte{}},
				{"color": []byte("red")},
			},
			expect: styleData{"color": []byte{}},
		},
		{
			name:   "nil layers are skipped",
			layers: []styleData{nil, {"color": []byte("red")}, nil},
			expect: styleData{"color": []byte("red")},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MergeLayers(tc.layers...)
			if !reflect.DeepEqual(tc.expect, got) {
				t.Errorf("merged snapshot mismatch:\nwant: %#v\n got: %#v", tc.expect, got)
			}
		})
	}
}

func TestMergeLayersZeroInput(t *testing.T) {
	if got := MergeLayers[styleData](); got != nil {
		t.Fatalf("expected nil merge, got %#v", got)
	}
}

func TestMergeLayersDetachesValues(t *testing.T) {
	source := styleData{"color": []byte("red")}
	merged := MergeLayers(source)
	merged["color"][0] = 'X'
	if string(source["color"]) != "red" {
		t.Fatalf("expected source untouched, got %q", source["color"])
	}
}

func TestLookupAndWinner(t *testing.T) {
	layers := []styleData{
		{"hands": []byte("sport")},
		{"color": nil},
		{"color": []byte("red"), "hands": []byte("classic")},
	}

	hits := Lookup("color", layers...)
	if len(hits) != 3 {
		t.Fatalf("expected one hit per layer, got %d", len(hits))
	}
	if hits[0].Found || hits[1].Found || !hits[2].Found {
		t.Fatalf("unexpected hits %+v", hits)
	}
	if string(hits[2].Value) != "red" {
		t.Fatalf("expected red, got %q", hits[2].Value)
	}

	if got := Winner("color", layers...); got != 2 {
		t.Fatalf("expected weakest layer to win color, got %d", got)
	}
	if got := Winner("hands", layers...); got != 0 {
		t.Fatalf("expected strongest layer to win hands, got %d", got)
	}
	if got := Winner("missing", layers...); got != -1 {
		t.Fatalf("expected -1 for missing key, got %d", got)
	}
}

func TestCloneDeepCopies(t *testing.T) {
	type nested struct {
		Tags  []string
		Attrs map[string]int
	}
	original := &nested{Tags: []string{"a"}, Attrs: map[string]int{"x": 1}}
	cloned := Clone(original)
	cloned.Tags[0] = "b"
	cloned.Attrs["x"] = 2
	if original.Tags[0] != "a" || original.Attrs["x"] != 1 {
		t.Fatalf("expected original untouched, got %+v", original)
	}

	var nilMap styleData
	if Clone(nilMap) != nil {
		t.Fatalf("expected nil clone for nil map")
	}
}
