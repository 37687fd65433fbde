package object

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestSerializeDeserialize_RoundTrip(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		obj  Object
	}{
		{
			name: "integer",
			obj: Object{
				Key:      []byte("alpha"),
				Field:    NewInteger(-42),
				Metadata: Metadata{AccessTimes: 3, LastAccess: 1000},
			},
		},
		{
			name: "decimal",
			obj: Object{
				Key:      []byte("y"),
				Field:    NewDecimal(1.5),
				Metadata: Metadata{AccessTimes: 1, LastAccess: 2},
			},
		},
		{
			name: "string empty",
			obj: Object{
				Key:      []byte("k"),
				Field:    NewString([]byte{}),
				Metadata: Metadata{AccessTimes: 1, LastAccess: 0},
			},
		},
		{
			name: "string nonempty",
			obj: Object{
				Key:      []byte("name"),
				Field:    NewString([]byte("Alice")),
				Metadata: Metadata{AccessTimes: 7, LastAccess: 99999},
			},
		},
		{
			name: "max key length",
			obj: Object{
				Key:      bytes.Repeat([]byte{'z'}, maxKeyLen),
				Field:    NewInteger(0),
				Metadata: Metadata{AccessTimes: 1, LastAccess: 1},
			},
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			encoded, err := Serialize(&tc.obj)
			if err != nil {
				t.Fatalf("Serialize: %v", err)
			}

			decoded, err := Deserialize(encoded)
			if err != nil {
				t.Fatalf("Deserialize: %v", err)
			}

			if diff := cmp.Diff(tc.obj, decoded); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}

			reEncoded, err := Serialize(&decoded)
			if err != nil {
				t.Fatalf("re-Serialize: %v", err)
			}

			if !bytes.Equal(encoded, reEncoded) {
				t.Errorf("deserialize . serialize != identity:\n%x\n%x", encoded, reEncoded)
			}
		})
	}
}

func TestSerialize_KeyTooLong(t *testing.T) {
	t.Parallel()

	obj := Object{Key: bytes.Repeat([]byte{'a'}, maxKeyLen+1), Field: NewInteger(1)}

	if _, err := Serialize(&obj); err != ErrTypeOverflow {
		t.Fatalf("expected ErrTypeOverflow, got %v", err)
	}
}

func TestDeserialize_Truncated(t *testing.T) {
	t.Parallel()

	obj := Object{Key: []byte("k"), Field: NewString([]byte("hello"))}

	encoded, err := Serialize(&obj)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	for n := 0; n < len(encoded); n++ {
		if _, err := Deserialize(encoded[:n]); err != ErrEndOfStream {
			t.Errorf("truncated at %d bytes: expected ErrEndOfStream, got %v", n, err)
		}
	}
}

func TestDeserialize_UnsupportedTag(t *testing.T) {
	t.Parallel()

	obj := Object{Key: []byte("k"), Field: NewInteger(1)}

	encoded, err := Serialize(&obj)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}

	// Tag byte sits right after key_len(1) + key(1) + metadata(16).
	encoded[1+1+16] = 77

	if _, err := Deserialize(encoded); err != ErrUnsupportedType {
		t.Fatalf("expected ErrUnsupportedType, got %v", err)
	}
}

func TestSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		obj  Object
		want uint64
	}{
		{"integer", Object{Key: []byte("abc"), Field: NewInteger(1)}, 1 + 3 + 16 + 1 + 8},
		{"decimal", Object{Key: []byte("ab"), Field: NewDecimal(1)}, 1 + 2 + 16 + 1 + 8},
		{"string", Object{Key: []byte("a"), Field: NewString([]byte("hello"))}, 1 + 1 + 16 + 1 + 8 + 5},
		{"string empty", Object{Key: []byte("a"), Field: NewString(nil)}, 1 + 1 + 16 + 1 + 8},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			if got := Size(&tc.obj); got != tc.want {
				t.Errorf("Size() = %d, want %d", got, tc.want)
			}

			encoded, err := Serialize(&tc.obj)
			if err != nil {
				t.Fatalf("Serialize: %v", err)
			}

			if uint64(len(encoded)) != tc.want {
				t.Errorf("len(Serialize()) = %d, want Size() = %d", len(encoded), tc.want)
			}
		})
	}
}
