package session

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestSnapshot_EncodeFormat(t *testing.T) {
	snap := Snapshot{
		Size:  3,
		Grid:  [][]int{{2, 0, 4}, {0, 0, 0}, {8, 16, 2}},
		Score: 36,
	}

	var buf bytes.Buffer
	if err := snap.Encode(&buf); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	want := "3\n2 0 4\n0 0 0\n8 16 2\n36\n"
	if buf.String() != want {
		t.Errorf("Encode() = %q, want %q", buf.String(), want)
	}

	decoded, err := DecodeSnapshot(&buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if decoded.Size != 3 || decoded.Score != 36 || decoded.Grid[2][1] != 16 {
		t.Errorf("Round trip mismatch: %+v", decoded)
	}
}

func TestDecodeSnapshot_Whitespace(t *testing.T) {
	snap, err := DecodeSnapshot(strings.NewReader("2   2 0\n\n 0    4\t12"))
	if err != nil {
		t.Fatalf("Expected whitespace-separated input to decode, got %v", err)
	}
	if snap.Grid[1][1] != 4 || snap.Score != 12 {
		t.Errorf("Unexpected snapshot: %+v", snap)
	}
}

func TestDecodeSnapshot_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"non-integer size", "four\n"},
		{"size too small", "1\n2\n0\n"},
		{"huge size", "999999999\n2\n"},
		{"too few cells", "2\n2 0\n0\n"},
		{"missing score", "2\n2 0\n0 4\n"},
		{"non-integer cell", "2\n2 x\n0 4\n8\n"},
		{"non-integer score", "2\n2 0\n0 4\nlots\n"},
		{"trailing tokens", "2\n2 0\n0 4\n8\n9\n"},
		{"non power of two", "2\n2 3\n0 4\n8\n"},
		{"negative score", "2\n2 0\n0 4\n-8\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeSnapshot(strings.NewReader(tt.input))
			if !errors.Is(err, ErrLoad) {
				t.Errorf("Expected ErrLoad, got %v", err)
			}
		})
	}
}
