package sizeparse

import "testing"

func TestParse(t *testing.T) {
	cases := []struct {
		arg     string
		want    uint64
		wantErr bool
	}{
		{"0", 0, false},
		{"1024", 1024, false},
		{"1k", 1024, false},
		{"1K", 1024, false},
		{"2m", 2 * 1024 * 1024, false},
		{"3g", 3 * 1024 * 1024 * 1024, false},
		{"1t", 1 << 40, false},
		{"1e", 1 << 50, false},
		{"1p", 1 << 60, false},
		// The fractional part is parsed but never added to the result,
		// reproducing the original CLI's own unimplemented decimalPart.
		{"1.5k", 1024, false},
		{"", 0, true},
		{"k", 0, true},
		{"5q", 0, true},
		{"5kk", 0, true},
	}
	for _, c := range cases {
		got, err := Parse(c.arg)
		if c.wantErr {
			if err == nil {
				t.Errorf("Parse(%q) = %d, nil; want error", c.arg, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q) returned unexpected error: %v", c.arg, err)
			continue
		}
		if got != c.want {
			t.Errorf("Parse(%q) = %d, want %d", c.arg, got, c.want)
		}
	}
}

func TestIsStdoutPath(t *testing.T) {
	if !IsStdoutPath("-") {
		t.Error(`IsStdoutPath("-") = false, want true`)
	}
	if IsStdoutPath("out.bin") {
		t.Error(`IsStdoutPath("out.bin") = true, want false`)
	}
}
