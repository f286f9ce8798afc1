package cbackend

import (
	"bytes"
	"testing"
)

func TestCString(t *testing.T) {
	tests := []struct {
		in   string
		want []byte
		ok   bool
	}{
		{"", []byte{0}, true},
		{"glClear", []byte("glClear\x00"), true},
		{"eglGetProcAddress", []byte("eglGetProcAddress\x00"), true},
		{"gl\x00Clear", nil, false},
		{"glClear\x00", nil, false},
	}
	for _, tt := range tests {
		got, ok := CString(tt.in)
		if ok != tt.ok {
			t.Errorf("CString(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			continue
		}
		if !bytes.Equal(got, tt.want) {
			t.Errorf("CString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
