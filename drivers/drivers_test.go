package drivers_test

import (
	"bytes"
	"testing"

	"github.com/clktmr/virt64/drivers"
	virt64testing "github.com/clktmr/virt64/testing"
)

func TestMain(m *testing.M) { virt64testing.TestMain(m) }

func TestSystemWriter(t *testing.T) {
	tests := []struct {
		in, out string
	}{
		{"", ""},
		{"abc", "abc"},
		{"\n", "\r\n"},
		{"panic: foo\n\ngoroutine 1\n", "panic: foo\r\n\r\ngoroutine 1\r\n"},
		{"no newline\nat end", "no newline\r\nat end"},
	}
	for _, tc := range tests {
		var buf bytes.Buffer
		w := drivers.NewSystemWriter(&buf)
		if n := w(2, []byte(tc.in)); n != len(tc.in) {
			t.Errorf("%q: wrote %d bytes", tc.in, n)
		}
		if buf.String() != tc.out {
			t.Errorf("%q: got %q, expected %q", tc.in, buf.String(), tc.out)
		}
	}
}
