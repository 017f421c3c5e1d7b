// Package testing provides utilities for writing tests that run on the
// virt64 target as well as hosted.
package testing

import (
	"os"
	"testing"
)

// TestMain should be used as TestMain for virt64 tests.  On the target it
// redirects the test output to the console UART before running the tests.
func TestMain(m *testing.M) {
	setup()
	os.Exit(m.Run())
}
