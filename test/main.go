//go:build noos

// Command test runs the on-target tests on a QEMU virt machine:
//
//	virt64go run $(go env GOPATH)/bin/test
package main

import (
	"os"
	"reflect"
	"runtime"
	"syscall"
	"testing"

	_ "github.com/clktmr/virt64/machine"

	"github.com/clktmr/virt64/test/drivers/timer_test"
	"github.com/clktmr/virt64/test/drivers/uart_test"
	"github.com/clktmr/virt64/test/soc/plic_test"
)

func init() {
	var err error

	// The machine package mounted the console UART
	os.Stdout, err = os.OpenFile("/dev/console", syscall.O_WRONLY, 0)
	if err != nil {
		panic(err)
	}
	os.Stderr = os.Stdout
}

func main() {
	os.Args = append(os.Args, "-test.v")
	testing.Main(
		matchAll,
		[]testing.InternalTest{
			newInternalTest(plic_test.TestBootState),
			newInternalTest(plic_test.TestPriorityReadback),
			newInternalTest(uart_test.TestLoopbackAsync),
			newInternalTest(uart_test.TestBackpressure),
			newInternalTest(timer_test.TestSleep),
			newInternalTest(timer_test.TestTick1Hz),
			newInternalTest(timer_test.TestRuntimeClock),
		},
		nil, nil,
	)
}

func matchAll(_ string, _ string) (bool, error) { return true, nil }

func newInternalTest(testFn func(*testing.T)) testing.InternalTest {
	return testing.InternalTest{
		runtime.FuncForPC(reflect.ValueOf(testFn).Pointer()).Name(),
		testFn,
	}
}
