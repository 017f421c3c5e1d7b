//go:build noos

package testing

import (
	"os"
	"syscall"

	_ "github.com/clktmr/virt64/machine" // mounts /dev/console
)

func setup() {
	var err error

	os.Stdout, err = os.OpenFile("/dev/console", syscall.O_WRONLY, 0)
	if err != nil {
		panic(err)
	}
	os.Stderr = os.Stdout

	// TODO find a way to pass these from the 'go test' command
	os.Args = append(os.Args, "-test.v")
	os.Args = append(os.Args, "-test.short")
}
