package serial

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mattn/go-tty"
	"golang.org/x/term"
)

const usageString = `Connect the terminal to a board's serial port.

In raw mode every key is sent to the board, press Ctrl-] to quit.

Usage: %s [flags] <device>

`

// Escape ends a session in raw mode.
const Escape = 0x1d // Ctrl-]

var (
	flags = flag.NewFlagSet("serial", flag.ExitOnError)

	raw = flags.Bool("raw", false, "Put the terminal into raw mode")
)

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "serial")
	flags.PrintDefaults()
}

func Main(args []string) {
	flags.Usage = usage
	flags.Parse(args[1:])

	if flags.NArg() != 1 {
		flags.Usage()
		os.Exit(1)
	}

	if err := connect(flags.Arg(0), *raw); err != nil {
		log.Fatalln("serial:", err)
	}
}

func connect(device string, raw bool) error {
	port, err := tty.OpenDevice(device)
	if err != nil {
		return fmt.Errorf("open %s: %w", device, err)
	}
	defer port.Close()

	restore := port.MustRaw()
	defer restore()

	fd := int(os.Stdin.Fd())
	if raw && term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("raw mode: %w", err)
		}
		defer term.Restore(fd, state)
	}

	errc := make(chan error, 2)
	go func() {
		_, err := io.Copy(os.Stdout, port.Input())
		errc <- err
	}()
	go func() {
		var escape byte
		if raw {
			escape = Escape
		}
		errc <- Forward(port.Output(), os.Stdin, escape)
	}()

	if err := <-errc; err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Forward copies src to dst until src returns an error or the escape byte was
// read.  The escape byte isn't copied, a zero escape byte disables it.
// Returns nil on escape or end of file.
func Forward(dst io.Writer, src io.Reader, escape byte) error {
	buf := make([]byte, 256)
	for {
		n, err := src.Read(buf)
		p := buf[:n]
		quit := false
		if escape != 0 {
			for i, c := range p {
				if c == escape {
					p, quit = p[:i], true
					break
				}
			}
		}
		if len(p) > 0 {
			if _, werr := dst.Write(p); werr != nil {
				return werr
			}
		}
		if quit || errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
