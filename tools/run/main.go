package run

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aymanbagabas/go-pty"
	"golang.org/x/term"
)

const usageString = `Run a kernel elf in an emulator.

The emulator's console is connected to the terminal.  If the kernel prints a
test result or panics the emulator is stopped, and the exit code reflects the
result.

Usage: %s [flags] <elffile>

`

var (
	flags = flag.NewFlagSet("run", flag.ExitOnError)

	boardFile = flags.String("board", "", "YAML file describing the emulator")
	emulator  = flags.String("emulator", "", "Emulator command, overrides the board file")
)

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "run")
	flags.PrintDefaults()
}

func Main(args []string) {
	flags.Usage = usage
	flags.Parse(args[1:])

	if flags.NArg() != 1 {
		flags.Usage()
		os.Exit(1)
	}

	board := DefaultBoard
	if *boardFile != "" {
		var err error
		board, err = LoadBoard(*boardFile)
		if err != nil {
			log.Fatalln("board:", err)
		}
	}
	if *emulator != "" {
		board.Emulator = *emulator
	}

	argv, err := board.Command(flags.Arg(0))
	if err != nil {
		log.Fatalln(err)
	}

	code, err := Run(argv, os.Stdin, os.Stdout)
	if err != nil {
		log.Fatalln("run:", err)
	}
	os.Exit(code)
}

// Run starts the emulator on a pseudo terminal and forwards its output to
// stdout.  Returns the exit code determined by the kernel's output or, if it
// didn't print a result, the emulator's exit code.
func Run(argv []string, stdin *os.File, stdout io.Writer) (int, error) {
	p, err := pty.New()
	if err != nil {
		return 0, fmt.Errorf("open pty: %w", err)
	}
	defer p.Close()

	cmd := p.Command(argv[0], argv[1:]...)
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("start emulator: %w", err)
	}

	fd := int(stdin.Fd())
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			kill(cmd)
			return 0, fmt.Errorf("raw mode: %w", err)
		}
		defer term.Restore(fd, state)
		if w, h, err := term.GetSize(fd); err == nil {
			p.Resize(w, h)
		}
	}
	go io.Copy(p, stdin)

	sigintr := make(chan os.Signal, 1)
	signal.Notify(sigintr, os.Interrupt)
	defer signal.Stop(sigintr)
	go func() {
		if _, ok := <-sigintr; ok {
			p.Close()
			if err := kill(cmd); err != nil {
				log.Println(err)
			}
		}
	}()

	result := Monitor(p, stdout, func() {
		// give panic() time to print the stacktrace
		time.Sleep(500 * time.Millisecond)
		if err := kill(cmd); err != nil {
			log.Println(err)
		}
	})

	err = cmd.Wait()
	switch result {
	case Pass:
		return 0, nil
	case Fail:
		return 1, nil
	}
	var exit *exec.ExitError
	if errors.As(err, &exit) {
		return exit.ExitCode(), nil
	}
	return 0, err
}

// Result is the outcome of a kernel run as reported by its output.
type Result int

const (
	None Result = iota
	Pass
	Fail
)

// Monitor copies the kernel's output from r to w and watches it for a test
// result or a panic.  When the first one is found, stop is called in a new
// goroutine.  Returns after r was closed or returned an error.
func Monitor(r io.Reader, w io.Writer, stop func()) Result {
	result := None
	scanner := bufio.NewScanner(io.TeeReader(r, w))
	for scanner.Scan() {
		if result != None {
			continue
		}
		line := strings.TrimRight(scanner.Text(), "\r")
		switch {
		case strings.HasPrefix(line, "fatal error:"), strings.HasPrefix(line, "panic:"):
			fallthrough
		case line == "FAIL":
			result = Fail
		case line == "PASS":
			result = Pass
		default:
			continue
		}
		go stop()
	}
	// Reading from the pty fails with EIO after the emulator exited.
	if err := scanner.Err(); err != nil && !errors.Is(err, syscall.EIO) && !errors.Is(err, os.ErrClosed) {
		log.Println("read:", err)
	}
	return result
}
