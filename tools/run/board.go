package run

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/buildkite/shellwords"
	"gopkg.in/yaml.v3"
)

// Board describes how to start the emulator.
//
//	emulator: qemu-system-riscv64 -nographic
//	machine: virt
//	memory: 256M
//	args: [-serial, mon:stdio, -serial, pty]
type Board struct {
	Emulator string   `yaml:"emulator"` // command line, split like a shell would
	Machine  string   `yaml:"machine"`
	Memory   string   `yaml:"memory"`
	Args     []string `yaml:"args"` // appended before the kernel
}

// DefaultBoard runs the kernel in machine mode without firmware.
var DefaultBoard = Board{
	Emulator: "qemu-system-riscv64 -nographic -bios none",
	Machine:  "virt",
	Memory:   "128M",
}

// LoadBoard reads a board file.  Keys missing in the file keep the values of
// [DefaultBoard].
func LoadBoard(path string) (Board, error) {
	b := DefaultBoard
	b.Args = nil

	f, err := os.Open(path)
	if err != nil {
		return b, err
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil && !errors.Is(err, io.EOF) {
		return b, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Command returns the emulator's argument vector for running kernel.
func (b *Board) Command(kernel string) ([]string, error) {
	argv, err := shellwords.Split(b.Emulator)
	if err != nil {
		return nil, fmt.Errorf("emulator: %w", err)
	}
	if len(argv) == 0 {
		return nil, errors.New("emulator: empty command")
	}
	if b.Machine != "" {
		argv = append(argv, "-machine", b.Machine)
	}
	if b.Memory != "" {
		argv = append(argv, "-m", b.Memory)
	}
	argv = append(argv, b.Args...)
	return append(argv, "-kernel", kernel), nil
}
