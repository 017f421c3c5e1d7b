package run

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
)

func TestMonitor(t *testing.T) {
	tests := map[string]struct {
		output string
		result Result
	}{
		"empty":       {"", None},
		"pass":        {"=== RUN   TestSleep\r\n--- PASS: TestSleep\r\nPASS\r\n", Pass},
		"fail":        {"--- FAIL: TestBootState\nFAIL\n", Fail},
		"panic":       {"hello\npanic: uart: receive buffer overrun\n\ngoroutine 1\n", Fail},
		"fatal":       {"fatal error: out of memory\n", Fail},
		"first wins":  {"PASS\nFAIL\n", Pass},
		"no prefix":   {"xPASS\n  FAIL\nnot a panic: really\n", None},
		"no newline":  {"PASS", Pass},
		"interactive": {"> echo PASS\n", None},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var out bytes.Buffer
			var stopped atomic.Int32
			done := make(chan struct{}, 1)
			result := Monitor(strings.NewReader(tc.output), &out, func() {
				stopped.Add(1)
				done <- struct{}{}
			})
			if result != tc.result {
				t.Errorf("got %v, expected %v", result, tc.result)
			}
			if out.String() != tc.output {
				t.Errorf("output %q", out.String())
			}
			if tc.result != None {
				<-done
			}
			if n := stopped.Load(); (n == 1) != (tc.result != None) || n > 1 {
				t.Errorf("stopped %d times", n)
			}
		})
	}
}

func TestCommand(t *testing.T) {
	b := Board{
		Emulator: `qemu-system-riscv64 -name "virt 64"`,
		Machine:  "virt,aclint=on",
		Args:     []string{"-serial", "mon:stdio"},
	}
	argv, err := b.Command("kernel.elf")
	if err != nil {
		t.Fatal(err)
	}
	expected := []string{
		"qemu-system-riscv64", "-name", "virt 64",
		"-machine", "virt,aclint=on",
		"-serial", "mon:stdio",
		"-kernel", "kernel.elf",
	}
	if !reflect.DeepEqual(argv, expected) {
		t.Fatalf("got %q, expected %q", argv, expected)
	}

	b.Emulator = "  "
	if _, err := b.Command("kernel.elf"); err == nil {
		t.Fatal("empty emulator accepted")
	}
}

func TestLoadBoard(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	b, err := LoadBoard(write("mem.yaml", "memory: 1G\nargs: [-smp, 1]\n"))
	if err != nil {
		t.Fatal(err)
	}
	if b.Memory != "1G" || b.Emulator != DefaultBoard.Emulator || b.Machine != "virt" {
		t.Errorf("unexpected board %+v", b)
	}
	if !reflect.DeepEqual(b.Args, []string{"-smp", "1"}) {
		t.Errorf("args %q", b.Args)
	}

	b, err = LoadBoard(write("empty.yaml", ""))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(b, DefaultBoard) {
		t.Errorf("empty file: %+v", b)
	}

	if _, err := LoadBoard(write("typo.yaml", "memroy: 1G\n")); err == nil {
		t.Error("unknown key accepted")
	}
	if _, err := LoadBoard(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing file accepted")
	}
}
