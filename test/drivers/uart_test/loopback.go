//go:build noos

package uart_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/clktmr/virt64/drivers/uart"
	"github.com/clktmr/virt64/machine"
)

func loopback(t *testing.T, com *uart.UART) {
	com.SetLoopback(true)
	t.Cleanup(func() { com.SetLoopback(false) })

	msg := []byte("The quick brown fox jumps over the lazy dog")
	for len(msg) > 0 {
		n := min(len(msg), uart.BufferSize/2)
		if _, err := com.Write(msg[:n]); err != nil {
			t.Fatal(err)
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(com, buf); err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(buf, msg[:n]) {
			t.Fatalf("got %q, expected %q", buf, msg[:n])
		}
		msg = msg[n:]
	}
}

func TestLoopbackAsync(t *testing.T) {
	loopback(t, machine.Default.Serial(machine.AsyncCOM))
}

func TestBackpressure(t *testing.T) {
	com := machine.Default.Serial(machine.AsyncCOM)
	com.SetLoopback(true)
	t.Cleanup(func() { com.SetLoopback(false) })

	// Overfill the receive ring, the last byte is dropped unless the reader
	// made room before it arrived.
	data := make([]byte, uart.BufferSize+1)
	for i := range data {
		data[i] = byte(i)
	}
	com.Write(data)
	for com.Buffered() < uart.BufferSize {
		// wait
	}

	buf := make([]byte, uart.BufferSize)
	if _, err := io.ReadFull(com, buf); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(buf, data[:uart.BufferSize]) {
		t.Fatalf("got %v, expected %v", buf, data[:uart.BufferSize])
	}

	machine.Default.Timer.Sleep(1)
	switch n := com.Buffered(); n {
	case 0:
	case 1:
		if c, _ := com.ReadByte(); c != data[uart.BufferSize] {
			t.Fatalf("got %#x after the full buffer", c)
		}
	default:
		t.Fatalf("%d bytes buffered after the full buffer", n)
	}
}
