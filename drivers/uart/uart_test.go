//go:build !noos

package uart_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/clktmr/virt64/drivers/uart"
	"github.com/clktmr/virt64/soc"
	"github.com/clktmr/virt64/soc/hart"
	"github.com/clktmr/virt64/soc/plic"
	"github.com/clktmr/virt64/soc/sim"
	virt64testing "github.com/clktmr/virt64/testing"

	"github.com/sigurn/crc8"
)

func TestMain(m *testing.M) { virt64testing.TestMain(m) }

const irq = 10

// NS16550A interrupt enable bits
const (
	ierDataReady = 1 << 0
	ierTHREmpty  = 1 << 1
)

type fixture struct {
	platform   *sim.Platform
	hw         *sim.UART
	dispatcher *soc.Dispatcher
	uart       *uart.UART
}

func newAsync(t *testing.T) *fixture {
	t.Helper()
	p := sim.NewPlatform(irq)
	c := plic.New(p.PLIC)
	c.Init()
	d := soc.NewDispatcher(c)

	hart.EnableIRQ(hart.ExternalIRQ)
	t.Cleanup(func() { hart.DisableIRQ(hart.ExternalIRQ) })

	return &fixture{p, p.UART[0], d, uart.NewAsync(p.UART[0], irq, d)}
}

func (f *fixture) step() int {
	return f.platform.Step(func(cause hart.Cause) {
		if cause != hart.MachineExternal {
			panic("unexpected trap")
		}
		f.dispatcher.Handle()
	})
}

// isr invokes the interrupt handler directly, regardless of the interrupt
// line's state.
func (f *fixture) isr() {
	hart.Interrupt(func() { f.uart.HandleIRQ(irq) })
}

func waitFor(t *testing.T, done <-chan struct{}, what string) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("timeout waiting for %s", what)
	}
}

func TestInit(t *testing.T) {
	hw := sim.NewUART()
	u := uart.NewSync(hw)
	if u.Async() || u.IRQ() != plic.None {
		t.Fatal("sync port reports async mode")
	}
	if hw.Divisor() != 1 {
		t.Errorf("divisor %d", hw.Divisor())
	}
	if hw.LineControl() != 0x03 {
		t.Errorf("line control %#x, expected 8N1 with DLAB cleared", hw.LineControl())
	}
	if hw.InterruptEnable() != 0 {
		t.Errorf("interrupts enabled in sync mode: %#x", hw.InterruptEnable())
	}

	f := newAsync(t)
	if !f.uart.Async() || f.uart.IRQ() != irq {
		t.Fatal("async port reports sync mode")
	}
	if f.hw.InterruptEnable() != ierDataReady {
		t.Errorf("interrupt enable %#x", f.hw.InterruptEnable())
	}
	if f.dispatcher.Handler(irq) == nil || f.dispatcher.PLIC().SourcePriority(irq) == 0 {
		t.Error("interrupt not registered and enabled")
	}
	if f.hw.Invalid() != 0 {
		t.Errorf("%d invalid register accesses", f.hw.Invalid())
	}
}

func TestSync(t *testing.T) {
	hw := sim.NewUART()
	u := uart.NewSync(hw)

	if _, err := u.Write([]byte("hi\n")); err != nil {
		t.Fatal(err)
	}
	if got := hw.Transmitted(); string(got) != "hi\n" {
		t.Fatalf("transmitted %q", got)
	}

	if u.Buffered() != 0 {
		t.Fatal("data available before receive")
	}
	hw.Receive('x')
	if u.Buffered() != 1 {
		t.Fatal("received byte not available")
	}
	if c, _ := u.ReadByte(); c != 'x' {
		t.Fatalf("read %q", c)
	}
}

func TestWriteDrain(t *testing.T) {
	f := newAsync(t)

	done := make(chan struct{})
	go func() {
		f.uart.Write([]byte("abc"))
		close(done)
	}()
	waitFor(t, done, "write into empty buffer")

	if f.hw.InterruptEnable()&ierTHREmpty == 0 {
		t.Fatal("transmit interrupt not enabled")
	}
	if len(f.hw.Transmitted()) != 0 {
		t.Fatal("transmitted without interrupt")
	}

	for i := 1; i <= 3; i++ {
		f.isr()
		if got := f.hw.Transmitted(); len(got) != i {
			t.Fatalf("isr %d: transmitted %q", i, got)
		}
	}

	if got := f.hw.Transmitted(); string(got) != "abc" {
		t.Fatalf("transmitted %q", got)
	}
	if f.uart.Queued() != 0 {
		t.Fatalf("%d bytes left in buffer", f.uart.Queued())
	}
	if f.hw.InterruptEnable()&ierTHREmpty != 0 {
		t.Fatal("transmit interrupt still enabled")
	}
	if f.hw.InterruptEnable()&ierDataReady == 0 {
		t.Fatal("receive interrupt was disabled")
	}
}

func TestWriteDrainReleasesWriters(t *testing.T) {
	f := newAsync(t)
	fill := bytes.Repeat([]byte{'.'}, uart.BufferSize)
	f.uart.Write(fill)

	const writers = 2
	done := make(chan struct{}, writers)
	for i := range writers {
		go func() {
			f.uart.Write([]byte{'a' + byte(i), 'b' + byte(i), 'c' + byte(i)})
			done <- struct{}{}
		}()
	}

	select {
	case <-done:
		t.Fatal("write to full buffer didn't block")
	case <-time.After(50 * time.Millisecond):
	}

	total := uart.BufferSize + writers*3
	deadline := time.Now().Add(5 * time.Second)
	for len(f.hw.Transmitted()) < total {
		if time.Now().After(deadline) {
			t.Fatalf("transmitted %d of %d bytes", len(f.hw.Transmitted()), total)
		}
		f.isr()
	}
	for range writers {
		waitFor(t, done, "blocked writer")
	}

	if got := f.hw.Transmitted(); !bytes.Equal(got[:uart.BufferSize], fill) || len(got) != total {
		t.Fatalf("transmitted %q", got)
	}
	if f.uart.Queued() != 0 {
		t.Fatalf("%d bytes left in buffer", f.uart.Queued())
	}
	if f.hw.InterruptEnable()&ierTHREmpty != 0 {
		t.Fatal("transmit interrupt still enabled")
	}
}

func TestTransmitEmptyDisablesInterrupt(t *testing.T) {
	f := newAsync(t)
	f.uart.WriteByte('z')
	f.isr()
	f.uart.WriteByte('y')
	f.isr()

	// Spurious, there's nothing left to send.
	f.isr()
	if got := f.hw.Transmitted(); string(got) != "zy" {
		t.Fatalf("transmitted %q", got)
	}
	if f.hw.InterruptEnable()&ierTHREmpty != 0 {
		t.Fatal("transmit interrupt still enabled")
	}
	if n := f.step(); n != 0 {
		t.Fatalf("%d interrupts delivered with nothing to do", n)
	}
}

func TestWriteBlocksWhenFull(t *testing.T) {
	f := newAsync(t)
	data := make([]byte, uart.BufferSize+1)
	for i := range data {
		data[i] = byte('A' + i%26)
	}

	f.uart.Write(data[:uart.BufferSize])
	if f.uart.Queued() != uart.BufferSize {
		t.Fatalf("%d bytes queued", f.uart.Queued())
	}

	done := make(chan struct{})
	go func() {
		f.uart.WriteByte(data[uart.BufferSize])
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("write to full buffer didn't block")
	case <-time.After(50 * time.Millisecond):
	}

	f.isr()
	waitFor(t, done, "blocked writer")

	f.step()
	if got := f.hw.Transmitted(); !bytes.Equal(got, data) {
		t.Fatalf("transmitted %q", got)
	}
	if f.uart.Queued() != 0 {
		t.Fatalf("%d bytes left in buffer", f.uart.Queued())
	}
}

func TestRead(t *testing.T) {
	f := newAsync(t)

	var got byte
	done := make(chan struct{})
	go func() {
		got, _ = f.uart.ReadByte()
		close(done)
	}()

	f.hw.Receive('q')
	if n := f.step(); n != 1 {
		t.Fatalf("%d interrupts delivered", n)
	}
	waitFor(t, done, "reader")
	if got != 'q' {
		t.Fatalf("read %q", got)
	}
}

func TestReadBackpressure(t *testing.T) {
	f := newAsync(t)
	data := make([]byte, uart.BufferSize+1)
	for i := range data {
		data[i] = byte(i)
	}

	for _, c := range data {
		f.hw.Receive(c)
		f.step()
	}
	if f.uart.Buffered() != uart.BufferSize {
		t.Fatalf("%d bytes buffered", f.uart.Buffered())
	}
	if f.hw.InterruptEnable()&ierDataReady != 0 {
		t.Fatal("receive interrupt enabled with full buffer")
	}
	if f.hw.DataReady() {
		t.Fatal("byte received with full buffer wasn't read")
	}

	// The receive interrupt is disabled, the next byte waits in the
	// hardware without overrunning.
	const next = 0xa5
	f.hw.Receive(next)
	if n := f.step(); n != 0 {
		t.Fatalf("%d interrupts delivered while disabled", n)
	}

	// Reading re-enables the receive interrupt, which fetches the waiting
	// byte.
	buf := make([]byte, 1)
	if n, _ := f.uart.Read(buf); n != 1 || buf[0] != data[0] {
		t.Fatalf("read %v", buf[:n])
	}
	if f.hw.InterruptEnable()&ierDataReady == 0 {
		t.Fatal("receive interrupt not enabled after read")
	}
	f.step()

	expected := append(append([]byte(nil), data[1:uart.BufferSize]...), next)
	buf = make([]byte, 2*uart.BufferSize)
	n, _ := f.uart.Read(buf)
	if !bytes.Equal(buf[:n], expected) {
		t.Fatalf("read %v, expected %v", buf[:n], expected)
	}
}

func TestOverrun(t *testing.T) {
	f := newAsync(t)
	f.hw.Receive('a')
	f.hw.Receive('b')

	defer func() {
		if recover() == nil {
			t.Fatal("no panic on overrun")
		}
	}()
	f.isr()
}

func TestLoopback(t *testing.T) {
	f := newAsync(t)
	f.uart.SetLoopback(true)

	msg := []byte("loop")
	for _, c := range msg {
		f.uart.WriteByte(c)
		f.step()
	}
	buf := make([]byte, 8)
	n, _ := f.uart.Read(buf)
	if !bytes.Equal(buf[:n], msg) {
		t.Fatalf("read %q", buf[:n])
	}
	if len(f.hw.Transmitted()) != 0 {
		t.Fatal("loopback data left the chip")
	}
}

func TestStream(t *testing.T) {
	const size = 4096
	table := crc8.MakeTable(crc8.CRC8)
	f := newAsync(t)

	produced := make(chan uint8)
	go func() {
		csum := crc8.Init(table)
		var b [1]byte
		for i := 0; i < size; i++ {
			b[0] = byte(i*31 + i>>8)
			csum = crc8.Update(csum, b[:], table)
			f.uart.WriteByte(b[0])
		}
		produced <- crc8.Complete(csum, table)
	}()

	deadline := time.Now().Add(10 * time.Second)
	for len(f.hw.Transmitted()) < size {
		if time.Now().After(deadline) {
			t.Fatalf("transmitted %d of %d bytes", len(f.hw.Transmitted()), size)
		}
		f.step()
	}

	sent := f.hw.Transmitted()
	if len(sent) != size {
		t.Fatalf("transmitted %d bytes", len(sent))
	}
	if expected, got := <-produced, crc8.Checksum(sent, table); got != expected {
		t.Fatalf("checksum mismatch: got %#x, expected %#x", got, expected)
	}
}
