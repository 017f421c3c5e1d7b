package machine

import (
	"github.com/clktmr/virt64/debug"
	"github.com/clktmr/virt64/drivers/timer"
	"github.com/clktmr/virt64/drivers/uart"
	"github.com/clktmr/virt64/soc"
	"github.com/clktmr/virt64/soc/hart"
	"github.com/clktmr/virt64/soc/plic"
)

// Board owns the devices of a booted board.
type Board struct {
	PLIC  *plic.Controller
	Intr  *soc.Dispatcher
	COM   [NCOM]*uart.UART
	Timer *timer.Timer
}

// Boot initializes all devices and enables external interrupts on the hart.
// The timer is initialized but not started.
func Boot(cfg *Config, b Buses) *Board {
	board := &Board{PLIC: plic.New(b.PLIC)}
	board.PLIC.Init()
	board.Intr = soc.NewDispatcher(board.PLIC)

	board.COM[ConsoleCOM] = uart.NewSync(b.COM[ConsoleCOM])
	board.COM[AsyncCOM] = uart.NewAsync(b.COM[AsyncCOM], cfg.COMIRQ(AsyncCOM), board.Intr)

	board.Timer = timer.New(b.CLINT, cfg.Timebase)

	hart.EnableIRQ(hart.ExternalIRQ)
	return board
}

// Trap services an interrupt taken by the hart.
//
//go:nosplit
func (b *Board) Trap(cause hart.Cause) {
	switch cause {
	case hart.MachineExternal:
		b.Intr.Handle()
	case hart.MachineTimer:
		b.Timer.Handle()
	default:
		panic("unhandled trap: " + CauseName(cause))
	}
}

// Console returns the serial port carrying the runtime's output.
func (b *Board) Console() *uart.UART { return b.COM[ConsoleCOM] }

// Serial returns serial port n.
func (b *Board) Serial(n int) *uart.UART {
	debug.Assert(n >= 0 && n < NCOM, "invalid serial port")
	return b.COM[n]
}
