//go:build noos

package machine

import (
	"embedded/rtos"

	"github.com/clktmr/virt64/drivers"
	"github.com/clktmr/virt64/soc/hart"

	"github.com/embeddedgo/fs/termfs"

	_ "unsafe" // for linkname
)

// Default is the board the program runs on.
var Default *Board

func init() {
	Default = Boot(&QEMUVirt, QEMUVirt.Map())

	console := Default.Console()
	rtos.SetSystemWriter(drivers.NewSystemWriter(console))
	rtos.Mount(termfs.NewLight("termfs", nil, console), "/dev/console")

	Default.Timer.Start()
}

//go:linkname externalHandler IRQ11_Handler
//go:interrupthandler
func externalHandler() {
	Default.Trap(hart.MachineExternal)
}

//go:linkname timerHandler IRQ7_Handler
//go:interrupthandler
func timerHandler() {
	Default.Trap(hart.MachineTimer)
}
