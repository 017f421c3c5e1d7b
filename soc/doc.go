// The soc package provides a hardware abstraction layer for the QEMU virt
// board's RISC-V system on chip.
//
// It implements low-level access to the hardware and the primitives to share
// data with interrupt handlers.  The subpackages expose single peripherals
// directly and are in general unsafe to use concurrently.  Use the drivers
// to write applications instead.
package soc

// QEMU virt machine
// https://www.qemu.org/docs/master/system/riscv/virt.html
