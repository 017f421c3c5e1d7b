package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/clktmr/virt64/tools/run"
	"github.com/clktmr/virt64/tools/serial"
)

const usageString = `virt64go is a tool for development of kernels for the QEMU virt machine.

Usage:

	%s <command> [arguments]

The commands are:

	run      execute a kernel elf in an emulator
	serial   connect the terminal to a board's serial port
`

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), usageString, os.Args[0])
	flag.PrintDefaults()
}

func main() {
	log.Default().SetFlags(0)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	switch flag.Arg(0) {
	case "run":
		run.Main(flag.Args())
	case "serial":
		serial.Main(flag.Args())
	default:
		fmt.Fprintf(flag.CommandLine.Output(), "unknown command: %s\n", flag.Arg(0))
		flag.Usage()
		os.Exit(1)
	}
}
