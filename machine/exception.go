package machine

import "github.com/clktmr/virt64/soc/hart"

var excNames = [16]string{
	0:  "Instruction Address Misaligned",
	1:  "Instruction Access Fault",
	2:  "Illegal Instruction",
	3:  "Breakpoint",
	4:  "Load Address Misaligned",
	5:  "Load Access Fault",
	6:  "Store Address Misaligned",
	7:  "Store Access Fault",
	8:  "Environment Call (U-mode)",
	9:  "Environment Call (S-mode)",
	11: "Environment Call (M-mode)",
	12: "Instruction Page Fault",
	13: "Load Page Fault",
	15: "Store Page Fault",
}

var intrNames = [16]string{
	1:  "Supervisor Software",
	3:  "Machine Software",
	5:  "Supervisor Timer",
	7:  "Machine Timer",
	9:  "Supervisor External",
	11: "Machine External",
}

// CauseName returns a description of a trap cause.
func CauseName(cause hart.Cause) string {
	code := uint64(cause.IRQ())
	names, kind := &excNames, " Exception"
	if cause.Interrupt() {
		names, kind = &intrNames, " Interrupt"
	}
	if code >= uint64(len(names)) || names[code] == "" {
		var buf [16]byte
		return "Unknown" + kind + " 0x" + string(itoa(buf[:], code))
	}
	return names[code] + kind
}

//go:nosplit
func itoa(buf []byte, num uint64) []byte {
	for i := range 16 {
		char := byte(num>>(60-(4*i))) & 0xf
		if char > 9 {
			char += 'a' - 10
		} else {
			char += '0'
		}
		buf[i] = char
	}
	return buf
}
