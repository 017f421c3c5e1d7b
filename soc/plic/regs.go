package plic

const (
	SourceCount  = 0x400 // interrupt sources, including the reserved source 0
	ContextCount = 1     // only M-mode on hart 0 is routed
	PrioMax      = 7     // highest priority level, 0 disables a source
)

// Register layout relative to the controller's base address.
const (
	priorityBase = 0x00_0000 // one word per source

	pendingBase = 0x00_1000 // bitmap, 32 sources per word

	enableBase   = 0x00_2000 // bitmap per context, 32 sources per word
	enableStride = 0x80

	contextBase   = 0x20_0000
	contextStride = 0x1000
	thresholdReg  = 0x0 // relative to the context's block
	claimReg      = 0x4 // read claims, write completes

	// Size of the register window.
	Size = contextBase + ContextCount*contextStride
)

func priorityOffset(src Source) uintptr {
	return priorityBase + uintptr(src)*4
}

func pendingOffset(src Source) uintptr {
	return pendingBase + uintptr(src/32)*4
}

func enableOffset(ctx Context, src Source) uintptr {
	return enableBase + uintptr(ctx)*enableStride + uintptr(src/32)*4
}

func thresholdOffset(ctx Context) uintptr {
	return contextBase + uintptr(ctx)*contextStride + thresholdReg
}

func claimOffset(ctx Context) uintptr {
	return contextBase + uintptr(ctx)*contextStride + claimReg
}

func sourceBit(src Source) uint32 {
	return 1 << (src % 32)
}
