package system

import (
	"context"
	"log/slog"

	"github.com/shirou/gopsutil/v3/mem"
)

const bytesPerPixel = 4

// SequenceBytes estimates the memory held by a fully decoded sequence of
// frames that all share the dimensions of the first one.
func SequenceBytes(width, height, frames int) uint64 {
	if width <= 0 || height <= 0 || frames <= 0 {
		return 0
	}
	return uint64(width) * uint64(height) * bytesPerPixel * uint64(frames)
}

// MemoryBudget reports whether a decoded sequence fits in half of the available
// memory. A probe failure is treated as "fits".
func MemoryBudget(ctx context.Context, need uint64) (available uint64, ok bool, err error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, true, err
	}
	return vm.Available, need <= vm.Available/2, nil
}

// CheckSequenceMemory logs a warning when the estimated sequence size is too
// large for the machine. It never fails the load.
func CheckSequenceMemory(ctx context.Context, logger *slog.Logger, width, height, frames int) {
	if logger == nil {
		logger = slog.Default()
	}
	need := SequenceBytes(width, height, frames)
	available, ok, err := MemoryBudget(ctx, need)
	if err != nil {
		logger.Debug("memory probe failed", "err", err)
		return
	}
	if !ok {
		logger.Warn("frame sequence may not fit in memory",
			"need_mb", need>>20, "available_mb", available>>20,
			"frames", frames, "width", width, "height", height)
	}
}
