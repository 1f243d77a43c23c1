//go:build linux || darwin

package system

import (
	"log/slog"
	"syscall"
)

// InitResourceLimits raises the open-file limit so that a sequence of a few hundred
// frames can be fetched at once without hitting EMFILE.
func InitResourceLimits(logger *slog.Logger, want uint64) {
	if logger == nil {
		logger = slog.Default()
	}
	var rLimit syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		logger.Warn("cannot read open-file limit", "err", err)
		return
	}
	if rLimit.Cur >= want {
		return
	}

	rLimit.Cur = want
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		logger.Warn("cannot raise open-file limit", "err", err)
		return
	}
	logger.Debug("open-file limit raised", "limit", rLimit.Cur)
}
