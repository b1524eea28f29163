package heightfield

import (
	"go.uber.org/zap"

	"github.com/Faultbox/chunklod/internal/logger"
)

// StorageOptions selects where activation levels live.
type StorageOptions struct {
	// MmapThreshold is the buffer size in bytes at or above which levels
	// are kept in a memory-mapped temporary file. Zero keeps them in memory.
	MmapThreshold int64
	// Dir holds the temporary file; empty uses the OS default.
	Dir string
}

// levelBuffer owns the bytes that back the packed activation levels.
type levelBuffer interface {
	Bytes() []byte
	Close() error
}

// heapBuffer keeps levels in ordinary memory.
type heapBuffer []byte

func (b heapBuffer) Bytes() []byte { return b }

func (heapBuffer) Close() error { return nil }

func newLevelBuffer(n int, opts StorageOptions) (levelBuffer, error) {
	if opts.MmapThreshold > 0 && int64(n) >= opts.MmapThreshold {
		buf, err := newMmapBuffer(n, opts.Dir)
		if err == nil {
			logger.Info("activation levels are file-backed", zap.Int("bytes", n))
			return buf, nil
		}
		logger.Warn("file-backed activation levels unavailable, using memory", zap.Error(err))
	}
	return make(heapBuffer, n), nil
}
