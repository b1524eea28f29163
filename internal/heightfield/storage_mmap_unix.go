//go:build unix

package heightfield

import (
	"fmt"
	"os"

	"go.uber.org/multierr"
	"golang.org/x/sys/unix"
)

// mmapBuffer keeps levels in a shared mapping of an unlinked temporary file.
type mmapBuffer struct {
	data []byte
	file *os.File
}

func newMmapBuffer(n int, dir string) (*mmapBuffer, error) {
	f, err := os.CreateTemp(dir, "chunklod-levels-*")
	if err != nil {
		return nil, fmt.Errorf("creating level file: %w", err)
	}
	// The mapping keeps the data reachable after the name is gone.
	name := f.Name()
	defer os.Remove(name)

	if err := f.Truncate(int64(n)); err != nil {
		return nil, multierr.Append(fmt.Errorf("sizing level file: %w", err), f.Close())
	}

	data, err := unix.Mmap(int(f.Fd()), 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, multierr.Append(fmt.Errorf("mapping level file: %w", err), f.Close())
	}

	return &mmapBuffer{data: data, file: f}, nil
}

func (b *mmapBuffer) Bytes() []byte { return b.data }

func (b *mmapBuffer) Close() error {
	return multierr.Combine(unix.Munmap(b.data), b.file.Close())
}
