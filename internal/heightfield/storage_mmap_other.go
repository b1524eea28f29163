//go:build !unix

package heightfield

import "errors"

type mmapBuffer struct{ levelBuffer }

func newMmapBuffer(int, string) (*mmapBuffer, error) {
	return nil, errors.New("memory-mapped levels are not supported on this platform")
}
