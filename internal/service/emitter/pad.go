package emitter

import (
	"fmt"
	"os"
	"path/filepath"
)

// PadFile grows the file at path to exactly limit bytes by appending a
// newline followed by space fill. The document must be strictly smaller
// than the limit before padding; otherwise the workaround no longer
// protects against range-cache truncation and the run aborts.
func PadFile(path string, limit int64) error {
	f, err := os.OpenFile(filepath.Clean(path), os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open for padding: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return fmt.Errorf("measure before padding: %w", err)
	}

	size := info.Size()
	if size >= limit {
		_ = f.Close()
		return fmt.Errorf("descriptor is %d bytes, padding limit is %d", size, limit)
	}

	fill := make([]byte, limit-size)
	fill[0] = '\n'

	for i := int64(1); i < limit-size; i++ {
		fill[i] = ' '
	}

	if _, err = f.Write(fill); err != nil {
		_ = f.Close()
		return fmt.Errorf("pad descriptor: %w", err)
	}

	return f.Close()
}
