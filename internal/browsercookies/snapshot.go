package browsercookies

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// snapshot copies a SQLite store and its -wal and -shm files into a
// temporary directory so a running browser's lock does not get in the way.
// The caller must call cleanup.
func snapshot(src string) (copyPath string, cleanup func(), err error) {
	if err := checkFile(src); err != nil {
		return "", nil, err
	}
	dir, err := os.MkdirTemp("", "spectre-cookies-*")
	if err != nil {
		return "", nil, fmt.Errorf("error: cannot create temp directory: %w", err)
	}
	cleanup = func() { os.RemoveAll(dir) }

	copyPath = filepath.Join(dir, filepath.Base(src))
	if err := copyFile(src, copyPath); err != nil {
		cleanup()
		return "", nil, err
	}
	for _, suffix := range []string{"-wal", "-shm"} {
		if _, err := os.Stat(src + suffix); err == nil {
			_ = copyFile(src+suffix, copyPath+suffix)
		}
	}
	return copyPath, cleanup, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("error: cannot open %s: %w", src, err)
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("error: cannot create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("error: cannot copy cookie file: %w", err)
	}
	return out.Close()
}
