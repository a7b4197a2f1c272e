package objstore

import "os"

// ensureDir creates dir (and any parents) if it does not already exist.
func ensureDir(dir string) error {
	return os.MkdirAll(dir, 0700)
}
