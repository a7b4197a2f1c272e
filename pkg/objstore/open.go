package objstore

// Open returns a Store for dataDir. dataDir == ":memory:" yields a MemStore
// with no disk footprint; any other path yields a BoltStore rooted at
// dataDir/.agit/repo.db, creating the directory tree if needed.
func Open(dataDir string) (Store, error) {
	if dataDir == ":memory:" {
		return NewMemStore(), nil
	}
	return NewBoltStore(dataDir)
}
