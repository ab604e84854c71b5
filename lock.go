// OS-level advisory locking for exclusive directory ownership.
//
// Store.Open acquires an exclusive flock on a sentinel LOCK file inside
// the data directory for the lifetime of the Store. This is how "opening
// the same directory twice concurrently is unsupported" (spec §5) is
// enforced rather than merely documented: a second Open on the same
// directory blocks until the first Store closes instead of silently
// racing the first Store's writer.
package logstore

import (
	"os"
	"sync"
)

// LockMode selects shared (read) or exclusive (write) locking.
type LockMode int

const (
	LockShared LockMode = iota
	LockExclusive
)

// dirLock wraps flock(2) / LockFileEx on the directory's sentinel LOCK
// file. mu serialises lock/unlock calls against Close so a concurrent
// Close cannot invalidate the fd mid-syscall.
type dirLock struct {
	mu sync.Mutex
	f  *os.File
}

// newDirLock opens (creating if necessary) the LOCK file in dir.
func newDirLock(dir string) (*dirLock, error) {
	f, err := os.OpenFile(dir+string(os.PathSeparator)+"LOCK", os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	return &dirLock{f: f}, nil
}

// Lock acquires a shared or exclusive flock, blocking until available.
func (l *dirLock) Lock(mode LockMode) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lock(mode)
}

// Unlock releases the flock.
func (l *dirLock) Unlock() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.unlock()
}

// Close releases the lock and closes the underlying file handle.
func (l *dirLock) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.unlock()
	return l.f.Close()
}
