package usb

import "sync"

// deviceKey identifies one physical printer by its descriptor ids.
type deviceKey struct {
	vid uint16
	pid uint16
}

// lockRegistry hands out one mutex per (vid, pid) so that concurrent jobs for
// the same printer serialize over the whole discover-to-release span, while
// jobs for unrelated printers proceed in parallel.
type lockRegistry struct {
	mu    sync.Mutex
	locks map[deviceKey]*sync.Mutex
}

func newLockRegistry() *lockRegistry {
	return &lockRegistry{
		locks: make(map[deviceKey]*sync.Mutex),
	}
}

func (r *lockRegistry) get(vid, pid uint16) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := deviceKey{vid: vid, pid: pid}
	lock, exists := r.locks[key]
	if !exists {
		lock = &sync.Mutex{}
		r.locks[key] = lock
	}
	return lock
}
