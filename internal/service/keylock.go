package service

import (
	"hash/fnv"
	"sync"
)

const lockStripes = 64

// keyLock serializes work per key using a fixed set of mutexes. Distinct keys
// may share a stripe, which only costs some parallelism.
type keyLock struct {
	stripes [lockStripes]sync.Mutex
}

// lock blocks until the key's stripe is held and returns its unlock func.
func (l *keyLock) lock(key string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	m := &l.stripes[h.Sum32()%lockStripes]
	m.Lock()
	return m.Unlock
}
