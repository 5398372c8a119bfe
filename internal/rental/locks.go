package rental

import "sync"

// equipmentLocks serializes mutating operations per equipment item.
// The admission check and the write that consumes the admitted
// capacity must happen under one lock, or two concurrent requests can
// both pass the check and jointly overcommit.
type equipmentLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newEquipmentLocks() *equipmentLocks {
	return &equipmentLocks{locks: make(map[int64]*sync.Mutex)}
}

func (l *equipmentLocks) forEquipment(id int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	return m
}
