package datastore

import "sync"

// PageMutexManager hands out one mutex per page ID so concurrent checks
// never interleave reads and writes of the same page's files.
type PageMutexManager struct {
	mutexes map[string]*sync.Mutex
	mapLock sync.RWMutex
}

// NewPageMutexManager creates an empty manager.
func NewPageMutexManager() *PageMutexManager {
	return &PageMutexManager{
		mutexes: make(map[string]*sync.Mutex),
	}
}

// GetMutex returns the mutex for a page, creating it on first use.
func (pmm *PageMutexManager) GetMutex(pageID string) *sync.Mutex {
	pmm.mapLock.RLock()
	mutex, exists := pmm.mutexes[pageID]
	pmm.mapLock.RUnlock()

	if exists {
		return mutex
	}

	pmm.mapLock.Lock()
	defer pmm.mapLock.Unlock()

	// Double-check after acquiring write lock
	if mutex, exists := pmm.mutexes[pageID]; exists {
		return mutex
	}

	mutex = &sync.Mutex{}
	pmm.mutexes[pageID] = mutex
	return mutex
}
