package chat

import "sync"

// Directory maps channel IDs to the display names the platform has shared.
// The normalizer puts every observed profile block and looks senders up
// while parsing. Implementations may persist across requests; the in-memory
// one lives for the process only.
type Directory interface {
	Get(channelID string) (string, bool)
	Put(channelID, displayName string)
}

// MemoryDirectory is a mutex-guarded in-process Directory. Last write wins;
// entries are never deleted.
type MemoryDirectory struct {
	mu    sync.RWMutex
	names map[string]string
}

// NewMemoryDirectory creates an empty directory.
func NewMemoryDirectory() *MemoryDirectory {
	return &MemoryDirectory{names: make(map[string]string)}
}

func (d *MemoryDirectory) Get(channelID string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	name, ok := d.names[channelID]
	return name, ok
}

func (d *MemoryDirectory) Put(channelID, displayName string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.names[channelID] = displayName
}
