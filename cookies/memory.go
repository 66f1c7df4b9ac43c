package cookies

import (
	"sort"
	"sync"
)

var _ Store = (*MemoryJar)(nil)

// MemoryJar keeps entries in process memory.
type MemoryJar struct {
	mu       sync.Mutex
	entries  map[string]Entry
	settings jarSettings
}

func NewMemoryJar(opts ...JarOption) *MemoryJar {
	return &MemoryJar{
		entries:  make(map[string]Entry),
		settings: newJarSettings(opts),
	}
}

func (j *MemoryJar) Lookup(name string) (Entry, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()

	e, ok := j.entries[name]
	if !ok {
		return Entry{}, false
	}
	if e.Expired(j.settings.nowTime()) {
		delete(j.entries, name)
		return Entry{}, false
	}
	return e, true
}

func (j *MemoryJar) Put(name, value string, opts Options) error {
	e, err := newEntry(name, value, opts, j.settings.nowTime())
	if err != nil {
		return err
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries[name] = e
	return nil
}

func (j *MemoryJar) Delete(name string) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	delete(j.entries, name)
	return nil
}

// Names lists live entry names in sorted order.
func (j *MemoryJar) Names() []string {
	j.mu.Lock()
	defer j.mu.Unlock()

	now := j.settings.nowTime()
	names := make([]string, 0, len(j.entries))
	for name, e := range j.entries {
		if !e.Expired(now) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
