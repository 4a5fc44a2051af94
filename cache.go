package busanim

import (
	"bytes"
	"sync"

	"github.com/theoremus-urban-solutions/bus-route-animator/fleet"
)

// feedCache memoizes encoded responses for the current snapshot. Entries are
// dropped as soon as a newer snapshot is requested.
type feedCache struct {
	mu      sync.Mutex
	snap    *fleet.Snapshot
	entries map[string][]byte
}

func newFeedCache() *feedCache {
	return &feedCache{entries: map[string][]byte{}}
}

func memoKey(args ...string) string {
	var b bytes.Buffer
	for i, a := range args {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(a)
	}
	return b.String()
}

func (c *feedCache) get(snap *fleet.Snapshot, key string, build func() ([]byte, error)) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if snap != c.snap {
		c.snap = snap
		c.entries = map[string][]byte{}
	}
	if b, ok := c.entries[key]; ok {
		return b, nil
	}
	b, err := build()
	if err != nil {
		return nil, err
	}
	c.entries[key] = b
	return b, nil
}
