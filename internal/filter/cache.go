package filter

import (
	"math"
	"sync"

	"github.com/gogpu/ggplay"
)

// axisKey identifies a computed axis. Strength is quantized to 0.01.
type axisKey struct {
	kind     ggplay.FilterKind
	in, out  int
	strength int
}

// Cache memoizes axes. Playback resamples every frame with the same
// geometry, so the tap tables are computed once per setting.
type Cache struct {
	mu     sync.RWMutex
	axes   map[axisKey]*Axis
	maxLen int
}

// NewCache creates a cache holding at most maxLen axes.
func NewCache(maxLen int) *Cache {
	if maxLen < 2 {
		maxLen = 2
	}
	return &Cache{
		axes:   make(map[axisKey]*Axis),
		maxLen: maxLen,
	}
}

// Axis returns the cached axis for the arguments, computing it on a miss.
// The returned axis must not be modified.
func (c *Cache) Axis(kind ggplay.FilterKind, in, out int, strength float64) *Axis {
	if !kind.UsesStrength() {
		strength = 0
	}
	key := axisKey{kind: kind, in: in, out: out, strength: int(math.Round(strength * 100))}

	c.mu.RLock()
	if a, ok := c.axes[key]; ok {
		c.mu.RUnlock()
		return a
	}
	c.mu.RUnlock()

	a := NewAxis(kind, in, out, float64(key.strength)/100)

	c.mu.Lock()
	if len(c.axes) >= c.maxLen {
		// Simple eviction: drop half the entries.
		count := 0
		for k := range c.axes {
			delete(c.axes, k)
			count++
			if count >= c.maxLen/2 {
				break
			}
		}
	}
	c.axes[key] = a
	c.mu.Unlock()

	return a
}

// Len returns the number of cached axes.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.axes)
}
