package wheel

import (
	"fmt"
	"sort"
	"sync"
)

// NotFound is returned by IndexOf for names outside the catalog.
const NotFound = -1

// Prize is one slice of the wheel. Name is the identity key; Icon and Color
// are display attributes the wheel never interprets.
type Prize struct {
	Name  string `json:"name"`
	Icon  string `json:"icon,omitempty"`
	Color string `json:"color"`
}

// FallbackPrize is awarded when every prize is excluded. It is not part of
// any catalog, so it can be neither excluded nor indexed.
var FallbackPrize = Prize{Name: "Tente Novamente", Icon: "", Color: "#222222"}

// IsFallback reports whether p is the synthetic fallback prize.
func IsFallback(p Prize) bool {
	return p == FallbackPrize
}

// Catalog holds the ordered prize sequence and the set of excluded names.
// The sequence is fixed at construction; only exclusions change afterwards.
type Catalog struct {
	mu       sync.RWMutex
	prizes   []Prize
	excluded map[string]struct{}
	rng      RNG
}

// NewCatalog validates prizes and returns a catalog with nothing excluded.
func NewCatalog(prizes []Prize, rng RNG) (*Catalog, error) {
	if len(prizes) == 0 {
		return nil, ErrEmptyCatalog
	}
	seen := make(map[string]struct{}, len(prizes))
	for i, p := range prizes {
		if p.Name == "" {
			return nil, fmt.Errorf("prize %d: %w", i, ErrEmptyPrizeName)
		}
		if _, ok := seen[p.Name]; ok {
			return nil, fmt.Errorf("prize %q: %w", p.Name, ErrDuplicatePrize)
		}
		seen[p.Name] = struct{}{}
	}
	if rng == nil {
		rng = StdRNG{}
	}
	own := make([]Prize, len(prizes))
	copy(own, prizes)
	return &Catalog{
		prizes:   own,
		excluded: make(map[string]struct{}),
		rng:      rng,
	}, nil
}

// ApplyDefaultBlock excludes the standing blocked prize. An empty name means
// the last prize of the sequence. It returns the name that was excluded.
func (c *Catalog) ApplyDefaultBlock(name string) string {
	if name == "" {
		c.mu.RLock()
		name = c.prizes[len(c.prizes)-1].Name
		c.mu.RUnlock()
	}
	c.Exclude(name)
	return name
}

// Exclude adds name to the excluded set. Repeated names are fine; names
// outside the sequence are ignored so the set only ever holds real prizes.
func (c *Catalog) Exclude(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.indexLocked(name) == NotFound {
		return
	}
	c.excluded[name] = struct{}{}
}

// Include removes name from the excluded set. Absent names are fine.
func (c *Catalog) Include(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.excluded, name)
}

// IsEligible reports whether name is in the sequence and not excluded.
func (c *Catalog) IsEligible(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if _, ok := c.excluded[name]; ok {
		return false
	}
	return c.indexLocked(name) != NotFound
}

// Eligible returns the allowed subset in catalog order.
func (c *Catalog) Eligible() []Prize {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.eligibleLocked()
}

func (c *Catalog) eligibleLocked() []Prize {
	allowed := make([]Prize, 0, len(c.prizes))
	for _, p := range c.prizes {
		if _, ok := c.excluded[p.Name]; ok {
			continue
		}
		allowed = append(allowed, p)
	}
	return allowed
}

// Excluded returns the excluded names, sorted.
func (c *Catalog) Excluded() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.excluded))
	for name := range c.excluded {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// PickRandom returns a uniformly chosen eligible prize, or FallbackPrize when
// nothing is eligible.
func (c *Catalog) PickRandom() Prize {
	c.mu.RLock()
	defer c.mu.RUnlock()
	allowed := c.eligibleLocked()
	if len(allowed) == 0 {
		return FallbackPrize
	}
	return allowed[c.rng.Intn(len(allowed))]
}

// IndexOf returns the position of name in the full sequence, or NotFound.
func (c *Catalog) IndexOf(name string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.indexLocked(name)
}

func (c *Catalog) indexLocked(name string) int {
	for i, p := range c.prizes {
		if p.Name == name {
			return i
		}
	}
	return NotFound
}

// Prizes returns a copy of the full sequence.
func (c *Catalog) Prizes() []Prize {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Prize, len(c.prizes))
	copy(out, c.prizes)
	return out
}

// Len is the segment count.
func (c *Catalog) Len() int {
	return len(c.prizes)
}
