package dataset

import (
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"outlet-insights-go/internal/types"
)

// Cache memoizes Combine per tab and period selection. Cached tables are
// shared; callers treat them as read-only, which every resolver does since
// filtering always copies.
type Cache struct {
	store Store
	lru   *lru.Cache[string, Tables]
}

func NewCache(store Store, size int) (*Cache, error) {
	if size <= 0 {
		size = 64
	}
	c, err := lru.New[string, Tables](size)
	if err != nil {
		return nil, err
	}
	return &Cache{store: store, lru: c}, nil
}

// Combined returns Combine(store, months, tab), computing it at most once
// per distinct key while it stays resident.
func (c *Cache) Combined(tab types.Tab, months []string) Tables {
	key := string(tab) + "\x1f" + strings.Join(months, "\x1f")
	if t, ok := c.lru.Get(key); ok {
		return t
	}
	t := Combine(c.store, months, tab)
	c.lru.Add(key, t)
	return t
}

// Store exposes the underlying per-period data.
func (c *Cache) Store() Store { return c.store }

func (c *Cache) Len() int { return c.lru.Len() }
