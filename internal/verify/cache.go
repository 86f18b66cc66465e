package verify

import (
	"fmt"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of parsed pages kept between runs.
const DefaultCacheSize = 512

// pageCache keeps parsed anchor sets keyed by path, size and modification
// time, so an edited page is parsed again.
type pageCache struct {
	entries *lru.Cache[string, anchorSet]
}

func newPageCache(size int) (*pageCache, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	c, err := lru.New[string, anchorSet](size)
	if err != nil {
		return nil, err
	}
	return &pageCache{entries: c}, nil
}

// anchors returns the anchors of the page at path. A missing page returns
// os.ErrNotExist.
func (c *pageCache) anchors(path string) (anchorSet, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("%s|%d|%d", path, info.Size(), info.ModTime().UnixNano())
	if set, ok := c.entries.Get(key); ok {
		return set, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	set, err := ExtractAnchors(f)
	if err != nil {
		return nil, err
	}
	c.entries.Add(key, set)
	return set, nil
}

func (c *pageCache) len() int { return c.entries.Len() }
