package api

import (
	"container/list"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sells-group/property-intel/internal/filter"
	"github.com/sells-group/property-intel/internal/geo"
)

// mapKey identifies a marker layer by the records it shows. Requests that
// spell the same predicate differently (parameter order, category order,
// padding, unrelated parameters) share a key.
type mapKey struct {
	filters string
	sort    filter.SortKey
	bbox    string
}

func newMapKey(pred filter.Predicate, sort filter.SortKey, box *geo.BBox) mapKey {
	canon := pred.Clone()
	slices.Sort(canon.Categories)
	canon.Categories = slices.Compact(canon.Categories)

	k := mapKey{filters: canon.Values().Encode(), sort: sort}
	if box != nil {
		k.bbox = box.String()
	}
	return k
}

// mapLayer is one rendered marker layer.
type mapLayer struct {
	key      mapKey
	body     []byte
	markers  int
	storedAt time.Time
}

// mapCache keeps the most recently requested marker layers. Records do not
// change while the server runs, so a layer only goes stale by age.
type mapCache struct {
	mu     sync.Mutex
	layers map[mapKey]*list.Element
	lru    *list.List // front is most recently used
	limit  int
	ttl    time.Duration
	now    func() time.Time

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

// MapCacheStats is reported under map_cache on /health.
type MapCacheStats struct {
	Layers    int     `json:"layers"`
	MaxLayers int     `json:"max_layers"`
	Markers   int     `json:"markers"`
	Hits      int64   `json:"hits"`
	Misses    int64   `json:"misses"`
	Evictions int64   `json:"evictions"`
	HitRate   float64 `json:"hit_rate"`
}

func newMapCache(limit int, ttl time.Duration, now func() time.Time) *mapCache {
	if now == nil {
		now = time.Now
	}
	return &mapCache{
		layers: make(map[mapKey]*list.Element),
		lru:    list.New(),
		limit:  limit,
		ttl:    ttl,
		now:    now,
	}
}

func (c *mapCache) get(k mapKey) (mapLayer, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.layers[k]
	if !ok {
		c.misses.Add(1)
		return mapLayer{}, false
	}
	layer := el.Value.(mapLayer)
	if c.ttl > 0 && c.now().Sub(layer.storedAt) > c.ttl {
		c.lru.Remove(el)
		delete(c.layers, k)
		c.misses.Add(1)
		return mapLayer{}, false
	}
	c.lru.MoveToFront(el)
	c.hits.Add(1)
	return layer, true
}

// put stores the rendered layer for k, evicting from the cold end when full.
func (c *mapCache) put(k mapKey, body []byte, markers int) {
	c.mu.Lock()
	defer c.mu.Unlock()

	layer := mapLayer{key: k, body: body, markers: markers, storedAt: c.now()}
	if el, ok := c.layers[k]; ok {
		el.Value = layer
		c.lru.MoveToFront(el)
		return
	}
	for c.lru.Len() >= c.limit {
		cold := c.lru.Back()
		c.lru.Remove(cold)
		delete(c.layers, cold.Value.(mapLayer).key)
		c.evictions.Add(1)
	}
	c.layers[k] = c.lru.PushFront(layer)
}

func (c *mapCache) stats() MapCacheStats {
	c.mu.Lock()
	s := MapCacheStats{Layers: c.lru.Len(), MaxLayers: c.limit}
	for el := c.lru.Front(); el != nil; el = el.Next() {
		s.Markers += el.Value.(mapLayer).markers
	}
	c.mu.Unlock()

	s.Hits = c.hits.Load()
	s.Misses = c.misses.Load()
	s.Evictions = c.evictions.Load()
	if total := s.Hits + s.Misses; total > 0 {
		s.HitRate = float64(s.Hits) / float64(total)
	}
	return s
}
