package session

import (
	"encoding/binary"
	"time"

	"github.com/allegro/bigcache/v3"
)

type (
	// memo remembers which tokens already passed verification so hot
	// callers skip the signature check. A miss always falls back to the
	// codec, evictions only cost time, never correctness.
	memo struct {
		cache *bigcache.BigCache
	}
)

func newMemo() *memo {
	cache, _ := bigcache.NewBigCache(bigcache.DefaultConfig(10 * time.Minute))
	return &memo{
		cache: cache,
	}
}

func (m *memo) save(token string, user int64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(user))
	m.cache.Set(token, buf[:])
}

func (m *memo) lookup(token string) (int64, bool) {
	buf, err := m.cache.Get(token)
	if err != nil || len(buf) != 8 {
		return 0, false
	}
	return int64(binary.BigEndian.Uint64(buf)), true
}
