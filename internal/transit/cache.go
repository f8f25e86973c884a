package transit

import "strings"

// Cache geometry. Codes are "^" followed by one or two characters drawn
// from a 44 character alphabet starting at '0'.
const (
	cacheCodeDigits  = 44
	cacheBaseChar    = 48
	maxCacheEntries  = cacheCodeDigits * cacheCodeDigits
	minCacheableSize = 3
	cacheSubPrefix   = "^"
	mapMarker        = "^ "
)

// isCacheable reports whether an encoded string takes part in caching.
func isCacheable(s string, asKey bool) bool {
	if len(s) <= minCacheableSize {
		return false
	}

	if asKey {
		return true
	}

	return strings.HasPrefix(s, "~:") || strings.HasPrefix(s, "~$") || strings.HasPrefix(s, "~#")
}

// isCacheCode reports whether s refers to a cache entry.
func isCacheCode(s string) bool {
	return len(s) > 1 && s[0] == '^' && s != mapMarker
}

func indexToCode(index int) string {
	if index < cacheCodeDigits {
		return cacheSubPrefix + string(rune(index+cacheBaseChar))
	}

	hi := index/cacheCodeDigits + cacheBaseChar
	lo := index%cacheCodeDigits + cacheBaseChar

	return cacheSubPrefix + string(rune(hi)) + string(rune(lo))
}

func codeToIndex(code string) (int, bool) {
	switch len(code) {
	case 2:
		return int(code[1]) - cacheBaseChar, true
	case 3:
		return (int(code[1])-cacheBaseChar)*cacheCodeDigits + int(code[2]) - cacheBaseChar, true
	default:
		return 0, false
	}
}

// writeCache maps encoded strings to their codes.
type writeCache struct {
	codes map[string]string
	next  int
}

func newWriteCache() *writeCache {
	return &writeCache{codes: make(map[string]string)}
}

// encode returns the cache code for s when s was seen before; otherwise it
// records s and returns it unchanged.
func (c *writeCache) encode(s string, asKey bool) string {
	if !isCacheable(s, asKey) {
		return s
	}

	if code, ok := c.codes[s]; ok {
		return code
	}

	if c.next == maxCacheEntries {
		c.codes = make(map[string]string)
		c.next = 0
	}

	c.codes[s] = indexToCode(c.next)
	c.next++

	return s
}

// readCache holds decoded values in the order the writer cached them.
type readCache struct {
	entries []any
}

func newReadCache() *readCache {
	return &readCache{entries: make([]any, 0, cacheCodeDigits)}
}

func (c *readCache) add(v any) {
	if len(c.entries) == maxCacheEntries {
		c.entries = c.entries[:0]
	}

	c.entries = append(c.entries, v)
}

func (c *readCache) lookup(code string) (any, bool) {
	index, ok := codeToIndex(code)
	if !ok || index < 0 || index >= len(c.entries) {
		return nil, false
	}

	return c.entries[index], true
}
