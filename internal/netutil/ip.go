// Package netutil holds small address helpers shared by the HTTP layer.
package netutil

import (
	"net/netip"
	"strings"
	"sync"
)

// cacheLimit bounds the private-address cache; it is reset when full.
const cacheLimit = 4096

var privateCache = struct {
	sync.RWMutex
	m map[string]bool
}{m: make(map[string]bool)}

// IsPrivateIP reports whether ip is a private, loopback or link-local
// address. Unparsable values are not private. Results are cached.
func IsPrivateIP(ip string) bool {
	ip = strings.TrimSpace(ip)
	if ip == "" {
		return false
	}

	privateCache.RLock()
	v, ok := privateCache.m[ip]
	privateCache.RUnlock()
	if ok {
		return v
	}

	v = isPrivate(ip)

	privateCache.Lock()
	if len(privateCache.m) >= cacheLimit {
		privateCache.m = make(map[string]bool)
	}
	privateCache.m[ip] = v
	privateCache.Unlock()
	return v
}

func isPrivate(ip string) bool {
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	return addr.IsPrivate() || addr.IsLoopback() || addr.IsLinkLocalUnicast() || addr.IsUnspecified()
}

// FirstForwarded returns the first address of an X-Forwarded-For list.
func FirstForwarded(header string) string {
	first, _, _ := strings.Cut(header, ",")
	return strings.TrimSpace(first)
}
