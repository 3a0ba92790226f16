package access

import (
	"fmt"
	"net/netip"
	"strings"
)

// AllowList holds a set of network prefixes that mark trusted origins.
type AllowList struct {
	prefixes []netip.Prefix
}

// NewAllowList parses the given CIDR strings. Malformed entries are a
// construction error so a bad deployment fails at startup, not per request.
// Blank entries are skipped.
func NewAllowList(cidrs []string) (*AllowList, error) {
	al := &AllowList{}
	for _, raw := range cidrs {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		prefix, err := netip.ParsePrefix(raw)
		if err != nil {
			return nil, fmt.Errorf("parse cidr %q: %w", raw, err)
		}
		al.prefixes = append(al.prefixes, prefix.Masked())
	}
	return al, nil
}

// Contains reports whether the address lies in any of the configured
// prefixes. A /0 prefix matches every address of its family; a /32 prefix
// matches only the literal address.
func (al *AllowList) Contains(addr netip.Addr) bool {
	addr = addr.Unmap()
	for _, p := range al.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// ContainsString parses addr and checks membership. Unparseable addresses
// are never trusted.
func (al *AllowList) ContainsString(addr string) bool {
	a, err := netip.ParseAddr(addr)
	if err != nil {
		return false
	}
	return al.Contains(a)
}

// Empty reports whether the list has no prefixes.
func (al *AllowList) Empty() bool {
	return len(al.prefixes) == 0
}
