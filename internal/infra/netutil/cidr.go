package netutil

import "net"

// MustParseCIDRs parses the admin allowlist into net ranges. Entries that do
// not parse are dropped rather than failing startup.
func MustParseCIDRs(cidrs []string) []*net.IPNet {
	out := make([]*net.IPNet, 0, len(cidrs))
	for _, s := range cidrs {
		if _, n, err := net.ParseCIDR(s); err == nil {
			out = append(out, n)
		}
	}
	return out
}
