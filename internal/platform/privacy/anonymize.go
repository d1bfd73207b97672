// Package privacy keeps client identifiers out of logs.
package privacy

import "net/netip"

// AnonymizeIP masks an address to its /24 (IPv4) or /48 (IPv6) network, so the
// logged value cannot single out one host. Empty input gives "unknown" and
// unparseable input gives "invalid".
func AnonymizeIP(ip string) string {
	if ip == "" || ip == "unknown" {
		return "unknown"
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return "invalid"
	}
	addr = addr.Unmap()

	bits := 48
	if addr.Is4() {
		bits = 24
	}
	prefix, err := addr.WithZone("").Prefix(bits)
	if err != nil {
		return "invalid"
	}
	return prefix.Addr().String()
}
