package config

import (
	"net/netip"
	"strconv"
	"strings"
)

const (
	loginRateKey      = "login_rate"
	loginBurstKey     = "login_burst"
	trustedProxiesKey = "trusted_proxies"
)

type SecurityConfig interface {
	GetLoginRate() float64
	GetLoginBurst() int
	GetTrustedProxies() []netip.Prefix
}

type Security struct {
	source
}

var _ SecurityConfig = Security{}

// GetLoginRate is the sustained number of login attempts per second allowed per client IP
func (s Security) GetLoginRate() float64 {
	rate, err := strconv.ParseFloat(s.str(loginRateKey, "0.2"), 64)
	if err != nil || rate <= 0 {
		return 0.2
	}
	return rate
}

func (s Security) GetLoginBurst() int {
	burst, err := strconv.Atoi(s.str(loginBurstKey, "5"))
	if err != nil || burst < 1 {
		return 5
	}
	return burst
}

// GetTrustedProxies parses the comma separated trusted_proxies list of addresses and
// CIDR ranges. Only peers in these ranges may name the client through forwarding
// headers. Unparsable entries are skipped; the default trusts nobody.
func (s Security) GetTrustedProxies() []netip.Prefix {
	var prefixes []netip.Prefix
	for _, entry := range strings.Split(s.str(trustedProxiesKey, ""), ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.Contains(entry, "/") {
			if p, err := netip.ParsePrefix(entry); err == nil {
				prefixes = append(prefixes, p.Masked())
			}
			continue
		}
		if addr, err := netip.ParseAddr(entry); err == nil {
			addr = addr.Unmap()
			prefixes = append(prefixes, netip.PrefixFrom(addr, addr.BitLen()))
		}
	}
	return prefixes
}
