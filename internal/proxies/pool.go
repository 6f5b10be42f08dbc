package proxies

import (
	"fmt"
	"net/url"
	"strings"
	"sync"
)

// Proxy is one parsed upstream in host:port or host:port:user:pass form.
type Proxy struct {
	Host     string
	Port     string
	Username string
	Password string
}

// URL renders the proxy as an http proxy url usable by a transport.
func (p Proxy) URL() *url.URL {
	u := &url.URL{
		Scheme: "http",
		Host:   p.Host + ":" + p.Port,
	}
	if p.Username != "" {
		u.User = url.UserPassword(p.Username, p.Password)
	}
	return u
}

// Addr returns the host:port pair.
func (p Proxy) Addr() string {
	return p.Host + ":" + p.Port
}

// ParseProxy parses a single proxy line.
func ParseProxy(line string) (Proxy, error) {
	parts := strings.Split(strings.TrimSpace(line), ":")
	switch len(parts) {
	case 2:
		if parts[0] == "" || parts[1] == "" {
			return Proxy{}, fmt.Errorf("invalid proxy %q", line)
		}
		return Proxy{Host: parts[0], Port: parts[1]}, nil
	case 4:
		if parts[0] == "" || parts[1] == "" {
			return Proxy{}, fmt.Errorf("invalid proxy %q", line)
		}
		return Proxy{Host: parts[0], Port: parts[1], Username: parts[2], Password: parts[3]}, nil
	default:
		return Proxy{}, fmt.Errorf("invalid proxy %q (expected host:port or host:port:user:pass)", line)
	}
}

// ParseList parses newline-separated proxies, skipping blank lines.
// It returns the parsed proxies and the lines that failed to parse.
func ParseList(raw string) ([]Proxy, []string) {
	var parsed []Proxy
	var rejected []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		proxy, err := ParseProxy(line)
		if err != nil {
			rejected = append(rejected, line)
			continue
		}
		parsed = append(parsed, proxy)
	}
	return parsed, rejected
}

// Pool hands out proxies round-robin. Safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	proxies []Proxy
	next    int
}

// NewPool builds a pool over the given proxies.
func NewPool(proxies []Proxy) *Pool {
	return &Pool{proxies: proxies}
}

// Next returns the next proxy in rotation, or false when the pool is empty.
func (p *Pool) Next() (Proxy, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.proxies) == 0 {
		return Proxy{}, false
	}
	proxy := p.proxies[p.next%len(p.proxies)]
	p.next++
	return proxy, true
}

// Size reports how many proxies the pool rotates through.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.proxies)
}
