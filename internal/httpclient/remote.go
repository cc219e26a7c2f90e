// Package httpclient builds the HTTP client used for git smart-HTTP
// transfers when cloning or updating the documentation repository.
package httpclient

import (
	"context"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/teranos/azsku/errors"
)

// Defaults applied when Options leaves a field zero.
const (
	DefaultDialTimeout   = 30 * time.Second
	DefaultHeaderTimeout = 60 * time.Second
	DefaultMaxRedirects  = 10
)

// Options configures a remote client.
type Options struct {
	// HeaderTimeout bounds the wait for response headers. The body of a
	// pack transfer is not bounded; clones of large repositories are slow.
	HeaderTimeout time.Duration
	MaxRedirects  int
	// BlockPrivateHosts refuses remotes that resolve to loopback, link-local
	// or private addresses.
	BlockPrivateHosts bool
	// AllowedSchemes defaults to https only.
	AllowedSchemes []string
}

// Client is an http.Client restricted to the configured remotes.
type Client struct {
	*http.Client
	schemes      []string
	blockPrivate bool
	maxRedirects int
}

// New creates a Client from opts.
func New(opts Options) *Client {
	if opts.HeaderTimeout <= 0 {
		opts.HeaderTimeout = DefaultHeaderTimeout
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = DefaultMaxRedirects
	}
	if len(opts.AllowedSchemes) == 0 {
		opts.AllowedSchemes = []string{"https"}
	}

	c := &Client{
		Client:       &http.Client{},
		schemes:      opts.AllowedSchemes,
		blockPrivate: opts.BlockPrivateHosts,
		maxRedirects: opts.MaxRedirects,
	}

	c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= c.maxRedirects {
			return errors.Newf("stopped after %d redirects", c.maxRedirects)
		}
		if err := c.validate(req.URL); err != nil {
			return errors.Wrap(err, "redirect blocked")
		}
		return nil
	}

	dialer := &net.Dialer{
		Timeout:   DefaultDialTimeout,
		KeepAlive: 30 * time.Second,
	}
	dial := dialer.DialContext
	if c.blockPrivate {
		dial = func(ctx context.Context, network, addr string) (net.Conn, error) {
			host, _, err := net.SplitHostPort(addr)
			if err != nil {
				return nil, errors.Wrap(err, "invalid address")
			}
			ips, err := net.DefaultResolver.LookupIP(ctx, "ip", host)
			if err != nil {
				return nil, errors.Wrapf(err, "failed to resolve %s", host)
			}
			for _, ip := range ips {
				if isPrivateIP(ip) {
					return nil, errors.Wrapf(errors.ErrInvalidRequest, "remote %s resolves to private address %s", host, ip)
				}
			}
			return dialer.DialContext(ctx, network, addr)
		}
	}

	c.Transport = &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dial,
		MaxIdleConns:          10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: opts.HeaderTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return c
}

// ValidateRemote parses raw and checks it against the client's scheme and
// host restrictions.
func (c *Client) ValidateRemote(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInvalidRequest, "invalid remote %q: %v", raw, err)
	}
	if err := c.validate(u); err != nil {
		return nil, err
	}
	return u, nil
}

// Schemes returns the schemes this client accepts.
func (c *Client) Schemes() []string {
	return slices.Clone(c.schemes)
}

func (c *Client) validate(u *url.URL) error {
	scheme := strings.ToLower(u.Scheme)
	if !slices.Contains(c.schemes, scheme) {
		return errors.Wrapf(errors.ErrInvalidRequest, "scheme %q not allowed (allowed: %v)", scheme, c.schemes)
	}

	host := u.Hostname()
	if host == "" {
		return errors.Wrap(errors.ErrInvalidRequest, "remote is missing a hostname")
	}

	if c.blockPrivate {
		if isLocalhost(host) {
			return errors.Wrapf(errors.ErrInvalidRequest, "remote %s is localhost", host)
		}
		if ip := net.ParseIP(host); ip != nil && isPrivateIP(ip) {
			return errors.Wrapf(errors.ErrInvalidRequest, "remote %s is a private address", host)
		}
	}
	return nil
}

func isPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsMulticast() {
		return true
	}
	// 0.0.0.0/8 and 240.0.0.0/4
	if ip4 := ip.To4(); ip4 != nil {
		return ip4[0] == 0 || ip4[0] >= 240
	}
	return false
}

func isLocalhost(host string) bool {
	host = strings.ToLower(host)
	return host == "localhost" ||
		host == "localhost.localdomain" ||
		strings.HasSuffix(host, ".localhost")
}
