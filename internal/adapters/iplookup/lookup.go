package iplookup

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"time"
)

// DefaultEchoURL answers with the caller's public address as {"ip": "..."}.
const DefaultEchoURL = "https://api.ipify.org?format=json"

// Unknown is the value recorded when no address could be determined.
const Unknown = "unknown"

// Result is either a resolved address or the reason none is available.
type Result struct {
	ip     string
	reason string
}

// Resolved wraps a known address.
func Resolved(ip string) Result {
	return Result{ip: ip}
}

// Unavailable records why no address is known.
func Unavailable(reason string) Result {
	return Result{reason: reason}
}

// OK reports whether an address was resolved.
func (r Result) OK() bool {
	return r.ip != ""
}

// Value returns the address, or Unknown.
func (r Result) Value() string {
	if r.ip == "" {
		return Unknown
	}
	return r.ip
}

// Reason is empty for resolved results.
func (r Result) Reason() string {
	return r.reason
}

// Echoer asks an external service for this host's public address.
type Echoer interface {
	Lookup(ctx context.Context) Result
}

// EchoClient calls a JSON IP echo endpoint.
type EchoClient struct {
	client *http.Client
	url    string
}

// NewEchoClient creates a client with a 5s timeout. An empty url uses DefaultEchoURL.
func NewEchoClient(url string) *EchoClient {
	if url == "" {
		url = DefaultEchoURL
	}
	return &EchoClient{client: &http.Client{Timeout: 5 * time.Second}, url: url}
}

// Lookup implements Echoer.
// PRE: none
// POST: never returns an error; failures become Unavailable and are logged
func (c *EchoClient) Lookup(ctx context.Context) Result {
	res, err := c.lookup(ctx)
	if err != nil {
		slog.Warn("iplookup_event", "event", "echo_failed", "url", c.url, "error", err)
		return Unavailable(err.Error())
	}
	return res
}

func (c *EchoClient) lookup(ctx context.Context) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Result{}, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return Result{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("echo status %d", resp.StatusCode)
	}
	var body struct {
		IP string `json:"ip"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err != nil {
		return Result{}, fmt.Errorf("decode echo response: %w", err)
	}
	if net.ParseIP(body.IP) == nil {
		return Result{}, fmt.Errorf("echo returned %q", body.IP)
	}
	return Resolved(body.IP), nil
}

// Resolver picks the address recorded with a submission.
type Resolver struct {
	echo    Echoer
	proxies Proxies
}

// NewResolver creates a resolver. echo may be nil to disable the fallback.
// Forwarding headers are believed only from peers in proxies.
func NewResolver(echo Echoer, proxies Proxies) *Resolver {
	return &Resolver{echo: echo, proxies: proxies}
}

// Resolve returns the client's address. When the request comes from a
// loopback or private address the visitor shares this host's egress, so
// the echo service is asked instead.
func (r *Resolver) Resolve(ctx context.Context, req *http.Request) Result {
	ip := net.ParseIP(ClientIP(req, r.proxies))
	if ip != nil && !ip.IsLoopback() && !ip.IsPrivate() && !ip.IsUnspecified() {
		return Resolved(ip.String())
	}
	if r.echo == nil {
		return Unavailable("no public client address")
	}
	return r.echo.Lookup(ctx)
}

// Proxies lists the reverse proxies whose forwarding headers are believed.
type Proxies []netip.Prefix

// Contains reports whether addr falls inside one of the prefixes.
func (p Proxies) Contains(addr string) bool {
	ip, err := netip.ParseAddr(addr)
	if err != nil {
		return false
	}
	ip = ip.Unmap()
	for _, prefix := range p {
		if prefix.Contains(ip) {
			return true
		}
	}
	return false
}

// ClientIP returns the address of the connecting peer. When that peer is a
// trusted proxy, X-Forwarded-For is walked from the right and the first
// untrusted hop is the client; X-Real-IP is used when there is no XFF.
// POST: with no trusted proxies the headers are ignored entirely
func ClientIP(r *http.Request, trusted Proxies) string {
	peer := remoteHost(r)
	if !trusted.Contains(peer) {
		return peer
	}
	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		hops := strings.Split(strings.Join(xff, ","), ",")
		client := peer
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop == "" {
				continue
			}
			client = hop
			if !trusted.Contains(hop) {
				break
			}
		}
		return client
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return peer
}

func remoteHost(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// HashIP returns the first 8 bytes of HMAC-SHA256(ip) as hex.
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	return hex.EncodeToString(h.Sum(nil)[:8])
}
