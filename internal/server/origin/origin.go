// Package origin decides which browser origins may call the API.
package origin

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/taskmanager/internal/logging"
)

// Gate admits origins that match an allow-list exactly, by hostname, or by
// a "*.base" wildcard. It is immutable after construction.
type Gate struct {
	exact     map[string]struct{}
	hosts     map[string]struct{}
	wildcards []string
	log       logging.Logger
}

// RejectedError is returned for an origin that matched nothing.
type RejectedError struct {
	Origin string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("origin %s not allowed by CORS", e.Origin)
}

// NewGate builds a Gate from a comma-separated allow-list.
func NewGate(allowList string, log logging.Logger) *Gate {
	g := &Gate{
		exact: make(map[string]struct{}),
		hosts: make(map[string]struct{}),
		log:   log,
	}

	for _, raw := range strings.Split(allowList, ",") {
		entry := normalize(raw)
		if entry == "" {
			continue
		}

		if base, ok := strings.CutPrefix(entry, "*."); ok {
			g.wildcards = append(g.wildcards, base)
			continue
		}

		g.exact[entry] = struct{}{}
		if host := hostname(entry); host != "" {
			g.hosts[host] = struct{}{}
		}
	}

	return g
}

// Check returns nil when origin is admitted. An empty origin comes from a
// non-browser caller and is always admitted.
func (g *Gate) Check(ctx context.Context, origin string) error {
	ok, err := g.match(origin)
	if err != nil {
		g.log.Warn(ctx, "malformed origin", "origin", origin, "error", err)
	}
	if !ok {
		return &RejectedError{Origin: origin}
	}
	return nil
}

// Allowed reports whether origin is admitted, without logging. It serves as
// the CORS origin callback, which runs after Check has already seen the
// request.
func (g *Gate) Allowed(origin string) bool {
	ok, _ := g.match(origin)
	return ok
}

// match returns a non-nil error only for an origin that cannot be parsed.
func (g *Gate) match(origin string) (bool, error) {
	if strings.TrimSpace(origin) == "" {
		return true, nil
	}

	o := normalize(origin)
	if _, ok := g.exact[o]; ok {
		return true, nil
	}

	u, err := url.Parse(o)
	if err != nil {
		return false, err
	}
	host := u.Hostname()
	if host == "" {
		return false, fmt.Errorf("origin %q has no host", origin)
	}

	if _, ok := g.hosts[host]; ok {
		return true, nil
	}

	for _, base := range g.wildcards {
		if host == base || strings.HasSuffix(host, "."+base) {
			return true, nil
		}
	}

	return false, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSuffix(strings.TrimSpace(s), "/"))
}

// hostname extracts the host from an allow-list entry, which may be a full
// origin or a bare host name.
func hostname(entry string) string {
	if !strings.Contains(entry, "://") {
		entry = "//" + entry
	}
	u, err := url.Parse(entry)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
