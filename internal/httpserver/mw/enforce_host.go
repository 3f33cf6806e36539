package mw

import (
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/utils"
)

// hostMatcher holds exact hosts and "*.suffix" wildcards, lowercased.
type hostMatcher struct {
	exact    map[string]struct{}
	suffixes []string // ".example.com" for "*.example.com"
}

func newHostMatcher(patterns []string) hostMatcher {
	m := hostMatcher{exact: make(map[string]struct{}, len(patterns))}
	for _, p := range patterns {
		p = strings.ToLower(strings.TrimSpace(p))
		switch {
		case p == "":
		case strings.HasPrefix(p, "*."):
			m.suffixes = append(m.suffixes, p[1:])
		default:
			m.exact[p] = struct{}{}
		}
	}
	return m
}

func (m hostMatcher) empty() bool {
	return len(m.exact) == 0 && len(m.suffixes) == 0
}

// match ignores the port and case of host. A wildcard never matches its
// bare apex.
func (m hostMatcher) match(host string) bool {
	host = strings.ToLower(utils.ParseHostNoPort(host))
	if _, ok := m.exact[host]; ok {
		return true
	}
	for _, s := range m.suffixes {
		if strings.HasSuffix(host, s) {
			return true
		}
	}
	return false
}

// EnforceHost answers 403 unless the Host header matches one of
// allowedHosts ("shelf.example.com" or "*.example.com"). An empty list
// disables the check.
func EnforceHost(allowedHosts []string, log logger.Logger) func(http.Handler) http.Handler {
	m := newHostMatcher(allowedHosts)
	if m.empty() {
		return passthrough
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !m.match(r.Host) {
				log.Debug("unknown host rejected", logger.String("host", r.Host))
				writeError(w, http.StatusForbidden, "unknown host", "forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
