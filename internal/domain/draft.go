package domain

import (
	"net/netip"
	"strconv"
	"strings"
	"time"
)

// Draft is the payload submitted to a store to create a bookmark.
// It is always built through NewDraft so its fields are normalized.
type Draft struct {
	OwnerID     string
	Title       string
	URL         string
	Description *string
}

// NewDraft trims and validates user input.
//
// Checks run in a fixed order: missing title/url first, then URL shape.
// A blank description becomes nil.
func NewDraft(title, rawURL, description, ownerID string) (Draft, error) {
	title = strings.TrimSpace(title)
	rawURL = strings.TrimSpace(rawURL)

	if title == "" || rawURL == "" {
		return Draft{}, &ValidationError{Code: CodeMissingFields}
	}
	if !IsAbsoluteURL(rawURL) {
		return Draft{}, &ValidationError{Code: CodeInvalidURL}
	}

	d := Draft{
		OwnerID: ownerID,
		Title:   title,
		URL:     rawURL,
	}
	if desc := strings.TrimSpace(description); desc != "" {
		d.Description = &desc
	}
	return d, nil
}

// Bookmark materializes the draft with store-assigned fields.
func (d Draft) Bookmark(id string, createdAt time.Time) Bookmark {
	return Bookmark{
		ID:          id,
		OwnerID:     d.OwnerID,
		Title:       d.Title,
		URL:         d.URL,
		Description: d.Description,
		CreatedAt:   createdAt,
	}
}

// IsAbsoluteURL reports whether s is an absolute URL under WHATWG parsing
// rules, the ones browsers apply.
//
// Only the special schemes (http, https, ws, wss, ftp) need a host, so
// "https://" alone is rejected while "file:///tmp/x", "foo:" and
// "mailto:someone@example.com" pass. Whitespace only matters inside a host;
// in a path it would be percent-encoded.
func IsAbsoluteURL(s string) bool {
	s = strings.Map(func(r rune) rune {
		if r == '\t' || r == '\n' || r == '\r' {
			return -1
		}
		return r
	}, s)

	i := strings.IndexByte(s, ':')
	if i <= 0 || !validScheme(s[:i]) {
		return false
	}
	scheme, rest := strings.ToLower(s[:i]), s[i+1:]

	needsHost, special := specialSchemes[scheme]
	if !special {
		if !strings.HasPrefix(rest, "//") {
			return true
		}
		return validHost(authorityHost(rest[2:], "/?#"), false)
	}
	rest = strings.TrimLeft(rest, `/\`)
	return validHost(authorityHost(rest, `/\?#`), needsHost)
}

// specialSchemes maps each special scheme to whether it requires a host.
var specialSchemes = map[string]bool{
	"http":  true,
	"https": true,
	"ws":    true,
	"wss":   true,
	"ftp":   true,
	"file":  false,
}

func validScheme(s string) bool {
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '+' || r == '-' || r == '.'):
		default:
			return false
		}
	}
	return true
}

// authorityHost returns the host[:port] part of an authority, without
// userinfo. The authority ends at the first of the terminators.
func authorityHost(s, terminators string) string {
	if end := strings.IndexAny(s, terminators); end >= 0 {
		s = s[:end]
	}
	if at := strings.LastIndexByte(s, '@'); at >= 0 {
		s = s[at+1:]
	}
	return s
}

func validHost(hostport string, required bool) bool {
	host, port := hostport, ""
	if strings.HasPrefix(hostport, "[") {
		end := strings.IndexByte(hostport, ']')
		if end < 0 {
			return false
		}
		if _, err := netip.ParseAddr(hostport[1:end]); err != nil {
			return false
		}
		host, port = hostport[:end+1], hostport[end+1:]
		if port != "" && port[0] != ':' {
			return false
		}
	} else if c := strings.LastIndexByte(hostport, ':'); c >= 0 {
		host, port = hostport[:c], hostport[c:]
	}

	if host == "" {
		return !required && port == ""
	}
	if strings.ContainsAny(host, " <>^|\x00") {
		return false
	}
	if port = strings.TrimPrefix(port, ":"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil || n < 0 || n > 65535 || strings.ContainsAny(port, "+-") {
			return false
		}
	}
	return true
}
