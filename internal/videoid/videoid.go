package videoid

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	videoPathRe = regexp.MustCompile(`/video/(\d+)`)
	shortLinkRe = regexp.MustCompile(`(?:vm|vt)\.tiktok\.com/([A-Za-z0-9]+)`)
	httpURLRe   = regexp.MustCompile(`^https?://`)
)

// Well-known host aliases. Key: input host. Value: canonical domain.
var canonicalDomainByHost = map[string]string{
	"tiktok.com":     "tiktok.com",
	"www.tiktok.com": "tiktok.com",
	"m.tiktok.com":   "tiktok.com",
	"vm.tiktok.com":  "tiktok.com",
	"vt.tiktok.com":  "tiktok.com",
}

// Kind is the outcome of inspecting a URL for a video id.
type Kind int

const (
	// KindUnrecoverable means neither a video id nor a short link was found.
	KindUnrecoverable Kind = iota
	// KindFound means the URL carries a numeric video id.
	KindFound
	// KindNeedsResolution means the URL is a short share link that has to be
	// expanded before an id can be read from it.
	KindNeedsResolution
)

func (k Kind) String() string {
	switch k {
	case KindFound:
		return "found"
	case KindNeedsResolution:
		return "needs_resolution"
	default:
		return "unrecoverable"
	}
}

type Extraction struct {
	Kind    Kind
	AwemeID string
}

// HasHTTPScheme reports whether raw starts with http:// or https://.
func HasHTTPScheme(raw string) bool {
	return httpURLRe.MatchString(raw)
}

// ExtractAwemeID returns the digits of the first /video/<digits> segment.
func ExtractAwemeID(raw string) (string, bool) {
	m := videoPathRe.FindStringSubmatch(raw)
	if len(m) != 2 {
		return "", false
	}
	return m[1], true
}

// IsShortLink reports whether raw looks like a vm./vt.tiktok.com share link.
func IsShortLink(raw string) bool {
	return shortLinkRe.MatchString(raw)
}

// Classify inspects raw without any I/O.
func Classify(raw string) Extraction {
	if id, ok := ExtractAwemeID(raw); ok {
		return Extraction{Kind: KindFound, AwemeID: id}
	}
	if IsShortLink(raw) {
		return Extraction{Kind: KindNeedsResolution}
	}
	return Extraction{Kind: KindUnrecoverable}
}

// ResolveShortLink follows redirects from raw and returns the final URL.
//
// Resolution is best effort: on any error the input is returned unchanged and
// a warning is logged.
func ResolveShortLink(ctx context.Context, client *http.Client, raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		slog.Warn("Failed to parse short link", "url", raw, "error", err)
		return raw
	}

	final, err := followRedirects(ctx, client, u)
	if err != nil {
		slog.Warn("Failed to resolve short link", "url", raw, "error", err)
		return raw
	}
	slog.Debug("Resolved short link", "url", raw, "resolved", final.String())
	return final.String()
}

func followRedirects(ctx context.Context, client *http.Client, u *url.URL) (*url.URL, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	_ = resp.Body.Close()

	finalURL := resp.Request.URL
	if finalURL == nil || strings.TrimSpace(finalURL.Host) == "" {
		return nil, &url.Error{Op: "resolve", URL: u.String(), Err: http.ErrNoLocation}
	}
	return finalURL, nil
}

// ResolveCanonicalDomain returns the canonical domain for host.
//
// host may include a port.
func ResolveCanonicalDomain(host string) string {
	h := normalizeHost(host)
	if h == "" {
		return ""
	}
	if c, ok := canonicalDomainByHost[h]; ok {
		return c
	}
	return h
}

// CanonicalDomainOf parses raw and returns the canonical domain of its host.
func CanonicalDomainOf(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return ResolveCanonicalDomain(u.Host)
}

// NamespaceUUIDForDomain returns a deterministic UUIDv5 namespace for a domain.
func NamespaceUUIDForDomain(domain string) uuid.UUID {
	d := strings.TrimSpace(strings.ToLower(domain))
	d = strings.TrimSuffix(d, ".")
	return uuid.NewSHA1(uuid.NameSpaceDNS, []byte(d))
}

// VideoUUID returns a deterministic UUIDv5 for a (domain, awemeID) pair.
func VideoUUID(domain string, awemeID string) uuid.UUID {
	ns := NamespaceUUIDForDomain(domain)
	return uuid.NewSHA1(ns, []byte(strings.TrimSpace(awemeID)))
}

func normalizeHost(hostport string) string {
	h := strings.TrimSpace(strings.ToLower(hostport))
	if h == "" {
		return ""
	}
	if strings.Contains(h, ":") {
		if parsed, err := url.Parse("//" + h); err == nil {
			if parsed.Hostname() != "" {
				h = parsed.Hostname()
			}
		}
	}
	return strings.TrimSuffix(h, ".")
}
