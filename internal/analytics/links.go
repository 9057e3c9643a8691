package analytics

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	urlRe           = regexp.MustCompile(`https?://[^\s<>"')\]]+`)
	trailingPunctRe = regexp.MustCompile(`[.,;:!?)]+$`)
)

// trackingParams are dropped during canonicalization, along with any utm_* key.
var trackingParams = map[string]struct{}{
	"fbclid": {},
	"gclid":  {},
	"ref":    {},
	"source": {},
}

// ExtractURLs returns the canonical form of every http(s) URL in text.
func ExtractURLs(text string) []string {
	if text == "" {
		return nil
	}
	var out []string
	for _, raw := range urlRe.FindAllString(text, -1) {
		raw = trailingPunctRe.ReplaceAllString(raw, "")
		if raw == "" {
			continue
		}
		out = append(out, CanonicalURL(raw))
	}
	return out
}

// CanonicalURL strips tracking query parameters and the fragment. Other
// query pairs are kept verbatim and in order. Unparseable input is returned
// unchanged.
func CanonicalURL(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	var kept []string
	for _, pair := range strings.Split(u.RawQuery, "&") {
		if pair == "" {
			continue
		}
		key, _, _ := strings.Cut(pair, "=")
		if k, err := url.QueryUnescape(key); err == nil {
			key = k
		}
		if isTrackingParam(key) {
			continue
		}
		kept = append(kept, pair)
	}
	u.RawQuery = strings.Join(kept, "&")
	u.ForceQuery = false
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

func isTrackingParam(key string) bool {
	_, drop := trackingParams[key]
	return drop || strings.HasPrefix(key, "utm_")
}

// Domain is the lower-cased host of a URL with "www." removed.
func Domain(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ReplaceAll(strings.ToLower(u.Host), "www.", "")
}

// skipDomain filters links back to the source platform.
func skipDomain(domain string) bool {
	return domain == "" || strings.HasPrefix(domain, "facebook.com") || strings.HasPrefix(domain, "fb.")
}
