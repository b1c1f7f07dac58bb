// Package urlutil provides URL validation, canonicalization, deduplication
// and pattern filtering for extraction results.
package urlutil

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidURL is returned when an input is not an absolute http(s) URL.
// Use errors.Is to detect it.
var ErrInvalidURL = errors.New("invalid URL")

// NormalizeOptions controls which canonicalization steps Normalize applies.
// The zero value disables everything; use DefaultNormalizeOptions for the
// standard behavior.
type NormalizeOptions struct {
	// Lowercase lowercases the host and path. The query string and values
	// are left untouched.
	Lowercase bool
	// RemoveFragment drops the #fragment part.
	RemoveFragment bool
	// RemoveTrailingSlash strips exactly one trailing slash from the path.
	// Interior double slashes are never collapsed.
	RemoveTrailingSlash bool
	// SortQueryParams re-encodes the query with keys in lexicographic
	// order. Values keep their original order per key. Ignored when
	// RemoveQueryParams is set.
	SortQueryParams bool
	// RemoveQueryParams drops the query string entirely.
	RemoveQueryParams bool
}

// DefaultNormalizeOptions returns the options used for deduplication:
// lowercase, no fragment, no trailing slash, sorted query parameters.
func DefaultNormalizeOptions() NormalizeOptions {
	return NormalizeOptions{
		Lowercase:           true,
		RemoveFragment:      true,
		RemoveTrailingSlash: true,
		SortQueryParams:     true,
	}
}

// Validate parses raw as an absolute http(s) URL. Every function in this
// package that needs a scheme check goes through here.
func Validate(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidURL, "%q: %v", raw, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, errors.Wrapf(ErrInvalidURL, "%q: scheme must be http or https", raw)
	}

	if u.Host == "" {
		return nil, errors.Wrapf(ErrInvalidURL, "%q: missing host", raw)
	}

	return u, nil
}

// Normalize returns the canonical string form of raw according to opts.
// Normalization is idempotent: normalizing an already-normalized URL is a
// no-op.
func Normalize(raw string, opts NormalizeOptions) (string, error) {
	u, err := Validate(raw)
	if err != nil {
		return "", err
	}

	if opts.Lowercase {
		u.Host = strings.ToLower(u.Host)
		u.Path = strings.ToLower(u.Path)
		u.RawPath = ""
	}

	if opts.RemoveFragment {
		u.Fragment = ""
		u.RawFragment = ""
	}

	if opts.RemoveQueryParams {
		u.RawQuery = ""
	} else if opts.SortQueryParams && u.RawQuery != "" {
		// url.Values.Encode sorts by key and keeps per-key value order.
		u.RawQuery = u.Query().Encode()
	}

	if opts.RemoveTrailingSlash && strings.HasSuffix(u.Path, "/") {
		u.Path = u.Path[:len(u.Path)-1]
		u.RawPath = ""
	}

	return u.String(), nil
}

// ExtractDomain returns the lowercased hostname of raw.
func ExtractDomain(raw string) (string, error) {
	u, err := Validate(raw)
	if err != nil {
		return "", err
	}

	return strings.ToLower(u.Hostname()), nil
}

// ExtractRootDomain returns the last two dot-separated labels of the
// hostname. This is a naive heuristic: multi-part public suffixes are not
// special-cased, so "www.example.co.uk" yields "co.uk".
func ExtractRootDomain(raw string) (string, error) {
	host, err := ExtractDomain(raw)
	if err != nil {
		return "", err
	}

	labels := strings.Split(host, ".")
	if len(labels) <= 2 {
		return host, nil
	}

	return strings.Join(labels[len(labels)-2:], "."), nil
}

// IsSameDomain reports whether both URLs share a hostname. Returns false
// when either input fails to parse.
func IsSameDomain(a, b string) bool {
	da, err := ExtractDomain(a)
	if err != nil {
		return false
	}

	db, err := ExtractDomain(b)
	if err != nil {
		return false
	}

	return da == db
}

// IsSameRootDomain reports whether both URLs share a root domain. Returns
// false when either input fails to parse.
func IsSameRootDomain(a, b string) bool {
	ra, err := ExtractRootDomain(a)
	if err != nil {
		return false
	}

	rb, err := ExtractRootDomain(b)
	if err != nil {
		return false
	}

	return ra == rb
}

// IsSubdomain reports whether raw's hostname is a proper subdomain of
// parent's hostname. Equal hostnames are not subdomains. Returns false when
// either input fails to parse.
func IsSubdomain(raw, parent string) bool {
	host, err := ExtractDomain(raw)
	if err != nil {
		return false
	}

	parentHost, err := ExtractDomain(parent)
	if err != nil {
		return false
	}

	return host != parentHost && strings.HasSuffix(host, "."+parentHost)
}

// Deduplicate collapses URLs that normalize to the same key, keeping the
// first-seen original form of each and preserving input order. URLs that
// fail to parse are dropped.
func Deduplicate(urls []string, opts NormalizeOptions) []string {
	seen := make(map[string]struct{}, len(urls))
	out := make([]string, 0, len(urls))

	for _, raw := range urls {
		key, err := Normalize(raw, opts)
		if err != nil {
			continue
		}

		if _, ok := seen[key]; ok {
			continue
		}

		seen[key] = struct{}{}
		out = append(out, raw)
	}

	return out
}

// FilterByPattern keeps URLs that match none of the exclude patterns and,
// when include patterns are given, at least one of them. Exclusion wins
// over inclusion. Order is preserved. Returns an error when a pattern does
// not compile.
func FilterByPattern(urls []string, include, exclude []string) ([]string, error) {
	includeRe, err := compilePatterns(include)
	if err != nil {
		return nil, err
	}

	excludeRe, err := compilePatterns(exclude)
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(urls))

urls:
	for _, raw := range urls {
		for _, re := range excludeRe {
			if re.MatchString(raw) {
				continue urls
			}
		}

		if len(includeRe) > 0 {
			for _, re := range includeRe {
				if re.MatchString(raw) {
					out = append(out, raw)
					continue urls
				}
			}
			continue
		}

		out = append(out, raw)
	}

	return out, nil
}

func compilePatterns(patterns []string) ([]*regexp.Regexp, error) {
	res := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid URL pattern %q", p)
		}
		res = append(res, re)
	}

	return res, nil
}

// Depth returns the number of non-empty path segments.
func Depth(raw string) (int, error) {
	u, err := Validate(raw)
	if err != nil {
		return 0, err
	}

	depth := 0
	for _, segment := range strings.Split(u.Path, "/") {
		if segment != "" {
			depth++
		}
	}

	return depth, nil
}

// ResolveReference resolves a (possibly relative) reference against a
// validated absolute base URL.
func ResolveReference(base, ref string) (string, error) {
	b, err := Validate(base)
	if err != nil {
		return "", err
	}

	r, err := url.Parse(ref)
	if err != nil {
		return "", errors.Wrapf(ErrInvalidURL, "%q: %v", ref, err)
	}

	return b.ResolveReference(r).String(), nil
}
