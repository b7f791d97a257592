package mkmtrees

import (
	"net/url"
	"path"
	"strings"
)

// Slugify lowercases s and collapses every run of other characters into a
// single hyphen. Apostrophes vanish, so "Tree's Edge" becomes "trees-edge".
// Posts, tags, authors, categories, projects and products share it.
func Slugify(s string) string {
	var b strings.Builder
	hyphen := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if hyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			hyphen = false
		case r == '\'' || r == '’':
		default:
			hyphen = true
		}
	}
	return b.String()
}

// SlugOr slugifies explicit, falling back to the name or title it was meant
// to describe when explicit has no usable characters.
func SlugOr(explicit, fallback string) string {
	if slug := Slugify(explicit); slug != "" {
		return slug
	}
	return Slugify(fallback)
}

// BuildURL makes an absolute link under the public site URL. Every public
// route ends in a slash and so does the result.
func BuildURL(base string, segments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(append([]string{"/", u.Path}, segments...)...)
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

// FilterEmpty trims post tags and CORS origins, dropping blanks. It returns
// nil when nothing is left.
func FilterEmpty(vals []string) []string {
	var out []string
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
