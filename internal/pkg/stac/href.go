package stac

import (
	"net/url"
	"path/filepath"
	"strings"
)

// IsRemote reports whether href is an absolute URL with a scheme other than file.
func IsRemote(href string) bool {
	u, err := url.Parse(href)
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Scheme != "file" && u.Host != ""
}

// ResolveHref resolves href against the location of the document containing it.
// Absolute URLs and absolute paths are returned unchanged.
func ResolveHref(base, href string) string {
	if href == "" || IsRemote(href) || filepath.IsAbs(href) {
		return href
	}

	if IsRemote(base) {
		baseURL, err := url.Parse(base)
		if err != nil {
			return href
		}
		ref, err := url.Parse(href)
		if err != nil {
			return href
		}
		return baseURL.ResolveReference(ref).String()
	}

	return filepath.Join(filepath.Dir(base), filepath.FromSlash(href))
}

// Dir returns the location of href with its last path element removed.
func Dir(href string) string {
	if i := strings.LastIndex(href, "/"); i >= 0 {
		return href[:i]
	}
	return "."
}

// MakeLinksAbsolute resolves every link of the catalog against its own location.
func (c *Catalog) MakeLinksAbsolute() {
	makeAbsolute(c.Links, c.Href)
}

// MakeLinksAbsolute resolves every link of the collection against its own location.
func (c *Collection) MakeLinksAbsolute() {
	makeAbsolute(c.Links, c.Href)
}

// MakeLinksAbsolute resolves every link of the item against its own location.
func (i *Item) MakeLinksAbsolute() {
	makeAbsolute(i.Links, i.Href)
}

func makeAbsolute(links []Link, base string) {
	if base == "" {
		return
	}
	for idx := range links {
		links[idx].Href = ResolveHref(base, links[idx].Href)
	}
}
