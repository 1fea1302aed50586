// Package stac holds the subset of the SpatioTemporal Asset Catalog model the
// crawler walks: a root catalog, its child collections and their items.
package stac

// Link relation types the crawler follows.
const (
	RelChild = "child"
	RelItem  = "item"
	RelSelf  = "self"
	RelRoot  = "root"
)

// Link is a typed reference from one document to another.
type Link struct {
	Href  string `json:"href"`
	Rel   string `json:"rel"`
	Type  string `json:"type,omitempty"`
	Title string `json:"title,omitempty"`
}

// Catalog is the root document of a bucket.
type Catalog struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Links       []Link `json:"links"`

	// Href is the location the catalog was read from.
	Href string `json:"-"`
}

// Extent is the extent of a collection, only the spatial part is used.
type Extent struct {
	Spatial SpatialExtent `json:"spatial"`
}

// SpatialExtent lists one or more bounding boxes. The first box is the
// overall extent, subsequent ones refine it.
type SpatialExtent struct {
	BBox []BBox `json:"bbox"`
}

// Collection is a named group of items sharing a spatial extent.
type Collection struct {
	ID          string `json:"id"`
	Title       string `json:"title,omitempty"`
	Description string `json:"description,omitempty"`
	Extent      Extent `json:"extent"`
	Links       []Link `json:"links"`

	Href string `json:"-"`
}

// Asset is a downloadable file referenced by an item.
type Asset struct {
	Href  string   `json:"href"`
	Title string   `json:"title,omitempty"`
	Type  string   `json:"type,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// Item is a leaf entry of a collection.
type Item struct {
	ID     string           `json:"id"`
	BBox   *BBox            `json:"bbox,omitempty"`
	Assets map[string]Asset `json:"assets"`
	Links  []Link           `json:"links"`

	Href string `json:"-"`
}

// Name returns the title of the collection, or its identifier when untitled.
func (c *Collection) Name() string {
	if c.Title != "" {
		return c.Title
	}
	return c.ID
}

// Overlaps reports whether any box of the collection's spatial extent overlaps rect.
func (c *Collection) Overlaps(rect BBox) bool {
	for _, bbox := range c.Extent.Spatial.BBox {
		if bbox.Overlaps(rect) {
			return true
		}
	}
	return false
}

// ChildHrefs returns the targets of the catalog's child links.
func (c *Catalog) ChildHrefs() []string {
	return hrefsByRel(c.Links, RelChild)
}

// ItemHrefs returns the targets of the collection's item links.
func (c *Collection) ItemHrefs() []string {
	return hrefsByRel(c.Links, RelItem)
}

// SelfHref returns the location of the item: its self link if any, else the
// location it was read from.
func (i *Item) SelfHref() string {
	for _, link := range i.Links {
		if link.Rel == RelSelf && link.Href != "" {
			return link.Href
		}
	}
	return i.Href
}

func hrefsByRel(links []Link, rel string) []string {
	var hrefs []string
	for _, link := range links {
		if link.Rel == rel {
			hrefs = append(hrefs, link.Href)
		}
	}
	return hrefs
}
