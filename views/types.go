package views

// Site holds site-wide settings every page needs.
type Site struct {
	Name             string // SITE_NAME
	URL              string // SITE_URL
	Description      string // SITE_DESCRIPTION
	TurnstileSiteKey string // TURNSTILE_SITE_KEY, empty disables the widget
}

// PageMeta carries per-page SEO metadata into the <head>.
type PageMeta struct {
	Title       string
	Description string
	Path        string // canonical path, joined onto Site.URL
	OGType      string // "website" or "article"
	Image       string
}

// Post is a blog article as the templates see it.
type Post struct {
	Title       string
	Slug        string
	Excerpt     string
	Content     string // trusted HTML from the admin editor
	PublishedAt string
	ImageURL    string
	AuthorName  string
	Tags        []Tag
}

// Tag is a blog tag with its published post count.
type Tag struct {
	Name  string
	Slug  string
	Count int
}

// Project is a portfolio entry.
type Project struct {
	Title       string
	Slug        string
	Description string // plain text with light formatting, see Prose
	ClientName  string
	Location    string
	Category    string
	ImageURL    string
	CompletedAt string
	Images      []Image
}

// Image is one gallery picture.
type Image struct {
	URL      string
	Alt      string
	Caption  string
	Category string // before, after, general, progress
}

// Category is a portfolio category with its published project count.
type Category struct {
	Name  string
	Slug  string
	Count int
}

// Review is an approved testimonial.
type Review struct {
	Name     string
	Location string
	Rating   int
	Title    string
	Content  string
}

// Pager is the pagination state of a listing page.
type Pager struct {
	Page       int
	TotalPages int
	HasPrev    bool
	HasNext    bool
	Query      string // extra query string kept on page links, e.g. "tag=gorse"
}

// ContactState is the contact page's form state after a POST.
type ContactState struct {
	Name        string
	Email       string
	Phone       string
	Subject     string
	ServiceType string
	Message     string
	Error       string
	Sent        bool
	CSRFToken   string
}
