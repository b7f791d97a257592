package views

import (
	"encoding/json"
	"fmt"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/a-h/templ"
)

// buildURL joins path segments onto a base URL, ensuring a trailing slash.
func buildURL(base string, pathSegments ...string) string {
	u, err := url.Parse(base)
	if err != nil {
		return base
	}
	u.Path = path.Join(u.Path, path.Join(pathSegments...))
	if len(pathSegments) > 0 && !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}

var navLinks = []struct{ Path, Label string }{
	{"/", "Home"},
	{"/portfolio/", "Our Work"},
	{"/blog/", "Blog"},
	{"/contact/", "Contact"},
}

var contactServices = []string{"Tree surgery", "Stump grinding", "Hedge cutting", "Land clearance", "Earthworks", "Other"}

func pageTitle(site Site, meta PageMeta) string {
	if meta.Title == "" {
		return site.Name
	}
	return meta.Title + " | " + site.Name
}

func pageDescription(site Site, meta PageMeta) string {
	if meta.Description == "" {
		return site.Description
	}
	return meta.Description
}

func ogType(meta PageMeta) string {
	if meta.OGType == "" {
		return "website"
	}
	return meta.OGType
}

// navActive reports whether the nav entry at link covers the current page.
func navActive(link, current string) bool {
	return link == current || (link != "/" && strings.HasPrefix(current, link))
}

func postMeta(post Post) PageMeta {
	return PageMeta{
		Title:       post.Title,
		Description: post.Excerpt,
		Path:        postPath(post.Slug),
		OGType:      "article",
		Image:       post.ImageURL,
	}
}

func projectMeta(p Project) PageMeta {
	return PageMeta{
		Title:       p.Title,
		Description: p.ClientName,
		Path:        projectPath(p.Slug),
		Image:       p.ImageURL,
	}
}

func postPath(slug string) string { return "/blog/" + url.PathEscape(slug) + "/" }

func projectPath(slug string) string { return "/portfolio/" + url.PathEscape(slug) + "/" }

func tagLink(slug string) string { return "/blog/?tag=" + url.QueryEscape(slug) }

func categoryLink(slug string) string { return "/portfolio/?category=" + url.QueryEscape(slug) }

// pageLink points at page of a listing, keeping the pager's extra query.
func pageLink(basePath string, p Pager, page int) string {
	q := "?page=" + strconv.Itoa(page)
	if p.Query != "" {
		q += "&" + p.Query
	}
	return basePath + q
}

func ratingLabel(rating int) string {
	return strconv.Itoa(rating) + " out of 5"
}

func nonEmpty(parts ...string) []string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

type gallerySection struct {
	Label  string
	Images []Image
}

// galleryGroups splits project images into labelled sections in display
// order, dropping empty ones.
func galleryGroups(images []Image) []gallerySection {
	var out []gallerySection
	for _, g := range []struct{ key, label string }{
		{"before", "Before"}, {"progress", "In progress"}, {"after", "After"}, {"general", "Gallery"},
	} {
		var imgs []Image
		for _, img := range images {
			if img.Category == g.key {
				imgs = append(imgs, img)
			}
		}
		if len(imgs) > 0 {
			out = append(out, gallerySection{Label: g.label, Images: imgs})
		}
	}
	return out
}

// jsonLD embeds a marshalled Schema.org block. json.Marshal escapes '<', so
// the data cannot close the script element.
func jsonLD(data string) templ.Component {
	return templ.Raw(`<script type="application/ld+json">` + data + `</script>`)
}

// FormatDate renders a stored timestamp as "2 January 2006"; unparseable
// values pass through.
func FormatDate(ts string) string {
	for _, layout := range []string{"2006-01-02T15:04:05.000Z", time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.Format("2 January 2006")
		}
	}
	return ts
}

// Stars renders a 1-5 rating as filled and empty stars.
func Stars(rating int) string {
	rating = max(0, min(rating, 5))
	return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
}

// BusinessJsonLD produces a Schema.org LocalBusiness block for the home page.
func BusinessJsonLD(site Site, reviews []Review) string {
	data := map[string]any{
		"@context": "https://schema.org",
		"@type":    "LocalBusiness",
		"name":     site.Name,
		"url":      buildURL(site.URL),
	}
	if site.Description != "" {
		data["description"] = site.Description
	}
	if len(reviews) > 0 {
		total := 0
		for _, r := range reviews {
			total += r.Rating
		}
		data["aggregateRating"] = map[string]any{
			"@type":       "AggregateRating",
			"ratingValue": fmt.Sprintf("%.1f", float64(total)/float64(len(reviews))),
			"reviewCount": len(reviews),
		}
	}
	return marshalJsonLD(data)
}

// BlogPostingJsonLD produces a Schema.org BlogPosting block for a post.
func BlogPostingJsonLD(site Site, post Post) string {
	postURL := buildURL(site.URL, "blog", post.Slug)
	data := map[string]any{
		"@context":      "https://schema.org",
		"@type":         "BlogPosting",
		"headline":      post.Title,
		"description":   post.Excerpt,
		"datePublished": post.PublishedAt,
		"url":           postURL,
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  site.Name,
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if post.AuthorName != "" {
		data["author"] = map[string]string{"@type": "Person", "name": post.AuthorName}
	}
	if post.ImageURL != "" {
		data["image"] = post.ImageURL
	}
	if len(post.Tags) > 0 {
		names := make([]string, len(post.Tags))
		for i, t := range post.Tags {
			names[i] = t.Name
		}
		data["keywords"] = strings.Join(names, ", ")
	}
	return marshalJsonLD(data)
}

func marshalJsonLD(data map[string]any) string {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return string(b)
}
