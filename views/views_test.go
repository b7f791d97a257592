package views

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func TestRenderProse(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello **world**", "<p>Hello <strong>world</strong></p>"},
		{"a\nb", "<p>a<br/>b</p>"},
		{"a\n\nb", "<p>a</p><p>b</p>"},
		{"- one\n- two", "<ul><li>one</li><li>two</li></ul>"},
		{"intro\n- one", "<p>intro</p><ul><li>one</li></ul>"},
		{"<script>alert(1)</script>", "<p>&lt;script&gt;alert(1)&lt;/script&gt;</p>"},
		{"[site](https://example.com)", `<p><a href="https://example.com">site</a></p>`},
		{"[work](/portfolio/)", `<p><a href="/portfolio/">work</a></p>`},
		{"[x](javascript:alert)", "<p>x</p>"},
		{"[x](//evil.example)", "<p>x</p>"},
		{"", ""},
	}
	for _, tt := range tests {
		got := renderProse(tt.input)
		if got != tt.expected {
			t.Errorf("renderProse(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatDate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"2024-03-05T10:00:00.000Z", "5 March 2024"},
		{"2024-03-05", "5 March 2024"},
		{"not a date", "not a date"},
	}
	for _, tt := range tests {
		if got := FormatDate(tt.input); got != tt.expected {
			t.Errorf("FormatDate(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestStars(t *testing.T) {
	if got := Stars(4); got != "★★★★☆" {
		t.Errorf("Stars(4) = %q", got)
	}
	if got := Stars(9); got != "★★★★★" {
		t.Errorf("Stars(9) = %q", got)
	}
	if got := Stars(-1); got != "☆☆☆☆☆" {
		t.Errorf("Stars(-1) = %q", got)
	}
}

func TestContactPageForm(t *testing.T) {
	site := Site{Name: "MKM Trees", URL: "https://example.com", TurnstileSiteKey: "site-key"}
	out := render(t, ContactPage(site, ContactState{
		Name:        "Sam",
		ServiceType: "Hedge cutting",
		Error:       "Invalid <email>",
		CSRFToken:   "tok123",
	}))

	for _, want := range []string{
		`name="_csrf" value="tok123"`,
		`name="name" value="Sam"`,
		`<option selected>Hedge cutting</option>`,
		`Invalid &lt;email&gt;`,
		`data-sitekey="site-key"`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
}

func TestContactPageSent(t *testing.T) {
	out := render(t, ContactPage(Site{Name: "MKM Trees"}, ContactState{Sent: true}))
	if !strings.Contains(out, "Thanks for getting in touch") {
		t.Fatalf("expected thank-you note")
	}
	if strings.Contains(out, "<form") {
		t.Fatalf("expected no form after a successful send")
	}
	if strings.Contains(out, "cf-turnstile") {
		t.Fatalf("expected no widget without a site key")
	}
}

func TestProjectPageGallery(t *testing.T) {
	out := render(t, ProjectPage(Site{Name: "MKM Trees", URL: "https://example.com"}, Project{
		Title:       "Oak & Ash",
		Slug:        "oak-ash",
		Description: "Crown reduction\n- **two** oaks",
		Images: []Image{
			{URL: "/media/after.webp", Alt: "after shot", Category: "after"},
			{URL: "/media/before.webp", Alt: "before shot", Caption: "Overgrown", Category: "before"},
		},
	}))

	if !strings.Contains(out, "<h1>Oak &amp; Ash</h1>") {
		t.Errorf("expected escaped title")
	}
	if !strings.Contains(out, "<li><strong>two</strong> oaks</li>") {
		t.Errorf("expected description rendered as prose")
	}
	before := strings.Index(out, "<h2>Before</h2>")
	after := strings.Index(out, "<h2>After</h2>")
	if before < 0 || after < 0 || before > after {
		t.Errorf("expected before section ahead of after section, got %d and %d", before, after)
	}
	if strings.Contains(out, "In progress") {
		t.Errorf("expected empty categories to be skipped")
	}
	if !strings.Contains(out, "<figcaption>Overgrown</figcaption>") {
		t.Errorf("expected caption")
	}
}

func TestBlogIndexNavAndPager(t *testing.T) {
	site := Site{Name: "MKM Trees", URL: "https://example.com"}
	out := render(t, BlogIndex(site,
		[]Post{{Title: "Gorse Clearance", Slug: "gorse clearance", PublishedAt: "2024-03-05"}},
		[]Tag{{Name: "Gorse", Slug: "gorse", Count: 2}},
		"gorse",
		Pager{Page: 2, TotalPages: 3, HasPrev: true, HasNext: true, Query: "tag=gorse"},
	))

	for _, want := range []string{
		"<title>Blog | MKM Trees</title>",
		`<link rel="canonical" href="https://example.com/blog/">`,
		`<a href="/blog/" aria-current="page">Blog</a>`,
		`<a href="/blog/?tag=gorse" aria-current="page">Gorse <small>(2)</small></a>`,
		`<a href="/blog/gorse%20clearance/">Gorse Clearance</a>`,
		`<a rel="prev" href="/blog/?page=1&amp;tag=gorse">`,
		`<a rel="next" href="/blog/?page=3&amp;tag=gorse">`,
		"<span>Page 2 of 3</span>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %q", want)
		}
	}
	if strings.Contains(out, `<a href="/" aria-current="page">`) {
		t.Errorf("home link should not be marked current on the blog")
	}
}

func TestPagerHiddenForSinglePage(t *testing.T) {
	out := render(t, PortfolioIndex(Site{Name: "MKM Trees"}, nil, nil, "", Pager{Page: 1, TotalPages: 1}))
	if strings.Contains(out, `class="pager"`) {
		t.Errorf("expected no pager for a single page")
	}
	if !strings.Contains(out, "No projects to show yet.") {
		t.Errorf("expected empty-state message")
	}
}

func TestPostPageJsonLD(t *testing.T) {
	out := render(t, PostPage(Site{Name: "MKM Trees", URL: "https://example.com"}, Post{
		Title:   "Felling </script> Safely",
		Slug:    "felling",
		Content: "<p>Body</p>",
	}))
	if !strings.Contains(out, `<script type="application/ld+json">`) {
		t.Fatalf("expected a JSON-LD block")
	}
	if strings.Count(out, "</script>") != 1 {
		t.Errorf("title must not close the JSON-LD script early")
	}
	if !strings.Contains(out, `<div class="content"><p>Body</p></div>`) {
		t.Errorf("expected content rendered unescaped")
	}
}
