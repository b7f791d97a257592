package mkmtrees

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/ejrshadbolt/mkmtrees-sub001/views"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Winter Felling", "winter-felling"},
		{"  Tree's Edge!  ", "trees-edge"},
		{"Oak & Ash -- 2024", "oak-ash-2024"},
		{"Café", "caf"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.input); got != tt.expected {
			t.Errorf("Slugify(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestSlugOr(t *testing.T) {
	if got := SlugOr("Custom Slug", "Title"); got != "custom-slug" {
		t.Errorf("expected explicit slug, got %q", got)
	}
	if got := SlugOr("???", "Stump Grinding"); got != "stump-grinding" {
		t.Errorf("expected fallback slug, got %q", got)
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base     string
		segments []string
		expected string
	}{
		{"https://example.com", nil, "https://example.com/"},
		{"https://example.com/", []string{"blog", "winter-felling"}, "https://example.com/blog/winter-felling/"},
		{"https://example.com/site", []string{"blog"}, "https://example.com/site/blog/"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segments...); got != tt.expected {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segments, got, tt.expected)
		}
	}
}

func TestFilterEmpty(t *testing.T) {
	got := FilterEmpty([]string{" felling ", "", "  ", "hedges"})
	if strings.Join(got, ",") != "felling,hedges" {
		t.Errorf("unexpected result %q", got)
	}
	if FilterEmpty([]string{" "}) != nil {
		t.Errorf("expected nil for all-blank input")
	}
}

func TestRenderStatusHead(t *testing.T) {
	e := echo.New()
	for _, method := range []string{http.MethodGet, http.MethodHead} {
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(method, "/", nil), rec)
		if err := RenderStatus(c, http.StatusNotFound, views.NotFound(views.Site{Name: "MKM Trees"})); err != nil {
			t.Fatalf("%s: render failed: %v", method, err)
		}
		if rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", method, rec.Code)
		}
		if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, "text/html") {
			t.Errorf("%s: unexpected content type %q", method, ct)
		}
		hasBody := strings.Contains(rec.Body.String(), "Page not found")
		if hasBody != (method == http.MethodGet) {
			t.Errorf("%s: unexpected body %q", method, rec.Body.String())
		}
	}
}
