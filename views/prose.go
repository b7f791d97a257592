package views

import (
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/a-h/templ"
)

var (
	reBold = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reLink = regexp.MustCompile(`\[(.*?)\]\((.*?)\)`)
)

// Prose renders plain text from admin fields (project descriptions, review
// bodies) as HTML: blank lines separate paragraphs, "- " lines form lists,
// and **bold** and [text](url) are recognised inline. Everything else is
// escaped.
func Prose(text string) templ.Component {
	return templ.Raw(renderProse(text))
}

func renderProse(text string) string {
	var b strings.Builder
	inPara, inList := false, false
	closeBlocks := func() {
		if inPara {
			b.WriteString("</p>")
			inPara = false
		}
		if inList {
			b.WriteString("</ul>")
			inList = false
		}
	}
	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(strings.TrimRight(raw, "\r"))
		switch {
		case line == "":
			closeBlocks()
		case strings.HasPrefix(line, "- "):
			if inPara {
				b.WriteString("</p>")
				inPara = false
			}
			if !inList {
				b.WriteString("<ul>")
				inList = true
			}
			b.WriteString("<li>" + formatInline(strings.TrimSpace(line[2:])) + "</li>")
		default:
			if inList {
				b.WriteString("</ul>")
				inList = false
			}
			if inPara {
				b.WriteString("<br/>")
			} else {
				b.WriteString("<p>")
				inPara = true
			}
			b.WriteString(formatInline(line))
		}
	}
	closeBlocks()
	return b.String()
}

func formatInline(s string) string {
	escaped := html.EscapeString(s)
	escaped = reLink.ReplaceAllStringFunc(escaped, func(m string) string {
		match := reLink.FindStringSubmatch(m)
		href := safeURL(match[2])
		if href == "" {
			return match[1]
		}
		return `<a href="` + href + `">` + match[1] + `</a>`
	})
	return reBold.ReplaceAllString(escaped, "<strong>$1</strong>")
}

// safeURL allows site-relative links and http(s), mailto and tel schemes.
func safeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") && !strings.HasPrefix(val, "//") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	}
	return ""
}
