// Package render turns resolved content blocks into article HTML.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/renderer/html"
)

// Block is a fully resolved content block. Fields are already-final text
// or markup; the renderer does not escape them.
type Block struct {
	ID          string   `json:"id"`
	Title       string   `json:"title,omitempty"`
	Hook        string   `json:"hook,omitempty"`
	Pains       []string `json:"pains,omitempty"`
	Solutions   []string `json:"solutions,omitempty"`
	ValuePoints []string `json:"value_points,omitempty"`
	Content     string   `json:"content,omitempty"`
	CTA         string   `json:"cta,omitempty"`
}

// Article renders blocks in order, separated by a blank line.
func Article(blocks []Block) string {
	parts := make([]string, len(blocks))
	for i, b := range blocks {
		parts[i] = Section(b)
	}
	return strings.Join(parts, "\n\n")
}

// Section renders one block. Empty fields produce no markup at all.
func Section(b Block) string {
	var sb strings.Builder

	if b.Title != "" {
		fmt.Fprintf(&sb, "<h2>%s</h2>\n", b.Title)
	}
	if b.Hook != "" {
		fmt.Fprintf(&sb, "<p class=\"lead\"><strong>%s</strong></p>\n", b.Hook)
	}
	if items := nonEmpty(b.Pains); len(items) > 0 {
		sb.WriteString("<ul>\n")
		for _, p := range items {
			fmt.Fprintf(&sb, "  <li>%s</li>\n", p)
		}
		sb.WriteString("</ul>\n")
	}
	for _, s := range nonEmpty(b.Solutions) {
		fmt.Fprintf(&sb, "<p>%s</p>\n", s)
	}
	if items := nonEmpty(b.ValuePoints); len(items) > 0 {
		sb.WriteString("<ul class=\"value-points\">\n")
		for _, v := range items {
			fmt.Fprintf(&sb, "  <li>✅ %s</li>\n", v)
		}
		sb.WriteString("</ul>\n")
	}
	if b.Content != "" {
		fmt.Fprintf(&sb, "<div class=\"block-content\">\n%s\n</div>\n", b.Content)
	}
	if b.CTA != "" {
		fmt.Fprintf(&sb, "<div class=\"cta-box\"><p>%s</p></div>\n", b.CTA)
	}

	return fmt.Sprintf("<section class=\"content-block\" id=\"%s\">\n%s</section>", b.ID, sb.String())
}

func nonEmpty(items []string) []string {
	var out []string
	for _, it := range items {
		if strings.TrimSpace(it) != "" {
			out = append(out, it)
		}
	}
	return out
}

// markdown passes raw HTML through so block authors can mix markup into
// markdown content.
var markdown = goldmark.New(goldmark.WithRendererOptions(html.WithUnsafe()))

// Markdown converts markdown source to HTML.
func Markdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return strings.TrimSpace(buf.String()), nil
}
