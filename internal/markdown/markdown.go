// Package markdown renders article content to HTML. Section numbers at the
// start of headings and numbered paragraphs are wrapped in styling spans
// before rendering so the client can align them typographically.
package markdown

import (
	"bytes"
	"regexp"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	// Matches headings that begin with a section number, e.g. "### 3.24. Title".
	headingNumberRe = regexp.MustCompile(`(?m)^(#{1,6})[ \t]+(\d+\.\d+\.?)[ \t]+(.+)$`)
	// Matches plain paragraphs that begin with a section number, e.g. "3.24. text".
	paragraphNumberRe = regexp.MustCompile(`(?m)^(\d+\.\d+\.)[ \t]+(.+)$`)
)

// AnnotateSectionNumbers wraps leading section numbers in heading-number and
// heading-title spans. The transform is pure and idempotent over content
// without section numbers.
//
//	"### 3.24. Group rules"  ->  `### <span class="heading-number">3.24.</span><span class="heading-title">Group rules</span>`
//	"3.24. Group rules"      ->  `<span class="heading-number">3.24.</span><span class="heading-title">Group rules</span>`
func AnnotateSectionNumbers(content string) string {
	out := headingNumberRe.ReplaceAllString(content,
		`$1 <span class="heading-number">$2</span><span class="heading-title">$3</span>`)
	// Heading lines no longer match here: they start with '#'.
	return paragraphNumberRe.ReplaceAllString(out,
		`<span class="heading-number">$1</span><span class="heading-title">$2</span>`)
}

// Renderer converts markdown content to HTML.
type Renderer struct {
	md goldmark.Markdown
}

// NewRenderer returns a Renderer configured for article content: GFM tables
// and strikethrough, newlines as hard breaks, and raw HTML passthrough so the
// section-number spans survive rendering.
func NewRenderer() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				html.WithHardWraps(),
				html.WithUnsafe(),
			),
		),
	}
}

// Render runs the section-number transform and converts the result to HTML.
// On failure the raw content is returned so a bad article never breaks a page.
func (r *Renderer) Render(content string) string {
	annotated := AnnotateSectionNumbers(content)

	var buf bytes.Buffer
	if err := r.md.Convert([]byte(annotated), &buf); err != nil {
		return content
	}
	return buf.String()
}
