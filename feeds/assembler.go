package feeds

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"blogfeed/content"
	"blogfeed/markdown"
	"blogfeed/models"
)

// Assembler turns posts into feed entries
type Assembler struct {
	origin     string
	replyEmail string
	renderer   markdown.Renderer
}

// NewAssembler creates an assembler publishing posts under origin/blog/ with
// a reply link to replyEmail
func NewAssembler(origin string, replyEmail string, renderer markdown.Renderer) *Assembler {
	return &Assembler{
		origin:     strings.TrimRight(origin, "/"),
		replyEmail: replyEmail,
		renderer:   renderer,
	}
}

// Permalink returns the canonical URL of a post
func (a *Assembler) Permalink(slug string) string {
	return a.origin + "/blog/" + slug
}

// Assemble renders one post. An unparseable date is not an error here, the
// entry comes back with DateValid unset and the caller decides what to do.
func (a *Assembler) Assemble(item *models.ContentItem) (*models.FeedEntry, error) {
	doc, err := a.renderer.Parse(item.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse markdown: %w", err)
	}

	markup, err := a.renderer.RenderStatic(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}

	publishDate, err := content.ParseDate(item.Frontmatter.Date)
	link := a.Permalink(item.Slug)

	return &models.FeedEntry{
		ID:          link,
		Link:        link,
		Title:       item.Frontmatter.Title,
		Content:     markup + a.replyMarkup(item.Frontmatter.Title),
		PublishDate: publishDate,
		DateValid:   err == nil,
	}, nil
}

func (a *Assembler) replyMarkup(title string) string {
	return fmt.Sprintf(`<p><a href="%s">Reply via e-mail</a></p>`, html.EscapeString(ReplyLink(a.replyEmail, title)))
}

// ReplyLink builds the mailto link for replying to a post. The subject is
// percent encoded with spaces as %20 so mail clients do not show plus signs.
func ReplyLink(email string, title string) string {
	subject := url.QueryEscape("Reply to: “" + title + "”")
	subject = strings.ReplaceAll(subject, "+", "%20")
	return "mailto:" + email + "?subject=" + subject
}
