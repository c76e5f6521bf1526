package feeds_test

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"blogfeed/config"
	"blogfeed/feeds"
	"blogfeed/markdown"
	"blogfeed/models"

	"github.com/mmcdole/gofeed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubRenderer returns fixed markup for known bodies and wraps anything else
// in a paragraph
type stubRenderer struct {
	fixed map[string]string
	delay func(body string) time.Duration
	calls atomic.Int64
}

func (r *stubRenderer) Parse(body string) (*markdown.Document, error) {
	r.calls.Add(1)
	if body == "FAIL" {
		return nil, errors.New("renderer exploded")
	}
	if r.delay != nil {
		time.Sleep(r.delay(body))
	}
	return &markdown.Document{Source: []byte(body)}, nil
}

func (r *stubRenderer) RenderStatic(doc *markdown.Document) (string, error) {
	body := string(doc.Source)
	if markup, ok := r.fixed[body]; ok {
		return markup, nil
	}
	return "<p>" + body + "</p>", nil
}

type memorySource struct {
	order []string
	items map[string]*models.ContentItem
}

func newMemorySource(items ...*models.ContentItem) *memorySource {
	src := &memorySource{items: map[string]*models.ContentItem{}}
	for _, item := range items {
		src.order = append(src.order, item.Slug)
		src.items[item.Slug] = item
	}
	return src
}

func (s *memorySource) ListPosts(ctx context.Context) ([]string, error) {
	return s.order, nil
}

func (s *memorySource) GetPost(ctx context.Context, slug string) (*models.ContentItem, error) {
	item, ok := s.items[slug]
	if !ok {
		return nil, fmt.Errorf("no post %s", slug)
	}
	return item, nil
}

func post(slug, title, date, body string) *models.ContentItem {
	return &models.ContentItem{
		Slug:        slug,
		Frontmatter: models.Frontmatter{Title: title, Date: date},
		Body:        body,
	}
}

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func testConfig(policy string) *config.Config {
	cfg := config.Default()
	cfg.Feed.InvalidDates = policy
	return &cfg
}

func newBuilder(t *testing.T, policy string, renderer markdown.Renderer, items ...*models.ContentItem) *feeds.Builder {
	t.Helper()
	return feeds.NewBuilder(testConfig(policy), newMemorySource(items...), renderer, feeds.WithClock(func() time.Time {
		return fixedNow
	}))
}

// rssDoc mirrors the parts of the document asserted on with encoding/xml
type rssDoc struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel struct {
		Title          string `xml:"title"`
		Link           string `xml:"link"`
		Description    string `xml:"description"`
		Generator      string `xml:"generator"`
		Copyright      string `xml:"copyright"`
		ManagingEditor string `xml:"managingEditor"`
		LastBuildDate  string `xml:"lastBuildDate"`
		Items          []struct {
			Title string `xml:"title"`
			Link  string `xml:"link"`
			GUID  struct {
				Value       string `xml:",chardata"`
				IsPermaLink string `xml:"isPermaLink,attr"`
			} `xml:"guid"`
			PubDate     string `xml:"pubDate"`
			Description string `xml:"description"`
			Encoded     string `xml:"encoded"`
		} `xml:"item"`
	} `xml:"channel"`
}

func parseDoc(t *testing.T, doc string) rssDoc {
	t.Helper()
	var parsed rssDoc
	require.NoError(t, xml.Unmarshal([]byte(doc), &parsed))
	return parsed
}

func TestBuildScenarioOrderAndLastUpdated(t *testing.T) {
	b := newBuilder(t, config.InvalidDatesFail, &stubRenderer{},
		post("first", "A", "2023-01-01", "one"),
		post("second", "B2", "2023-06-15", "two"),
		post("third", "B", "2023-06-15", "three"),
	)

	doc, err := b.Build(context.Background())
	require.NoError(t, err)

	parsed := parseDoc(t, doc)
	assert.Equal(t, "2.0", parsed.Version)
	require.Len(t, parsed.Channel.Items, 3)
	assert.Equal(t, "A", parsed.Channel.Items[0].Title)
	assert.Equal(t, "B2", parsed.Channel.Items[1].Title)
	assert.Equal(t, "B", parsed.Channel.Items[2].Title)
	assert.Equal(t, "Thu, 15 Jun 2023 00:00:00 +0000", parsed.Channel.LastBuildDate)
	assert.Equal(t, "Sun, 01 Jan 2023 00:00:00 +0000", parsed.Channel.Items[0].PubDate)
}

func TestBuildChannelMetadata(t *testing.T) {
	b := newBuilder(t, config.InvalidDatesFail, &stubRenderer{}, post("hello-world", "Hello", "2023-01-01", "hi"))

	doc, err := b.Build(context.Background())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(doc, "<?xml"))

	channel := parseDoc(t, doc).Channel
	assert.Equal(t, "Leah Lundqvist's Blog", channel.Title)
	assert.Equal(t, "https://x2f.dev", channel.Link)
	assert.Equal(t, "My personal sliver of the web", channel.Description)
	assert.Equal(t, "blogfeed", channel.Generator)
	assert.Equal(t, "All rights reserved 2026, Leah Lundqvist", channel.Copyright)
	assert.Equal(t, "leah@pigeon.sh (Leah Lundqvist)", channel.ManagingEditor)
}

func TestBuildPermalink(t *testing.T) {
	b := newBuilder(t, config.InvalidDatesFail, &stubRenderer{}, post("hello-world", "Hello", "2023-01-01", "hi"))

	feed, err := b.BuildFeed(context.Background())
	require.NoError(t, err)
	require.Len(t, feed.Entries, 1)
	assert.Equal(t, "https://x2f.dev/blog/hello-world", feed.Entries[0].ID)
	assert.Equal(t, "https://x2f.dev/blog/hello-world", feed.Entries[0].Link)

	doc, err := feed.Render()
	require.NoError(t, err)
	item := parseDoc(t, doc).Channel.Items[0]
	assert.Equal(t, "https://x2f.dev/blog/hello-world", item.Link)
	assert.Equal(t, "https://x2f.dev/blog/hello-world", item.GUID.Value)
	assert.Equal(t, "true", item.GUID.IsPermaLink)
}

func TestBuildEmpty(t *testing.T) {
	b := newBuilder(t, config.InvalidDatesFail, &stubRenderer{})

	feed, err := b.BuildFeed(context.Background())
	require.NoError(t, err)
	assert.Nil(t, feed.Metadata.LastUpdated)

	doc, err := feed.Render()
	require.NoError(t, err)
	assert.NotContains(t, doc, "lastBuildDate")

	channel := parseDoc(t, doc).Channel
	assert.Equal(t, "Leah Lundqvist's Blog", channel.Title)
	assert.Equal(t, "https://x2f.dev", channel.Link)
	assert.Equal(t, "My personal sliver of the web", channel.Description)
	assert.Empty(t, channel.Items)
}

func TestBuildEmbeddedMarkupStaysWellFormed(t *testing.T) {
	markup := `<p>a < b && c ]]> d <![CDATA[x]]></p>`
	renderer := &stubRenderer{fixed: map[string]string{"tricky": markup}}
	b := newBuilder(t, config.InvalidDatesFail, renderer, post("tricky", "Tricky & <odd>", "2023-01-01", "tricky"))

	doc, err := b.Build(context.Background())
	require.NoError(t, err)

	item := parseDoc(t, doc).Channel.Items[0]
	assert.Equal(t, "Tricky & <odd>", item.Title)
	assert.True(t, strings.HasPrefix(item.Description, markup))
	assert.True(t, strings.HasPrefix(item.Encoded, markup))
	assert.Equal(t, item.Description, item.Encoded)

	// a feed reader parser accepts it too
	parsed, err := gofeed.NewParser().ParseString(doc)
	require.NoError(t, err)
	require.Len(t, parsed.Items, 1)
	assert.Equal(t, "https://x2f.dev/blog/tricky", parsed.Items[0].Link)
}

func TestBuildDropsCharactersXMLCannotHold(t *testing.T) {
	renderer := &stubRenderer{fixed: map[string]string{
		"control": "<p>a\x0bb ]]> <c></p>",
		"invalid": "<p>x\xffy</p>",
	}}
	b := newBuilder(t, config.InvalidDatesFail, renderer,
		post("control", "Bell\x07 title", "2023-01-02", "control"),
		post("invalid", "Invalid", "2023-01-01", "invalid"),
	)

	doc, err := b.Build(context.Background())
	require.NoError(t, err)

	items := parseDoc(t, doc).Channel.Items
	require.Len(t, items, 2)
	assert.Equal(t, "Bell title", items[0].Title)
	assert.True(t, strings.HasPrefix(items[0].Encoded, "<p>ab ]]> <c></p>"), items[0].Encoded)
	assert.True(t, strings.HasPrefix(items[0].Description, "<p>ab ]]> <c></p>"), items[0].Description)
	assert.True(t, strings.HasPrefix(items[1].Encoded, "<p>x�y</p>"), items[1].Encoded)

	_, err = gofeed.NewParser().ParseString(doc)
	require.NoError(t, err)
}

func TestBuildReplyAffordance(t *testing.T) {
	title := `Hello, "World"!`
	b := newBuilder(t, config.InvalidDatesFail, &stubRenderer{}, post("hello", title, "2023-01-01", "body"))

	doc, err := b.Build(context.Background())
	require.NoError(t, err)

	content := parseDoc(t, doc).Channel.Items[0].Encoded
	assert.True(t, strings.HasPrefix(content, "<p>body</p>"))
	assert.Contains(t, content, "Reply via e-mail")

	start := strings.Index(content, `href="`) + len(`href="`)
	end := strings.Index(content[start:], `"`) + start
	href := content[start:end]
	assert.NotContains(t, href, " ")
	assert.NotContains(t, href, `"`)

	u, err := url.Parse(href)
	require.NoError(t, err)
	assert.Equal(t, "mailto", u.Scheme)
	assert.Equal(t, "leah@pigeon.sh", u.Opaque)
	assert.Equal(t, "Reply to: “"+title+"”", u.Query().Get("subject"))
}

func TestReplyLink(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		expected string
	}{
		{
			name:     "plain",
			title:    "Hi",
			expected: "mailto:me@x.dev?subject=Reply%20to%3A%20%E2%80%9CHi%E2%80%9D",
		},
		{
			name:     "plus and ampersand",
			title:    "C++ & Go",
			expected: "mailto:me@x.dev?subject=Reply%20to%3A%20%E2%80%9CC%2B%2B%20%26%20Go%E2%80%9D",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := feeds.ReplyLink("me@x.dev", tt.title)
			assert.Equal(t, tt.expected, link)

			u, err := url.Parse(link)
			require.NoError(t, err)
			assert.Equal(t, "Reply to: “"+tt.title+"”", u.Query().Get("subject"))
		})
	}
}

func TestBuildInvalidDatePolicies(t *testing.T) {
	items := func() []*models.ContentItem {
		return []*models.ContentItem{
			post("good", "Good", "2023-03-03", "g"),
			post("bad", "Bad", "not a date", "b"),
		}
	}

	t.Run("fail", func(t *testing.T) {
		b := newBuilder(t, config.InvalidDatesFail, &stubRenderer{}, items()...)
		_, err := b.Build(context.Background())
		assert.True(t, errors.Is(err, feeds.ErrInvalidDate))
		assert.Contains(t, err.Error(), "not a date")
	})

	t.Run("skip", func(t *testing.T) {
		b := newBuilder(t, config.InvalidDatesSkip, &stubRenderer{}, items()...)
		feed, err := b.BuildFeed(context.Background())
		require.NoError(t, err)
		require.Len(t, feed.Entries, 1)
		assert.Equal(t, "Good", feed.Entries[0].Title)
	})

	t.Run("keep", func(t *testing.T) {
		b := newBuilder(t, config.InvalidDatesKeep, &stubRenderer{}, items()...)
		feed, err := b.BuildFeed(context.Background())
		require.NoError(t, err)
		require.Len(t, feed.Entries, 2)
		require.NotNil(t, feed.Metadata.LastUpdated)
		assert.True(t, time.Date(2023, 3, 3, 0, 0, 0, 0, time.UTC).Equal(*feed.Metadata.LastUpdated))

		doc, err := feed.Render()
		require.NoError(t, err)
		items := parseDoc(t, doc).Channel.Items
		require.Len(t, items, 2)
		assert.NotEmpty(t, items[0].PubDate)
		assert.Empty(t, items[1].PubDate)
	})
}

func TestBuildRendererFailureAborts(t *testing.T) {
	b := newBuilder(t, config.InvalidDatesFail, &stubRenderer{},
		post("ok", "Ok", "2023-01-01", "fine"),
		post("broken", "Broken", "2023-01-02", "FAIL"),
	)

	_, err := b.Build(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Contains(t, err.Error(), "renderer exploded")
}

func TestBuildSourceFailureAborts(t *testing.T) {
	src := newMemorySource(post("a", "A", "2023-01-01", "x"))
	src.order = append(src.order, "ghost")
	b := feeds.NewBuilder(testConfig(config.InvalidDatesFail), src, &stubRenderer{})

	_, err := b.Build(context.Background())
	assert.Error(t, err)
}

func TestBuildKeepsOrderUnderConcurrency(t *testing.T) {
	var items []*models.ContentItem
	for i := 0; i < 20; i++ {
		items = append(items, post(fmt.Sprintf("post-%02d", i), fmt.Sprintf("Post %02d", i), "2023-01-01", fmt.Sprintf("%02d", i)))
	}

	// earlier posts take longer so they finish last
	renderer := &stubRenderer{delay: func(body string) time.Duration {
		var n int
		fmt.Sscanf(body, "%d", &n)
		return time.Duration(20-n) * time.Millisecond
	}}

	cfg := testConfig(config.InvalidDatesFail)
	cfg.Feed.Concurrency = 8
	b := feeds.NewBuilder(cfg, newMemorySource(items...), renderer)

	feed, err := b.BuildFeed(context.Background())
	require.NoError(t, err)
	require.Len(t, feed.Entries, 20)
	for i, entry := range feed.Entries {
		assert.Equal(t, fmt.Sprintf("Post %02d", i), entry.Title)
	}
	assert.Equal(t, int64(20), renderer.calls.Load())
}

func TestBuildWithGoldmark(t *testing.T) {
	b := newBuilder(t, config.InvalidDatesFail, markdown.NewGoldmark(),
		post("md", "Markdown", "2023-06-15T08:00:00+02:00", "# Hi\n\nSome `code` & <b>html</b>\n"))

	doc, err := b.Build(context.Background())
	require.NoError(t, err)

	parsed, err := gofeed.NewParser().ParseString(doc)
	require.NoError(t, err)
	require.Len(t, parsed.Items, 1)
	assert.Equal(t, "Markdown", parsed.Items[0].Title)
	assert.Equal(t, "https://x2f.dev/blog/md", parsed.Items[0].Link)
	assert.Contains(t, parsed.Items[0].Content, `<h1 id="hi">Hi</h1>`)
	assert.Contains(t, parsed.Items[0].Content, "<code>code</code> &amp; <b>html</b>")
	require.NotNil(t, parsed.Items[0].PublishedParsed)
	assert.True(t, time.Date(2023, 6, 15, 6, 0, 0, 0, time.UTC).Equal(*parsed.Items[0].PublishedParsed))
}

func TestLastUpdated(t *testing.T) {
	var agg feeds.LastUpdated
	_, ok := agg.Value()
	assert.False(t, ok)

	utc := time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC)
	sameInstant := utc.In(time.FixedZone("plus2", 2*60*60))

	agg.Observe(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC))
	agg.Observe(utc)
	agg.Observe(sameInstant)
	agg.Observe(time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC))

	value, ok := agg.Value()
	require.True(t, ok)
	assert.True(t, utc.Equal(value))
	// an equal date does not replace the first one seen
	assert.Equal(t, time.UTC, value.Location())

	var reversed feeds.LastUpdated
	reversed.Observe(sameInstant)
	reversed.Observe(utc)
	value, _ = reversed.Value()
	assert.True(t, utc.Equal(value))
}
