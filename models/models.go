package models

import "time"

// Frontmatter holds the metadata block at the top of a post
type Frontmatter struct {
	Title string `json:"title"`
	// Date is kept as written by the author, parsing happens when the feed is built
	Date  string `json:"date"`
	Slug  string `json:"slug,omitempty"`
	Draft bool   `json:"draft,omitempty"`
}

// ContentItem is one published post as handed out by a content source
type ContentItem struct {
	Slug        string      `json:"slug"`
	Frontmatter Frontmatter `json:"frontmatter"`
	Body        string      `json:"body"`
}

// FeedEntry is a single syndicated item derived from a ContentItem
type FeedEntry struct {
	ID          string    `json:"id"`
	Link        string    `json:"link"`
	Title       string    `json:"title"`
	Content     string    `json:"content"`
	PublishDate time.Time `json:"publishDate"`
	// DateValid is false when the frontmatter date could not be parsed
	DateValid bool `json:"-"`
}

// FeedMetadata describes the channel
type FeedMetadata struct {
	Title       string
	Description string
	ID          string
	Link        string
	Copyright   string
	Generator   string
	AuthorName  string
	AuthorEmail string
	AuthorLink  string
	LastUpdated *time.Time
}
