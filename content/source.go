// Package content reads blog posts from wherever they are kept
package content

import (
	"context"
	"errors"
	"strings"
	"time"

	"blogfeed/models"
)

// ErrNotFound is returned by GetPost when no post has the given slug
var ErrNotFound = errors.New("post not found")

// Source lists and loads posts. ListPosts returns slugs in feed order, usually
// newest first.
type Source interface {
	ListPosts(ctx context.Context) ([]string, error)
	GetPost(ctx context.Context, slug string) (*models.ContentItem, error)
}

// Layouts tried by ParseDate, most specific first
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
}

// ParseDate parses a frontmatter date. Values without a zone are read as UTC.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	var firstErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}
