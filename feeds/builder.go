// Package feeds builds the RSS feed for the blog
package feeds

import (
	"context"
	"errors"
	"fmt"
	"time"

	"blogfeed/config"
	"blogfeed/content"
	"blogfeed/markdown"
	"blogfeed/models"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrInvalidDate is returned when a post date does not parse and the
// configured policy is to fail
var ErrInvalidDate = errors.New("invalid post date")

// Feed is a fully assembled feed ready to be serialized
type Feed struct {
	Metadata models.FeedMetadata
	Entries  []*models.FeedEntry
}

// Render serializes the feed as an RSS 2.0 document
func (f *Feed) Render() (string, error) {
	return Serialize(f.Metadata, f.Entries)
}

// Builder runs the whole pipeline. It holds no state between builds and is
// safe for concurrent use.
type Builder struct {
	config    *config.Config
	source    content.Source
	assembler *Assembler
	now       func() time.Time
}

type Option func(*Builder)

// WithClock overrides the clock used for the copyright year
func WithClock(now func() time.Time) Option {
	return func(b *Builder) {
		b.now = now
	}
}

func NewBuilder(cfg *config.Config, source content.Source, renderer markdown.Renderer, opts ...Option) *Builder {
	b := &Builder{
		config:    cfg,
		source:    source,
		assembler: NewAssembler(cfg.Site.Origin, cfg.Author.Email, renderer),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build returns the serialized feed document
func (b *Builder) Build(ctx context.Context) (string, error) {
	feed, err := b.BuildFeed(ctx)
	if err != nil {
		return "", err
	}
	return feed.Render()
}

// BuildFeed loads and renders every post. Posts are rendered concurrently but
// entries keep the order the source listed them in.
func (b *Builder) BuildFeed(ctx context.Context) (*Feed, error) {
	start := b.now()

	slugs, err := b.source.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	policy := b.config.Feed.InvalidDates
	rendered := make([]*models.FeedEntry, len(slugs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(b.config.Feed.Concurrency, 1))
	for i, slug := range slugs {
		g.Go(func() error {
			item, err := b.source.GetPost(gctx, slug)
			if err != nil {
				return fmt.Errorf("failed to load post %s: %w", slug, err)
			}

			entry, err := b.assembler.Assemble(item)
			if err != nil {
				return fmt.Errorf("failed to assemble post %s: %w", slug, err)
			}

			if !entry.DateValid && policy == config.InvalidDatesFail {
				return fmt.Errorf("post %s: %w %q", slug, ErrInvalidDate, item.Frontmatter.Date)
			}

			rendered[i] = entry
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var lastUpdated LastUpdated
	entries := make([]*models.FeedEntry, 0, len(rendered))
	for i, entry := range rendered {
		if !entry.DateValid {
			if policy == config.InvalidDatesSkip {
				log.WithFields(log.Fields{
					"slug": slugs[i],
				}).Warn("Skipping post with invalid date")
				continue
			}
		} else {
			lastUpdated.Observe(entry.PublishDate)
		}
		entries = append(entries, entry)
	}

	metadata := b.metadata()
	if latest, ok := lastUpdated.Value(); ok {
		metadata.LastUpdated = &latest
	}

	log.WithFields(log.Fields{
		"entries":  len(entries),
		"duration": b.now().Sub(start),
	}).Debug("Built feed")

	return &Feed{
		Metadata: metadata,
		Entries:  entries,
	}, nil
}

func (b *Builder) metadata() models.FeedMetadata {
	site := b.config.Site
	author := b.config.Author

	return models.FeedMetadata{
		Title:       site.Title,
		Description: site.Description,
		ID:          site.ID,
		Link:        site.Origin,
		Copyright:   fmt.Sprintf("All rights reserved %d, %s", b.now().Year(), site.CopyrightHolder),
		Generator:   b.config.Feed.Generator,
		AuthorName:  author.Name,
		AuthorEmail: author.Email,
		AuthorLink:  author.Link,
	}
}
