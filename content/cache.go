package content

import (
	"context"
	"slices"
	"time"

	"blogfeed/models"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const listKey = ""

// Cached memoizes another Source for a fixed time. Errors are not cached.
type Cached struct {
	source Source
	lists  *expirable.LRU[string, []string]
	posts  *expirable.LRU[string, *models.ContentItem]
}

func NewCached(source Source, size int, ttl time.Duration) *Cached {
	return &Cached{
		source: source,
		lists:  expirable.NewLRU[string, []string](1, nil, ttl),
		posts:  expirable.NewLRU[string, *models.ContentItem](size, nil, ttl),
	}
}

func (c *Cached) ListPosts(ctx context.Context) ([]string, error) {
	if slugs, ok := c.lists.Get(listKey); ok {
		return slices.Clone(slugs), nil
	}

	slugs, err := c.source.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	c.lists.Add(listKey, slices.Clone(slugs))
	return slugs, nil
}

func (c *Cached) GetPost(ctx context.Context, slug string) (*models.ContentItem, error) {
	if item, ok := c.posts.Get(slug); ok {
		return cloneItem(item), nil
	}

	item, err := c.source.GetPost(ctx, slug)
	if err != nil {
		return nil, err
	}
	c.posts.Add(slug, cloneItem(item))
	return item, nil
}

func cloneItem(item *models.ContentItem) *models.ContentItem {
	clone := *item
	return &clone
}

// Purge drops everything cached so far
func (c *Cached) Purge() {
	c.lists.Purge()
	c.posts.Purge()
}

var _ Source = (*Cached)(nil)
