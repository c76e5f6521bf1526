package content

import (
	"cmp"
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"slices"
	"strings"
	"sync"
	"time"

	"blogfeed/models"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// Dir reads posts from markdown files in a single directory. Every ListPosts
// rescans the directory, GetPost answers from the most recent scan and only
// rescans for slugs it has not seen.
type Dir struct {
	fsys fs.FS

	mu    sync.RWMutex
	index map[string]*models.ContentItem
}

type dirPost struct {
	item      *models.ContentItem
	published time.Time
	dateValid bool
}

// NewDir returns a Source over the *.md files in root
func NewDir(root string) *Dir {
	return NewDirFS(os.DirFS(root))
}

func NewDirFS(fsys fs.FS) *Dir {
	return &Dir{fsys: fsys}
}

// ListPosts returns the slugs of all non-draft posts, newest first. Posts with
// an unparseable date go last, ties are ordered by slug.
func (d *Dir) ListPosts(ctx context.Context) ([]string, error) {
	posts, err := d.scan(ctx)
	if err != nil {
		return nil, err
	}

	return lo.Map(posts, func(p dirPost, _ int) string {
		return p.item.Slug
	}), nil
}

func (d *Dir) GetPost(ctx context.Context, slug string) (*models.ContentItem, error) {
	d.mu.RLock()
	item, ok := d.index[slug]
	d.mu.RUnlock()
	if ok {
		return item, nil
	}

	posts, err := d.scan(ctx)
	if err != nil {
		return nil, err
	}

	post, ok := lo.Find(posts, func(p dirPost) bool {
		return p.item.Slug == slug
	})
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, slug)
	}
	return post.item, nil
}

func (d *Dir) scan(ctx context.Context) ([]dirPost, error) {
	files, err := fs.Glob(d.fsys, "*.md")
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	posts := make([]dirPost, 0, len(files))
	seen := make(map[string]string, len(files))
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		data, err := fs.ReadFile(d.fsys, file)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, err)
		}

		frontmatter, body, err := ParseDocument(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}

		slug := frontmatter.Slug
		if slug == "" {
			slug = strings.TrimSuffix(path.Base(file), path.Ext(file))
		}
		if other, ok := seen[slug]; ok {
			return nil, fmt.Errorf("duplicate slug %q in %s and %s", slug, other, file)
		}
		seen[slug] = file

		published, err := ParseDate(frontmatter.Date)
		if err != nil {
			log.WithFields(log.Fields{
				"file": file,
				"date": frontmatter.Date,
			}).Debug("Post date does not parse")
		}

		posts = append(posts, dirPost{
			item: &models.ContentItem{
				Slug:        slug,
				Frontmatter: frontmatter,
				Body:        body,
			},
			published: published,
			dateValid: err == nil,
		})
	}

	posts = lo.Filter(posts, func(p dirPost, _ int) bool {
		return !p.item.Frontmatter.Draft
	})

	slices.SortStableFunc(posts, func(a, b dirPost) int {
		if a.dateValid != b.dateValid {
			if a.dateValid {
				return -1
			}
			return 1
		}
		if c := b.published.Compare(a.published); c != 0 {
			return c
		}
		return cmp.Compare(a.item.Slug, b.item.Slug)
	})

	index := lo.SliceToMap(posts, func(p dirPost) (string, *models.ContentItem) {
		return p.item.Slug, p.item
	})
	d.mu.Lock()
	d.index = index
	d.mu.Unlock()

	return posts, nil
}

var _ Source = (*Dir)(nil)
