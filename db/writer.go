package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"blogfeed/content"
	"blogfeed/models"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
	log "github.com/sirupsen/logrus"
)

type Writer struct {
	db *sql.DB
}

func NewWriter(ctx context.Context, database string) (*Writer, error) {
	db, err := connection(ctx, database, false)
	if err != nil {
		return nil, err
	}
	return &Writer{db: db}, nil
}

func (writer *Writer) Close() error {
	return writer.db.Close()
}

// Index replaces the contents of the index with every post in source, keeping
// the order source lists them in. Returns the number of posts written.
func (writer *Writer) Index(ctx context.Context, source content.Source) (int, error) {
	slugs, err := source.ListPosts(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list posts: %w", err)
	}

	items := make([]*models.ContentItem, 0, len(slugs))
	for _, slug := range slugs {
		item, err := source.GetPost(ctx, slug)
		if err != nil {
			return 0, fmt.Errorf("failed to load post %s: %w", slug, err)
		}
		items = append(items, item)
	}

	tx, err := writer.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	del := sqlbuilder.SQLite.NewDeleteBuilder()
	query, args := del.DeleteFrom("posts").Build()
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return 0, fmt.Errorf("delete error: %w", err)
	}

	if len(items) > 0 {
		now := time.Now().Unix()
		insert := sqlbuilder.SQLite.NewInsertBuilder()
		insert.InsertInto("posts").Cols("slug", "position", "title", "date", "body", "indexed_at")
		for position, item := range items {
			insert.Values(item.Slug, position, item.Frontmatter.Title, item.Frontmatter.Date, item.Body, now)
		}

		query, args = insert.Build()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return 0, fmt.Errorf("insert error: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit error: %w", err)
	}

	log.WithFields(log.Fields{
		"posts": len(items),
	}).Info("Indexed posts")

	return len(items), nil
}
