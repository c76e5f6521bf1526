package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"blogfeed/content"
	"blogfeed/models"

	sqlbuilder "github.com/huandu/go-sqlbuilder"
)

// Store serves posts from the SQLite index in the order they were indexed
type Store struct {
	db *sql.DB
}

func NewStore(ctx context.Context, database string) (*Store, error) {
	db, err := connection(ctx, database, true)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListPosts(ctx context.Context) ([]string, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("slug").From("posts").OrderBy("position").Asc()

	query, args := sb.Build()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	slugs := []string{}
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}
		slugs = append(slugs, slug)
	}

	return slugs, rows.Err()
}

func (s *Store) GetPost(ctx context.Context, slug string) (*models.ContentItem, error) {
	sb := sqlbuilder.SQLite.NewSelectBuilder()
	sb.Select("slug", "title", "date", "body").From("posts").Where(sb.Equal("slug", slug))

	query, args := sb.Build()
	var item models.ContentItem
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&item.Slug,
		&item.Frontmatter.Title,
		&item.Frontmatter.Date,
		&item.Body,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", content.ErrNotFound, slug)
	}
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}

	return &item, nil
}

var _ content.Source = (*Store)(nil)
