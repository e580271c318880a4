package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SayaAndy/saya-today-gallery/internal/frontmatter"
	"github.com/SayaAndy/saya-today-gallery/internal/store"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	queryPostsByCategory = `
	SELECT contents.cid, contents.title, contents.text, contents.created
	FROM relationships
	INNER JOIN contents ON contents.cid = relationships.cid
	WHERE relationships.mid = ? AND contents.type = ? AND contents.status = ?
	ORDER BY contents.created DESC, contents.cid DESC;`

	queryPost = `
	SELECT cid, title, text, created
	FROM contents
	WHERE cid = ? AND type = ? AND status = ?;`
)

type Store struct {
	db *sql.DB
}

var _ store.Store = &Store{}

func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("fail to initialize db: %w", err)
	}

	if err = migrateUp(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func migrateUp(db *sql.DB) error {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("fail to read embedded migrations: %w", err)
	}

	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("fail to initialize driver for migrating db: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("fail to initialize migration client: %w", err)
	}

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("fail to apply migrations: %w", err)
	}
	slog.Debug("successfully applied migrations")

	return nil
}

func (s *Store) Post(ctx context.Context, id int64) (*store.Post, error) {
	row := s.db.QueryRowContext(ctx, queryPost, id, frontmatter.TypePost, frontmatter.StatusPublish)

	post, err := scanPost(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("post %d: %w", id, store.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("fail to query post %d: %w", id, err)
	}

	return post, nil
}

func (s *Store) PostsByCategory(ctx context.Context, categoryID int64) ([]*store.Post, error) {
	rows, err := s.db.QueryContext(ctx, queryPostsByCategory, categoryID, frontmatter.TypePost, frontmatter.StatusPublish)
	if err != nil {
		return nil, fmt.Errorf("fail to query posts of category %d: %w", categoryID, err)
	}
	defer rows.Close()

	posts := make([]*store.Post, 0)
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("fail scanning posts of category %d: %w", categoryID, err)
		}
		posts = append(posts, post)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("fail iterating posts of category %d: %w", categoryID, err)
	}

	return posts, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (*store.Post, error) {
	var (
		post    store.Post
		created int64
	)
	if err := row.Scan(&post.ID, &post.Title, &post.Text, &created); err != nil {
		return nil, err
	}
	post.Created = time.Unix(created, 0).UTC()
	return &post, nil
}
