package b2

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Backblaze/blazer/b2"
	"github.com/SayaAndy/saya-today-gallery/config"
	"github.com/SayaAndy/saya-today-gallery/internal/store"
)

type B2Client struct {
	prefix string
	bucket *b2.Bucket
	b2cl   *b2.Client
}

var _ store.Store = &B2Client{}

func NewB2Client(ctx context.Context, cfg *config.B2Config) (*B2Client, error) {
	b2cl, err := b2.NewClient(ctx, cfg.KeyID, cfg.ApplicationKey)
	if err != nil {
		return nil, err
	}

	bucket, err := b2cl.Bucket(ctx, cfg.BucketName)
	if err != nil {
		return nil, err
	}

	return &B2Client{b2cl: b2cl, bucket: bucket, prefix: cfg.Prefix}, nil
}

func (c *B2Client) Scan(ctx context.Context) ([]*store.ParsedPost, error) {
	posts := []*store.ParsedPost{}

	iter := c.bucket.List(ctx, b2.ListPrefix(c.prefix))

	for iter.Next() {
		obj := iter.Object()
		if obj == nil {
			return nil, fmt.Errorf("failed to reference object in B2 bucket")
		}

		attrs, err := obj.Attrs(ctx)
		if err != nil {
			return nil, fmt.Errorf("get attributes for object: %w", err)
		}

		if attrs.Status != b2.Uploaded {
			continue
		}

		if !strings.HasSuffix(obj.Name(), ".md") && !strings.Contains(attrs.ContentType, "text/markdown") {
			continue
		}

		content, err := c.read(ctx, obj)
		if err != nil {
			return nil, err
		}

		post, err := store.ParsePost(obj.Name(), content)
		if err != nil {
			slog.Warn("skip unreadable post in b2", slog.String("object", obj.Name()), slog.String("error", err.Error()))
			continue
		}
		posts = append(posts, post)
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("iterate over B2 objects: %w", err)
	}

	return posts, nil
}

func (c *B2Client) PostsByCategory(ctx context.Context, categoryID int64) ([]*store.Post, error) {
	parsed, err := c.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan posts in b2: %w", err)
	}
	return store.SelectCategory(parsed, categoryID), nil
}

func (c *B2Client) Post(ctx context.Context, id int64) (*store.Post, error) {
	name := store.ObjectName(c.prefix, id)

	content, err := c.read(ctx, c.bucket.Object(name))
	if b2.IsNotExist(err) {
		return nil, fmt.Errorf("object '%s': %w", name, store.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	post, err := store.ParsePost(name, content)
	if err != nil {
		return nil, err
	}
	return post.Published()
}

func (c *B2Client) Close() error {
	return nil
}

func (c *B2Client) read(ctx context.Context, obj *b2.Object) ([]byte, error) {
	reader := obj.NewReader(ctx)
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		if b2.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read '%s' content: %w", obj.Name(), err)
	}

	return content, nil
}
