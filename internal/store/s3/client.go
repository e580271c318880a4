package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/SayaAndy/saya-today-gallery/config"
	"github.com/SayaAndy/saya-today-gallery/internal/store"
	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Client reads posts from any S3-compatible bucket, B2 included.
type S3Client struct {
	prefix string
	bucket string
	s3cl   *s3.Client
}

var _ store.Store = &S3Client{}

func NewS3Client(ctx context.Context, cfg *config.S3Config) (*S3Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("fail to load aws config: %w", err)
	}

	s3cl := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &S3Client{prefix: cfg.Prefix, bucket: cfg.BucketName, s3cl: s3cl}, nil
}

func (c *S3Client) Scan(ctx context.Context) ([]*store.ParsedPost, error) {
	posts := []*store.ParsedPost{}

	paginator := s3.NewListObjectsV2Paginator(c.s3cl, &s3.ListObjectsV2Input{
		Bucket: aws.String(c.bucket),
		Prefix: aws.String(c.prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list objects in s3 bucket: %w", err)
		}

		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, ".md") {
				continue
			}

			content, err := c.read(ctx, key)
			if err != nil {
				return nil, err
			}

			post, err := store.ParsePost(key, content)
			if err != nil {
				slog.Warn("skip unreadable post in s3", slog.String("object", key), slog.String("error", err.Error()))
				continue
			}
			posts = append(posts, post)
		}
	}

	return posts, nil
}

func (c *S3Client) PostsByCategory(ctx context.Context, categoryID int64) ([]*store.Post, error) {
	parsed, err := c.Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to scan posts in s3: %w", err)
	}
	return store.SelectCategory(parsed, categoryID), nil
}

func (c *S3Client) Post(ctx context.Context, id int64) (*store.Post, error) {
	key := store.ObjectName(c.prefix, id)

	content, err := c.read(ctx, key)
	if err != nil {
		return nil, err
	}

	post, err := store.ParsePost(key, content)
	if err != nil {
		return nil, err
	}
	return post.Published()
}

func (c *S3Client) Close() error {
	return nil
}

func (c *S3Client) read(ctx context.Context, key string) ([]byte, error) {
	out, err := c.s3cl.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("object '%s': %w", key, store.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get '%s' from s3: %w", key, err)
	}
	defer out.Body.Close()

	content, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read '%s' content: %w", key, err)
	}

	return content, nil
}
