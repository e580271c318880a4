// Package gallery assembles the two gallery views from stored posts: the
// home grid of article covers and the per-article image grid.
package gallery

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SayaAndy/saya-today-gallery/internal/mdimages"
	"github.com/SayaAndy/saya-today-gallery/internal/metrics"
	"github.com/SayaAndy/saya-today-gallery/internal/store"
)

const (
	ModeHome = "home"
	ModePost = "post"
)

type ArticleCard struct {
	Type       string `json:"type"`
	Title      string `json:"title"`
	Cover      string `json:"cover"`
	ImageCount int    `json:"imageCount"`
	PostID     int64  `json:"postId"`
}

type ImageItem struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Desc  string `json:"desc"`
	URL   string `json:"url"`
}

type Page struct {
	Mode  string `json:"mode"`
	Title string `json:"title"`
	Items []any  `json:"items"`
}

type Service struct {
	store     store.Store
	extractor mdimages.Extractor
	siteTitle string
	recorder  metrics.Recorder
}

func NewService(st store.Store, placeholder string, siteTitle string, recorder metrics.Recorder) *Service {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Service{
		store:     st,
		extractor: mdimages.Extractor{Placeholder: placeholder},
		siteTitle: siteTitle,
		recorder:  recorder,
	}
}

// Home lists one card per post of the category that carries at least one
// image. The cover is the first extracted image.
func (s *Service) Home(ctx context.Context, categoryID int64) (*Page, error) {
	posts, err := s.store.PostsByCategory(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to get posts of category %d: %w", categoryID, err)
	}

	items := make([]any, 0, len(posts))
	total := 0
	for _, post := range posts {
		images := s.extractor.Extract(post.Text)
		if len(images) == 0 {
			continue
		}
		total += len(images)
		items = append(items, ArticleCard{
			Type:       "article",
			Title:      post.Title,
			Cover:      images[0].URL,
			ImageCount: len(images),
			PostID:     post.ID,
		})
	}
	slog.Debug("assembled gallery home", slog.Int64("category", categoryID), slog.Int("post_count", len(posts)), slog.Int("article_count", len(items)))
	s.recorder.ObserveImages(ModeHome, total)

	return &Page{
		Mode:  ModeHome,
		Title: "Gallery - " + s.siteTitle,
		Items: items,
	}, nil
}

// Post lists every image of a single post, captioned by its alt text and
// described by the post title.
func (s *Service) Post(ctx context.Context, id int64) (*Page, error) {
	post, err := s.store.Post(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get post %d: %w", id, err)
	}

	images := s.extractor.Extract(post.Text)
	items := make([]any, 0, len(images))
	for _, img := range images {
		items = append(items, ImageItem{
			Type:  "image",
			Title: img.Caption,
			Desc:  post.Title,
			URL:   img.URL,
		})
	}
	s.recorder.ObserveImages(ModePost, len(images))

	return &Page{
		Mode:  ModePost,
		Title: post.Title + " - Images",
		Items: items,
	}, nil
}
