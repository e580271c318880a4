package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/SayaAndy/saya-today-gallery/config"
	"github.com/SayaAndy/saya-today-gallery/internal/router"
	"github.com/SayaAndy/saya-today-gallery/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	mu         sync.Mutex
	posts      map[int64]*store.Post
	categories map[int64][]int64
	failPosts  bool
}

func (f *fakeStore) Post(_ context.Context, id int64) (*store.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPosts {
		return nil, errors.New("connection reset")
	}
	post, ok := f.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %d: %w", id, store.ErrNotFound)
	}
	return post, nil
}

func (f *fakeStore) PostsByCategory(_ context.Context, categoryID int64) ([]*store.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	posts := make([]*store.Post, 0)
	for _, id := range f.categories[categoryID] {
		posts = append(posts, f.posts[id])
	}
	return posts, nil
}

func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) setText(id int64, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts[id].Text = text
}

type jsonPage struct {
	Mode  string           `json:"mode"`
	Title string           `json:"title"`
	Items []map[string]any `json:"items"`
}

func newTestRouter(t *testing.T, metricsEnabled bool) (*router.Router, *fakeStore) {
	t.Helper()

	st := &fakeStore{
		posts: map[int64]*store.Post{
			1: {ID: 1, Title: "Harbor", Text: "![pier](http://a/pier.jpg)\n\n![boat][b]\n\n[b]: http://a/boat.jpg", Created: time.Now()},
			2: {ID: 2, Title: "Notes", Text: "no images"},
			5: {ID: 5, Title: "Forest", Text: "![](http://a/tree.jpg)"},
		},
		categories: map[int64][]int64{3: {1, 2}, 4: {5}},
	}

	cfg := &config.Config{
		Listen: ":0",
		Gallery: config.GalleryConfig{
			CategoryID:    3,
			SiteTitle:     "Saya Today",
			SiteURL:       "https://saya.today/",
			CacheDuration: time.Minute,
			RefreshCron:   "0 0 1 1 *",
		},
		Metrics: config.MetricsConfig{Enabled: metricsEnabled, Path: "/metrics"},
	}

	r, err := router.NewRouter(cfg, st)
	require.NoError(t, err)
	require.NoError(t, r.InitRoutes())
	t.Cleanup(func() { r.Close() })
	return r, st
}

func get(t *testing.T, r *router.Router, target string) (*http.Response, []byte) {
	t.Helper()
	resp, err := r.App().Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func decodePage(t *testing.T, body []byte) jsonPage {
	t.Helper()
	var page jsonPage
	require.NoError(t, json.Unmarshal(body, &page))
	return page
}

func TestRoot_Home(t *testing.T) {
	r, _ := newTestRouter(t, false)

	resp, body := get(t, r, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")

	page := decodePage(t, body)
	assert.Equal(t, "home", page.Mode)
	assert.Equal(t, "Gallery - Saya Today", page.Title)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "article", page.Items[0]["type"])
	assert.Equal(t, "Harbor", page.Items[0]["title"])
	assert.Equal(t, "http://a/boat.jpg", page.Items[0]["cover"])
	assert.Equal(t, float64(2), page.Items[0]["imageCount"])
	assert.Equal(t, float64(1), page.Items[0]["postId"])
}

func TestRoot_InvalidPostIDFallsBackToHome(t *testing.T) {
	r, _ := newTestRouter(t, false)

	for _, target := range []string{"/?post_id=abc", "/?post_id=0", "/?post_id="} {
		resp, body := get(t, r, target)
		require.Equal(t, http.StatusOK, resp.StatusCode, target)
		assert.Equal(t, "home", decodePage(t, body).Mode, target)
	}
}

func TestRoot_Post(t *testing.T) {
	r, _ := newTestRouter(t, false)

	resp, body := get(t, r, "/?post_id=1")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	page := decodePage(t, body)
	assert.Equal(t, "post", page.Mode)
	assert.Equal(t, "Harbor - Images", page.Title)
	require.Len(t, page.Items, 2)
	assert.Equal(t, map[string]any{"type": "image", "title": "boat", "desc": "Harbor", "url": "http://a/boat.jpg"}, page.Items[0])
	assert.Equal(t, map[string]any{"type": "image", "title": "pier", "desc": "Harbor", "url": "http://a/pier.jpg"}, page.Items[1])
}

func TestRoot_UnknownPostRedirects(t *testing.T) {
	r, _ := newTestRouter(t, false)

	resp, _ := get(t, r, "/?post_id=404")
	assert.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, "https://saya.today/", resp.Header.Get("Location"))
}

func TestApiGallery_CategoryOverride(t *testing.T) {
	r, _ := newTestRouter(t, false)

	resp, body := get(t, r, "/api/v1/gallery?category=4")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	page := decodePage(t, body)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Forest", page.Items[0]["title"])
	assert.Equal(t, "http://a/tree.jpg", page.Items[0]["cover"])

	resp, body = get(t, r, "/api/v1/gallery?category=nope")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "invalid 'category' value")
}

func TestApiGalleryPost(t *testing.T) {
	r, st := newTestRouter(t, false)

	resp, body := get(t, r, "/api/v1/gallery/5")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	page := decodePage(t, body)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "untitled", page.Items[0]["title"])

	resp, _ = get(t, r, "/api/v1/gallery/404")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = get(t, r, "/api/v1/gallery/abc")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	st.mu.Lock()
	st.failPosts = true
	st.mu.Unlock()
	resp, body = get(t, r, "/api/v1/gallery/2")
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.NotContains(t, string(body), "connection reset")
}

func TestCacheAndRefresh(t *testing.T) {
	r, st := newTestRouter(t, false)

	_, body := get(t, r, "/api/v1/gallery/1")
	require.Len(t, decodePage(t, body).Items, 2)
	r.Supplements().PageCache.Wait()

	st.setText(1, "![only](http://a/only.jpg)")

	_, body = get(t, r, "/api/v1/gallery/1")
	assert.Len(t, decodePage(t, body).Items, 2, "expected the cached page")

	changed, err := r.Supplements().Refresher.Check(context.Background())
	require.NoError(t, err)
	require.True(t, changed)

	_, body = get(t, r, "/api/v1/gallery/1")
	items := decodePage(t, body).Items
	require.Len(t, items, 1)
	assert.Equal(t, "only", items[0]["title"])
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t, true)

	get(t, r, "/")
	resp, body := get(t, r, "/metrics")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(string(body), "gallery_requests_total"))
}

func TestMetricsEndpoint_Disabled(t *testing.T) {
	r, _ := newTestRouter(t, false)

	resp, _ := get(t, r, "/metrics")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestParseID(t *testing.T) {
	assert.Equal(t, int64(12), parseID("12"))
	assert.Equal(t, int64(12), parseID(" 12 "))
	assert.Equal(t, int64(-3), parseID("-3"))
	assert.Equal(t, int64(0), parseID("12abc"))
	assert.Equal(t, int64(0), parseID(""))
}
