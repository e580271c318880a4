package refresher

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/SayaAndy/saya-today-gallery/internal/metrics"
	"github.com/SayaAndy/saya-today-gallery/internal/store"
	"github.com/cespare/xxhash/v2"
	"github.com/go-co-op/gocron/v2"
)

type RefreshScheduler struct {
	s           gocron.Scheduler
	store       store.Store
	categoryID  int64
	onChange    func()
	recorder    metrics.Recorder
	mu          sync.Mutex
	scanned     bool
	fingerprint uint64
}

// NewRefreshScheduler scans the category once, then rescans it on cron and
// calls onChange whenever the posts differ from the previous scan.
func NewRefreshScheduler(st store.Store, categoryID int64, cron string, recorder metrics.Recorder, onChange func()) (*RefreshScheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create new scheduler: %w", err)
	}
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}

	rs := &RefreshScheduler{s: s, store: st, categoryID: categoryID, onChange: onChange, recorder: recorder}

	if _, err = rs.Check(context.Background()); err != nil {
		s.Shutdown()
		return nil, fmt.Errorf("failed to scan existing posts: %w", err)
	}

	_, err = rs.s.NewJob(gocron.CronJob(cron, false), gocron.NewTask(func(rs *RefreshScheduler) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := rs.Check(ctx); err != nil {
			slog.Error("failed to execute refresh cron job", slog.String("error", err.Error()))
		}
	}, rs))
	if err != nil {
		s.Shutdown()
		return nil, fmt.Errorf("failed to schedule refresh job: %w", err)
	}

	rs.s.Start()
	return rs, nil
}

// Check rescans the category once. The first call only records the
// fingerprint and never reports a change.
func (rs *RefreshScheduler) Check(ctx context.Context) (changed bool, err error) {
	posts, err := rs.store.PostsByCategory(ctx, rs.categoryID)
	if err != nil {
		return false, fmt.Errorf("failed to scan posts of category %d: %w", rs.categoryID, err)
	}
	fingerprint := Fingerprint(posts)

	rs.mu.Lock()
	initial := !rs.scanned
	changed = !initial && fingerprint != rs.fingerprint
	rs.scanned = true
	rs.fingerprint = fingerprint
	rs.mu.Unlock()

	if initial {
		return false, nil
	}

	rs.recorder.IncRefresh(changed)
	if changed {
		slog.Info("gallery posts changed, dropping cached pages", slog.Int64("category", rs.categoryID), slog.Int("post_count", len(posts)))
		if rs.onChange != nil {
			rs.onChange()
		}
	} else {
		slog.Debug("gallery posts unchanged", slog.Int64("category", rs.categoryID))
	}
	return changed, nil
}

func (rs *RefreshScheduler) Close() error {
	return rs.s.Shutdown()
}

// Fingerprint hashes the fields of posts that show up in gallery pages.
func Fingerprint(posts []*store.Post) uint64 {
	d := xxhash.New()
	for _, post := range posts {
		d.WriteString(strconv.FormatInt(post.ID, 10))
		d.WriteString("\x00")
		d.WriteString(post.Title)
		d.WriteString("\x00")
		d.WriteString(strconv.FormatInt(post.Created.Unix(), 10))
		d.WriteString("\x00")
		d.WriteString(post.Text)
		d.WriteString("\x00")
	}
	return d.Sum64()
}
