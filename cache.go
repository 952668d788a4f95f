package docket

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/sync/singleflight"

	"github.com/eringen/docket/content"
)

// PostSource is the read side of the content store. Both
// *content.Repository and *PostCache implement it.
type PostSource interface {
	ListCategories(ctx context.Context) []content.Category
	ListPosts(ctx context.Context) []content.Post
	GetPost(ctx context.Context, category, slug string) (content.Post, error)
	ListTags(ctx context.Context) []string
	PostsByCategory(ctx context.Context, category string) ([]content.Post, error)
	PostsByTag(ctx context.Context, tagSlug string) []content.Post
	FindBySlug(ctx context.Context, slug string) (content.Post, error)
}

type snapshot struct {
	posts      []content.Post
	categories []content.Category
	tags       []string
	fetched    time.Time
}

// PostCache is an in-memory snapshot of the post listings with a TTL.
// A file watcher drops the snapshot as soon as the content directory
// changes. Single posts are always read from the source.
type PostCache struct {
	src    PostSource
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu   sync.RWMutex
	snap *snapshot
	gen  uint64

	group    singleflight.Group
	onReload func()

	watcher *fsnotify.Watcher
	done    chan struct{}
}

// NewPostCache creates a PostCache in front of src.
func NewPostCache(src PostSource, ttl time.Duration, logger *slog.Logger) *PostCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostCache{src: src, ttl: ttl, logger: logger, now: time.Now}
}

func (c *PostCache) valid(s *snapshot) bool {
	return s != nil && c.now().Sub(s.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
// A load already in flight still answers its callers but is not kept.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.snap = nil
	c.gen++
	c.mu.Unlock()
	c.group.Forget("load")
}

// ensureLoaded returns a fresh snapshot. Concurrent misses share one load.
func (c *PostCache) ensureLoaded(ctx context.Context) *snapshot {
	c.mu.RLock()
	s := c.snap
	c.mu.RUnlock()
	if c.valid(s) {
		return s
	}

	v, _, _ := c.group.Do("load", func() (any, error) {
		// The load outlives a caller that gives up; others may be waiting on it.
		ctx := context.WithoutCancel(ctx)
		c.mu.RLock()
		gen := c.gen
		c.mu.RUnlock()

		posts := c.src.ListPosts(ctx)
		s := &snapshot{
			posts:      posts,
			categories: c.src.ListCategories(ctx),
			tags:       content.DistinctTags(posts),
			fetched:    c.now(),
		}
		c.mu.Lock()
		current := c.gen == gen
		if current {
			c.snap = s
		}
		c.mu.Unlock()
		if !current {
			c.logger.DebugContext(ctx, "post cache load superseded", "posts", len(posts))
			return s, nil
		}
		if c.onReload != nil {
			c.onReload()
		}
		c.logger.DebugContext(ctx, "post cache reloaded", "posts", len(posts))
		return s, nil
	})
	return v.(*snapshot)
}

// ListPosts returns every valid post, newest first.
func (c *PostCache) ListPosts(ctx context.Context) []content.Post {
	return slices.Clone(c.ensureLoaded(ctx).posts)
}

// ListCategories returns every category with its file count.
func (c *PostCache) ListCategories(ctx context.Context) []content.Category {
	return slices.Clone(c.ensureLoaded(ctx).categories)
}

// ListTags returns the distinct tags of all posts.
func (c *PostCache) ListTags(ctx context.Context) []string {
	return slices.Clone(c.ensureLoaded(ctx).tags)
}

// GetPost reads one post from the source, bypassing the snapshot.
func (c *PostCache) GetPost(ctx context.Context, category, slug string) (content.Post, error) {
	return c.src.GetPost(ctx, category, slug)
}

// PostsByCategory returns the cached posts of one category.
func (c *PostCache) PostsByCategory(ctx context.Context, category string) ([]content.Post, error) {
	s := c.ensureLoaded(ctx)
	category = content.NormalizeCategory(category)
	if !slices.ContainsFunc(s.categories, func(cat content.Category) bool { return cat.Slug == category }) {
		return nil, fmt.Errorf("%w: category %q", content.ErrNotFound, category)
	}
	return content.FilterByCategory(s.posts, category), nil
}

// PostsByTag returns the cached posts carrying the tag with slug tagSlug.
func (c *PostCache) PostsByTag(ctx context.Context, tagSlug string) []content.Post {
	return content.FilterByTag(c.ensureLoaded(ctx).posts, tagSlug)
}

// FindBySlug returns the newest cached post with the given slug.
func (c *PostCache) FindBySlug(ctx context.Context, slug string) (content.Post, error) {
	if p, ok := content.FindBySlug(c.ensureLoaded(ctx).posts, slug); ok {
		return p, nil
	}
	return content.Post{}, fmt.Errorf("%w: slug %q", content.ErrNotFound, slug)
}

// Watch invalidates the cache whenever something under root changes.
// New category directories are picked up as they appear.
func (c *PostCache) Watch(root string) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
	if err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", root, err)
	}
	c.watcher = w
	c.done = make(chan struct{})
	go c.watch()
	return nil
}

func (c *PostCache) watch() {
	defer close(c.done)
	for {
		select {
		case event, ok := <-c.watcher.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := c.watcher.Add(event.Name); err != nil {
						c.logger.Warn("watch new directory", "path", event.Name, "error", err)
					}
				}
			}
			c.logger.Debug("content changed", "path", event.Name, "op", event.Op.String())
			c.Invalidate()
		case err, ok := <-c.watcher.Errors:
			if !ok {
				return
			}
			c.logger.Warn("content watcher", "error", err)
		}
	}
}

// Close stops the watcher, if any.
func (c *PostCache) Close() error {
	if c.watcher == nil {
		return nil
	}
	err := c.watcher.Close()
	<-c.done
	c.watcher = nil
	return err
}
