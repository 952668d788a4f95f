package content

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrNotFound is returned when a requested post or category does not exist.
var ErrNotFound = errors.New("content: not found")

// DefaultExtensions are the file extensions treated as posts.
var DefaultExtensions = []string{".mdx", ".md"}

// Repository reads posts from a content root laid out as
// root/<category>/<slug>.<ext>. Every call goes back to the file system;
// an optional ParseCache only skips re-parsing unchanged files.
type Repository struct {
	root          string
	extensions    []string
	defaultAuthor string
	logger        *slog.Logger
	cache         *ParseCache
}

// Option configures a Repository.
type Option func(*Repository)

// WithDefaultAuthor sets the author used when a post names none.
func WithDefaultAuthor(author string) Option {
	return func(r *Repository) {
		r.defaultAuthor = author
	}
}

// WithExtensions overrides the post file extensions.
func WithExtensions(exts ...string) Option {
	return func(r *Repository) {
		r.extensions = nil
		for _, e := range exts {
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			r.extensions = append(r.extensions, strings.ToLower(e))
		}
	}
}

// WithLogger sets the logger for skipped files and unreadable directories.
func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) {
		r.logger = l
	}
}

// WithParseCache enables reuse of parsed files across calls.
func WithParseCache(c *ParseCache) Option {
	return func(r *Repository) {
		r.cache = c
	}
}

// NewRepository returns a Repository rooted at root.
func NewRepository(root string, opts ...Option) *Repository {
	r := &Repository{
		root:       root,
		extensions: DefaultExtensions,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Root returns the content root directory.
func (r *Repository) Root() string {
	return r.root
}

type categoryDir struct {
	slug string
	path string
}

// categoryDirs lists the immediate subdirectories of the root, one per
// category slug.
func (r *Repository) categoryDirs() ([]categoryDir, error) {
	entries, err := os.ReadDir(r.root)
	if err != nil {
		return nil, err
	}
	var dirs []categoryDir
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			continue
		}
		path := filepath.Join(r.root, name)
		if !e.IsDir() {
			if e.Type()&fs.ModeSymlink == 0 {
				continue
			}
			if info, err := os.Stat(path); err != nil || !info.IsDir() {
				continue
			}
		}
		dirs = append(dirs, categoryDir{slug: NormalizeCategory(name), path: path})
	}

	// Sorted by slug; of two directories with the same slug, the one whose
	// name sorts first wins.
	slices.SortFunc(dirs, func(a, b categoryDir) int {
		return cmp.Or(strings.Compare(a.slug, b.slug), strings.Compare(a.path, b.path))
	})
	unique := dirs[:0]
	for _, d := range dirs {
		if n := len(unique); n > 0 && unique[n-1].slug == d.slug {
			r.logger.Warn("duplicate category directory ignored", "category", d.slug, "path", d.path, "kept", unique[n-1].path)
			continue
		}
		unique = append(unique, d)
	}
	return unique, nil
}

// resolveCategory finds the directory of a lower-case category slug,
// tolerating directories whose names are not lower-case on disk.
func (r *Repository) resolveCategory(category string) (categoryDir, error) {
	dirs, err := r.categoryDirs()
	if err != nil {
		return categoryDir{}, err
	}
	for _, d := range dirs {
		if d.slug == category {
			return d, nil
		}
	}
	return categoryDir{}, fmt.Errorf("%w: category %q", ErrNotFound, category)
}

func (r *Repository) isPostFile(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	return slices.Contains(r.extensions, strings.ToLower(filepath.Ext(name)))
}

// ListCategories returns one record per category directory. The count is
// the number of post files, including drafts that ListPosts skips. An
// unreadable root is logged and yields an empty list.
func (r *Repository) ListCategories(ctx context.Context) []Category {
	dirs, err := r.categoryDirs()
	if err != nil {
		r.logger.ErrorContext(ctx, "list categories", "root", r.root, "error", err)
		return []Category{}
	}
	categories := make([]Category, 0, len(dirs))
	for _, d := range dirs {
		entries, err := os.ReadDir(d.path)
		if err != nil {
			r.logger.WarnContext(ctx, "read category", "category", d.slug, "error", err)
			continue
		}
		count := 0
		for _, e := range entries {
			if !e.IsDir() && r.isPostFile(e.Name()) {
				count++
			}
		}
		categories = append(categories, NewCategory(d.slug, count))
	}
	return categories
}

var titleCaser = cases.Title(language.English)

// NewCategory builds the display record for a category slug.
func NewCategory(slug string, count int) Category {
	name := titleCaser.String(strings.NewReplacer("-", " ", "_", " ").Replace(slug))
	return Category{
		Name:        name,
		Slug:        slug,
		Count:       count,
		Description: fmt.Sprintf("Articles and commentary on %s.", name),
	}
}

// ListPosts returns every valid post under every category, newest first.
// Files lacking a title or date are skipped silently; unreadable or
// malformed files are logged and skipped. It never fails.
func (r *Repository) ListPosts(ctx context.Context) []Post {
	dirs, err := r.categoryDirs()
	if err != nil {
		r.logger.ErrorContext(ctx, "list posts", "root", r.root, "error", err)
		return []Post{}
	}
	seen := make(map[string]struct{})
	posts := []Post{}
	for _, d := range dirs {
		posts = append(posts, r.loadCategory(ctx, d, seen)...)
	}
	if r.cache != nil && ctx.Err() == nil {
		r.cache.retain(seen)
	}
	SortPosts(posts)
	return posts
}

func (r *Repository) loadCategory(ctx context.Context, d categoryDir, seen map[string]struct{}) []Post {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		r.logger.WarnContext(ctx, "read category", "category", d.slug, "error", err)
		return nil
	}
	var posts []Post
	for _, e := range entries {
		if ctx.Err() != nil {
			r.logger.DebugContext(ctx, "listing interrupted", "error", ctx.Err())
			return posts
		}
		if e.IsDir() || !r.isPostFile(e.Name()) {
			continue
		}
		path := filepath.Join(d.path, e.Name())
		info, err := e.Info()
		if err != nil {
			r.logger.WarnContext(ctx, "stat post", "path", path, "error", err)
			continue
		}
		if seen != nil {
			seen[path] = struct{}{}
		}
		post, ok, err := r.load(path, d.slug, info)
		if err != nil {
			r.logger.WarnContext(ctx, "skipping unreadable post", "path", path, "error", err)
			continue
		}
		if !ok {
			r.logger.DebugContext(ctx, "skipping post without title or date", "path", path)
			continue
		}
		posts = append(posts, post)
	}
	return posts
}

// load parses one file. ok is false when mandatory fields are missing.
func (r *Repository) load(path, category string, info fs.FileInfo) (Post, bool, error) {
	if r.cache != nil {
		if post, ok, hit := r.cache.lookup(path, info); hit {
			return post, ok, nil
		}
	}
	meta, body, err := ParseFile(path)
	if err != nil {
		return Post{}, false, err
	}
	name := info.Name()
	post, ok := r.build(meta, body, category, strings.TrimSuffix(name, filepath.Ext(name)))
	post.Path = path
	post.ModTime = info.ModTime()
	if r.cache != nil {
		r.cache.store(path, info, post, ok)
	}
	return post, ok, nil
}

func (r *Repository) build(meta Meta, body, category, slug string) (Post, bool) {
	title := meta.String("title")
	published, hasDate := meta.Time("date")
	if title == "" || !hasDate {
		return Post{}, false
	}
	excerpt := meta.String("excerpt", "description", "summary")
	if excerpt == "" {
		excerpt = Excerpt(body, ExcerptLength)
	}
	author := meta.String("author")
	if author == "" {
		author = r.defaultAuthor
	}
	return Post{
		Title:         title,
		Date:          meta.String("date"),
		Published:     published,
		Author:        author,
		Category:      NormalizeCategory(category),
		Slug:          slug,
		Excerpt:       excerpt,
		Tags:          normalizeTags(meta.Strings("tags")),
		FeaturedImage: meta.String("featuredImage", "featured_image", "image", "coverImage"),
		ReadingTime:   ReadingTime(body),
		Content:       body,
	}, true
}

// GetPost loads exactly one post and extracts its headings. It returns an
// error wrapping ErrNotFound when the category or file does not exist, or
// when the file lacks a title or date.
func (r *Repository) GetPost(ctx context.Context, category, slug string) (Post, error) {
	category = NormalizeCategory(category)
	if !safeSegment(category) || !safeSegment(slug) {
		return Post{}, fmt.Errorf("%w: %s/%s", ErrNotFound, category, slug)
	}
	d, err := r.resolveCategory(category)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
			return Post{}, fmt.Errorf("%w: %s/%s", ErrNotFound, category, slug)
		}
		return Post{}, fmt.Errorf("resolve category %s: %w", category, err)
	}
	for _, ext := range r.extensions {
		path := filepath.Join(d.path, slug+ext)
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return Post{}, fmt.Errorf("stat %s: %w", path, err)
		}
		if info.IsDir() {
			continue
		}
		post, ok, err := r.load(path, d.slug, info)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				break
			}
			return Post{}, fmt.Errorf("load post %s/%s: %w", category, slug, err)
		}
		if !ok {
			r.logger.DebugContext(ctx, "post without title or date requested", "path", path)
			break
		}
		post.Headings = ExtractHeadings(post.Content)
		return post, nil
	}
	return Post{}, fmt.Errorf("%w: %s/%s", ErrNotFound, category, slug)
}

// ListTags returns the distinct tags of all posts, lower-cased and
// URL-path-escaped.
func (r *Repository) ListTags(ctx context.Context) []string {
	return DistinctTags(r.ListPosts(ctx))
}

// PostsByCategory returns the valid posts of one category, newest first.
func (r *Repository) PostsByCategory(ctx context.Context, category string) ([]Post, error) {
	category = NormalizeCategory(category)
	if !safeSegment(category) {
		return nil, fmt.Errorf("%w: category %q", ErrNotFound, category)
	}
	d, err := r.resolveCategory(category)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("resolve category %s: %w", category, err)
	}
	posts := r.loadCategory(ctx, d, nil)
	SortPosts(posts)
	return posts, nil
}

// PostsByTag returns the posts carrying the tag whose slug is tagSlug.
func (r *Repository) PostsByTag(ctx context.Context, tagSlug string) []Post {
	return FilterByTag(r.ListPosts(ctx), tagSlug)
}

// FindBySlug returns the newest post with the given slug in any category.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (Post, error) {
	if p, ok := FindBySlug(r.ListPosts(ctx), slug); ok {
		return p, nil
	}
	return Post{}, fmt.Errorf("%w: slug %q", ErrNotFound, slug)
}

// safeSegment rejects values that could escape the content root.
func safeSegment(s string) bool {
	if s == "" || strings.HasPrefix(s, ".") {
		return false
	}
	return !strings.ContainsAny(s, "/\\\x00")
}
