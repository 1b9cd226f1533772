package catalog

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"path/filepath"
	"strings"
)

// Options control classification and collaborators of a Catalog. Zero values
// select the defaults.
type Options struct {
	SizeThreshold      int64
	VideoExtensions    []string
	SubtitleExtensions []string
	FileSystem         FileSystem
	Logger             *slog.Logger
	Targets            []MutationTarget
}

// Catalog is an in-memory mirror of a directory tree. It is built once from
// the filesystem and afterwards changed only through its mutation methods,
// which keep the records consistent with disk.
//
// A Catalog is not safe for concurrent use; callers sharing one must
// serialize every call, for example with a single sync.Mutex.
type Catalog struct {
	root       *FolderNode
	fs         FileSystem
	classifier *Classifier
	threshold  int64
	logger     *slog.Logger
	targets    []MutationTarget
	stats      BuildStats
}

// New walks the directory at root and builds its catalog. root must be an
// existing directory and not a symlink; a relative root is resolved against
// the working directory.
func New(ctx context.Context, root string, opts Options) (*Catalog, error) {
	c := &Catalog{
		fs:        opts.FileSystem,
		threshold: opts.SizeThreshold,
		logger:    opts.Logger,
	}
	if c.fs == nil {
		c.fs = OSFileSystem{}
	}
	if c.threshold <= 0 {
		c.threshold = DefaultSizeThreshold
	}
	for _, target := range opts.Targets {
		c.RegisterTarget(target)
	}

	videoExts := opts.VideoExtensions
	if len(videoExts) == 0 {
		videoExts = DefaultVideoExtensions
	}
	subExts := opts.SubtitleExtensions
	if len(subExts) == 0 {
		subExts = DefaultSubtitleExtensions
	}
	classifier, err := NewClassifier(videoExts, subExts)
	if err != nil {
		return nil, err
	}
	c.classifier = classifier

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve root %q: %w", ErrInvalidArgument, root, err)
	}
	isDir, err := IsDirectory(c.fs, absRoot)
	if err != nil {
		return nil, err
	}
	if !isDir {
		return nil, fmt.Errorf("%w: starting path %s must be a directory and cannot be a symlink", ErrInvalidArgument, absRoot)
	}

	logger := c.loggerOrDefault()
	logger.Info("Building catalog", "root", absRoot, "size_threshold", c.threshold)

	rootNode, stats, err := build(ctx, c.fs, c.classifier, absRoot, c.threshold, logger)
	if err != nil {
		return nil, err
	}
	c.root = rootNode
	c.stats = stats

	logger.Info("Catalog built", "root", absRoot, "folders", stats.Folders,
		"movies", stats.FileCount(Movie), "subtitles", stats.FileCount(Subtitle),
		"unusual", stats.FileCount(Unusual), "possibly_junk", stats.FileCount(PossiblyJunk),
		"skipped", stats.Skipped, "errors", stats.Errors)
	return c, nil
}

// Root returns the root folder.
func (c *Catalog) Root() *FolderNode { return c.root }

// RootPath returns the absolute path of the root folder.
func (c *Catalog) RootPath() string { return c.root.Path() }

// Stats returns the summary of the initial walk.
func (c *Catalog) Stats() BuildStats { return c.stats }

// Classifier returns the classifier used to build the catalog.
func (c *Catalog) Classifier() *Classifier { return c.classifier }

// OpenFolder resolves an absolute path to its folder record by following
// child folders one path component at a time from the root.
func (c *Catalog) OpenFolder(path string) (*FolderNode, error) {
	if err := mustBeAbsolute(path); err != nil {
		return nil, err
	}
	rel, ok := c.relativePath(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s is outside of the catalog root %s", ErrNotFound, path, c.RootPath())
	}
	cur := c.root
	if rel == "" {
		return cur, nil
	}
	for _, name := range strings.Split(rel, string(filepath.Separator)) {
		next, ok := cur.Child(name)
		if !ok {
			return nil, fmt.Errorf("%w: no folder named %s in %s", ErrNotFound, name, cur)
		}
		cur = next
	}
	return cur, nil
}

// ContainsFolder reports whether path is a folder recorded in the catalog.
func (c *Catalog) ContainsFolder(path string) bool {
	if !filepath.IsAbs(path) {
		return false
	}
	path = filepath.Clean(path)
	if path == c.RootPath() {
		return true
	}
	parent, err := c.OpenFolder(filepath.Dir(path))
	if err != nil {
		return false
	}
	_, ok := parent.Child(filepath.Base(path))
	return ok
}

// ContainsFile reports whether path is a file recorded in the catalog.
func (c *Catalog) ContainsFile(path string) bool {
	if !filepath.IsAbs(path) {
		return false
	}
	path = filepath.Clean(path)
	parent, err := c.OpenFolder(filepath.Dir(path))
	if err != nil {
		return false
	}
	return parent.ContainsFile(filepath.Base(path))
}

// TypeOf returns the category of the file at path, or Folder when path is a
// recorded folder.
func (c *Catalog) TypeOf(path string) (Category, error) {
	if err := mustBeAbsolute(path); err != nil {
		return 0, err
	}
	if c.ContainsFolder(path) {
		return Folder, nil
	}
	parent, err := c.OpenFolder(filepath.Dir(filepath.Clean(path)))
	if err != nil {
		return 0, err
	}
	category, ok := parent.FileCategory(filepath.Base(path))
	if !ok {
		return 0, fmt.Errorf("%w: no record for %s", ErrNotFound, path)
	}
	return category, nil
}

// Subtree returns origin followed by all of its descendants in
// breadth-first order. See FolderNode.Subtree. A nil origin yields an
// empty sequence.
func (c *Catalog) Subtree(origin *FolderNode) iter.Seq[*FolderNode] {
	return origin.Subtree()
}

// SubtreeOf resolves path and returns its subtree sequence.
func (c *Catalog) SubtreeOf(path string) (iter.Seq[*FolderNode], error) {
	origin, err := c.OpenFolder(path)
	if err != nil {
		return nil, err
	}
	return origin.Subtree(), nil
}

// Count returns how many entries of category are recorded in the whole catalog.
func (c *Catalog) Count(category Category) int {
	total := 0
	for folder := range c.root.Subtree() {
		total += folder.Count(category)
	}
	return total
}

// relativePath returns the cleaned path of path relative to the root, with
// "" for the root itself. ok is false when path is not below the root.
func (c *Catalog) relativePath(path string) (string, bool) {
	rel, err := filepath.Rel(c.RootPath(), filepath.Clean(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	if rel == "." {
		return "", true
	}
	return rel, true
}

func (c *Catalog) loggerOrDefault() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.Default()
}
