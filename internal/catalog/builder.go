package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
)

// DefaultSizeThreshold is the size in bytes above which a file is expected
// to be a movie.
const DefaultSizeThreshold int64 = 50 * 1024 * 1024

// BuildStats summarizes the initial walk of a catalog.
type BuildStats struct {
	Folders int
	Files   [numFileCategories]int
	// Skipped counts entries that were neither readable nor writable, or
	// neither a regular file nor a directory.
	Skipped int
	// Errors counts entries the walk could not read.
	Errors int
}

// FileCount returns the number of files classified as category during the walk.
func (s BuildStats) FileCount(category Category) int {
	if !category.IsFile() {
		return 0
	}
	return s.Files[category]
}

// builder assembles the folder tree from a single pre-order walk. The stack
// holds the open folders on the path from the root to the folder currently
// being filled; the frame at index i has depth i.
type builder struct {
	fs         FileSystem
	classifier *Classifier
	root       string
	threshold  int64
	logger     *slog.Logger
	stack      []*FolderNode
	stats      BuildStats
}

// build walks root once and returns its FolderNode. Per-entry walk errors
// are logged and skipped.
func build(ctx context.Context, fsys FileSystem, classifier *Classifier, root string, threshold int64, logger *slog.Logger) (*FolderNode, BuildStats, error) {
	b := &builder{
		fs:         fsys,
		classifier: classifier,
		root:       filepath.Clean(root),
		threshold:  threshold,
		logger:     logger,
	}

	var rootNode *FolderNode
	walker := fsys.Walk(b.root)
	for walker.Step() {
		if err := ctx.Err(); err != nil {
			return nil, BuildStats{}, err
		}

		path := filepath.Clean(walker.Path())
		if err := walker.Err(); err != nil {
			b.stats.Errors++
			logger.Warn("Suppressed a walk error", "path", path, "error", err)
			continue
		}
		info := walker.Stat()

		if readable, writable := fsys.Access(path); !readable && !writable {
			b.stats.Skipped++
			logger.Debug("Skipping entry that is neither readable nor writable", "path", path)
			if info.IsDir() {
				walker.SkipDir()
			}
			continue
		}

		depth, err := b.depthOf(path)
		if err != nil {
			return nil, BuildStats{}, err
		}
		if err := b.unwind(depth, path); err != nil {
			return nil, BuildStats{}, err
		}

		switch {
		case info.IsDir():
			node, err := b.pushFolder(path, depth)
			if err != nil {
				return nil, BuildStats{}, err
			}
			if rootNode == nil {
				rootNode = node
			}
		case info.Mode().IsRegular():
			if err := b.addFile(path, info.Size()); err != nil {
				return nil, BuildStats{}, err
			}
		default:
			b.stats.Skipped++
			logger.Debug("Path couldn't be classified as a directory or regular file", "path", path, "mode", info.Mode().String())
		}
	}

	if rootNode == nil {
		return nil, BuildStats{}, fmt.Errorf("%w: the root directory %s could not be read", ErrInvalidArgument, b.root)
	}
	return rootNode, b.stats, nil
}

// depthOf returns the number of path components of path beyond the root.
func (b *builder) depthOf(path string) (int, error) {
	rel, err := filepath.Rel(b.root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return 0, fmt.Errorf("%w: walked outside of the root: %s", ErrInvariant, path)
	}
	if rel == "." {
		return 0, nil
	}
	return len(strings.Split(rel, string(filepath.Separator))), nil
}

// unwind pops frames until the stack top is the parent of an entry at depth.
func (b *builder) unwind(depth int, path string) error {
	placeAtDepth := depth - 1
	curDepth := len(b.stack) - 1
	pops := curDepth - placeAtDepth
	if pops < 0 {
		return fmt.Errorf("%w: calculated a negative number of stack pops (%d) for %s", ErrInvariant, pops, path)
	}
	b.stack = b.stack[:len(b.stack)-pops]
	return nil
}

func (b *builder) pushFolder(path string, depth int) (*FolderNode, error) {
	node := newFolderNode(path, depth)
	if len(b.stack) == 0 {
		if depth != 0 {
			return nil, fmt.Errorf("%w: folder %s has no open parent", ErrInvariant, path)
		}
	} else if err := b.top().attach(node, filepath.Base(path)); err != nil {
		return nil, err
	}
	b.stack = append(b.stack, node)
	b.stats.Folders++
	return node, nil
}

func (b *builder) addFile(path string, size int64) error {
	folder := b.top()
	if folder == nil {
		return fmt.Errorf("%w: file %s has no open parent folder", ErrInvariant, path)
	}
	name := filepath.Base(path)
	category, err := b.classifier.Classify(name, size, b.threshold)
	if err != nil {
		return err
	}
	if err := folder.addFile(name, category); err != nil {
		return err
	}
	b.stats.Files[category]++
	return nil
}

func (b *builder) top() *FolderNode {
	if len(b.stack) == 0 {
		return nil
	}
	return b.stack[len(b.stack)-1]
}
