package catalog

import (
	"fmt"
	"iter"
	"path/filepath"
	"sort"
)

// FolderNode records one directory of the catalog: its absolute path, its
// depth below the catalog root, its child folders keyed by name and its file
// names partitioned by category. A node is owned by its parent's children
// map; nodes hold no reference to their parent.
type FolderNode struct {
	path     string
	depth    int
	children map[string]*FolderNode
	files    [numFileCategories]map[string]struct{}
}

func newFolderNode(path string, depth int) *FolderNode {
	n := &FolderNode{
		path:     filepath.Clean(path),
		depth:    depth,
		children: make(map[string]*FolderNode),
	}
	for i := range n.files {
		n.files[i] = make(map[string]struct{})
	}
	return n
}

// Path returns the absolute path of the directory.
func (n *FolderNode) Path() string { return n.path }

// Name returns the final component of the directory path.
func (n *FolderNode) Name() string { return filepath.Base(n.path) }

// Depth returns the distance from the catalog root, which has depth 0.
func (n *FolderNode) Depth() int { return n.depth }

func (n *FolderNode) String() string { return n.path }

// PathOf returns the absolute path of the entry called name inside this folder.
func (n *FolderNode) PathOf(name string) string {
	return filepath.Join(n.path, name)
}

// Child returns the child folder called name.
func (n *FolderNode) Child(name string) (*FolderNode, bool) {
	child, ok := n.children[name]
	return child, ok
}

// ChildNames returns the names of the child folders in lexical order.
func (n *FolderNode) ChildNames() []string {
	return sortedKeys(n.children)
}

// Children returns the child folders ordered by name.
func (n *FolderNode) Children() []*FolderNode {
	names := n.ChildNames()
	children := make([]*FolderNode, len(names))
	for i, name := range names {
		children[i] = n.children[name]
	}
	return children
}

// Files returns the sorted file names recorded under category. Folder
// returns the child folder names.
func (n *FolderNode) Files(category Category) []string {
	if category == Folder {
		return n.ChildNames()
	}
	if !category.IsFile() {
		return nil
	}
	return sortedKeys(n.files[category])
}

// AllFiles returns every file name in the folder regardless of category.
func (n *FolderNode) AllFiles() []string {
	var names []string
	for _, set := range n.files {
		for name := range set {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Count returns the number of entries recorded under category.
func (n *FolderNode) Count(category Category) int {
	if category == Folder {
		return len(n.children)
	}
	if !category.IsFile() {
		return 0
	}
	return len(n.files[category])
}

// FileCategory returns the category holding the file called name.
func (n *FolderNode) FileCategory(name string) (Category, bool) {
	for _, category := range FileCategories {
		if _, ok := n.files[category][name]; ok {
			return category, true
		}
	}
	return 0, false
}

// ContainsFile reports whether a file called name is recorded in any category.
func (n *FolderNode) ContainsFile(name string) bool {
	_, ok := n.FileCategory(name)
	return ok
}

// Contains reports whether name is taken by a file of any category or by a
// child folder.
func (n *FolderNode) Contains(name string) bool {
	if _, ok := n.children[name]; ok {
		return true
	}
	return n.ContainsFile(name)
}

// IsEmpty reports whether the folder records no files and no child folders.
func (n *FolderNode) IsEmpty() bool {
	if len(n.children) > 0 {
		return false
	}
	for _, set := range n.files {
		if len(set) > 0 {
			return false
		}
	}
	return true
}

// Subtree returns a sequence starting with n followed by every descendant in
// breadth-first order: all nodes at depth k come before any node at depth
// k+1. The order of nodes at the same depth is unspecified. The sequence is
// lazy and can be iterated more than once. A nil node yields nothing.
func (n *FolderNode) Subtree() iter.Seq[*FolderNode] {
	return func(yield func(*FolderNode) bool) {
		if n == nil {
			return
		}
		queue := []*FolderNode{n}
		for len(queue) > 0 {
			cur := queue[0]
			queue = queue[1:]
			if !yield(cur) {
				return
			}
			for _, child := range cur.children {
				queue = append(queue, child)
			}
		}
	}
}

func (n *FolderNode) addFile(name string, category Category) error {
	if err := mustBeFilename(name); err != nil {
		return err
	}
	if !category.IsFile() {
		return fmt.Errorf("%w: %s is not a file category", ErrInvariant, category)
	}
	if n.Contains(name) {
		return fmt.Errorf("%w: the folder %s already contains an entry named %s", ErrInvariant, n, name)
	}
	n.files[category][name] = struct{}{}
	return nil
}

func (n *FolderNode) removeFile(name string, category Category) error {
	if !category.IsFile() {
		return fmt.Errorf("%w: %s is not a file category", ErrInvariant, category)
	}
	if _, ok := n.files[category][name]; !ok {
		return fmt.Errorf("%w: could not locate the %s record for deletion: %s", ErrInvariant, category, n.PathOf(name))
	}
	delete(n.files[category], name)
	return nil
}

// attach places child under n as name, rewriting the path and depth of
// child and every node below it.
func (n *FolderNode) attach(child *FolderNode, name string) error {
	if err := mustBeFilename(name); err != nil {
		return err
	}
	if n.Contains(name) {
		return fmt.Errorf("%w: the folder %s already contains an entry named %s", ErrInvariant, n, name)
	}
	child.relocate(n.PathOf(name), n.depth+1)
	n.children[name] = child
	return nil
}

func (n *FolderNode) detach(name string) (*FolderNode, error) {
	child, ok := n.children[name]
	if !ok {
		return nil, fmt.Errorf("%w: could not locate the folder record for removal: %s", ErrInvariant, n.PathOf(name))
	}
	delete(n.children, name)
	return child, nil
}

// relocate moves n to path at depth and ripples the change through the
// subtree. Descendant paths are derived from their parent's new path and
// their key in the parent's children map.
func (n *FolderNode) relocate(path string, depth int) {
	n.path = filepath.Clean(path)
	n.depth = depth
	queue := []*FolderNode{n}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for name, child := range cur.children {
			child.path = cur.PathOf(name)
			child.depth = cur.depth + 1
			queue = append(queue, child)
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
