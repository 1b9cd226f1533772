package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// DeleteFolder removes the folder at path from disk and from the catalog.
// The filesystem refuses non-empty directories and that refusal is
// returned as an ErrIO failure with records left unchanged.
func (c *Catalog) DeleteFolder(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	folder, parent, err := c.openWithParent(path, "delete")
	if err != nil {
		return err
	}
	source := folder.Path()

	if err := c.fs.Remove(source); err != nil {
		return fmt.Errorf("%w: a low level file IO error occurred during delete of %s, check folder permissions: %w", ErrIO, source, err)
	}
	if err := c.confirmOnDisk(OpDelete, source, ""); err != nil {
		return err
	}

	if _, err := parent.detach(folder.Name()); err != nil {
		return fmt.Errorf("record delete of %s: %w", source, err)
	}

	c.loggerOrDefault().Info("Applied folder mutation", "op", OpDelete, "source", source)
	c.dispatch(ctx, Mutation{Op: OpDelete, Kind: KindFolder, Source: source, Category: Folder})
	return nil
}

// MoveFolder moves the folder at source, with its whole subtree, to
// destination using a single rename. Every record below the moved folder is
// rewritten to its new path and depth.
func (c *Catalog) MoveFolder(ctx context.Context, source, destination string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	folder, srcParent, err := c.openWithParent(source, "move")
	if err != nil {
		return err
	}
	source = folder.Path()
	if err := mustBeAbsolute(destination); err != nil {
		return err
	}
	if isWithin(filepath.Clean(destination), source) {
		return fmt.Errorf("%w: cannot move %s into itself at %s", ErrInvalidArgument, source, destination)
	}
	dstParent, dstName, err := c.resolveDestination(destination)
	if err != nil {
		return err
	}
	destination = dstParent.PathOf(dstName)

	if err := c.fs.Rename(source, destination); err != nil {
		return fmt.Errorf("%w: a low level file IO error occurred during move of %s to %s, check folder permissions: %w", ErrIO, source, destination, err)
	}
	if err := c.confirmOnDisk(OpMove, source, destination); err != nil {
		return err
	}

	node, err := srcParent.detach(folder.Name())
	if err != nil {
		return fmt.Errorf("record move of %s: %w", source, err)
	}
	if err := dstParent.attach(node, dstName); err != nil {
		return fmt.Errorf("record move of %s: %w", source, err)
	}

	c.loggerOrDefault().Info("Applied folder mutation", "op", OpMove, "source", source, "destination", destination)
	c.dispatch(ctx, Mutation{Op: OpMove, Kind: KindFolder, Source: source, Destination: destination, Category: Folder})
	return nil
}

// CopyFolder copies the folder at source to destination. Folders are
// visited breadth first: each one gets an empty copy of itself created at
// its destination, then each of its files is copied individually through
// CopyFile with the usual collision checks. The context is checked between
// steps; a cancelled copy leaves everything copied so far recorded.
func (c *Catalog) CopyFolder(ctx context.Context, source, destination string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := mustBeAbsolute(source); err != nil {
		return err
	}
	origin, err := c.OpenFolder(source)
	if err != nil {
		return fmt.Errorf("could not open the source folder %s: %w", source, err)
	}
	source = origin.Path()
	if err := mustBeAbsolute(destination); err != nil {
		return err
	}
	destination = filepath.Clean(destination)
	if isWithin(destination, source) {
		return fmt.Errorf("%w: cannot copy %s into itself at %s", ErrInvalidArgument, source, destination)
	}
	if _, _, err := c.resolveDestination(destination); err != nil {
		return err
	}

	logger := c.loggerOrDefault()
	folders, files := 0, 0
	for folder := range origin.Subtree() {
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(source, folder.Path())
		if err != nil {
			return fmt.Errorf("%w: %s is not below %s", ErrInvariant, folder, source)
		}
		target := filepath.Join(destination, rel)
		if err := c.copyFolderShell(ctx, folder, target); err != nil {
			return err
		}
		folders++
		for _, name := range folder.AllFiles() {
			if err := c.CopyFile(ctx, folder.PathOf(name), filepath.Join(target, name)); err != nil {
				return err
			}
			files++
		}
	}

	logger.Info("Copied folder", "source", source, "destination", destination, "folders", folders, "files", files)
	return nil
}

// copyFolderShell creates an empty copy of folder at target and records it.
func (c *Catalog) copyFolderShell(ctx context.Context, folder *FolderNode, target string) error {
	dstParent, dstName, err := c.resolveDestination(target)
	if err != nil {
		return err
	}
	target = dstParent.PathOf(dstName)

	if err := c.fs.CopyDir(folder.Path(), target); err != nil {
		return fmt.Errorf("%w: a low level file IO error occurred during copy of %s to %s, check folder permissions: %w", ErrIO, folder, target, err)
	}
	if err := c.confirmOnDisk(OpCopy, folder.Path(), target); err != nil {
		return err
	}

	if err := dstParent.attach(newFolderNode(target, dstParent.Depth()+1), dstName); err != nil {
		return fmt.Errorf("record copy of %s: %w", folder, err)
	}

	c.loggerOrDefault().Debug("Applied folder mutation", "op", OpCopy, "source", folder.Path(), "destination", target)
	c.dispatch(ctx, Mutation{Op: OpCopy, Kind: KindFolder, Source: folder.Path(), Destination: target, Category: Folder})
	return nil
}

// openWithParent resolves a folder other than the root together with the
// folder holding it.
func (c *Catalog) openWithParent(path, op string) (*FolderNode, *FolderNode, error) {
	if err := mustBeAbsolute(path); err != nil {
		return nil, nil, err
	}
	path = filepath.Clean(path)
	if path == c.RootPath() {
		return nil, nil, fmt.Errorf("%w: cannot %s the catalog root %s", ErrInvalidArgument, op, path)
	}
	folder, err := c.OpenFolder(path)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open the source %s: %w", path, err)
	}
	parent, err := c.OpenFolder(filepath.Dir(path))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: the parent of %s is not recorded: %v", ErrInvariant, path, err)
	}
	return folder, parent, nil
}

// isWithin reports whether path equals dir or lies below it.
func isWithin(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
