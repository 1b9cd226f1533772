package catalog

import (
	"context"
	"fmt"
	"path/filepath"
)

// fileOp is one validate/act/record file mutation. act performs exactly one
// filesystem primitive; record updates the folder records afterwards.
type fileOp struct {
	op     MutationOp
	act    func(src, dst string) error
	record func(src, dst *FolderNode, srcName, dstName string, category Category) error
}

// DeleteFile removes the file at path from disk and from the catalog.
func (c *Catalog) DeleteFile(ctx context.Context, path string) error {
	return c.runFileOp(ctx, fileOp{
		op: OpDelete,
		act: func(src, _ string) error {
			return c.fs.Remove(src)
		},
		record: func(src, _ *FolderNode, srcName, _ string, category Category) error {
			return src.removeFile(srcName, category)
		},
	}, path, "")
}

// CopyFile copies the file at source to destination, preserving its
// attributes, and records the copy under the source's category.
func (c *Catalog) CopyFile(ctx context.Context, source, destination string) error {
	return c.runFileOp(ctx, fileOp{
		op:  OpCopy,
		act: c.fs.CopyFile,
		record: func(_, dst *FolderNode, _, dstName string, category Category) error {
			return dst.addFile(dstName, category)
		},
	}, source, destination)
}

// MoveFile moves the file at source to destination.
func (c *Catalog) MoveFile(ctx context.Context, source, destination string) error {
	return c.runFileOp(ctx, fileOp{
		op:  OpMove,
		act: c.fs.Rename,
		record: func(src, dst *FolderNode, srcName, dstName string, category Category) error {
			if err := src.removeFile(srcName, category); err != nil {
				return err
			}
			return dst.addFile(dstName, category)
		},
	}, source, destination)
}

// runFileOp validates both ends of op before touching the filesystem, and
// touches the records only once the filesystem primitive has succeeded.
// Deletions have no destination.
func (c *Catalog) runFileOp(ctx context.Context, op fileOp, source, destination string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := mustBeAbsolute(source); err != nil {
		return err
	}
	source = filepath.Clean(source)
	srcName := filepath.Base(source)
	srcFolder, err := c.OpenFolder(filepath.Dir(source))
	if err != nil {
		return fmt.Errorf("could not resolve the source path %s: %w", source, err)
	}
	category, ok := srcFolder.FileCategory(srcName)
	if !ok {
		return fmt.Errorf("%w: the source file could not be located: %s", ErrNotFound, source)
	}

	var dstFolder *FolderNode
	var dstName string
	if op.op != OpDelete {
		dstFolder, dstName, err = c.resolveDestination(destination)
		if err != nil {
			return err
		}
		destination = dstFolder.PathOf(dstName)
	}

	if err := op.act(source, destination); err != nil {
		return fmt.Errorf("%w: a low level file IO error occurred during %s of %s to %s, check file permissions: %w", ErrIO, op.op, source, destination, err)
	}

	if err := c.confirmOnDisk(op.op, source, destination); err != nil {
		return err
	}

	if err := op.record(srcFolder, dstFolder, srcName, dstName, category); err != nil {
		return fmt.Errorf("record %s of %s: %w", op.op, source, err)
	}

	c.loggerOrDefault().Info("Applied file mutation", "op", op.op, "source", source, "destination", destination, "category", category.String())
	c.dispatch(ctx, Mutation{
		Op:          op.op,
		Kind:        KindFile,
		Source:      source,
		Destination: destination,
		Category:    category,
	})
	return nil
}

// resolveDestination returns the folder that will hold destination and the
// destination's name, failing when the name is already taken by any entry.
func (c *Catalog) resolveDestination(destination string) (*FolderNode, string, error) {
	if err := mustBeAbsolute(destination); err != nil {
		return nil, "", err
	}
	destination = filepath.Clean(destination)
	name := filepath.Base(destination)
	if err := mustBeFilename(name); err != nil {
		return nil, "", err
	}
	folder, err := c.OpenFolder(filepath.Dir(destination))
	if err != nil {
		return nil, "", fmt.Errorf("could not resolve the destination path %s: %w", destination, err)
	}
	if err := checkCollision(folder, name); err != nil {
		return nil, "", err
	}
	return folder, name, nil
}

func checkCollision(folder *FolderNode, name string) error {
	if _, ok := folder.Child(name); ok {
		return fmt.Errorf("%w: the destination folder %s already contains a folder named %s", ErrCollision, folder, name)
	}
	if category, ok := folder.FileCategory(name); ok {
		return fmt.Errorf("%w: the destination folder %s already contains a %s file named %s", ErrCollision, folder, category, name)
	}
	return nil
}

// confirmOnDisk checks that the filesystem reflects a completed primitive
// before the records change: the source is gone after a delete or move and
// the destination exists after a copy or move.
func (c *Catalog) confirmOnDisk(op MutationOp, source, destination string) error {
	if op != OpCopy {
		present, err := Exists(c.fs, source)
		if err != nil {
			return err
		}
		if present {
			return fmt.Errorf("%w: %s of %s completed but the source is still on disk", ErrInvariant, op, source)
		}
	}
	if op != OpDelete {
		present, err := Exists(c.fs, destination)
		if err != nil {
			return err
		}
		if !present {
			return fmt.Errorf("%w: %s of %s completed but %s is not on disk", ErrInvariant, op, source, destination)
		}
	}
	return nil
}
