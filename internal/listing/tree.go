package listing

import (
	"context"

	apperrors "file-utils-server/internal/errors"
)

// ListRecursively returns every entry below root in pre-order: each folder is followed
// directly by its own contents, before its next sibling. root itself is not included.
func (l *Lister) ListRecursively(ctx context.Context, root string) ([]Entry, error) {
	var out []Entry
	if err := l.appendTree(ctx, root, ancestry{}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []Entry{}
	}
	return out, nil
}

func (l *Lister) appendTree(ctx context.Context, dir string, seen ancestry, out *[]Entry) error {
	leave, err := l.enter(seen, dir)
	if err != nil {
		return err
	}
	defer leave()

	entries, err := l.List(ctx, dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		*out = append(*out, entry)
		if folder, ok := entry.(*FolderEntry); ok {
			if err := l.appendTree(ctx, folder.Path, seen, out); err != nil {
				return err
			}
		}
	}
	return nil
}

// ListRecursivelyInTree returns a FolderEntry for root whose children, and their
// children in turn, are populated in directory read order.
func (l *Lister) ListRecursivelyInTree(ctx context.Context, root string) (*FolderEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	stats, err := l.stat.GetFileStats(root)
	if err != nil {
		return nil, apperrors.NewIOError("stat", root, err)
	}
	if !stats.IsDir {
		return nil, apperrors.InvalidArgumentf("%s is not a directory", root)
	}

	node := &FolderEntry{Path: root, CreationTime: stats.CreationTime}
	if err := l.fill(ctx, node, ancestry{}); err != nil {
		return nil, err
	}
	return node, nil
}

func (l *Lister) fill(ctx context.Context, node *FolderEntry, seen ancestry) error {
	leave, err := l.enter(seen, node.Path)
	if err != nil {
		return err
	}
	defer leave()

	children, err := l.List(ctx, node.Path)
	if err != nil {
		return err
	}
	for _, child := range children {
		if folder, ok := child.(*FolderEntry); ok {
			if err := l.fill(ctx, folder, seen); err != nil {
				return err
			}
		}
	}
	node.Children = children
	return nil
}
