package listing

import "time"

// Entry is either a *FileEntry or a *FolderEntry.
type Entry interface {
	EntryPath() string
	IsFolder() bool
}

// FileEntry is a snapshot of a regular file taken at list time.
type FileEntry struct {
	Path         string
	CreationTime time.Time
	Size         uint64
	// LastModifiedTime is the last content change, not the last metadata change.
	LastModifiedTime time.Time
}

func (f *FileEntry) EntryPath() string { return f.Path }
func (f *FileEntry) IsFolder() bool    { return false }

// FolderEntry is a snapshot of a directory. Children is empty for flat listings and
// filled exactly once, in directory read order, when a tree is built.
type FolderEntry struct {
	Path         string
	CreationTime time.Time
	Children     []Entry
}

func (f *FolderEntry) EntryPath() string { return f.Path }
func (f *FolderEntry) IsFolder() bool    { return true }

// Walk visits root's descendants in pre-order, the same order ListRecursively emits them.
// It stops at the first visit that returns false.
func (f *FolderEntry) Walk(visit func(Entry) bool) bool {
	for _, child := range f.Children {
		if !visit(child) {
			return false
		}
		if folder, ok := child.(*FolderEntry); ok {
			if !folder.Walk(visit) {
				return false
			}
		}
	}
	return true
}

// Count returns the number of descendants of f.
func (f *FolderEntry) Count() int {
	n := 0
	f.Walk(func(Entry) bool {
		n++
		return true
	})
	return n
}
