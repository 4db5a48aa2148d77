package service

import (
	"file-utils-server/internal/filesystem"
)

// confinedStats follows symlinks only while their target stays inside root. An entry
// resolving outside is reported with its own link metadata, so listings show it as a
// file and never descend through it.
type confinedStats struct {
	fs   filesystem.FileSystemAdapter
	root string
}

func (c confinedStats) GetFileStats(path string) (*filesystem.FileStats, error) {
	resolved, err := c.fs.EvalSymlinks(path)
	if err != nil {
		// A dangling link cannot be resolved; the plain stat reports it.
		return c.fs.GetFileStats(path)
	}
	if !within(c.root, resolved) {
		return c.fs.GetLinkStats(path)
	}
	return c.fs.GetFileStats(path)
}
