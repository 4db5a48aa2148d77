package models

// Listing modes accepted in ListDirectoryRequest.Mode.
const (
	ListModeFlat      = "flat"
	ListModeRecursive = "recursive"
	ListModeTree      = "tree"
)

// Entry types reported in EntryInfo.Type.
const (
	EntryTypeFile   = "file"
	EntryTypeFolder = "folder"
)

// ListDirectoryRequest selects a directory and how deep to list it.
type ListDirectoryRequest struct {
	Directory string `json:"directory"`
	// Mode is "flat" (default), "recursive" or "tree".
	Mode string `json:"mode,omitempty"`
	// HumanSizes adds size_human to file entries.
	HumanSizes bool `json:"human_sizes,omitempty"`
}

// EntryInfo describes one file or folder. Paths are relative to the working directory
// and times are RFC 3339 in UTC.
type EntryInfo struct {
	Type             string      `json:"type"`
	Path             string      `json:"path"`
	CreationTime     string      `json:"creation_time"`
	Size             *uint64     `json:"size,omitempty"`
	SizeHuman        string      `json:"size_human,omitempty"`
	LastModifiedTime string      `json:"last_modified_time,omitempty"`
	Children         []EntryInfo `json:"children,omitempty"`
}

// ListDirectoryResponse holds the entries in directory read order. In tree mode Entries
// holds the root's children, each with nested Children.
type ListDirectoryResponse struct {
	Directory  string      `json:"directory"`
	Mode       string      `json:"mode"`
	TotalCount int         `json:"total_count"`
	Entries    []EntryInfo `json:"entries"`
}
