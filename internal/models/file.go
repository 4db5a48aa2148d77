package models

// HashFileRequest names a file and digest algorithm.
type HashFileRequest struct {
	Path string `json:"path"`
	// Algorithm is one of sha256, sha1, sha512, md5, xxhash64. Empty selects the
	// server default.
	Algorithm string `json:"algorithm,omitempty"`
}

// HashFileResponse carries the lowercase hex digest.
type HashFileResponse struct {
	Path      string `json:"path"`
	Algorithm string `json:"algorithm"`
	Digest    string `json:"digest"`
	Size      int64  `json:"size"`
}

// BackupFileRequest copies Source into TargetDirectory under a free name derived from
// TargetName (Source's base name when empty).
type BackupFileRequest struct {
	Source          string `json:"source"`
	TargetDirectory string `json:"target_directory"`
	TargetName      string `json:"target_name,omitempty"`
}

// BackupFileResponse reports where the copy went.
type BackupFileResponse struct {
	Source     string `json:"source"`
	BackupPath string `json:"backup_path"`
}

// CopyFileRequest copies Source to Target unless Target already exists.
type CopyFileRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// CopyFileResponse reports whether the copy happened.
type CopyFileResponse struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Copied bool   `json:"copied"`
}

// RenameFileRequest moves Source to Target unless Target already exists.
type RenameFileRequest struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// RenameFileResponse reports whether the rename happened.
type RenameFileResponse struct {
	Source  string `json:"source"`
	Target  string `json:"target"`
	Renamed bool   `json:"renamed"`
}

// RemoveFileRequest deletes a file. A missing file is not an error.
type RemoveFileRequest struct {
	Path string `json:"path"`
}

// RemoveFileResponse reports whether anything was deleted.
type RemoveFileResponse struct {
	Path    string `json:"path"`
	Removed bool   `json:"removed"`
}

// Existence check modes accepted in ExistsRequest.Mode.
const (
	ExistsModeAll = "all"
	ExistsModeAny = "any"
)

// ExistsRequest checks Paths in order.
type ExistsRequest struct {
	Paths []string `json:"paths"`
	// Mode is "all" (default) or "any".
	Mode string `json:"mode,omitempty"`
}

// ExistsResponse carries the outcome. In "all" mode Path is the first missing path, in
// "any" mode the first present one; it is empty when no path decided the outcome.
type ExistsResponse struct {
	Mode   string `json:"mode"`
	Exists bool   `json:"exists"`
	Path   string `json:"path,omitempty"`
}

// Encodings accepted in HashDataRequest.Encoding.
const (
	EncodingUTF8   = "utf8"
	EncodingBase64 = "base64"
)

// HashDataRequest digests inline content.
type HashDataRequest struct {
	Data string `json:"data"`
	// Encoding is "utf8" (default) or "base64".
	Encoding  string `json:"encoding,omitempty"`
	Algorithm string `json:"algorithm,omitempty"`
}

// HashDataResponse carries the lowercase hex digest of the decoded data.
type HashDataResponse struct {
	Algorithm string `json:"algorithm"`
	Digest    string `json:"digest"`
	Size      int64  `json:"size"`
}
