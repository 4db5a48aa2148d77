package models

// Name resolution variants accepted in ResolveNameRequest.Variant.
const (
	VariantFile   = "file"
	VariantBase   = "base"
	VariantFolder = "folder"
)

// ResolveNameRequest asks for a name that does not yet exist in Directory.
type ResolveNameRequest struct {
	// Directory is relative to the working directory. Empty means the working directory.
	Directory string `json:"directory"`
	// Name is the desired file, base or folder name.
	Name string `json:"name"`
	// Variant is "file" (default), "base" or "folder".
	Variant string `json:"variant,omitempty"`
	// Extension is used with the "base" variant, dot included.
	Extension string `json:"extension,omitempty"`
	// Sanitize replaces characters invalid in file names before resolving.
	Sanitize bool `json:"sanitize,omitempty"`
}

// ResolveNameResponse carries the free name.
type ResolveNameResponse struct {
	Directory string `json:"directory"`
	Name      string `json:"name"`
	// Path is Directory joined with the free name (and Extension for the base variant).
	Path string `json:"path"`
}
