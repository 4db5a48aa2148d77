package mcp

import "file-utils-server/internal/models"

func toolDefinitions() []models.ToolDefinition {
	str := func(desc string) map[string]interface{} {
		return map[string]interface{}{"type": "string", "description": desc}
	}
	return []models.ToolDefinition{
		{
			Name: models.MethodResolveName,
			Description: "Finds a name that does not exist yet in a directory by appending or incrementing a " +
				"trailing number: 'report.txt' becomes 'report 2.txt', 'report 3.txt' and so on.",
			InputSchema: models.Schema{
				"type": "object",
				"properties": map[string]interface{}{
					"directory": str("Directory relative to the working directory. Empty for the working directory itself."),
					"name":      str("Desired name."),
					"variant": map[string]interface{}{
						"type": "string", "enum": []string{models.VariantFile, models.VariantBase, models.VariantFolder},
						"description": "file: number goes before the extension; base: name plus a fixed extension; folder: whole name is one token.",
					},
					"extension": str("Extension, dot included, for the base variant."),
					"sanitize": map[string]interface{}{
						"type":        "boolean",
						"description": "Replace characters that are invalid in file names before resolving.",
					},
				},
				"required": []string{"name"},
			},
			Annotations: models.ToolAnnotations{ReadOnlyHint: true},
		},
		{
			Name:        models.MethodListDirectory,
			Description: "Lists a directory with type, size and timestamps per entry. Modes: flat (one level), recursive (flat pre-order of everything below) or tree (nested).",
			InputSchema: models.Schema{
				"type": "object",
				"properties": map[string]interface{}{
					"directory": str("Directory relative to the working directory."),
					"mode": map[string]interface{}{
						"type": "string", "enum": []string{models.ListModeFlat, models.ListModeRecursive, models.ListModeTree},
					},
					"human_sizes": map[string]interface{}{"type": "boolean"},
				},
			},
			Annotations: models.ToolAnnotations{ReadOnlyHint: true},
		},
		{
			Name:        models.MethodHashFile,
			Description: "Computes the hex digest of a file. Algorithms: sha256 (default), sha1, sha512, md5, xxhash64.",
			InputSchema: models.Schema{
				"type": "object",
				"properties": map[string]interface{}{
					"path":      str("File path relative to the working directory."),
					"algorithm": str("Digest algorithm."),
				},
				"required": []string{"path"},
			},
			Annotations: models.ToolAnnotations{ReadOnlyHint: true},
		},
		{
			Name:        models.MethodBackupFile,
			Description: "Copies a file into a directory under a free name. Existing files are never overwritten.",
			InputSchema: models.Schema{
				"type": "object",
				"properties": map[string]interface{}{
					"source":           str("File to back up, relative to the working directory."),
					"target_directory": str("Destination directory, relative to the working directory."),
					"target_name":      str("Desired backup name. Defaults to the source's name."),
				},
				"required": []string{"source"},
			},
			Annotations: models.ToolAnnotations{ReadOnlyHint: false, DestructiveHint: false},
		},
		{
			Name:        models.MethodCopyFile,
			Description: "Copies a file to a target path unless the target already exists. Reports whether the copy happened.",
			InputSchema: models.Schema{
				"type": "object",
				"properties": map[string]interface{}{
					"source": str("File to copy, relative to the working directory."),
					"target": str("Destination path. Its directory must exist."),
				},
				"required": []string{"source", "target"},
			},
			Annotations: models.ToolAnnotations{ReadOnlyHint: false, DestructiveHint: false},
		},
		{
			Name:        models.MethodRenameFile,
			Description: "Moves a file to a target path unless the target already exists. Reports whether the rename happened.",
			InputSchema: models.Schema{
				"type": "object",
				"properties": map[string]interface{}{
					"source": str("File to move, relative to the working directory."),
					"target": str("Destination path. Its directory must exist."),
				},
				"required": []string{"source", "target"},
			},
			Annotations: models.ToolAnnotations{ReadOnlyHint: false, DestructiveHint: false},
		},
		{
			Name:        models.MethodRemoveFile,
			Description: "Deletes a file. A missing file is not an error. Directories are refused.",
			InputSchema: models.Schema{
				"type": "object",
				"properties": map[string]interface{}{
					"path": str("File to delete, relative to the working directory."),
				},
				"required": []string{"path"},
			},
			Annotations: models.ToolAnnotations{ReadOnlyHint: false, DestructiveHint: true},
		},
		{
			Name:        models.MethodExists,
			Description: "Checks paths in order. Mode all (default) reports the first missing path, mode any the first present one.",
			InputSchema: models.Schema{
				"type": "object",
				"properties": map[string]interface{}{
					"paths": map[string]interface{}{
						"type": "array", "items": map[string]interface{}{"type": "string"},
						"description": "Paths relative to the working directory.",
					},
					"mode": map[string]interface{}{
						"type": "string", "enum": []string{models.ExistsModeAll, models.ExistsModeAny},
					},
				},
				"required": []string{"paths"},
			},
			Annotations: models.ToolAnnotations{ReadOnlyHint: true},
		},
		{
			Name:        models.MethodHashData,
			Description: "Computes the hex digest of inline content, given as UTF-8 text (default) or base64.",
			InputSchema: models.Schema{
				"type": "object",
				"properties": map[string]interface{}{
					"data": str("Content to digest."),
					"encoding": map[string]interface{}{
						"type": "string", "enum": []string{models.EncodingUTF8, models.EncodingBase64},
					},
					"algorithm": str("Digest algorithm."),
				},
				"required": []string{"data"},
			},
			Annotations: models.ToolAnnotations{ReadOnlyHint: true},
		},
	}
}
