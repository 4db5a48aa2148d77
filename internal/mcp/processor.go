package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"file-utils-server/internal/errors"
	"file-utils-server/internal/models"
	"file-utils-server/internal/service"
)

const protocolVersion = "2024-11-05"

// MCPProcessor answers the MCP methods: initialize, tools/list and tools/call.
type MCPProcessor struct {
	service service.FileUtilityService
	version string
}

// NewMCPProcessor creates a new MCPProcessor.
func NewMCPProcessor(svc service.FileUtilityService, version string) *MCPProcessor {
	return &MCPProcessor{service: svc, version: version}
}

// Handles reports whether method is an MCP method.
func (p *MCPProcessor) Handles(method string) bool {
	switch method {
	case models.MethodInitialize, models.MethodToolsList, models.MethodToolsCall:
		return true
	}
	return false
}

// ProcessRequest handles one MCP request. Tool failures come back as an MCPToolResult
// with IsError set; only protocol problems produce an ErrorDetail.
func (p *MCPProcessor) ProcessRequest(ctx context.Context, req models.JSONRPCRequest) (interface{}, *models.ErrorDetail) {
	switch req.Method {
	case models.MethodInitialize:
		return &models.InitializeResponse{
			ProtocolVersion: protocolVersion,
			Capabilities:    models.Capabilities{Tools: models.ToolsCapabilities{}},
			ServerInfo: models.ServerInfo{
				Name:        "file-utils-server",
				Version:     p.version,
				Description: "Collision-free names, directory listings, hashes and backups inside a working directory.",
			},
		}, nil
	case models.MethodToolsList:
		return &models.ToolsListResponse{Tools: toolDefinitions()}, nil
	case models.MethodToolsCall:
		var params models.ToolCallParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return nil, errors.NewInvalidParamsError("Invalid parameters for tools/call: "+err.Error(), nil)
		}
		if params.Name == "" {
			return nil, errors.NewInvalidParamsError("tools/call requires a tool name", map[string]interface{}{"name": "missing"})
		}
		return p.handleToolCall(ctx, params.Name, params.Arguments), nil
	default:
		return nil, errors.NewMethodNotFoundError(req.Method)
	}
}

func (p *MCPProcessor) handleToolCall(ctx context.Context, toolName string, toolArgs json.RawMessage) *models.MCPToolResult {
	result, serviceErr := service.Invoke(ctx, p.service, toolName, toolArgs)
	if serviceErr != nil {
		if serviceErr.Code == errors.CodeMethodNotFound {
			return textResult(true, "Error: Unknown tool '"+toolName+"'.")
		}
		return textResult(true, formatToolError(serviceErr))
	}

	switch r := result.(type) {
	case *models.ResolveNameResponse:
		return textResult(false, fmt.Sprintf("Free name: %s\nPath: %s\n", r.Name, r.Path))
	case *models.ListDirectoryResponse:
		return textResult(false, formatListing(r))
	case *models.HashFileResponse:
		return textResult(false, fmt.Sprintf("%s (%s, %d bytes): %s\n", r.Path, r.Algorithm, r.Size, r.Digest))
	case *models.BackupFileResponse:
		return textResult(false, fmt.Sprintf("Backed up %s to %s\n", r.Source, r.BackupPath))
	case *models.CopyFileResponse:
		if !r.Copied {
			return textResult(false, fmt.Sprintf("%s already exists; nothing copied.\n", r.Target))
		}
		return textResult(false, fmt.Sprintf("Copied %s to %s\n", r.Source, r.Target))
	case *models.RenameFileResponse:
		if !r.Renamed {
			return textResult(false, fmt.Sprintf("%s already exists; nothing renamed.\n", r.Target))
		}
		return textResult(false, fmt.Sprintf("Renamed %s to %s\n", r.Source, r.Target))
	case *models.RemoveFileResponse:
		if !r.Removed {
			return textResult(false, fmt.Sprintf("%s does not exist; nothing removed.\n", r.Path))
		}
		return textResult(false, fmt.Sprintf("Removed %s\n", r.Path))
	case *models.ExistsResponse:
		return textResult(false, formatExists(r))
	case *models.HashDataResponse:
		return textResult(false, fmt.Sprintf("data (%s, %d bytes): %s\n", r.Algorithm, r.Size, r.Digest))
	}
	encoded, _ := json.MarshalIndent(result, "", "  ")
	return textResult(false, string(encoded))
}

func textResult(isError bool, text string) *models.MCPToolResult {
	return &models.MCPToolResult{
		Content: []models.MCPToolContent{{Type: "text", Text: text}},
		IsError: isError,
	}
}

func formatListing(r *models.ListDirectoryResponse) string {
	if r.TotalCount == 0 {
		return fmt.Sprintf("Directory %s is empty.\n", r.Directory)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Directory: %s\nMode: %s\nTotal entries: %d\n\n", r.Directory, r.Mode, r.TotalCount)
	writeEntries(&b, r.Entries, 0)
	return b.String()
}

func writeEntries(b *strings.Builder, entries []models.EntryInfo, depth int) {
	indent := strings.Repeat("  ", depth)
	for _, e := range entries {
		if e.Type == models.EntryTypeFolder {
			fmt.Fprintf(b, "%s- %s/\n", indent, e.Path)
			writeEntries(b, e.Children, depth+1)
			continue
		}
		size := uint64(0)
		if e.Size != nil {
			size = *e.Size
		}
		if e.SizeHuman != "" {
			fmt.Fprintf(b, "%s- %s (%s, modified %s)\n", indent, e.Path, e.SizeHuman, e.LastModifiedTime)
		} else {
			fmt.Fprintf(b, "%s- %s (%d bytes, modified %s)\n", indent, e.Path, size, e.LastModifiedTime)
		}
	}
}

func formatExists(r *models.ExistsResponse) string {
	switch {
	case r.Mode == models.ExistsModeAny && r.Exists:
		return fmt.Sprintf("Found: %s\n", r.Path)
	case r.Mode == models.ExistsModeAny:
		return "None of the paths exist.\n"
	case r.Exists:
		return "All paths exist.\n"
	}
	return fmt.Sprintf("Missing: %s\n", r.Path)
}

// formatToolError renders "Error: <message> (Code: <code>)", with details when present.
func formatToolError(serviceErr *models.ErrorDetail) string {
	msg := fmt.Sprintf("Error: %s (Code: %d)", serviceErr.Message, serviceErr.Code)
	if data, ok := serviceErr.Data.(map[string]interface{}); ok {
		if details, ok := data["details"].(string); ok && details != "" && details != serviceErr.Message {
			msg += "\nDetails: " + details
		}
	}
	return msg
}
