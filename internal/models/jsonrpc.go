package models

import "encoding/json"

// JSONRPCVersion is the only protocol version accepted.
const JSONRPCVersion = "2.0"

// Method names served over JSON-RPC.
const (
	MethodResolveName   = "resolve_name"
	MethodListDirectory = "list_directory"
	MethodHashFile      = "hash_file"
	MethodBackupFile    = "backup_file"
	MethodCopyFile      = "copy_file"
	MethodRenameFile    = "rename_file"
	MethodRemoveFile    = "remove_file"
	MethodExists        = "exists"
	MethodHashData      = "hash_data"
	MethodInitialize    = "initialize"
	MethodToolsList     = "tools/list"
	MethodToolsCall     = "tools/call"
)

// JSONRPCRequest represents a JSON-RPC request object.
type JSONRPCRequest struct {
	// JSONRPC must be "2.0".
	JSONRPC string `json:"jsonrpc"`
	// ID is echoed in the response. It is absent for notifications.
	ID interface{} `json:"id"`
	// Method is the name of the method to invoke.
	Method string `json:"method"`
	// Params is decoded once the method is known.
	Params json.RawMessage `json:"params"`
}

// JSONRPCErrorData is the application-specific 'data' member of a JSON-RPC error.
type JSONRPCErrorData struct {
	Filename  string `json:"filename,omitempty"`
	Operation string `json:"operation,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Details   string `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// JSONRPCError represents a JSON-RPC error object.
type JSONRPCError struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Data    *JSONRPCErrorData `json:"data,omitempty"`
}

// JSONRPCResponse represents a JSON-RPC response object. Exactly one of Result and
// Error is set.
type JSONRPCResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      interface{}   `json:"id"`
	Result  interface{}   `json:"result,omitempty"`
	Error   *JSONRPCError `json:"error,omitempty"`
}
