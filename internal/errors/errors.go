package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"file-utils-server/internal/models"
)

// JSON-RPC Error Codes (as per JSON-RPC 2.0 Specification)
const (
	CodeParseError     = -32700 // Invalid JSON was received by the server.
	CodeInvalidRequest = -32600 // The JSON sent is not a valid Request object.
	CodeMethodNotFound = -32601 // The method does not exist / is not available.
	CodeInvalidParams  = -32602 // Invalid method parameter(s).
	CodeInternalError  = -32603 // Internal JSON-RPC error.
)

// Application Specific Error Codes
const (
	// CodeFileSystemError is a generic code for file system related issues.
	// The "type" entry of the error data narrows it down (file_not_found, permission_denied, ...).
	CodeFileSystemError = -32001

	// CodeOperationLockFailed indicates that a directory lock could not be acquired in time.
	CodeOperationLockFailed = -32002

	// CodeNameAllocationExhausted indicates that every candidate name up to the attempt cap was taken.
	CodeNameAllocationExhausted = -32004
)

// ErrInvalidArgument marks failures caused by the caller's input, such as an unsupported
// hash algorithm or a name containing a path separator. It is never retried.
var ErrInvalidArgument = stdErrors.New("invalid argument")

// InvalidArgumentf returns an error wrapping ErrInvalidArgument.
func InvalidArgumentf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

// IOError is any access failure other than simple absence: permission denied, device
// errors, a directory that vanished mid-traversal.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// NewIOError wraps err as an *IOError. A nil err yields nil.
func NewIOError(op, path string, err error) error {
	if err == nil {
		return nil
	}
	var ioErr *IOError
	if stdErrors.As(err, &ioErr) {
		return err
	}
	return &IOError{Op: op, Path: path, Err: err}
}

// IsIOError reports whether err carries an *IOError anywhere in its chain.
func IsIOError(err error) bool {
	var ioErr *IOError
	return stdErrors.As(err, &ioErr)
}

// --- Helper functions to create models.ErrorDetail ---

// NewErrorDetail creates a new ErrorDetail.
func NewErrorDetail(code int, message string, data interface{}) *models.ErrorDetail {
	return &models.ErrorDetail{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// NewParseError creates an ErrorDetail for JSON parsing errors.
func NewParseError(details string) *models.ErrorDetail {
	return NewErrorDetail(CodeParseError, "Parse error", map[string]interface{}{"details": details})
}

// NewInvalidRequestError creates an ErrorDetail for invalid JSON-RPC Request objects.
func NewInvalidRequestError(details string) *models.ErrorDetail {
	return NewErrorDetail(CodeInvalidRequest, "Invalid Request", map[string]interface{}{"details": details})
}

// NewMethodNotFoundError creates an ErrorDetail when a JSON-RPC method is not found.
func NewMethodNotFoundError(methodName string) *models.ErrorDetail {
	return NewErrorDetail(CodeMethodNotFound, "Method not found", map[string]interface{}{"method": methodName})
}

// NewInvalidParamsError creates an ErrorDetail for invalid method parameters.
// paramIssues, when present, is reported under "param_issues".
func NewInvalidParamsError(summaryMessage string, paramIssues map[string]interface{}) *models.ErrorDetail {
	finalMessage := "Invalid params"
	if summaryMessage != "" {
		finalMessage = summaryMessage
	}
	data := map[string]interface{}{"details": finalMessage}
	if paramIssues != nil {
		data["param_issues"] = paramIssues
	}
	return NewErrorDetail(CodeInvalidParams, finalMessage, data)
}

// NewInternalError creates an ErrorDetail for unexpected server errors.
func NewInternalError(details string) *models.ErrorDetail {
	return NewErrorDetail(CodeInternalError, "Internal error", map[string]interface{}{"details": details})
}

// NewFileSystemError creates a generic file system ErrorDetail.
func NewFileSystemError(path, operation, details string) *models.ErrorDetail {
	return NewErrorDetail(CodeFileSystemError, "File system error", map[string]interface{}{
		"filename":  path,
		"operation": operation,
		"details":   details,
		"type":      "io_error",
	})
}

// NewFileNotFoundError creates an ErrorDetail for file not found errors. HTTP status: 404.
func NewFileNotFoundError(path, operation string) *models.ErrorDetail {
	return NewErrorDetail(CodeFileSystemError, fmt.Sprintf("File '%s' not found", path), map[string]interface{}{
		"filename":  path,
		"operation": operation,
		"type":      "file_not_found",
	})
}

// NewPermissionDeniedError creates an ErrorDetail for permission denied errors. HTTP status: 403.
func NewPermissionDeniedError(path, operation string) *models.ErrorDetail {
	return NewErrorDetail(CodeFileSystemError, fmt.Sprintf("Permission denied for '%s'", path), map[string]interface{}{
		"filename":  path,
		"operation": operation,
		"type":      "permission_denied",
	})
}

// NewCycleDetectedError reports a directory reached again below itself through a symlink.
func NewCycleDetectedError(path, operation, details string) *models.ErrorDetail {
	return NewErrorDetail(CodeFileSystemError, fmt.Sprintf("Directory cycle detected below '%s'", path), map[string]interface{}{
		"filename":  path,
		"operation": operation,
		"details":   details,
		"type":      "cycle_detected",
	})
}

// NewOperationLockFailedError creates an ErrorDetail for failures to acquire a lock.
func NewOperationLockFailedError(path, operation string, details string) *models.ErrorDetail {
	return NewErrorDetail(CodeOperationLockFailed,
		fmt.Sprintf("Could not acquire lock for operation '%s' on '%s'", operation, path),
		map[string]interface{}{
			"filename":  path,
			"operation": operation,
			"details":   details,
		})
}

// NewNameAllocationExhaustedError creates an ErrorDetail for a resolver that ran out of attempts.
func NewNameAllocationExhaustedError(name, operation string, details string) *models.ErrorDetail {
	return NewErrorDetail(CodeNameAllocationExhausted,
		fmt.Sprintf("No free name found for '%s'", name),
		map[string]interface{}{
			"filename":  name,
			"operation": operation,
			"details":   details,
		})
}

// FromError classifies err into an ErrorDetail. Sentinels the errors package does not know
// about (attempt exhaustion, lock timeouts) are mapped by the service before calling this.
func FromError(err error, path, operation string) *models.ErrorDetail {
	if err == nil {
		return nil
	}
	switch {
	case stdErrors.Is(err, ErrInvalidArgument):
		return NewInvalidParamsError(err.Error(), map[string]interface{}{"filename": path, "operation": operation})
	case stdErrors.Is(err, os.ErrNotExist):
		return NewFileNotFoundError(path, operation)
	case stdErrors.Is(err, os.ErrPermission):
		return NewPermissionDeniedError(path, operation)
	case IsIOError(err):
		return NewFileSystemError(path, operation, err.Error())
	default:
		return NewInternalError(err.Error())
	}
}

// --- Conversion to HTTP and JSON-RPC Error Structures ---

// ToErrorResponse converts an ErrorDetail to an HTTP models.ErrorResponse.
func ToErrorResponse(errDetail *models.ErrorDetail) *models.ErrorResponse {
	if errDetail == nil {
		return nil
	}
	return &models.ErrorResponse{Error: *errDetail}
}

// ToJSONRPCError converts an ErrorDetail to a models.JSONRPCError.
func ToJSONRPCError(errDetail *models.ErrorDetail) *models.JSONRPCError {
	if errDetail == nil {
		return nil
	}
	rpcErr := &models.JSONRPCError{
		Code:    errDetail.Code,
		Message: errDetail.Message,
	}
	dataMap, ok := errDetail.Data.(map[string]interface{})
	if !ok {
		if errDetail.Data != nil {
			rpcErr.Data = &models.JSONRPCErrorData{
				Details:   fmt.Sprintf("%v", errDetail.Data),
				Timestamp: time.Now().UTC().Format(time.RFC3339),
			}
		}
		return rpcErr
	}

	var filename, operation, details string
	if val, ok := dataMap["filename"].(string); ok {
		filename = val
	}
	if val, ok := dataMap["operation"].(string); ok {
		operation = val
	}
	if pi, piOk := dataMap["param_issues"]; piOk {
		details = fmt.Sprintf("Parameter issues: %v. Summary: %v", pi, dataMap["details"])
	} else if val, ok := dataMap["details"].(string); ok {
		details = val
	}
	rpcErr.Data = &models.JSONRPCErrorData{
		Filename:  filename,
		Operation: operation,
		Details:   details,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	return rpcErr
}

// --- HTTP Status Mapping ---

// MapErrorToHTTPStatus maps an internal error code to an HTTP status code.
func MapErrorToHTTPStatus(errorCode int, errDetail *models.ErrorDetail) int {
	switch errorCode {
	case CodeParseError, CodeInvalidRequest, CodeInvalidParams:
		return http.StatusBadRequest
	case CodeMethodNotFound:
		return http.StatusNotFound
	case CodeInternalError:
		return http.StatusInternalServerError
	case CodeFileSystemError:
		if errDetail != nil {
			if dataMap, ok := errDetail.Data.(map[string]interface{}); ok {
				switch dataMap["type"] {
				case "file_not_found":
					return http.StatusNotFound
				case "permission_denied":
					return http.StatusForbidden
				case "cycle_detected":
					return http.StatusConflict
				}
			}
		}
		return http.StatusInternalServerError
	case CodeOperationLockFailed, CodeNameAllocationExhausted:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
