package transport

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"file-utils-server/internal/errors"
	"file-utils-server/internal/logging"
	"file-utils-server/internal/mcp"
	"file-utils-server/internal/models"
	"file-utils-server/internal/service"

	"go.uber.org/zap"
)

// maxLineBytes bounds one JSON-RPC message.
const maxLineBytes = 4 << 20

// StdioHandler serves line-delimited JSON-RPC 2.0 over a reader/writer pair. Logs never
// go to the output stream.
type StdioHandler struct {
	service service.FileUtilityService
	mcp     *mcp.MCPProcessor
}

// NewStdioHandler creates a new StdioHandler.
func NewStdioHandler(svc service.FileUtilityService, version string) *StdioHandler {
	return &StdioHandler{
		service: svc,
		mcp:     mcp.NewMCPProcessor(svc, version),
	}
}

func (h *StdioHandler) writeJSONRPCResponse(logger *zap.Logger, writer io.Writer, response models.JSONRPCResponse) {
	responseBytes, err := json.Marshal(response)
	if err != nil {
		logger.Error("error marshaling JSON-RPC response", zap.Error(err), zap.Any("id", response.ID))
		fallback := models.JSONRPCResponse{
			JSONRPC: models.JSONRPCVersion,
			ID:      response.ID,
			Error:   errors.ToJSONRPCError(errors.NewInternalError("Server error: failed to marshal response.")),
		}
		responseBytes, _ = json.Marshal(fallback)
	}
	if _, err := fmt.Fprintln(writer, string(responseBytes)); err != nil {
		logger.Error("error writing JSON-RPC response", zap.Error(err))
	}
}

// Start processes requests from input until EOF, a read error or ctx cancellation.
// Notifications (requests without an id) get no response. Cancellation returns at
// once even while input is idle; the reader goroutine exits when input is closed.
func (h *StdioHandler) Start(ctx context.Context, input io.Reader, output io.Writer) error {
	logger := logging.WithContext(ctx)
	logger.Info("starting stdio JSON-RPC handler")

	lines := make(chan []byte)
	readErr := make(chan error, 1)
	go readLines(ctx, input, lines, readErr)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				err := <-readErr
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				if err != nil {
					logger.Error("error reading from stdio", zap.Error(err))
					return err
				}
				logger.Info("stdio JSON-RPC handler finished")
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			resp, notify := h.handleLine(ctx, line)
			if notify {
				continue
			}
			h.writeJSONRPCResponse(logger, output, resp)
		}
	}
}

// readLines sends every non-blank line of input on lines, then exactly one error (nil
// at EOF) on errc, and closes lines.
func readLines(ctx context.Context, input io.Reader, lines chan<- []byte, errc chan<- error) {
	defer close(lines)
	scanner := bufio.NewScanner(input)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		select {
		case lines <- append([]byte(nil), line...):
		case <-ctx.Done():
			errc <- ctx.Err()
			return
		}
	}
	errc <- scanner.Err()
}

// handleLine answers one message. notify is true when the message was a valid
// notification and no response must be written.
func (h *StdioHandler) handleLine(ctx context.Context, line []byte) (resp models.JSONRPCResponse, notify bool) {
	resp.JSONRPC = models.JSONRPCVersion

	var req models.JSONRPCRequest
	if err := json.Unmarshal(line, &req); err != nil {
		resp.Error = errors.ToJSONRPCError(errors.NewParseError(fmt.Sprintf("Invalid JSON received: %v", err)))
		return resp, false
	}
	resp.ID = req.ID

	if req.JSONRPC != models.JSONRPCVersion {
		resp.Error = errors.ToJSONRPCError(errors.NewInvalidRequestError("Invalid JSON-RPC version. Must be '2.0'."))
		return resp, false
	}
	if req.Method == "" {
		resp.Error = errors.ToJSONRPCError(errors.NewInvalidRequestError("Method not specified."))
		return resp, false
	}

	ctx = logging.WithRequestID(ctx, logging.NewRequestID())
	logger := logging.WithContext(ctx)
	start := time.Now()

	var result interface{}
	var serviceErr *models.ErrorDetail
	if h.mcp.Handles(req.Method) {
		result, serviceErr = h.mcp.ProcessRequest(ctx, req)
	} else {
		result, serviceErr = service.Invoke(ctx, h.service, req.Method, req.Params)
	}
	logger.Debug("handled JSON-RPC request",
		zap.String("method", req.Method),
		zap.Any("id", req.ID),
		zap.Bool("error", serviceErr != nil),
		zap.Duration("duration", time.Since(start)))

	if req.ID == nil {
		return resp, true
	}
	if serviceErr != nil {
		rpcError := errors.ToJSONRPCError(serviceErr)
		if rpcError.Data == nil {
			rpcError.Data = &models.JSONRPCErrorData{Timestamp: time.Now().UTC().Format(time.RFC3339)}
		}
		if rpcError.Data.Operation == "" {
			rpcError.Data.Operation = req.Method
		}
		rpcError.Data.RequestID = logging.GetRequestID(ctx)
		resp.Error = rpcError
		return resp, false
	}
	resp.Result = result
	return resp, false
}
