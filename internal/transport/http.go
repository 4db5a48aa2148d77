package transport

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"file-utils-server/internal/errors"
	"file-utils-server/internal/logging"
	"file-utils-server/internal/metrics"
	"file-utils-server/internal/models"
	"file-utils-server/internal/service"

	"go.uber.org/zap"
)

const (
	defaultReadTimeout  = 60 * time.Second
	defaultWriteTimeout = 60 * time.Second
	// Requests carry only names and paths.
	defaultMaxRequestBytes = 1 << 20
)

// HTTPHandler serves the JSON endpoints.
type HTTPHandler struct {
	service    service.FileUtilityService
	version    string
	maxReqSize int64
	Server     *http.Server
}

// NewHTTPHandler creates a new HTTPHandler.
func NewHTTPHandler(svc service.FileUtilityService, version string) *HTTPHandler {
	return &HTTPHandler{
		service:    svc,
		version:    version,
		maxReqSize: defaultMaxRequestBytes,
		Server:     &http.Server{},
	}
}

// RegisterRoutes sets up the HTTP routes for the handler.
func (h *HTTPHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/resolve_name", jsonEndpoint(h, "/resolve_name", h.service.ResolveName))
	mux.HandleFunc("/list", jsonEndpoint(h, "/list", h.service.ListDirectory))
	mux.HandleFunc("/hash_file", jsonEndpoint(h, "/hash_file", h.service.HashFile))
	mux.HandleFunc("/backup_file", jsonEndpoint(h, "/backup_file", h.service.BackupFile))
	mux.HandleFunc("/copy_file", jsonEndpoint(h, "/copy_file", h.service.CopyFile))
	mux.HandleFunc("/rename_file", jsonEndpoint(h, "/rename_file", h.service.RenameFile))
	mux.HandleFunc("/remove_file", jsonEndpoint(h, "/remove_file", h.service.RemoveFile))
	mux.HandleFunc("/exists", jsonEndpoint(h, "/exists", h.service.Exists))
	mux.HandleFunc("/hash_data", jsonEndpoint(h, "/hash_data", h.service.HashData))
	mux.HandleFunc("/health", h.handleHealthCheck)
	mux.Handle("/metrics", metrics.Handler())
}

// Handler returns the routed mux wrapped in request logging.
func (h *HTTPHandler) Handler() http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return logging.Middleware(mux)
}

func writeJSONResponse(ctx context.Context, w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logging.WithContext(ctx).Error("error encoding JSON response", zap.Error(err))
		}
	}
}

func writeJSONErrorResponse(ctx context.Context, w http.ResponseWriter, httpStatusCode int, errorDetail *models.ErrorDetail) {
	if errorDetail == nil {
		errorDetail = errors.NewInternalError("An unexpected error occurred and error details were lost.")
		httpStatusCode = http.StatusInternalServerError
	}
	writeJSONResponse(ctx, w, httpStatusCode, errors.ToErrorResponse(errorDetail))
}

func (h *HTTPHandler) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSONResponse(r.Context(), w, http.StatusOK, models.HealthResponse{
		Status:           "ok",
		WorkingDirectory: h.service.WorkingDirectory(),
		Version:          h.version,
	})
}

// decodeJSONRequest enforces POST, a JSON content type, the body size limit and strict
// field matching. It writes the error response itself and reports false on failure.
func (h *HTTPHandler) decodeJSONRequest(w http.ResponseWriter, r *http.Request, route string, dst interface{}) bool {
	ctx := r.Context()
	if r.Method != http.MethodPost {
		errDetail := errors.NewInvalidRequestError(fmt.Sprintf("Method %s not allowed for %s. Use POST.", r.Method, route))
		writeJSONErrorResponse(ctx, w, http.StatusMethodNotAllowed, errDetail)
		return false
	}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		errDetail := errors.NewInvalidRequestError("Invalid Content-Type header. Must be 'application/json' or 'application/json; charset=utf-8'.")
		writeJSONErrorResponse(ctx, w, http.StatusUnsupportedMediaType, errDetail)
		return false
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxReqSize)
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		var maxBytesError *http.MaxBytesError
		var jsonSyntaxError *json.SyntaxError
		var jsonUnmarshalTypeError *json.UnmarshalTypeError
		switch {
		case stdErrors.As(err, &maxBytesError):
			errDetail := errors.NewInvalidRequestError(fmt.Sprintf("Request body exceeds maximum size of %d bytes.", h.maxReqSize))
			writeJSONErrorResponse(ctx, w, http.StatusRequestEntityTooLarge, errDetail)
		case stdErrors.As(err, &jsonSyntaxError):
			msg := fmt.Sprintf("Invalid JSON syntax at offset %d: %s", jsonSyntaxError.Offset, jsonSyntaxError.Error())
			writeJSONErrorResponse(ctx, w, http.StatusBadRequest, errors.NewParseError(msg))
		case stdErrors.As(err, &jsonUnmarshalTypeError):
			msg := fmt.Sprintf("Invalid JSON type for field '%s'. Expected '%s' but got '%s' at offset %d.",
				jsonUnmarshalTypeError.Field, jsonUnmarshalTypeError.Type, jsonUnmarshalTypeError.Value, jsonUnmarshalTypeError.Offset)
			writeJSONErrorResponse(ctx, w, http.StatusBadRequest, errors.NewParseError(msg))
		default:
			writeJSONErrorResponse(ctx, w, http.StatusBadRequest, errors.NewParseError(fmt.Sprintf("Failed to decode request body: %v", err)))
		}
		return false
	}
	return true
}

// jsonEndpoint adapts a service method to a POST handler.
func jsonEndpoint[Req any, Resp any](h *HTTPHandler, route string, call func(context.Context, Req) (Resp, *models.ErrorDetail)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req Req
		if !h.decodeJSONRequest(w, r, route, &req) {
			return
		}
		resp, serviceErr := call(r.Context(), req)
		if serviceErr != nil {
			writeJSONErrorResponse(r.Context(), w, errors.MapErrorToHTTPStatus(serviceErr.Code, serviceErr), serviceErr)
			return
		}
		writeJSONResponse(r.Context(), w, http.StatusOK, resp)
	}
}

// StartServer configures h.Server and blocks serving on port until Shutdown.
func (h *HTTPHandler) StartServer(port int, readTimeout, writeTimeout time.Duration) error {
	if readTimeout <= 0 {
		readTimeout = defaultReadTimeout
	}
	if writeTimeout <= 0 {
		writeTimeout = defaultWriteTimeout
	}
	h.Server.Addr = fmt.Sprintf(":%d", port)
	h.Server.Handler = h.Handler()
	h.Server.ReadTimeout = readTimeout
	h.Server.WriteTimeout = writeTimeout

	logger := logging.L()
	logger.Info("HTTP server starting",
		zap.Int("port", port),
		zap.Duration("read_timeout", readTimeout),
		zap.Duration("write_timeout", writeTimeout))
	err := h.Server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logger.Error("HTTP server ListenAndServe error", zap.Error(err))
		return err
	}
	logger.Info("HTTP server shut down", zap.Int("port", port))
	return nil
}

// Shutdown gracefully stops the server started by StartServer.
func (h *HTTPHandler) Shutdown(ctx context.Context) error {
	return h.Server.Shutdown(ctx)
}
