package transport

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"file-utils-server/internal/errors"
	"file-utils-server/internal/logging"
	"file-utils-server/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, svc *mockFileUtilityService) *httptest.Server {
	t.Helper()
	handler := NewHTTPHandler(svc, "test")
	server := httptest.NewServer(handler.Handler())
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) models.ErrorDetail {
	t.Helper()
	var errResp models.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	return errResp.Error
}

func TestHTTPHandler_ResolveName(t *testing.T) {
	svc := &mockFileUtilityService{
		ResolveNameFunc: func(req models.ResolveNameRequest) (*models.ResolveNameResponse, *models.ErrorDetail) {
			assert.Equal(t, "docs", req.Directory)
			assert.Equal(t, "report.txt", req.Name)
			return &models.ResolveNameResponse{Directory: "docs", Name: "report 2.txt", Path: "docs/report 2.txt"}, nil
		},
	}
	server := newTestServer(t, svc)

	resp := postJSON(t, server.URL+"/resolve_name", `{"directory":"docs","name":"report.txt"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(logging.RequestIDHeader))

	var got models.ResolveNameResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
	assert.Equal(t, "report 2.txt", got.Name)
	assert.Equal(t, "docs/report 2.txt", got.Path)
}

func TestHTTPHandler_FileRoutes(t *testing.T) {
	svc := &mockFileUtilityService{
		CopyFileFunc: func(req models.CopyFileRequest) (*models.CopyFileResponse, *models.ErrorDetail) {
			return &models.CopyFileResponse{Source: req.Source, Target: req.Target, Copied: true}, nil
		},
		RenameFileFunc: func(req models.RenameFileRequest) (*models.RenameFileResponse, *models.ErrorDetail) {
			return &models.RenameFileResponse{Source: req.Source, Target: req.Target}, nil
		},
		RemoveFileFunc: func(req models.RemoveFileRequest) (*models.RemoveFileResponse, *models.ErrorDetail) {
			return nil, errors.NewInvalidParamsError("'"+req.Path+"' is a directory.", nil)
		},
		ExistsFunc: func(req models.ExistsRequest) (*models.ExistsResponse, *models.ErrorDetail) {
			assert.Equal(t, []string{"a", "b"}, req.Paths)
			return &models.ExistsResponse{Mode: models.ExistsModeAll, Exists: false, Path: "b"}, nil
		},
		HashDataFunc: func(req models.HashDataRequest) (*models.HashDataResponse, *models.ErrorDetail) {
			assert.Equal(t, models.EncodingBase64, req.Encoding)
			return &models.HashDataResponse{Algorithm: "sha256", Digest: "ff", Size: 5}, nil
		},
	}
	server := newTestServer(t, svc)

	tests := []struct {
		route      string
		body       string
		wantStatus int
		wantBody   string
	}{
		{"/copy_file", `{"source":"a","target":"b"}`, http.StatusOK, `"copied":true`},
		{"/rename_file", `{"source":"a","target":"b"}`, http.StatusOK, `"renamed":false`},
		{"/remove_file", `{"path":"dir"}`, http.StatusBadRequest, `is a directory`},
		{"/exists", `{"paths":["a","b"]}`, http.StatusOK, `"path":"b"`},
		{"/hash_data", `{"data":"aGVsbG8=","encoding":"base64"}`, http.StatusOK, `"digest":"ff"`},
	}
	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			resp := postJSON(t, server.URL+tt.route, tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Contains(t, string(body), tt.wantBody)
		})
	}
}

func TestHTTPHandler_ServiceErrors(t *testing.T) {
	svc := &mockFileUtilityService{
		ListDirectoryFunc: func(req models.ListDirectoryRequest) (*models.ListDirectoryResponse, *models.ErrorDetail) {
			return nil, errors.NewFileNotFoundError(req.Directory, "list_directory")
		},
		HashFileFunc: func(req models.HashFileRequest) (*models.HashFileResponse, *models.ErrorDetail) {
			return nil, errors.NewInvalidParamsError("unsupported algorithm", map[string]interface{}{"algorithm": req.Algorithm})
		},
		BackupFileFunc: func(req models.BackupFileRequest) (*models.BackupFileResponse, *models.ErrorDetail) {
			return nil, errors.NewOperationLockFailedError(req.TargetDirectory, "backup_file", "timed out")
		},
		ResolveNameFunc: func(req models.ResolveNameRequest) (*models.ResolveNameResponse, *models.ErrorDetail) {
			return nil, errors.NewCycleDetectedError(req.Directory, "resolve_name", "loop")
		},
	}
	server := newTestServer(t, svc)

	tests := []struct {
		route      string
		body       string
		wantStatus int
		wantCode   int
	}{
		{"/list", `{"directory":"missing"}`, http.StatusNotFound, errors.CodeFileSystemError},
		{"/hash_file", `{"path":"a.txt","algorithm":"crc"}`, http.StatusBadRequest, errors.CodeInvalidParams},
		{"/backup_file", `{"source":"a.txt","target_directory":"bak"}`, http.StatusConflict, errors.CodeOperationLockFailed},
		{"/resolve_name", `{"directory":"d","name":"n"}`, http.StatusConflict, errors.CodeFileSystemError},
	}
	for _, tt := range tests {
		t.Run(tt.route, func(t *testing.T) {
			resp := postJSON(t, server.URL+tt.route, tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCode, decodeError(t, resp).Code)
		})
	}
}

func TestHTTPHandler_RequestValidation(t *testing.T) {
	server := newTestServer(t, &mockFileUtilityService{})

	t.Run("method not allowed", func(t *testing.T) {
		resp, err := http.Get(server.URL + "/list")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	})

	t.Run("wrong content type", func(t *testing.T) {
		resp, err := http.Post(server.URL+"/list", "text/plain", strings.NewReader(`{}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusUnsupportedMediaType, resp.StatusCode)
	})

	t.Run("syntax error", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/list", `{"directory":`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, errors.CodeParseError, decodeError(t, resp).Code)
	})

	t.Run("type error", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/list", `{"directory":42}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, errors.CodeParseError, decodeError(t, resp).Code)
	})

	t.Run("unknown field", func(t *testing.T) {
		resp := postJSON(t, server.URL+"/hash_file", `{"path":"a","bogus":true}`)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("body too large", func(t *testing.T) {
		big := `{"directory":"` + strings.Repeat("a", defaultMaxRequestBytes+1) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/list", strings.NewReader(big))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		NewHTTPHandler(&mockFileUtilityService{}, "test").Handler().ServeHTTP(rec, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestHTTPHandler_HealthAndMetrics(t *testing.T) {
	server := newTestServer(t, &mockFileUtilityService{})

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var health models.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "/work", health.WorkingDirectory)
	assert.Equal(t, "test", health.Version)

	resp, err = http.Post(server.URL+"/health", "application/json", strings.NewReader(`{}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	resp, err = http.Get(server.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestHTTPHandler_RequestIDPropagation(t *testing.T) {
	server := newTestServer(t, &mockFileUtilityService{})

	req, err := http.NewRequest(http.MethodPost, server.URL+"/list", strings.NewReader(`{}`))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set(logging.RequestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "abc-123", resp.Header.Get(logging.RequestIDHeader))
}
