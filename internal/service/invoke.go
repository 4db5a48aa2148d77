package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"file-utils-server/internal/errors"
	"file-utils-server/internal/models"
)

// Invoke decodes params for method and calls the matching service operation. Absent or
// null params decode to the zero request.
func Invoke(ctx context.Context, svc FileUtilityService, method string, params json.RawMessage) (interface{}, *models.ErrorDetail) {
	switch method {
	case models.MethodResolveName:
		var req models.ResolveNameRequest
		if errDetail := decodeParams(method, params, &req); errDetail != nil {
			return nil, errDetail
		}
		return svc.ResolveName(ctx, req)
	case models.MethodListDirectory:
		var req models.ListDirectoryRequest
		if errDetail := decodeParams(method, params, &req); errDetail != nil {
			return nil, errDetail
		}
		return svc.ListDirectory(ctx, req)
	case models.MethodHashFile:
		var req models.HashFileRequest
		if errDetail := decodeParams(method, params, &req); errDetail != nil {
			return nil, errDetail
		}
		return svc.HashFile(ctx, req)
	case models.MethodBackupFile:
		var req models.BackupFileRequest
		if errDetail := decodeParams(method, params, &req); errDetail != nil {
			return nil, errDetail
		}
		return svc.BackupFile(ctx, req)
	case models.MethodCopyFile:
		var req models.CopyFileRequest
		if errDetail := decodeParams(method, params, &req); errDetail != nil {
			return nil, errDetail
		}
		return svc.CopyFile(ctx, req)
	case models.MethodRenameFile:
		var req models.RenameFileRequest
		if errDetail := decodeParams(method, params, &req); errDetail != nil {
			return nil, errDetail
		}
		return svc.RenameFile(ctx, req)
	case models.MethodRemoveFile:
		var req models.RemoveFileRequest
		if errDetail := decodeParams(method, params, &req); errDetail != nil {
			return nil, errDetail
		}
		return svc.RemoveFile(ctx, req)
	case models.MethodExists:
		var req models.ExistsRequest
		if errDetail := decodeParams(method, params, &req); errDetail != nil {
			return nil, errDetail
		}
		return svc.Exists(ctx, req)
	case models.MethodHashData:
		var req models.HashDataRequest
		if errDetail := decodeParams(method, params, &req); errDetail != nil {
			return nil, errDetail
		}
		return svc.HashData(ctx, req)
	default:
		return nil, errors.NewMethodNotFoundError(method)
	}
}

func decodeParams(method string, params json.RawMessage, dst interface{}) *models.ErrorDetail {
	trimmed := bytes.TrimSpace(params)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.NewInvalidParamsError(fmt.Sprintf("Invalid params for %s: %v", method, err), nil)
	}
	return nil
}
