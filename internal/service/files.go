package service

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"file-utils-server/internal/errors"
	"file-utils-server/internal/hashing"
	"file-utils-server/internal/metrics"
	"file-utils-server/internal/models"
)

// resolveSourceFile is resolveAndValidatePath for a path that must be a regular file.
func (s *DefaultFileUtilityService) resolveSourceFile(relPath, field, operation string) (string, *models.ErrorDetail) {
	if relPath == "" {
		return "", errors.NewInvalidParamsError(field+" is required", map[string]interface{}{field: "missing"})
	}
	path, errDetail := s.resolveAndValidatePath(relPath, operation)
	if errDetail != nil {
		return "", errDetail
	}
	stats, err := s.fsAdapter.GetFileStats(path)
	if err != nil {
		return "", s.toErrorDetail(err, relPath, operation)
	}
	if stats.IsDir {
		return "", errors.NewInvalidParamsError(fmt.Sprintf("'%s' is a directory.", relPath), map[string]interface{}{field: relPath})
	}
	return path, nil
}

func (s *DefaultFileUtilityService) resolveTarget(relPath, operation string) (string, *models.ErrorDetail) {
	if relPath == "" {
		return "", errors.NewInvalidParamsError("target is required", map[string]interface{}{"target": "missing"})
	}
	return s.resolveNewPath(relPath, operation)
}

// CopyFile implements FileUtilityService.
func (s *DefaultFileUtilityService) CopyFile(ctx context.Context, req models.CopyFileRequest) (resp *models.CopyFileResponse, errDetail *models.ErrorDetail) {
	const op = models.MethodCopyFile
	defer func(start time.Time) { s.finish(op, start, errDetail) }(time.Now())

	source, errDetail := s.resolveSourceFile(req.Source, "source", op)
	if errDetail != nil {
		return nil, errDetail
	}
	target, errDetail := s.resolveTarget(req.Target, op)
	if errDetail != nil {
		return nil, errDetail
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	copied, err := s.ops.CopyFileWhenTargetAbsent(ctx, source, target)
	if err != nil {
		return nil, s.toErrorDetail(err, req.Target, op)
	}
	return &models.CopyFileResponse{Source: s.relative(source), Target: s.relative(target), Copied: copied}, nil
}

// RenameFile implements FileUtilityService.
func (s *DefaultFileUtilityService) RenameFile(ctx context.Context, req models.RenameFileRequest) (resp *models.RenameFileResponse, errDetail *models.ErrorDetail) {
	const op = models.MethodRenameFile
	defer func(start time.Time) { s.finish(op, start, errDetail) }(time.Now())

	source, errDetail := s.resolveSourceFile(req.Source, "source", op)
	if errDetail != nil {
		return nil, errDetail
	}
	target, errDetail := s.resolveTarget(req.Target, op)
	if errDetail != nil {
		return nil, errDetail
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	renamed, err := s.ops.RenameFileWhenTargetAbsent(ctx, source, target)
	if err != nil {
		return nil, s.toErrorDetail(err, req.Target, op)
	}
	return &models.RenameFileResponse{Source: s.relative(source), Target: s.relative(target), Renamed: renamed}, nil
}

// RemoveFile implements FileUtilityService. Directories are refused; a symlink is
// removed itself, never its target.
func (s *DefaultFileUtilityService) RemoveFile(ctx context.Context, req models.RemoveFileRequest) (resp *models.RemoveFileResponse, errDetail *models.ErrorDetail) {
	const op = models.MethodRemoveFile
	defer func(start time.Time) { s.finish(op, start, errDetail) }(time.Now())

	if req.Path == "" {
		return nil, errors.NewInvalidParamsError("path is required", map[string]interface{}{"path": "missing"})
	}
	path, errDetail := s.resolveNewPath(req.Path, op)
	if errDetail != nil {
		return nil, errDetail
	}
	if err := ctx.Err(); err != nil {
		return nil, s.toErrorDetail(err, req.Path, op)
	}

	exists, err := s.ops.Exists(path)
	if err != nil {
		return nil, s.toErrorDetail(err, req.Path, op)
	}
	if exists {
		stats, err := s.fsAdapter.GetLinkStats(path)
		if err != nil {
			return nil, s.toErrorDetail(err, req.Path, op)
		}
		if stats.IsDir {
			return nil, errors.NewInvalidParamsError(fmt.Sprintf("'%s' is a directory.", req.Path), map[string]interface{}{"path": req.Path})
		}
	}

	removed, err := s.ops.RemoveFileIgnoreNotExist(path)
	if err != nil {
		return nil, s.toErrorDetail(err, req.Path, op)
	}
	return &models.RemoveFileResponse{Path: s.relative(path), Removed: removed}, nil
}

// Exists implements FileUtilityService.
func (s *DefaultFileUtilityService) Exists(ctx context.Context, req models.ExistsRequest) (resp *models.ExistsResponse, errDetail *models.ErrorDetail) {
	const op = models.MethodExists
	defer func(start time.Time) { s.finish(op, start, errDetail) }(time.Now())

	mode := req.Mode
	if mode == "" {
		mode = models.ExistsModeAll
	}
	if mode != models.ExistsModeAll && mode != models.ExistsModeAny {
		return nil, errors.NewInvalidParamsError(fmt.Sprintf("unknown mode %q", req.Mode),
			map[string]interface{}{"mode": "must be one of all, any"})
	}
	if len(req.Paths) == 0 {
		return nil, errors.NewInvalidParamsError("paths is required", map[string]interface{}{"paths": "missing"})
	}

	paths := make([]string, len(req.Paths))
	for i, p := range req.Paths {
		abs, errDetail := s.resolveExistencePath(p, op)
		if errDetail != nil {
			return nil, errDetail
		}
		paths[i] = abs
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp = &models.ExistsResponse{Mode: mode}
	var (
		decidedBy string
		err       error
	)
	switch {
	case len(paths) == 1:
		resp.Exists, err = s.ops.Exists(paths[0])
		if err == nil && resp.Exists == (mode == models.ExistsModeAny) {
			decidedBy = paths[0]
		}
	case mode == models.ExistsModeAll:
		resp.Exists, decidedBy, err = s.ops.ExistsAll(ctx, paths)
	default:
		resp.Exists, decidedBy, err = s.ops.ExistsAny(ctx, paths)
	}
	if err != nil {
		return nil, s.toErrorDetail(err, "", op)
	}
	if decidedBy != "" {
		resp.Path = s.relative(decidedBy)
	}
	return resp, nil
}

// HashData implements FileUtilityService.
func (s *DefaultFileUtilityService) HashData(ctx context.Context, req models.HashDataRequest) (resp *models.HashDataResponse, errDetail *models.ErrorDetail) {
	const op = models.MethodHashData
	defer func(start time.Time) { s.finish(op, start, errDetail) }(time.Now())

	alg := s.defaultAlg
	if req.Algorithm != "" {
		parsed, err := hashing.ParseAlgorithm(req.Algorithm)
		if err != nil {
			return nil, s.toErrorDetail(err, "", op)
		}
		alg = parsed
	}

	var data []byte
	switch req.Encoding {
	case "", models.EncodingUTF8:
		data = []byte(req.Data)
	case models.EncodingBase64:
		decoded, err := base64.StdEncoding.DecodeString(req.Data)
		if err != nil {
			return nil, errors.NewInvalidParamsError("data is not valid base64: "+err.Error(), map[string]interface{}{"data": "invalid base64"})
		}
		data = decoded
	default:
		return nil, errors.NewInvalidParamsError(fmt.Sprintf("unknown encoding %q", req.Encoding),
			map[string]interface{}{"encoding": "must be one of utf8, base64"})
	}
	if err := ctx.Err(); err != nil {
		return nil, s.toErrorDetail(err, "", op)
	}

	digest, err := hashing.Digest(data, alg)
	if err != nil {
		return nil, s.toErrorDetail(err, "", op)
	}
	metrics.RecordHash(string(alg), int64(len(data)))
	return &models.HashDataResponse{Algorithm: string(alg), Digest: digest, Size: int64(len(data))}, nil
}
