package service

import (
	"context"
	stdErrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"file-utils-server/internal/config"
	"file-utils-server/internal/errors"
	"file-utils-server/internal/fileops"
	"file-utils-server/internal/filesystem"
	"file-utils-server/internal/hashing"
	"file-utils-server/internal/listing"
	"file-utils-server/internal/lock"
	"file-utils-server/internal/metrics"
	"file-utils-server/internal/models"
	"file-utils-server/internal/naming"

	"go.uber.org/zap"
)

// FileUtilityService is the operation surface shared by every transport.
type FileUtilityService interface {
	ResolveName(ctx context.Context, req models.ResolveNameRequest) (*models.ResolveNameResponse, *models.ErrorDetail)
	ListDirectory(ctx context.Context, req models.ListDirectoryRequest) (*models.ListDirectoryResponse, *models.ErrorDetail)
	HashFile(ctx context.Context, req models.HashFileRequest) (*models.HashFileResponse, *models.ErrorDetail)
	BackupFile(ctx context.Context, req models.BackupFileRequest) (*models.BackupFileResponse, *models.ErrorDetail)
	CopyFile(ctx context.Context, req models.CopyFileRequest) (*models.CopyFileResponse, *models.ErrorDetail)
	RenameFile(ctx context.Context, req models.RenameFileRequest) (*models.RenameFileResponse, *models.ErrorDetail)
	RemoveFile(ctx context.Context, req models.RemoveFileRequest) (*models.RemoveFileResponse, *models.ErrorDetail)
	Exists(ctx context.Context, req models.ExistsRequest) (*models.ExistsResponse, *models.ErrorDetail)
	HashData(ctx context.Context, req models.HashDataRequest) (*models.HashDataResponse, *models.ErrorDetail)
	WorkingDirectory() string
}

// DefaultFileUtilityService implements FileUtilityService on top of a FileSystemAdapter.
// Every path argument is relative to the working directory and may not leave it, either
// lexically or through symlinks.
type DefaultFileUtilityService struct {
	fsAdapter  filesystem.FileSystemAdapter
	resolver   *naming.Resolver
	lister     *listing.Lister
	ops        *fileops.Operations
	workingDir string
	defaultAlg hashing.Algorithm
	opTimeout  time.Duration
	logger     *zap.Logger
}

// NewDefaultFileUtilityService creates a new DefaultFileUtilityService.
func NewDefaultFileUtilityService(
	fs filesystem.FileSystemAdapter,
	lm lock.LockManagerInterface,
	cfg *config.Config,
	logger *zap.Logger,
) (*DefaultFileUtilityService, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if fs == nil {
		return nil, fmt.Errorf("filesystem adapter is required")
	}
	if lm == nil {
		return nil, fmt.Errorf("lock manager is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	absWorkingDir, err := filepath.Abs(cfg.WorkingDirectory)
	if err != nil {
		return nil, fmt.Errorf("could not get absolute path for working directory: %w", err)
	}
	stats, err := fs.GetFileStats(absWorkingDir)
	if err != nil {
		if stdErrors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("working directory does not exist: %s", absWorkingDir)
		}
		return nil, fmt.Errorf("error accessing working directory %s: %w", absWorkingDir, err)
	}
	if !stats.IsDir {
		return nil, fmt.Errorf("working directory path is not a directory: %s", absWorkingDir)
	}
	// Confinement compares symlink-free paths, so the root must be symlink-free too.
	realWorkingDir, err := fs.EvalSymlinks(absWorkingDir)
	if err != nil {
		return nil, fmt.Errorf("error resolving working directory %s: %w", absWorkingDir, err)
	}

	alg, err := hashing.ParseAlgorithm(cfg.DefaultHashAlgorithm)
	if err != nil {
		return nil, err
	}

	resolverOpts := []naming.Option{
		naming.WithLogger(logger.Named("naming")),
		naming.WithObserver(func(variant naming.Variant, attempts int, err error) {
			metrics.RecordNameResolution(string(variant), outcome(err), attempts)
		}),
	}
	if cfg.MaxNameAttempts > 0 {
		resolverOpts = append(resolverOpts, naming.WithMaxAttempts(cfg.MaxNameAttempts))
	}
	resolver := naming.NewResolver(fs, resolverOpts...)

	listerOpts := []listing.Option{listing.WithLogger(logger.Named("listing"))}
	if cfg.DetectCycles {
		listerOpts = append(listerOpts, listing.WithCycleDetection(fs))
	}

	return &DefaultFileUtilityService{
		fsAdapter:  fs,
		resolver:   resolver,
		lister:     listing.NewLister(fs, confinedStats{fs: fs, root: realWorkingDir}, listerOpts...),
		ops:        fileops.NewOperations(fs, resolver, lm, fileops.WithLockTimeout(cfg.LockTimeout), fileops.WithLogger(logger.Named("fileops"))),
		workingDir: realWorkingDir,
		defaultAlg: alg,
		opTimeout:  cfg.OperationTimeout,
		logger:     logger,
	}, nil
}

// WorkingDirectory returns the absolute, symlink-free working directory.
func (s *DefaultFileUtilityService) WorkingDirectory() string { return s.workingDir }

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case stdErrors.Is(err, naming.ErrAttemptsExhausted):
		return "exhausted"
	case stdErrors.Is(err, context.Canceled), stdErrors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}

// withTimeout applies the configured per-operation timeout.
func (s *DefaultFileUtilityService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

func within(root, path string) bool {
	return path == root || strings.HasPrefix(path, root+string(filepath.Separator))
}

// cleanPath applies the lexical checks: a relative, local path that stays inside the
// working directory once cleaned.
func (s *DefaultFileUtilityService) cleanPath(relPath string) (string, *models.ErrorDetail) {
	if strings.ContainsRune(relPath, 0) {
		return "", errors.NewInvalidParamsError("Path contains a NUL byte.", map[string]interface{}{"path": relPath})
	}
	if fileops.IsAbsoluteURL(relPath) {
		return "", errors.NewInvalidParamsError("Path must be a local path, not a URL.", map[string]interface{}{"path": relPath})
	}
	if filepath.IsAbs(relPath) {
		return "", errors.NewInvalidParamsError("Path must be relative to the working directory.", map[string]interface{}{"path": relPath})
	}

	cleanedPath := filepath.Clean(filepath.Join(s.workingDir, relPath))
	if !within(s.workingDir, cleanedPath) {
		return "", errors.NewInvalidParamsError("Path traversal attempt detected.", map[string]interface{}{"path": relPath})
	}
	return cleanedPath, nil
}

// resolveAndValidatePath maps a client path to an absolute one inside the working
// directory. The path must exist; its symlink-resolved target must stay inside too.
func (s *DefaultFileUtilityService) resolveAndValidatePath(relPath, operation string) (string, *models.ErrorDetail) {
	cleanedPath, errDetail := s.cleanPath(relPath)
	if errDetail != nil {
		return "", errDetail
	}

	resolvedPath, err := s.fsAdapter.EvalSymlinks(cleanedPath)
	if err != nil {
		switch {
		case stdErrors.Is(err, os.ErrNotExist):
			return "", errors.NewFileNotFoundError(relPath, operation)
		case stdErrors.Is(err, os.ErrPermission):
			return "", errors.NewPermissionDeniedError(relPath, operation)
		}
		return "", errors.NewFileSystemError(relPath, "eval_symlinks", fmt.Sprintf("Error evaluating symlinks: %v", err))
	}
	if !within(s.workingDir, resolvedPath) {
		return "", errors.NewInvalidParamsError("Path traversal attempt detected (symlink).",
			map[string]interface{}{"path": relPath, "resolved_path": resolvedPath})
	}
	return cleanedPath, nil
}

// resolveDirectory is resolveAndValidatePath plus a directory check.
func (s *DefaultFileUtilityService) resolveDirectory(relPath, operation string) (string, *models.ErrorDetail) {
	dir, errDetail := s.resolveAndValidatePath(relPath, operation)
	if errDetail != nil {
		return "", errDetail
	}
	stats, err := s.fsAdapter.GetFileStats(dir)
	if err != nil {
		return "", s.toErrorDetail(err, relPath, operation)
	}
	if !stats.IsDir {
		return "", errors.NewInvalidParamsError(fmt.Sprintf("'%s' is not a directory.", relPath), map[string]interface{}{"path": relPath})
	}
	return dir, nil
}

// resolveNewPath validates a path that may not exist yet. Its parent must be an existing
// directory inside the working directory.
func (s *DefaultFileUtilityService) resolveNewPath(relPath, operation string) (string, *models.ErrorDetail) {
	cleanedPath, errDetail := s.cleanPath(relPath)
	if errDetail != nil {
		return "", errDetail
	}
	if cleanedPath == s.workingDir {
		return "", errors.NewInvalidParamsError("Path must name an entry inside the working directory.", map[string]interface{}{"path": relPath})
	}
	parent, errDetail := s.resolveDirectory(s.relative(filepath.Dir(cleanedPath)), operation)
	if errDetail != nil {
		return "", errDetail
	}
	return filepath.Join(parent, filepath.Base(cleanedPath)), nil
}

// resolveExistencePath validates a path for an existence check. The nearest existing
// ancestor (or the path itself) must resolve inside the working directory, so a check
// never reveals anything about entries behind an escaping symlink.
func (s *DefaultFileUtilityService) resolveExistencePath(relPath, operation string) (string, *models.ErrorDetail) {
	cleanedPath, errDetail := s.cleanPath(relPath)
	if errDetail != nil {
		return "", errDetail
	}
	for p := cleanedPath; ; p = filepath.Dir(p) {
		resolved, err := s.fsAdapter.EvalSymlinks(p)
		if err == nil {
			if !within(s.workingDir, resolved) {
				return "", errors.NewInvalidParamsError("Path traversal attempt detected (symlink).",
					map[string]interface{}{"path": relPath, "resolved_path": resolved})
			}
			return cleanedPath, nil
		}
		if !stdErrors.Is(err, os.ErrNotExist) {
			return "", s.toErrorDetail(err, relPath, operation)
		}
		if p == s.workingDir {
			return cleanedPath, nil
		}
	}
}

// relative turns an absolute path back into the client's view of it.
func (s *DefaultFileUtilityService) relative(abs string) string {
	rel, err := filepath.Rel(s.workingDir, abs)
	if err != nil {
		return abs
	}
	return filepath.ToSlash(rel)
}

// toErrorDetail classifies errors from the core packages.
func (s *DefaultFileUtilityService) toErrorDetail(err error, path, operation string) *models.ErrorDetail {
	switch {
	case stdErrors.Is(err, naming.ErrAttemptsExhausted):
		return errors.NewNameAllocationExhaustedError(path, operation, err.Error())
	case stdErrors.Is(err, lock.ErrLockTimeout):
		return errors.NewOperationLockFailedError(path, operation, err.Error())
	case stdErrors.Is(err, listing.ErrCycle):
		return errors.NewCycleDetectedError(path, operation, err.Error())
	case stdErrors.Is(err, context.DeadlineExceeded):
		return errors.NewInternalError(fmt.Sprintf("operation %s timed out", operation))
	case stdErrors.Is(err, context.Canceled):
		return errors.NewInternalError(fmt.Sprintf("operation %s cancelled", operation))
	}
	return errors.FromError(err, path, operation)
}

func (s *DefaultFileUtilityService) finish(operation string, start time.Time, errDetail *models.ErrorDetail) {
	status := "ok"
	if errDetail != nil {
		status = "error"
		s.logger.Warn("operation failed",
			zap.String("operation", operation),
			zap.Int("code", errDetail.Code),
			zap.String("message", errDetail.Message))
	}
	metrics.RecordOperation(operation, status, time.Since(start))
}

// ResolveName implements FileUtilityService.
func (s *DefaultFileUtilityService) ResolveName(ctx context.Context, req models.ResolveNameRequest) (resp *models.ResolveNameResponse, errDetail *models.ErrorDetail) {
	const op = models.MethodResolveName
	defer func(start time.Time) { s.finish(op, start, errDetail) }(time.Now())

	if req.Name == "" {
		return nil, errors.NewInvalidParamsError("name is required", map[string]interface{}{"name": "missing"})
	}
	if req.Sanitize {
		req.Name = fileops.SanitizeFileName(req.Name)
	}
	dir, errDetail := s.resolveDirectory(req.Directory, op)
	if errDetail != nil {
		return nil, errDetail
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	var (
		name   string
		suffix string
		err    error
	)
	switch req.Variant {
	case "", models.VariantFile:
		name, err = s.resolver.ResolveFullName(ctx, dir, req.Name)
	case models.VariantBase:
		name, err = s.resolver.ResolveBaseName(ctx, dir, req.Name, req.Extension)
		suffix = req.Extension
	case models.VariantFolder:
		name, err = s.resolver.ResolveFolderName(ctx, dir, req.Name)
	default:
		return nil, errors.NewInvalidParamsError(fmt.Sprintf("unknown variant %q", req.Variant),
			map[string]interface{}{"variant": "must be one of file, base, folder"})
	}
	if err != nil {
		return nil, s.toErrorDetail(err, req.Name, op)
	}

	return &models.ResolveNameResponse{
		Directory: s.relative(dir),
		Name:      name,
		Path:      s.relative(filepath.Join(dir, name+suffix)),
	}, nil
}

// ListDirectory implements FileUtilityService.
func (s *DefaultFileUtilityService) ListDirectory(ctx context.Context, req models.ListDirectoryRequest) (resp *models.ListDirectoryResponse, errDetail *models.ErrorDetail) {
	const op = models.MethodListDirectory
	defer func(start time.Time) { s.finish(op, start, errDetail) }(time.Now())

	mode := req.Mode
	if mode == "" {
		mode = models.ListModeFlat
	}
	dir, errDetail := s.resolveDirectory(req.Directory, op)
	if errDetail != nil {
		return nil, errDetail
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp = &models.ListDirectoryResponse{Directory: s.relative(dir), Mode: mode}
	switch mode {
	case models.ListModeFlat, models.ListModeRecursive:
		var entries []listing.Entry
		var err error
		if mode == models.ListModeFlat {
			entries, err = s.lister.List(ctx, dir)
		} else {
			entries, err = s.lister.ListRecursively(ctx, dir)
		}
		if err != nil {
			return nil, s.toErrorDetail(err, req.Directory, op)
		}
		resp.Entries = s.toEntryInfos(entries, req.HumanSizes)
		resp.TotalCount = len(entries)
	case models.ListModeTree:
		root, err := s.lister.ListRecursivelyInTree(ctx, dir)
		if err != nil {
			return nil, s.toErrorDetail(err, req.Directory, op)
		}
		resp.Entries = s.toEntryInfos(root.Children, req.HumanSizes)
		resp.TotalCount = root.Count()
	default:
		return nil, errors.NewInvalidParamsError(fmt.Sprintf("unknown mode %q", req.Mode),
			map[string]interface{}{"mode": "must be one of flat, recursive, tree"})
	}

	metrics.RecordListing(mode, resp.TotalCount)
	return resp, nil
}

func (s *DefaultFileUtilityService) toEntryInfos(entries []listing.Entry, human bool) []models.EntryInfo {
	out := make([]models.EntryInfo, 0, len(entries))
	for _, e := range entries {
		out = append(out, s.toEntryInfo(e, human))
	}
	return out
}

func (s *DefaultFileUtilityService) toEntryInfo(e listing.Entry, human bool) models.EntryInfo {
	switch v := e.(type) {
	case *listing.FileEntry:
		size := v.Size
		info := models.EntryInfo{
			Type:             models.EntryTypeFile,
			Path:             s.relative(v.Path),
			CreationTime:     formatTime(v.CreationTime),
			Size:             &size,
			LastModifiedTime: formatTime(v.LastModifiedTime),
		}
		if human {
			info.SizeHuman = fileops.FormatFileSize(size, fileops.DefaultByteTitles)
		}
		return info
	case *listing.FolderEntry:
		info := models.EntryInfo{
			Type:         models.EntryTypeFolder,
			Path:         s.relative(v.Path),
			CreationTime: formatTime(v.CreationTime),
		}
		if len(v.Children) > 0 {
			info.Children = s.toEntryInfos(v.Children, human)
		}
		return info
	}
	return models.EntryInfo{Path: s.relative(e.EntryPath())}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// HashFile implements FileUtilityService.
func (s *DefaultFileUtilityService) HashFile(ctx context.Context, req models.HashFileRequest) (resp *models.HashFileResponse, errDetail *models.ErrorDetail) {
	const op = models.MethodHashFile
	defer func(start time.Time) { s.finish(op, start, errDetail) }(time.Now())

	if req.Path == "" {
		return nil, errors.NewInvalidParamsError("path is required", map[string]interface{}{"path": "missing"})
	}
	alg := s.defaultAlg
	if req.Algorithm != "" {
		parsed, err := hashing.ParseAlgorithm(req.Algorithm)
		if err != nil {
			return nil, s.toErrorDetail(err, req.Path, op)
		}
		alg = parsed
	}

	path, errDetail := s.resolveAndValidatePath(req.Path, op)
	if errDetail != nil {
		return nil, errDetail
	}
	stats, err := s.fsAdapter.GetFileStats(path)
	if err != nil {
		return nil, s.toErrorDetail(err, req.Path, op)
	}
	if stats.IsDir {
		return nil, errors.NewInvalidParamsError(fmt.Sprintf("'%s' is a directory.", req.Path), map[string]interface{}{"path": req.Path})
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	digest, err := hashing.HashFile(ctx, s.fsAdapter, path, alg)
	if err != nil {
		return nil, s.toErrorDetail(err, req.Path, op)
	}
	metrics.RecordHash(string(alg), stats.Size)

	return &models.HashFileResponse{
		Path:      s.relative(path),
		Algorithm: string(alg),
		Digest:    digest,
		Size:      stats.Size,
	}, nil
}

// BackupFile implements FileUtilityService.
func (s *DefaultFileUtilityService) BackupFile(ctx context.Context, req models.BackupFileRequest) (resp *models.BackupFileResponse, errDetail *models.ErrorDetail) {
	const op = models.MethodBackupFile
	defer func(start time.Time) { s.finish(op, start, errDetail) }(time.Now())

	if req.Source == "" {
		return nil, errors.NewInvalidParamsError("source is required", map[string]interface{}{"source": "missing"})
	}
	source, errDetail := s.resolveAndValidatePath(req.Source, op)
	if errDetail != nil {
		return nil, errDetail
	}
	stats, err := s.fsAdapter.GetFileStats(source)
	if err != nil {
		return nil, s.toErrorDetail(err, req.Source, op)
	}
	if stats.IsDir {
		return nil, errors.NewInvalidParamsError(fmt.Sprintf("'%s' is a directory.", req.Source), map[string]interface{}{"source": req.Source})
	}
	targetDir, errDetail := s.resolveDirectory(req.TargetDirectory, op)
	if errDetail != nil {
		return nil, errDetail
	}
	targetName := req.TargetName
	if targetName == "" {
		targetName = filepath.Base(source)
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	backupPath, err := s.ops.Backup(ctx, source, targetDir, targetName)
	if err != nil {
		return nil, s.toErrorDetail(err, req.Source, op)
	}
	return &models.BackupFileResponse{
		Source:     s.relative(source),
		BackupPath: s.relative(backupPath),
	}, nil
}

var _ FileUtilityService = (*DefaultFileUtilityService)(nil)
