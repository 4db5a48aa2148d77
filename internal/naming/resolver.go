package naming

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	apperrors "file-utils-server/internal/errors"
	"file-utils-server/internal/filesystem"

	"go.uber.org/zap"
)

// ErrAttemptsExhausted is returned when every candidate up to the configured cap exists.
var ErrAttemptsExhausted = errors.New("name allocation attempts exhausted")

// Variant identifies how a resolver splits names for comparison.
type Variant string

const (
	VariantFullName   Variant = "full_name"
	VariantBaseName   Variant = "base_name"
	VariantFolderName Variant = "folder_name"
)

// Observer is told about every finished resolution.
type Observer func(variant Variant, attempts int, err error)

// Resolver probes a directory for candidate names until one is free.
//
// Probes are issued one at a time, each candidate derived from the previous one with
// NextCandidate. With no attempt cap the loop only ends when a free name turns up, so a
// directory in which every candidate exists keeps it spinning; set WithMaxAttempts or
// pass a context with a deadline when that matters.
type Resolver struct {
	probe       filesystem.ExistenceProbe
	maxAttempts int
	logger      *zap.Logger
	observer    Observer
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithMaxAttempts caps the number of probes per resolution. 0 means unbounded.
func WithMaxAttempts(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithLogger sets the logger used for per-probe debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithObserver registers a callback invoked once per resolution.
func WithObserver(observer Observer) Option {
	return func(r *Resolver) {
		r.observer = observer
	}
}

// NewResolver creates a Resolver backed by probe.
func NewResolver(probe filesystem.ExistenceProbe, opts ...Option) *Resolver {
	r := &Resolver{probe: probe, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// MaxAttempts returns the configured cap, 0 when unbounded.
func (r *Resolver) MaxAttempts() int { return r.maxAttempts }

// ResolveFullName returns a file name, extension included, that does not exist in directory.
// The digit suffix is applied to the stem and the extension is kept on every candidate:
// "a.txt" -> "a 2.txt" -> "a 3.txt".
func (r *Resolver) ResolveFullName(ctx context.Context, directory, fileName string) (string, error) {
	if err := validateName("file name", fileName); err != nil {
		return "", err
	}
	stem, ext := SplitExt(fileName)
	free, err := r.resolve(ctx, VariantFullName, directory, stem, ext)
	if err != nil {
		return "", err
	}
	return free + ext, nil
}

// ResolveBaseName returns a base name such that baseName+extension does not exist in
// directory. extension is used verbatim (include the dot) and is not part of the result.
func (r *Resolver) ResolveBaseName(ctx context.Context, directory, baseName, extension string) (string, error) {
	if err := validateName("base name", baseName); err != nil {
		return "", err
	}
	if strings.ContainsRune(extension, '/') || strings.ContainsRune(extension, os.PathSeparator) {
		return "", apperrors.InvalidArgumentf("extension %q contains a path separator", extension)
	}
	return r.resolve(ctx, VariantBaseName, directory, baseName, extension)
}

// ResolveFolderName returns a name that does not exist in directory, treating folderName
// as one token: "archive.tar" -> "archive.tar 2".
func (r *Resolver) ResolveFolderName(ctx context.Context, directory, folderName string) (string, error) {
	if err := validateName("folder name", folderName); err != nil {
		return "", err
	}
	return r.resolve(ctx, VariantFolderName, directory, folderName, "")
}

func (r *Resolver) resolve(ctx context.Context, variant Variant, directory, candidate, suffix string) (string, error) {
	attempts := 0
	free, err := func() (string, error) {
		for {
			if err := ctx.Err(); err != nil {
				return "", err
			}
			attempts++
			path := filepath.Join(directory, candidate+suffix)
			exists, err := r.probe.FileExists(path)
			if err != nil {
				return "", fmt.Errorf("probing %s: %w", path, err)
			}
			r.logger.Debug("probed candidate name",
				zap.String("variant", string(variant)),
				zap.String("path", path),
				zap.Bool("exists", exists),
				zap.Int("attempt", attempts))
			if !exists {
				return candidate, nil
			}
			if r.maxAttempts > 0 && attempts >= r.maxAttempts {
				return "", fmt.Errorf("%w: %d candidates taken in %s (last %q)",
					ErrAttemptsExhausted, attempts, directory, candidate+suffix)
			}
			candidate = NextCandidate(candidate)
		}
	}()
	if r.observer != nil {
		r.observer(variant, attempts, err)
	}
	return free, err
}

func validateName(kind, name string) error {
	if name == "" {
		return apperrors.InvalidArgumentf("%s is empty", kind)
	}
	if name == "." || name == ".." {
		return apperrors.InvalidArgumentf("%s %q is reserved", kind, name)
	}
	if strings.ContainsRune(name, '/') || strings.ContainsRune(name, os.PathSeparator) {
		return apperrors.InvalidArgumentf("%s %q contains a path separator", kind, name)
	}
	return nil
}
