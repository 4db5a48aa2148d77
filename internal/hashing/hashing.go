// Package hashing computes lowercase hex digests of byte slices and files.
package hashing

import (
	"context"
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"hash"
	"io"
	"sort"
	"strings"

	apperrors "file-utils-server/internal/errors"

	"github.com/cespare/xxhash/v2"
)

// Algorithm names a digest algorithm.
type Algorithm string

const (
	SHA256   Algorithm = "sha256"
	SHA1     Algorithm = "sha1"
	SHA512   Algorithm = "sha512"
	MD5      Algorithm = "md5"
	XXHash64 Algorithm = "xxhash64"

	Default = SHA256
)

var constructors = map[Algorithm]func() hash.Hash{
	SHA256:   sha256.New,
	SHA1:     sha1.New,
	SHA512:   sha512.New,
	MD5:      md5.New,
	XXHash64: func() hash.Hash { return xxhash.New() },
}

// Supported lists the known algorithms, sorted.
func Supported() []Algorithm {
	out := make([]Algorithm, 0, len(constructors))
	for a := range constructors {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseAlgorithm normalises name. An empty name selects Default.
func ParseAlgorithm(name string) (Algorithm, error) {
	if name == "" {
		return Default, nil
	}
	a := Algorithm(strings.ToLower(strings.ReplaceAll(name, "-", "")))
	if _, ok := constructors[a]; !ok {
		return "", apperrors.InvalidArgumentf("unsupported hash algorithm %q", name)
	}
	return a, nil
}

func newHash(a Algorithm) (hash.Hash, error) {
	ctor, ok := constructors[a]
	if !ok {
		return nil, apperrors.InvalidArgumentf("unsupported hash algorithm %q", string(a))
	}
	return ctor(), nil
}

// Digest returns the lowercase hex digest of data.
func Digest(data []byte, a Algorithm) (string, error) {
	h, err := newHash(a)
	if err != nil {
		return "", err
	}
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil)), nil
}

// FileOpener opens files for reading.
type FileOpener interface {
	OpenFile(path string) (io.ReadCloser, error)
}

// HashFile streams the file at path through the digest.
func HashFile(ctx context.Context, opener FileOpener, path string, a Algorithm) (string, error) {
	h, err := newHash(a)
	if err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	rc, err := opener.OpenFile(path)
	if err != nil {
		return "", apperrors.NewIOError("open", path, err)
	}
	defer rc.Close()

	if _, err := io.Copy(h, &ctxReader{ctx: ctx, r: rc}); err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", apperrors.NewIOError("read", path, err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ctxReader stops a long copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
