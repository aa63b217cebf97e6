package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/docextract/constants"
)

// extSet builds the lookup for exts, falling back to constants.AllowedExtensions.
func extSet(exts []string) map[string]struct{} {
	if len(exts) == 0 {
		return constants.AllowedExtensions
	}
	set := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		if e = constants.NormalizeExt(strings.TrimSpace(e)); e != "" {
			set[e] = struct{}{}
		}
	}
	return set
}

// AllowedExt checks if a file extension is in set.
func AllowedExt(ext string, set map[string]struct{}) bool {
	_, ok := set[constants.NormalizeExt(ext)]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".") && base != "." && base != ".."
}

// HashFile returns the hex sha256 and size of the file at path.
func HashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	n, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// NewSource hashes the file at path and describes it as a Source.
func NewSource(path string) (Source, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Source{}, err
	}
	hashHex, size, err := HashFile(abs)
	if err != nil {
		return Source{}, err
	}
	return Source{
		Path:    abs,
		Name:    filepath.Base(abs),
		Ext:     constants.NormalizeExt(filepath.Ext(abs)),
		HashHex: hashHex,
		Size:    size,
	}, nil
}
