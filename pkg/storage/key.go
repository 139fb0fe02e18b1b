package storage

import (
	"path/filepath"
	"strings"

	"verifier/pkg/domain"
	"verifier/pkg/serrors"
)

// DefaultBaseName is used when an upload carries no usable file name.
const DefaultBaseName = "upload"

// BaseName derives the artifact base name from an uploaded file name: the
// directory and extension are dropped and anything outside [A-Za-z0-9._-]
// is replaced with "_".
func BaseName(filename string) string {
	name := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	name = strings.TrimSuffix(name, filepath.Ext(name))

	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, name)

	name = strings.Trim(name, ".")
	if name == "" {
		return DefaultBaseName
	}

	return name
}

// ArtifactKey returns the storage key of one disposition's output file.
func ArtifactKey(batch domain.BatchID, base string, d domain.Disposition) string {
	return batch.String() + "/" + base + "-" + string(d) + ".csv"
}

// ValidateKey checks that key is a relative, slash-separated path without
// empty, "." or ".." segments, so no backend can be made to escape its root.
func ValidateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.ContainsAny(key, "\\\x00") {
		return serrors.With(serrors.ErrBadRequest, "invalid artifact key %q", key)
	}

	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return serrors.With(serrors.ErrBadRequest, "invalid artifact key %q", key)
		}
	}

	return nil
}
