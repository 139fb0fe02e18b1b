package main

import (
	"os"
	"path/filepath"
	"testing"

	"verifier/pkg/domain"

	"github.com/go-faster/jx"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	t.Chdir(t.TempDir())

	// a missing default file falls back to defaults
	cfg, err := loadConfig(defaultConfigPath)
	require.NoError(t, err)
	require.Equal(t, ":5001", cfg.HTTP.Addr)
	require.Equal(t, 64, cfg.Verifier.Concurrency)
	require.Equal(t, "local", cfg.Storage.Backend)

	// an explicitly named file must exist
	_, err = loadConfig("missing.yml")
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte("verifier:\n  concurrency: 8\nstorage:\n  localDir: out\n"), 0o600))
	cfg, err = loadConfig(path)
	require.NoError(t, err)
	require.Equal(t, 8, cfg.Verifier.Concurrency)
	require.Equal(t, "out", cfg.Storage.LocalDir)
}

func TestEncodeLocalSummary(t *testing.T) {
	id := domain.BatchID(uuid.MustParse("5b1c2f7e-9d0a-4c55-8a34-3f0d1c2b4e6a"))
	e := &jx.Encoder{}
	encodeLocalSummary(e, &domain.Summary{
		BatchID:      id,
		InvalidCount: 3,
		Outputs: map[domain.Disposition]string{
			domain.DispositionInvalid: id.String() + "/leads-invalid.csv",
		},
	}, "out")

	require.JSONEq(t, `{
		"batchId": "5b1c2f7e-9d0a-4c55-8a34-3f0d1c2b4e6a",
		"validCount": 0,
		"invalidCount": 3,
		"catchAllCount": 0,
		"files": {"invalid": "`+filepath.Join("out", id.String(), "leads-invalid.csv")+`"}
	}`, e.String())
}
