package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"verifier/internal/config"
	"verifier/internal/verifier"
	"verifier/pkg/domain"
	"verifier/pkg/storage/local"

	"github.com/go-faster/jx"
	"github.com/spf13/cobra"
)

// encodeLocalSummary writes the summary of a CLI run, listing the files
// written below dir instead of download links.
func encodeLocalSummary(e *jx.Encoder, s *domain.Summary, dir string) {
	e.ObjStart()
	e.FieldStart("batchId")
	e.Str(s.BatchID.String())
	e.FieldStart("validCount")
	e.Int(s.ValidCount)
	e.FieldStart("invalidCount")
	e.Int(s.InvalidCount)
	e.FieldStart("catchAllCount")
	e.Int(s.CatchAllCount)
	e.FieldStart("files")
	e.ObjStart()
	for _, d := range domain.Dispositions {
		if key, ok := s.Outputs[d]; ok {
			e.FieldStart(string(d))
			e.Str(filepath.Join(dir, filepath.FromSlash(key)))
		}
	}
	e.ObjEnd()
	e.ObjEnd()
}

func verifyCommand(cfg *config.Config) *cobra.Command {
	var column, outDir string

	cmd := &cobra.Command{
		Use:   "verify <file.csv>",
		Short: "Verifies a local CSV file and writes the classified files to disk",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if outDir == "" {
				outDir = cfg.Storage.LocalDir
			}
			artifacts, err := local.New(local.Options{Dir: outDir})
			if err != nil {
				return fmt.Errorf("could not create output directory: %w", err)
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("could not open input: %w", err)
			}
			defer f.Close()

			summary, err := newVerifier(cfg, artifacts).Verify(ctx, verifier.Request{
				Source:   f,
				Column:   column,
				FileName: filepath.Base(args[0]),
			})
			if err != nil {
				return err //nolint: wrapcheck
			}

			e := &jx.Encoder{}
			e.SetIdent(2)
			encodeLocalSummary(e, summary, outDir)
			_, err = fmt.Fprintln(cmd.OutOrStdout(), e.String())

			return err //nolint: wrapcheck
		},
	}

	cmd.Flags().StringVarP(&column, "column", "e", "email", "Header of the column holding email addresses")
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "Output directory (defaults to storage.localDir)")

	return cmd
}
