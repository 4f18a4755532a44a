package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hitrax/qagen/internal/config"
	"github.com/hitrax/qagen/internal/dataset"
	"github.com/hitrax/qagen/internal/document"
	"github.com/hitrax/qagen/internal/generate"
	"github.com/hitrax/qagen/internal/pipeline"
)

func runCmd() *cobra.Command {
	var out string
	var model string
	var maxPages int

	cmd := &cobra.Command{
		Use:   "run <pdf>",
		Short: "Auto-split a PDF by its outline, generate all pairs, and write the dataset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log := slog.New(slog.NewTextHandler(os.Stderr, nil))

			cfg := config.Load()
			if model != "" {
				cfg.GeminiModel = model
			}
			if maxPages > 0 {
				cfg.MaxPagesPerChunk = maxPages
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			pdfPath := args[0]
			data, err := os.ReadFile(pdfPath)
			if err != nil {
				return fmt.Errorf("read %s: %w", pdfPath, err)
			}
			doc, err := document.OpenPDF(filepath.Base(pdfPath), data)
			if err != nil {
				return err
			}

			sess := pipeline.NewSession(log)
			sess.LoadDocument(doc)

			chunks, err := sess.AutoSplit(cfg.MaxPagesPerChunk)
			if err != nil {
				return err
			}
			log.Info("auto-split complete", "pages", doc.PageCount(), "chunks", len(chunks))

			ctx := cmd.Context()
			gemini, err := generate.NewGeminiModel(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
			if err != nil {
				return err
			}
			client := generate.NewClient(gemini, generate.RetryPolicy{
				MaxAttempts: cfg.MaxAttempts,
				BaseDelay:   cfg.RetryBaseDelay,
			}, log)
			orch := pipeline.NewOrchestrator(client, cfg.PacingDelay, log)

			err = orch.RunAll(ctx, sess, func(p pipeline.Progress) {
				fmt.Fprintf(cmd.ErrOrStderr(), "generated %d/%d chunks\n", p.Completed, p.Total)
			})
			if err != nil {
				return err
			}

			exported, err := dataset.Export(sess.Chunks(), sess.Store())
			if err != nil {
				return err
			}
			if out == "" {
				out = dataset.ExportFilename
			}
			if err := os.WriteFile(out, exported, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", out, err)
			}
			log.Info("dataset written", "path", out, "pairs", sess.Store().PairCount())
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (default: "+dataset.ExportFilename+")")
	cmd.Flags().StringVar(&model, "model", "", "override the Gemini model")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "maximum pages per auto-split chunk (default 4)")
	return cmd
}
