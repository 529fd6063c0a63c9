package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/chatdesk/internal/domain"
	docembeduc "github.com/kailas-cloud/chatdesk/internal/usecase/docembed"
)

var (
	embedOut       string
	embedChunkSize int
)

var embedCmd = &cobra.Command{
	Use:   "embed FILE.pdf",
	Short: "Embed a PDF and print the chunk embeddings as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, env, err := loadConfig()
		if err != nil {
			return err
		}
		logger, err := newLogger(env, cfg)
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()

		a, err := newApp(cmd.Context(), cfg, logger)
		if err != nil {
			return err
		}
		defer a.Close()

		svc := a.embed
		if embedChunkSize > 0 {
			svc = docembeduc.New(a.embedder, logger, docembeduc.WithChunkSize(embedChunkSize))
		}

		f, err := os.Open(filepath.Clean(args[0]))
		if err != nil {
			return fmt.Errorf("open document: %w", err)
		}
		defer func() { _ = f.Close() }()
		info, err := f.Stat()
		if err != nil {
			return fmt.Errorf("stat document: %w", err)
		}

		res, err := svc.EmbedPDF(cmd.Context(), f, info.Size())
		if err != nil {
			return err
		}
		logger.Info("Embedded document",
			zap.String("file", args[0]),
			zap.Int("chunks", res.Chunks),
			zap.Int("total_tokens", res.TotalTokens),
		)

		out := cmd.OutOrStdout()
		if embedOut != "" {
			w, err := os.Create(filepath.Clean(embedOut))
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer func() { _ = w.Close() }()
			out = w
		}

		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(struct {
			Embeddings []domain.Embedding `json:"embeddings"`
		}{res.Embeddings}); err != nil {
			return fmt.Errorf("write embeddings: %w", err)
		}
		return nil
	},
}

func init() {
	embedCmd.Flags().StringVarP(&embedOut, "out", "o", "", "write JSON to a file instead of stdout")
	embedCmd.Flags().IntVar(&embedChunkSize, "chunk-size", 0, "override the chunk size in characters")
	rootCmd.AddCommand(embedCmd)
}
