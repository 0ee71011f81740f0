package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"docqa/internal/app"
	"docqa/internal/bootstrap"
	"docqa/internal/config"
)

// localApp builds the pipeline for one-shot commands: in-memory store, no
// history, uploads in a throwaway directory.
func localApp(ctx context.Context) (*bootstrap.App, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("load config failed: %w", err)
	}
	return newLocalApp(ctx, cfg)
}

func newLocalApp(ctx context.Context, cfg *config.Config) (*bootstrap.App, func(), error) {
	dir, err := os.MkdirTemp("", "docqa-*")
	if err != nil {
		return nil, nil, err
	}
	cfg.Upload.Dir = dir
	cfg.Store.Driver = "memory"
	cfg.History.Enabled = false

	a, err := bootstrap.New(ctx, cfg)
	if err != nil {
		_ = os.RemoveAll(dir)
		return nil, nil, fmt.Errorf("bootstrap failed: %w", err)
	}
	cleanup := func() {
		_ = a.Close(context.Background())
		_ = os.RemoveAll(dir)
	}
	return a, cleanup, nil
}

func loadDocument(ctx context.Context, a *bootstrap.App, path string) (*app.UploadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return a.Documents.Upload(ctx, app.UploadInput{Filename: filepath.Base(path), Data: data})
}

func askCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ask <file.pdf> <question>",
		Short: "Answer one question about a PDF",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, cleanup, err := localApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			doc, err := loadDocument(ctx, a, args[0])
			if err != nil {
				return err
			}
			result, err := a.Chat.Ask(ctx, app.AskInput{SessionID: doc.SessionID, Question: args[1]})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.Response)
			return nil
		},
	}
}

func summarizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summarize <file.pdf>",
		Short: "Print a structured summary of a PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, cleanup, err := localApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			doc, err := loadDocument(ctx, a, args[0])
			if err != nil {
				return err
			}
			summary, err := a.Chat.Summarize(ctx, doc.SessionID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), summary)
			return nil
		},
	}
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the configured model credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, cleanup, err := localApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if !a.Composer.ValidateCredentials(ctx) {
				return fmt.Errorf("model %q at %s rejected the credentials or is unreachable", a.Config.LLM.Model, a.Config.LLM.BaseURL)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "model %q is reachable and credentials are valid\n", a.Config.LLM.Model)
			return nil
		},
	}
}
