package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/laudo/internal/app"
	"github.com/hyperifyio/laudo/internal/extract"
	"github.com/hyperifyio/laudo/internal/httpapi"
	"github.com/hyperifyio/laudo/internal/llm"
	"github.com/hyperifyio/laudo/internal/report"
	"github.com/hyperifyio/laudo/internal/template"
)

func (c *cli) generateCmd() *cobra.Command {
	var (
		ai         bool
		outDir     string
		pdf        bool
		strategies []string
		style      string
	)
	cmd := &cobra.Command{
		Use:   "generate <id>",
		Short: "Draft the expert report of a case",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := app.ReportOptions{AI: ai, Style: style}
			for _, s := range strategies {
				opts.Strategies = append(opts.Strategies, report.Strategy(strings.TrimSpace(s)))
			}
			res, err := c.app.GenerateReport(cmd.Context(), args[0], opts)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}
			path := filepath.Join(outDir, res.Filename)
			if err := os.WriteFile(path, res.HTML, 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, path)
			if pdf {
				pdfPath := strings.TrimSuffix(path, ".html") + ".pdf"
				f, err := os.Create(pdfPath)
				if err != nil {
					return err
				}
				if err := template.WritePDF(res.Document, f); err != nil {
					_ = f.Close()
					return fmt.Errorf("write pdf: %w", err)
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintln(w, pdfPath)
			}
			for _, a := range res.Attempts {
				ev := log.Debug()
				if !a.Accepted {
					ev = log.Info()
				}
				ev.Str("strategy", string(a.Strategy)).Bool("accepted", a.Accepted).
					Int("length", a.Length).Strs("reasons", a.Reasons).Msg("attempt")
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.BoolVar(&ai, "ai", false, "draft with the configured AI provider instead of the fixed template")
	f.StringVarP(&outDir, "out", "o", ".", "output directory")
	f.BoolVar(&pdf, "pdf", false, "also write a PDF rendition")
	f.StringSliceVar(&strategies, "strategy", nil, "override the AI strategy chain (mega, sections, fallback, template)")
	f.StringVar(&style, "style", "", "draft a quick (rapido) or detailed (detalhado) report; ignored with --strategy")
	return cmd
}

func (c *cli) configCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Manage the AI provider configuration"}

	var cfg llm.Config
	var provider string
	set := &cobra.Command{
		Use:   "set",
		Short: "Store the AI provider, key and model",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Provider = llm.Provider(provider)
			out, err := c.app.ConfigureAI(cfg)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	set.Flags().StringVar(&provider, "provider", "", "openai, claude or gemini")
	set.Flags().StringVar(&cfg.APIKey, "key", "", "API key")
	set.Flags().StringVar(&cfg.Model, "model", "", "model identifier (provider default when empty)")

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with the key masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.app.AIConfig()
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}
	test := &cobra.Command{
		Use:   "test",
		Short: "Check the configured key against the provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()
			if err := c.app.TestAI(ctx); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "conexão OK")
			return nil
		},
	}
	cmd.AddCommand(set, show, test)
	return cmd
}

func (c *cli) cacheCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "cache", Short: "Manage the model answer cache"}
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every cached answer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.ClearCache()
		},
	})
	return cmd
}

func (c *cli) analyzeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <file>",
		Short: "List the sections of a finished report and check it like a draft",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			text := string(b)
			switch strings.ToLower(filepath.Ext(args[0])) {
			case ".html", ".htm":
				text = extract.FromHTML(b).Text
			}
			res, err := c.app.AnalyzeReport(text)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
}

func (c *cli) serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = c.cfg.Addr
			}
			e := httpapi.New(c.app, log.Logger)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errc := make(chan error, 1)
			go func() {
				log.Info().Str("addr", addr).Str("data", c.cfg.DataDir).Msg("starting server")
				if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errc <- err
				}
				close(errc)
			}()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}
			log.Info().Msg("shutting down server")
			sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := e.Shutdown(sctx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			log.Info().Msg("server stopped")
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (LAUDO_ADDR, default :8080)")
	return cmd
}
