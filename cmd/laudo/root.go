package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/hyperifyio/laudo/internal/app"
)

// cli carries the state shared by every subcommand.
type cli struct {
	configPath string
	envFiles   []string
	cfg        app.Config
	app        *app.App
	// opts are extra app options, set by tests.
	opts []app.Option
}

func newRootCmd(opts ...app.Option) *cobra.Command {
	c := &cli{opts: opts}
	root := &cobra.Command{
		Use:           "laudo",
		Short:         "Rascunho de laudos periciais médicos trabalhistas",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}
	pf := root.PersistentFlags()
	pf.StringVar(&c.configPath, "config", "", "YAML or JSON config file")
	pf.StringSliceVar(&c.envFiles, "env-file", []string{".env"}, "dotenv files loaded before reading LAUDO_* variables")
	pf.StringVar(&c.cfg.DataDir, "data-dir", "", "case storage directory (LAUDO_DATA_DIR, default .laudo)")
	pf.BoolVar(&c.cfg.StrictPerms, "strict-perms", false, "create storage with owner-only permissions")
	pf.StringVar(&c.cfg.NTEPMatrix, "ntep-matrix", "", "YAML NTEP matrix replacing the embedded one")
	pf.StringVar(&c.cfg.AIBaseURL, "ai-base-url", "", "override provider base URL, e.g. a local llm-stub (LAUDO_AI_BASE_URL)")
	pf.StringVar(&c.cfg.CacheDir, "cache-dir", "", "cache model answers in this directory (LAUDO_CACHE_DIR)")
	pf.DurationVar(&c.cfg.CacheMaxAge, "cache-max-age", 0, "drop cached answers older than this (0 = keep)")
	pf.IntVar(&c.cfg.Concurrency, "concurrency", 0, "max concurrent section requests (0 = all)")
	pf.BoolVarP(&c.cfg.Verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		c.caseCmd(),
		c.extractCmd(),
		c.ntepCmd(),
		c.generateCmd(),
		c.analyzeCmd(),
		c.configCmd(),
		c.serveCmd(),
		c.cacheCmd(),
	)
	return root
}

// setup layers flags over env over the config file and builds the app.
func (c *cli) setup() error {
	if err := app.LoadEnvFiles(c.envFiles...); err != nil {
		return fmt.Errorf("env file: %w", err)
	}
	app.ApplyEnvToConfig(&c.cfg)
	if strings.TrimSpace(c.configPath) != "" {
		fc, err := app.LoadConfigFile(c.configPath)
		if err != nil {
			return err
		}
		app.ApplyFileConfig(&c.cfg, fc)
	}
	if err := app.ValidateConfig(&c.cfg); err != nil {
		return err
	}
	if c.cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	a, err := app.New(c.cfg, c.opts...)
	if err != nil {
		return err
	}
	c.app = a
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
