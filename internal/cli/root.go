// Package cli 以命令列驅動推薦引擎
package cli

import (
	"context"
	"fmt"
	"runtime"

	"food-sustainability/internal/engine"
	"food-sustainability/internal/infrastructure/config"
	"food-sustainability/internal/pkg/common"

	"github.com/spf13/cobra"
)

// Options 全域旗標
type Options struct {
	Verbose bool
	Offline bool
	NoAI    bool
	JSON    bool
}

// app 單次執行的共享狀態
type app struct {
	opts    Options
	version string
	cfg     *config.Config
	engine  *engine.Engine

	// loadConfig 測試時可替換
	loadConfig func() (*config.Config, error)
}

// NewRootCommand 建立 ecocli 根命令
func NewRootCommand(version string) *cobra.Command {
	return newRootCommand(&app{
		version:    version,
		loadConfig: config.LoadConfig,
	})
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "ecocli",
		Short: "Look up food environmental impact and sustainable alternatives.",
		Long: `ecocli drives the food sustainability engine from a terminal.

Impact data is resolved from a curated local table first, then Open Food
Facts, then USDA FoodData Central. Recommendations combine generative
suggestions (when a Gemini key is configured) with category alternatives.

Examples:
  ecocli impact beef
  ecocli recommend "cow milk" --limit 5 --carbon 1 --water 0.5
  ecocli compare beef chicken
  ecocli search milk --offline`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&a.opts.Verbose, "verbose", "v", false, "enable debug logging")
	flags.BoolVar(&a.opts.Offline, "offline", false, "use only the curated local table")
	flags.BoolVar(&a.opts.NoAI, "no-ai", false, "disable the generative service")
	flags.BoolVar(&a.opts.JSON, "json", false, "print results as JSON")

	root.AddCommand(
		a.impactCmd(),
		a.barcodeCmd(),
		a.recommendCmd(),
		a.searchCmd(),
		a.foodsCmd(),
		a.infoCmd(),
		a.compareCmd(),
		a.versionCmd(),
	)
	return root
}

// setup 載入設定並建立引擎，只在需要引擎的命令執行
func (a *app) setup(ctx context.Context) error {
	level := "warn"
	if a.opts.Verbose {
		level = "debug"
	}
	common.InitConsoleLogger(level)

	cfg, err := a.loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if a.opts.Offline {
		cfg.OpenFoodFacts.Enabled = false
		cfg.USDA.Enabled = false
		cfg.Gemini.Enabled = false
		cfg.Redis.Enabled = false
	}
	if a.opts.NoAI {
		cfg.Gemini.Enabled = false
	}
	// 單次執行不需要背景清理
	cfg.Cache.CleanupInterval = 0

	eng, err := engine.New(ctx, cfg)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.engine = eng
	return nil
}

func (a *app) teardown() {
	if a.engine != nil {
		a.engine.Close()
		a.engine = nil
	}
}

// withEngine 包裝需要引擎的命令
func (a *app) withEngine(run func(cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.setup(cmd.Context()); err != nil {
			return err
		}
		defer a.teardown()
		return run(cmd, args)
	}
}

func (a *app) output(cmd *cobra.Command, v interface{}, table func() error) error {
	if a.opts.JSON {
		return printJSON(cmd.OutOrStdout(), v)
	}
	return table()
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of ecocli.",
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("ecocli\n")
			cmd.Printf("  Version: %s\n", a.version)
			cmd.Printf("  Runtime: %s\n", runtime.Version())
		},
	}
}
