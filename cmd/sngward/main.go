// Command sngward runs quality checks and fixes over a SongBeamer SNG
// song collection.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/beamertools/sngward/core/openlyrics"
	"github.com/beamertools/sngward/internal/batch"
	"github.com/beamertools/sngward/internal/config"
	"github.com/beamertools/sngward/internal/logging"
	"github.com/beamertools/sngward/internal/report"
)

const version = "0.2.0"

// CLI defines the command-line interface for sngward.
var CLI struct {
	Config    string `name:"config" short:"c" help:"Configuration file (YAML)" type:"path"`
	Directory string `name:"directory" short:"d" help:"Song collection directory (overrides config)" type:"path"`
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)"`
	LogFormat string `name:"log-format" help:"Log format (text, json)"`

	Check   CheckCmd   `cmd:"" help:"Validate all songs and report findings"`
	Fix     FixCmd     `cmd:"" help:"Validate all songs and repair what is fixable"`
	Report  ReportCmd  `cmd:"" help:"Show recorded runs and their findings"`
	Import  ImportCmd  `cmd:"" help:"Import an OpenLyrics XML song as SNG"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// loadConfig reads the configuration and applies the global flag
// overrides, then initializes logging.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return nil, err
	}
	if CLI.Directory != "" {
		cfg.Directory = CLI.Directory
	}
	if CLI.LogLevel != "" {
		cfg.LogLevel = CLI.LogLevel
	}
	if CLI.LogFormat != "" {
		cfg.LogFormat = CLI.LogFormat
	}
	if cfg.Directory == "" {
		return nil, fmt.Errorf("no collection directory configured (use --directory or the config file)")
	}
	logging.InitLogger(logging.ParseLevel(cfg.LogLevel), logging.ParseFormat(cfg.LogFormat))
	return cfg, nil
}

// openStore opens the findings database when one is configured.
func openStore(cfg *config.Config) (*report.Store, error) {
	if cfg.Report.Path == "" {
		return nil, nil
	}
	return report.Open(cfg.Report.Path)
}

// CheckCmd validates the collection without touching any file.
type CheckCmd struct{}

func (c *CheckCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	summary, err := batch.NewRunner(cfg, store).Run(context.Background(), false)
	if err != nil {
		return err
	}
	printSummary(summary)
	if summary.Findings > 0 || summary.Failures > 0 {
		return fmt.Errorf("%d findings in %d files", summary.Findings, summary.Files)
	}
	return nil
}

// FixCmd validates the collection and writes repaired files back.
type FixCmd struct {
	TargetDir string `name:"target-dir" help:"Write output into a separate directory instead of in place" type:"path"`
	NoBackup  bool   `name:"no-backup" help:"Skip the pre-run backup archive"`
}

func (c *FixCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if c.NoBackup {
		cfg.Backup.Enabled = false
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	runner := batch.NewRunner(cfg, store)
	runner.TargetDir = c.TargetDir
	summary, err := runner.Run(context.Background(), true)
	if err != nil {
		return err
	}
	printSummary(summary)
	if summary.Failures > 0 {
		return fmt.Errorf("%d files failed", summary.Failures)
	}
	return nil
}

// ReportCmd lists runs, or the findings of one run.
type ReportCmd struct {
	RunID string `arg:"" name:"run" optional:"" help:"Run ID to show findings for (default: latest)"`
}

func (c *ReportCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Report.Path == "" {
		return fmt.Errorf("no report database configured")
	}
	store, err := report.Open(cfg.Report.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	runID := c.RunID
	if runID == "" {
		latest, err := store.LatestRun(ctx)
		if err != nil {
			return err
		}
		runID = latest.ID

		runs, err := store.Runs(ctx)
		if err != nil {
			return err
		}
		fmt.Println("Recorded runs:")
		for _, r := range runs {
			fmt.Printf("  %s  %s  %-5s  %d files\n",
				r.ID, r.StartedAt.Format("2006-01-02 15:04:05"), r.Mode, r.FileCount)
		}
		fmt.Println()
	}

	findings, err := store.Findings(ctx, runID)
	if err != nil {
		return err
	}
	fmt.Printf("Findings of run %s:\n", runID)
	for _, f := range findings {
		state := "open"
		if f.Fixed {
			state = "fixed"
		}
		fmt.Printf("  [%-5s] %-22s %s: %s\n", state, f.Rule, f.File, f.Detail)
	}
	fmt.Printf("%d findings\n", len(findings))
	return nil
}

// ImportCmd converts OpenLyrics XML files into SNG files.
type ImportCmd struct {
	Paths     []string `arg:"" help:"OpenLyrics XML files" type:"existingfile"`
	OutputDir string   `name:"output-dir" short:"o" default:"." help:"Directory for the generated SNG files" type:"path"`
	Prefix    string   `name:"prefix" help:"Songbook prefix for the generated files"`
}

func (c *ImportCmd) Run() error {
	cfg, err := config.Load(CLI.Config)
	if err != nil {
		return err
	}
	if CLI.LogLevel != "" {
		cfg.LogLevel = CLI.LogLevel
	}
	logging.InitLogger(logging.ParseLevel(cfg.LogLevel), logging.ParseFormat(cfg.LogFormat))
	rules := cfg.Rules()

	for _, path := range c.Paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)) + ".sng"
		doc, err := openlyrics.Import(data, base, rules)
		if err != nil {
			return fmt.Errorf("importing %s: %w", path, err)
		}
		doc.SongbookPrefix = c.Prefix

		target := filepath.Join(c.OutputDir, base)
		if err := doc.Write(target); err != nil {
			return err
		}
		fmt.Printf("imported %s -> %s\n", path, target)
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Printf("sngward version %s\n", version)
	return nil
}

func printSummary(s *batch.Summary) {
	fmt.Printf("files: %d  findings: %d  fixed: %d  failures: %d\n",
		s.Files, s.Findings, s.Fixed, s.Failures)
	if s.BackupPath != "" {
		fmt.Printf("backup: %s\n", s.BackupPath)
	}
	if s.RunID != "" {
		fmt.Printf("run: %s\n", s.RunID)
	}
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("sngward"),
		kong.Description("Quality checks and repairs for SongBeamer SNG song collections"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run(ctx)
	ctx.FatalIfErrorf(err)
}
