// Package batch walks a song collection and runs the validation rules
// over every file, either reporting findings or fixing them in place.
package batch

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/beamertools/sngward/core/errors"
	"github.com/beamertools/sngward/core/sng"
	"github.com/beamertools/sngward/internal/backup"
	"github.com/beamertools/sngward/internal/config"
	"github.com/beamertools/sngward/internal/fileutil"
	"github.com/beamertools/sngward/internal/logging"
	"github.com/beamertools/sngward/internal/report"
)

// Runner executes a check or fix run over the collection directory.
type Runner struct {
	cfg   *config.Config
	rules *sng.Config
	store *report.Store

	// TargetDir redirects fix-mode output into a separate tree instead
	// of writing the collection in place. Untouched files are copied.
	TargetDir string
}

// NewRunner binds a runner to a configuration and an optional findings
// store. A nil store disables reporting.
func NewRunner(cfg *config.Config, store *report.Store) *Runner {
	return &Runner{cfg: cfg, rules: cfg.Rules(), store: store}
}

// FileResult is the outcome of processing one song file.
type FileResult struct {
	Path     string
	Encoding string
	Findings []report.Finding
	Modified bool
	Err      error
}

// Summary aggregates a whole run.
type Summary struct {
	RunID      string
	Files      int
	Findings   int
	Fixed      int
	Failures   int
	BackupPath string
}

// rule binds a name to a document validation. run with fix=false must
// not mutate the document.
type rule struct {
	name    string
	detail  string
	fixable bool
	run     func(d *sng.Document, fix bool) bool
}

var rules = []rule{
	{
		name:    "suspicious-encoding",
		detail:  "UTF-8 umlaut sequences decoded as Latin-1",
		fixable: true,
		run:     func(d *sng.Document, fix bool) bool { return d.ValidateSuspiciousEncoding(fix) },
	},
	{
		name:    "unknown-blocks",
		detail:  "lyric content before the first block marker",
		fixable: true,
		run: func(d *sng.Document, fix bool) bool {
			if fix {
				d.GenerateVersesFromUnknown()
			}
			_, ok := d.Block(sng.UnknownLabel)
			return !ok
		},
	},
	{
		name:    "verse-order-coverage",
		detail:  "VerseOrder and block labels do not cover each other",
		fixable: true,
		run:     func(d *sng.Document, fix bool) bool { return d.ValidateVerseOrderCoverage(fix) },
	},
	{
		name:    "intro-slide",
		detail:  "missing Intro slide",
		fixable: true,
		run: func(d *sng.Document, fix bool) bool {
			if fix {
				d.FixIntroSlide()
			}
			if !slices.Contains(d.Header.VerseOrder(), "Intro") {
				return false
			}
			_, ok := d.Block("Intro")
			return ok
		},
	},
	{
		name:    "verse-order-stop",
		detail:  "missing or misplaced STOP entry",
		fixable: true,
		run:     func(d *sng.Document, fix bool) bool { return d.ValidateStop(fix, false) },
	},
	{
		name:    "verse-numbers",
		detail:  "block marker with non-numeric verse number",
		fixable: true,
		run:     func(d *sng.Document, fix bool) bool { return d.ValidateVerseNumbers(fix) },
	},
	{
		name:    "slide-line-count",
		detail:  "slide exceeds the configured line count",
		fixable: true,
		run:     func(d *sng.Document, fix bool) bool { return d.ValidateSlideLines(fix) },
	},
	{
		name:    "language-count",
		detail:  "LangCount header does not match the used markers",
		fixable: true,
		run:     func(d *sng.Document, fix bool) bool { return d.ValidateLanguageCount(fix) },
	},
	{
		name:    "language-markers",
		detail:  "content lines without a consistent language marker",
		fixable: true,
		run:     func(d *sng.Document, fix bool) bool { return d.ValidateLanguageMarkers(fix) },
	},
	{
		name:    "title",
		detail:  "Title header missing or carries catalog residue",
		fixable: true,
		run:     func(d *sng.Document, fix bool) bool { return d.ValidateTitle(fix) },
	},
	{
		name:    "songbook",
		detail:  "Songbook and ChurchSongID disagree with the catalog",
		fixable: true,
		run:     func(d *sng.Document, fix bool) bool { return d.ValidateSongbook(fix) },
	},
	{
		name:    "illegal-headers",
		detail:  "deny-listed header present",
		fixable: true,
		run:     func(d *sng.Document, fix bool) bool { return d.ValidateIllegalHeaders(fix) },
	},
	{
		name:    "ccli-caps",
		detail:  "CCLI header key with wrong letter case",
		fixable: true,
		run: func(d *sng.Document, fix bool) bool {
			if fix {
				d.FixCCLICaps()
			}
			return headerCapsOK(d, sng.HeaderCCLI)
		},
	},
	{
		name:    "background",
		detail:  "psalm background image differs from the reference",
		fixable: true,
		run:     func(d *sng.Document, fix bool) bool { return d.ValidateBackground(fix) },
	},
	{
		name:   "required-headers",
		detail: "required header missing",
		run: func(d *sng.Document, _ bool) bool {
			ok, _ := d.ValidateHeaders()
			return ok
		},
	},
	{
		name:   "bible-reference",
		detail: "Bible header does not parse as a reference",
		run:    func(d *sng.Document, _ bool) bool { return d.ValidateBibleReference() },
	},
}

func headerCapsOK(d *sng.Document, canonical string) bool {
	for _, key := range d.Header.Keys() {
		if key != canonical && strings.EqualFold(key, canonical) {
			return false
		}
	}
	return true
}

// Run processes every collection folder. With fix set, repaired files
// are written back in UTF-8 and, when configured, the collection is
// archived first.
func (r *Runner) Run(ctx context.Context, fix bool) (*Summary, error) {
	summary := &Summary{}

	if fix && r.cfg.Backup.Enabled {
		dir := r.cfg.Backup.Directory
		if dir == "" {
			dir = filepath.Join(r.cfg.Directory, "backup")
		}
		archive, err := backup.Create(r.cfg.Directory, dir)
		if err != nil {
			return nil, err
		}
		summary.BackupPath = archive
		logging.Info("collection archived", "archive", archive)
	}

	mode := "check"
	if fix {
		mode = "fix"
	}
	var run *report.Run
	if r.store != nil {
		var err error
		run, err = r.store.StartRun(ctx, mode)
		if err != nil {
			return nil, err
		}
		summary.RunID = run.ID
	}

	folders, err := r.folders()
	if err != nil {
		return nil, err
	}
	for _, folder := range folders {
		prefix := r.rules.Songbook.PrefixForFolder(folder)
		logging.Info("processing folder", "folder", folder, "prefix", prefix)

		files, err := listSongFiles(filepath.Join(r.cfg.Directory, folder))
		if err != nil {
			return nil, err
		}
		for _, name := range files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			result := r.ProcessFile(filepath.Join(folder, name), prefix, fix)
			r.tally(ctx, summary, result)
		}
	}

	if r.store != nil {
		if err := r.store.FinishRun(ctx, run, summary.Files); err != nil {
			return nil, err
		}
	}
	logging.Info("run finished", "mode", mode, "files", summary.Files,
		"findings", summary.Findings, "fixed", summary.Fixed, "failures", summary.Failures)
	return summary, nil
}

// ProcessFile runs all rules over one file. relPath is relative to the
// collection directory.
func (r *Runner) ProcessFile(relPath, prefix string, fix bool) FileResult {
	result := FileResult{Path: relPath}
	absPath := filepath.Join(r.cfg.Directory, relPath)

	doc, err := sng.ParseFile(absPath, prefix, r.rules)
	if err != nil {
		logging.Error("parse failed", "path", relPath, "error", err)
		result.Err = err
		result.Findings = append(result.Findings, report.Finding{
			File: relPath, Rule: "parse", Detail: err.Error(),
		})
		return result
	}
	result.Encoding = doc.Encoding.String()
	logging.FileEvent("parsed", relPath, "encoding", result.Encoding)

	if !doc.Header.Has(sng.HeaderEditor) {
		doc.Header.Set(sng.HeaderEditor, r.rules.EditorStamp)
		logging.Debug("added missing Editor header", "path", relPath)
	}
	before := strings.Join(doc.Lines(), "\n")

	for _, rl := range rules {
		if rl.run(doc, false) {
			continue
		}
		fixed := false
		if fix && rl.fixable {
			fixed = rl.run(doc, true)
		}
		logging.RuleViolation(relPath, rl.name, rl.detail, fixed)
		result.Findings = append(result.Findings, report.Finding{
			File: relPath, Rule: rl.name, Detail: rl.detail, Fixed: fixed,
		})
	}

	if fix {
		after := strings.Join(doc.Lines(), "\n")
		changed := after != before || !doc.Encoding.IsUTF8()
		switch {
		case changed && r.TargetDir != "":
			doc.ConvertToUTF8()
			target := filepath.Join(r.TargetDir, relPath)
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				result.Err = err
				return result
			}
			if err := doc.Write(target); err != nil {
				logging.Error("write failed", "path", target, "error", err)
				result.Err = err
				return result
			}
			result.Modified = true
			logging.FileEvent("written", target)
		case changed:
			doc.ConvertToUTF8()
			if err := doc.WriteBack(); err != nil {
				logging.Error("write failed", "path", relPath, "error", err)
				result.Err = err
				return result
			}
			result.Modified = true
			logging.FileEvent("written", relPath)
		case r.TargetDir != "":
			if err := fileutil.CopyFile(absPath, filepath.Join(r.TargetDir, relPath)); err != nil {
				result.Err = err
				return result
			}
		}
	}
	return result
}

func (r *Runner) tally(ctx context.Context, summary *Summary, result FileResult) {
	summary.Files++
	if result.Err != nil {
		summary.Failures++
	}
	summary.Findings += len(result.Findings)
	for _, f := range result.Findings {
		if f.Fixed {
			summary.Fixed++
		}
	}

	if r.store == nil {
		return
	}
	doc := []byte{}
	if data, err := os.ReadFile(filepath.Join(r.cfg.Directory, result.Path)); err == nil {
		doc = data
	}
	if err := r.store.RecordFile(ctx, summary.RunID, result.Path, doc, result.Encoding, result.Modified); err != nil {
		logging.Warn("recording file failed", "path", result.Path, "error", err)
	}
	for _, f := range result.Findings {
		if err := r.store.RecordFinding(ctx, summary.RunID, f); err != nil {
			logging.Warn("recording finding failed", "path", result.Path, "error", err)
		}
	}
}

// folders lists the collection subdirectories in sorted order.
func (r *Runner) folders() ([]string, error) {
	entries, err := os.ReadDir(r.cfg.Directory)
	if err != nil {
		return nil, errors.NewIO("list collection", r.cfg.Directory, err)
	}
	var folders []string
	for _, e := range entries {
		if e.IsDir() {
			folders = append(folders, e.Name())
		}
	}
	return folders, nil
}

func listSongFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.NewIO("list folder", dir, err)
	}
	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".sng") {
			files = append(files, e.Name())
		}
	}
	return files, nil
}
