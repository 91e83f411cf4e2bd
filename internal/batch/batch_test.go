package batch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beamertools/sngward/internal/config"
	"github.com/beamertools/sngward/internal/report"
)

const fixableSong = "\ufeff" + `#Title=085 Mein Lied
#Author=Autor
#Melody=Autor
#(c)=2020 Verlag
#CCLI=1234567
#Songbook=EG 99
#ChurchSongID=EG 99
#VerseOrder=Verse 1,STOP
#Version=3
#Editor=handgepflegt
#BackgroundImage=blau.jpg
#LangCount=1
---
Verse 1
---
Zeile eins
Zeile zwei
`

const validSong = "\ufeff" + `#Title=Gut
#Author=Autor
#Melody=Autor
#(c)=2020 Verlag
#CCLI=7654321
#Songbook=EG 099
#ChurchSongID=EG 099
#VerseOrder=Intro,Verse 1,STOP
#Version=3
#Editor=handgepflegt
#BackgroundImage=blau.jpg
#LangCount=1
---
Intro
---
Verse 1
Zeile
`

func writeCollection(t *testing.T, files map[string]string) *config.Config {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	cfg := config.Default()
	cfg.Directory = dir
	return cfg
}

func findingRules(results []report.Finding) []string {
	var rules []string
	for _, f := range results {
		rules = append(rules, f.Rule)
	}
	return rules
}

func TestRunCheckReportsWithoutWriting(t *testing.T) {
	cfg := writeCollection(t, map[string]string{
		"EG Lieder/085 Mein Lied.sng": fixableSong,
	})
	runner := NewRunner(cfg, nil)

	result := runner.ProcessFile(filepath.Join("EG Lieder", "085 Mein Lied.sng"), "EG", false)
	require.NoError(t, result.Err)

	rules := findingRules(result.Findings)
	assert.Contains(t, rules, "title")
	assert.Contains(t, rules, "songbook")
	assert.Contains(t, rules, "intro-slide")
	assert.NotContains(t, rules, "verse-order-stop")
	assert.NotContains(t, rules, "required-headers")
	for _, f := range result.Findings {
		assert.False(t, f.Fixed)
	}
	assert.False(t, result.Modified)

	data, err := os.ReadFile(filepath.Join(cfg.Directory, "EG Lieder", "085 Mein Lied.sng"))
	require.NoError(t, err)
	assert.Equal(t, fixableSong, string(data))
}

func TestRunFixRepairsAndWritesBack(t *testing.T) {
	cfg := writeCollection(t, map[string]string{
		"EG Lieder/085 Mein Lied.sng": fixableSong,
	})
	runner := NewRunner(cfg, nil)

	summary, err := runner.Run(context.Background(), true)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Files)
	assert.Equal(t, 0, summary.Failures)
	assert.Positive(t, summary.Fixed)

	data, err := os.ReadFile(filepath.Join(cfg.Directory, "EG Lieder", "085 Mein Lied.sng"))
	require.NoError(t, err)
	text := string(data)
	assert.Contains(t, text, "#Title=Mein Lied\n")
	assert.Contains(t, text, "#Songbook=EG 085\n")
	assert.Contains(t, text, "#ChurchSongID=EG 085\n")
	assert.True(t, strings.Contains(text, "#VerseOrder=Intro,Verse 1,STOP\n"))

	result := runner.ProcessFile(filepath.Join("EG Lieder", "085 Mein Lied.sng"), "EG", false)
	require.NoError(t, result.Err)
	assert.Empty(t, result.Findings)
}

func TestRunRecordsParseFailure(t *testing.T) {
	cfg := writeCollection(t, map[string]string{
		"Sonstige Lieder/kaputt.sng": "#Title=Kaputt\nZeile vor der ersten Folie\n---\nText\n",
	})
	runner := NewRunner(cfg, nil)

	summary, err := runner.Run(context.Background(), false)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Files)
	assert.Equal(t, 1, summary.Failures)
	assert.Equal(t, 1, summary.Findings)
}

func TestRunStoresFindings(t *testing.T) {
	cfg := writeCollection(t, map[string]string{
		"EG Lieder/085 Mein Lied.sng": fixableSong,
	})
	store, err := report.Open(filepath.Join(t.TempDir(), "report.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	runner := NewRunner(cfg, store)
	summary, err := runner.Run(context.Background(), false)
	require.NoError(t, err)
	require.NotEmpty(t, summary.RunID)

	findings, err := store.Findings(context.Background(), summary.RunID)
	require.NoError(t, err)
	assert.Len(t, findings, summary.Findings)
	assert.Contains(t, findingRules(findings), "songbook")
}

func TestRunFixTargetDirLeavesSourceAlone(t *testing.T) {
	cfg := writeCollection(t, map[string]string{
		"EG Lieder/085 Mein Lied.sng": fixableSong,
		"EG Lieder/099 Gut.sng":       validSong,
	})
	runner := NewRunner(cfg, nil)
	runner.TargetDir = t.TempDir()

	_, err := runner.Run(context.Background(), true)
	require.NoError(t, err)

	src, err := os.ReadFile(filepath.Join(cfg.Directory, "EG Lieder", "085 Mein Lied.sng"))
	require.NoError(t, err)
	assert.Equal(t, fixableSong, string(src))

	fixed, err := os.ReadFile(filepath.Join(runner.TargetDir, "EG Lieder", "085 Mein Lied.sng"))
	require.NoError(t, err)
	assert.Contains(t, string(fixed), "#Title=Mein Lied\n")

	copied, err := os.ReadFile(filepath.Join(runner.TargetDir, "EG Lieder", "099 Gut.sng"))
	require.NoError(t, err)
	assert.Contains(t, string(copied), "#Title=Gut")
}

func TestRunFixCreatesBackup(t *testing.T) {
	cfg := writeCollection(t, map[string]string{
		"EG Lieder/085 Mein Lied.sng": fixableSong,
	})
	cfg.Backup.Enabled = true
	cfg.Backup.Directory = t.TempDir()

	runner := NewRunner(cfg, nil)
	summary, err := runner.Run(context.Background(), true)
	require.NoError(t, err)
	require.NotEmpty(t, summary.BackupPath)
	assert.FileExists(t, summary.BackupPath)
}
