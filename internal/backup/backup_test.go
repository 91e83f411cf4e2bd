package backup

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndList(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(srcDir, "EG Lieder"), 0755))
	files := map[string]string{
		"EG Lieder/085 Test.sng": "#Title=Test\n---\nZeile\n",
		"123 Anderes Lied.sng":   "#Title=Anderes Lied\n---\nZeile\n",
		"notizen.txt":            "wird nicht gesichert\n",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(srcDir, name), []byte(content), 0644))
	}

	archivePath, err := Create(srcDir, dstDir)
	require.NoError(t, err)
	assert.FileExists(t, archivePath)

	names, err := List(archivePath)
	require.NoError(t, err)
	sort.Strings(names)
	assert.Equal(t, []string{"123 Anderes Lied.sng", "EG Lieder/085 Test.sng"}, names)
}

func TestCreateEmptyCollection(t *testing.T) {
	archivePath, err := Create(t.TempDir(), t.TempDir())
	require.NoError(t, err)

	names, err := List(archivePath)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestListMissingArchive(t *testing.T) {
	_, err := List(filepath.Join(t.TempDir(), "missing.tar.xz"))
	assert.Error(t, err)
}
