package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kxddry/rag-qa/internal/domain"
)

func write(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoad_Pages(t *testing.T) {
	dir := t.TempDir()
	book := write(t, dir, "book.txt", "Aries page.\fTaurus page.\f \fGemini page.")

	docs, err := Load([]string{book})
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, book+"#p1", docs[0].SourceRef)
	assert.Equal(t, "Aries page.", docs[0].Text)
	assert.Equal(t, book+"#p2", docs[1].SourceRef)
	assert.Equal(t, book+"#p4", docs[2].SourceRef)
}

func TestLoad_GlobAndExtensions(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "a.txt", "one")
	write(t, dir, "b.MD", "two")
	write(t, dir, "c.pdf", "binary")

	docs, err := Load([]string{filepath.Join(dir, "*")})
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load([]string{filepath.Join(dir, "missing.txt")})
	assert.ErrorIs(t, err, domain.ErrIngestion)

	_, err = Load(nil)
	assert.ErrorIs(t, err, domain.ErrIngestion)

	empty := write(t, dir, "empty.txt", "  \n ")
	_, err = Load([]string{empty})
	assert.ErrorIs(t, err, domain.ErrIngestion)
}
