package pdfsvc

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/bulletin/core"
	"github.com/trezcool/bulletin/core/bulletin"
	"github.com/trezcool/bulletin/core/class"
	"github.com/trezcool/bulletin/core/grade"
)

var school = core.SchoolConfig{
	Name:     "Michel ALLAIRE",
	City:     "Segou",
	BP:       "580",
	Tel:      "21 32 03 17",
	Email:    "lycee@test.ml",
	Country:  "République du Mali",
	Motto:    "Un Peuple-Un But-Une Foi",
	Ministry: "Ministère de l'Education Nationale",
}

func testBulletin() bulletin.Bulletin {
	entries := []grade.Entry{
		{Subject: "MATHS", ClassAvg: 16.5, Composition: 16.5, Coef: 4},
		{Subject: "PHYSIQUE", ClassAvg: 16.5, Composition: 16.5, Coef: 2},
	}
	return bulletin.DefaultSettings().Compose(bulletin.Input{
		Student:     bulletin.Student{ID: "s1", Username: "awa", ClassID: "c1", ClassName: "12e SE"},
		Period:      "1ère Période",
		Entries:     entries,
		Template:    &class.Template{Part1: []string{"MATHS"}, Part2: []string{"PHYSIQUE"}},
		Classmates:  []bulletin.StudentEntries{{StudentID: "s1", Entries: entries}},
		GeneratedAt: time.Date(2025, time.June, 30, 8, 0, 0, 0, time.UTC),
	})
}

func TestRenderer_Render(t *testing.T) {
	b := testBulletin()

	t.Run("uncompressed content", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, NewRenderer(school, WithoutCompression()).Render(b, &buf))

		out := buf.String()
		assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
		for _, want := range []string{
			"AWA", "12e SE", "MATHS", "PHYSIQUE",
			"Total Partiel", "Moy.Partielle", "Total Global",
			"Rang: 1er/", "Segou, le 30/06/2025", "Moy: 16,50 /20",
			"Le Proviseur", "Tableau dExcellence", "Signature du Parent",
		} {
			assert.Contains(t, out, want)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		r := NewRenderer(school)
		var a, c bytes.Buffer
		require.NoError(t, r.Render(b, &a))
		require.NoError(t, r.Render(b, &c))
		assert.Equal(t, a.Bytes(), c.Bytes())
	})

	t.Run("bad stamp image", func(t *testing.T) {
		var buf bytes.Buffer
		err := NewRenderer(school, WithStamp([]byte("not an image"), "png")).Render(b, &buf)
		assert.Error(t, err)
	})
}

func TestLoadStamp(t *testing.T) {
	dir := t.TempDir()

	_, _, err := LoadStamp(filepath.Join(dir, "stamp.gif"))
	assert.Error(t, err)

	_, _, err = LoadStamp(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)

	path := filepath.Join(dir, "stamp.jpeg")
	require.NoError(t, os.WriteFile(path, []byte{0xff, 0xd8}, 0o600))
	img, typ, err := LoadStamp(path)
	require.NoError(t, err)
	assert.Equal(t, "JPG", typ)
	assert.Equal(t, []byte{0xff, 0xd8}, img)
}

func TestWriteFile(t *testing.T) {
	b := testBulletin()

	t.Run("ok", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "report_card_awa.pdf")
		require.NoError(t, WriteFile(path, NewRenderer(school), b))

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

		files, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Len(t, files, 1)
	})

	t.Run("no partial file on failure", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "report_card_awa.pdf")
		err := WriteFile(path, NewRenderer(school, WithStamp([]byte("garbage"), "PNG")), b)
		require.Error(t, err)
		assert.True(t, bulletin.IsRenderFailure(err))

		files, err := os.ReadDir(dir)
		require.NoError(t, err)
		assert.Empty(t, files)
	})
}
