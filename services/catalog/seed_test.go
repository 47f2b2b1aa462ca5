package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeed(t *testing.T) {
	titles, err := ParseSeed([]byte(`[
		{"id": "1", "title": "One", "genre": ["sci-fi", "Sci-Fi"], "download_count": -5, "upload_date": "2024-01-15T00:00:00Z"},
		{"id": " 2 ", "title": "Two", "genre": []}
	]`))
	require.NoError(t, err)
	require.Len(t, titles, 2)

	assert.Equal(t, []string{"Sci-Fi"}, titles[0].Genres)
	assert.Equal(t, int64(0), titles[0].DownloadCount)
	require.NotNil(t, titles[0].UploadedAt)
	assert.Equal(t, "2", titles[1].TitleID)
	assert.Equal(t, []string{DefaultGenre}, titles[1].Genres)
	assert.Nil(t, titles[1].UploadedAt)
}

func TestParseSeed_Invalid(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"not json", `{`},
		{"missing id", `[{"title": "One"}]`},
		{"missing title", `[{"id": "1", "title": "  "}]`},
		{"duplicate id", `[{"id": "1", "title": "One"}, {"id": "1", "title": "Again"}]`},
		{"null entry", `[null]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSeed([]byte(tt.in))
			assert.Error(t, err)
		})
	}
}

func TestLoadSeed_BundledData(t *testing.T) {
	titles, err := LoadSeed(filepath.Join("..", "..", "data", "titles.json"))
	require.NoError(t, err)
	require.NotEmpty(t, titles)

	c := New(titles)
	assert.NotEmpty(t, c.Featured())
	assert.NotEmpty(t, c.ByGenre())
}

func TestLoadSeed_MissingFile(t *testing.T) {
	_, err := LoadSeed(filepath.Join(os.TempDir(), "netcine-missing-seed.json"))
	assert.Error(t, err)
}
