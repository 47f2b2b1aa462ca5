package catalog

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/netcine/web-ui/models"
)

// LoadSeed reads a JSON array of titles. Titles without an id or a name are
// rejected, genres are normalized.
func LoadSeed(path string) ([]*models.Title, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read seed file %v", path)
	}
	return ParseSeed(b)
}

func ParseSeed(b []byte) ([]*models.Title, error) {
	var titles []*models.Title
	if err := json.Unmarshal(b, &titles); err != nil {
		return nil, errors.Wrap(err, "failed to decode seed")
	}
	seen := map[string]bool{}
	for i, t := range titles {
		if t == nil {
			return nil, errors.Errorf("seed entry %d is empty", i)
		}
		t.TitleID = strings.TrimSpace(t.TitleID)
		if t.TitleID == "" || strings.TrimSpace(t.Title) == "" {
			return nil, errors.Errorf("seed entry %d has no id or title", i)
		}
		if seen[t.TitleID] {
			return nil, errors.Errorf("duplicate seed id %v", t.TitleID)
		}
		seen[t.TitleID] = true
		if t.DownloadCount < 0 {
			t.DownloadCount = 0
		}
		if t.ShareCount < 0 {
			t.ShareCount = 0
		}
		t.Genres = NormalizeGenres(t.Genres)
	}
	return titles, nil
}
