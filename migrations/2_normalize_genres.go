package migrations

import (
	"github.com/go-pg/migrations/v8"
	log "github.com/sirupsen/logrus"

	"github.com/netcine/web-ui/models"
	"github.com/netcine/web-ui/services/catalog"
)

// NormalizeGenres rewrites genre lists of already stored titles to the
// canonical form used by the catalog views.
func NormalizeGenres(col *migrations.Collection) {
	col.MustRegisterTx(func(db migrations.DB) error {
		var titles []*models.Title
		err := db.Model(&titles).
			Column("title_id", "genres").
			Select()
		if err != nil {
			return err
		}
		for _, t := range titles {
			g := catalog.NormalizeGenres(t.Genres)
			if equal(g, t.Genres) {
				continue
			}
			log.Infof("normalizing genres for title %s: %v -> %v", t.TitleID, t.Genres, g)
			t.Genres = g
			_, err = db.Model(t).WherePK().Column("genres").Update()
			if err != nil {
				return err
			}
		}
		return nil
	}, func(db migrations.DB) error {
		return nil
	})
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
