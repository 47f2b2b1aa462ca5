package view

import (
	"github.com/netcine/web-ui/models"
	"github.com/netcine/web-ui/services/catalog"
	"github.com/netcine/web-ui/services/session"
)

type Row struct {
	Title  string
	Titles []*models.Title
}

type Page struct {
	Hero    *models.Title
	Rows    []Row
	Session *session.Session
	Modal   ModalState
}

func (s *Page) CanUpload() bool {
	return s.Session != nil
}

func (s *Page) Empty() bool {
	return s.Hero == nil
}

// Compose derives everything the catalog page renders. Rows keep their fixed
// order: featured, trending, one row per genre, recently added.
func Compose(c *catalog.Catalog, s *session.Session, m ModalState) *Page {
	p := &Page{
		Session: s,
		Modal:   m,
	}
	if c == nil || c.Len() == 0 {
		return p
	}
	p.Hero = c.Hero()
	p.Rows = append(p.Rows,
		Row{Title: "Featured Content", Titles: c.Featured()},
		Row{Title: "Trending Now", Titles: c.Trending()},
	)
	for _, g := range c.ByGenre() {
		p.Rows = append(p.Rows, Row{Title: g.Genre, Titles: g.Titles})
	}
	p.Rows = append(p.Rows, Row{Title: "Recently Added", Titles: c.RecentlyAdded()})
	return p
}
