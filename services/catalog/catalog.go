package catalog

import (
	"sort"

	"github.com/netcine/web-ui/models"
)

// Catalog is an immutable snapshot of the title list. Every view is derived
// from the original order of the list and never mutates it.
type Catalog struct {
	titles []*models.Title
	byID   map[string]*models.Title
}

func New(titles []*models.Title) *Catalog {
	list := make([]*models.Title, 0, len(titles))
	byID := make(map[string]*models.Title, len(titles))
	for _, t := range titles {
		if t == nil {
			continue
		}
		list = append(list, t)
		if _, ok := byID[t.TitleID]; !ok {
			byID[t.TitleID] = t
		}
	}
	return &Catalog{
		titles: list,
		byID:   byID,
	}
}

// GenreRow is one genre bucket of the by-genre view.
type GenreRow struct {
	Genre  string
	Titles []*models.Title
}

func (s *Catalog) Len() int {
	return len(s.titles)
}

func (s *Catalog) All() []*models.Title {
	return s.copy()
}

func (s *Catalog) Get(id string) *models.Title {
	return s.byID[id]
}

// Featured returns the flagged titles; with none flagged it falls back to
// the first title.
func (s *Catalog) Featured() []*models.Title {
	var res []*models.Title
	for _, t := range s.titles {
		if t.IsFeatured {
			res = append(res, t)
		}
	}
	if len(res) == 0 && len(s.titles) > 0 {
		res = append(res, s.titles[0])
	}
	return res
}

func (s *Catalog) Hero() *models.Title {
	f := s.Featured()
	if len(f) == 0 {
		return nil
	}
	return f[0]
}

func (s *Catalog) Trending() []*models.Title {
	res := s.copy()
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].DownloadCount > res[j].DownloadCount
	})
	return res
}

func (s *Catalog) ByGenre() []GenreRow {
	var rows []GenreRow
	idx := map[string]int{}
	for _, t := range s.titles {
		for _, g := range t.Genres {
			k, ok := idx[g]
			if !ok {
				k = len(rows)
				idx[g] = k
				rows = append(rows, GenreRow{Genre: g})
			}
			rows[k].Titles = append(rows[k].Titles, t)
		}
	}
	return rows
}

func (s *Catalog) RecentlyAdded() []*models.Title {
	res := s.copy()
	sort.SliceStable(res, func(i, j int) bool {
		return newer(res[i], res[j])
	})
	return res
}

func (s *Catalog) copy() []*models.Title {
	res := make([]*models.Title, len(s.titles))
	copy(res, s.titles)
	return res
}

// newer orders by upload time, a missing timestamp counting as the epoch.
// Untimed titles never move ahead of timed ones, even pre-epoch ones.
func newer(a, b *models.Title) bool {
	switch {
	case a.UploadedAt == nil:
		return false
	case b.UploadedAt == nil:
		return true
	}
	return a.UploadedAt.After(*b.UploadedAt)
}
