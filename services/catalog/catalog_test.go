package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netcine/web-ui/models"
)

func at(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func title(id string, opts ...func(*models.Title)) *models.Title {
	t := &models.Title{
		TitleID: id,
		Title:   "Title " + id,
		Genres:  []string{"Drama"},
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

func featured(t *models.Title) { t.IsFeatured = true }

func downloads(n int64) func(*models.Title) {
	return func(t *models.Title) { t.DownloadCount = n }
}

func genres(g ...string) func(*models.Title) {
	return func(t *models.Title) { t.Genres = g }
}

func uploaded(s string) func(*models.Title) {
	return func(t *models.Title) { t.UploadedAt = at(s) }
}

func ids(list []*models.Title) []string {
	var res []string
	for _, t := range list {
		res = append(res, t.TitleID)
	}
	return res
}

func TestCatalog_FeaturedAndTrendingExample(t *testing.T) {
	c := New([]*models.Title{
		title("A", featured, downloads(500)),
		title("B", downloads(900)),
	})

	assert.Equal(t, []string{"A"}, ids(c.Featured()))
	assert.Equal(t, []string{"B", "A"}, ids(c.Trending()))
	assert.Equal(t, "A", c.Hero().TitleID)
}

func TestCatalog_Featured(t *testing.T) {
	t.Run("keeps original order", func(t *testing.T) {
		c := New([]*models.Title{
			title("1"), title("2", featured), title("3"), title("4", featured),
		})
		assert.Equal(t, []string{"2", "4"}, ids(c.Featured()))
	})

	t.Run("falls back to first title", func(t *testing.T) {
		c := New([]*models.Title{title("1"), title("2")})
		assert.Equal(t, []string{"1"}, ids(c.Featured()))
	})

	t.Run("empty catalog", func(t *testing.T) {
		c := New(nil)
		assert.Empty(t, c.Featured())
		assert.Nil(t, c.Hero())
	})

	t.Run("never empty for non-empty catalogs", func(t *testing.T) {
		for n := 1; n < 6; n++ {
			var list []*models.Title
			for i := 0; i < n; i++ {
				list = append(list, title(string(rune('a'+i))))
			}
			assert.NotEmpty(t, New(list).Featured())
		}
	})
}

func TestCatalog_TrendingIsStable(t *testing.T) {
	c := New([]*models.Title{
		title("1", downloads(10)),
		title("2", downloads(30)),
		title("3", downloads(10)),
		title("4", downloads(30)),
		title("5", downloads(20)),
	})

	res := c.Trending()

	assert.Equal(t, []string{"2", "4", "5", "1", "3"}, ids(res))
	for i := 1; i < len(res); i++ {
		assert.GreaterOrEqual(t, res[i-1].DownloadCount, res[i].DownloadCount)
	}
}

func TestCatalog_ViewsDoNotMutateOriginalOrder(t *testing.T) {
	c := New([]*models.Title{
		title("1", downloads(1)),
		title("2", downloads(2), uploaded("2024-01-01T00:00:00Z")),
	})

	_ = c.Trending()
	_ = c.RecentlyAdded()

	assert.Equal(t, []string{"1", "2"}, ids(c.All()))
}

func TestCatalog_ByGenre(t *testing.T) {
	list := []*models.Title{
		title("1", genres("Sci-Fi", "Adventure")),
		title("2", genres("Romance", "Drama")),
		title("3", genres("Action", "Sci-Fi")),
		title("4", genres("Drama")),
	}
	rows := New(list).ByGenre()

	var order []string
	for _, r := range rows {
		order = append(order, r.Genre)
	}
	assert.Equal(t, []string{"Sci-Fi", "Adventure", "Romance", "Drama", "Action"}, order)
	assert.Equal(t, []string{"1", "3"}, ids(rows[0].Titles))
	assert.Equal(t, []string{"2", "4"}, ids(rows[3].Titles))

	t.Run("memberships match declared genres", func(t *testing.T) {
		total := 0
		declared := 0
		for _, tt := range list {
			declared += len(tt.Genres)
		}
		for _, r := range rows {
			for _, tt := range r.Titles {
				assert.Contains(t, tt.Genres, r.Genre)
			}
			total += len(r.Titles)
		}
		assert.Equal(t, declared, total)
	})
}

func TestCatalog_RecentlyAdded(t *testing.T) {
	c := New([]*models.Title{
		title("untimed-1"),
		title("old", uploaded("2023-12-28T00:00:00Z")),
		title("new", uploaded("2024-01-20T00:00:00Z")),
		title("untimed-2"),
		title("ancient", uploaded("1960-05-01T00:00:00Z")),
	})

	res := c.RecentlyAdded()

	assert.Equal(t, []string{"new", "old", "ancient", "untimed-1", "untimed-2"}, ids(res))
	seenUntimed := false
	for _, tt := range res {
		if tt.UploadedAt == nil {
			seenUntimed = true
			continue
		}
		require.False(t, seenUntimed, "timed title %v sorted after an untimed one", tt.TitleID)
	}
}

func TestCatalog_Get(t *testing.T) {
	c := New([]*models.Title{title("1"), nil, title("2")})

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, "2", c.Get("2").TitleID)
	assert.Nil(t, c.Get("missing"))
}
