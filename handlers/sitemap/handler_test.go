package sitemap

import (
	"context"
	"encoding/xml"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netcine/web-ui/models"
	"github.com/netcine/web-ui/services/catalog"
)

type fakeCatalogs struct {
	cat *catalog.Catalog
	err error
}

func (f *fakeCatalogs) Catalog(context.Context) (*catalog.Catalog, error) {
	return f.cat, f.err
}

func get(t *testing.T, h *Handler) URLSet {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/sitemap.xml", h.sitemap)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/sitemap.xml", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var set URLSet
	require.NoError(t, xml.Unmarshal(w.Body.Bytes(), &set))
	return set
}

func TestSitemap_ListsWatchPages(t *testing.T) {
	uploaded := time.Date(2026, 3, 4, 10, 0, 0, 0, time.UTC)
	cat := catalog.New([]*models.Title{
		{TitleID: "1", Title: "One", CreatedAt: time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)},
		{TitleID: "a b", Title: "Two", UploadedAt: &uploaded},
	})
	set := get(t, &Handler{baseURL: "https://netcine.app", catalogs: &fakeCatalogs{cat: cat}})

	require.Len(t, set.URLs, 3)
	assert.Equal(t, "https://netcine.app/", set.URLs[0].Loc)
	assert.Equal(t, "https://netcine.app/watch/1", set.URLs[1].Loc)
	assert.Equal(t, "2025-01-02", set.URLs[1].LastMod)
	assert.Equal(t, "https://netcine.app/watch/a%20b", set.URLs[2].Loc)
	assert.Equal(t, "2026-03-04", set.URLs[2].LastMod)
}

func TestSitemap_CatalogUnavailable(t *testing.T) {
	set := get(t, &Handler{baseURL: "https://netcine.app", catalogs: &fakeCatalogs{err: errors.New("down")}})
	require.Len(t, set.URLs, 1)
	assert.Equal(t, "https://netcine.app/", set.URLs[0].Loc)
}
