package index

import (
	"context"
	htmltemplate "html/template"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netcine/web-ui/models"
	"github.com/netcine/web-ui/services/catalog"
	"github.com/netcine/web-ui/services/share"
	"github.com/netcine/web-ui/services/template"
	"github.com/netcine/web-ui/services/upload"
	"github.com/netcine/web-ui/services/view"
	"github.com/netcine/web-ui/services/web"
)

type fakeCatalogs struct {
	cat *catalog.Catalog
}

func (f *fakeCatalogs) Catalog(context.Context) (*catalog.Catalog, error) {
	return f.cat, nil
}

type fakeShortener struct{}

func (fakeShortener) Get(_ context.Context, url string) (string, error) {
	return "/s/abc123", nil
}

func setup(t *testing.T, titles []*models.Title) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	re := multitemplate.NewRenderer()
	tm := template.NewManager[*web.Context](re).
		WithDir("../../templates").
		WithHelper(view.NewHelper()).
		WithFuncs(htmltemplate.FuncMap{
			"domain":  func() string { return "https://netcine.app" },
			"appName": func() string { return "NETCINE" },
			"year":    func() int { return 2026 },
		})
	uploads := upload.NewRegistryWithConfig(upload.Config{}, t.TempDir())
	t.Cleanup(uploads.CloseAll)

	r := gin.New()
	r.HTMLRender = re
	r.Use(sessions.Sessions("netcine", cookie.NewStore([]byte("secret"))))
	RegisterHandler(r, tm, &fakeCatalogs{cat: catalog.New(titles)}, uploads,
		share.NewRegistryWithClock("https://netcine.app", "NETCINE", nil), fakeShortener{})
	return r
}

func titles() []*models.Title {
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return []*models.Title{
		{TitleID: "1", Title: "Blue Planet", Description: "Oceans.", Genres: []string{"Documentary"}, IsFeatured: true, DownloadCount: 15420, Duration: 95},
		{TitleID: "2", Title: "Night Run", Description: "Chase.", Genres: []string{"Action", "Thriller"}, UploadedAt: &at},
	}
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestIndex_RendersRows(t *testing.T) {
	r := setup(t, titles())
	w := get(r, "/")

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	for _, s := range []string{"Featured Content", "Trending Now", "Documentary", "Action", "Thriller", "Recently Added", "15.4k downloads", "15,420 downloads", "1 hour 35 minutes"} {
		assert.Contains(t, body, s)
	}
	assert.NotContains(t, body, "<dialog")
}

func TestIndex_Empty(t *testing.T) {
	r := setup(t, nil)
	w := get(r, "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "No titles yet")
}

func TestIndex_UploadAsGuestShowsSignIn(t *testing.T) {
	r := setup(t, titles())
	w := get(r, "/?modal=upload")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `action="/auth/signin"`)
	assert.NotContains(t, w.Body.String(), `action="/upload"`)
}

func TestIndex_ShareModal(t *testing.T) {
	r := setup(t, titles())
	w := get(r, "/?modal=share&title=1")
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "https://netcine.app/watch/1")
	assert.Contains(t, body, "https://netcine.app/s/abc123")
	assert.Contains(t, body, "/share/1/intent/twitter")

	w = get(r, "/?modal=share&title=404")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "<dialog")
}

func TestWatch(t *testing.T) {
	r := setup(t, titles())
	w := get(r, "/watch/2")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Night Run")

	w = get(r, "/watch/404")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
