package download

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netcine/web-ui/models"
	"github.com/netcine/web-ui/services/catalog"
	"github.com/netcine/web-ui/services/common"
	"github.com/netcine/web-ui/services/storage"
)

type fakeCatalogs struct {
	cat *catalog.Catalog
}

func (f *fakeCatalogs) Catalog(context.Context) (*catalog.Catalog, error) {
	return f.cat, nil
}

type fakeCounters struct {
	downloads []string
}

func (f *fakeCounters) CountDownload(_ context.Context, id string) error {
	f.downloads = append(f.downloads, id)
	return nil
}

func (f *fakeCounters) CountShare(context.Context, string) error {
	return nil
}

type fakeObjects struct {
	data map[string]string
}

func (f *fakeObjects) Bucket() string {
	return "media"
}

func (f *fakeObjects) DownloadObject(_ context.Context, bucket string, path string) (*storage.Object, error) {
	d, ok := f.data[bucket+"/"+path]
	if !ok {
		return nil, common.NewStorageError(storage.ErrNotFound, "download", path)
	}
	return &storage.Object{
		ReadCloser: io.NopCloser(strings.NewReader(d)),
		Size:       int64(len(d)),
	}, nil
}

func setup(ttl time.Duration) (*gin.Engine, *fakeCounters) {
	gin.SetMode(gin.TestMode)
	cat := catalog.New([]*models.Title{
		{TitleID: "1", Title: "My Movie", VideoPath: "videos/x/movie.mp4"},
		{TitleID: "2", Title: "Remote", VideoURL: "https://cdn.example.com/remote.mp4"},
		{TitleID: "3", Title: "Gone", VideoPath: "videos/y/gone.mp4"},
	})
	counters := &fakeCounters{}
	h := &Handler{
		catalogs: &fakeCatalogs{cat: cat},
		counters: counters,
		objects:  &fakeObjects{data: map[string]string{"media/videos/x/movie.mp4": "MOVIE"}},
		secret:   []byte("secret"),
		ttl:      ttl,
	}
	r := gin.New()
	h.register(r)
	return r, counters
}

func follow(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	require.Equal(t, http.StatusFound, w.Code)
	loc := w.Header().Get("Location")
	require.True(t, strings.HasPrefix(loc, "/download/file/"))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, loc, nil))
	return w
}

func TestDownload_Streams(t *testing.T) {
	r, counters := setup(time.Minute)
	w := follow(t, r, "/download/1")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MOVIE", w.Body.String())
	assert.Equal(t, `attachment; filename="My Movie.mp4"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "video/mp4", w.Header().Get("Content-Type"))
	assert.Equal(t, []string{"1"}, counters.downloads)
}

func TestDownload_RemoteVideo(t *testing.T) {
	r, _ := setup(time.Minute)
	w := follow(t, r, "/download/2")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "https://cdn.example.com/remote.mp4", w.Header().Get("Location"))
}

func TestDownload_MissingObject(t *testing.T) {
	r, _ := setup(time.Minute)
	w := follow(t, r, "/download/3")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDownload_UnknownTitle(t *testing.T) {
	r, counters := setup(time.Minute)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/download/404", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Empty(t, counters.downloads)
}

func TestDownload_BadOrExpiredToken(t *testing.T) {
	r, _ := setup(-time.Minute)
	w := follow(t, r, "/download/1")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/download/file/garbage", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)
}
