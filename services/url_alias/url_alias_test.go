package url_alias

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/netcine/web-ui/models"
)

type mockAliasStore struct {
	byURL   map[string]*models.URLAlias
	creates int
}

func newMockAliasStore() *mockAliasStore {
	return &mockAliasStore{byURL: map[string]*models.URLAlias{}}
}

func (m *mockAliasStore) CreateOrGet(ctx context.Context, url string) (*models.URLAlias, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if a, ok := m.byURL[url]; ok {
		return a, nil
	}
	m.creates++
	a := &models.URLAlias{Code: "c" + string(rune('0'+m.creates)), URL: url}
	m.byURL[url] = a
	return a, nil
}

func (m *mockAliasStore) GetByCode(_ context.Context, code string) (*models.URLAlias, error) {
	for _, a := range m.byURL {
		if a.Code == code {
			return a, nil
		}
	}
	return nil, nil
}

func TestGet_ReusesCode(t *testing.T) {
	store := newMockAliasStore()
	ua := newUrlAlias(store)

	first, err := ua.Get(context.Background(), "/watch/abc")
	require.NoError(t, err)
	second, err := ua.Get(context.Background(), "/watch/abc")
	require.NoError(t, err)

	assert.Equal(t, "/s/c1", first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.creates)
}

func TestHandle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := newMockAliasStore()
	ua := newUrlAlias(store)
	_, err := ua.Get(context.Background(), "/watch/abc 1")
	require.NoError(t, err)

	r := gin.New()
	ua.RegisterHandler(r)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/s/c1", nil))
	assert.Equal(t, http.StatusMovedPermanently, w.Code)
	assert.Equal(t, "/watch/abc%201", w.Header().Get("Location"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/s/missing", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGet_IgnoresCallerCancellation(t *testing.T) {
	ua := newUrlAlias(newMockAliasStore())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	u, err := ua.Get(ctx, "/watch/abc")
	require.NoError(t, err)
	assert.Equal(t, "/s/c1", u)
}
