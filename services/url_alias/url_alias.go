package url_alias

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-pg/pg/v10"
	"github.com/pkg/errors"
	cs "github.com/webtor-io/common-services"
	"github.com/webtor-io/lazymap"

	"github.com/netcine/web-ui/models"
	"github.com/netcine/web-ui/services/common"
)

type aliasStore interface {
	CreateOrGet(ctx context.Context, url string) (*models.URLAlias, error)
	GetByCode(ctx context.Context, code string) (*models.URLAlias, error)
}

type pgAliasStore struct {
	pg *cs.PG
}

func (s *pgAliasStore) db() (*pg.DB, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errors.New("db not initialized")
	}
	return db, nil
}

func (s *pgAliasStore) CreateOrGet(ctx context.Context, url string) (*models.URLAlias, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}
	return models.CreateOrGetURLAlias(ctx, db, url)
}

func (s *pgAliasStore) GetByCode(ctx context.Context, code string) (*models.URLAlias, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}
	return models.GetURLAliasByCode(ctx, db, code)
}

// UrlAlias mints short /s/<code> links for local paths such as /watch/<id>.
type UrlAlias struct {
	store aliasStore
	urls  lazymap.LazyMap[string]
	codes lazymap.LazyMap[*models.URLAlias]
}

func New(pg *cs.PG) *UrlAlias {
	return newUrlAlias(&pgAliasStore{pg: pg})
}

func newUrlAlias(store aliasStore) *UrlAlias {
	return &UrlAlias{
		store: store,
		urls: lazymap.New[string](&lazymap.Config{
			Expire:      10 * time.Minute,
			ErrorExpire: 10 * time.Second,
		}),
		codes: lazymap.New[*models.URLAlias](&lazymap.Config{
			Expire:      10 * time.Minute,
			ErrorExpire: 10 * time.Second,
		}),
	}
}

// Get returns the short path of url.
func (s *UrlAlias) Get(ctx context.Context, url string) (string, error) {
	ctx = context.WithoutCancel(ctx)
	code, err := s.urls.Get(url, func() (string, error) {
		au, err := s.store.CreateOrGet(ctx, url)
		if err != nil {
			return "", err
		}
		return au.Code, nil
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("/s/%v", code), nil
}

func (s *UrlAlias) Resolve(ctx context.Context, code string) (*models.URLAlias, error) {
	ctx = context.WithoutCancel(ctx)
	return s.codes.Get(code, func() (*models.URLAlias, error) {
		return s.store.GetByCode(ctx, code)
	})
}

func (s *UrlAlias) RegisterHandler(r *gin.Engine) {
	gr := r.Group("/s")
	gr.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodHead},
	}))
	gr.GET("/:code", s.handle)
	gr.HEAD("/:code", s.handle)
}

func (s *UrlAlias) handle(c *gin.Context) {
	code := strings.TrimSpace(c.Param("code"))
	if code == "" {
		c.Status(http.StatusBadRequest)
		return
	}
	u, err := s.Resolve(c.Request.Context(), code)
	if err != nil {
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	if u == nil {
		c.Status(http.StatusNotFound)
		return
	}
	c.Redirect(http.StatusMovedPermanently, common.EscapePath(u.URL))
}
