package index

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	hc "github.com/netcine/web-ui/handlers/common"
	"github.com/netcine/web-ui/models"
	"github.com/netcine/web-ui/services/auth"
	"github.com/netcine/web-ui/services/share"
	"github.com/netcine/web-ui/services/template"
	"github.com/netcine/web-ui/services/upload"
	"github.com/netcine/web-ui/services/view"
	"github.com/netcine/web-ui/services/web"
)

type Shortener interface {
	Get(ctx context.Context, url string) (string, error)
}

type AuthData struct {
	SignUp bool
}

type UploadData struct {
	Progress upload.Progress
	Form     upload.Form
	Files    upload.Files
}

type ShareData struct {
	Title     *models.Title
	Artifacts *share.Artifacts
	Copied    bool
	Clipboard string
	ShortURL  string
}

type Data struct {
	Page   *view.Page
	Auth   *AuthData
	Upload *UploadData
	Share  *ShareData
}

type WatchData struct {
	Title     *models.Title
	Artifacts *share.Artifacts
}

type Handler struct {
	tb       template.Builder[*web.Context]
	catalogs hc.Catalogs
	uploads  *upload.Registry
	shares   *share.Registry
	short    Shortener
}

func RegisterHandler(r *gin.Engine, tm *template.Manager[*web.Context], catalogs hc.Catalogs, uploads *upload.Registry, shares *share.Registry, short Shortener) {
	h := &Handler{
		tb:       tm.MustRegisterViews("*").WithLayout("main"),
		catalogs: catalogs,
		uploads:  uploads,
		shares:   shares,
		short:    short,
	}
	r.GET("/", h.index)
	r.GET("/watch/:id", h.watch)
}

func (s *Handler) index(c *gin.Context) {
	ctx := c.Request.Context()
	cat, err := s.catalogs.Catalog(ctx)
	if err != nil {
		log.WithError(err).Error("failed to load catalog")
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	sess := auth.GetSessionFromContext(c).Session()
	m := view.ParseModal(c.Query("modal"), c.Query("title"), cat, sess)
	d := &Data{
		Page: view.Compose(cat, sess, m),
	}
	switch {
	case m.IsAuth():
		d.Auth = &AuthData{SignUp: c.Query("mode") == "signup"}
	case m.IsUpload():
		d.Upload = s.uploadData(c)
	case m.IsShare():
		d.Share = s.shareData(c, m.Title())
	}
	s.tb.Build("index").HTML(http.StatusOK, web.NewContext(c).WithData(d))
}

func (s *Handler) uploadData(c *gin.Context) *UploadData {
	o, ok := hc.Owner(c)
	if !ok {
		return nil
	}
	w := s.uploads.Open(o)
	return &UploadData{
		Progress: w.Progress(),
		Form:     w.Form(),
		Files:    w.Files(),
	}
}

func (s *Handler) shareData(c *gin.Context, t *models.Title) *ShareData {
	w := s.shares.Open(web.VisitorID(c), t)
	d := &ShareData{
		Title:     t,
		Artifacts: w.Artifacts(),
		Copied:    w.Copied(),
		Clipboard: web.NewClipboard(c).Pop(),
	}
	if s.short != nil {
		u, err := s.short.Get(c.Request.Context(), "/watch/"+t.TitleID)
		if err != nil {
			log.WithError(err).WithField("title_id", t.TitleID).Warn("failed to make short link")
		} else {
			d.ShortURL = u
		}
	}
	return d
}

func (s *Handler) watch(c *gin.Context) {
	cat, err := s.catalogs.Catalog(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("failed to load catalog")
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	t := cat.Get(c.Param("id"))
	if t == nil {
		c.Status(http.StatusNotFound)
		return
	}
	s.tb.Build("watch").HTML(http.StatusOK, web.NewContext(c).WithData(&WatchData{
		Title:     t,
		Artifacts: s.shares.Artifacts(t),
	}))
}
