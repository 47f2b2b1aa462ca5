package share

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	hc "github.com/netcine/web-ui/handlers/common"
	"github.com/netcine/web-ui/models"
	"github.com/netcine/web-ui/services/share"
	"github.com/netcine/web-ui/services/web"
)

type Handler struct {
	catalogs hc.Catalogs
	counters hc.Counters
	shares   *share.Registry
}

func RegisterHandler(r *gin.Engine, catalogs hc.Catalogs, counters hc.Counters, shares *share.Registry) {
	h := &Handler{
		catalogs: catalogs,
		counters: counters,
		shares:   shares,
	}
	r.POST("/share/:id/copy", h.copy)
	r.GET("/share/:id/intent/:channel", h.intent)
	r.POST("/share/close", h.close)
}

func (s *Handler) title(c *gin.Context) *models.Title {
	cat, err := s.catalogs.Catalog(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("failed to load catalog")
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return nil
	}
	t := cat.Get(c.Param("id"))
	if t == nil {
		c.AbortWithStatus(http.StatusNotFound)
		return nil
	}
	return t
}

func (s *Handler) copy(c *gin.Context) {
	t := s.title(c)
	if t == nil {
		return
	}
	back := hc.Modal("share", t.TitleID)
	w := s.shares.Open(web.VisitorID(c), t)
	if err := w.CopyLink(c.Request.Context(), web.NewClipboard(c)); err != nil {
		log.WithError(err).WithField("title_id", t.TitleID).Warn("failed to copy share link")
		web.RedirectWithError(c, back, err)
		return
	}
	c.Redirect(http.StatusFound, back)
}

// intent counts the share and sends the viewer to the social network.
func (s *Handler) intent(c *gin.Context) {
	ch := share.Channel(c.Param("channel"))
	if !ch.Valid() {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	t := s.title(c)
	if t == nil {
		return
	}
	u, _ := s.shares.Artifacts(t).Intent(ch)
	if err := s.counters.CountShare(c.Request.Context(), t.TitleID); err != nil {
		log.WithError(err).WithField("title_id", t.TitleID).Warn("failed to count share")
	}
	c.Redirect(http.StatusFound, u)
}

func (s *Handler) close(c *gin.Context) {
	s.shares.Close(web.VisitorID(c))
	c.Redirect(http.StatusFound, "/")
}
