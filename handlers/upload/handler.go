package upload

import (
	"net/http"

	"github.com/gin-gonic/gin"

	hc "github.com/netcine/web-ui/handlers/common"
	"github.com/netcine/web-ui/services/auth"
	"github.com/netcine/web-ui/services/upload"
)

type Handler struct {
	uploads *upload.Registry
}

func RegisterHandler(r *gin.Engine, uploads *upload.Registry) {
	h := &Handler{
		uploads: uploads,
	}
	gr := r.Group("/upload")
	gr.Use(auth.HasAuth)
	gr.POST("", h.submit)
	gr.GET("/status", h.status)
	gr.GET("/ws", h.ws)
	gr.POST("/retry", h.retry)
	gr.POST("/close", h.close)
}

func (s *Handler) workflow(c *gin.Context) *upload.Workflow {
	o, _ := hc.Owner(c)
	return s.uploads.Open(o)
}

func (s *Handler) status(c *gin.Context) {
	o, _ := hc.Owner(c)
	w := s.uploads.Get(o.UserID)
	if w == nil {
		c.JSON(http.StatusOK, upload.Progress{Phase: upload.PhaseIdle})
		return
	}
	c.JSON(http.StatusOK, w.Progress())
}

func (s *Handler) retry(c *gin.Context) {
	s.workflow(c).Retry()
	c.Redirect(http.StatusFound, hc.Modal("upload", ""))
}

func (s *Handler) close(c *gin.Context) {
	o, _ := hc.Owner(c)
	s.uploads.Close(o.UserID)
	c.Redirect(http.StatusFound, "/")
}
