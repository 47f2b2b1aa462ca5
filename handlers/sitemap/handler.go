package sitemap

import (
	"encoding/xml"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	hc "github.com/netcine/web-ui/handlers/common"
	"github.com/netcine/web-ui/models"
	svc "github.com/netcine/web-ui/services/common"
)

type URL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod"`
	ChangeFreq string `xml:"changefreq"`
	Priority   string `xml:"priority"`
}

type URLSet struct {
	XMLName xml.Name `xml:"urlset"`
	Xmlns   string   `xml:"xmlns,attr"`
	URLs    []URL    `xml:"url"`
}

type Handler struct {
	baseURL  string
	catalogs hc.Catalogs
}

func RegisterHandler(c *cli.Context, r *gin.Engine, catalogs hc.Catalogs) {
	h := &Handler{
		baseURL:  svc.TrimDomain(c.String(svc.DomainFlag)),
		catalogs: catalogs,
	}
	r.GET("/sitemap.xml", h.sitemap)
}

func lastMod(t *models.Title) string {
	if t.UploadedAt != nil {
		return t.UploadedAt.Format(time.DateOnly)
	}
	if !t.CreatedAt.IsZero() {
		return t.CreatedAt.Format(time.DateOnly)
	}
	return time.Now().Format(time.DateOnly)
}

func (h *Handler) sitemap(c *gin.Context) {
	urls := []URL{
		{
			Loc:        h.baseURL + "/",
			LastMod:    time.Now().Format(time.DateOnly),
			ChangeFreq: "daily",
			Priority:   "1.0",
		},
	}

	cat, err := h.catalogs.Catalog(c.Request.Context())
	if err != nil {
		log.WithError(err).Warn("failed to load catalog for sitemap")
	}
	if cat != nil {
		for _, t := range cat.All() {
			urls = append(urls, URL{
				Loc:        h.baseURL + "/watch/" + svc.EscapePath(t.TitleID),
				LastMod:    lastMod(t),
				ChangeFreq: "weekly",
				Priority:   "0.8",
			})
		}
	}

	urlSet := URLSet{
		Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}

	c.Header("Content-Type", "application/xml")
	c.XML(http.StatusOK, urlSet)
}
