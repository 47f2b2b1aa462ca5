package download

import (
	"context"
	"mime"
	"net/http"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	hc "github.com/netcine/web-ui/handlers/common"
	"github.com/netcine/web-ui/models"
	"github.com/netcine/web-ui/services/common"
	"github.com/netcine/web-ui/services/storage"
)

const (
	tokenTTLFlag = "download-token-ttl"
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.DurationFlag{
			Name:   tokenTTLFlag,
			Usage:  "lifetime of a signed download link",
			Value:  5 * time.Minute,
			EnvVar: "DOWNLOAD_TOKEN_TTL",
		},
	)
}

type Objects interface {
	Bucket() string
	DownloadObject(ctx context.Context, bucket string, path string) (*storage.Object, error)
}

type Claims struct {
	jwt.StandardClaims
	TitleID string `json:"title_id"`
}

type Handler struct {
	catalogs hc.Catalogs
	counters hc.Counters
	objects  Objects
	secret   []byte
	ttl      time.Duration
}

func RegisterHandler(c *cli.Context, r *gin.Engine, catalogs hc.Catalogs, counters hc.Counters, objects Objects) {
	h := &Handler{
		catalogs: catalogs,
		counters: counters,
		objects:  objects,
		secret:   []byte(c.String(common.SessionSecretFlag)),
		ttl:      c.Duration(tokenTTLFlag),
	}
	h.register(r)
}

func (s *Handler) register(r *gin.Engine) {
	r.GET("/download/:id", s.trigger)
	r.GET("/download/file/:token", s.file)
}

func (s *Handler) title(c *gin.Context, id string) *models.Title {
	cat, err := s.catalogs.Catalog(c.Request.Context())
	if err != nil {
		log.WithError(err).Error("failed to load catalog")
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return nil
	}
	t := cat.Get(id)
	if t == nil {
		c.AbortWithStatus(http.StatusNotFound)
		return nil
	}
	return t
}

func (s *Handler) makeToken(id string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(s.ttl).Unix(),
		},
		TitleID: id,
	})
	return token.SignedString(s.secret)
}

func (s *Handler) parseToken(tokenString string) (*Claims, error) {
	cl := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, cl, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	return cl, nil
}

// trigger counts the download and hands out a short-lived signed link.
func (s *Handler) trigger(c *gin.Context) {
	t := s.title(c, c.Param("id"))
	if t == nil {
		return
	}
	token, err := s.makeToken(t.TitleID)
	if err != nil {
		log.WithError(err).Error("failed to sign download token")
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	if err := s.counters.CountDownload(c.Request.Context(), t.TitleID); err != nil {
		log.WithError(err).WithField("title_id", t.TitleID).Warn("failed to count download")
	}
	c.Redirect(http.StatusFound, "/download/file/"+token)
}

func (s *Handler) file(c *gin.Context) {
	cl, err := s.parseToken(c.Param("token"))
	if err != nil {
		log.WithError(err).Warn("bad download token")
		c.AbortWithStatus(http.StatusForbidden)
		return
	}
	t := s.title(c, cl.TitleID)
	if t == nil {
		return
	}
	if t.VideoPath == "" {
		if t.VideoURL != "" {
			c.Redirect(http.StatusFound, t.VideoURL)
			return
		}
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	obj, err := s.objects.DownloadObject(c.Request.Context(), s.objects.Bucket(), t.VideoPath)
	if errors.Is(err, storage.ErrNotFound) {
		c.AbortWithStatus(http.StatusNotFound)
		return
	}
	if err != nil {
		log.WithError(err).WithField("title_id", t.TitleID).Error("failed to download video")
		_ = c.AbortWithError(http.StatusBadGateway, err)
		return
	}
	defer func() {
		_ = obj.Close()
	}()
	ct := obj.ContentType
	if ct == "" {
		ct = "video/mp4"
	}
	c.DataFromReader(http.StatusOK, obj.Size, ct, obj, map[string]string{
		"Content-Disposition": Disposition(t.Title),
	})
}

// Disposition names the saved file after the title.
func Disposition(title string) string {
	return mime.FormatMediaType("attachment", map[string]string{
		"filename": title + ".mp4",
	})
}
