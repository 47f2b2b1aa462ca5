package auth

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	hc "github.com/netcine/web-ui/handlers/common"
	"github.com/netcine/web-ui/services/auth"
	"github.com/netcine/web-ui/services/web"
)

// Welcomer greets a freshly signed up user.
type Welcomer interface {
	SendWelcome(ctx context.Context, to string, name string) error
}

type Handler struct {
	welcome Welcomer
}

func RegisterHandler(r *gin.Engine, welcome Welcomer) {
	h := &Handler{
		welcome: welcome,
	}
	r.POST("/auth/signin", h.signIn)
	r.POST("/auth/signup", h.signUp)
	r.POST("/auth/signout", h.signOut)
}

func (s *Handler) signIn(c *gin.Context) {
	sc := auth.GetSessionFromContext(c)
	_, err := sc.SignIn(c.Request.Context(), c.PostForm("email"), c.PostForm("password"))
	if err != nil {
		log.WithError(err).Warn("sign in rejected")
		web.RedirectWithError(c, hc.Modal("auth", ""), err)
		return
	}
	c.Redirect(http.StatusFound, returnURL(c))
}

func (s *Handler) signUp(c *gin.Context) {
	sc := auth.GetSessionFromContext(c)
	sess, err := sc.SignUp(c.Request.Context(), c.PostForm("email"), c.PostForm("password"), c.PostForm("name"))
	if err != nil {
		log.WithError(err).Warn("sign up rejected")
		web.RedirectWithError(c, hc.Modal("auth", "")+"&mode=signup", err)
		return
	}
	if s.welcome != nil {
		go func(email string, name string) {
			if err := s.welcome.SendWelcome(context.Background(), email, name); err != nil {
				log.WithError(err).WithField("email", email).Warn("failed to send welcome notification")
			}
		}(sess.Email, sess.Name)
	}
	c.Redirect(http.StatusFound, returnURL(c))
}

func (s *Handler) signOut(c *gin.Context) {
	auth.GetSessionFromContext(c).SignOut(c.Request.Context())
	c.Redirect(http.StatusFound, "/")
}

// returnURL only follows local paths. Backslashes are rejected since
// browsers read them as slashes.
func returnURL(c *gin.Context) string {
	raw := c.PostForm("return-url")
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.Contains(raw, `\`) {
		return "/"
	}
	u, err := url.Parse(raw)
	if err != nil || u.Scheme != "" || u.Host != "" || u.Opaque != "" {
		return "/"
	}
	return raw
}
