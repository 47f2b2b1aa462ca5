package web

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	csrf "github.com/utrack/gin-csrf"

	"github.com/netcine/web-ui/services/common"
)

const sessionName = "netcine"

// RegisterSession installs the cookie session and csrf protection every
// page and form handler relies on. The same secret signs download links, so
// the default one is refused in release mode.
func RegisterSession(c *cli.Context, r *gin.Engine) error {
	secret := c.String(common.SessionSecretFlag)
	if secret == common.DefaultSessionSecret {
		if gin.Mode() == gin.ReleaseMode {
			return errors.Errorf("--%v must be changed from its default in release mode", common.SessionSecretFlag)
		}
		log.Warnf("using default --%v, set SESSION_SECRET before going live", common.SessionSecretFlag)
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))
	r.Use(csrf.Middleware(csrf.Options{
		Secret: secret,
		ErrorFunc: func(c *gin.Context) {
			c.String(http.StatusBadRequest, "CSRF token mismatch")
			c.Abort()
		},
	}))
	return nil
}
