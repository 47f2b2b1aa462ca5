package web

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	csrf "github.com/utrack/gin-csrf"

	"github.com/netcine/web-ui/services/auth"
	"github.com/netcine/web-ui/services/common"
	"github.com/netcine/web-ui/services/session"
)

const csrfSecretKey = "csrfSecret"

type Context struct {
	Data    any
	CSRF    string
	Session *session.Session
	Path    string
	Err     string
	Flash   string
	c       *gin.Context
}

func NewContext(c *gin.Context) *Context {
	ctx := &Context{
		Session: auth.GetSessionFromContext(c).Session(),
		Path:    c.Request.URL.Path,
		c:       c,
	}
	if _, ok := c.Get(csrfSecretKey); ok {
		ctx.CSRF = csrf.GetToken(c)
	}
	if _, ok := c.Get(sessions.DefaultKey); ok {
		ctx.Flash = popFlash(c)
	}
	return ctx
}

func (s *Context) WithData(d any) *Context {
	s.Data = d
	return s
}

// WithErr stores the viewer facing text of err.
func (s *Context) WithErr(err error) *Context {
	s.Err = common.UserMessage(err)
	return s
}

func (s *Context) GinContext() *gin.Context {
	return s.c
}

func (s *Context) SignedIn() bool {
	return s.Session != nil
}

const flashKey = "flash"

// RedirectWithError keeps the viewer facing text of err for the next page
// and redirects there.
func RedirectWithError(c *gin.Context, location string, err error) {
	sess := sessions.Default(c)
	sess.AddFlash(common.UserMessage(err), flashKey)
	_ = sess.Save()
	c.Redirect(http.StatusFound, location)
}

func popFlash(c *gin.Context) string {
	sess := sessions.Default(c)
	fl := sess.Flashes(flashKey)
	if len(fl) == 0 {
		return ""
	}
	_ = sess.Save()
	if s, ok := fl[0].(string); ok {
		return s
	}
	return ""
}
