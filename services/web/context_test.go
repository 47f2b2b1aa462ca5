package web

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/netcine/web-ui/services/common"
)

func TestRedirectWithError_FlashShownOnce(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("netcine", cookie.NewStore([]byte("secret"))))
	r.GET("/fail", func(c *gin.Context) {
		RedirectWithError(c, "/", common.NewValidationError("title", "Please enter a title."))
	})
	r.GET("/", func(c *gin.Context) {
		ctx := NewContext(c)
		c.String(http.StatusOK, ctx.Flash)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/fail", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	cookies := w.Result().Cookies()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "Please enter a title.", w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range w.Result().Cookies() {
		req.AddCookie(ck)
	}
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Empty(t, w.Body.String())
}

func TestContext_WithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/watch/1", nil)

	ctx := NewContext(c).WithErr(errors.New("db down")).WithData(42)
	assert.False(t, ctx.SignedIn())
	assert.Empty(t, ctx.CSRF)
	assert.Equal(t, "/watch/1", ctx.Path)
	assert.Equal(t, "Something went wrong. Please try again.", ctx.Err)
	assert.Equal(t, 42, ctx.Data)
	assert.Same(t, c, ctx.GinContext())
}
