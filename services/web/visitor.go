package web

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/netcine/web-ui/services/auth"
)

const visitorKey = "visitor-id"

// VisitorID identifies the viewer across requests: the user id when signed
// in, otherwise a random id kept in the cookie session.
func VisitorID(c *gin.Context) string {
	if s := auth.GetSessionFromContext(c).Session(); s != nil {
		return s.UserID
	}
	sess := sessions.Default(c)
	if id, ok := sess.Get(visitorKey).(string); ok && id != "" {
		return id
	}
	id := uuid.NewString()
	sess.Set(visitorKey, id)
	if err := sess.Save(); err != nil {
		log.WithError(err).Warn("failed to save visitor id")
	}
	return id
}
