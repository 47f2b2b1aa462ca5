package web

import (
	"context"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
)

const clipboardKey = "clipboard"

// Clipboard hands text over to the next rendered page, which copies it on
// the viewer's side.
type Clipboard struct {
	c *gin.Context
}

func NewClipboard(c *gin.Context) *Clipboard {
	return &Clipboard{c: c}
}

func (s *Clipboard) Copy(_ context.Context, text string) error {
	sess := sessions.Default(s.c)
	sess.Set(clipboardKey, text)
	if err := sess.Save(); err != nil {
		return errors.Wrap(err, "failed to keep copied text")
	}
	return nil
}

// Pop returns the pending copied text once.
func (s *Clipboard) Pop() string {
	sess := sessions.Default(s.c)
	text, ok := sess.Get(clipboardKey).(string)
	if !ok {
		return ""
	}
	sess.Delete(clipboardKey)
	_ = sess.Save()
	return text
}
