package upload

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/netcine/web-ui/services/upload"
)

const writeTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// latest keeps only the newest progress; the modal never needs the ones
// in between.
type latest struct {
	mu     sync.Mutex
	p      upload.Progress
	signal chan struct{}
}

func newLatest(p upload.Progress) *latest {
	l := &latest{p: p, signal: make(chan struct{}, 1)}
	l.signal <- struct{}{}
	return l
}

func (s *latest) set(p upload.Progress) {
	s.mu.Lock()
	s.p = p
	s.mu.Unlock()
	select {
	case s.signal <- struct{}{}:
	default:
	}
}

func (s *latest) get() upload.Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p
}

// ws streams the workflow progress to the upload modal.
func (s *Handler) ws(c *gin.Context) {
	w := s.workflow(c)
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.WithError(err).Warn("failed to upgrade upload progress connection")
		return
	}
	defer func() {
		_ = conn.Close()
	}()

	l := newLatest(w.Progress())
	unsubscribe := w.Subscribe(l.set)
	defer unsubscribe()

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	var prev upload.Phase
	for {
		select {
		case <-gone:
			return
		case <-c.Request.Context().Done():
			return
		case <-l.signal:
			p := l.get()
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(p); err != nil {
				return
			}
			done := finished(prev, p.Phase)
			prev = p.Phase
			if done || w.Closed() {
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeTimeout))
				return
			}
		}
	}
}

// finished reports that a submission went all the way through and the
// workflow was reset, which closes the modal. A retry also lands on idle but
// comes from the error phase.
func finished(prev upload.Phase, cur upload.Phase) bool {
	if cur != upload.PhaseIdle {
		return false
	}
	switch prev {
	case upload.PhaseUploading, upload.PhaseProcessing, upload.PhaseComplete:
		return true
	}
	return false
}
