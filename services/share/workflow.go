package share

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/netcine/web-ui/models"
	"github.com/netcine/web-ui/services/common"
)

const CopiedResetDelay = 2 * time.Second

// Clipboard is where a copied link ends up.
type Clipboard interface {
	Copy(ctx context.Context, text string) error
}

// Workflow is the share selection of one viewer: a title plus the transient
// "link copied" flag.
type Workflow struct {
	mu        sync.Mutex
	title     *models.Title
	artifacts *Artifacts
	copied    bool
	closed    bool
	gen       int
	timer     common.Timer
	delay     time.Duration
	afterFunc common.AfterFunc
}

func New(t *models.Title, a *Artifacts, af common.AfterFunc) *Workflow {
	if af == nil {
		af = common.RealAfterFunc
	}
	return &Workflow{
		title:     t,
		artifacts: a,
		delay:     CopiedResetDelay,
		afterFunc: af,
	}
}

func (s *Workflow) Title() *models.Title {
	return s.title
}

func (s *Workflow) Artifacts() *Artifacts {
	return s.artifacts
}

func (s *Workflow) Copied() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copied
}

// CopyLink writes the canonical link to the clipboard. A failed copy leaves
// the workflow untouched.
func (s *Workflow) CopyLink(ctx context.Context, cb Clipboard) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.New("share closed")
	}
	link := s.artifacts.URL
	s.mu.Unlock()

	if err := cb.Copy(ctx, link); err != nil {
		if common.IsClipboard(err) {
			return err
		}
		return common.NewClipboardError(err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.gen++
	gen := s.gen
	if s.timer != nil {
		s.timer.Stop()
	}
	s.copied = true
	s.timer = s.afterFunc(s.delay, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.gen != gen || s.closed {
			return
		}
		s.copied = false
		s.timer = nil
	})
	return nil
}

func (s *Workflow) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
