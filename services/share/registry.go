package share

import (
	"sync"

	"github.com/urfave/cli"

	"github.com/netcine/web-ui/models"
	"github.com/netcine/web-ui/services/common"
)

// Registry keeps the share selection of every viewer with an open share
// modal. Opening a share for another title replaces the previous one.
type Registry struct {
	mu        sync.Mutex
	domain    string
	appName   string
	afterFunc common.AfterFunc
	workflows map[string]*Workflow
}

func NewRegistry(c *cli.Context) *Registry {
	return NewRegistryWithClock(c.String(common.DomainFlag), c.String(common.AppNameFlag), common.RealAfterFunc)
}

func NewRegistryWithClock(domain string, appName string, af common.AfterFunc) *Registry {
	return &Registry{
		domain:    domain,
		appName:   appName,
		afterFunc: af,
		workflows: map[string]*Workflow{},
	}
}

func (s *Registry) Artifacts(t *models.Title) *Artifacts {
	return BuildArtifacts(s.domain, s.appName, t)
}

func (s *Registry) Open(viewer string, t *models.Title) *Workflow {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.workflows[viewer]; ok {
		if w.title.TitleID == t.TitleID {
			return w
		}
		w.Close()
	}
	w := New(t, s.Artifacts(t), s.afterFunc)
	s.workflows[viewer] = w
	return w
}

func (s *Registry) Get(viewer string) *Workflow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workflows[viewer]
}

func (s *Registry) Close(viewer string) {
	s.mu.Lock()
	w, ok := s.workflows[viewer]
	delete(s.workflows, viewer)
	s.mu.Unlock()
	if ok {
		w.Close()
	}
}

func (s *Registry) CloseAll() {
	s.mu.Lock()
	ws := s.workflows
	s.workflows = map[string]*Workflow{}
	s.mu.Unlock()
	for _, w := range ws {
		w.Close()
	}
}
