package upload

import (
	"os"
	"sync"

	"github.com/urfave/cli"

	"github.com/netcine/web-ui/models"
	"github.com/netcine/web-ui/services/storage"
)

const (
	displayDelayFlag = "upload-display-delay"
	tempDirFlag      = "upload-temp-dir"
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.DurationFlag{
			Name:   displayDelayFlag,
			Usage:  "how long a completed upload stays on screen",
			Value:  DisplayDelay,
			EnvVar: "UPLOAD_DISPLAY_DELAY",
		},
		cli.StringFlag{
			Name:   tempDirFlag,
			Usage:  "directory picked files are spooled to",
			Value:  os.TempDir(),
			EnvVar: "UPLOAD_TEMP_DIR",
		},
	)
}

// Registry keeps at most one workflow per owner: the one behind the upload
// modal the owner has open.
type Registry struct {
	mu        sync.Mutex
	cfg       Config
	tempDir   string
	workflows map[string]*Workflow
}

func NewRegistry(c *cli.Context, st *storage.Storage, p Processor, onPublished func(o Owner, t *models.Title)) *Registry {
	return NewRegistryWithConfig(Config{
		Transfer:    st,
		Processor:   p,
		Bucket:      st.Bucket(),
		Delay:       c.Duration(displayDelayFlag),
		OnPublished: onPublished,
	}, c.String(tempDirFlag))
}

// NewRegistryWithConfig builds a registry whose workflows share cfg.
func NewRegistryWithConfig(cfg Config, tempDir string) *Registry {
	r := &Registry{
		tempDir:   tempDir,
		workflows: map[string]*Workflow{},
	}
	cfg.onDone = r.done
	r.cfg = cfg
	return r
}

func (s *Registry) TempDir() string {
	return s.tempDir
}

// Open returns the owner's workflow, creating it when the modal opens.
func (s *Registry) Open(o Owner) *Workflow {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.workflows[o.UserID]; ok {
		return w
	}
	w := New(o, s.cfg)
	s.workflows[o.UserID] = w
	return w
}

func (s *Registry) Get(userID string) *Workflow {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.workflows[userID]
}

// Close tears down the owner's workflow when the modal closes.
func (s *Registry) Close(userID string) {
	s.mu.Lock()
	w, ok := s.workflows[userID]
	delete(s.workflows, userID)
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

func (s *Registry) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.workflows)
}

// done drops a workflow after its successful submission was displayed.
func (s *Registry) done(w *Workflow) {
	s.mu.Lock()
	if s.workflows[w.owner.UserID] == w {
		delete(s.workflows, w.owner.UserID)
	} else {
		w = nil
	}
	s.mu.Unlock()
	if w != nil {
		w.Close()
	}
}

