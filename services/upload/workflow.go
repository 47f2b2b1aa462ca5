package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	satori "github.com/satori/go.uuid"
	log "github.com/sirupsen/logrus"

	"github.com/netcine/web-ui/models"
	"github.com/netcine/web-ui/services/catalog"
	"github.com/netcine/web-ui/services/common"
	"github.com/netcine/web-ui/services/storage"
)

const DisplayDelay = 2 * time.Second

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseUploading  Phase = "uploading"
	PhaseProcessing Phase = "processing"
	PhaseComplete   Phase = "complete"
	PhaseError      Phase = "error"
)

// Progress is the single record the upload modal renders.
type Progress struct {
	Phase   Phase  `json:"status"`
	Percent int    `json:"progress"`
	Message string `json:"message,omitempty"`
}

func (s Progress) Busy() bool {
	return s.Phase == PhaseUploading || s.Phase == PhaseProcessing
}

type Transfer interface {
	UploadObject(ctx context.Context, bucket string, path string, r io.Reader, size int64, contentType string, progress storage.ProgressFunc) error
	PublicURL(bucket string, path string) string
}

type Processor interface {
	Publish(ctx context.Context, t *models.Title) error
}

// Owner is the signed in user a workflow belongs to.
type Owner struct {
	UserID string
	Email  string
	Name   string
}

type Config struct {
	Transfer    Transfer
	Processor   Processor
	Bucket      string
	Delay       time.Duration
	AfterFunc   common.AfterFunc
	OnPublished func(o Owner, t *models.Title)
	onDone      func(w *Workflow)
}

// Workflow drives one submission through
// idle -> uploading -> processing -> complete -> idle, or into error.
// Every asynchronous callback carries the generation it was started for and
// is dropped once the workflow moved on or was closed.
type Workflow struct {
	mu        sync.Mutex
	owner     Owner
	cfg       Config
	form      Form
	files     Files
	progress  Progress
	gen       int
	closed    bool
	cancel    context.CancelFunc
	timer     common.Timer
	listeners map[int]func(p Progress)
	nextID    int
}

func New(o Owner, cfg Config) *Workflow {
	if cfg.Delay <= 0 {
		cfg.Delay = DisplayDelay
	}
	if cfg.AfterFunc == nil {
		cfg.AfterFunc = common.RealAfterFunc
	}
	return &Workflow{
		owner:     o,
		cfg:       cfg,
		progress:  Progress{Phase: PhaseIdle},
		listeners: map[int]func(p Progress){},
	}
}

func (s *Workflow) Owner() Owner {
	return s.owner
}

func (s *Workflow) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

func (s *Workflow) Form() Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

func (s *Workflow) Files() Files {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files
}

func (s *Workflow) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Workflow) editable() bool {
	return !s.closed && (s.progress.Phase == PhaseIdle || s.progress.Phase == PhaseError)
}

// SetForm replaces the text fields. Fields are frozen while a submission is
// in flight.
func (s *Workflow) SetForm(f Form) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.editable() {
		return false
	}
	s.form = f
	return true
}

// SetFile replaces a picked file, removing the previous temp file. A file that
// cannot be taken is removed right away.
func (s *Workflow) SetFile(k FileKind, f *File) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.editable() || !k.Valid() {
		f.remove()
		return false
	}
	if old := s.files.get(k); old != nil && old != f {
		old.remove()
	}
	s.files.set(k, f)
	return true
}

// Submit starts the transfer. It is only accepted from idle; an incomplete
// submission is rejected with a ValidationError and the state is unchanged.
func (s *Workflow) Submit() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return errors.New("upload closed")
	}
	if s.progress.Phase != PhaseIdle {
		s.mu.Unlock()
		return errors.Errorf("upload is %v", s.progress.Phase)
	}
	if err := Validate(s.form, s.files); err != nil {
		s.mu.Unlock()
		return err
	}
	s.gen++
	gen := s.gen
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	form := s.form
	files := s.files
	s.setProgress(Progress{Phase: PhaseUploading})
	ls := s.snapshotListeners()
	p := s.progress
	s.mu.Unlock()
	notify(ls, p)

	go s.run(ctx, gen, form, files)
	return nil
}

func (s *Workflow) run(ctx context.Context, gen int, form Form, files Files) {
	t, err := s.transfer(ctx, gen, form, files)
	if err != nil {
		s.fail(gen, err)
		return
	}
	if !s.transition(gen, PhaseUploading, Progress{Phase: PhaseProcessing}) &&
		!s.current(gen, PhaseProcessing) {
		return
	}
	if err := s.cfg.Processor.Publish(ctx, t); err != nil {
		s.fail(gen, err)
		return
	}
	log.WithFields(log.Fields{
		"title_id": t.TitleID,
		"owner":    s.owner.UserID,
	}).Info("upload published")
	if s.cfg.OnPublished != nil {
		s.cfg.OnPublished(s.owner, t)
	}
	s.mu.Lock()
	if s.gen != gen || s.closed || s.progress.Phase != PhaseProcessing {
		s.mu.Unlock()
		return
	}
	s.setProgress(Progress{Phase: PhaseComplete, Percent: 100})
	s.timer = s.cfg.AfterFunc(s.cfg.Delay, func() {
		s.reset(gen)
	})
	ls := s.snapshotListeners()
	p := s.progress
	s.mu.Unlock()
	notify(ls, p)
}

func (s *Workflow) transfer(ctx context.Context, gen int, form Form, files Files) (*models.Title, error) {
	id := uuid.NewString()
	total := files.totalSize()
	var base int64
	paths := map[FileKind]string{}
	var err error
	files.each(func(k FileKind, f *File) {
		if err != nil {
			return
		}
		path := fmt.Sprintf("%vs/%v/%v", k, id, objectName(f.Name))
		err = s.put(ctx, path, f, func(written int64, _ int64) {
			s.report(gen, base+written, total)
		})
		if err != nil {
			return
		}
		base += f.Size
		paths[k] = path
	})
	if err != nil {
		return nil, err
	}
	duration, _ := parsePositive(form.Duration)
	year, _ := parsePositive(form.ReleaseYear)
	now := time.Now()
	t := &models.Title{
		TitleID:     id,
		Title:       strings.TrimSpace(form.Title),
		Description: strings.TrimSpace(form.Description),
		Genres:      catalog.ParseGenres(form.Genre),
		Duration:    duration,
		ReleaseYear: year,
		VideoPath:   paths[FileKindVideo],
		VideoURL:    s.cfg.Transfer.PublicURL(s.cfg.Bucket, paths[FileKindVideo]),
		PosterURL:   s.cfg.Transfer.PublicURL(s.cfg.Bucket, paths[FileKindPoster]),
		UploadedAt:  &now,
	}
	if p, ok := paths[FileKindBackdrop]; ok {
		t.BackdropURL = s.cfg.Transfer.PublicURL(s.cfg.Bucket, p)
	} else {
		t.BackdropURL = t.PosterURL
	}
	if uid, err := satori.FromString(s.owner.UserID); err == nil {
		t.UploadedBy = &uid
	}
	return t, nil
}

func (s *Workflow) put(ctx context.Context, path string, f *File, progress storage.ProgressFunc) error {
	r, err := os.Open(f.Path)
	if err != nil {
		return common.NewStorageError(err, "open", f.Name)
	}
	defer func() {
		_ = r.Close()
	}()
	return s.cfg.Transfer.UploadObject(ctx, s.cfg.Bucket, path, r, f.Size, f.ContentType, progress)
}

// report applies a transfer progress callback. The percent never goes down,
// and reaching 100 moves the workflow to processing.
func (s *Workflow) report(gen int, done int64, total int64) {
	if total <= 0 {
		return
	}
	if done > total {
		done = total
	}
	percent := int(done * 100 / total)
	s.mu.Lock()
	if s.gen != gen || s.closed || s.progress.Phase != PhaseUploading || percent <= s.progress.Percent {
		s.mu.Unlock()
		return
	}
	if percent >= 100 {
		s.setProgress(Progress{Phase: PhaseProcessing})
	} else {
		s.setProgress(Progress{Phase: PhaseUploading, Percent: percent})
	}
	ls := s.snapshotListeners()
	p := s.progress
	s.mu.Unlock()
	notify(ls, p)
}

func (s *Workflow) current(gen int, phase Phase) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen == gen && !s.closed && s.progress.Phase == phase
}

func (s *Workflow) transition(gen int, from Phase, to Progress) bool {
	s.mu.Lock()
	if s.gen != gen || s.closed || s.progress.Phase != from {
		s.mu.Unlock()
		return false
	}
	s.setProgress(to)
	ls := s.snapshotListeners()
	s.mu.Unlock()
	notify(ls, to)
	return true
}

func (s *Workflow) fail(gen int, err error) {
	s.mu.Lock()
	if s.gen != gen || s.closed || !s.progress.Busy() {
		s.mu.Unlock()
		return
	}
	log.WithError(err).WithField("owner", s.owner.UserID).Error("upload failed")
	s.setProgress(Progress{Phase: PhaseError, Message: common.UserMessage(err)})
	ls := s.snapshotListeners()
	p := s.progress
	s.mu.Unlock()
	notify(ls, p)
}

// Retry returns a failed workflow to idle. Fields and files are kept so the
// user does not have to pick them again.
func (s *Workflow) Retry() bool {
	s.mu.Lock()
	if s.closed || s.progress.Phase != PhaseError {
		s.mu.Unlock()
		return false
	}
	s.gen++
	s.setProgress(Progress{Phase: PhaseIdle})
	ls := s.snapshotListeners()
	p := s.progress
	s.mu.Unlock()
	notify(ls, p)
	return true
}

func (s *Workflow) reset(gen int) {
	s.mu.Lock()
	if s.gen != gen || s.closed || s.progress.Phase != PhaseComplete {
		s.mu.Unlock()
		return
	}
	s.gen++
	s.timer = nil
	s.form = Form{}
	s.files.removeAll()
	s.setProgress(Progress{Phase: PhaseIdle})
	ls := s.snapshotListeners()
	p := s.progress
	s.mu.Unlock()
	notify(ls, p)
	if s.cfg.onDone != nil {
		s.cfg.onDone(s)
	}
}

// Close stops pending timers, cancels the in-flight transfer and drops the
// picked files. Nothing changes the workflow afterwards.
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
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.files.removeAll()
	s.listeners = map[int]func(p Progress){}
}

// Subscribe registers fn for progress changes and returns the function that
// removes it.
func (s *Workflow) Subscribe(fn func(p Progress)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Workflow) setProgress(p Progress) {
	s.progress = p
}

func (s *Workflow) snapshotListeners() []func(p Progress) {
	ls := make([]func(p Progress), 0, len(s.listeners))
	for i := 0; i < s.nextID; i++ {
		if l, ok := s.listeners[i]; ok {
			ls = append(ls, l)
		}
	}
	return ls
}

func notify(ls []func(p Progress), p Progress) {
	for _, l := range ls {
		l(p)
	}
}
