package session

import (
	"context"
	"net/mail"
	"strings"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/netcine/web-ui/models"
	"github.com/netcine/web-ui/services/common"
)

const MinPasswordLength = 6

// Session is the authenticated identity of the current viewer.
type Session struct {
	ID        string
	UserID    string
	Email     string
	Name      string
	AvatarURL string
	Tier      models.Tier
	CreatedAt time.Time
}

// Backend is the identity provider sessions are checked against.
type Backend interface {
	// Get returns nil when the session id is unknown.
	Get(ctx context.Context, id string) (*Session, error)
	SignIn(ctx context.Context, email string, password string) (*Session, error)
	SignUp(ctx context.Context, email string, password string, name string) (*Session, error)
	SignOut(ctx context.Context, id string) error
}

type Listener func(s *Session)

// Context holds the current session of one viewer and broadcasts every
// change to its subscribers.
type Context struct {
	mu        sync.Mutex
	backend   Backend
	session   *Session
	loading   bool
	listeners map[int]Listener
	nextID    int
}

func New(b Backend) *Context {
	return &Context{
		backend:   b,
		loading:   true,
		listeners: map[int]Listener{},
	}
}

func (s *Context) Session() *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

func (s *Context) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Resolve runs the first session check. An unknown or failing id leaves the
// viewer signed out.
func (s *Context) Resolve(ctx context.Context, id string) *Session {
	var sess *Session
	if id != "" {
		var err error
		sess, err = s.backend.Get(ctx, id)
		if err != nil {
			log.WithError(err).WithField("session_id", id).Warn("failed to resolve session")
			sess = nil
		}
	}
	s.mu.Lock()
	s.loading = false
	s.mu.Unlock()
	s.set(sess)
	return sess
}

func (s *Context) SignIn(ctx context.Context, email string, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, common.NewAuthError(nil, "Invalid email or password.")
	}
	sess, err := s.backend.SignIn(ctx, email, password)
	if err != nil {
		if common.IsAuth(err) {
			return nil, err
		}
		return nil, common.NewAuthError(err, "Sign in failed. Please try again.")
	}
	s.set(sess)
	return sess, nil
}

func (s *Context) SignUp(ctx context.Context, email string, password string, name string) (*Session, error) {
	email = normalizeEmail(email)
	name = strings.TrimSpace(name)
	if err := ValidateSignUp(email, password, name); err != nil {
		return nil, err
	}
	sess, err := s.backend.SignUp(ctx, email, password, name)
	if err != nil {
		if common.IsAuth(err) || common.IsValidation(err) {
			return nil, err
		}
		return nil, common.NewAuthError(err, "Sign up failed. Please try again.")
	}
	s.set(sess)
	return sess, nil
}

// SignOut always clears the local session, even when the backend fails.
func (s *Context) SignOut(ctx context.Context) {
	cur := s.Session()
	if cur != nil {
		if err := s.backend.SignOut(ctx, cur.ID); err != nil {
			log.WithError(err).WithField("session_id", cur.ID).Warn("failed to sign out")
		}
	}
	s.set(nil)
}

// Subscribe registers l for session changes and returns the function that
// removes it.
func (s *Context) Subscribe(l Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

func (s *Context) set(sess *Session) {
	s.mu.Lock()
	s.session = sess
	ls := make([]Listener, 0, len(s.listeners))
	for i := 0; i < s.nextID; i++ {
		if l, ok := s.listeners[i]; ok {
			ls = append(ls, l)
		}
	}
	s.mu.Unlock()
	for _, l := range ls {
		l(sess)
	}
}

func ValidateSignUp(email string, password string, name string) error {
	if name == "" {
		return common.NewValidationError("name", "Please enter your name.")
	}
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return common.NewValidationError("email", "Please enter a valid email address.")
	}
	if len(password) < MinPasswordLength {
		return common.NewValidationError("password", "Password must be at least 6 characters.")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
