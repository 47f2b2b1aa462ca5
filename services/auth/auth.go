package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/go-pg/pg/v10"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	satori "github.com/satori/go.uuid"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"
	"golang.org/x/crypto/bcrypt"

	"github.com/netcine/web-ui/models"
	"github.com/netcine/web-ui/services/common"
	"github.com/netcine/web-ui/services/session"
)

const (
	sessionTTLFlag    = "session-ttl"
	sessionPrefixFlag = "session-prefix"
)

const sessionCookieKey = "session-id"

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.DurationFlag{
			Name:   sessionTTLFlag,
			Usage:  "lifetime of a signed in session",
			Value:  30 * 24 * time.Hour,
			EnvVar: "SESSION_TTL",
		},
		cli.StringFlag{
			Name:   sessionPrefixFlag,
			Usage:  "redis key prefix of signed in sessions",
			Value:  "netcine:session:",
			EnvVar: "SESSION_PREFIX",
		},
	)
}

type userStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id satori.UUID) (*models.User, error)
	CreateUser(ctx context.Context, u *models.User) error
}

type pgUserStore struct {
	pg *cs.PG
}

func (s *pgUserStore) db() (*pg.DB, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errors.New("no db")
	}
	return db, nil
}

func (s *pgUserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}
	return models.GetUserByEmail(ctx, db, email)
}

func (s *pgUserStore) GetUserByID(ctx context.Context, id satori.UUID) (*models.User, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}
	return models.GetUserByID(ctx, db, id)
}

func (s *pgUserStore) CreateUser(ctx context.Context, u *models.User) error {
	db, err := s.db()
	if err != nil {
		return err
	}
	return models.CreateUser(ctx, db, u)
}

// Auth is the session backend: users live in PostgreSQL with bcrypt password
// hashes, signed in sessions live in Redis.
type Auth struct {
	users  userStore
	rc     redis.UniversalClient
	ttl    time.Duration
	prefix string
	cost   int
}

func New(c *cli.Context, pg *cs.PG, rc redis.UniversalClient) *Auth {
	return &Auth{
		users:  &pgUserStore{pg: pg},
		rc:     rc,
		ttl:    c.Duration(sessionTTLFlag),
		prefix: c.String(sessionPrefixFlag),
		cost:   bcrypt.DefaultCost,
	}
}

type storedSession struct {
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (s *Auth) Get(ctx context.Context, id string) (*session.Session, error) {
	if s.rc == nil {
		return nil, errors.New("no redis")
	}
	b, err := s.rc.Get(ctx, s.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get session")
	}
	var ss storedSession
	if err := json.Unmarshal(b, &ss); err != nil {
		return nil, errors.Wrap(err, "failed to decode session")
	}
	uid, err := satori.FromString(ss.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse session user id")
	}
	u, err := s.users.GetUserByID(ctx, uid)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, nil
	}
	return toSession(id, u, ss.CreatedAt), nil
}

func (s *Auth) SignIn(ctx context.Context, email string, password string) (*session.Session, error) {
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil || u.PasswordHash == "" {
		return nil, common.NewAuthError(nil, "Invalid email or password.")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, common.NewAuthError(nil, "Invalid email or password.")
	}
	return s.start(ctx, u)
}

func (s *Auth) SignUp(ctx context.Context, email string, password string, name string) (*session.Session, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash password")
	}
	u := &models.User{
		Email:        email,
		Name:         name,
		PasswordHash: string(hash),
		Tier:         models.TierBasic,
	}
	err = s.users.CreateUser(ctx, u)
	if errors.Is(err, models.ErrUserExists) {
		return nil, common.NewAuthError(err, "This email is already registered.")
	}
	if err != nil {
		return nil, err
	}
	return s.start(ctx, u)
}

func (s *Auth) SignOut(ctx context.Context, id string) error {
	if s.rc == nil {
		return errors.New("no redis")
	}
	if err := s.rc.Del(ctx, s.prefix+id).Err(); err != nil {
		return errors.Wrap(err, "failed to drop session")
	}
	return nil
}

func (s *Auth) start(ctx context.Context, u *models.User) (*session.Session, error) {
	if s.rc == nil {
		return nil, errors.New("no redis")
	}
	id := uuid.NewString()
	now := time.Now()
	b, err := json.Marshal(&storedSession{
		UserID:    u.UserID.String(),
		CreatedAt: now,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode session")
	}
	if err := s.rc.Set(ctx, s.prefix+id, b, s.ttl).Err(); err != nil {
		return nil, errors.Wrap(err, "failed to store session")
	}
	log.WithFields(log.Fields{
		"user_id": u.UserID.String(),
	}).Info("session started")
	return toSession(id, u, now), nil
}

func toSession(id string, u *models.User, createdAt time.Time) *session.Session {
	s := &session.Session{
		ID:        id,
		UserID:    u.UserID.String(),
		Email:     u.Email,
		Name:      u.Name,
		Tier:      u.Tier,
		CreatedAt: createdAt,
	}
	if u.AvatarURL != nil {
		s.AvatarURL = *u.AvatarURL
	}
	if !s.Tier.Valid() {
		s.Tier = models.TierBasic
	}
	return s
}

type SessionContext struct{}

// RegisterHandler resolves the viewer's session on every request and keeps
// the session cookie in sync with it.
func (s *Auth) RegisterHandler(r *gin.Engine) {
	r.Use(Middleware(s))
}

func Middleware(b session.Backend) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie := sessions.Default(c)
		var id string
		if v, ok := cookie.Get(sessionCookieKey).(string); ok {
			id = v
		}
		sc := session.New(b)
		sess := sc.Resolve(c.Request.Context(), id)
		if id != "" && sess == nil {
			cookie.Delete(sessionCookieKey)
			if err := cookie.Save(); err != nil {
				log.WithError(err).Warn("failed to drop stale session cookie")
			}
		}
		sc.Subscribe(func(ss *session.Session) {
			if ss == nil {
				cookie.Delete(sessionCookieKey)
			} else {
				cookie.Set(sessionCookieKey, ss.ID)
			}
			if err := cookie.Save(); err != nil {
				log.WithError(err).Warn("failed to save session cookie")
			}
		})
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), SessionContext{}, sc))
		c.Next()
	}
}

// GetSessionFromContext returns the viewer's session context. Outside of the
// auth middleware it is an empty, resolved context.
func GetSessionFromContext(c *gin.Context) *session.Context {
	if sc, ok := c.Request.Context().Value(SessionContext{}).(*session.Context); ok {
		return sc
	}
	sc := session.New(nil)
	sc.Resolve(c.Request.Context(), "")
	return sc
}

func HasAuth(c *gin.Context) {
	if GetSessionFromContext(c).Session() == nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	c.Next()
}
