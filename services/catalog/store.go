package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"
	"github.com/webtor-io/lazymap"

	"github.com/netcine/web-ui/models"
	"github.com/netcine/web-ui/services/common"
)

const (
	cacheExpireFlag = "catalog-cache-expire"
	cacheKeyFlag    = "catalog-cache-key"
)

const snapshotKey = "catalog"

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.DurationFlag{
			Name:   cacheExpireFlag,
			Usage:  "catalog snapshot cache expiration time",
			Value:  5 * time.Minute,
			EnvVar: "CATALOG_CACHE_EXPIRE",
		},
		cli.StringFlag{
			Name:   cacheKeyFlag,
			Usage:  "redis key of the catalog snapshot",
			Value:  "netcine:catalog",
			EnvVar: "CATALOG_CACHE_KEY",
		},
	)
}

type source interface {
	GetTitles(ctx context.Context) ([]*models.Title, error)
	CreateTitle(ctx context.Context, t *models.Title) error
	UpsertTitle(ctx context.Context, t *models.Title) error
	IncrementDownloadCount(ctx context.Context, id string) error
	IncrementShareCount(ctx context.Context, id string) error
}

type pgSource struct {
	pg *cs.PG
}

func (s *pgSource) db() (*pg.DB, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errors.New("no db")
	}
	return db, nil
}

func (s *pgSource) GetTitles(ctx context.Context) ([]*models.Title, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}
	return models.GetTitles(ctx, db)
}

func (s *pgSource) CreateTitle(ctx context.Context, t *models.Title) error {
	db, err := s.db()
	if err != nil {
		return err
	}
	return models.CreateTitle(ctx, db, t)
}

func (s *pgSource) UpsertTitle(ctx context.Context, t *models.Title) error {
	db, err := s.db()
	if err != nil {
		return err
	}
	return models.UpsertTitle(ctx, db, t)
}

func (s *pgSource) IncrementDownloadCount(ctx context.Context, id string) error {
	db, err := s.db()
	if err != nil {
		return err
	}
	return models.IncrementDownloadCount(ctx, db, id)
}

func (s *pgSource) IncrementShareCount(ctx context.Context, id string) error {
	db, err := s.db()
	if err != nil {
		return err
	}
	return models.IncrementShareCount(ctx, db, id)
}

// Store serves catalog snapshots. Snapshots are cached in Redis, shared by
// all instances, and in-process in front of it.
type Store struct {
	src       source
	rc        redis.UniversalClient
	expire    time.Duration
	key       string
	snapshots lazymap.LazyMap[*Catalog]
}

func NewStore(c *cli.Context, pg *cs.PG, rc redis.UniversalClient) *Store {
	return newStore(&pgSource{pg: pg}, rc, c.Duration(cacheExpireFlag), c.String(cacheKeyFlag))
}

func newStore(src source, rc redis.UniversalClient, expire time.Duration, key string) *Store {
	local := expire / 5
	if local < time.Second {
		local = time.Second
	}
	return &Store{
		src:    src,
		rc:     rc,
		expire: expire,
		key:    key,
		snapshots: lazymap.New[*Catalog](&lazymap.Config{
			Expire:      local,
			ErrorExpire: 5 * time.Second,
		}),
	}
}

// Catalog returns the current snapshot. The load is shared by concurrent
// callers, so it does not follow the cancellation of the first one.
func (s *Store) Catalog(ctx context.Context) (*Catalog, error) {
	ctx = context.WithoutCancel(ctx)
	return s.snapshots.Get(snapshotKey, func() (*Catalog, error) {
		titles, err := s.load(ctx)
		if err != nil {
			return nil, err
		}
		return New(titles), nil
	})
}

func (s *Store) load(ctx context.Context) ([]*models.Title, error) {
	if s.rc != nil {
		titles, err := s.getCached(ctx)
		if err != nil {
			log.WithError(err).Warn("failed to read catalog snapshot from cache")
		} else if titles != nil {
			return titles, nil
		}
	}
	titles, err := s.src.GetTitles(ctx)
	if err != nil {
		return nil, err
	}
	if s.rc != nil {
		if err := s.putCached(ctx, titles); err != nil {
			log.WithError(err).Warn("failed to write catalog snapshot to cache")
		}
	}
	return titles, nil
}

func (s *Store) getCached(ctx context.Context) ([]*models.Title, error) {
	b, err := s.rc.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to get catalog snapshot")
	}
	var titles []*models.Title
	if err := json.Unmarshal(b, &titles); err != nil {
		return nil, errors.Wrap(err, "failed to decode catalog snapshot")
	}
	if titles == nil {
		titles = []*models.Title{}
	}
	return titles, nil
}

func (s *Store) putCached(ctx context.Context, titles []*models.Title) error {
	if titles == nil {
		titles = []*models.Title{}
	}
	b, err := json.Marshal(titles)
	if err != nil {
		return errors.Wrap(err, "failed to encode catalog snapshot")
	}
	return s.rc.Set(ctx, s.key, b, s.expire).Err()
}

// Invalidate drops both cache levels so the next read hits the database.
func (s *Store) Invalidate(ctx context.Context) error {
	s.snapshots.Drop(snapshotKey)
	if s.rc == nil {
		return nil
	}
	if err := s.rc.Del(ctx, s.key).Err(); err != nil {
		return errors.Wrap(err, "failed to drop catalog snapshot")
	}
	return nil
}

// Publish adds a new title to the catalog.
func (s *Store) Publish(ctx context.Context, t *models.Title) error {
	t.Genres = NormalizeGenres(t.Genres)
	if err := s.src.CreateTitle(ctx, t); err != nil {
		return common.NewStorageError(err, "publish", t.TitleID)
	}
	s.invalidate(ctx)
	return nil
}

func (s *Store) Seed(ctx context.Context, titles []*models.Title) error {
	for _, t := range titles {
		t.Genres = NormalizeGenres(t.Genres)
		if err := s.src.UpsertTitle(ctx, t); err != nil {
			return errors.Wrapf(err, "failed to seed title %v", t.TitleID)
		}
	}
	s.invalidate(ctx)
	return nil
}

func (s *Store) CountDownload(ctx context.Context, id string) error {
	return s.src.IncrementDownloadCount(ctx, id)
}

func (s *Store) CountShare(ctx context.Context, id string) error {
	return s.src.IncrementShareCount(ctx, id)
}

func (s *Store) invalidate(ctx context.Context) {
	if err := s.Invalidate(ctx); err != nil {
		log.WithError(err).Warn("failed to invalidate catalog snapshot")
	}
}
