package notification

import (
	"context"

	"github.com/go-pg/pg/v10"
	"github.com/pkg/errors"
	cs "github.com/webtor-io/common-services"

	"github.com/netcine/web-ui/models"
)

type notificationStore interface {
	GetLastByKeyAndTo(ctx context.Context, key, to string) (*models.Notification, error)
	Create(ctx context.Context, n *models.Notification) error
}

type pgNotificationStore struct {
	pg *cs.PG
}

func (s *pgNotificationStore) db() (*pg.DB, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errors.New("no db")
	}
	return db, nil
}

func (s *pgNotificationStore) GetLastByKeyAndTo(ctx context.Context, key, to string) (*models.Notification, error) {
	db, err := s.db()
	if err != nil {
		return nil, err
	}
	return models.GetLastNotification(ctx, db, key, to)
}

func (s *pgNotificationStore) Create(ctx context.Context, n *models.Notification) error {
	db, err := s.db()
	if err != nil {
		return err
	}
	return models.CreateNotification(ctx, db, n)
}
