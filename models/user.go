package models

import (
	"context"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/pkg/errors"

	uuid "github.com/satori/go.uuid"
)

type Tier string

const (
	TierBasic    Tier = "basic"
	TierStandard Tier = "standard"
	TierPremium  Tier = "premium"
)

func (t Tier) Valid() bool {
	switch t {
	case TierBasic, TierStandard, TierPremium:
		return true
	}
	return false
}

type User struct {
	tableName    struct{}  `pg:"user"`
	UserID       uuid.UUID `pg:"user_id,pk,type:uuid,default:uuid_generate_v4()"`
	Email        string    `pg:"email,notnull,unique"`
	Name         string    `pg:"name,use_zero"`
	PasswordHash string    `pg:"password_hash"`
	AvatarURL    *string   `pg:"avatar_url"`
	Tier         Tier      `pg:"tier,notnull,default:'basic'"`
	CreatedAt    time.Time `pg:"created_at,notnull,default:now()"`
	UpdatedAt    time.Time `pg:"updated_at,notnull,default:now()"`
}

var ErrUserExists = errors.New("user already exists")

func GetUserByEmail(ctx context.Context, db *pg.DB, email string) (*User, error) {
	u := &User{}
	err := db.Model(u).
		Context(ctx).
		Where("email = ?", email).
		Limit(1).
		Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch user by email")
	}
	return u, nil
}

func GetUserByID(ctx context.Context, db *pg.DB, id uuid.UUID) (*User, error) {
	u := &User{}
	err := db.Model(u).
		Context(ctx).
		Where("user_id = ?", id).
		Limit(1).
		Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch user by id")
	}
	return u, nil
}

// CreateUser inserts a new user and returns ErrUserExists when the e-mail is
// already registered.
func CreateUser(ctx context.Context, db *pg.DB, u *User) error {
	if u.UserID == uuid.Nil {
		u.UserID = uuid.NewV4()
	}
	if u.Tier == "" {
		u.Tier = TierBasic
	}
	res, err := db.Model(u).
		Context(ctx).
		OnConflict("(email) DO NOTHING").
		Insert()
	if errors.Is(err, pg.ErrNoRows) {
		return ErrUserExists
	}
	if err != nil {
		return errors.Wrap(err, "failed to insert user")
	}
	if res.RowsAffected() == 0 {
		return ErrUserExists
	}
	return nil
}
