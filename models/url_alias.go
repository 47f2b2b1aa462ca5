package models

import (
	"context"
	"math/rand"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/pkg/errors"
)

type URLAlias struct {
	tableName struct{} `pg:"url_alias"`

	Code      string    `pg:"code,pk"`
	URL       string    `pg:"url,notnull,unique"`
	CreatedAt time.Time `pg:"created_at,notnull,default:now()"`
}

const (
	aliasCodeLength   = 6
	aliasCodeAttempts = 10
)

var alphaNum = []rune("abcdefghijklmnopqrstuvwxyz0123456789")

func randomAlphaNum(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = alphaNum[rand.Intn(len(alphaNum))]
	}
	return string(b)
}

func GetURLAliasByCode(ctx context.Context, db *pg.DB, code string) (*URLAlias, error) {
	alias := &URLAlias{}
	err := db.Model(alias).
		Context(ctx).
		Where("code = ?", code).
		Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch url alias")
	}
	return alias, nil
}

// CreateOrGetURLAlias returns the alias of url, minting a new random code
// when the url has none yet.
func CreateOrGetURLAlias(ctx context.Context, db *pg.DB, url string) (*URLAlias, error) {
	alias := &URLAlias{}
	err := db.Model(alias).
		Context(ctx).
		Where("url = ?", url).
		Select()
	if err == nil {
		return alias, nil
	}
	if !errors.Is(err, pg.ErrNoRows) {
		return nil, errors.Wrap(err, "failed to fetch url alias")
	}

	var code string
	for i := 0; i < aliasCodeAttempts; i++ {
		code = randomAlphaNum(aliasCodeLength)
		exists, err := db.Model((*URLAlias)(nil)).
			Context(ctx).
			Where("code = ?", code).
			Exists()
		if err != nil {
			return nil, errors.Wrap(err, "failed to check url alias code")
		}
		if !exists {
			break
		}
		if i == aliasCodeAttempts-1 {
			return nil, errors.New("failed to generate unique code")
		}
	}

	alias = &URLAlias{
		Code:      code,
		URL:       url,
		CreatedAt: time.Now(),
	}
	_, err = db.Model(alias).Context(ctx).Insert()
	if err != nil {
		return nil, errors.Wrap(err, "failed to insert url alias")
	}
	return alias, nil
}
