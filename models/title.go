package models

import (
	"context"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
)

type Title struct {
	tableName struct{} `pg:"title"`

	TitleID       string     `pg:"title_id,pk" json:"id"`
	Title         string     `pg:"title,notnull" json:"title"`
	Description   string     `pg:"description,use_zero" json:"description"`
	PosterURL     string     `pg:"poster_url" json:"poster_url,omitempty"`
	BackdropURL   string     `pg:"backdrop_url" json:"backdrop_url,omitempty"`
	VideoURL      string     `pg:"video_url" json:"video_url,omitempty"`
	TrailerURL    string     `pg:"trailer_url" json:"trailer_url,omitempty"`
	VideoPath     string     `pg:"video_path" json:"video_path,omitempty"`
	Genres        []string   `pg:"genres,array" json:"genre"`
	Rating        float64    `pg:"rating,use_zero" json:"rating"`
	Duration      int        `pg:"duration,use_zero" json:"duration"`
	ReleaseYear   int        `pg:"release_year,use_zero" json:"release_year"`
	UploadedBy    *uuid.UUID `pg:"uploaded_by,type:uuid" json:"uploaded_by,omitempty"`
	UploadedAt    *time.Time `pg:"uploaded_at" json:"upload_date,omitempty"`
	DownloadCount int64      `pg:"download_count,use_zero" json:"download_count"`
	ShareCount    int64      `pg:"share_count,use_zero" json:"share_count"`
	IsFeatured    bool       `pg:"is_featured,use_zero" json:"is_featured"`
	CreatedAt     time.Time  `pg:"created_at,default:now()" json:"-"`
}

// GetTitles returns the catalog in insertion order. The order is the
// "original order" every derived view is built from.
func GetTitles(ctx context.Context, db *pg.DB) ([]*Title, error) {
	var list []*Title
	err := db.Model(&list).
		Context(ctx).
		OrderExpr("created_at ASC, title_id ASC").
		Select()
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch titles")
	}
	return list, nil
}

func GetTitleByID(ctx context.Context, db *pg.DB, id string) (*Title, error) {
	t := &Title{}
	err := db.Model(t).
		Context(ctx).
		Where("title_id = ?", id).
		Limit(1).
		Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch title")
	}
	return t, nil
}

func CreateTitle(ctx context.Context, db *pg.DB, t *Title) error {
	_, err := db.Model(t).
		Context(ctx).
		Insert()
	if err != nil {
		return errors.Wrap(err, "failed to insert title")
	}
	return nil
}

// UpsertTitle inserts a title or refreshes its metadata. Counters are never
// lowered by an upsert.
func UpsertTitle(ctx context.Context, db *pg.DB, t *Title) error {
	_, err := db.Model(t).
		Context(ctx).
		OnConflict("(title_id) DO UPDATE").
		Set(`
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			poster_url = EXCLUDED.poster_url,
			backdrop_url = EXCLUDED.backdrop_url,
			video_url = EXCLUDED.video_url,
			trailer_url = EXCLUDED.trailer_url,
			genres = EXCLUDED.genres,
			rating = EXCLUDED.rating,
			duration = EXCLUDED.duration,
			release_year = EXCLUDED.release_year,
			uploaded_at = EXCLUDED.uploaded_at,
			download_count = GREATEST(title.download_count, EXCLUDED.download_count),
			share_count = GREATEST(title.share_count, EXCLUDED.share_count),
			is_featured = EXCLUDED.is_featured
		`).
		Insert()
	if err != nil {
		return errors.Wrap(err, "failed to upsert title")
	}
	return nil
}

func IncrementDownloadCount(ctx context.Context, db *pg.DB, id string) error {
	_, err := db.Model((*Title)(nil)).
		Context(ctx).
		Set("download_count = download_count + 1").
		Where("title_id = ?", id).
		Update()
	if err != nil {
		return errors.Wrap(err, "failed to increment download count")
	}
	return nil
}

func IncrementShareCount(ctx context.Context, db *pg.DB, id string) error {
	_, err := db.Model((*Title)(nil)).
		Context(ctx).
		Set("share_count = share_count + 1").
		Where("title_id = ?", id).
		Update()
	if err != nil {
		return errors.Wrap(err, "failed to increment share count")
	}
	return nil
}
