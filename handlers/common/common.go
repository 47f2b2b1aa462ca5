package common

import (
	"context"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/netcine/web-ui/services/auth"
	"github.com/netcine/web-ui/services/catalog"
	"github.com/netcine/web-ui/services/upload"
)

// Catalogs hands out the current catalog snapshot.
type Catalogs interface {
	Catalog(ctx context.Context) (*catalog.Catalog, error)
}

// Counters records viewer activity on titles.
type Counters interface {
	CountDownload(ctx context.Context, id string) error
	CountShare(ctx context.Context, id string) error
}

// Owner returns the signed in viewer as an upload owner.
func Owner(c *gin.Context) (upload.Owner, bool) {
	s := auth.GetSessionFromContext(c).Session()
	if s == nil {
		return upload.Owner{}, false
	}
	return upload.Owner{
		UserID: s.UserID,
		Email:  s.Email,
		Name:   s.Name,
	}, true
}

// Modal builds the url of the catalog page with the given modal open.
func Modal(kind string, titleID string) string {
	q := url.Values{}
	q.Set("modal", kind)
	if titleID != "" {
		q.Set("title", titleID)
	}
	return "/?" + q.Encode()
}
