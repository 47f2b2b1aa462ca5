package poster

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"

	hc "github.com/netcine/web-ui/handlers/common"
)

const (
	posterCacheS3BucketFlag = "poster-cache-s3-bucket"
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   posterCacheS3BucketFlag,
			Usage:  "poster cache s3 bucket",
			Value:  "netcine-poster-cache",
			EnvVar: "POSTER_CACHE_S3_BUCKET",
		},
	)
}

type Handler struct {
	catalogs            hc.Catalogs
	cl                  *http.Client
	s3Cl                *cs.S3Client
	posterCacheS3Bucket string
}

func RegisterHandler(c *cli.Context, r *gin.Engine, catalogs hc.Catalogs, cl *http.Client, s3Cl *cs.S3Client) {
	h := &Handler{
		catalogs:            catalogs,
		cl:                  cl,
		s3Cl:                s3Cl,
		posterCacheS3Bucket: c.String(posterCacheS3BucketFlag),
	}
	r.GET("/poster/:id/:file", h.poster)
}
