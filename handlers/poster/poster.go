package poster

import (
	"bytes"
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/disintegration/imaging"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/netcine/web-ui/models"
)

type PosterFormat string

const (
	PosterFormatJPEG PosterFormat = "jpg"
)

const (
	PosterJPEGQuality = 85
	PosterMaxWidth    = 1920
)

type PosterArgs struct {
	titleID string
	width   int
	format  PosterFormat
}

func bindPosterArgs(c *gin.Context) (*PosterArgs, error) {
	file := c.Param("file")
	fileParts := strings.Split(file, ".")
	if len(fileParts) != 2 {
		return nil, errors.Errorf("wrong file format %v", file)
	}
	width, err := strconv.Atoi(fileParts[0])
	if err != nil || width <= 0 || width > PosterMaxWidth {
		return nil, errors.Errorf("wrong width %v", fileParts[0])
	}
	f := PosterFormat(fileParts[1])
	if f != PosterFormatJPEG {
		return nil, errors.Errorf("wrong format %v", f)
	}
	return &PosterArgs{
		titleID: c.Param("id"),
		width:   width,
		format:  f,
	}, nil
}

func (s *PosterArgs) Key() string {
	return fmt.Sprintf("%v/%v.%v", s.titleID, s.width, s.format)
}

func (s *Handler) poster(c *gin.Context) {
	pa, err := bindPosterArgs(c)
	if err != nil {
		log.WithError(err).Warn("failed to bind poster args")
		_ = c.AbortWithError(http.StatusBadRequest, err)
		return
	}

	ctx := c.Request.Context()

	cat, err := s.catalogs.Catalog(ctx)
	if err != nil {
		log.WithError(err).Error("failed to load catalog")
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	t := cat.Get(pa.titleID)
	if t == nil || t.PosterURL == "" {
		c.Status(http.StatusNotFound)
		return
	}

	b, err := s.getResizedJPEGPosterWithCache(ctx, t, pa)
	if err != nil {
		log.WithError(err).WithField("title_id", t.TitleID).Error("failed to get resized poster")
		_ = c.AbortWithError(http.StatusInternalServerError, err)
		return
	}

	etag := generateETag(b.Bytes())

	if match := c.Request.Header.Get("If-None-Match"); match != "" && match == etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Header("Content-Type", "image/jpeg")
	c.Header("Content-Length", strconv.Itoa(b.Len()))
	c.Header("ETag", etag)
	c.Header("Cache-Control", "public, max-age=86400")
	c.Status(http.StatusOK)

	_, _ = io.Copy(c.Writer, b)
}

func generateETag(data []byte) string {
	sum := sha256.Sum256(data)
	return fmt.Sprintf(`"%x"`, sum[:])
}

func (s *Handler) getResizedPoster(ctx context.Context, t *models.Title, args *PosterArgs) (*image.NRGBA, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.PosterURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.cl.Do(req)
	if err != nil {
		return nil, err
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("poster source responded with %v", resp.StatusCode)
	}

	srcImg, err := imaging.Decode(resp.Body)
	if err != nil {
		return nil, err
	}

	return imaging.Resize(srcImg, args.width, 0, imaging.Lanczos), nil
}

func (s *Handler) getResizedJPEGPosterWithCache(ctx context.Context, t *models.Title, args *PosterArgs) (*bytes.Buffer, error) {
	if s.s3Cl == nil {
		return s.getResizedJPEGPoster(ctx, t, args)
	}
	cl := s.s3Cl.Get()
	b, err := s.getPosterFromCache(ctx, cl, args)
	if err != nil {
		return nil, err
	}
	if b != nil {
		return b, nil
	}
	b, err = s.getResizedJPEGPoster(ctx, t, args)
	if err != nil {
		return nil, err
	}
	if err := s.putPosterToCache(ctx, cl, args, b); err != nil {
		log.WithError(err).WithField("key", args.Key()).Warn("failed to cache poster")
	}
	return b, nil
}

func (s *Handler) getResizedJPEGPoster(ctx context.Context, t *models.Title, args *PosterArgs) (*bytes.Buffer, error) {
	r, err := s.getResizedPoster(ctx, t, args)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	err = jpeg.Encode(&buf, r, &jpeg.Options{Quality: PosterJPEGQuality})
	if err != nil {
		return nil, err
	}
	return &buf, nil
}

func (s *Handler) getPosterFromCache(ctx context.Context, s3Cl *s3.S3, pa *PosterArgs) (*bytes.Buffer, error) {
	r, err := s3Cl.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.posterCacheS3Bucket),
		Key:    aws.String(pa.Key()),
	})
	if err != nil {
		if awsErr, ok := err.(awserr.Error); ok && awsErr.Code() == s3.ErrCodeNoSuchKey {
			return nil, nil
		}
		return nil, err
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(r.Body)

	var buf bytes.Buffer
	_, err = io.Copy(&buf, r.Body)
	if err != nil {
		return nil, err
	}
	return &buf, nil
}

func makeAWSMD5(b []byte) *string {
	h := md5.Sum(b)
	m := base64.StdEncoding.EncodeToString(h[:])
	return aws.String(m)
}

func (s *Handler) putPosterToCache(ctx context.Context, s3Cl *s3.S3, pa *PosterArgs, b *bytes.Buffer) (err error) {
	data := b.Bytes()
	_, err = s3Cl.PutObjectWithContext(ctx,
		&s3.PutObjectInput{
			Bucket:      aws.String(s.posterCacheS3Bucket),
			Key:         aws.String(pa.Key()),
			Body:        bytes.NewReader(data),
			ContentMD5:  makeAWSMD5(data),
			ContentType: aws.String("image/jpeg"),
		})
	return
}
