package storage

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"

	"github.com/netcine/web-ui/services/common"
)

const (
	MediaBucketFlag = "media-bucket"
	publicURLFlag   = "media-public-url"
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   MediaBucketFlag,
			Usage:  "bucket of uploaded videos and images",
			Value:  "netcine-media",
			EnvVar: "MEDIA_BUCKET",
		},
		cli.StringFlag{
			Name:   publicURLFlag,
			Usage:  "public base url of the media buckets",
			Value:  "https://media.netcine.app",
			EnvVar: "MEDIA_PUBLIC_URL",
		},
	)
}

var ErrNotFound = errors.New("object not found")

// ProgressFunc receives the number of bytes handed to the transfer so far
// and the expected total.
type ProgressFunc func(written int64, total int64)

type uploader interface {
	UploadWithContext(ctx aws.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error)
}

type getter interface {
	GetObjectWithContext(ctx aws.Context, input *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error)
}

// Object is a downloaded object body. The caller closes it.
type Object struct {
	io.ReadCloser
	Size        int64
	ContentType string
}

type Storage struct {
	up        uploader
	get       getter
	bucket    string
	publicURL string
}

func New(c *cli.Context, s3Cl *cs.S3Client) *Storage {
	cl := s3Cl.Get()
	return &Storage{
		up:        s3manager.NewUploaderWithClient(cl),
		get:       cl,
		bucket:    c.String(MediaBucketFlag),
		publicURL: common.TrimDomain(c.String(publicURLFlag)),
	}
}

func (s *Storage) Bucket() string {
	return s.bucket
}

func (s *Storage) UploadObject(ctx context.Context, bucket string, path string, r io.Reader, size int64, contentType string, progress ProgressFunc) error {
	pr := &progressReader{r: r, total: size, progress: progress}
	in := &s3manager.UploadInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(path),
		Body:   pr,
	}
	if contentType != "" {
		in.ContentType = aws.String(contentType)
	}
	_, err := s.up.UploadWithContext(ctx, in)
	if err != nil {
		return common.NewStorageError(err, "upload", path)
	}
	log.WithFields(log.Fields{
		"bucket": bucket,
		"path":   path,
		"size":   pr.read(),
	}).Info("object uploaded")
	return nil
}

func (s *Storage) PublicURL(bucket string, path string) string {
	return fmt.Sprintf("%v/%v/%v", s.publicURL, bucket, common.EscapePath(path))
}

func (s *Storage) DownloadObject(ctx context.Context, bucket string, path string) (*Object, error) {
	out, err := s.get.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		if awsErr, ok := err.(awserr.Error); ok && awsErr.Code() == s3.ErrCodeNoSuchKey {
			return nil, common.NewStorageError(ErrNotFound, "download", path)
		}
		return nil, common.NewStorageError(err, "download", path)
	}
	return &Object{
		ReadCloser:  out.Body,
		Size:        aws.Int64Value(out.ContentLength),
		ContentType: aws.StringValue(out.ContentType),
	}, nil
}

type progressReader struct {
	mu       sync.Mutex
	r        io.Reader
	n        int64
	total    int64
	progress ProgressFunc
}

func (s *progressReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if n > 0 {
		s.mu.Lock()
		s.n += int64(n)
		written := s.n
		s.mu.Unlock()
		if s.progress != nil {
			s.progress(written, s.total)
		}
	}
	return n, err
}

func (s *progressReader) read() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.n
}
