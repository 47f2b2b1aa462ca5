package upload

import (
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	hc "github.com/netcine/web-ui/handlers/common"
	"github.com/netcine/web-ui/services/upload"
	"github.com/netcine/web-ui/services/web"
)

func (s *Handler) bindForm(c *gin.Context) upload.Form {
	return upload.Form{
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Genre:       c.PostForm("genre"),
		Duration:    c.PostForm("duration"),
		ReleaseYear: c.PostForm("release_year"),
	}
}

// spool keeps a picked file in the temp dir until the workflow is done with it.
func (s *Handler) spool(c *gin.Context, fh *multipart.FileHeader) (*upload.File, error) {
	path := filepath.Join(s.uploads.TempDir(), uuid.NewString()+filepath.Ext(fh.Filename))
	if err := c.SaveUploadedFile(fh, path); err != nil {
		return nil, errors.Wrapf(err, "failed to spool %v", fh.Filename)
	}
	return &upload.File{
		Name:        fh.Filename,
		Path:        path,
		Size:        fh.Size,
		ContentType: fh.Header.Get("Content-Type"),
	}, nil
}

func (s *Handler) submit(c *gin.Context) {
	w := s.workflow(c)
	back := hc.Modal("upload", "")
	if w.Progress().Phase != upload.PhaseIdle {
		c.Redirect(http.StatusFound, back)
		return
	}
	w.SetForm(s.bindForm(c))
	for _, k := range []upload.FileKind{upload.FileKindVideo, upload.FileKindPoster, upload.FileKindBackdrop} {
		fh, err := c.FormFile(string(k))
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			continue
		}
		if err != nil {
			web.RedirectWithError(c, back, err)
			return
		}
		f, err := s.spool(c, fh)
		if err != nil {
			log.WithError(err).Error("failed to spool upload")
			web.RedirectWithError(c, back, err)
			return
		}
		w.SetFile(k, f)
	}
	if err := w.Submit(); err != nil {
		log.WithError(err).WithField("user_id", w.Owner().UserID).Warn("upload rejected")
		web.RedirectWithError(c, back, err)
		return
	}
	c.Redirect(http.StatusFound, back)
}
