package upload

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/netcine/web-ui/services/common"
)

// Form holds the text fields of an upload exactly as the user typed them.
type Form struct {
	Title       string
	Description string
	Genre       string
	Duration    string
	ReleaseYear string
}

func (s Form) IsZero() bool {
	return s == Form{}
}

type FileKind string

const (
	FileKindVideo    FileKind = "video"
	FileKindPoster   FileKind = "poster"
	FileKindBackdrop FileKind = "backdrop"
)

func (s FileKind) Valid() bool {
	switch s {
	case FileKindVideo, FileKindPoster, FileKindBackdrop:
		return true
	}
	return false
}

// File is a picked file, already spooled to a local temp file.
type File struct {
	Name        string
	Path        string
	Size        int64
	ContentType string
}

func (s *File) remove() {
	if s == nil || s.Path == "" {
		return
	}
	if err := os.Remove(s.Path); err != nil && !os.IsNotExist(err) {
		log.WithError(err).WithField("path", s.Path).Warn("failed to remove upload temp file")
	}
}

type Files struct {
	Video    *File
	Poster   *File
	Backdrop *File
}

func (s *Files) get(k FileKind) *File {
	switch k {
	case FileKindVideo:
		return s.Video
	case FileKindPoster:
		return s.Poster
	case FileKindBackdrop:
		return s.Backdrop
	}
	return nil
}

func (s *Files) set(k FileKind, f *File) {
	switch k {
	case FileKindVideo:
		s.Video = f
	case FileKindPoster:
		s.Poster = f
	case FileKindBackdrop:
		s.Backdrop = f
	}
}

func (s *Files) each(fn func(k FileKind, f *File)) {
	for _, k := range []FileKind{FileKindVideo, FileKindPoster, FileKindBackdrop} {
		if f := s.get(k); f != nil {
			fn(k, f)
		}
	}
}

func (s *Files) removeAll() {
	s.each(func(_ FileKind, f *File) {
		f.remove()
	})
	*s = Files{}
}

func (s *Files) totalSize() int64 {
	var total int64
	s.each(func(_ FileKind, f *File) {
		total += f.Size
	})
	return total
}

// Validate checks that a submission can start. Duration and release year may
// be left empty, otherwise they must be positive numbers.
func Validate(f Form, files Files) error {
	if files.Video == nil {
		return common.NewValidationError("video", "Please select a video file.")
	}
	if files.Poster == nil {
		return common.NewValidationError("poster", "Please select a poster image.")
	}
	if strings.TrimSpace(f.Title) == "" {
		return common.NewValidationError("title", "Please enter a title.")
	}
	if _, err := parsePositive(f.Duration); err != nil {
		return common.NewValidationError("duration", "Duration must be a positive number of minutes.")
	}
	if _, err := parsePositive(f.ReleaseYear); err != nil {
		return common.NewValidationError("release_year", "Release year must be a positive number.")
	}
	return nil
}

func parsePositive(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, strconv.ErrRange
	}
	return n, nil
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// objectName makes a picked file name safe to use as an object key segment.
func objectName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, `\`, "/"))
	name = strings.Trim(unsafeName.ReplaceAllString(name, "-"), "-.")
	if name == "" {
		return "file"
	}
	return name
}
