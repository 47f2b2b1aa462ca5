package view

import (
	"github.com/netcine/web-ui/models"
	"github.com/netcine/web-ui/services/catalog"
	"github.com/netcine/web-ui/services/session"
)

type ModalKind string

const (
	ModalNone   ModalKind = ""
	ModalAuth   ModalKind = "auth"
	ModalUpload ModalKind = "upload"
	ModalShare  ModalKind = "share"
)

// ModalState is the one modal that is open, if any. Only the share modal
// carries a title.
type ModalState struct {
	kind  ModalKind
	title *models.Title
}

func NoModal() ModalState {
	return ModalState{}
}

func AuthModal() ModalState {
	return ModalState{kind: ModalAuth}
}

func UploadModal() ModalState {
	return ModalState{kind: ModalUpload}
}

func ShareModal(t *models.Title) ModalState {
	if t == nil {
		return NoModal()
	}
	return ModalState{kind: ModalShare, title: t}
}

func (s ModalState) Kind() ModalKind {
	return s.kind
}

// Title is the shared title, nil for every other modal.
func (s ModalState) Title() *models.Title {
	return s.title
}

func (s ModalState) IsNone() bool {
	return s.kind == ModalNone
}

func (s ModalState) IsAuth() bool {
	return s.kind == ModalAuth
}

func (s ModalState) IsUpload() bool {
	return s.kind == ModalUpload
}

func (s ModalState) IsShare() bool {
	return s.kind == ModalShare
}

// ParseModal turns the requested modal into a state that can be shown to the
// viewer. Upload needs a session and falls back to sign in, share needs a
// known title and falls back to nothing.
func ParseModal(kind string, titleID string, c *catalog.Catalog, s *session.Session) ModalState {
	switch ModalKind(kind) {
	case ModalAuth:
		if s != nil {
			return NoModal()
		}
		return AuthModal()
	case ModalUpload:
		if s == nil {
			return AuthModal()
		}
		return UploadModal()
	case ModalShare:
		if c == nil || titleID == "" {
			return NoModal()
		}
		return ShareModal(c.Get(titleID))
	}
	return NoModal()
}
