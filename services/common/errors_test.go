package common

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		name      string
		err       error
		isValid   bool
		isAuth    bool
		isStorage bool
		isClip    bool
		message   string
	}{
		{
			name:    "validation",
			err:     NewValidationError("title", "Title is required."),
			isValid: true,
			message: "Title is required.",
		},
		{
			name:    "wrapped auth",
			err:     errors.Wrap(NewAuthError(cause, "Invalid email or password."), "sign in"),
			isAuth:  true,
			message: "Invalid email or password.",
		},
		{
			name:      "storage",
			err:       NewStorageError(cause, "upload", "videos/a.mp4"),
			isStorage: true,
			message:   "Upload failed. Please try again.",
		},
		{
			name:    "clipboard",
			err:     NewClipboardError(cause),
			isClip:  true,
			message: "Could not copy the link.",
		},
		{
			name:    "other",
			err:     cause,
			message: "Something went wrong. Please try again.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.isValid, IsValidation(tt.err))
			assert.Equal(t, tt.isAuth, IsAuth(tt.err))
			assert.Equal(t, tt.isStorage, IsStorage(tt.err))
			assert.Equal(t, tt.isClip, IsClipboard(tt.err))
			assert.Equal(t, tt.message, UserMessage(tt.err))
		})
	}
}

func TestErrorsUnwrapToCause(t *testing.T) {
	cause := errors.New("boom")
	assert.ErrorIs(t, NewAuthError(cause, "x"), cause)
	assert.ErrorIs(t, NewStorageError(cause, "download", ""), cause)
	assert.ErrorIs(t, NewClipboardError(cause), cause)
	assert.Equal(t, "storage download failed: boom", NewStorageError(cause, "download", "").Error())
	assert.Equal(t, "title: required", NewValidationError("title", "required").Error())
	assert.Empty(t, UserMessage(nil))
}

func TestEscapePath(t *testing.T) {
	assert.Equal(t, "videos/a%20b/c%3Fd.mp4", EscapePath("videos/a b/c?d.mp4"))
	assert.Equal(t, "https://netcine.app", TrimDomain("https://netcine.app/"))
}
