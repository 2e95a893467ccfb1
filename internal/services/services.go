package services

import (
	"context"
	"io"
	"net/http"

	"github.com/desertthunder/transx/internal/models"
)

// Backend defines the operations the client needs from the translation server.
type Backend interface {
	// Upload sends source text (a file or pasted text) and returns the server's chapter split.
	Upload(ctx context.Context, input UploadInput) ([]models.Chapter, error)

	// Status returns the session's translated chapters.
	Status(ctx context.Context) (*models.SessionStatus, error)

	// TranslateRange asks the server to translate an inclusive 1-based chapter range.
	TranslateRange(ctx context.Context, req models.TranslateRangeRequest) (*models.TranslateRangeResponse, error)

	// ExportEpub asks the server to build an EPUB and returns its download URL.
	ExportEpub(ctx context.Context, req models.ExportRequest) (*models.ExportResponse, error)

	// Download streams the resource at ref (absolute or relative to the base URL) into w.
	Download(ctx context.Context, ref string, w io.Writer) (int64, error)

	// ResolveURL resolves ref against the base URL.
	ResolveURL(ref string) (string, error)

	// SetCookie stores a cookie for the server's origin so it is sent on every later request.
	SetCookie(cookie *http.Cookie)
}

// UploadInput is the multipart payload of an upload. A non-nil File takes precedence over Text.
type UploadInput struct {
	Filename string
	File     io.Reader
	Text     string
}

// HasFile reports whether the upload carries a file part.
func (u UploadInput) HasFile() bool { return u.File != nil }
