package controllers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/giglane/giglane-backend/api/middleware"
	"github.com/giglane/giglane-backend/api/responses"
	pkgerrors "github.com/giglane/giglane-backend/pkg/errors"
	"github.com/giglane/giglane-backend/pkg/logger"
)

const maxUploadBytes = 32 << 20

// Uploader streams attachment bytes into object storage.
type Uploader interface {
	Upload(ctx context.Context, objectName, contentType string, body io.Reader) (string, error)
}

// FileUpload accepts a multipart attachment and stores it for later use as an
// order requirement or delivery file.
func FileUpload(store Uploader, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "file storage unavailable"))
			return
		}

		userID := middleware.UserIDFromContext(r.Context())
		if userID == uuid.Nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing"))
			return
		}

		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid multipart body"))
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "file field required"))
			return
		}
		defer func() { _ = file.Close() }()

		name := sanitizeFileName(header.Filename)
		if name == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "file name required"))
			return
		}

		objectName := fmt.Sprintf("orders/%s/%s_%s", userID, uuid.NewString(), name)
		contentType := header.Header.Get("Content-Type")

		url, err := store.Upload(r.Context(), objectName, contentType, file)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store attachment"))
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, fileUploadResponse{
			URL:       url,
			StorageID: objectName,
		})
	}
}

type fileUploadResponse struct {
	URL       string `json:"url"`
	StorageID string `json:"storage_id"`
}

func sanitizeFileName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-' || r == '_':
			return r
		default:
			return '-'
		}
	}, name)
}
