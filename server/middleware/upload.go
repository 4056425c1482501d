// Copyright 2024 - 2025, the Funix Storefront contributors
// SPDX-License-Identifier: AGPL-3.0-only

package middleware

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"codeberg.org/funix/storefront/server/request_context"
)

// maxUploadMemory bounds how much of a multipart body is held in memory
// before spilling to temp files.
const maxUploadMemory = 32 << 20

// uploadRedirectTarget is the diagnostic endpoint malformed uploads are
// sent to instead of crashing the pipeline.
const uploadRedirectTarget = "/500"

// allowedUploadTypes is the accept-list for declared part content types.
// Anything else is dropped without error.
var allowedUploadTypes = map[string]struct{}{
	"image/png":  {},
	"image/jpg":  {},
	"image/jpeg": {},
}

// UploadStage intercepts a single file part on every request, not just
// upload-designated routes.
//
// Rejection is silent: a part with a type outside the accept-list is
// simply not stored and the request continues with no flag set for
// downstream code. Only a transport-level failure (malformed multipart
// body, failed disk write) diverts the client, via redirect to the
// diagnostic endpoint.
type UploadStage struct {
	directory string
	fieldName string
}

func NewUploadStage(directory, fieldName string) *UploadStage {
	return &UploadStage{directory: directory, fieldName: fieldName}
}

// Intercept inspects the request for an embedded file part and persists
// it when accepted.
func (u *UploadStage) Intercept(w http.ResponseWriter, r *http.Request, next http.Handler) {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		next.ServeHTTP(w, r)

		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		log.Err(err).
			Str("path", r.URL.Path).
			Msg("Malformed multipart body")

		http.Redirect(w, r, uploadRedirectTarget, http.StatusFound)

		return
	}

	headers := r.MultipartForm.File[u.fieldName]
	if len(headers) == 0 {
		next.ServeHTTP(w, r)

		return
	}

	header := headers[0]

	declaredType, _, _ := mime.ParseMediaType(header.Header.Get("Content-Type"))
	if _, ok := allowedUploadTypes[declaredType]; !ok {
		// Silent drop: no error, no flag, the request continues as if no
		// file had been attached.
		next.ServeHTTP(w, r)

		return
	}

	path, err := u.save(header)
	if err != nil {
		log.Err(err).
			Str("filename", header.Filename).
			Msg("Failed to store uploaded file")

		http.Redirect(w, r, uploadRedirectTarget, http.StatusFound)

		return
	}

	request_context.FromRequest(r).UploadedFile = &request_context.UploadedFile{
		FieldName:    u.fieldName,
		OriginalName: header.Filename,
		Path:         path,
	}

	next.ServeHTTP(w, r)
}

func (u *UploadStage) save(header *multipart.FileHeader) (string, error) {
	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded part: %w", err)
	}
	defer src.Close()

	destination := filepath.Join(u.directory, UploadFilename(time.Now(), header.Filename))

	dst, err := os.Create(destination) // #nosec G304 -- Directory is operator-configured, name is sanitized
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", destination, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", destination, err)
	}

	return destination, nil
}

// UploadFilename builds the stored name: an ISO-8601 timestamp with the
// colons replaced (illegal in common filesystem names), a separator, and
// the client-supplied base name. Two uploads within the same millisecond
// and the same original name can collide and overwrite.
func UploadFilename(now time.Time, original string) string {
	stamp := strings.ReplaceAll(now.UTC().Format("2006-01-02T15:04:05.000Z"), ":", "-")

	return stamp + "-" + filepath.Base(original)
}
