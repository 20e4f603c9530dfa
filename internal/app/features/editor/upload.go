// internal/app/features/editor/upload.go
package editor

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	editops "github.com/dalemusser/stratapage/internal/app/system/editor"
	"github.com/dalemusser/stratapage/internal/app/system/timeouts"
	"github.com/dalemusser/stratapage/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// MaxImageBytes caps a section image upload.
const MaxImageBytes = 5 << 20

// UnsupportedImageMessage is flashed for files that are not a raster image.
const UnsupportedImageMessage = "Only PNG, JPEG, GIF and WebP images can be uploaded."

var imageExts = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".webp": true}

// imageTypes are the sniffed content types accepted for upload. SVG is
// excluded: it can carry script and uploads are served from the app origin.
var imageTypes = map[string]bool{"image/png": true, "image/jpeg": true, "image/gif": true, "image/webp": true}

// uploadImage stores an image for a hero or cta section and points the
// section's image field at it.
func (h *Handler) uploadImage(w http.ResponseWriter, r *http.Request) {
	wc, ok := h.load(w, r)
	if !ok {
		return
	}
	back := func(msg string) {
		h.sessionMgr.AddFlash(w, r, msg)
		http.Redirect(w, r, editorPath(wc.Page.ID), http.StatusSeeOther)
	}

	sid := chi.URLParam(r, "sid")
	idx := wc.Page.FindSection(sid)
	if h.images == nil || idx < 0 || !imageSections[wc.Page.Sections[idx].Type] {
		back("Images cannot be added to this section.")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxImageBytes+1<<20)
	if err := r.ParseMultipartForm(MaxImageBytes); err != nil {
		back("The image is too large. The limit is 5 MB.")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		back("Please choose an image to upload.")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	contentType, err := sniff(file)
	if err != nil || !imageExts[ext] || !imageTypes[contentType] {
		back(UnsupportedImageMessage)
		return
	}
	if header.Size > MaxImageBytes {
		back("The image is too large. The limit is 5 MB.")
		return
	}

	now := time.Now().UTC()
	path := fmt.Sprintf("sections/%04d/%02d/%s%s", now.Year(), int(now.Month()), uuid.NewString()[:8], ext)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Long(), h.logger, "image upload")
	defer cancel()

	if err := h.images.Put(ctx, path, file, &storage.PutOptions{ContentType: contentType}); err != nil {
		h.errLog.Log(r, "store section image failed", err)
		back("The image could not be uploaded. Please try again.")
		return
	}
	h.storeDraft(w, r, editops.UpdateSectionField(wc.Page, sid, models.FieldImage, h.images.URL(path)))
}

// sniff detects the file's type from its first 512 bytes and rewinds it.
func sniff(file multipart.File) (string, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", err
	}
	return http.DetectContentType(head[:n]), nil
}
