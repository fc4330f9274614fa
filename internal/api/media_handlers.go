package api

import (
	"bytes"
	"errors"
	"io/fs"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/h2non/filetype"

	"github.com/disanlib/reader-server/internal/http/response"
)

const mediaCacheControl = "public, max-age=86400"

// handleMedia serves GET /media/*: image files from the library. With ?w= and
// an on-disk library it serves a resized JPEG instead.
func (s *Server) handleMedia(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "*")
	if !fs.ValidPath(name) || name == "." || hiddenPath(name) {
		response.NotFound(w, "media not found", s.logger)
		return
	}

	if raw := r.URL.Query().Get("w"); raw != "" && s.media.Thumbs != nil {
		width, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(w, "w must be an integer", s.logger)
			return
		}
		thumb, err := s.media.Thumbs.Thumbnail(name, width)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				response.NotFound(w, "media not found", s.logger)
				return
			}
			s.logger.Debug("Thumbnail failed", "path", name, "width", width, "error", err)
			response.BadRequest(w, err.Error(), s.logger)
			return
		}
		w.Header().Set("Cache-Control", mediaCacheControl)
		w.Header().Set("Content-Type", "image/jpeg")
		http.ServeFile(w, r, thumb)
		return
	}

	data, err := fs.ReadFile(s.media.Files, name)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("Failed to read media", "path", name, "error", err)
		}
		response.NotFound(w, "media not found", s.logger)
		return
	}

	if !filetype.IsImage(data) {
		response.NotFound(w, "media not found", s.logger)
		return
	}
	kind, _ := filetype.Match(data)

	var modTime time.Time
	if info, err := fs.Stat(s.media.Files, name); err == nil {
		modTime = info.ModTime()
	}

	w.Header().Set("Content-Type", kind.MIME.Value)
	w.Header().Set("Cache-Control", mediaCacheControl)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	http.ServeContent(w, r, path.Base(name), modTime, bytes.NewReader(data))
}

func hiddenPath(name string) bool {
	for _, part := range strings.Split(name, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
