package handlers

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/udayana-events/server/internal/api/problem"
	"github.com/udayana-events/server/internal/images"
)

const maxImageBytes = 5 << 20 // 5 MB

// ImagesHandler accepts event image uploads and serves stored images. The
// upload returns a reference the client passes in the event form; events only
// ever store the reference.
type ImagesHandler struct {
	Store *images.Store
	Env   string
}

func NewImagesHandler(store *images.Store, env string) *ImagesHandler {
	return &ImagesHandler{Store: store, Env: env}
}

func (h *ImagesHandler) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid upload", err, h.Env)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid upload", err, h.Env)
		return
	}
	defer file.Close()

	ref, err := h.Store.Save(file, header.Filename)
	if err != nil {
		problem.Write(w, r, http.StatusBadRequest, problem.TypeValidation, "Invalid upload", err, h.Env)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"image": ref})
}

func (h *ImagesHandler) Serve(w http.ResponseWriter, r *http.Request) {
	ref := strings.TrimSpace(r.PathValue("ref"))
	file, err := h.Store.Open(ref)
	if err != nil {
		problem.Write(w, r, http.StatusNotFound, problem.TypeNotFound, "Image not found", err, h.Env)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		problem.Write(w, r, http.StatusInternalServerError, problem.TypeServerError, "Server error", err, h.Env)
		return
	}
	http.ServeContent(w, r, filepath.Base(ref), info.ModTime(), file)
}
