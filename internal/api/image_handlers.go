package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/larderapp/larder-server/internal/http/response"
)

// handleGetImage streams a recipe image. It bypasses huma so the bytes go
// out unwrapped with their own content type.
func (s *Server) handleGetImage(w http.ResponseWriter, r *http.Request) {
	log := s.requestLogger(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "invalid recipe id", log.Logger)
		return
	}

	data, contentType, err := s.services.Recipes.Image(r.Context(), id)
	if err != nil {
		response.HandleError(w, err, log.Logger)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", imageCacheControl)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	if _, err := w.Write(data); err != nil {
		log.WithError(err).Debug("image write failed", "recipe_id", id)
	}
}
