package handlers

import (
	"context"
	"net/http"

	"shift-booking-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// UploadPresigner issues upload credentials for photos
type UploadPresigner interface {
	PresignUpload(ctx context.Context, req services.PresignRequest) (*services.PresignResponse, error)
}

// PhotoHandler handles photo-related HTTP requests
type PhotoHandler struct {
	photoService UploadPresigner
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(photoService UploadPresigner) *PhotoHandler {
	return &PhotoHandler{
		photoService: photoService,
	}
}

// Presign handles POST /photos/presign
func (h *PhotoHandler) Presign(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw, err := decodeObject(r, true)
	if err != nil {
		respondError(w, ErrorResponse{Error: codeInvalidJSON}, http.StatusBadRequest)
		return
	}

	var req services.PresignRequest
	req.Filename, _ = raw["filename"].(string)
	req.Filetype, _ = raw["filetype"].(string)

	response, err := h.photoService.PresignUpload(ctx, req)
	if err != nil {
		log.Error().
			Err(err).
			Str("filename", req.Filename).
			Msg("Failed to generate presigned upload")
		respondError(w, ErrorResponse{Error: codePresignFailed}, http.StatusInternalServerError)
		return
	}

	log.Info().
		Str("key", response.Key).
		Msg("Presigned upload generated")

	respondJSON(w, response, http.StatusOK)
}
