package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Clark-Hu/artboard/internal/domain"
	"github.com/Clark-Hu/artboard/internal/filestore"
	"github.com/Clark-Hu/artboard/internal/gallery"
)

const (
	maxRequestBody = 1 << 20 // 1 MiB
	filesField     = "artFiles"
)

var errInvalidField = errors.New("invalid field")

type errorResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

type mediaFileResponse struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

type artworkResponse struct {
	ID            int64               `json:"id"`
	Title         string              `json:"title"`
	Description   string              `json:"description"`
	Files         []mediaFileResponse `json:"files"`
	AverageRating float64             `json:"averageRating"`
	RatingCount   int                 `json:"ratingCount"`
}

type ratingRequest struct {
	Rating flexNumber `json:"rating"`
	UserID flexString `json:"userId"`
}

type rateResponse struct {
	Success bool `json:"success"`
}

// flexNumber accepts a JSON number or a string holding one.
type flexNumber struct {
	Value float64
	Set   bool
}

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var raw string
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		val, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return fmt.Errorf("%w: rating must be numeric", errInvalidField)
		}
		n.Value, n.Set = val, true
		return nil
	}
	if err := json.Unmarshal(data, &n.Value); err != nil {
		return fmt.Errorf("%w: rating must be numeric", errInvalidField)
	}
	n.Set = true
	return nil
}

// flexString accepts a JSON string or number and keeps its textual form.
type flexString struct {
	Value string
	Set   bool
}

func (s *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s.Value); err != nil {
			return err
		}
		s.Set = true
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return fmt.Errorf("%w: userId must be a string or number", errInvalidField)
	}
	s.Value, s.Set = num.String(), true
	return nil
}

func (s *Server) handleListArtworks(w http.ResponseWriter, r *http.Request) {
	arts, err := s.gallery.ListArtworks(r.Context())
	if err != nil {
		s.logger.Error("list artworks error", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list artworks")
		return
	}

	items := make([]artworkResponse, 0, len(arts))
	for _, art := range arts {
		items = append(items, toArtworkResponse(art))
	}
	s.respondJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateArtwork(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Request must be multipart/form-data")
		return
	}

	if err := r.ParseMultipartForm(int64(s.cfg.MultipartMemoryMB) << 20); err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", "Malformed multipart payload")
		return
	}
	defer func() {
		if err := r.MultipartForm.RemoveAll(); err != nil {
			s.logger.Warn("failed to remove multipart temp files", zap.Error(err))
		}
	}()

	form := r.MultipartForm
	headers := form.File[filesField]
	uploads := make([]filestore.Upload, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			s.logger.Error("open multipart file", zap.String("filename", fh.Filename), zap.Error(err))
			s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read uploaded file")
			return
		}
		defer f.Close()
		uploads = append(uploads, toUpload(fh, f))
	}

	art, err := s.gallery.CreateArtwork(r.Context(), firstValue(form, "title"), firstValue(form, "description"), uploads)
	if err != nil {
		s.logger.Error("create artwork error", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to store artwork")
		return
	}

	s.respondJSON(w, http.StatusOK, toArtworkResponse(art))
}

func (s *Server) handleRateArtwork(w http.ResponseWriter, r *http.Request) {
	id, err := parseArtworkID(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "BAD_REQUEST", err.Error())
		return
	}

	var req ratingRequest
	if err := decodeJSONBody(w, r, &req); err != nil {
		s.respondDecodeError(w, err)
		return
	}
	if err := validateRatingRequest(req); err != nil {
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
		return
	}

	res, err := s.gallery.RateArtwork(r.Context(), gallery.RateParams{
		ArtworkID: id,
		RaterID:   req.UserID.Value,
		Value:     req.Rating.Value,
	})
	if err != nil {
		s.logger.Error("rate artwork error", zap.Int64("artwork_id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to process rating")
		return
	}
	if !res.Found {
		s.logger.Info("rating accepted for unknown artwork", zap.Int64("artwork_id", id))
	}

	s.respondJSON(w, http.StatusOK, rateResponse{Success: true})
}

func parseArtworkID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, fmt.Errorf("missing id parameter")
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id parameter")
	}
	return id, nil
}

func validateRatingRequest(req ratingRequest) error {
	if !req.Rating.Set {
		return fmt.Errorf("rating is required")
	}
	if math.IsNaN(req.Rating.Value) || math.IsInf(req.Rating.Value, 0) {
		return fmt.Errorf("rating must be a finite number")
	}
	if !req.UserID.Set {
		return fmt.Errorf("userId is required")
	}
	return nil
}

func toUpload(fh *multipart.FileHeader, body io.Reader) filestore.Upload {
	return filestore.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        body,
	}
}

func firstValue(form *multipart.Form, key string) string {
	if vals := form.Value[key]; len(vals) > 0 {
		return vals[0]
	}
	return ""
}

func toArtworkResponse(art domain.Artwork) artworkResponse {
	files := make([]mediaFileResponse, 0, len(art.Files))
	for _, f := range art.Files {
		files = append(files, mediaFileResponse{URL: f.URL, Type: f.Type})
	}
	return artworkResponse{
		ID:            art.ID,
		Title:         art.Title,
		Description:   art.Description,
		Files:         files,
		AverageRating: art.AverageRating,
		RatingCount:   art.RatingCount,
	}
}

func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(dst)
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			s.logger.Warn("failed to encode response", zap.Error(err))
		}
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, code, message string) {
	s.respondJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

func (s *Server) respondDecodeError(w http.ResponseWriter, err error) {
	var syntaxError *json.SyntaxError
	var typeError *json.UnmarshalTypeError
	var maxBytesError *http.MaxBytesError
	switch {
	case errors.As(err, &syntaxError):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Malformed JSON payload")
	case errors.As(err, &typeError):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", fmt.Sprintf("Invalid value for field %s", typeError.Field))
	case errors.Is(err, errInvalidField):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", err.Error())
	case errors.As(err, &maxBytesError):
		s.respondError(w, http.StatusRequestEntityTooLarge, "VALIDATION_ERROR", "Request body too large")
	case errors.Is(err, io.ErrUnexpectedEOF):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Malformed JSON payload")
	case errors.Is(err, io.EOF):
		s.respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "Request body cannot be empty")
	default:
		s.respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unable to parse request body")
	}
}
