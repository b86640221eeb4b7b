package handlers

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/gov-dx-sandbox/team-roster/internal/apperrors"
	"github.com/gov-dx-sandbox/team-roster/internal/models"
	"github.com/gov-dx-sandbox/team-roster/internal/monitoring"
	"github.com/gov-dx-sandbox/team-roster/internal/services"
	"github.com/gov-dx-sandbox/team-roster/internal/uploads"
	"github.com/gov-dx-sandbox/team-roster/internal/utils"
)

const (
	profileImageField = "profileImage"
	// formOverhead is the allowance for text fields and multipart framing on top of the image
	formOverhead int64 = 1 << 20
)

// MemberHandler handles HTTP requests for team members
type MemberHandler struct {
	service *services.MemberService
	uploads *uploads.Store
	errors  errorResponder
}

// NewMemberHandler creates a new member handler
func NewMemberHandler(service *services.MemberService, store *uploads.Store, exposeDetail bool) *MemberHandler {
	return &MemberHandler{
		service: service,
		uploads: store,
		errors:  errorResponder{exposeDetail: exposeDetail},
	}
}

// ListMembers handles GET /api/members
func (h *MemberHandler) ListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.service.ListMembers(r.Context())
	if err != nil {
		h.errors.respond(w, err)
		return
	}
	if members == nil {
		members = []models.Member{}
	}
	utils.RespondWithJSON(w, http.StatusOK, members)
}

// GetMember handles GET /api/members/{id}
func (h *MemberHandler) GetMember(w http.ResponseWriter, r *http.Request) {
	member, err := h.service.GetMember(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if apperrors.Is(err, apperrors.KindNotFound) {
			utils.RespondWithError(w, http.StatusNotFound, msgMemberNotFound, nil)
			return
		}
		h.errors.respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, member)
}

// CreateMember handles POST /api/members with a multipart body carrying the profile image
func (h *MemberHandler) CreateMember(w http.ResponseWriter, r *http.Request) {
	maxSize := h.uploads.MaxSize()
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+formOverhead)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		h.respondFormError(w, err)
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile(profileImageField)
	if err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, msgProfileImage, nil)
		return
	}
	defer file.Close()

	// the image is checked from its part header before the text fields; nothing is written yet
	if mediaType := header.Header.Get("Content-Type"); !uploads.IsImageType(mediaType) {
		h.errors.respond(w, apperrors.UnsupportedType(mediaType))
		return
	}
	if header.Size > maxSize {
		h.errors.respond(w, apperrors.TooLarge(maxSize))
		return
	}

	req := models.CreateMemberRequest{
		Name:  r.FormValue("name"),
		Role:  r.FormValue("role"),
		Email: r.FormValue("email"),
		Phone: r.FormValue("phone"),
		Bio:   r.FormValue("bio"),
	}
	req.Normalize()
	if err := req.Validate(); err != nil {
		h.errors.respond(w, err)
		return
	}

	filename, err := h.saveImage(r, file, header)
	if err != nil {
		h.errors.respond(w, err)
		return
	}
	monitoring.RecordUploadSize(r.Context(), header.Size)

	member, err := h.service.CreateMember(r.Context(), &req, filename)
	if err != nil {
		h.uploads.Remove(filename)
		h.errors.respond(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, member)
}

func (h *MemberHandler) saveImage(r *http.Request, file multipart.File, header *multipart.FileHeader) (string, error) {
	filename, err := h.uploads.Save(r.Context(), file, header.Header.Get("Content-Type"), filepath.Ext(header.Filename))
	if err != nil {
		if apperrors.KindOf(err) == apperrors.KindUnknown {
			return "", apperrors.Unknown("save profile image", err)
		}
		return "", err
	}
	return filename, nil
}

func (h *MemberHandler) respondFormError(w http.ResponseWriter, err error) {
	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr), errors.Is(err, multipart.ErrMessageTooLarge):
		utils.RespondWithError(w, http.StatusRequestEntityTooLarge, msgFileTooLarge, nil)
	case errors.Is(err, http.ErrNotMultipart), errors.Is(err, http.ErrMissingBoundary):
		utils.RespondWithError(w, http.StatusBadRequest, msgProfileImage, nil)
	default:
		slog.Warn("Failed to parse member form", "error", err)
		utils.RespondWithError(w, http.StatusBadRequest, msgInvalidForm, h.errors.detail(err))
	}
}
