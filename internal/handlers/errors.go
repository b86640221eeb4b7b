package handlers

import (
	"net/http"

	"github.com/gov-dx-sandbox/team-roster/internal/apperrors"
	"github.com/gov-dx-sandbox/team-roster/internal/utils"
)

const (
	msgMemberNotFound     = "Member not found"
	msgProfileImage       = "Profile image is required"
	msgOnlyImages         = "Only image files are allowed"
	msgFileTooLarge       = "File is too large. Maximum size is 2MB"
	msgDuplicateEmail     = "Member with this email already exists"
	msgServiceUnavailable = "Service temporarily unavailable. Please try again later."
	msgInvalidForm        = "Invalid form data"
)

// statusFor maps every error kind to its HTTP status
func statusFor(kind apperrors.Kind) int {
	switch kind {
	case apperrors.KindValidation, apperrors.KindDuplicate, apperrors.KindUnsupportedType:
		return http.StatusBadRequest
	case apperrors.KindNotFound:
		return http.StatusNotFound
	case apperrors.KindTooLarge:
		return http.StatusRequestEntityTooLarge
	case apperrors.KindUnavailable:
		return http.StatusServiceUnavailable
	case apperrors.KindUnknown:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// errorResponder writes apperrors as JSON bodies, hiding internal detail in production
type errorResponder struct {
	exposeDetail bool
}

func (e errorResponder) respond(w http.ResponseWriter, err error) {
	kind := apperrors.KindOf(err)
	status := statusFor(kind)

	switch kind {
	case apperrors.KindValidation:
		tagged, _ := apperrors.As(err)
		utils.RespondWithValidationError(w, tagged.Message, tagged.Fields)
	case apperrors.KindDuplicate:
		utils.RespondWithError(w, status, msgDuplicateEmail, nil)
	case apperrors.KindNotFound:
		tagged, _ := apperrors.As(err)
		utils.RespondWithError(w, status, tagged.Message, nil)
	case apperrors.KindUnsupportedType:
		utils.RespondWithError(w, status, msgOnlyImages, nil)
	case apperrors.KindTooLarge:
		utils.RespondWithError(w, status, msgFileTooLarge, nil)
	case apperrors.KindUnavailable:
		utils.RespondWithError(w, status, msgServiceUnavailable, e.detail(err))
	case apperrors.KindUnknown:
		utils.RespondWithError(w, status, utils.GenericErrorMessage, e.detail(err))
	default:
		utils.RespondWithError(w, status, utils.GenericErrorMessage, e.detail(err))
	}
}

func (e errorResponder) detail(err error) error {
	if e.exposeDetail {
		return err
	}
	return nil
}
