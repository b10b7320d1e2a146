package handlers

import (
	"errors"
	"net/http"

	apperrors "github.com/SAP-F-2025/attempt-service/internal/errors"
	"github.com/SAP-F-2025/attempt-service/internal/services"
	"github.com/gin-gonic/gin"
)

func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err, validationErrors)
		return
	}

	var integrityError *apperrors.IntegrityError
	if errors.As(err, &integrityError) {
		h.RespondWithError(c, http.StatusUnprocessableEntity, "Submission does not match the test", err, map[string]interface{}{
			"question_id": integrityError.QuestionID,
			"reason":      integrityError.Err.Error(),
		})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		h.RespondWithError(c, http.StatusUnprocessableEntity, businessRuleError.Message, err, map[string]interface{}{
			"rule":    businessRuleError.Rule,
			"context": businessRuleError.Context,
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		h.RespondWithError(c, http.StatusForbidden, "Access denied", err, map[string]interface{}{
			"resource": permissionError.Resource,
			"action":   permissionError.Action,
			"reason":   permissionError.Reason,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrTestNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Test not found", err)
	case errors.Is(err, services.ErrAttemptNotFound):
		h.RespondWithError(c, http.StatusNotFound, "Attempt not found", err)
	case errors.Is(err, services.ErrAttemptAccessDenied):
		h.RespondWithError(c, http.StatusForbidden, "Access denied to attempt", err)
	case errors.Is(err, services.ErrAttemptAlreadySubmitted):
		h.respondConflict(c, err, "Attempt already submitted", "attempt_terminal")
	case errors.Is(err, services.ErrAttemptTimeExpired):
		h.respondConflict(c, err, "Attempt time has expired", "attempt_terminal")
	case errors.Is(err, services.ErrAttemptLimitExceeded):
		h.respondConflict(c, err, "Maximum attempts exceeded", "attempt_limit")
	case errors.Is(err, services.ErrAttemptCannotStart):
		h.respondConflict(c, err, "Cannot start new attempt", "attempt_conflict")
	case errors.Is(err, services.ErrResultsNotAvailable):
		h.respondConflict(c, err, "Results are not available for this attempt", "results_unavailable")
	default:
		h.RespondWithError(c, http.StatusInternalServerError, "Internal server error", err)
	}
}

func (h *BaseHandler) respondConflict(c *gin.Context, err error, message, code string) {
	h.LogWarn(c, message, "status_code", http.StatusConflict, "error", err.Error())
	c.JSON(http.StatusConflict, ErrorResponse{
		Message: message,
		Code:    code,
	})
}
