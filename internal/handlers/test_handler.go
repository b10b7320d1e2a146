package handlers

import (
	"net/http"

	"github.com/SAP-F-2025/attempt-service/internal/services"
	"github.com/SAP-F-2025/attempt-service/internal/utils"
	"github.com/gin-gonic/gin"
)

type TestHandler struct {
	BaseHandler
	catalogService services.CatalogService
	attemptService services.AttemptService
}

func NewTestHandler(catalogService services.CatalogService, attemptService services.AttemptService, logger utils.Logger) *TestHandler {
	return &TestHandler{
		BaseHandler:    NewBaseHandler(logger),
		catalogService: catalogService,
		attemptService: attemptService,
	}
}

// GetTest returns the test without its answer key
// @Summary Get test
// @Tags tests
// @Produce json
// @Param id path uint true "Test ID"
// @Success 200 {object} models.PublicTest
// @Failure 404 {object} ErrorResponse
// @Router /tests/{id} [get]
func (h *TestHandler) GetTest(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	test, err := h.catalogService.GetPublicTest(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, test)
}

// ListAttempts lists the caller's attempts for a test
// @Summary List attempts for test
// @Tags tests
// @Produce json
// @Param id path uint true "Test ID"
// @Success 200 {object} SuccessResponse{data=[]models.Attempt}
// @Failure 404 {object} ErrorResponse
// @Router /tests/{id}/attempts [get]
func (h *TestHandler) ListAttempts(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}
	userID, ok := h.currentUser(c)
	if !ok {
		return
	}

	attempts, err := h.attemptService.ListByTest(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Attempts retrieved",
		Data:    attempts,
	})
}
