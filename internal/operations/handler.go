package operations

import (
	"net/http"
	"regexp"

	"github.com/Xcraft-Inc/wimlib-imagex/internal/common"
	"github.com/Xcraft-Inc/wimlib-imagex/internal/validation"

	"github.com/labstack/echo/v4"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) StartOperation(c echo.Context) error {
	archiveName := c.Param("name")
	if err := validation.ValidateArchiveName(archiveName); err != nil {
		return common.SendBadRequest(c, "Invalid archive name: "+err.Error())
	}

	var req OperationRequest
	if err := c.Bind(&req); err != nil {
		return common.SendBadRequest(c, "Invalid request format")
	}

	if err := ValidateOperationRequest(req); err != nil {
		return common.SendBadRequest(c, "Invalid operation request: "+err.Error())
	}

	operationID, err := h.service.StartOperation(c.Request().Context(), archiveName, req)
	if err != nil {
		return common.SendInternalError(c, err.Error())
	}

	return common.SendSuccess(c, OperationResponse{OperationID: operationID})
}

func (h *Handler) StreamOperation(c echo.Context) error {
	operationID := c.Param("operationId")
	if err := validateOperationID(operationID); err != nil {
		return common.SendBadRequest(c, "Invalid operation ID format")
	}

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().WriteHeader(http.StatusOK)

	if flusher, ok := c.Response().Writer.(http.Flusher); ok {
		flusher.Flush()
	}

	return h.service.StreamOperation(c.Request().Context(), operationID, c.Response().Writer)
}

func (h *Handler) GetOperationStatus(c echo.Context) error {
	operationID := c.Param("operationId")
	if err := validateOperationID(operationID); err != nil {
		return common.SendBadRequest(c, "Invalid operation ID format")
	}

	operation, exists := h.service.GetOperation(operationID)
	if !exists {
		return common.SendNotFound(c, "Operation not found")
	}

	return common.SendSuccess(c, operation)
}

var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-4[0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}$`)

func validateOperationID(operationID string) error {
	if !uuidRegex.MatchString(operationID) {
		return validation.ErrInvalidCharacters
	}
	return nil
}
