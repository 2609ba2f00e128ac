package archives

import (
	"errors"
	"os"
	"strconv"

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

func (h *Handler) ListArchives(c echo.Context) error {
	return common.SendSuccess(c, ListResponse{Archives: h.service.List()})
}

func (h *Handler) GetArchiveInfo(c echo.Context) error {
	name := c.Param("name")

	metadata, err := h.service.Info(c.Request().Context(), name)
	if err != nil {
		return sendServiceError(c, err)
	}

	return common.SendSuccess(c, InfoResponse{Archive: name, Metadata: metadata})
}

func (h *Handler) GetArchiveDir(c echo.Context) error {
	name := c.Param("name")

	listing, err := h.service.Dir(c.Request().Context(), name)
	if err != nil {
		return sendServiceError(c, err)
	}

	return common.SendSuccess(c, DirResponse{Archive: name, Listing: listing})
}

func (h *Handler) VerifyArchive(c echo.Context) error {
	name := c.Param("name")

	if err := h.service.Verify(c.Request().Context(), name); err != nil {
		if isValidationError(err) {
			return common.SendBadRequest(c, err.Error())
		}
		return common.SendSuccess(c, VerifyResponse{Archive: name, Valid: false, Error: err.Error()})
	}

	return common.SendSuccess(c, VerifyResponse{Archive: name, Valid: true})
}

func (h *Handler) UpdateArchive(c echo.Context) error {
	name := c.Param("name")

	var req UpdateRequest
	if err := c.Bind(&req); err != nil {
		return common.SendBadRequest(c, "Invalid request format")
	}

	output, err := h.service.Update(c.Request().Context(), name, req)
	if err != nil {
		return sendServiceError(c, err)
	}

	return common.SendSuccess(c, UpdateResponse{Archive: name, Output: output})
}

func (h *Handler) ExtractArchiveFile(c echo.Context) error {
	name := c.Param("name")
	pathInArchive := c.QueryParam("path")

	imageIndex := 0
	if raw := c.QueryParam("image"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return common.SendBadRequest(c, "Invalid image index")
		}
		imageIndex = parsed
	}

	content, err := h.service.ExtractFile(c.Request().Context(), name, pathInArchive, imageIndex)
	if err != nil {
		return sendServiceError(c, err)
	}

	return common.SendText(c, content)
}

func (h *Handler) DeleteArchive(c echo.Context) error {
	name := c.Param("name")

	if err := h.service.Delete(name); err != nil {
		return sendServiceError(c, err)
	}

	return common.SendSuccess(c, map[string]string{"status": "deleted", "archive": name})
}

func (h *Handler) RenameArchive(c echo.Context) error {
	name := c.Param("name")

	var req RenameRequest
	if err := c.Bind(&req); err != nil {
		return common.SendBadRequest(c, "Invalid request format")
	}

	if err := h.service.Rename(name, req.NewName); err != nil {
		return sendServiceError(c, err)
	}

	return common.SendSuccess(c, map[string]string{"status": "renamed", "archive": req.NewName})
}

func (h *Handler) DownloadArchive(c echo.Context) error {
	name := c.Param("name")

	path, err := h.service.ArchivePath(name)
	if err != nil {
		return sendServiceError(c, err)
	}
	if _, err := os.Stat(path); err != nil {
		return common.SendNotFound(c, "Archive not found")
	}

	return c.Attachment(path, name)
}

func sendServiceError(c echo.Context, err error) error {
	if isValidationError(err) {
		return common.SendBadRequest(c, err.Error())
	}
	return common.SendInternalError(c, err.Error())
}

func isValidationError(err error) bool {
	return errors.Is(err, validation.ErrInvalidArchiveName) ||
		errors.Is(err, validation.ErrPathTraversal) ||
		errors.Is(err, validation.ErrInvalidCharacters)
}
