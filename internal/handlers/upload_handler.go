package handlers

import (
	"net/http"

	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/1auto-market/vehiclestore-backend/internal/storage"
	"github.com/1auto-market/vehiclestore-backend/utils"
	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	Storage storage.MediaStorage
}

func NewUploadHandler(media storage.MediaStorage) *UploadHandler {
	return &UploadHandler{Storage: media}
}

// UploadImage validates the size and the sniffed content type of the "image"
// form file before streaming it to media storage.
func (h *UploadHandler) UploadImage(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, storage.MaxUploadSize)

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		respondError(c, domain.FieldError("image", "no file provided or file too large (max 10MB)"))
		return
	}
	defer file.Close()

	contentType, name, err := storage.SniffImage(file, header.Filename)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	url, err := h.Storage.Upload(ctx, file, name, contentType)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Image uploaded successfully", gin.H{
		"url":  url,
		"size": header.Size,
		"type": contentType,
	}))
}
