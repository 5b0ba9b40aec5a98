package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/1auto-market/vehiclestore-backend/internal/core/domain"
	"github.com/1auto-market/vehiclestore-backend/internal/models"
	"github.com/1auto-market/vehiclestore-backend/internal/services/assistant"
	"github.com/1auto-market/vehiclestore-backend/internal/services/listing"
	"github.com/1auto-market/vehiclestore-backend/internal/storage"
	"github.com/1auto-market/vehiclestore-backend/internal/validation"
	"github.com/1auto-market/vehiclestore-backend/utils"
	"github.com/gin-gonic/gin"
)

const (
	maxImages       = 10
	maxPostAdMemory = 32 << 20
)

type VehicleHandler struct {
	Listings  listing.Service
	Assistant assistant.Service
	Storage   storage.MediaStorage
}

func NewVehicleHandler(listings listing.Service, ai assistant.Service, media storage.MediaStorage) *VehicleHandler {
	return &VehicleHandler{Listings: listings, Assistant: ai, Storage: media}
}

// PostAd accepts either a JSON listing or a multipart form with the listing in
// the "data" field plus "images[]" and "paymentProof" files.
func (h *VehicleHandler) PostAd(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var details models.VehicleDetails
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImages*storage.MaxUploadSize+storage.MaxUploadSize)
		form, err := c.MultipartForm()
		if err != nil {
			respondError(c, domain.FieldError("body", "must be a valid multipart form"))
			return
		}
		data := form.Value["data"]
		if len(data) == 0 || json.Unmarshal([]byte(data[0]), &details) != nil {
			respondError(c, domain.FieldError("data", "must be a valid JSON object"))
			return
		}

		files := append(append([]*multipart.FileHeader{}, form.File["images[]"]...), form.File["images"]...)
		if len(details.Images)+len(files) > maxImages {
			respondError(c, domain.FieldError("images", fmt.Sprintf("images must contain at most %d items", maxImages)))
			return
		}
		// Reject bad listings before anything reaches media storage.
		if err := h.Listings.Validate(details); err != nil {
			respondError(c, err)
			return
		}
		for _, fh := range files {
			url, err := h.upload(c, fh)
			if err != nil {
				respondError(c, err)
				return
			}
			details.Images = append(details.Images, url)
		}
		if proof := form.File["paymentProof"]; len(proof) > 0 {
			url, err := h.upload(c, proof[0])
			if err != nil {
				respondError(c, err)
				return
			}
			details.PaymentProof = url
		}
	} else if !bindJSON(c, &details) {
		return
	}

	vehicle, err := h.Listings.Submit(ctx, principal(c), details)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("Vehicle submitted for review", vehicle))
}

func (h *VehicleHandler) upload(c *gin.Context, fh *multipart.FileHeader) (string, error) {
	if fh.Size > storage.MaxUploadSize {
		return "", domain.FieldError(fh.Filename, "file is too large (max 10MB)")
	}
	file, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	contentType, name, err := storage.SniffImage(file, fh.Filename)
	if err != nil {
		return "", err
	}
	return h.Storage.Upload(c.Request.Context(), file, name, contentType)
}

// ValidateStep checks one wizard step without storing anything.
func (h *VehicleHandler) ValidateStep(c *gin.Context) {
	step := c.Query("step")
	target, ok := validation.NewStep(step)
	if !ok {
		respondError(c, domain.FieldError("step", "step must be one of: "+strings.Join(validation.Steps(), ", ")))
		return
	}
	if !bindJSON(c, target) {
		return
	}
	if err := validation.Struct(target); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Step is valid", gin.H{"step": step, "valid": true}))
}

func (h *VehicleHandler) Describe(c *gin.Context) {
	var input models.DescriptionRequest
	if !bindJSON(c, &input) {
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	text, err := h.Assistant.Describe(ctx, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Description generated", gin.H{"description": text}))
}

func (h *VehicleHandler) GetAd(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	v, err := h.Listings.Get(ctx, principal(c), c.Query("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Vehicle fetched successfully", v))
}

func (h *VehicleHandler) UpdateAd(c *gin.Context) {
	patch, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, 1<<20))
	if err != nil || !json.Valid(patch) {
		respondError(c, domain.FieldError("body", "must be a valid JSON object"))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	v, err := h.Listings.Update(ctx, principal(c), c.Query("id"), patch)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Vehicle updated successfully", v))
}

func (h *VehicleHandler) DeleteAd(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.Listings.Delete(ctx, principal(c), c.Query("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Vehicle deleted successfully", nil))
}

func (h *VehicleHandler) MyAds(c *gin.Context) {
	q, err := parseVehicleQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.Listings.ListBySeller(ctx, principal(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Vehicles fetched successfully", page))
}

func (h *VehicleHandler) Browse(c *gin.Context) {
	q, err := parseVehicleQuery(c)
	if err != nil {
		respondError(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.Listings.Browse(ctx, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Vehicles fetched successfully", page))
}

func (h *VehicleHandler) GetVehicle(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	v, err := h.Listings.GetPublic(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Vehicle fetched successfully", v))
}

func (h *VehicleHandler) RecordView(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	views, err := h.Listings.RecordView(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("View recorded", gin.H{"views": views}))
}
