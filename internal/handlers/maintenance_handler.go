package handlers

import (
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/stwalsh4118/rentroll/internal/errors"
	"github.com/stwalsh4118/rentroll/internal/services"
)

// photoField is the multipart field carrying uploaded photos.
const photoField = "files"

// MaintenanceHandler handles /api/maintenance.
type MaintenanceHandler struct {
	service services.MaintenanceService
}

// NewMaintenanceHandler creates a new MaintenanceHandler.
func NewMaintenanceHandler(service services.MaintenanceService) *MaintenanceHandler {
	return &MaintenanceHandler{service: service}
}

// PhotosResponse lists the URLs of freshly uploaded photos.
type PhotosResponse struct {
	Message string   `json:"message"`
	Photos  []string `json:"photos"`
}

// List handles GET /api/maintenance.
func (h *MaintenanceHandler) List(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	requests, err := h.service.List(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err, "Failed to list maintenance requests")
		return
	}
	c.JSON(http.StatusOK, requests)
}

// Get handles GET /api/maintenance/:id.
func (h *MaintenanceHandler) Get(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	request, err := h.service.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, err, "Failed to load maintenance request")
		return
	}
	c.JSON(http.StatusOK, request)
}

// Create handles POST /api/maintenance.
func (h *MaintenanceHandler) Create(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	var in services.MaintenanceInput
	if !bindJSON(c, &in) {
		return
	}

	request, err := h.service.Create(c.Request.Context(), actor, in)
	if err != nil {
		respondError(c, err, "Failed to create maintenance request")
		return
	}
	c.JSON(http.StatusCreated, request)
}

// Update handles PUT /api/maintenance/:id.
func (h *MaintenanceHandler) Update(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var patch services.MaintenancePatch
	if !bindJSON(c, &patch) {
		return
	}

	request, err := h.service.Update(c.Request.Context(), actor, id, patch)
	if err != nil {
		respondError(c, err, "Failed to update maintenance request")
		return
	}
	c.JSON(http.StatusOK, request)
}

// Delete handles DELETE /api/maintenance/:id.
func (h *MaintenanceHandler) Delete(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, err, "Failed to delete maintenance request")
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadPhotos handles POST /api/maintenance/:id/photos with one or more
// images in the multipart "files" field.
func (h *MaintenanceHandler) UploadPhotos(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		apierrors.BadRequest(c, "Expected a multipart form", nil)
		return
	}
	headers := form.File[photoField]

	uploads := make([]services.PhotoUpload, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			closeAll(uploads)
			apierrors.BadRequest(c, "Failed to read uploaded file", map[string]interface{}{
				"file": header.Filename,
			})
			return
		}
		uploads = append(uploads, services.PhotoUpload{Filename: header.Filename, Content: f})
	}
	defer closeAll(uploads)

	urls, err := h.service.UploadPhotos(c.Request.Context(), actor, id, uploads)
	if err != nil {
		respondError(c, err, "Failed to upload photos")
		return
	}
	c.JSON(http.StatusOK, PhotosResponse{Message: "Photos uploaded successfully", Photos: urls})
}

func closeAll(uploads []services.PhotoUpload) {
	for _, u := range uploads {
		if f, ok := u.Content.(multipart.File); ok {
			_ = f.Close()
		}
	}
}
