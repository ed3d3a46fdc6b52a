package handlers

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/rentroll/internal/models"
	"github.com/stwalsh4118/rentroll/internal/testutil"
)

type upload struct {
	name    string
	content []byte
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	return buf.Bytes()
}

func (api *testAPI) uploadPhotos(path, token string, files ...upload) *httptest.ResponseRecorder {
	api.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for _, f := range files {
		part, err := mw.CreateFormFile(photoField, f.name)
		require.NoError(api.t, err)
		_, err = part.Write(f.content)
		require.NoError(api.t, err)
	}
	require.NoError(api.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	return w
}

// leasedTenant returns a tenant with an active lease.
func (api *testAPI) leasedTenant() (*models.User, *models.Tenant, *models.Lease) {
	landlord, _, unit := api.landlordWithUnit()
	tenant := api.fx.Tenant()
	lease := api.fx.Lease(tenant.ID, unit.ID, models.LeaseActive, testutil.Date(2024, 1, 1))
	return landlord, tenant, lease
}

func TestMaintenanceHandler_Lifecycle(t *testing.T) {
	api := newTestAPI(t)
	landlord, tenant, lease := api.leasedTenant()

	w := api.do(http.MethodPost, "/api/maintenance", api.token(tenant.User), map[string]interface{}{
		"leaseId":     lease.ID,
		"title":       "Leaking faucet",
		"description": "Kitchen sink drips all night",
		"priority":    "HIGH",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.MaintenanceRequest
	decode(t, w, &created)
	assert.Equal(t, models.MaintenancePending, created.Status)
	assert.Equal(t, models.PriorityHigh, created.Priority)
	assert.Empty(t, created.Photos)

	path := fmt.Sprintf("/api/maintenance/%d", created.ID)

	w = api.do(http.MethodPut, path, api.token(landlord), map[string]string{
		"status":     "COMPLETED",
		"contractor": "Pipes Inc",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.MaintenanceRequest
	decode(t, w, &updated)
	assert.Equal(t, models.MaintenanceCompleted, updated.Status)
	assert.NotNil(t, updated.CompletedAt)

	w = api.do(http.MethodGet, "/api/maintenance", api.token(tenant.User), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.MaintenanceRequest
	decode(t, w, &list)
	assert.Len(t, list, 1)

	assert.Equal(t, http.StatusForbidden, api.do(http.MethodDelete, path, api.token(tenant.User), nil).Code)
	assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, path, api.token(landlord), nil).Code)
}

func TestMaintenanceHandler_UploadPhotos(t *testing.T) {
	api := newTestAPI(t)
	_, tenant, lease := api.leasedTenant()
	request := api.fx.Maintenance(lease.ID, models.MaintenancePending, models.PriorityMedium)
	token := api.token(tenant.User)
	path := fmt.Sprintf("/api/maintenance/%d/photos", request.ID)

	photo := pngBytes(t)
	w := api.uploadPhotos(path, token, upload{"sink.png", photo}, upload{"floor.png", photo})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp PhotosResponse
	decode(t, w, &resp)
	assert.Equal(t, "Photos uploaded successfully", resp.Message)
	require.Len(t, resp.Photos, 2)
	prefix := fmt.Sprintf("/uploads/maintenance/%d/", request.ID)
	for _, url := range resp.Photos {
		assert.True(t, strings.HasPrefix(url, prefix), url)
	}

	served := api.do(http.MethodGet, resp.Photos[0], "", nil)
	assert.Equal(t, http.StatusOK, served.Code)
	assert.Equal(t, photo, served.Body.Bytes())

	w = api.do(http.MethodGet, fmt.Sprintf("/api/maintenance/%d", request.ID), token, nil)
	var stored models.MaintenanceRequest
	decode(t, w, &stored)
	assert.ElementsMatch(t, resp.Photos, []string(stored.Photos))
}

func TestMaintenanceHandler_UploadRejected(t *testing.T) {
	api := newTestAPI(t)
	_, tenant, lease := api.leasedTenant()
	request := api.fx.Maintenance(lease.ID, models.MaintenancePending, models.PriorityLow)
	outsider := api.fx.Tenant()
	path := fmt.Sprintf("/api/maintenance/%d/photos", request.ID)

	w := api.uploadPhotos(path, api.token(tenant.User), upload{"notes.txt", []byte("just some text")})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.uploadPhotos(path, api.token(tenant.User))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	_, message, _ := apiError(t, w)
	assert.Equal(t, "at least one file is required", message)

	w = api.uploadPhotos(path, api.token(outsider.User), upload{"sink.png", pngBytes(t)})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodPost, path, api.token(tenant.User), map[string]string{"files": "nope"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
