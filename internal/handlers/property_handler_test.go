package handlers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/rentroll/internal/models"
)

func TestPropertyHandler_CRUD(t *testing.T) {
	api := newTestAPI(t)
	landlord := api.fx.User(models.RoleLandlord)
	token := api.token(landlord)

	w := api.do(http.MethodPost, "/api/properties", token, map[string]string{
		"title":      "Maple Court",
		"address":    "12 Maple Ave",
		"city":       "Toronto",
		"province":   "ON",
		"postalCode": "M4C 1A1",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created models.Property
	decode(t, w, &created)
	assert.Equal(t, landlord.ID, created.LandlordID)
	assert.Equal(t, "M4C 1A1", created.PostalCode)

	path := fmt.Sprintf("/api/properties/%d", created.ID)

	w = api.do(http.MethodPut, path, token, map[string]string{"title": "Maple Court East"})
	require.Equal(t, http.StatusOK, w.Code)
	var updated models.Property
	decode(t, w, &updated)
	assert.Equal(t, "Maple Court East", updated.Title)
	assert.Equal(t, "12 Maple Ave", updated.Address)

	w = api.do(http.MethodGet, "/api/properties", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Property
	decode(t, w, &list)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	assert.Equal(t, http.StatusNoContent, api.do(http.MethodDelete, path, token, nil).Code)

	w = api.do(http.MethodGet, path, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	_, message, _ := apiError(t, w)
	assert.Equal(t, "Property not found", message)
}

func TestPropertyHandler_Access(t *testing.T) {
	api := newTestAPI(t)
	owner, property, _ := api.landlordWithUnit()
	other := api.fx.User(models.RoleLandlord)
	tenant := api.fx.Tenant()
	path := fmt.Sprintf("/api/properties/%d", property.ID)

	assert.Equal(t, http.StatusOK, api.do(http.MethodGet, path, api.token(owner), nil).Code)

	w := api.do(http.MethodGet, path, api.token(other), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	code, message, _ := apiError(t, w)
	assert.Equal(t, "FORBIDDEN", code)
	assert.Equal(t, "Not authorized to view this property", message)

	w = api.do(http.MethodGet, "/api/properties", api.token(other), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []models.Property
	decode(t, w, &list)
	assert.Empty(t, list)

	w = api.do(http.MethodPost, "/api/properties", api.token(tenant.User), map[string]string{
		"title": "Mine", "address": "1 Rd", "city": "Ottawa", "province": "ON", "postalCode": "K1A 0A1",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
	_, message, _ = apiError(t, w)
	assert.Equal(t, "Only landlords can create properties", message)
}

func TestPropertyHandler_Validation(t *testing.T) {
	api := newTestAPI(t)
	token := api.token(api.fx.User(models.RoleLandlord))

	w := api.do(http.MethodPost, "/api/properties", token, map[string]string{"title": "Only a title"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	_, _, details := apiError(t, w)
	assert.Equal(t, "This field is required", details["postalCode"])
	assert.Contains(t, details, "address")
	assert.NotContains(t, details, "title")

	w = api.do(http.MethodGet, "/api/properties/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
