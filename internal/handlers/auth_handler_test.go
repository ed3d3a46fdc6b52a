package handlers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/rentroll/internal/models"
)

func TestAuthHandler_RegisterAndLogin(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Lena Landlord",
		"email":    "Lena@Example.com",
		"password": "secret123",
		"role":     "LANDLORD",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var registered map[string]interface{}
	decode(t, w, &registered)
	assert.Equal(t, "bearer", registered["token_type"])
	assert.NotEmpty(t, registered["access_token"])
	user := registered["user"].(map[string]interface{})
	assert.Equal(t, "lena@example.com", user["email"])
	assert.Equal(t, "LANDLORD", user["role"])
	assert.NotContains(t, user, "password")

	w = api.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Someone Else",
		"email":    "lena@example.com",
		"password": "secret123",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	code, message, _ := apiError(t, w)
	assert.Equal(t, "CONFLICT", code)
	assert.Equal(t, "Email already registered", message)

	w = api.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "lena@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var session TokenResponse
	decode(t, w, &session)
	assert.Equal(t, "bearer", session.TokenType)

	w = api.do(http.MethodGet, "/api/auth/me", session.AccessToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var me models.User
	decode(t, w, &me)
	assert.Equal(t, "lena@example.com", me.Email)
	assert.Equal(t, models.RoleLandlord, me.Role)
}

func TestAuthHandler_RegisterDefaultsToTenant(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Tom Tenant",
		"email":    "tom@example.com",
		"password": "secret123",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var session TokenResponse
	decode(t, w, &session)
	assert.Equal(t, models.RoleTenant, session.User.Role)

	var tenants int64
	require.NoError(t, api.db.Model(&models.Tenant{}).Where("user_id = ?", session.User.ID).Count(&tenants).Error)
	assert.Equal(t, int64(1), tenants)
}

func TestAuthHandler_RegisterValidation(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "No Email",
		"password": "123",
		"role":     "OWNER",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	code, _, details := apiError(t, w)
	assert.Equal(t, "VALIDATION_ERROR", code)
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")
	assert.Contains(t, details, "role")

	w = api.do(http.MethodPost, "/api/auth/register", "", "{not json")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	code, message, _ := apiError(t, w)
	assert.Equal(t, "BAD_REQUEST", code)
	assert.Equal(t, "Invalid request body", message)
}

func TestAuthHandler_LoginRejected(t *testing.T) {
	api := newTestAPI(t)
	require.Equal(t, http.StatusCreated, api.do(http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": "Tom", "email": "tom@example.com", "password": "secret123",
	}).Code)

	w := api.do(http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "tom@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "Bearer", w.Header().Get("WWW-Authenticate"))
	_, message, _ := apiError(t, w)
	assert.Equal(t, "Invalid email or password", message)
}

func TestAuthHandler_Verify(t *testing.T) {
	api := newTestAPI(t)
	user := api.fx.User(models.RoleLandlord)

	w := api.do(http.MethodGet, "/api/auth/verify", api.token(user), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp VerifyResponse
	decode(t, w, &resp)
	assert.True(t, resp.Valid)
	assert.Equal(t, user.ID, resp.User.ID)

	w = api.do(http.MethodGet, "/api/auth/verify", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	_, message, _ := apiError(t, w)
	assert.Equal(t, "Could not validate credentials", message)
}

func TestAuthHandler_Google(t *testing.T) {
	api := newTestAPI(t)

	w := api.do(http.MethodPost, "/api/auth/google", "", map[string]string{"credential": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	_, message, _ := apiError(t, w)
	assert.Equal(t, "Missing Google credential", message)

	w = api.do(http.MethodPost, "/api/auth/google", "", map[string]string{"credential": "id-token"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	_, message, _ = apiError(t, w)
	assert.Equal(t, "Google OAuth not configured", message)
}
