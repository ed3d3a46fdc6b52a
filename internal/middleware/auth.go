package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/stwalsh4118/rentroll/internal/authz"
	"github.com/stwalsh4118/rentroll/internal/services"
)

// ActorKey is the context key for the authenticated authz.Actor.
const ActorKey = "actor"

// Authenticator resolves a bearer token to the calling actor.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*authz.Actor, error)
}

// Auth requires a valid bearer token and stores the resolved actor in the
// context. Missing or rejected tokens get a 401 with a Bearer challenge.
func Auth(authn Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			unauthorized(c, "Not authenticated")
			return
		}

		actor, err := authn.Authenticate(c.Request.Context(), token)
		switch {
		case errors.Is(err, services.ErrUnauthorized):
			unauthorized(c, services.Message(err))
			return
		case err != nil:
			if log := GetLogger(c); log != nil {
				log.Error("Failed to authenticate request", err, nil)
			}
			_ = c.Error(err)
			abortWithError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Failed to authenticate request")
			return
		}

		c.Set(ActorKey, *actor)
		c.Next()
	}
}

// GetActor returns the actor stored by Auth.
func GetActor(c *gin.Context) (authz.Actor, bool) {
	v, exists := c.Get(ActorKey)
	if !exists {
		return authz.Actor{}, false
	}
	actor, ok := v.(authz.Actor)
	return actor, ok
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func unauthorized(c *gin.Context, message string) {
	c.Header("WWW-Authenticate", "Bearer")
	abortWithError(c, http.StatusUnauthorized, "UNAUTHORIZED", message)
}
