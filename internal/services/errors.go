// Package services holds the business rules of the rental domain.
//
// Every operation takes the calling authz.Actor explicitly. Services
// decide access through the authz package and return the sentinel errors
// below, wrapped with a human-readable message.
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/stwalsh4118/rentroll/internal/authz"
)

// Service-level errors
var (
	ErrNotFound      = errors.New("not found")
	ErrForbidden     = authz.ErrForbidden
	ErrConflict      = errors.New("conflict")
	ErrBadRequest    = errors.New("bad request")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotConfigured = errors.New("not configured")
)

// Message returns the human-readable part of a service error, without the
// sentinel prefix.
func Message(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{ErrNotFound, ErrForbidden, ErrConflict, ErrBadRequest, ErrUnauthorized, ErrNotConfigured} {
		if errors.Is(err, sentinel) {
			if trimmed := strings.TrimPrefix(msg, sentinel.Error()+": "); trimmed != msg {
				return trimmed
			}
		}
	}
	return msg
}

func notFound(what string) error {
	return fmt.Errorf("%w: %s not found", ErrNotFound, what)
}

// authorize runs the policy check and replaces its denial with message.
func authorize(actor authz.Actor, res authz.Resource, act authz.Action, owner authz.Owner, message string) error {
	if err := authz.Authorize(actor, res, act, owner); err != nil {
		return fmt.Errorf("%w: %s", ErrForbidden, message)
	}
	return nil
}
