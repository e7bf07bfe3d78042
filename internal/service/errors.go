package service

import (
	"fmt"
	"net/http"
)

// AuthError is a rejected login. Code is the HTTP status reported to the caller.
type AuthError struct {
	Code    int
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Code, http.StatusText(e.Code), e.Message)
}

func forbidden(format string, args ...any) *AuthError {
	return &AuthError{Code: http.StatusForbidden, Message: fmt.Sprintf(format, args...)}
}

func internalError(format string, args ...any) *AuthError {
	return &AuthError{Code: http.StatusInternalServerError, Message: fmt.Sprintf(format, args...)}
}

// ConfigError reports an inconsistent user configuration found at startup.
type ConfigError struct {
	Username string
	Reason   string
}

func (e *ConfigError) Error() string {
	if e.Username == "" {
		return fmt.Sprintf("user configuration: %s", e.Reason)
	}
	return fmt.Sprintf("user configuration for %q: %s", e.Username, e.Reason)
}
