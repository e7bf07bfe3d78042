package http

import (
	"authn-simple/internal/domain"
	"authn-simple/internal/service"
)

type VersionResponse struct {
	Version string `json:"version"`
}

type DescriptionResponse struct {
	Keys []domain.DescriptionKey `json:"keys"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func versionResponse() VersionResponse {
	return VersionResponse{Version: service.APIVersion}
}

// successResponse omits mechanism when none is configured.
func successResponse(identity domain.Identity) domain.Identity {
	return domain.Identity{Username: identity.Username, Mechanism: identity.Mechanism}
}

func descriptionResponse() DescriptionResponse {
	return DescriptionResponse{Keys: []domain.DescriptionKey{
		{Name: "username"},
		{Name: "password", Hide: true},
	}}
}
