package handlers

import "driver-companion/internal/domain"

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type statusResponse struct {
	Authenticated bool           `json:"authenticated"`
	Driver        *domain.Driver `json:"driver,omitempty"`
}

type clockInRequest struct {
	Location *domain.Location `json:"location,omitempty"`
}

type toggleRequest struct {
	Collected *bool `json:"collected"`
}

type completeRequest struct {
	Code string `json:"code"`
}

type issueRequest struct {
	Description string `json:"description"`
}

type acceptResponse struct {
	AlreadyAssigned bool             `json:"already_assigned"`
	Message         string           `json:"message,omitempty"`
	View            domain.OrderView `json:"view"`
}

type listResponse struct {
	Scope  string             `json:"scope"`
	Orders []domain.OrderView `json:"orders"`
}
