package server

import (
	"github.com/rezonia/zugferd/internal/hooks"
	"github.com/rezonia/zugferd/internal/model"
)

// ProfileResponse describes one supported profile
type ProfileResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Guideline string `json:"guideline"`
}

// ValidationResponse is the response for the validate endpoint
type ValidationResponse struct {
	Valid   bool            `json:"valid"`
	Profile string          `json:"profile"`
	Results []*hooks.Result `json:"results"`
}

// InfoResponse is the response for info endpoint
type InfoResponse struct {
	Format string `json:"format"`
	Size   int    `json:"size"`
}

// ErrorResponse is the standard error response
type ErrorResponse struct {
	Error     string                    `json:"error"`
	Details   string                    `json:"details,omitempty"`
	Failures  []model.ValidationFailure `json:"failures,omitempty"`
	Validator string                    `json:"validator,omitempty"`
	Detail    interface{}               `json:"detail,omitempty"`
}
