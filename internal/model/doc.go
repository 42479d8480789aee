// Package model defines domain entities and data structures for the Globetrotter API.
//
// The model package contains all struct definitions for domain objects, request/response
// types, and error definitions. Models are used across all layers of the application.
//
// # Domain Entities
//
// Core domain entities include:
//
//   - Destination: A city with clues, fun facts and trivia used to build rounds
//   - User: Registered player with aggregate game statistics and play history
//   - Game: A play session holding an append-only sequence of rounds
//   - Round: One question instance, pending until an answer is submitted
//
// # JSON Serialization
//
// All models use json struct tags for API serialization:
//
//	type Destination struct {
//	    ID      string   `json:"id"`
//	    City    string   `json:"city"`
//	    Country string   `json:"country"`
//	    Clues   []string `json:"clues"`
//	}
//
// # Validation
//
// Request types expose a Validate method returning field-level errors:
//
//	if errs := req.Validate(); len(errs) > 0 {
//	    return model.NewValidationError(errs)
//	}
//
// # Error Types
//
// RFC 9457 Problem Details errors are defined in errors.go:
//
//	type ProblemDetails struct {
//	    Type    string    `json:"type"`
//	    Title   string    `json:"title"`
//	    Status  int       `json:"status"`
//	    Detail  string    `json:"detail"`
//	}
package model
