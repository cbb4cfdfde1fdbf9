// Package utils holds small helpers shared across the server.
package utils

import (
	"github.com/gorilla/mux"
	"github.com/sethvargo/go-password/password"
)

// NewRouter constructs the root router with strict-slash handling disabled so
// /api/foo and /api/foo/ do not redirect.
func NewRouter() *mux.Router {
	return mux.NewRouter()
}

// GeneratePIN returns a random 6-digit PIN used to protect the API.
func GeneratePIN() (string, error) {
	return password.Generate(6, 6, 0, false, true)
}
