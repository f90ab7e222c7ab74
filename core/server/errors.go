/*
SPDX-License-Identifier: Apache-2.0

Copyright 2024 The Taxinomia Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    https://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/taxinomia-grid/core/logging"
	"github.com/google/taxinomia-grid/datasources"
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// statusFor maps errors from view processing onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errUnknownView), errors.Is(err, datasources.ErrUnknownSource):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err with the request id and writes it as JSON.
func respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	level := slog.LevelWarn
	if statusCode >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	logging.FromContext(r.Context()).Log(r.Context(), level, "request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
	)
	respondJSON(w, statusCode, ErrorResponse{Error: err.Error()})
}

func respondJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
