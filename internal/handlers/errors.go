// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
)

// ErrorResponse is the JSON body written for failed requests.
type ErrorResponse struct {
	Status int    `json:"status"`
	Error  string `json:"error"`
}

// ErrorHandler writes errors as JSON. It is installed as the echo
// HTTPErrorHandler.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := http.StatusText(code)

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	} else {
		slog.Error("unhandled error", "uri", c.Request().RequestURI, "error", err)
	}

	var writeErr error
	if c.Request().Method == http.MethodHead {
		writeErr = c.NoContent(code)
	} else {
		writeErr = c.JSON(code, ErrorResponse{Status: code, Error: message})
	}
	if writeErr != nil {
		slog.Error("failed to write error response", "error", writeErr)
	}
}
