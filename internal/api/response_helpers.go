// internal/api/response_helpers.go
package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	apperrors "github.com/zageabb/reflex-AgentDemo/internal/errors"
	"github.com/zageabb/reflex-AgentDemo/internal/utils"
)

// APIResponse is the JSON envelope of every API endpoint.
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     *APIError   `json:"error,omitempty"`
	Message   string      `json:"message,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id,omitempty"`
}

// APIError is the error part of APIResponse.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// ResponseHelper writes APIResponse envelopes.
type ResponseHelper struct{}

// NewResponseHelper creates a response helper
func NewResponseHelper() *ResponseHelper {
	return &ResponseHelper{}
}

// Success writes a 200 response
func (rh *ResponseHelper) Success(c *gin.Context, data interface{}, message ...string) {
	rh.write(c, http.StatusOK, data, message...)
}

// Accepted writes a 202 response for work continuing in the background
func (rh *ResponseHelper) Accepted(c *gin.Context, data interface{}, message ...string) {
	rh.write(c, http.StatusAccepted, data, message...)
}

// Created writes a 201 response
func (rh *ResponseHelper) Created(c *gin.Context, data interface{}, message ...string) {
	if len(message) == 0 {
		message = []string{"resource created"}
	}
	rh.write(c, http.StatusCreated, data, message...)
}

func (rh *ResponseHelper) write(c *gin.Context, status int, data interface{}, message ...string) {
	response := &APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now(),
		RequestID: rh.getRequestID(c),
	}
	if len(message) > 0 {
		response.Message = message[0]
	}
	c.JSON(status, response)
}

// sanitizeErrorMessage drops messages that look like they carry secrets.
func sanitizeErrorMessage(message string) string {
	lower := strings.ToLower(message)
	for _, pattern := range []string{"api_key", "apikey", "secret", "token", "password"} {
		if strings.Contains(lower, pattern) {
			return "An internal error occurred"
		}
	}
	return message
}

// Error writes an error response
func (rh *ResponseHelper) Error(c *gin.Context, statusCode int, errorCode, message string, details ...string) {
	apiError := &APIError{
		Code:    errorCode,
		Message: sanitizeErrorMessage(message),
	}
	if len(details) > 0 {
		apiError.Details = sanitizeErrorMessage(details[0])
	}
	utils.GetAPIMetrics().RecordError(errorCode, "api")

	c.JSON(statusCode, &APIResponse{
		Success:   false,
		Error:     apiError,
		Timestamp: time.Now(),
		RequestID: rh.getRequestID(c),
	})
}

// BadRequest writes a 400 response
func (rh *ResponseHelper) BadRequest(c *gin.Context, message string, details ...string) {
	rh.Error(c, http.StatusBadRequest, ErrorBadRequest, message, details...)
}

// NotFound writes a 404 response for a resource kind
func (rh *ResponseHelper) NotFound(c *gin.Context, resource string, details ...string) {
	message := "resource not found"
	if resource != "" {
		message = resource + " not found"
	}
	rh.Error(c, http.StatusNotFound, rh.getResourceNotFoundCode(resource), message, details...)
}

// InternalError writes a 500 response
func (rh *ResponseHelper) InternalError(c *gin.Context, message string, details ...string) {
	rh.Error(c, http.StatusInternalServerError, ErrorInternalError, message, details...)
}

// Conflict writes a 409 response
func (rh *ResponseHelper) Conflict(c *gin.Context, message string, details ...string) {
	rh.Error(c, http.StatusConflict, ErrorConflict, message, details...)
}

// HandleError maps an application error onto a status code. resource names
// what a not-found error refers to.
func (rh *ResponseHelper) HandleError(c *gin.Context, err error, resource string) {
	var appErr *apperrors.AppError
	switch {
	case apperrors.IsNotFoundError(err):
		rh.NotFound(c, resource, err.Error())
	case apperrors.IsValidationError(err):
		code := ErrorBadRequest
		if resource == "scenario" {
			code = ErrorScenarioInvalid
		}
		message := err.Error()
		if errors.As(err, &appErr) {
			message = appErr.Message
		}
		rh.Error(c, http.StatusBadRequest, code, message)
	case apperrors.IsConflictError(err):
		rh.Conflict(c, err.Error())
	case apperrors.IsScenarioFetchError(err):
		rh.Error(c, http.StatusBadGateway, ErrorScenarioFetchFailed, "scenario could not be loaded", err.Error())
	default:
		rh.InternalError(c, "request failed", err.Error())
	}
}

// getRequestID returns the id set by requestIDMiddleware
func (rh *ResponseHelper) getRequestID(c *gin.Context) string {
	return c.GetString("request_id")
}

// getResourceNotFoundCode maps a resource kind to its error code
func (rh *ResponseHelper) getResourceNotFoundCode(resource string) string {
	switch resource {
	case "scenario":
		return ErrorScenarioNotFound
	case "snippet":
		return ErrorSnippetNotFound
	case "session":
		return ErrorSessionNotFound
	default:
		return ErrorNotFound
	}
}
