package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"suidoc/internal/encryption"
	"suidoc/internal/http/middleware"
	"suidoc/internal/service"
	"suidoc/internal/sui"
	"suidoc/internal/walrus"
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
//
// Parameters:
// - status: HTTP status code to return
// - code: machine-readable short error code (e.g., "INVALID_ID", "NOT_FOUND", "INTERNAL_ERROR")
// - message: human-readable safe message (no internal details)
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

type errorMapping struct {
	err     error
	status  int
	code    string
	message string
}

// serviceErrors maps domain errors to responses. The first match wins; an
// empty message means the error text itself is safe to return.
var serviceErrors = []errorMapping{
	{service.ErrNotFound, fiber.StatusNotFound, "NOT_FOUND", "document not found"},
	{service.ErrForbidden, fiber.StatusForbidden, "FORBIDDEN", ""},
	{service.ErrIDRequired, fiber.StatusBadRequest, "INVALID_ID", ""},
	{service.ErrReaderNil, fiber.StatusBadRequest, "FILE_REQUIRED", "file is required"},
	{service.ErrEmptyFile, fiber.StatusBadRequest, "EMPTY_FILE", ""},
	{service.ErrTooLarge, fiber.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", ""},
	{service.ErrTitleRequired, fiber.StatusBadRequest, "TITLE_REQUIRED", ""},
	{service.ErrInvalidAddress, fiber.StatusBadRequest, "INVALID_ADDRESS", ""},
	{service.ErrNoAddresses, fiber.StatusBadRequest, "INVALID_ADDRESS", ""},
	{service.ErrInvalidStatus, fiber.StatusBadRequest, "INVALID_STATUS", ""},
	{service.ErrInvalidField, fiber.StatusBadRequest, "INVALID_FIELD", ""},
	{service.ErrFieldNotFound, fiber.StatusNotFound, "FIELD_NOT_FOUND", ""},
	{service.ErrAlreadySigned, fiber.StatusConflict, "ALREADY_SIGNED", ""},
	{service.ErrDocumentCompleted, fiber.StatusConflict, "DOCUMENT_COMPLETED", ""},
	{service.ErrInvalidSignature, fiber.StatusUnauthorized, "INVALID_SIGNATURE", "signature is not valid for this wallet"},
	{service.ErrChallengeNotFound, fiber.StatusUnauthorized, "CHALLENGE_NOT_FOUND", ""},
	{walrus.ErrUnknownService, fiber.StatusBadRequest, "UNKNOWN_WALRUS_SERVICE", ""},
	{walrus.ErrPublishFailed, fiber.StatusBadGateway, "WALRUS_PUBLISH_FAILED", ""},
	{walrus.ErrBlobNotFound, fiber.StatusNotFound, "BLOB_NOT_FOUND", ""},
	{walrus.ErrBlobTooLarge, fiber.StatusBadGateway, "BLOB_TOO_LARGE", ""},
	{encryption.ErrDecrypt, fiber.StatusUnprocessableEntity, "DECRYPT_FAILED", "blob could not be decrypted"},
	{encryption.ErrMalformed, fiber.StatusUnprocessableEntity, "DECRYPT_FAILED", "blob could not be decrypted"},
	{sui.ErrTxTimeout, fiber.StatusGatewayTimeout, "CHAIN_TIMEOUT", ""},
	{sui.ErrTxFailed, fiber.StatusBadGateway, "CHAIN_TX_FAILED", "transaction failed on chain"},
}

// writeServiceError translates a service error into the standard error body.
// Unknown errors become a 500 without details.
func writeServiceError(c *fiber.Ctx, err error) error {
	for _, m := range serviceErrors {
		if errors.Is(err, m.err) {
			msg := m.message
			if msg == "" {
				msg = m.err.Error()
			}
			return writeError(c, m.status, m.code, msg)
		}
	}
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := fiber.StatusInternalServerError
		if e, ok := err.(*fiber.Error); ok {
			status = e.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusUnauthorized:
			return writeError(c, status, "UNAUTHORIZED", err.Error())
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, status, "FILE_TOO_LARGE", "request body too large")
		default:
			return writeError(c, status, "INTERNAL_ERROR", "internal server error")
		}
	}
}
