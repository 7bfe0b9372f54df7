// Package handlers contains HTTP request handlers and presentation layer logic for the API endpoints
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/petrodesk/petrodesk/app/dto"
	businessflow "github.com/petrodesk/petrodesk/business_flow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

func getValidationErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return err.Field() + " is required"
	case "email":
		return "Invalid email format"
	case "min":
		return err.Field() + " must be at least " + err.Param()
	case "max":
		return err.Field() + " must be at most " + err.Param()
	case "oneof":
		return err.Field() + " must be one of: " + err.Param()
	case "uuid":
		return err.Field() + " must be a valid UUID"
	case "url":
		return err.Field() + " must be a valid URL"
	case "datetime":
		return err.Field() + " must be a date in format " + err.Param()
	case "latitude":
		return err.Field() + " must be a valid latitude"
	case "longitude":
		return err.Field() + " must be a valid longitude"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", err.Field(), err.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", err.Field(), err.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", err.Field(), err.Param())
	case "dive":
		return err.Field() + " contains an invalid element"
	default:
		return err.Field() + " is invalid"
	}
}

func validationDetails(err error) []string {
	var details []string
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, verr := range verrs {
			details = append(details, getValidationErrorMessage(verr))
		}
	}
	return details
}

// statusForCode maps taxonomy codes to HTTP status codes
func statusForCode(code string) int {
	switch code {
	case businessflow.CodeValidation:
		return fiber.StatusBadRequest
	case businessflow.CodeUnauthorized:
		return fiber.StatusForbidden
	case businessflow.CodeNotFound:
		return fiber.StatusNotFound
	case businessflow.CodeConflict:
		return fiber.StatusConflict
	case businessflow.CodeConfiguration:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

func errorResponse(c fiber.Ctx, statusCode int, message, errorCode string, details any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code:    errorCode,
			Details: details,
		},
	})
}

func successResponse(c fiber.Ctx, statusCode int, message string, data any) error {
	return c.Status(statusCode).JSON(dto.APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// flowErrorResponse resolves a business error to its HTTP representation
func flowErrorResponse(c fiber.Ctx, err error, fallbackMessage string) error {
	code := businessflow.CodeOf(err)
	message := fallbackMessage
	if be := asBusinessError(err); be != nil && be.Message != "" {
		message = be.Message
	}
	return errorResponse(c, statusForCode(code), message, code, nil)
}

func asBusinessError(err error) *businessflow.BusinessError {
	if be, ok := err.(*businessflow.BusinessError); ok {
		return be
	}
	return nil
}

// createRequestContext creates a context with timeout and request-scoped values
func createRequestContext(c fiber.Ctx, endpoint string) context.Context {
	return createRequestContextWithTimeout(c, endpoint, 30*time.Second)
}

func createRequestContextWithTimeout(c fiber.Ctx, endpoint string, timeout time.Duration) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)

	// Request-scoped values for observability
	ctx = context.WithValue(ctx, businessflow.RequestIDKey, c.Get("X-Request-ID"))
	ctx = context.WithValue(ctx, "user_agent", c.Get("User-Agent"))
	ctx = context.WithValue(ctx, "ip_address", c.IP())
	ctx = context.WithValue(ctx, "endpoint", endpoint)
	ctx = context.WithValue(ctx, "cancel_func", cancel)

	return ctx
}

func clientMetadata(c fiber.Ctx) *businessflow.ClientMetadata {
	metadata := businessflow.NewClientMetadata(c.IP(), c.Get("User-Agent"))
	if requestID := c.Get("X-Request-ID"); requestID != "" {
		metadata.SetRequestID(requestID)
	}
	return metadata
}
