package api

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
)

func ErrorHandler(c *fiber.Ctx, err error) error {
	if apiError, ok := err.(Error); ok {
		return c.Status(apiError.Code).JSON(apiError)
	}
	if valError, ok := err.(ValidationError); ok {
		return c.Status(valError.Status).JSON(valError)
	}
	if fiberError, ok := err.(*fiber.Error); ok {
		return c.Status(fiberError.Code).JSON(NewError(fiberError.Code, fiberError.Message))
	}

	apiError := NewError(fiber.StatusInternalServerError, "internal server error")
	return c.Status(apiError.Code).JSON(apiError)
}

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

// Error implements the error interface
func (e Error) Error() string {
	return e.Message
}

func NewError(code int, err string) Error {
	return Error{
		Code:    code,
		Message: err,
	}
}

type ValidationError struct {
	Status int               `json:"status"`
	Errors map[string]string `json:"errors"`
}

func (e ValidationError) Error() string {
	return "validation failed"
}

func NewValidationError(errors map[string]string) ValidationError {
	return ValidationError{
		Status: fiber.StatusUnprocessableEntity,
		Errors: errors,
	}
}

func ErrBadRequest() Error {
	return Error{
		Code:    fiber.StatusBadRequest,
		Message: "invalid JSON request",
	}
}

func ErrInvalidID() Error {
	return Error{
		Code:    fiber.StatusBadRequest,
		Message: "invalid id given",
	}
}

func ErrNotFound[T any](arg T, resource string) Error {
	return Error{
		Code:    fiber.StatusNotFound,
		Message: fmt.Sprintf("%s with %v not found", resource, arg),
	}
}

// ErrProcessing is the opaque failure surfaced when any model or store call
// fails mid-pipeline. Detail stays in the server log.
func ErrProcessing() Error {
	return Error{
		Code:    fiber.StatusInternalServerError,
		Message: "an error occurred while processing your request",
	}
}
