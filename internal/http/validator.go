package http

import (
	"fmt"
	"reflect"
	"strings"

	"chess-rules/internal/core"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var validate = validator.New()

// validationMiddleware parses and validates JSON bodies for the write routes
// and stores the result in Locals for the handler
func validationMiddleware(c *fiber.Ctx) error {
	method := c.Method()
	if method == fiber.MethodGet || method == fiber.MethodDelete || method == fiber.MethodOptions {
		return c.Next()
	}

	path := c.Path()
	var requestType any

	switch {
	case strings.HasSuffix(path, "/games") && method == fiber.MethodPost:
		requestType = &core.CreateGameRequest{}
	case strings.HasSuffix(path, "/players") && method == fiber.MethodPut:
		requestType = &core.ConfigurePlayersRequest{}
	case strings.HasSuffix(path, "/moves") && method == fiber.MethodPost:
		requestType = &core.MoveRequest{}
	case strings.HasSuffix(path, "/undo") && method == fiber.MethodPost:
		requestType = &core.UndoRequest{}
	default:
		return c.Next()
	}

	if err := c.BodyParser(requestType); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid request body",
			Code:    core.ErrInvalidRequest,
			Details: err.Error(),
		})
	}

	if errs := validate.Struct(requestType); errs != nil {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "validation failed",
			Code:    core.ErrInvalidRequest,
			Details: describe(errs),
		})
	}

	c.Locals("validatedBody", requestType)
	c.Locals("validated", true)

	return c.Next()
}

// describe turns validator errors into one readable line
func describe(errs error) string {
	verrs, ok := errs.(validator.ValidationErrors)
	if !ok {
		return errs.Error()
	}

	var details strings.Builder
	for _, err := range verrs {
		if details.Len() > 0 {
			details.WriteString("; ")
		}
		switch err.Tag() {
		case "required":
			details.WriteString(fmt.Sprintf("%s is required", err.Field()))
		case "oneof":
			details.WriteString(fmt.Sprintf("%s must be one of [%s]", err.Field(), err.Param()))
		case "min", "max":
			bound := "at least"
			if err.Tag() == "max" {
				bound = "at most"
			}
			if err.Type().Kind() == reflect.String {
				details.WriteString(fmt.Sprintf("%s must be %s %s characters", err.Field(), bound, err.Param()))
			} else {
				details.WriteString(fmt.Sprintf("%s must be %s %s", err.Field(), bound, err.Param()))
			}
		default:
			details.WriteString(fmt.Sprintf("%s failed %s validation", err.Field(), err.Tag()))
		}
	}
	return details.String()
}

// validatedBody returns the body stored by validationMiddleware
func validatedBody[T any](c *fiber.Ctx) (T, error) {
	var zero T
	validated, ok := c.Locals("validated").(bool)
	if !ok || !validated {
		return zero, fmt.Errorf("validation bypass detected")
	}
	body, ok := c.Locals("validatedBody").(*T)
	if !ok || body == nil {
		return zero, fmt.Errorf("validation data missing")
	}
	return *body, nil
}

func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
