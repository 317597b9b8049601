package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/subscription-service/pkg/util"
)

// parseAndValidate decodes the JSON body into dest and runs struct
// validation, converting failures into BadRequest domain errors.
func parseAndValidate(c *fiber.Ctx, validate *validator.Validate, dest any) error {
	if err := c.BodyParser(dest); err != nil {
		return apperrors.NewBadRequest("Invalid request body")
	}
	if err := validate.Struct(dest); err != nil {
		return apperrors.NewBadRequest(validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request"
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("field %s is required", fe.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("field %s must be a valid email", fe.Field()))
		case "uuid":
			msgs = append(msgs, fmt.Sprintf("field %s must be a valid id", fe.Field()))
		case "gt", "gte":
			msgs = append(msgs, fmt.Sprintf("field %s must be a positive number", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("field %s is invalid", fe.Field()))
		}
	}
	return strings.Join(msgs, ", ")
}
