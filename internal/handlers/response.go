package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"medstore/internal/apperrors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// parseBody binds the JSON body into dst and validates it.
func parseBody(c *fiber.Ctx, validate *validator.Validate, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		return apperrors.Validation("Invalid request body", nil)
	}
	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return apperrors.Validation("Invalid request body", nil)
		}
		errorMessages := make(map[string]string, len(validationErrors))
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return apperrors.Validation("Validation failed", errorMessages)
	}
	return nil
}

// writeError renders err as {success:false, code, message[, errors]} with its HTTP status.
func writeError(c *fiber.Ctx, logger *slog.Logger, err error) error {
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		appErr = apperrors.Internal("Internal server error", err)
	}
	if appErr.Status >= fiber.StatusInternalServerError {
		logger.ErrorContext(c.UserContext(), "request failed",
			slog.String("method", c.Method()),
			slog.String("path", c.Path()),
			slog.Any("error", err),
		)
	}

	body := fiber.Map{
		"success": false,
		"code":    appErr.Code,
		"message": appErr.Message,
	}
	if len(appErr.Fields) > 0 {
		body["errors"] = appErr.Fields
	}
	return c.Status(appErr.Status).JSON(body)
}

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// parseDate accepts an RFC 3339 timestamp or a plain calendar date.
func parseDate(field, value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperrors.Validation("Validation failed", map[string]string{
		field: fmt.Sprintf("Field '%s' must be an ISO-8601 date", field),
	})
}
