package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"philosofium/backend/services"
	"philosofium/backend/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validationError carries per-field messages to the error handler.
type validationError struct {
	msg    string
	fields map[string]string
}

func (e *validationError) Error() string { return e.msg }

// bindJSON parses the body into dst and runs its validate tags.
func bindJSON(c *fiber.Ctx, dst interface{}) error {
	if err := c.BodyParser(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return &validationError{
				msg:    "invalid request body",
				fields: map[string]string{typeErr.Field: "must be a " + typeErr.Type.String()},
			}
		}
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return &validationError{msg: fe.Message}
		}
		return fiber.NewError(fiber.StatusBadRequest, "Cannot parse JSON")
	}

	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = describe(fe)
		}
		return &validationError{msg: "invalid request body", fields: fields}
	}
	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gte":
		return "must be >= " + fe.Param()
	case "lte":
		return "must be <= " + fe.Param()
	default:
		return "failed " + fe.Tag()
	}
}

// paramID reads a positive integer path parameter.
func paramID(c *fiber.Ctx, name string) (uint, error) {
	id, err := c.ParamsInt(name)
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Invalid %s", name))
	}
	return uint(id), nil
}

func currentUserID(c *fiber.Ctx) uint {
	id, _ := c.Locals("user_id").(uint)
	return id
}

func statusForKind(kind services.Kind) int {
	switch kind {
	case services.KindNotFound:
		return fiber.StatusNotFound
	case services.KindNotEnrolled:
		return fiber.StatusForbidden
	case services.KindAlreadyEnrolled:
		return fiber.StatusConflict
	case services.KindValidation:
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusInternalServerError
	}
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return string(services.KindValidation)
	case fiber.StatusUnauthorized:
		return "UNAUTHORIZED"
	case fiber.StatusForbidden:
		return "FORBIDDEN"
	case fiber.StatusNotFound:
		return string(services.KindNotFound)
	case fiber.StatusConflict:
		return "CONFLICT"
	}
	if status >= fiber.StatusInternalServerError {
		return string(services.KindInternal)
	}
	return "ERROR"
}

// ErrorHandler renders every error returned by a handler in the error envelope.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var verr *validationError
	if errors.As(err, &verr) {
		return utils.ValidationError(c, verr.msg, verr.fields)
	}

	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		msg := ferr.Message
		if ferr.Code >= fiber.StatusInternalServerError {
			msg = "internal error"
		}
		return utils.Error(c, ferr.Code, codeForStatus(ferr.Code), msg)
	}

	kind := services.KindOf(err)
	return utils.Error(c, statusForKind(kind), string(kind), services.Message(err))
}
