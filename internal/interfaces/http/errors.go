package http

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/jhoicas/printshop-api/internal/application/dto"
	"github.com/jhoicas/printshop-api/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// reportar los nombres json/query en vez de los nombres de campo de Go
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "query", "form"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return f.Name
	})
	return v
}

// bindBody parsea y valida un cuerpo JSON. Los fallos de validación nunca llegan a un caso de uso.
func bindBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return fmt.Errorf("%w: malformed body", domain.ErrInvalidInput)
	}
	return validate.Struct(out)
}

// bindQuery parsea y valida los parámetros de query.
func bindQuery(c *fiber.Ctx, out interface{}) error {
	if err := c.QueryParser(out); err != nil {
		return fmt.Errorf("%w: malformed query", domain.ErrInvalidInput)
	}
	return validate.Struct(out)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "uuid":
		return "must be a valid id"
	case "email":
		return "must be a valid email address"
	default:
		return "is invalid"
	}
}

// respondError traduce un error a su código de estado y un mensaje para el usuario.
// Las claves duplicadas y las referencias rotas tienen mensajes distintos.
func respondError(c *fiber.Ctx, err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		fields := make([]dto.FieldError, 0, len(ve))
		for _, fe := range ve {
			fields = append(fields, dto.FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
		}
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "invalid request", Fields: fields})
	}

	status, body := fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "unexpected error"}
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status, body = fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	case errors.Is(err, domain.ErrNotFound):
		status, body = fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: "resource not found"}
	case errors.Is(err, domain.ErrUnauthorized):
		status, body = fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "authentication required"}
	case errors.Is(err, domain.ErrForbidden):
		status, body = fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Message: "permission denied, contact an administrator"}
	case errors.Is(err, domain.ErrDuplicate):
		status, body = fiber.StatusConflict, dto.ErrorResponse{Code: "DUPLICATE", Message: "a record with these details already exists"}
	case errors.Is(err, domain.ErrInvalidReference):
		status, body = fiber.StatusUnprocessableEntity, dto.ErrorResponse{Code: "INVALID_REFERENCE", Message: err.Error()}
	case errors.Is(err, domain.ErrAlreadyInvoiced):
		status, body = fiber.StatusConflict, dto.ErrorResponse{Code: "ALREADY_INVOICED", Message: "one or more jobs are already invoiced"}
	case errors.Is(err, domain.ErrInvalidTransition):
		status, body = fiber.StatusConflict, dto.ErrorResponse{Code: "INVALID_TRANSITION", Message: err.Error()}
	case errors.Is(err, domain.ErrConflict):
		status, body = fiber.StatusConflict, dto.ErrorResponse{Code: "CONFLICT", Message: err.Error()}
	case errors.Is(err, domain.ErrUnavailable):
		status, body = fiber.StatusServiceUnavailable, dto.ErrorResponse{Code: "UNAVAILABLE", Message: "service temporarily unavailable, please retry"}
	}
	if status == fiber.StatusInternalServerError {
		requestLogger(c).Error().Err(err).Msg("petición fallida")
	}
	return c.Status(status).JSON(body)
}

// ErrorHandler es el manejador de errores de fiber para lo que ningún handler tradujo
// (rutas desconocidas, límites de cuerpo, panics recuperados por el middleware).
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code == fiber.StatusInternalServerError {
		requestLogger(c).Error().Err(err).Msg("error no controlado")
		return c.Status(code).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: "unexpected error"})
	}
	return c.Status(code).JSON(dto.ErrorResponse{Code: "HTTP_ERROR", Message: err.Error()})
}

// paramID copia el parámetro :id fuera del buffer reutilizable de la petición de fiber.
func paramID(c *fiber.Ctx) string {
	return utils.CopyString(c.Params("id"))
}
