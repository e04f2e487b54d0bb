package middleware

import (
	"net/http"
	"regexp"

	"github.com/bilgisen/paperharvest/internal/logger"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// QueryKey is the Locals key holding the parsed query struct.
const QueryKey = "query"

var dayKeyPattern = regexp.MustCompile(`^(0[1-9]|[12]\d|3[01])_(0[1-9]|1[0-2])_\d{4}$`)

// Validator is a struct that holds the validator instance
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator that also understands the "daykey" tag
// (a DD_MM_YYYY date).
func NewValidator() *Validator {
	v := validator.New()
	_ = v.RegisterValidation("daykey", func(fl validator.FieldLevel) bool {
		return dayKeyPattern.MatchString(fl.Field().String())
	})
	return &Validator{validate: v}
}

// Struct validates a struct against its validate tags.
func (v *Validator) Struct(s interface{}) error {
	return v.validate.Struct(s)
}

// Var validates a single value against a tag.
func (v *Validator) Var(field interface{}, tag string) error {
	return v.validate.Var(field, tag)
}

// ValidateQuery parses query parameters into a fresh value from newT (which
// carries the defaults), validates it and stores it under QueryKey.
func ValidateQuery[T any](newT func() *T) fiber.Handler {
	v := NewValidator()

	return func(c *fiber.Ctx) error {
		q := newT()
		if err := c.QueryParser(q); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid query parameters",
				"msg":   err.Error(),
			})
		}

		if err := v.Struct(q); err != nil {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":  "Invalid query parameters",
				"fields": fieldErrors(err),
			})
		}

		c.Locals(QueryKey, q)
		return c.Next()
	}
}

func fieldErrors(err error) map[string]string {
	out := make(map[string]string)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			out[fe.Field()] = fe.Tag()
		}
	}
	return out
}

// ErrorHandler is a middleware that handles errors in a consistent way
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	logger.Get().Error().
		Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", code).
		Msg("HTTP error")

	return c.Status(code).JSON(fiber.Map{
		"error": http.StatusText(code),
	})
}
