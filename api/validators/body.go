package validators

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	pkgerrors "github.com/angelmondragon/packfinderz-carts/pkg/errors"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	_ = v.RegisterValidation("uuid_any_case", isUUID)
	return v
}

// isUUID accepts the hyphenated textual form in either letter case. The
// built-in uuid tag only matches lower case.
func isUUID(fl validator.FieldLevel) bool {
	raw := fl.Field().String()
	if len(raw) != 36 {
		return false
	}
	_, err := uuid.Parse(raw)
	return err == nil
}

// DecodeJSONBody decodes and validates the request body into dest.
// Failures are reported as INVALID_TYPES_ERROR.
func DecodeJSONBody(r *http.Request, dest any, message string) error {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return pkgerrors.New(pkgerrors.CodeInvalidTypes, message).
			WithCause(fmt.Sprintf("The request body could not be decoded: %v", err))
	}
	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err, message)
	}
	return nil
}

func formatValidationErrors(err error, message string) *pkgerrors.Error {
	if errs, ok := err.(validator.ValidationErrors); ok {
		details := map[string]string{}
		lines := make([]string, 0, len(errs))
		for _, fieldErr := range errs {
			msg := validationMessage(fieldErr)
			details[fieldErr.Namespace()] = msg
			lines = append(lines, fmt.Sprintf("* %s: %s", fieldErr.Namespace(), msg))
		}
		return pkgerrors.New(pkgerrors.CodeInvalidTypes, message).
			WithCause("One or more properties had invalid types or values.\n" + strings.Join(lines, "\n")).
			WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInvalidTypes, err, message)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max", "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "uuid":
		return "must be a valid identifier"
	case "unique":
		return "must not contain duplicates"
	}
	return "is invalid"
}
