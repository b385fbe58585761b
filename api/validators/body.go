package validators

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgerrors "github.com/organictrace/organictrace-backend/pkg/errors"
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
	return v
}

// DecodeJSONBody decodes the request body into dest with unknown fields
// rejected, then runs the struct validation tags.
func DecodeJSONBody(r *http.Request, dest any) error {
	defer func() {
		io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid request body").
			WithDetails(map[string]any{"error": err.Error()})
	}
	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) *pkgerrors.Error {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "validation failed")
	}

	details := map[string]string{}
	for _, fieldErr := range errs {
		details[fieldErr.Field()] = validationMessage(fieldErr)
	}

	message := "validation failed"
	if len(errs) == 1 {
		message = errs[0].Field() + " " + validationMessage(errs[0])
	}
	typed := pkgerrors.New(missingFieldCode(errs), message).WithDetails(details)
	if len(errs) == 1 {
		typed = typed.WithField(errs[0].Field())
	}
	return typed
}

// missingFieldCode picks the API's field-specific code when every failure is
// a missing required field: walletAddress and name carry their own codes,
// anything else reports REQUIRED_FIELDS. Malformed values stay generic.
func missingFieldCode(errs validator.ValidationErrors) pkgerrors.Code {
	for _, fieldErr := range errs {
		if fieldErr.Tag() != "required" {
			return pkgerrors.CodeValidation
		}
	}
	if len(errs) == 1 {
		switch errs[0].Field() {
		case "walletAddress":
			return pkgerrors.CodeWalletRequired
		case "name":
			return pkgerrors.CodeNameRequired
		}
	}
	return pkgerrors.CodeRequiredFields
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of %s", fe.Param())
	case "uuid":
		return "must be a valid uuid"
	}
	return "is invalid"
}
