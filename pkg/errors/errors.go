package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeValidation      Code = "VALIDATION_ERROR"
	CodeWalletRequired  Code = "WALLET_REQUIRED"
	CodeNameRequired    Code = "NAME_REQUIRED"
	CodeRequiredFields  Code = "REQUIRED_FIELDS"
	CodeProfileRequired Code = "PROFILE_REQUIRED"
	CodeRoleForbidden   Code = "ROLE_FORBIDDEN"
	CodeCertInvalid     Code = "CERT_INVALID"
	CodeNotOwner        Code = "NOT_OWNER"
	CodeNotFound        Code = "NOT_FOUND"
	CodeConflict        Code = "CONFLICT"
	CodeSKUConflict     Code = "SKU_CONFLICT"
	CodeApproveFailed   Code = "APPROVE_FAILED"
	CodeIdempotency     Code = "IDEMPOTENCY_KEY_REUSED"
	CodeInternal        Code = "INTERNAL_ERROR"
	CodeDependency      Code = "DEPENDENCY_ERROR"
)

type Metadata struct {
	HTTPStatus     int
	Retryable      bool
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeValidation: {
		HTTPStatus:     http.StatusBadRequest,
		Retryable:      false,
		PublicMessage:  "validation failed",
		DetailsAllowed: true,
	},
	CodeWalletRequired: {
		HTTPStatus:     http.StatusBadRequest,
		Retryable:      false,
		PublicMessage:  "wallet address is required",
		DetailsAllowed: true,
	},
	CodeNameRequired: {
		HTTPStatus:     http.StatusBadRequest,
		Retryable:      false,
		PublicMessage:  "name is required",
		DetailsAllowed: true,
	},
	CodeRequiredFields: {
		HTTPStatus:     http.StatusBadRequest,
		Retryable:      false,
		PublicMessage:  "required fields missing",
		DetailsAllowed: true,
	},
	CodeProfileRequired: {
		HTTPStatus:     http.StatusUnauthorized,
		Retryable:      false,
		PublicMessage:  "no profile for this wallet",
		DetailsAllowed: false,
	},
	CodeRoleForbidden: {
		HTTPStatus:     http.StatusForbidden,
		Retryable:      false,
		PublicMessage:  "role not permitted for this action",
		DetailsAllowed: false,
	},
	CodeCertInvalid: {
		HTTPStatus:     http.StatusForbidden,
		Retryable:      false,
		PublicMessage:  "certification invalid or expired",
		DetailsAllowed: true,
	},
	CodeNotOwner: {
		HTTPStatus:     http.StatusForbidden,
		Retryable:      false,
		PublicMessage:  "caller is not the current owner",
		DetailsAllowed: false,
	},
	CodeNotFound: {
		HTTPStatus:     http.StatusNotFound,
		Retryable:      false,
		PublicMessage:  "resource not found",
		DetailsAllowed: false,
	},
	CodeConflict: {
		HTTPStatus:     http.StatusConflict,
		Retryable:      false,
		PublicMessage:  "conflict detected",
		DetailsAllowed: false,
	},
	CodeSKUConflict: {
		HTTPStatus:     http.StatusConflict,
		Retryable:      false,
		PublicMessage:  "product sku already exists for this farmer",
		DetailsAllowed: true,
	},
	CodeApproveFailed: {
		HTTPStatus:     http.StatusUnprocessableEntity,
		Retryable:      false,
		PublicMessage:  "approval could not be applied",
		DetailsAllowed: true,
	},
	CodeIdempotency: {
		HTTPStatus:     http.StatusConflict,
		Retryable:      false,
		PublicMessage:  "idempotency key reused",
		DetailsAllowed: true,
	},
	CodeInternal: {
		HTTPStatus:     http.StatusInternalServerError,
		Retryable:      true,
		PublicMessage:  "internal server error",
		DetailsAllowed: false,
	},
	CodeDependency: {
		HTTPStatus:     http.StatusServiceUnavailable,
		Retryable:      true,
		PublicMessage:  "dependency unavailable",
		DetailsAllowed: true,
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

type Error struct {
	code    Code
	message string
	field   string
	hint    string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, message: message, cause: err}
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Field() string {
	if e == nil {
		return ""
	}
	return e.field
}

func (e *Error) Hint() string {
	if e == nil {
		return ""
	}
	return e.hint
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

// WithField names the offending request field for validation failures.
func (e *Error) WithField(field string) *Error {
	if e == nil {
		return nil
	}
	e.field = field
	return e
}

// WithHint attaches a short remediation hint surfaced to the client.
func (e *Error) WithHint(hint string) *Error {
	if e == nil {
		return nil
	}
	e.hint = hint
	return e
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.code, e.message)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func As(err error) *Error {
	if err == nil {
		return nil
	}
	var typed *Error
	if stdErrors.As(err, &typed) {
		return typed
	}
	return nil
}
