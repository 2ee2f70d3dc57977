package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeInvalidIDs     Code = "INVALID_IDS_ERROR"
	CodeInvalidTypes   Code = "INVALID_TYPES_ERROR"
	CodeAuthentication Code = "AUTHENTICATION_ERROR"
	CodeUnauthorized   Code = "UNAUTHORIZED_ERROR"
	CodeRouting        Code = "ROUTING_ERROR"
	CodeDatabase       Code = "DATABASE_ERROR"
	CodeInternal       Code = "INTERNAL_ERROR"
)

type Metadata struct {
	Name           string
	HTTPStatus     int
	PublicMessage  string
	DetailsAllowed bool
}

var metadataByCode = map[Code]Metadata{
	CodeInvalidIDs: {
		Name:           "Invalid IDs Error",
		HTTPStatus:     http.StatusBadRequest,
		PublicMessage:  "invalid identifiers",
		DetailsAllowed: true,
	},
	CodeInvalidTypes: {
		Name:           "Invalid Types Error",
		HTTPStatus:     http.StatusBadRequest,
		PublicMessage:  "invalid request body",
		DetailsAllowed: true,
	},
	CodeAuthentication: {
		Name:           "Authentication Error",
		HTTPStatus:     http.StatusUnauthorized,
		PublicMessage:  "authentication required",
		DetailsAllowed: false,
	},
	CodeUnauthorized: {
		Name:           "Unauthorized Error",
		HTTPStatus:     http.StatusForbidden,
		PublicMessage:  "action not allowed",
		DetailsAllowed: false,
	},
	CodeRouting: {
		Name:           "Routing Error",
		HTTPStatus:     http.StatusNotFound,
		PublicMessage:  "route not found",
		DetailsAllowed: false,
	},
	CodeDatabase: {
		Name:           "Database Error",
		HTTPStatus:     http.StatusInternalServerError,
		PublicMessage:  "An error occurred while communicating with the database.",
		DetailsAllowed: false,
	},
	CodeInternal: {
		Name:           "Internal Error",
		HTTPStatus:     http.StatusInternalServerError,
		PublicMessage:  "internal server error",
		DetailsAllowed: false,
	},
}

func MetadataFor(code Code) Metadata {
	if meta, ok := metadataByCode[code]; ok {
		return meta
	}
	return metadataByCode[CodeInternal]
}

// Error is the application error forwarded to the error middleware. It carries
// a display name, a message, the code, and the cause that produced it.
type Error struct {
	code    Code
	name    string
	message string
	details any
	cause   error
}

func New(code Code, message string) *Error {
	return &Error{code: code, name: MetadataFor(code).Name, message: message}
}

func Wrap(code Code, err error, message string) *Error {
	if err == nil {
		return New(code, message)
	}
	return &Error{code: code, name: MetadataFor(code).Name, message: message, cause: err}
}

// Database wraps an unexpected dependency failure, keeping err as the cause.
func Database(err error) *Error {
	return Wrap(CodeDatabase, err, MetadataFor(CodeDatabase).PublicMessage)
}

func (e *Error) Code() Code {
	if e == nil {
		return CodeInternal
	}
	return e.code
}

func (e *Error) Name() string {
	if e == nil {
		return ""
	}
	return e.name
}

func (e *Error) Message() string {
	if e == nil {
		return ""
	}
	return e.message
}

func (e *Error) Details() any {
	if e == nil {
		return nil
	}
	return e.details
}

// Cause returns the underlying failure, or nil.
func (e *Error) Cause() error {
	if e == nil {
		return nil
	}
	return e.cause
}

func (e *Error) WithName(name string) *Error {
	if e == nil {
		return nil
	}
	e.name = name
	return e
}

func (e *Error) WithDetails(details any) *Error {
	if e == nil {
		return nil
	}
	e.details = details
	return e
}

// WithCause records a descriptive cause for errors raised locally.
func (e *Error) WithCause(description string) *Error {
	if e == nil {
		return nil
	}
	e.cause = stdErrors.New(description)
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

// Forward returns err unchanged when it is already an application error and
// wraps anything else as a database error.
func Forward(err error) error {
	if err == nil {
		return nil
	}
	if typed := As(err); typed != nil {
		return typed
	}
	return Database(err)
}
