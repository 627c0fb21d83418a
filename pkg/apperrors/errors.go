package apperrors

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrUnknownDialect    = errors.New("unknown dialect")
	ErrUnrecognizedType  = errors.New("unrecognized column type")
	ErrDanglingRelation  = errors.New("dangling relation")
	ErrNamingExhaustion  = errors.New("no free property name")
	ErrUnsupportedFormat = errors.New("unsupported output format")
)
