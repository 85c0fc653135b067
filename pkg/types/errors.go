package types

import (
	"errors"
	"fmt"
)

// Domain errors for declaration loading and resolution
var (
	ErrEntityNotFound   = errors.New("entity not found")
	ErrInvalidHierarchy = errors.New("invalid hierarchy")
	ErrCyclicHierarchy  = errors.New("cyclic hierarchy")
	ErrClassNotFound    = errors.New("class not found")
	ErrFileNotFound     = errors.New("file not found")
	ErrSyntax           = errors.New("syntax error")
	ErrUnsupportedType  = errors.New("unsupported type")
	ErrMissingType      = errors.New("missing type")
	ErrInvalidRange     = errors.New("invalid range")
	ErrRecursionLimit   = errors.New("recursion limit exceeded")
	ErrMalformedExport  = errors.New("malformed export")
)

// ParseError represents a syntax error in a declaration file
type ParseError struct {
	File    string
	Line    int
	Column  int
	Message string
}

// Error implements the error interface
func (pe *ParseError) Error() string {
	return fmt.Sprintf("%s in %s on line %d column %d", pe.Message, pe.File, pe.Line, pe.Column)
}

// Unwrap makes errors.Is(err, ErrSyntax) hold for parse errors
func (pe *ParseError) Unwrap() error {
	return ErrSyntax
}
