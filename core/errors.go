package core

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindValidation       Kind = "validation"
	KindConversion       Kind = "conversion"
	KindInsufficientData Kind = "insufficient_data"
	KindInvalidOrdering  Kind = "invalid_ordering"
	KindNoTariffFound    Kind = "no_tariff_found"
	KindLookup           Kind = "lookup"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrConversion       = errors.New("conversion failed")
	ErrInsufficientData = errors.New("insufficient data")
	ErrInvalidOrdering  = errors.New("invalid ordering")
	ErrNoTariffFound    = errors.New("no tariff found")
	ErrLookup           = errors.New("lookup failed")
	ErrNotFound         = errors.New("not found")
)

var sentinels = map[Kind]error{
	KindValidation:       ErrValidation,
	KindConversion:       ErrConversion,
	KindInsufficientData: ErrInsufficientData,
	KindInvalidOrdering:  ErrInvalidOrdering,
	KindNoTariffFound:    ErrNoTariffFound,
	KindLookup:           ErrLookup,
}

// Error a failed build; Field names the offending input when there is one
type Error struct {
	Kind    Kind
	Field   string
	Message string
	Err     error
}

func (e *Error) Error() string {
	text := string(e.Kind)
	if e.Field != "" {
		text = fmt.Sprintf("%s: %s", text, e.Field)
	}
	if e.Message != "" {
		text = fmt.Sprintf("%s: %s", text, e.Message)
	}
	if e.Err != nil {
		text = fmt.Sprintf("%s: %v", text, e.Err)
	}
	return text
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return sentinels[e.Kind] == target
}

func validationError(field, message string) *Error {
	return &Error{Kind: KindValidation, Field: field, Message: message}
}

func lookupError(message string, err error) *Error {
	return &Error{Kind: KindLookup, Message: message, Err: err}
}

// KindOf returns the kind of a build error, empty for foreign errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
