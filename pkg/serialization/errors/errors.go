package errors

import (
	"fmt"
)

var ErrConfiguration = fmt.Errorf("configuration error")
var ErrUnknownAdapter = fmt.Errorf("unknown adapter")
var ErrInvalidPredicate = fmt.Errorf("invalid predicate")
var ErrUnexpectedValue = fmt.Errorf("unexpected value")

type myError struct {
	msg    string
	target error
}

func (m myError) Error() string        { return m.msg }
func (m myError) Is(target error) bool { return target == m.target }

func NewConfigurationError(msg string) error {
	return &myError{
		msg:    msg,
		target: ErrConfiguration,
	}
}

// UnknownAdapterError is returned when an adapter name can not be found in a registry
type UnknownAdapterError struct {
	Name string
}

func NewUnknownAdapterError(name string) error {
	return &UnknownAdapterError{Name: name}
}

func (e UnknownAdapterError) Error() string {
	return fmt.Sprintf("unknown adapter \"%s\"", e.Name)
}

func (e UnknownAdapterError) Is(target error) bool {
	return target == ErrUnknownAdapter || target == ErrConfiguration
}

// InvalidPredicateError identifies a relationship declared with an unsupported condition
type InvalidPredicateError struct {
	Relationship string
	Option       string
	Value        any
}

func NewInvalidPredicateError(relationship, option string, value any) error {
	return &InvalidPredicateError{Relationship: relationship, Option: option, Value: value}
}

func (e InvalidPredicateError) Error() string {
	return fmt.Sprintf("relationship \"%s\": %s should be a string or func, got %T", e.Relationship, e.Option, e.Value)
}

func (e InvalidPredicateError) Is(target error) bool {
	return target == ErrInvalidPredicate || target == ErrConfiguration
}

// NewUnexpectedValueError reports an accessor result that does not match the declared cardinality
func NewUnexpectedValueError(relationship string, value any) error {
	return &myError{
		msg:    fmt.Sprintf("relationship \"%s\": unexpected value of type %T", relationship, value),
		target: ErrUnexpectedValue,
	}
}
