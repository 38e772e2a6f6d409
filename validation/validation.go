// Package validation evaluates a set of rules against an aggregate and reports
// every failing rule at once.
package validation

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrValidationFailed matches any *ValidationFailed via errors.Is.
var ErrValidationFailed = errors.New("validation failed")

// Error describes why a rule rejected its target.
type Error struct {
	Property string `json:"property"`
	Message  string `json:"message"`
}

func (e Error) String() string {
	return e.Property + ": " + e.Message
}

// Rule is a predicate over a target plus the fixed error it reports when the predicate fails.
type Rule[T any] interface {
	IsValid(target T) bool
	Violation() Error
}

type funcRule[T any] struct {
	err   Error
	check func(T) bool
}

func (r funcRule[T]) IsValid(target T) bool { return r.check(target) }
func (r funcRule[T]) Violation() Error      { return r.err }

// NewRule builds a rule from a predicate.
func NewRule[T any](property, message string, check func(T) bool) Rule[T] {
	return funcRule[T]{err: Error{Property: property, Message: message}, check: check}
}

// Validator collects rules for one target.
type Validator[T any] struct {
	target T
	rules  []Rule[T]
}

// Of starts a validator for target.
func Of[T any](target T) *Validator[T] {
	return &Validator[T]{target: target}
}

// Register adds a rule. A nil rule is skipped so that policies may leave slots empty.
func (v *Validator[T]) Register(rule Rule[T]) *Validator[T] {
	if rule != nil {
		v.rules = append(v.rules, rule)
	}
	return v
}

// Result runs every registered rule, in registration order, without stopping at the first failure.
func (v *Validator[T]) Result() Result {
	var errs []Error
	for _, rule := range v.rules {
		if !rule.IsValid(v.target) {
			errs = append(errs, rule.Violation())
		}
	}
	return Result{Errors: errs}
}

// Result is the outcome of a validation run.
type Result struct {
	Errors []Error
}

func (r Result) HasErrors() bool {
	return len(r.Errors) > 0
}

// Err returns a *ValidationFailed carrying all errors, or nil when every rule passed.
func (r Result) Err() error {
	if !r.HasErrors() {
		return nil
	}
	return &ValidationFailed{Errors: append([]Error(nil), r.Errors...)}
}

// ValidationFailed aggregates every rule error from one validation run.
type ValidationFailed struct {
	Errors []Error
}

func (e *ValidationFailed) Error() string {
	parts := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		parts[i] = ve.String()
	}
	return fmt.Sprintf("%s: [%s]", ErrValidationFailed, strings.Join(parts, ", "))
}

func (e *ValidationFailed) Is(target error) bool {
	return target == ErrValidationFailed
}

// HTTPStatus reports validation failures as bad requests.
func (e *ValidationFailed) HTTPStatus() int {
	return http.StatusBadRequest
}
