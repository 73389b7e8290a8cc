// Package lisperr defines the package-system error taxonomy.
//
// Errors are either continuable (they carry a default recovery that the
// caller may apply and proceed) or fatal (the operation is abandoned and no
// state has been changed).
package lisperr

import (
	"fmt"
	"strings"
)

// ErrorType defines the category of the error.
type ErrorType string

const (
	TypeAlreadyExists    ErrorType = "AlreadyExists"
	TypeClosedPackage    ErrorType = "ClosedPackageViolation"
	TypeNotAccessible    ErrorType = "NotAccessible"
	TypeNameConflict     ErrorType = "NameConflict"
	TypeProtectedPackage ErrorType = "ProtectedPackage"
	TypeNotFound         ErrorType = "NotFound"
	TypeTypeError        ErrorType = "TypeError"
	TypePackageInUse     ErrorType = "PackageInUse"
)

// PackageError is the interface for all package-system errors.
type PackageError interface {
	error
	Type() ErrorType
	// Continuable reports whether the error carries a default recovery.
	Continuable() bool
	// Restart describes the default recovery. Empty for fatal errors.
	Restart() string
}

// BaseError provides common fields for package errors.
type BaseError struct {
	Msg     string
	ErrType ErrorType
	Package string // Name of the package involved, if any
	Recover string // Default recovery; empty when the error is fatal
}

func (e *BaseError) Error() string {
	return fmt.Sprintf("[%s] %s", e.ErrType, e.Msg)
}

func (e *BaseError) Type() ErrorType {
	return e.ErrType
}

func (e *BaseError) Continuable() bool {
	return e.Recover != ""
}

func (e *BaseError) Restart() string {
	return e.Recover
}

// AlreadyExistsError reports a package name or nickname collision.
type AlreadyExistsError struct {
	BaseError
	Name     string // The colliding name or nickname
	Existing string // Primary name of the package that already owns Name
}

// ClosedPackageError reports a mutation attempted on a closed package.
type ClosedPackageError struct {
	BaseError
	Operation string // "intern", "export", "use", ...
	Subject   string // Symbol or package the operation was applied to
}

// NotAccessibleError reports a symbol that cannot be reached from a package.
type NotAccessibleError struct {
	BaseError
	Symbol string
}

// NameConflictError reports two distinct symbols competing for one name.
type NameConflictError struct {
	BaseError
	Name      string // The contested name
	Symbol    string // The symbol the operation tried to make visible
	Competing string // The symbol already visible under Name
	In        string // Package in which the conflict would occur
}

func (e *NameConflictError) Error() string {
	return fmt.Sprintf("[%s] %s: %s and %s would both be visible as %q in %s",
		e.ErrType, e.Msg, e.Symbol, e.Competing, e.Name, e.In)
}

// ProtectedPackageError reports an operation forbidden on a bootstrap package.
type ProtectedPackageError struct {
	BaseError
}

// NotFoundError reports a package designator that names no live package.
type NotFoundError struct {
	BaseError
	Name string
}

// TypeError reports an argument that is not a valid designator.
type TypeError struct {
	BaseError
	Argument string // Printed form of the offending value
	Expected string // "string designator", "package designator", ...
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("[%s] %s is not a %s", e.ErrType, e.Argument, e.Expected)
}

// UsedByError reports a package that cannot be deleted while others use it.
type UsedByError struct {
	BaseError
	Dependents []string
}

func (e *UsedByError) Error() string {
	return fmt.Sprintf("[%s] %s (used by %s)", e.ErrType, e.Msg, strings.Join(e.Dependents, ", "))
}

// MultiError collects multiple package errors.
type MultiError struct {
	Errors []error
}

func (m *MultiError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d error(s) occurred:\n", len(m.Errors)))
	for _, err := range m.Errors {
		sb.WriteString(fmt.Sprintf("- %v\n", err))
	}
	return sb.String()
}

func (m *MultiError) Type() ErrorType {
	if len(m.Errors) > 0 {
		if pe, ok := m.Errors[0].(PackageError); ok {
			return pe.Type()
		}
	}
	return "MultiError"
}

// ErrorOrNil returns nil when no errors were collected.
func (m *MultiError) ErrorOrNil() error {
	if m == nil || len(m.Errors) == 0 {
		return nil
	}
	return m
}

// NewAlreadyExists creates a continuable AlreadyExistsError.
func NewAlreadyExists(name, existing, restart string) *AlreadyExistsError {
	return &AlreadyExistsError{
		BaseError: BaseError{
			Msg:     fmt.Sprintf("a package named %q already exists", name),
			ErrType: TypeAlreadyExists,
			Package: existing,
			Recover: restart,
		},
		Name:     name,
		Existing: existing,
	}
}

// NewClosedPackage creates a continuable ClosedPackageError.
func NewClosedPackage(pkg, operation, subject string) *ClosedPackageError {
	msg := fmt.Sprintf("cannot %s in closed package %s", operation, pkg)
	if subject != "" {
		msg = fmt.Sprintf("cannot %s %s in closed package %s", operation, subject, pkg)
	}
	return &ClosedPackageError{
		BaseError: BaseError{
			Msg:     msg,
			ErrType: TypeClosedPackage,
			Package: pkg,
			Recover: "Ignore package closing and proceed",
		},
		Operation: operation,
		Subject:   subject,
	}
}

// NewNotAccessible creates a NotAccessibleError. An empty restart makes it fatal.
func NewNotAccessible(pkg, symbol, restart string) *NotAccessibleError {
	return &NotAccessibleError{
		BaseError: BaseError{
			Msg:     fmt.Sprintf("symbol %s is not accessible from %s", symbol, pkg),
			ErrType: TypeNotAccessible,
			Package: pkg,
			Recover: restart,
		},
		Symbol: symbol,
	}
}

// NewNameConflict creates a fatal NameConflictError.
func NewNameConflict(pkg, msg, name, symbol, competing, in string) *NameConflictError {
	return &NameConflictError{
		BaseError: BaseError{
			Msg:     msg,
			ErrType: TypeNameConflict,
			Package: pkg,
		},
		Name:      name,
		Symbol:    symbol,
		Competing: competing,
		In:        in,
	}
}

// NewProtectedPackage creates a fatal ProtectedPackageError.
func NewProtectedPackage(pkg, msg string) *ProtectedPackageError {
	return &ProtectedPackageError{
		BaseError: BaseError{
			Msg:     msg,
			ErrType: TypeProtectedPackage,
			Package: pkg,
		},
	}
}

// NewNotFound creates a NotFoundError. An empty restart makes it fatal.
func NewNotFound(name, restart string) *NotFoundError {
	return &NotFoundError{
		BaseError: BaseError{
			Msg:     fmt.Sprintf("there exists no package with name %q", name),
			ErrType: TypeNotFound,
			Recover: restart,
		},
		Name: name,
	}
}

// NewTypeError creates a fatal TypeError.
func NewTypeError(argument, expected string) *TypeError {
	return &TypeError{
		BaseError: BaseError{
			Msg:     fmt.Sprintf("%s is not a %s", argument, expected),
			ErrType: TypeTypeError,
		},
		Argument: argument,
		Expected: expected,
	}
}

// NewUsedBy creates a continuable UsedByError.
func NewUsedBy(pkg string, dependents []string) *UsedByError {
	return &UsedByError{
		BaseError: BaseError{
			Msg:     fmt.Sprintf("cannot delete package %s", pkg),
			ErrType: TypePackageInUse,
			Package: pkg,
			Recover: "Unuse this package from each of its users and then delete it",
		},
		Dependents: dependents,
	}
}
