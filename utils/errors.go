package utils

import (
	"errors"
	"fmt"
)

// Error kinds shared by every solver package. Match with errors.Is.
var (
	// ErrConfiguration marks an invalid parameter set, grid or field definition.
	ErrConfiguration = errors.New("fdtransport: invalid configuration")

	// ErrDependencyOrder marks a read of a helper field layer that has not been computed.
	ErrDependencyOrder = errors.New("fdtransport: dependency layer not available")

	// ErrNumericDegeneracy marks a zero or non-finite elimination denominator.
	// Solvers only record degeneracy; it becomes an error in strict runs.
	ErrNumericDegeneracy = errors.New("fdtransport: numeric degeneracy")
)

// ConfigError reports an invalid parameter, naming the offending parameter and model
type ConfigError struct {
	Model  string
	Param  string
	Reason string
}

func (e *ConfigError) Error() string {
	switch {
	case e.Model != "" && e.Param != "":
		return fmt.Sprintf("%s: parameter %s: %s", e.Model, e.Param, e.Reason)
	case e.Param != "":
		return fmt.Sprintf("parameter %s: %s", e.Param, e.Reason)
	case e.Model != "":
		return fmt.Sprintf("%s: %s", e.Model, e.Reason)
	}
	return e.Reason
}

func (e *ConfigError) Unwrap() error { return ErrConfiguration }

// NewConfigError builds a ConfigError with a formatted reason
func NewConfigError(model, param, format string, args ...interface{}) *ConfigError {
	return &ConfigError{Model: model, Param: param, Reason: fmt.Sprintf(format, args...)}
}

// DependencyError reports that a field tried to read layer Layer of Dependency
// before that layer existed
type DependencyError struct {
	Model      string
	Field      string
	Dependency string
	Layer      int
}

func (e *DependencyError) Error() string {
	prefix := e.Field
	if e.Model != "" {
		prefix = e.Model + ": " + e.Field
	}
	return fmt.Sprintf("%s: layer %d of %s is not available", prefix, e.Layer, e.Dependency)
}

func (e *DependencyError) Unwrap() error { return ErrDependencyOrder }

// WithModel stamps the model name onto configuration and dependency errors that
// were raised below the model layer. Context wrapped around them is kept; other
// errors pass through unchanged.
func WithModel(model string, err error) error {
	var ce *ConfigError
	if errors.As(err, &ce) && ce.Model == "" {
		cp := *ce
		cp.Model = model
		return restamp(err, ce, &cp)
	}
	var de *DependencyError
	if errors.As(err, &de) && de.Model == "" {
		cp := *de
		cp.Model = model
		return restamp(err, de, &cp)
	}
	return err
}

func restamp(err, found, stamped error) error {
	if err == found {
		return stamped
	}
	return &stampedError{err: err, stamped: stamped}
}

// stampedError keeps the message of the original chain while errors.As finds
// the stamped copy first
type stampedError struct {
	err     error
	stamped error
}

func (e *stampedError) Error() string { return e.err.Error() }

func (e *stampedError) Unwrap() []error { return []error{e.stamped, e.err} }
