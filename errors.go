package statsigprovider

import (
	"errors"
	"fmt"
	"strings"

	"github.com/open-feature/go-sdk/openfeature"

	"github.com/OrlandoBitencourt/statsigprovider/internal/attribute"
)

var (
	// ErrProviderFatal matches every error returned by New.
	ErrProviderFatal = errors.New("statsig provider fatal error")

	// ErrNotImplemented is reported by evaluations this provider does not support.
	ErrNotImplemented = errors.New("not implemented")
)

// UnsupportedAttributeError is returned under AttributeReject when a context
// attribute cannot be represented as a Statsig custom field.
type UnsupportedAttributeError = attribute.UnsupportedError

// InitError is returned when the provider cannot be constructed.
// It is never recoverable by retrying with the same options.
type InitError struct {
	Code    openfeature.ErrorCode
	Message string
	Err     error
}

func newFatalError(message string, err error) *InitError {
	return &InitError{
		Code:    openfeature.ProviderFatalCode,
		Message: message,
		Err:     err,
	}
}

func (e *InitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("statsig provider initialization failed: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("statsig provider initialization failed: %s", e.Message)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// Is reports fatal init errors as ErrProviderFatal.
func (e *InitError) Is(target error) bool {
	return target == ErrProviderFatal && e.Code == openfeature.ProviderFatalCode
}

// ProviderInitError converts the error to the OpenFeature SDK's type.
func (e *InitError) ProviderInitError() *openfeature.ProviderInitError {
	return &openfeature.ProviderInitError{
		ErrorCode: e.Code,
		Message:   e.Error(),
	}
}

// ConfigError indicates invalid configuration.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error [%s]: %s", e.Field, e.Message)
}

// IsFatal reports whether err is a fatal provider initialization error.
func IsFatal(err error) bool {
	return errors.Is(err, ErrProviderFatal)
}

// IsNotImplemented reports whether a resolution detail signals an
// unsupported evaluation.
func IsNotImplemented(detail openfeature.ProviderResolutionDetail) bool {
	rd := detail.ResolutionDetail()
	return rd.ErrorCode == openfeature.GeneralCode &&
		strings.HasSuffix(rd.ErrorMessage, ErrNotImplemented.Error())
}
