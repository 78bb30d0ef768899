package userstyle

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCode is a machine-readable classification for validation failures.
type ErrorCode string

// Construction-time codes. Any of these fails the whole object build.
const (
	ErrCodeInvalidID               ErrorCode = "INVALID_ID"
	ErrCodeOptionTooLarge          ErrorCode = "OPTION_TOO_LARGE"
	ErrCodeEmptyOptions            ErrorCode = "EMPTY_OPTIONS"
	ErrCodeDuplicateOptionID       ErrorCode = "DUPLICATE_OPTION_ID"
	ErrCodeDefaultOutOfRange       ErrorCode = "DEFAULT_OUT_OF_RANGE"
	ErrCodeInvalidRange            ErrorCode = "INVALID_RANGE"
	ErrCodeInvalidLayers           ErrorCode = "INVALID_LAYERS"
	ErrCodeDuplicateSettingID      ErrorCode = "DUPLICATE_SETTING_ID"
	ErrCodeDanglingChild           ErrorCode = "DANGLING_CHILD"
	ErrCodeCyclicHierarchy         ErrorCode = "CYCLIC_HIERARCHY"
	ErrCodeMultipleCustomValue     ErrorCode = "MULTIPLE_CUSTOM_VALUE"
	ErrCodeMultipleComplicationSet ErrorCode = "MULTIPLE_COMPLICATION_SLOTS"
	ErrCodeDuplicateSlotOverlay    ErrorCode = "DUPLICATE_SLOT_OVERLAY"
	ErrCodeUnexpectedChildren      ErrorCode = "UNEXPECTED_CHILDREN"
	ErrCodeInvalidFlavor           ErrorCode = "INVALID_FLAVOR"
	ErrCodeIconTooLarge            ErrorCode = "ICON_TOO_LARGE"
	ErrCodeMissingField            ErrorCode = "MISSING_FIELD"
	ErrCodeMalformedData           ErrorCode = "MALFORMED_DATA"
)

// Update-time codes. The update is rejected and prior state is kept.
const (
	ErrCodeUnknownSetting ErrorCode = "UNKNOWN_SETTING"
	ErrCodeKindMismatch   ErrorCode = "KIND_MISMATCH"
)

var (
	// ErrInvalidSchema matches every construction-time ValidationError.
	ErrInvalidSchema = errors.New("userstyle: invalid schema")
	// ErrInvalidUpdate matches every update-time ValidationError.
	ErrInvalidUpdate = errors.New("userstyle: invalid update")
)

var updateCodes = map[ErrorCode]struct{}{
	ErrCodeUnknownSetting: {},
	ErrCodeKindMismatch:   {},
}

// UpdateErrorCodes lists the codes a repository update can be rejected with.
func UpdateErrorCodes() []ErrorCode {
	return []ErrorCode{ErrCodeUnknownSetting, ErrCodeKindMismatch}
}

// ValidationError describes why a setting, schema, style or flavor was rejected.
type ValidationError struct {
	Code      ErrorCode
	SettingID string
	Message   string
	Err       error
}

func newValidationError(code ErrorCode, settingID string, format string, args ...any) *ValidationError {
	return &ValidationError{
		Code:      code,
		SettingID: settingID,
		Message:   fmt.Sprintf(format, args...),
	}
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString("userstyle: ")
	b.WriteString(string(e.Code))
	if e.SettingID != "" {
		b.WriteString(" setting=")
		b.WriteString(e.SettingID)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is lets callers match on the error category sentinels.
func (e *ValidationError) Is(target error) bool {
	if e == nil {
		return false
	}
	_, update := updateCodes[e.Code]
	switch target {
	case ErrInvalidUpdate:
		return update
	case ErrInvalidSchema:
		return !update
	}
	return false
}

// IsCode reports whether err carries a ValidationError with code.
func IsCode(err error, code ErrorCode) bool {
	return CodeOf(err) == code
}

// CodeOf extracts the ValidationError code, or "" when err is not one.
func CodeOf(err error) ErrorCode {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Code
	}
	return ""
}

// EvaluationError captures evaluator metadata alongside the originating error.
type EvaluationError struct {
	Engine string
	Expr   string
	Scope  string
	Err    error
}

func (e *EvaluationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("userstyle: %s evaluator %s scope=%s: %v", e.Engine, describeExpression(e.Expr), e.Scope, e.Err)
}

func (e *EvaluationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeExpression(expr string) string {
	if expr == "" {
		return "expr=<empty>"
	}
	return fmt.Sprintf("expr=%q", expr)
}

func wrapEvaluatorError(engine string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		return err
	}

	if strings.HasPrefix(err.Error(), "userstyle:") {
		return err
	}
	return fmt.Errorf("userstyle: %s evaluator: %w", engine, err)
}

func wrapEvaluationError(engine, expr, scope string, err error) error {
	if err == nil {
		return nil
	}

	var evalErr *EvaluationError
	if errors.As(err, &evalErr) {
		if evalErr.Engine == "" {
			evalErr.Engine = engine
		}
		if evalErr.Expr == "" {
			evalErr.Expr = expr
		}
		if evalErr.Scope == "" {
			evalErr.Scope = scope
		}
		return evalErr
	}

	return &EvaluationError{
		Engine: engine,
		Expr:   expr,
		Scope:  scope,
		Err:    err,
	}
}
