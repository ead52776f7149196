package services

import (
	"errors"
	"fmt"

	apperrors "github.com/talkgenius/interview-engine/internal/errors"
	"github.com/talkgenius/interview-engine/internal/orchestrator"
	"github.com/talkgenius/interview-engine/internal/repositories/postgres"
)

// ===== COMMON SERVICE ERRORS =====

var (
	// Generic errors
	ErrNotFound         = errors.New("resource not found")
	ErrValidationFailed = errors.New("validation failed")
	ErrInternalError    = errors.New("internal server error")
	ErrBadRequest       = errors.New("bad request")
	ErrConflict         = errors.New("resource conflict")

	// Session specific errors
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionCompleted = errors.New("session already completed")
	ErrInvalidFlowState = errors.New("operation not valid in current interview state")
	ErrEmptyAnswer      = errors.New("answer must not be empty")

	// Completed interview specific errors
	ErrInterviewNotFound = errors.New("interview not found")
)

// ===== CUSTOM ERROR TYPES =====

// Use shared validation errors from errors package
type ValidationError = apperrors.ValidationError
type ValidationErrors = apperrors.ValidationErrors

type BusinessRuleError struct {
	Rule    string                 `json:"rule"`
	Message string                 `json:"message"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (bre *BusinessRuleError) Error() string {
	return fmt.Sprintf("business rule violation (%s): %s", bre.Rule, bre.Message)
}

// ===== ERROR HELPERS =====

// NewValidationError creates a new validation error using the shared type
func NewValidationError(field, message string, value interface{}) *ValidationError {
	return apperrors.NewValidationError(field, message, value)
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}

// translateSessionError maps live-session errors onto service sentinels so
// handlers only depend on this package.
func translateSessionError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, orchestrator.ErrSessionNotFound):
		return ErrSessionNotFound
	case errors.Is(err, orchestrator.ErrSessionCompleted):
		return ErrSessionCompleted
	case errors.Is(err, orchestrator.ErrInvalidFlowState):
		return ErrInvalidFlowState
	case errors.Is(err, orchestrator.ErrEmptyAnswer):
		return ErrEmptyAnswer
	default:
		return err
	}
}

// translateRepositoryError maps persistence errors onto service sentinels.
func translateRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, postgres.ErrInterviewNotFound):
		return ErrInterviewNotFound
	default:
		return err
	}
}

// IsNotFound checks if error represents a "not found" condition
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrInterviewNotFound)
}

// IsValidation checks if error represents a validation failure
func IsValidation(err error) bool {
	if errors.Is(err, ErrValidationFailed) || errors.Is(err, ErrEmptyAnswer) {
		return true
	}
	var ve apperrors.ValidationErrors
	return errors.As(err, &ve)
}

// IsBusinessRule checks if error represents a business rule violation
func IsBusinessRule(err error) bool {
	var bre *BusinessRuleError
	return errors.As(err, &bre)
}

// IsConflict checks if error represents a resource conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, ErrSessionCompleted) ||
		errors.Is(err, ErrInvalidFlowState)
}
