package errors

import (
	"testing"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("job_title", "job title is required", "")

	if err.Field != "job_title" {
		t.Errorf("Expected field to be 'job_title', got '%s'", err.Field)
	}

	if err.Message != "job title is required" {
		t.Errorf("Expected message to be 'job title is required', got '%s'", err.Message)
	}

	expected := "validation error on field 'job_title': job title is required"
	if err.Error() != expected {
		t.Errorf("Expected error message to be '%s', got '%s'", expected, err.Error())
	}
}

func TestValidationErrors(t *testing.T) {
	var errs ValidationErrors
	if errs.Error() != "validation failed" {
		t.Errorf("Expected 'validation failed' for empty errors, got '%s'", errs.Error())
	}

	errs = append(errs, *NewValidationError("skills", "at least one skill is required", nil))
	expected := "validation failed: skills at least one skill is required"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for single error, got '%s'", expected, errs.Error())
	}

	errs = append(errs, *NewValidationError("experience", "experience is required", nil))
	expected = "validation failed: 2 field errors"
	if errs.Error() != expected {
		t.Errorf("Expected '%s' for multiple errors, got '%s'", expected, errs.Error())
	}
}

func TestNewValidationErrorWithRule(t *testing.T) {
	err := NewValidationErrorWithRule("skills", "duplicate skill 'Go'", "skill_duplicate", "Go")

	if err.Rule != "skill_duplicate" {
		t.Errorf("Expected rule to be 'skill_duplicate', got '%s'", err.Rule)
	}

	if err.Field != "skills" {
		t.Errorf("Expected field to be 'skills', got '%s'", err.Field)
	}

	if err.Value != "Go" {
		t.Errorf("Expected value to be 'Go', got '%v'", err.Value)
	}
}
