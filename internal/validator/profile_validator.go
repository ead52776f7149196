package validator

import (
	"strings"

	"github.com/talkgenius/interview-engine/internal/models"
)

// ProfileValidator handles business-rule validation for interview profiles.
// Struct tags catch missing and oversized fields; the rules here catch
// inputs that are well-formed but would produce a useless interview.
type ProfileValidator struct{}

// NewProfileValidator creates a new profile validator
func NewProfileValidator() *ProfileValidator {
	return &ProfileValidator{}
}

// Validate checks an interview profile against business rules
func (v *ProfileValidator) Validate(profile *models.InterviewProfile) ValidationErrors {
	var errs ValidationErrors

	if strings.TrimSpace(profile.JobTitle) == "" {
		errs = append(errs, ValidationError{
			Field:   "job_title",
			Message: "must not be blank",
			Rule:    "job_title",
		})
	}

	seen := make(map[string]bool, len(profile.Skills))
	for _, skill := range profile.Skills {
		trimmed := strings.TrimSpace(skill)
		if trimmed == "" {
			errs = append(errs, ValidationError{
				Field:   "skills",
				Message: "must not contain blank entries",
				Value:   skill,
				Rule:    "skill_blank",
			})
			continue
		}

		key := strings.ToLower(trimmed)
		if seen[key] {
			errs = append(errs, ValidationError{
				Field:   "skills",
				Message: "must not contain duplicate entries",
				Value:   trimmed,
				Rule:    "skill_duplicate",
			})
		}
		seen[key] = true
	}

	return errs
}

// Normalize returns a copy of the profile with whitespace trimmed and
// duplicate skills removed, keeping first occurrence order.
func (v *ProfileValidator) Normalize(profile models.InterviewProfile) models.InterviewProfile {
	profile.JobTitle = strings.TrimSpace(profile.JobTitle)
	profile.CompanyName = strings.TrimSpace(profile.CompanyName)
	profile.Experience = strings.TrimSpace(profile.Experience)
	profile.FieldCategory = strings.TrimSpace(profile.FieldCategory)
	profile.UserName = strings.TrimSpace(profile.UserName)

	seen := make(map[string]bool, len(profile.Skills))
	skills := make([]string, 0, len(profile.Skills))
	for _, skill := range profile.Skills {
		trimmed := strings.TrimSpace(skill)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if seen[key] {
			continue
		}
		seen[key] = true
		skills = append(skills, trimmed)
	}
	profile.Skills = skills

	return profile
}
