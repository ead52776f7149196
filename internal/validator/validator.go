package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/talkgenius/interview-engine/internal/models"
)

// Validator combines struct-tag validation with interview business rules
type Validator struct {
	structValidator  *validator.Validate
	profileValidator *ProfileValidator
}

// New creates a new centralized validator instance
func New() *Validator {
	structValidator := validator.New()

	// Register all custom validators once
	registerCustomValidators(structValidator)

	return &Validator{
		structValidator:  structValidator,
		profileValidator: NewProfileValidator(),
	}
}

// ValidateStruct validates struct tags only
func (v *Validator) ValidateStruct(s interface{}) error {
	return v.structValidator.Struct(s)
}

// ValidateProfile performs complete validation of an interview profile
// (struct tags + business rules).
func (v *Validator) ValidateProfile(profile *models.InterviewProfile) error {
	if err := v.structValidator.Struct(profile); err != nil {
		return err
	}

	if errors := v.profileValidator.Validate(profile); len(errors) > 0 {
		return errors
	}

	return nil
}

// Profile returns the profile business-rule validator
func (v *Validator) Profile() *ProfileValidator {
	return v.profileValidator
}

// registerCustomValidators registers all custom validation functions
func registerCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("question_type", validateQuestionType)
	validate.RegisterValidation("difficulty_level", validateDifficultyLevel)

	// Custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// Custom validation functions
func validateQuestionType(fl validator.FieldLevel) bool {
	validTypes := []models.QuestionType{
		models.QuestionIntroduction,
		models.QuestionTechnical,
		models.QuestionBehavioral,
		models.QuestionSituational,
		models.QuestionProblemSolving,
		models.QuestionDomainSpecific,
		models.QuestionSkillAssess,
		models.QuestionFollowUp,
		models.QuestionProbing,
	}

	value := fl.Field().String()
	for _, validType := range validTypes {
		if string(validType) == value {
			return true
		}
	}
	return false
}

func validateDifficultyLevel(fl validator.FieldLevel) bool {
	validLevels := []models.DifficultyLevel{
		models.DifficultyEasy,
		models.DifficultyMedium,
		models.DifficultyHard,
	}

	value := fl.Field().String()
	for _, validLevel := range validLevels {
		if string(validLevel) == value {
			return true
		}
	}
	return false
}
