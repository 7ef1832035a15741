package models

import (
	"fmt"
	"github.com/badgerinator/businessProcessAnalysis/internal/errors"
	"github.com/go-playground/validator/v10"
	"strings"
)

// Rating scores are whole numbers from 0 to 5.
type Rating struct {
	Technical      int `json:"technical" validate:"min=0,max=5"`
	Communication  int `json:"communication" validate:"min=0,max=5"`
	ProblemSolving int `json:"problemSolving" validate:"min=0,max=5"`
	CulturalFit    int `json:"culturalFit" validate:"min=0,max=5"`
	Overall        int `json:"overall" validate:"min=0,max=5"`
}

// Review is the interviewer's assessment attached to a finished interview.
type Review struct {
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
	RedFlags   []string `json:"redFlags"`
	NextSteps  string   `json:"nextSteps"`
	Notes      string   `json:"notes"`
	Rating     Rating   `json:"rating"`
}

func (r Review) Clone() Review {
	out := r
	out.Strengths = cloneStrings(r.Strengths)
	out.Weaknesses = cloneStrings(r.Weaknesses)
	out.RedFlags = cloneStrings(r.RedFlags)
	return out
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s...)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when a review or candidate does not pass validation.
// Out of range ratings are rejected, never clamped.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Validate checks the rating bounds.
func (r Review) Validate() error {
	return validationError(validate.Struct(r))
}

// Validate checks that the candidate has a name.
func (c Candidate) Validate() error {
	return validationError(validate.Struct(c))
}

func validationError(err error) error {
	if err == nil {
		return nil
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}
	out := &ValidationError{Errors: make([]FieldError, 0, len(validationErrors))}
	for _, fe := range validationErrors {
		out.Errors = append(out.Errors, FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: describe(fe),
		})
	}
	return out
}

// fieldPath drops the root struct name, "Review.Rating.Overall" becomes "Rating.Overall".
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("must be at least %s, got %v", fe.Param(), fe.Value())
	case "max":
		return fmt.Sprintf("must be at most %s, got %v", fe.Param(), fe.Value())
	case "required":
		return "is required"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
