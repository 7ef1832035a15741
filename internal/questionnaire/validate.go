package questionnaire

import (
	_ "embed"
	"fmt"
	"github.com/badgerinator/businessProcessAnalysis/internal/errors"
	"github.com/xeipuuv/gojsonschema"
	"strings"
	"sync"
)

//go:embed schema/questionnaire.schema.json
var schemaDefinition string

var compiledSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaDefinition))
})

// ValidationError lists every schema violation of a rejected document.
type ValidationError struct {
	Errors []FieldError `json:"errors"`
}

// FieldError is a violation at a specific field. Field is "(root)" for the document itself.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (ve *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("questionnaire validation failed:")
	for i, err := range ve.Errors {
		sb.WriteString(fmt.Sprintf(" %d. %s: %s;", i+1, err.Field, err.Message))
	}
	return strings.TrimSuffix(sb.String(), ";")
}

// Validate checks a JSON questionnaire document against the questionnaire schema.
//
// A document that violates the schema returns a *ValidationError. Other errors mean the document could not be read.
func Validate(doc []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return errors.Wrap(err, "compile questionnaire schema")
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(doc))
	if err != nil {
		return errors.Wrap(ErrMalformed, err.Error())
	}
	if result.Valid() {
		return nil
	}

	ve := &ValidationError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := desc.Field()
		if field == "" {
			field = "(root)"
		}
		ve.Errors = append(ve.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return ve
}
