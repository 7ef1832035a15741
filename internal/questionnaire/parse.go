package questionnaire

import (
	"bytes"
	"encoding/json"
	"fmt"
	"github.com/badgerinator/businessProcessAnalysis/internal/errors"
	"github.com/badgerinator/businessProcessAnalysis/internal/models"
	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"
	"time"
)

// ErrMalformed is returned for input that is neither a JSON nor a YAML document.
var ErrMalformed = errors.NewSentinel("malformed questionnaire document")

// Parse accepts a questionnaire document as JSON or YAML and returns it as JSON.
//
// JSON input is returned unchanged so that the stored document matches the upload byte for byte.
func Parse(raw []byte) ([]byte, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, errors.Wrap(ErrMalformed, "empty document")
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		if !json.Valid(trimmed) {
			return nil, errors.Wrap(ErrMalformed, "invalid JSON")
		}
		return bytes.Clone(trimmed), nil
	}

	var v any
	if err := yaml.Unmarshal(trimmed, &v); err != nil {
		return nil, errors.Wrap(ErrMalformed, err.Error())
	}
	normalized, err := normalizeYAML(v)
	if err != nil {
		return nil, err
	}
	doc, err := json.Marshal(normalized)
	if err != nil {
		return nil, errors.Wrap(ErrMalformed, err.Error())
	}
	return doc, nil
}

// normalizeYAML turns the values decoded by yaml.v3 into values encoding/json accepts.
func normalizeYAML(v any) (any, error) {
	switch typed := v.(type) {
	case map[string]any:
		for k, inner := range typed {
			n, err := normalizeYAML(inner)
			if err != nil {
				return nil, err
			}
			typed[k] = n
		}
		return typed, nil
	case map[any]any:
		out := make(map[string]any, len(typed))
		for k, inner := range typed {
			n, err := normalizeYAML(inner)
			if err != nil {
				return nil, err
			}
			out[fmt.Sprint(k)] = n
		}
		return out, nil
	case []any:
		for i, inner := range typed {
			n, err := normalizeYAML(inner)
			if err != nil {
				return nil, err
			}
			typed[i] = n
		}
		return typed, nil
	case time.Time:
		// YAML timestamps would otherwise turn into RFC 3339 strings with a different spelling than the source.
		return typed.Format(time.RFC3339), nil
	default:
		return v, nil
	}
}

// Load parses, validates and hashes a questionnaire document, producing the record to store.
func Load(raw []byte, now time.Time) (models.Questionnaire, error) {
	doc, err := Parse(raw)
	if err != nil {
		return models.Questionnaire{}, err
	}
	if err = Validate(doc); err != nil {
		return models.Questionnaire{}, err
	}
	hash, err := Hash(doc)
	if err != nil {
		return models.Questionnaire{}, err
	}

	return models.Questionnaire{
		Hash:      hash,
		Name:      gjson.GetBytes(doc, "analysis_name").String(),
		Version:   gjson.GetBytes(doc, "version").String(),
		CreatedAt: now.UTC(),
		Document:  doc,
	}, nil
}
