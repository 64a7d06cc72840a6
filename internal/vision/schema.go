package vision

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/pravodoc/docrecog/constants"
)

// fieldNames per document type, mirroring the extractor tables. The
// schema is deliberately loose on values (any string) and strict on
// shape: an object of known string fields, nothing else.
var fieldNames = map[constants.DocType][]string{
	constants.DocTypePassport: {
		"lastName", "firstName", "middleName", "series", "number",
		"birthDate", "birthPlace", "issueDate", "issuedBy", "departmentCode",
	},
	constants.DocTypeSnils: {
		"lastName", "firstName", "middleName", "number", "birthDate",
	},
	constants.DocTypeLicense: {
		"lastName", "firstName", "middleName", "series", "number",
		"issueDate", "expiryDate", "categories",
	},
	constants.DocTypeUnknown: {"text"},
}

// BuildFieldsSchema returns a JSON-Schema map constraining the vision
// model payload for one document type.
func BuildFieldsSchema(docType constants.DocType) map[string]any {
	names := fieldNames[docType]
	if names == nil {
		names = fieldNames[constants.DocTypeUnknown]
	}
	props := map[string]any{}
	for _, n := range names {
		props[n] = map[string]any{"type": "string"}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}

// ValidateJSONAgainstSchema validates data against schemaMap.
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("parse payload: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("validate payload: %w", err)
	}
	return nil
}

// ExtractJSONBlock pulls the first top-level {...} block out of model
// text that may wrap JSON in prose or markdown fences.
func ExtractJSONBlock(text string) ([]byte, bool) {
	start := bytes.IndexByte([]byte(text), '{')
	if start < 0 {
		return nil, false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return []byte(text[start : i+1]), true
			}
		}
	}
	return nil, false
}
