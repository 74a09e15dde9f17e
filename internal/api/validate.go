// internal/api/validate.go
package api

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/hongngoc-nguyen/brandpulse/internal/common/errors"
)

// querySchema constrains the raw query-parameter bag before it is normalized.
// The date filter accepts the "all" sentinel or a calendar day; anything else
// is a caller bug worth a 400 rather than a silent empty result.
const querySchema = `{
	"type": "object",
	"properties": {
		"date":        {"type": "string", "pattern": "^(all|[0-9]{4}-[0-9]{2}-[0-9]{2})$"},
		"platform":    {"type": "string", "minLength": 1},
		"days":        {"type": "integer"},
		"competitors": {"type": "array", "items": {"type": "string"}}
	},
	"additionalProperties": false
}`

var compiledQuerySchema = mustCompileSchema(querySchema)

func mustCompileSchema(raw string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(raw))
	if err != nil {
		panic(err)
	}
	return schema
}

// validateQuery checks the parameter document against the query schema and
// folds any violations into a single invalid-parameters error.
func validateQuery(doc map[string]interface{}) error {
	result, err := compiledQuerySchema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return errors.NewInvalidParametersError(err.Error())
	}
	if result.Valid() {
		return nil
	}

	messages := make([]string, len(result.Errors()))
	for i, desc := range result.Errors() {
		messages[i] = desc.String()
	}
	return errors.NewInvalidParametersError(strings.Join(messages, "; "))
}
