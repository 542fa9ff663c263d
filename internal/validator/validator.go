// Package validator checks decoded message bodies against the login event
// JSON schema.
package validator

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/loginetl/internal/common"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed login_event.schema.json
var loginEventSchema string

const schemaURL = "login_event.schema.json"

// RequiredFields are the keys every message must carry. All but user_id may
// be null.
var RequiredFields = []string{"user_id", "device_type", "ip", "device_id", "locale"}

// Validator is safe for concurrent use.
type Validator struct {
	schema *jsonschema.Schema
}

func New() (*Validator, error) {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft7
	if err := c.AddResource(schemaURL, strings.NewReader(loginEventSchema)); err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	schema, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Validate returns nil if body matches the schema. Otherwise the error wraps
// common.ErrInvalidMessage and describes the first violations found.
//
// body must come from encoding/json decoding into an interface value.
func (v *Validator) Validate(body any) error {
	if err := v.schema.Validate(body); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidMessage, err)
	}
	return nil
}

// Valid reports whether body matches the schema.
func (v *Validator) Valid(body any) bool {
	return v.Validate(body) == nil
}
