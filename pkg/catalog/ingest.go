package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/leapstack-labs/dbexport/pkg/core"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// InvalidObjectError reports a catalog row that does not fit the object shape.
type InvalidObjectError struct {
	Schema string
	Name   string
	Kind   core.ObjectKind
	Fields []string
	Err    error
}

func (e *InvalidObjectError) Error() string {
	name := e.Name
	if name == "" {
		name = "<unnamed>"
	}
	return fmt.Sprintf("invalid %s %s.%s from catalog: missing or invalid %s",
		e.Kind, e.Schema, name, strings.Join(e.Fields, ", "))
}

func (e *InvalidObjectError) Unwrap() error {
	return e.Err
}

// NewObject builds a SchemaObject from one catalog row and validates it.
// A NULL source means the object is built in.
func NewObject(schema, name string, kind core.ObjectKind, source sql.NullString, language string) (core.SchemaObject, error) {
	obj := core.SchemaObject{
		Schema:   schema,
		Name:     name,
		Kind:     kind,
		Language: strings.ToLower(language),
	}
	if source.Valid {
		obj.Source = core.StringPtr(source.String)
	}

	if err := validate.Struct(obj); err != nil {
		invalid := &InvalidObjectError{Schema: schema, Name: name, Kind: kind, Err: err}
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				invalid.Fields = append(invalid.Fields, strings.ToLower(fe.Field()))
			}
		}
		return core.SchemaObject{}, invalid
	}
	return obj, nil
}
