package contentlake

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/contentlake/contentlake/contentlake/storage"
)

// compileSchema parses a JSON Schema document. An empty string yields nil.
func compileSchema(schemaJSON string) (*gojsonschema.Schema, error) {
	if strings.TrimSpace(schemaJSON) == "" {
		return nil, nil
	}
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, Wrap(ErrSchema, "compile json schema", err)
	}
	return schema, nil
}

// validateAgainst checks doc against schema; a nil schema accepts all.
func validateAgainst(schema *gojsonschema.Schema, doc map[string]any) error {
	if schema == nil {
		return nil
	}
	result, err := schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return Wrap(ErrSchema, "schema validation error", err)
	}
	if result.Valid() {
		return nil
	}

	errs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		errs = append(errs, desc.String())
	}
	first := result.Errors()[0]
	return &Error{
		Kind:    ErrValidation,
		Field:   first.Field(),
		Message: fmt.Sprintf("document invalid against schema: %s", strings.Join(errs, "; ")),
	}
}

func loadSchema(ctx context.Context, db *sql.DB, sqlt storage.SQL) (string, error) {
	var schemaJSON string
	err := db.QueryRowContext(ctx, sqlt.GetMeta, storage.MetaSchema).Scan(&schemaJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return schemaJSON, err
}

// SetSchema installs a JSON Schema that every subsequent put must satisfy.
// An empty schema removes validation. Stored documents are not rechecked.
func (d *Dataset) SetSchema(ctx context.Context, schemaJSON []byte) error {
	schema, err := compileSchema(string(schemaJSON))
	if err != nil {
		return err
	}
	if _, err := d.db.ExecContext(ctx, d.adapter.SQL().SetMeta, storage.MetaSchema, string(schemaJSON)); err != nil {
		return Wrap(ErrSQL, "store json schema", err)
	}

	d.mu.Lock()
	d.schema = schema
	d.schemaJSON = string(schemaJSON)
	d.mu.Unlock()
	return nil
}

// Schema returns the installed JSON Schema, or nil.
func (d *Dataset) Schema() []byte {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.schemaJSON == "" {
		return nil
	}
	return []byte(d.schemaJSON)
}
