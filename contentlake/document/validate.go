package document

import "errors"

// Reserved attribute names.
const (
	FieldID        = "_id"
	FieldType      = "_type"
	FieldRev       = "_rev"
	FieldCreatedAt = "_createdAt"
	FieldUpdatedAt = "_updatedAt"
)

var (
	ErrMissingID   = errors.New("document _id is required")
	ErrMissingType = errors.New("document _type is required")
	ErrEmptyID     = errors.New("document _id cannot be empty")
	ErrEmptyType   = errors.New("document _type cannot be empty")
)

// ValidateFields checks that doc carries non-empty string _id and _type
// attributes. A non-string value counts as missing.
func ValidateFields(doc map[string]any) error {
	id, ok := doc[FieldID].(string)
	switch {
	case !ok:
		return ErrMissingID
	case id == "":
		return ErrEmptyID
	}
	typ, ok := doc[FieldType].(string)
	switch {
	case !ok:
		return ErrMissingType
	case typ == "":
		return ErrEmptyType
	}
	return nil
}

// IDOf returns the _id of doc, or "" when absent.
func IDOf(doc map[string]any) string {
	id, _ := doc[FieldID].(string)
	return id
}

// TypeOf returns the _type of doc, or "" when absent.
func TypeOf(doc map[string]any) string {
	typ, _ := doc[FieldType].(string)
	return typ
}
