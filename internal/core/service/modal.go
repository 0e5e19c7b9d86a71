package service

import (
	"context"
	"fmt"
	"strings"

	"huginn/internal/core/domain"
)

// ModalCallback receives the validated field values of a modal submission,
// keyed by the names declared on the modal's fields.
type ModalCallback func(ctx context.Context, ictx *Context, fields map[string]string) error

// ModalField declares one text input of a modal and how its submitted value
// is extracted.
type ModalField struct {
	Input domain.TextInput
	// Key is the name the extracted value is passed under. Fields without a
	// key are displayed but not passed to the callback.
	Key string
	// Default is used when the field is absent or empty. A field without a
	// default is required.
	Default *string
	// PrefixMatch matches the submitted field's custom id by prefix instead
	// of equality, for fields carrying per-instance metadata.
	PrefixMatch bool
}

// TextField declares a required short text input.
func TextField(customID, label, key string) ModalField {
	return ModalField{
		Input: domain.TextInput{CustomID: customID, Label: label, Style: domain.TextInputShort, Required: true},
		Key:   key,
	}
}

// OptionalTextField declares a short text input that falls back to def when
// left empty.
func OptionalTextField(customID, label, key, def string) ModalField {
	return ModalField{
		Input:   domain.TextInput{CustomID: customID, Label: label, Style: domain.TextInputShort},
		Key:     key,
		Default: &def,
	}
}

// MergeFields concatenates field lists in order. Shared field templates are
// composed this way rather than inherited.
func MergeFields(lists ...[]ModalField) []ModalField {
	var merged []ModalField
	for _, list := range lists {
		merged = append(merged, list...)
	}

	return merged
}

// Modal binds a single callback to an ordered list of declared fields.
type Modal struct {
	callback         ModalCallback
	fields           []ModalField
	ephemeralDefault bool
}

func NewModal(callback ModalCallback, fields ...ModalField) *Modal {
	return &Modal{callback: callback, fields: fields}
}

// SetEphemeralDefault makes the modal's responses default to ephemeral.
func (m *Modal) SetEphemeralDefault(state bool) *Modal {
	m.ephemeralDefault = state
	return m
}

// Fields returns the declared fields in order.
func (m *Modal) Fields() []ModalField {
	return m.fields
}

func (m *Modal) CustomIDs() []string {
	ids := make([]string, 0, len(m.fields))
	for _, field := range m.fields {
		match, _ := domain.SplitCustomID(field.Input.CustomID)
		ids = append(ids, match)
	}

	return ids
}

// Rows builds the modal's action rows, one text input per row as the
// platform requires.
func (m *Modal) Rows() []domain.ActionRow {
	rows := make([]domain.ActionRow, 0, len(m.fields))
	for _, field := range m.fields {
		rows = append(rows, domain.ActionRow{TextInputs: []domain.TextInput{field.Input}})
	}

	return rows
}

// BuildResponse builds the response that opens this modal under customID.
func (m *Modal) BuildResponse(customID, title string) *domain.Response {
	return &domain.Response{
		Kind:       domain.ResponseModal,
		CustomID:   customID,
		Title:      title,
		Components: m.Rows(),
	}
}

// Execute validates the submission's field payload against the declared
// fields and invokes the callback with the extracted values. Validation
// failures abort before the callback runs.
func (m *Modal) Execute(ctx context.Context, ictx *Context) error {
	ictx.SetEphemeralDefault(m.ephemeralDefault)

	values := make(map[string]string, len(m.fields))
	for _, field := range m.fields {
		if field.Key == "" {
			continue
		}

		value, err := extractField(field, ictx.Interaction().Fields)
		if err != nil {
			return err
		}

		values[field.Key] = value
	}

	return m.callback(ctx, ictx, values)
}

func extractField(field ModalField, payload []domain.Field) (string, error) {
	match, _ := domain.SplitCustomID(field.Input.CustomID)

	for _, submitted := range payload {
		submittedMatch, _ := domain.SplitCustomID(submitted.CustomID)
		if field.PrefixMatch && !strings.HasPrefix(submittedMatch, match) {
			continue
		}
		if !field.PrefixMatch && submittedMatch != match {
			continue
		}

		if submitted.Type != domain.FieldTypeText {
			return "", fmt.Errorf("field %q reported type %d: %w", match, submitted.Type, domain.ErrFieldTypeMismatch)
		}

		// An empty value is treated the same as an absent field.
		if submitted.Value != "" {
			return submitted.Value, nil
		}
		break
	}

	if field.Default != nil {
		return *field.Default, nil
	}

	return "", fmt.Errorf("field %q: %w", match, domain.ErrMissingField)
}
