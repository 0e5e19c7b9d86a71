package service

import (
	"context"
	"testing"

	"huginn/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func modalInteraction(customID string, fields ...domain.Field) *domain.Interaction {
	return &domain.Interaction{
		ID:       "12345",
		Token:    "token",
		Kind:     domain.KindModalSubmit,
		CustomID: customID,
		UserID:   "user-1",
		Fields:   fields,
	}
}

func TestModalFieldExtraction(t *testing.T) {
	type TestCase struct {
		description string
		fields      []ModalField
		payload     []domain.Field
		want        map[string]string
		wantErr     error
	}

	testCases := []TestCase{
		{
			description: "required field present",
			fields:      []ModalField{TextField("name", "Name", "name")},
			payload:     []domain.Field{{CustomID: "name", Type: domain.FieldTypeText, Value: "huginn"}},
			want:        map[string]string{"name": "huginn"},
		},
		{
			description: "missing required field",
			fields:      []ModalField{TextField("name", "Name", "name")},
			payload:     nil,
			wantErr:     domain.ErrMissingField,
		},
		{
			description: "empty value falls back to default",
			fields:      []ModalField{OptionalTextField("name", "Name", "name", "x")},
			payload:     []domain.Field{{CustomID: "name", Type: domain.FieldTypeText, Value: ""}},
			want:        map[string]string{"name": "x"},
		},
		{
			description: "absent field falls back to default",
			fields:      []ModalField{OptionalTextField("name", "Name", "name", "x")},
			payload:     nil,
			want:        map[string]string{"name": "x"},
		},
		{
			description: "empty value on required field is missing",
			fields:      []ModalField{TextField("name", "Name", "name")},
			payload:     []domain.Field{{CustomID: "name", Type: domain.FieldTypeText, Value: ""}},
			wantErr:     domain.ErrMissingField,
		},
		{
			description: "type mismatch is a hard error",
			fields:      []ModalField{TextField("name", "Name", "name")},
			payload:     []domain.Field{{CustomID: "name", Type: domain.FieldType(3), Value: "huginn"}},
			wantErr:     domain.ErrFieldTypeMismatch,
		},
		{
			description: "prefix matched field carries metadata",
			fields: []ModalField{{
				Input:       domain.TextInput{CustomID: "answer", Label: "Answer", Required: true},
				Key:         "answer",
				PrefixMatch: true,
			}},
			payload: []domain.Field{{CustomID: "answer-3:round-2", Type: domain.FieldTypeText, Value: "42"}},
			want:    map[string]string{"answer": "42"},
		},
		{
			description: "field metadata is ignored when matching",
			fields:      []ModalField{TextField("name", "Name", "name")},
			payload:     []domain.Field{{CustomID: "name:session-9", Type: domain.FieldTypeText, Value: "huginn"}},
			want:        map[string]string{"name": "huginn"},
		},
		{
			description: "keyless fields are not extracted",
			fields: []ModalField{
				TextField("name", "Name", "name"),
				{Input: domain.TextInput{CustomID: "divider", Label: "Divider"}},
			},
			payload: []domain.Field{{CustomID: "name", Type: domain.FieldTypeText, Value: "huginn"}},
			want:    map[string]string{"name": "huginn"},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.description, func(t *testing.T) {
			var got map[string]string
			modal := NewModal(func(_ context.Context, _ *Context, fields map[string]string) error {
				got = fields
				return nil
			}, testCase.fields...)

			ictx := newContext(modalInteraction("form", testCase.payload...), &MockSender{}, nil)
			err := modal.Execute(context.Background(), ictx)

			if testCase.wantErr != nil {
				require.ErrorIs(t, err, testCase.wantErr)
				assert.Nil(t, got)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, testCase.want, got)
		})
	}
}

func TestModalValidationAbortsBeforeCallback(t *testing.T) {
	called := false
	modal := NewModal(func(context.Context, *Context, map[string]string) error {
		called = true
		return nil
	}, TextField("name", "Name", "name"))

	ictx := newContext(modalInteraction("form"), &MockSender{}, nil)
	require.ErrorIs(t, modal.Execute(context.Background(), ictx), domain.ErrMissingField)
	assert.False(t, called)
}

func TestModalEphemeralDefault(t *testing.T) {
	ms := &MockSender{}
	modal := NewModal(func(ctx context.Context, ictx *Context, _ map[string]string) error {
		return ictx.CreateInitialResponse(ctx, &domain.Response{Content: "ok"})
	}).SetEphemeralDefault(true)

	ictx := newContext(modalInteraction("form"), ms, nil)
	require.NoError(t, modal.Execute(context.Background(), ictx))

	require.Len(t, ms.created, 1)
	assert.True(t, ms.created[0].Ephemeral)
}

func TestMergeFieldsKeepsOrder(t *testing.T) {
	base := []ModalField{TextField("a", "A", "a"), TextField("b", "B", "b")}
	extra := []ModalField{TextField("c", "C", "c")}

	merged := MergeFields(base, extra)

	require.Len(t, merged, 3)
	assert.Equal(t, "a", merged[0].Key)
	assert.Equal(t, "b", merged[1].Key)
	assert.Equal(t, "c", merged[2].Key)
}

func TestModalRowsOneInputPerRow(t *testing.T) {
	modal := NewModal(nil, TextField("a", "A", "a"), TextField("b", "B", "b"))

	rows := modal.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "a", rows[0].TextInputs[0].CustomID)
	assert.Equal(t, "b", rows[1].TextInputs[0].CustomID)
}

func TestModalBuildResponse(t *testing.T) {
	modal := NewModal(nil, TextField("a", "A", "a"))

	response := modal.BuildResponse("form:user-1", "Feedback")

	assert.Equal(t, domain.ResponseModal, response.Kind)
	assert.Equal(t, "form:user-1", response.CustomID)
	assert.Equal(t, "Feedback", response.Title)
	require.Len(t, response.Components, 1)
}

func TestModalCustomIDs(t *testing.T) {
	modal := NewModal(nil, TextField("a:meta", "A", "a"), TextField("b", "B", "b"))

	assert.Equal(t, []string{"a", "b"}, modal.CustomIDs())
}
