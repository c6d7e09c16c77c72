package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/schemasync/internal/core/domain"
)

const schemaBody = `{
  "responseHeader": {"status": 0, "QTime": 1},
  "schema": {
    "name": "films",
    "version": 1.6,
    "uniqueKey": "id",
    "fields": [
      {"name": "id", "type": "string", "indexed": true, "stored": true, "required": true},
      {"name": "genre", "type": "string", "indexed": "true", "stored": "false", "docValues": true},
      {"name": "name", "type": "text_general", "default": 42}
    ],
    "copyFields": [
      {"source": "genre", "dest": ["genre_txt", "_text_"]},
      {"source": "*_s", "dest": "_text_"}
    ]
  }
}`

func TestSchemaReader_ReadSchema(t *testing.T) {
	transport := &mockTransport{readFn: respond(200, schemaBody)}
	reader := NewSchemaReader(transport)

	schema, err := reader.ReadSchema(context.Background(), "films")

	require.NoError(t, err)
	assert.Equal(t, []string{"films"}, transport.reads)
	assert.Equal(t, "films", schema.Name())
	assert.InDelta(t, 1.6, schema.Version(), 0.0001)
	assert.Equal(t, []string{"genre", "id", "name"}, schema.FieldNames())

	genre, ok := schema.FieldDefinition("genre")
	require.True(t, ok)
	assert.True(t, genre.Indexed())
	assert.False(t, genre.Stored())
	assert.ElementsMatch(t, []string{"genre_txt", "_text_"}, genre.CopyTo())

	name, _ := schema.FieldDefinition("name")
	def, ok := name.Default()
	assert.True(t, ok)
	assert.Equal(t, "42", def)

	assert.Len(t, schema.CopyFields(), 3)
}

func TestSchemaReader_ReadSchema_Errors(t *testing.T) {
	tests := []struct {
		name      string
		transport *mockTransport
		status    int
		contains  string
	}{
		{
			name:      "transport failure",
			transport: &mockTransport{readFn: fail(errors.New("connection refused"))},
			contains:  "connection refused",
		},
		{
			name:      "engine error",
			transport: &mockTransport{readFn: respond(404, `{"error":{"msg":"Can not find: /solr/nope/schema","code":404}}`)},
			status:    404,
			contains:  "Can not find",
		},
		{
			name:      "malformed body",
			transport: &mockTransport{readFn: respond(200, `{"schema": [`)},
			contains:  "decode",
		},
		{
			name:      "missing name",
			transport: &mockTransport{readFn: respond(200, `{"schema":{"version":1.6,"fields":[]}}`)},
			contains:  "no name",
		},
		{
			name:      "field without type",
			transport: &mockTransport{readFn: respond(200, `{"schema":{"name":"x","version":1,"fields":[{"name":"a"}]}}`)},
			contains:  "type",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := NewSchemaReader(tt.transport)

			_, err := reader.ReadSchema(context.Background(), "films")

			require.Error(t, err)
			assert.True(t, domain.IsSchemaAccess(err))
			var accessErr *domain.SchemaAccessError
			require.ErrorAs(t, err, &accessErr)
			assert.Equal(t, tt.status, accessErr.StatusCode)
			assert.Equal(t, "films", accessErr.Collection)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestSchemaReader_NilTransport(t *testing.T) {
	reader := NewSchemaReader(nil)

	_, err := reader.ReadSchema(context.Background(), "films")

	assert.True(t, domain.IsSchemaAccess(err))
	assert.ErrorIs(t, err, domain.ErrEngineUnavailable)
}

func TestSchemaReader_SchemaName(t *testing.T) {
	transport := &mockTransport{readFn: respond(200, `{"responseHeader":{},"name":"films"}`)}
	reader := NewSchemaReader(transport)

	name, err := reader.SchemaName(context.Background(), "films")

	require.NoError(t, err)
	assert.Equal(t, "films", name)
	assert.Equal(t, []string{"films/name"}, transport.reads)
}

func TestSchemaReader_SchemaName_Missing(t *testing.T) {
	reader := NewSchemaReader(&mockTransport{readFn: respond(200, `{}`)})

	_, err := reader.SchemaName(context.Background(), "films")

	assert.True(t, domain.IsSchemaAccess(err))
}

func TestSchemaReader_SchemaVersion(t *testing.T) {
	transport := &mockTransport{readFn: respond(200, `{"version":1.6}`)}
	reader := NewSchemaReader(transport)

	version, err := reader.SchemaVersion(context.Background(), "films")

	require.NoError(t, err)
	assert.InDelta(t, 1.6, version, 0.0001)
	assert.Equal(t, []string{"films/version"}, transport.reads)
}

func TestSchemaReader_SchemaVersion_Errors(t *testing.T) {
	for name, transport := range map[string]*mockTransport{
		"missing":      {readFn: respond(200, `{}`)},
		"not a number": {readFn: respond(200, `{"version":"one"}`)},
		"server error":  {readFn: respond(500, `oops`)},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := NewSchemaReader(transport).SchemaVersion(context.Background(), "films")
			assert.True(t, domain.IsSchemaAccess(err))
		})
	}
}

func TestRejectionMessages(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{"empty", ``, nil},
		{"not json", `<html>`, nil},
		{"no error", `{"responseHeader":{"status":0}}`, nil},
		{
			"details",
			`{"error":{"msg":"error processing commands","details":[{"delete-field":{"name":"x"},"errorMessages":["a"," b "]}]}}`,
			[]string{"a", "b"},
		},
		{"msg only", `{"error":{"msg":"boom"}}`, []string{"boom"}},
		{"legacy errors", `{"errors":[{"errorMessages":"legacy"}]}`, []string{"legacy"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rejectionMessages([]byte(tt.body)))
		})
	}
}
