package embedded

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/schemasync/internal/schemacodec"
)

func newTestEngine(opts ...Option) *Engine {
	return NewEngine(DefaultSeed(), opts...)
}

func update(t *testing.T, e *Engine, payload string) (int, []string) {
	t.Helper()
	resp, err := e.Update(context.Background(), "films", []byte(payload))
	require.NoError(t, err)

	var body struct {
		Error *struct {
			Details []struct {
				ErrorMessages []string `json:"errorMessages"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(resp.Body, &body))

	var msgs []string
	if body.Error != nil {
		for _, d := range body.Error.Details {
			msgs = append(msgs, d.ErrorMessages...)
		}
	}
	return resp.StatusCode, msgs
}

func readDoc(t *testing.T, e *Engine) schemacodec.Document {
	t.Helper()
	resp, err := e.Read(context.Background(), "films", "")
	require.NoError(t, err)
	require.True(t, resp.OK())
	doc, err := schemacodec.DecodeDocument(resp.Body)
	require.NoError(t, err)
	return doc
}

func fieldNames(doc schemacodec.Document) []string {
	names := make([]string, 0, len(doc.Fields))
	for _, f := range doc.Fields {
		names = append(names, f.Name)
	}
	return names
}

func TestDefaultSeed(t *testing.T) {
	doc := DefaultSeed()
	require.NotNil(t, doc.Name)
	require.NotNil(t, doc.Version)
	assert.Equal(t, "example-data-driven-schema", *doc.Name)
	assert.InDelta(t, 1.6, *doc.Version, 0.0001)
	assert.Equal(t, "id", doc.UniqueKey)
	assert.Empty(t, doc.CopyFields)
}

func TestEngine_Read_NameAndVersion(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	resp, err := e.Read(ctx, "films", "/name")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(resp.Body), `"name":"example-data-driven-schema"`)

	resp, err = e.Read(ctx, "films", "/version")
	require.NoError(t, err)
	assert.Contains(t, string(resp.Body), `"version":1.6`)
}

func TestEngine_Read_UnknownPath(t *testing.T) {
	e := newTestEngine()
	resp, err := e.Read(context.Background(), "films", "/nope")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEngine_Read_SingleField(t *testing.T) {
	e := newTestEngine()
	resp, err := e.Read(context.Background(), "films", "/fields/id")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(resp.Body), `"field"`)

	resp, err = e.Read(context.Background(), "films", "/fields/missing")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEngine_WithCollections(t *testing.T) {
	e := newTestEngine(WithCollections("films"))

	resp, err := e.Read(context.Background(), "books", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = e.Read(context.Background(), "", "")
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEngine_AddField(t *testing.T) {
	e := newTestEngine()

	status, msgs := update(t, e, `{"add-field":{"name":"title","type":"text_general","stored":true,"indexed":true}}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, msgs)
	assert.Contains(t, fieldNames(readDoc(t, e)), "title")
}

func TestEngine_AddField_Duplicate(t *testing.T) {
	e := newTestEngine()

	status, msgs := update(t, e, `{"add-field":{"name":"id","type":"string"}}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []string{"Field 'id' already exists."}, msgs)
}

func TestEngine_AddField_UnknownType(t *testing.T) {
	e := newTestEngine()

	status, msgs := update(t, e, `{"add-field":{"name":"x","type":"no_such_type"}}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []string{"Field 'x': Field type 'no_such_type' not found."}, msgs)
}

func TestEngine_ReplaceField(t *testing.T) {
	e := newTestEngine()

	update(t, e, `{"add-field":{"name":"title","type":"string"}}`)
	status, _ := update(t, e, `{"replace-field":{"name":"title","type":"text_general","stored":true}}`)
	assert.Equal(t, http.StatusOK, status)

	for _, f := range readDoc(t, e).Fields {
		if f.Name == "title" {
			assert.Equal(t, "text_general", f.Type)
			assert.True(t, bool(f.Stored))
		}
	}

	status, msgs := update(t, e, `{"replace-field":{"name":"ghost","type":"string"}}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []string{"The field 'ghost' is not present in this schema, and so cannot be replaced."}, msgs)
}

func TestEngine_DeleteField(t *testing.T) {
	e := newTestEngine()

	update(t, e, `{"add-field":{"name":"title","type":"string"}}`)
	status, _ := update(t, e, `{"delete-field":{"name":"title"}}`)
	assert.Equal(t, http.StatusOK, status)
	assert.NotContains(t, fieldNames(readDoc(t, e)), "title")
}

func TestEngine_DeleteField_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{
			name:    "missing field",
			payload: `{"delete-field":{"name":"xxx"}}`,
			want:    "The field 'xxx' is not present in this schema, and so cannot be deleted.",
		},
		{
			name:    "unique key",
			payload: `{"delete-field":{"name":"id"}}`,
			want:    "Can't delete 'id' because it's the field used for uniqueKey.",
		},
		{
			name:    "protected field",
			payload: `{"delete-field":{"name":"_version_"}}`,
			want:    "Can't delete '_version_' because it's a protected field.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine()
			status, msgs := update(t, e, tt.payload)
			assert.Equal(t, http.StatusBadRequest, status)
			assert.Equal(t, []string{tt.want}, msgs)
		})
	}
}

func TestEngine_DeleteField_ReferencedByCopyField(t *testing.T) {
	e := newTestEngine()

	update(t, e, `{"add-field":[{"name":"a","type":"string"},{"name":"b","type":"string"}]}`)
	update(t, e, `{"add-copy-field":{"source":"a","dest":["b"]}}`)

	status, msgs := update(t, e, `{"delete-field":{"name":"b"}}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []string{"Can't delete field 'b' because it's referred to by at least one copy field directive."}, msgs)
}

func TestEngine_CopyFields(t *testing.T) {
	e := newTestEngine()

	update(t, e, `{"add-field":[{"name":"a","type":"string"},{"name":"b","type":"string"}]}`)
	status, _ := update(t, e, `{"add-copy-field":{"source":"a","dest":["b"]}}`)
	require.Equal(t, http.StatusOK, status)

	doc := readDoc(t, e)
	require.Len(t, doc.CopyFields, 1)
	assert.Equal(t, "a", doc.CopyFields[0].Source)
	assert.Equal(t, schemacodec.StringList{"b"}, doc.CopyFields[0].Dest)

	status, msgs := update(t, e, `{"add-copy-field":{"source":"a","dest":"b"}}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []string{"Copy field 'a' -> 'b' already exists."}, msgs)

	status, _ = update(t, e, `{"delete-copy-field":{"source":"a","dest":"b"}}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, readDoc(t, e).CopyFields)

	status, msgs = update(t, e, `{"delete-copy-field":{"source":"a","dest":"b"}}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []string{"Copy field directive not found: 'a' -> 'b'"}, msgs)
}

func TestEngine_AddCopyField_InvalidEndpoints(t *testing.T) {
	e := newTestEngine()

	status, msgs := update(t, e, `{"add-copy-field":{"source":"nope","dest":"missing"}}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []string{
		"copyField source :'nope' is not a glob and doesn't match any explicit field or dynamicField.",
		"copyField dest :'missing' is not an explicit field and doesn't match a dynamicField.",
	}, msgs)
}

func TestEngine_AddCopyField_DynamicDestination(t *testing.T) {
	e := newTestEngine()

	update(t, e, `{"add-field":{"name":"a","type":"string"}}`)
	status, msgs := update(t, e, `{"add-copy-field":{"source":"a","dest":"a_txt"}}`)
	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, msgs)
}

func TestEngine_Update_AllOrNothing(t *testing.T) {
	e := newTestEngine()

	status, _ := update(t, e, `{"add-field":{"name":"fresh","type":"string"},"delete-field":{"name":"ghost"}}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotContains(t, fieldNames(readDoc(t, e)), "fresh")
}

func TestEngine_Update_UnknownCommand(t *testing.T) {
	e := newTestEngine()

	status, msgs := update(t, e, `{"add-everything":{}}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []string{"Unknown command 'add-everything'"}, msgs)
}

func TestEngine_Update_InvalidPayload(t *testing.T) {
	e := newTestEngine()

	resp, err := e.Update(context.Background(), "films", []byte(`not json`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = e.Update(context.Background(), "films", []byte(`{}`))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEngine_VersionUnchangedByUpdates(t *testing.T) {
	e := newTestEngine()

	before := readDoc(t, e)
	update(t, e, `{"add-field":{"name":"title","type":"string"}}`)
	after := readDoc(t, e)
	assert.Equal(t, *before.Version, *after.Version)
}

func TestEngine_CollectionsAreIndependent(t *testing.T) {
	e := newTestEngine()
	ctx := context.Background()

	update(t, e, `{"add-field":{"name":"title","type":"string"}}`)

	resp, err := e.Read(ctx, "books", "")
	require.NoError(t, err)
	doc, err := schemacodec.DecodeDocument(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, fieldNames(doc), "title")
}

func TestEngine_ResetAndStats(t *testing.T) {
	e := newTestEngine()

	update(t, e, `{"add-field":{"name":"title","type":"string"}}`)
	readDoc(t, e)
	assert.Equal(t, Stats{Reads: 1, Updates: 1}, e.Stats())

	e.Reset()
	assert.Equal(t, Stats{}, e.Stats())
	assert.NotContains(t, fieldNames(readDoc(t, e)), "title")
}

func TestEngine_Close(t *testing.T) {
	e := newTestEngine()
	require.NoError(t, e.Close())

	_, err := e.Read(context.Background(), "films", "")
	assert.ErrorIs(t, err, ErrClosed)

	_, err = e.Update(context.Background(), "films", []byte(`{}`))
	assert.ErrorIs(t, err, ErrClosed)
}

func TestEngine_CancelledContext(t *testing.T) {
	e := newTestEngine()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Read(ctx, "films", "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGlobMatch(t *testing.T) {
	assert.True(t, globMatch("*_s", "title_s"))
	assert.True(t, globMatch("attr_*", "attr_color"))
	assert.True(t, globMatch("*", "anything"))
	assert.False(t, globMatch("*_s", "title_i"))
	assert.False(t, globMatch("exact", "other"))
}
