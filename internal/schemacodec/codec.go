// Package schemacodec converts between schema snapshots and the engine's JSON
// schema document, as returned by GET /schema and accepted by schema commands.
//
// Decoding is lenient: unknown keys are ignored, booleans may arrive as strings,
// and copy-field destinations may be a single name or a list.
package schemacodec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/custodia-labs/schemasync/internal/core/domain"
)

// Attribute keys understood by the engine.
const (
	KeyName        = "name"
	KeyType        = "type"
	KeyIndexed     = "indexed"
	KeyStored      = "stored"
	KeyMultiValued = "multiValued"
	KeyRequired    = "required"
	KeyDefault     = "default"
	KeySource      = "source"
	KeyDest        = "dest"
)

// Document is the engine's schema document.
type Document struct {
	Name          *string        `json:"name,omitempty"`
	Version       *float64       `json:"version,omitempty"`
	UniqueKey     string         `json:"uniqueKey,omitempty"`
	FieldTypes    []FieldTypeDoc `json:"fieldTypes,omitempty"`
	Fields        []FieldDoc     `json:"fields"`
	DynamicFields []FieldDoc     `json:"dynamicFields,omitempty"`
	CopyFields    []CopyFieldDoc `json:"copyFields"`
}

// FieldTypeDoc is a field type entry. Only the name is interpreted.
type FieldTypeDoc struct {
	Name  string `json:"name"`
	Class string `json:"class,omitempty"`
}

// FieldDoc is a field (or dynamic field) entry.
type FieldDoc struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Indexed     FlexBool `json:"indexed"`
	Stored      FlexBool `json:"stored"`
	MultiValued FlexBool `json:"multiValued"`
	Required    FlexBool `json:"required"`
	Default     any      `json:"default,omitempty"`
}

// CopyFieldDoc is a copy-field entry.
type CopyFieldDoc struct {
	Source string     `json:"source"`
	Dest   StringList `json:"dest"`
}

// envelope matches responses that wrap the document under "schema".
type envelope struct {
	Schema json.RawMessage `json:"schema"`
}

// FlexBool decodes JSON booleans and their string forms.
type FlexBool bool

// UnmarshalJSON accepts true, false, "true", "false" and null.
func (b *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*b = false
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := strconv.ParseBool(s)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", s)
		}
		*b = FlexBool(v)
		return nil
	}
	var v bool
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*b = FlexBool(v)
	return nil
}

// StringList decodes a JSON string or array of strings.
type StringList []string

// UnmarshalJSON accepts "a" or ["a", "b"].
func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		*l = list
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = StringList{s}
	return nil
}

// MarshalJSON writes a single destination as a string.
func (l StringList) MarshalJSON() ([]byte, error) {
	if len(l) == 1 {
		return json.Marshal(l[0])
	}
	return json.Marshal([]string(l))
}

// DecodeDocument parses a schema document, wrapped under "schema" or bare.
func DecodeDocument(data []byte) (Document, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Document{}, fmt.Errorf("decode schema response: %w", err)
	}
	raw := json.RawMessage(data)
	if len(env.Schema) > 0 && !bytes.Equal(bytes.TrimSpace(env.Schema), []byte("null")) {
		raw = env.Schema
	}

	var doc Document
	if err := Unmarshal(raw, &doc); err != nil {
		return Document{}, fmt.Errorf("decode schema document: %w", err)
	}
	return doc, nil
}

// Unmarshal decodes data into v keeping numbers as json.Number, so numeric
// defaults keep every digit the engine reported.
func Unmarshal(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after JSON value")
	}
	return nil
}

// Decode parses a schema document into a snapshot with copy-fields projected
// onto their source fields.
func Decode(data []byte) (domain.SchemaDefinition, error) {
	doc, err := DecodeDocument(data)
	if err != nil {
		return domain.SchemaDefinition{}, err
	}
	return FromDocument(doc)
}

// FromDocument converts a decoded document into a snapshot.
func FromDocument(doc Document) (domain.SchemaDefinition, error) {
	if doc.Name == nil {
		return domain.SchemaDefinition{}, errors.New("schema document has no name")
	}
	if doc.Version == nil {
		return domain.SchemaDefinition{}, errors.New("schema document has no version")
	}

	fields := make([]domain.FieldDefinition, 0, len(doc.Fields))
	for i := range doc.Fields {
		fd, err := ParseField(doc.Fields[i])
		if err != nil {
			return domain.SchemaDefinition{}, fmt.Errorf("field %d: %w", i, err)
		}
		fields = append(fields, fd)
	}

	var copyFields []domain.CopyFieldDefinition
	for i, cf := range doc.CopyFields {
		for _, dest := range cf.Dest {
			def, err := domain.NewCopyFieldDefinition().CopyFrom(cf.Source).To(dest).Create()
			if err != nil {
				return domain.SchemaDefinition{}, fmt.Errorf("copy field %d: %w", i, err)
			}
			copyFields = append(copyFields, def)
		}
	}

	schema, err := domain.NewSchemaDefinition(*doc.Name, *doc.Version, fields, copyFields)
	if err != nil {
		return domain.SchemaDefinition{}, err
	}
	return schema.WithUniqueKey(doc.UniqueKey).ProjectCopyFields(), nil
}

// ParseField converts a field entry into a definition.
func ParseField(doc FieldDoc) (domain.FieldDefinition, error) {
	b := domain.NewFieldDefinition().Named(doc.Name).TypedAs(doc.Type)
	if doc.Indexed {
		b.Indexed()
	}
	if doc.Stored {
		b.Stored()
	}
	if doc.MultiValued {
		b.MultiValued()
	}
	if doc.Required {
		b.Required()
	}
	if doc.Default != nil {
		b.DefaultedTo(scalarString(doc.Default))
	}
	return b.Create()
}

// ToDocument converts a snapshot into a document. Copy-to lists are emitted as copy-fields.
func ToDocument(s domain.SchemaDefinition) Document {
	name := s.Name()
	version := s.Version()
	doc := Document{
		Name:       &name,
		Version:    &version,
		UniqueKey:  s.UniqueKey(),
		Fields:     make([]FieldDoc, 0),
		CopyFields: make([]CopyFieldDoc, 0),
	}
	for _, f := range s.Fields() {
		doc.Fields = append(doc.Fields, FieldToDoc(f))
	}
	for _, cf := range s.AllCopyFields() {
		doc.CopyFields = append(doc.CopyFields, CopyFieldDoc{Source: cf.Source(), Dest: StringList{cf.Destination()}})
	}
	return doc
}

// Encode renders a snapshot as an indented schema document.
func Encode(s domain.SchemaDefinition) ([]byte, error) {
	return json.MarshalIndent(ToDocument(s), "", "  ")
}

// FieldToDoc converts a definition into a field entry.
func FieldToDoc(f domain.FieldDefinition) FieldDoc {
	doc := FieldDoc{
		Name:        f.Name(),
		Type:        f.Type(),
		Indexed:     FlexBool(f.Indexed()),
		Stored:      FlexBool(f.Stored()),
		MultiValued: FlexBool(f.MultiValued()),
		Required:    FlexBool(f.Required()),
	}
	if v, ok := f.Default(); ok {
		doc.Default = v
	}
	return doc
}

// FieldAttributes returns the attribute map sent with add-field and replace-field.
// Every flag is written explicitly so engine-side defaults cannot leak in.
func FieldAttributes(f domain.FieldDefinition) map[string]any {
	attrs := map[string]any{
		KeyName:        f.Name(),
		KeyType:        f.Type(),
		KeyIndexed:     f.Indexed(),
		KeyStored:      f.Stored(),
		KeyMultiValued: f.MultiValued(),
		KeyRequired:    f.Required(),
	}
	if v, ok := f.Default(); ok {
		attrs[KeyDefault] = v
	}
	return attrs
}

// scalarString renders a JSON scalar the way the engine would print it.
func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	case json.Number:
		return t.String()
	default:
		return fmt.Sprint(t)
	}
}
