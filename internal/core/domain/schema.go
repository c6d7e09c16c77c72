package domain

import (
	"slices"
	"sort"
)

// FieldDefinition describes a single schema field.
// Values are immutable once created; construct them with NewFieldDefinition.
type FieldDefinition struct {
	name         string
	fieldType    string
	indexed      bool
	stored       bool
	multiValued  bool
	required     bool
	defaultValue string
	hasDefault   bool
	copyTo       []string
}

// Name returns the field name.
func (f FieldDefinition) Name() string { return f.name }

// Type returns the name of the field type the field references.
func (f FieldDefinition) Type() string { return f.fieldType }

// Indexed reports whether the field is searchable.
func (f FieldDefinition) Indexed() bool { return f.indexed }

// Stored reports whether the original value is retrievable.
func (f FieldDefinition) Stored() bool { return f.stored }

// MultiValued reports whether a document may hold several values.
func (f FieldDefinition) MultiValued() bool { return f.multiValued }

// Required reports whether every document must carry the field.
func (f FieldDefinition) Required() bool { return f.required }

// Default returns the default value and whether one is set.
func (f FieldDefinition) Default() (string, bool) { return f.defaultValue, f.hasDefault }

// CopyTo returns the copy-to destinations. The returned slice is a copy.
func (f FieldDefinition) CopyTo() []string { return slices.Clone(f.copyTo) }

// IsZero reports whether f is the zero value (no field).
func (f FieldDefinition) IsZero() bool { return f.name == "" && f.fieldType == "" }

// CopyFieldDefinitions expands the copy-to list into one copy-field per destination.
func (f FieldDefinition) CopyFieldDefinitions() []CopyFieldDefinition {
	defs := make([]CopyFieldDefinition, 0, len(f.copyTo))
	for _, dest := range f.copyTo {
		defs = append(defs, CopyFieldDefinition{source: f.name, destination: dest})
	}
	return defs
}

// Equal compares every attribute. Copy-to destinations compare as a set.
func (f FieldDefinition) Equal(other FieldDefinition) bool {
	return f.SameAttributes(other) && sameStringSet(f.copyTo, other.copyTo)
}

// SameAttributes compares every attribute except the copy-to destinations.
func (f FieldDefinition) SameAttributes(other FieldDefinition) bool {
	return f.name == other.name &&
		f.fieldType == other.fieldType &&
		f.indexed == other.indexed &&
		f.stored == other.stored &&
		f.multiValued == other.multiValued &&
		f.required == other.required &&
		f.hasDefault == other.hasDefault &&
		f.defaultValue == other.defaultValue
}

// withCopyTo returns a copy of f with dest appended to the copy-to list.
func (f FieldDefinition) withCopyTo(dest string) FieldDefinition {
	if slices.Contains(f.copyTo, dest) {
		return f
	}
	f.copyTo = append(slices.Clone(f.copyTo), dest)
	return f
}

// FieldDefinitionBuilder accumulates attributes for a FieldDefinition.
// A builder is not safe for concurrent use.
type FieldDefinitionBuilder struct {
	def FieldDefinition
}

// NewFieldDefinition starts a new field definition.
func NewFieldDefinition() *FieldDefinitionBuilder {
	return &FieldDefinitionBuilder{}
}

// Named sets the field name.
func (b *FieldDefinitionBuilder) Named(name string) *FieldDefinitionBuilder {
	b.def.name = name
	return b
}

// TypedAs sets the field type.
func (b *FieldDefinitionBuilder) TypedAs(fieldType string) *FieldDefinitionBuilder {
	b.def.fieldType = fieldType
	return b
}

// Indexed marks the field as indexed.
func (b *FieldDefinitionBuilder) Indexed() *FieldDefinitionBuilder {
	b.def.indexed = true
	return b
}

// Stored marks the field as stored.
func (b *FieldDefinitionBuilder) Stored() *FieldDefinitionBuilder {
	b.def.stored = true
	return b
}

// MultiValued marks the field as multi-valued.
func (b *FieldDefinitionBuilder) MultiValued() *FieldDefinitionBuilder {
	b.def.multiValued = true
	return b
}

// Required marks the field as required.
func (b *FieldDefinitionBuilder) Required() *FieldDefinitionBuilder {
	b.def.required = true
	return b
}

// DefaultedTo sets the default value.
func (b *FieldDefinitionBuilder) DefaultedTo(value string) *FieldDefinitionBuilder {
	b.def.defaultValue = value
	b.def.hasDefault = true
	return b
}

// CopyTo appends copy-to destinations. Repeated names are kept once.
func (b *FieldDefinitionBuilder) CopyTo(names ...string) *FieldDefinitionBuilder {
	for _, name := range names {
		if !slices.Contains(b.def.copyTo, name) {
			b.def.copyTo = append(b.def.copyTo, name)
		}
	}
	return b
}

// Create validates the accumulated attributes and returns the definition.
func (b *FieldDefinitionBuilder) Create() (FieldDefinition, error) {
	if b.def.name == "" {
		return FieldDefinition{}, &ValidationError{Entity: "field", Attribute: "name", Reason: "must not be empty"}
	}
	if b.def.fieldType == "" {
		return FieldDefinition{}, &ValidationError{
			Entity: "field " + b.def.name, Attribute: "type", Reason: "must not be empty",
		}
	}
	for _, dest := range b.def.copyTo {
		if dest == "" {
			return FieldDefinition{}, &ValidationError{
				Entity: "field " + b.def.name, Attribute: "copyTo", Reason: "destination must not be empty",
			}
		}
	}

	def := b.def
	def.copyTo = slices.Clone(b.def.copyTo)
	return def, nil
}

// MustCreate is like Create but panics on validation failure.
func (b *FieldDefinitionBuilder) MustCreate() FieldDefinition {
	def, err := b.Create()
	if err != nil {
		panic(err)
	}
	return def
}

// CopyFieldDefinition instructs the engine to copy content from one field to another at index time.
type CopyFieldDefinition struct {
	source      string
	destination string
}

// Source returns the source field name or pattern.
func (c CopyFieldDefinition) Source() string { return c.source }

// Destination returns the destination field name or pattern.
func (c CopyFieldDefinition) Destination() string { return c.destination }

// Equal compares source and destination.
func (c CopyFieldDefinition) Equal(other CopyFieldDefinition) bool {
	return c == other
}

// String renders the copy-field as "source -> destination".
func (c CopyFieldDefinition) String() string {
	return c.source + " -> " + c.destination
}

// CopyFieldDefinitionBuilder accumulates the endpoints of a CopyFieldDefinition.
type CopyFieldDefinitionBuilder struct {
	def CopyFieldDefinition
}

// NewCopyFieldDefinition starts a new copy-field definition.
func NewCopyFieldDefinition() *CopyFieldDefinitionBuilder {
	return &CopyFieldDefinitionBuilder{}
}

// CopyFrom sets the source field.
func (b *CopyFieldDefinitionBuilder) CopyFrom(source string) *CopyFieldDefinitionBuilder {
	b.def.source = source
	return b
}

// To sets the destination field.
func (b *CopyFieldDefinitionBuilder) To(destination string) *CopyFieldDefinitionBuilder {
	b.def.destination = destination
	return b
}

// Create validates both endpoints and returns the definition.
func (b *CopyFieldDefinitionBuilder) Create() (CopyFieldDefinition, error) {
	if b.def.source == "" {
		return CopyFieldDefinition{}, &ValidationError{Entity: "copy field", Attribute: "source", Reason: "must not be empty"}
	}
	if b.def.destination == "" {
		return CopyFieldDefinition{}, &ValidationError{
			Entity: "copy field from " + b.def.source, Attribute: "dest", Reason: "must not be empty",
		}
	}
	return b.def, nil
}

// MustCreate is like Create but panics on validation failure.
func (b *CopyFieldDefinitionBuilder) MustCreate() CopyFieldDefinition {
	def, err := b.Create()
	if err != nil {
		panic(err)
	}
	return def
}

// SchemaDefinition is a point-in-time snapshot of a collection schema.
// Snapshots own copies of their contents and are never modified after construction.
type SchemaDefinition struct {
	name       string
	version    float64
	uniqueKey  string
	fields     map[string]FieldDefinition
	copyFields []CopyFieldDefinition
}

// NewSchemaDefinition builds a snapshot. Field names must be unique.
func NewSchemaDefinition(
	name string, version float64, fields []FieldDefinition, copyFields []CopyFieldDefinition,
) (SchemaDefinition, error) {
	byName := make(map[string]FieldDefinition, len(fields))
	for _, f := range fields {
		if f.name == "" {
			return SchemaDefinition{}, &ValidationError{Entity: "schema " + name, Attribute: "fields", Reason: "field without a name"}
		}
		if _, dup := byName[f.name]; dup {
			return SchemaDefinition{}, &ValidationError{
				Entity: "schema " + name, Attribute: "fields", Reason: "duplicate field " + f.name,
			}
		}
		f.copyTo = slices.Clone(f.copyTo)
		byName[f.name] = f
	}

	return SchemaDefinition{
		name:       name,
		version:    version,
		fields:     byName,
		copyFields: slices.Clone(copyFields),
	}, nil
}

// Name returns the schema's declared name.
func (s SchemaDefinition) Name() string { return s.name }

// Version returns the engine-reported schema version.
func (s SchemaDefinition) Version() float64 { return s.version }

// UniqueKey returns the engine's unique key field, or "" when not reported.
func (s SchemaDefinition) UniqueKey() string { return s.uniqueKey }

// WithUniqueKey returns a copy of the snapshot naming key as its unique key field.
func (s SchemaDefinition) WithUniqueKey(key string) SchemaDefinition {
	s.uniqueKey = key
	return s
}

// FieldDefinition looks up a field by name. The boolean is false when no such field exists.
func (s SchemaDefinition) FieldDefinition(name string) (FieldDefinition, bool) {
	f, ok := s.fields[name]
	if !ok {
		return FieldDefinition{}, false
	}
	f.copyTo = slices.Clone(f.copyTo)
	return f, true
}

// HasField reports whether a field with the name exists.
func (s SchemaDefinition) HasField(name string) bool {
	_, ok := s.fields[name]
	return ok
}

// FieldNames returns all field names sorted.
func (s SchemaDefinition) FieldNames() []string {
	names := make([]string, 0, len(s.fields))
	for name := range s.fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fields returns all fields sorted by name.
func (s SchemaDefinition) Fields() []FieldDefinition {
	names := s.FieldNames()
	fields := make([]FieldDefinition, 0, len(names))
	for _, name := range names {
		f, _ := s.FieldDefinition(name)
		fields = append(fields, f)
	}
	return fields
}

// CopyFields returns the copy-field definitions in engine order.
func (s SchemaDefinition) CopyFields() []CopyFieldDefinition {
	return slices.Clone(s.copyFields)
}

// ContainsCopyField reports whether cf is among the snapshot's copy-fields.
func (s SchemaDefinition) ContainsCopyField(cf CopyFieldDefinition) bool {
	return slices.Contains(s.copyFields, cf)
}

// Equal compares name, version, field attributes and copy-field membership.
// A field's copy-to destination and an explicit copy-field from that field are
// the same relationship, so both sides are compared through AllCopyFields.
// The unique key is not compared; desired-schema files do not carry it.
func (s SchemaDefinition) Equal(other SchemaDefinition) bool {
	if s.name != other.name || s.version != other.version || len(s.fields) != len(other.fields) {
		return false
	}
	for name, f := range s.fields {
		o, ok := other.fields[name]
		if !ok || !f.SameAttributes(o) {
			return false
		}
	}
	return sameCopyFieldSet(s.AllCopyFields(), other.AllCopyFields())
}

// AllCopyFields returns the explicit copy-fields merged with those implied by
// field copy-to lists, without duplicates.
func (s SchemaDefinition) AllCopyFields() []CopyFieldDefinition {
	seen := make(map[CopyFieldDefinition]bool)
	var all []CopyFieldDefinition
	add := func(cf CopyFieldDefinition) {
		if !seen[cf] {
			seen[cf] = true
			all = append(all, cf)
		}
	}
	for _, cf := range s.copyFields {
		add(cf)
	}
	for _, f := range s.Fields() {
		for _, cf := range f.CopyFieldDefinitions() {
			add(cf)
		}
	}
	return all
}

// ProjectCopyFields returns a snapshot where every copy-field whose source is a
// concrete field is also listed in that field's copy-to destinations.
func (s SchemaDefinition) ProjectCopyFields() SchemaDefinition {
	fields := make(map[string]FieldDefinition, len(s.fields))
	for name, f := range s.fields {
		fields[name] = f
	}
	for _, cf := range s.copyFields {
		if f, ok := fields[cf.source]; ok {
			fields[cf.source] = f.withCopyTo(cf.destination)
		}
	}
	return SchemaDefinition{
		name:       s.name,
		version:    s.version,
		uniqueKey:  s.uniqueKey,
		fields:     fields,
		copyFields: slices.Clone(s.copyFields),
	}
}

func sameStringSet(a, b []string) bool {
	if len(a) == 0 && len(b) == 0 {
		return true
	}
	as := make(map[string]bool, len(a))
	for _, v := range a {
		as[v] = true
	}
	bs := make(map[string]bool, len(b))
	for _, v := range b {
		if !as[v] {
			return false
		}
		bs[v] = true
	}
	return len(as) == len(bs)
}

func sameCopyFieldSet(a, b []CopyFieldDefinition) bool {
	as := make(map[CopyFieldDefinition]bool, len(a))
	for _, v := range a {
		as[v] = true
	}
	bs := make(map[CopyFieldDefinition]bool, len(b))
	for _, v := range b {
		if !as[v] {
			return false
		}
		bs[v] = true
	}
	return len(as) == len(bs)
}
