package schemafile

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/schemasync/internal/core/domain"
)

// fileSchema is the on-disk layout.
type fileSchema struct {
	Name       string          `toml:"name"`
	Version    float64         `toml:"version,omitempty"`
	Fields     []fileField     `toml:"fields,omitempty"`
	CopyFields []fileCopyField `toml:"copy_fields,omitempty"`
}

type fileField struct {
	Name        string   `toml:"name"`
	Type        string   `toml:"type"`
	Indexed     bool     `toml:"indexed"`
	Stored      bool     `toml:"stored"`
	MultiValued bool     `toml:"multi_valued"`
	Required    bool     `toml:"required"`
	Default     any      `toml:"default,omitempty"`
	CopyTo      []string `toml:"copy_to,omitempty"`
}

type fileCopyField struct {
	Source string `toml:"source"`
	Dest   string `toml:"dest"`
}

// Load reads and parses the file at path.
func Load(path string) (domain.SchemaDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.SchemaDefinition{}, fmt.Errorf("read schema file: %w", err)
	}
	schema, err := Parse(data)
	if err != nil {
		return domain.SchemaDefinition{}, fmt.Errorf("%s: %w", path, err)
	}
	return schema, nil
}

// Parse decodes a desired-schema document. Copy-fields whose source is a
// declared field are also listed in that field's copy-to destinations.
func Parse(data []byte) (domain.SchemaDefinition, error) {
	var fs fileSchema
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fs); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return domain.SchemaDefinition{}, fmt.Errorf("parse schema file: %s", strict.String())
		}
		return domain.SchemaDefinition{}, fmt.Errorf("parse schema file: %w", err)
	}

	if fs.Name == "" {
		return domain.SchemaDefinition{}, &domain.ValidationError{
			Entity: "schema file", Attribute: "name", Reason: "must not be empty",
		}
	}

	fields := make([]domain.FieldDefinition, 0, len(fs.Fields))
	for i, f := range fs.Fields {
		def, err := f.definition()
		if err != nil {
			return domain.SchemaDefinition{}, fmt.Errorf("fields[%d]: %w", i, err)
		}
		fields = append(fields, def)
	}

	copyFields := make([]domain.CopyFieldDefinition, 0, len(fs.CopyFields))
	for i, cf := range fs.CopyFields {
		def, err := domain.NewCopyFieldDefinition().CopyFrom(cf.Source).To(cf.Dest).Create()
		if err != nil {
			return domain.SchemaDefinition{}, fmt.Errorf("copy_fields[%d]: %w", i, err)
		}
		copyFields = append(copyFields, def)
	}

	schema, err := domain.NewSchemaDefinition(fs.Name, fs.Version, fields, copyFields)
	if err != nil {
		return domain.SchemaDefinition{}, err
	}
	return schema.ProjectCopyFields(), nil
}

func (f fileField) definition() (domain.FieldDefinition, error) {
	b := domain.NewFieldDefinition().Named(f.Name).TypedAs(f.Type)
	if f.Indexed {
		b.Indexed()
	}
	if f.Stored {
		b.Stored()
	}
	if f.MultiValued {
		b.MultiValued()
	}
	if f.Required {
		b.Required()
	}
	if f.Default != nil {
		b.DefaultedTo(defaultString(f.Default))
	}
	if len(f.CopyTo) > 0 {
		b.CopyTo(f.CopyTo...)
	}
	return b.Create()
}

// Encode renders schema in the desired-schema format. Copy-fields already
// expressed by a field's copy_to are not repeated under [[copy_fields]].
func Encode(schema domain.SchemaDefinition) ([]byte, error) {
	fs := fileSchema{
		Name:    schema.Name(),
		Version: schema.Version(),
	}

	implied := make(map[domain.CopyFieldDefinition]bool)
	for _, f := range schema.Fields() {
		ff := fileField{
			Name:        f.Name(),
			Type:        f.Type(),
			Indexed:     f.Indexed(),
			Stored:      f.Stored(),
			MultiValued: f.MultiValued(),
			Required:    f.Required(),
			CopyTo:      f.CopyTo(),
		}
		if v, ok := f.Default(); ok {
			ff.Default = v
		}
		for _, cf := range f.CopyFieldDefinitions() {
			implied[cf] = true
		}
		fs.Fields = append(fs.Fields, ff)
	}

	for _, cf := range schema.CopyFields() {
		if implied[cf] {
			continue
		}
		implied[cf] = true
		fs.CopyFields = append(fs.CopyFields, fileCopyField{Source: cf.Source(), Dest: cf.Destination()})
	}

	data, err := toml.Marshal(fs)
	if err != nil {
		return nil, fmt.Errorf("encode schema file: %w", err)
	}
	return data, nil
}

// defaultString renders a TOML scalar as the engine's string form.
func defaultString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
