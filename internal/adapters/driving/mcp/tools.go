package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/schemasync/internal/core/domain"
)

// ReadSchemaInput is the input schema for the read_schema tool.
type ReadSchemaInput struct{}

// SchemaOutput is the output schema for the read_schema tool.
type SchemaOutput struct {
	Collection string            `json:"collection"`
	Name       string            `json:"name"`
	Version    float64           `json:"version"`
	Fields     []FieldOutput     `json:"fields"`
	CopyFields []CopyFieldOutput `json:"copy_fields"`
}

// FieldOutput describes a single field.
type FieldOutput struct {
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Indexed     bool     `json:"indexed"`
	Stored      bool     `json:"stored"`
	MultiValued bool     `json:"multi_valued"`
	Required    bool     `json:"required"`
	Default     *string  `json:"default,omitempty"`
	CopyTo      []string `json:"copy_to,omitempty"`
}

// CopyFieldOutput describes a single copy-field.
type CopyFieldOutput struct {
	Source string `json:"source"`
	Dest   string `json:"dest"`
}

// GetFieldInput is the input schema for the get_field tool.
type GetFieldInput struct {
	Name string `json:"name" jsonschema:"the field name to look up"`
}

// GetFieldOutput is the output schema for the get_field tool.
type GetFieldOutput struct {
	Found bool         `json:"found"`
	Field *FieldOutput `json:"field,omitempty"`
}

// AddFieldInput is the input schema for the add_field tool.
type AddFieldInput struct {
	Name        string   `json:"name" jsonschema:"the new field's name"`
	Type        string   `json:"type" jsonschema:"a field type declared by the schema, e.g. string or text_general"`
	Indexed     bool     `json:"indexed,omitempty" jsonschema:"whether the field is searchable"`
	Stored      bool     `json:"stored,omitempty" jsonschema:"whether the original value is retrievable"`
	MultiValued bool     `json:"multi_valued,omitempty" jsonschema:"whether the field holds several values"`
	Required    bool     `json:"required,omitempty" jsonschema:"whether every document must supply the field"`
	Default     *string  `json:"default,omitempty" jsonschema:"default value used when a document omits the field"`
	CopyTo      []string `json:"copy_to,omitempty" jsonschema:"fields that receive a copy of this field's content"`
}

// CopyFieldInput is the input schema for the add_copy_field tool.
type CopyFieldInput struct {
	Source string `json:"source" jsonschema:"source field name or glob"`
	Dest   string `json:"dest" jsonschema:"destination field name"`
}

// RemoveFieldInput is the input schema for the remove_field tool.
type RemoveFieldInput struct {
	Name string `json:"name" jsonschema:"the field to remove"`
}

// MutationOutput is the output schema for mutating tools.
type MutationOutput struct {
	Collection string `json:"collection"`
	Applied    string `json:"applied"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "read_schema",
		Description: "Read the fields and copy fields of the bound collection's schema",
	}, s.handleReadSchema)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "get_field",
		Description: "Look up a single field definition by name",
	}, s.handleGetField)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "add_field",
		Description: "Add a field to the schema, plus a copy field per copy_to target",
	}, s.handleAddField)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "add_copy_field",
		Description: "Add a copy field directive between two fields",
	}, s.handleAddCopyField)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "remove_field",
		Description: "Remove a field from the schema",
	}, s.handleRemoveField)
}

func (s *Server) handleReadSchema(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ReadSchemaInput,
) (*mcp.CallToolResult, SchemaOutput, error) {
	schema, err := s.ports.Schema.ReadSchema(ctx)
	if err != nil {
		return nil, SchemaOutput{}, err
	}

	output := SchemaOutput{
		Collection: s.ports.Schema.Collection(),
		Name:       schema.Name(),
		Version:    schema.Version(),
		Fields:     make([]FieldOutput, 0, len(schema.FieldNames())),
		CopyFields: make([]CopyFieldOutput, 0),
	}
	for _, f := range schema.Fields() {
		output.Fields = append(output.Fields, toFieldOutput(f))
	}
	for _, cf := range schema.CopyFields() {
		output.CopyFields = append(output.CopyFields, CopyFieldOutput{Source: cf.Source(), Dest: cf.Destination()})
	}

	return nil, output, nil
}

func (s *Server) handleGetField(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetFieldInput,
) (*mcp.CallToolResult, GetFieldOutput, error) {
	if input.Name == "" {
		return nil, GetFieldOutput{}, fmt.Errorf("name is required")
	}

	schema, err := s.ports.Schema.ReadSchema(ctx)
	if err != nil {
		return nil, GetFieldOutput{}, err
	}

	field, ok := schema.FieldDefinition(input.Name)
	if !ok {
		return nil, GetFieldOutput{Found: false}, nil
	}
	out := toFieldOutput(field)
	return nil, GetFieldOutput{Found: true, Field: &out}, nil
}

func (s *Server) handleAddField(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AddFieldInput,
) (*mcp.CallToolResult, MutationOutput, error) {
	b := domain.NewFieldDefinition().Named(input.Name).TypedAs(input.Type)
	if input.Indexed {
		b.Indexed()
	}
	if input.Stored {
		b.Stored()
	}
	if input.MultiValued {
		b.MultiValued()
	}
	if input.Required {
		b.Required()
	}
	if input.Default != nil {
		b.DefaultedTo(*input.Default)
	}
	if len(input.CopyTo) > 0 {
		b.CopyTo(input.CopyTo...)
	}

	field, err := b.Create()
	if err != nil {
		return nil, MutationOutput{}, err
	}
	if err := s.ports.Schema.AddField(ctx, field); err != nil {
		return nil, MutationOutput{}, err
	}

	return nil, s.applied("add-field " + field.Name()), nil
}

func (s *Server) handleAddCopyField(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input CopyFieldInput,
) (*mcp.CallToolResult, MutationOutput, error) {
	cf, err := domain.NewCopyFieldDefinition().CopyFrom(input.Source).To(input.Dest).Create()
	if err != nil {
		return nil, MutationOutput{}, err
	}
	if err := s.ports.Schema.AddCopyField(ctx, cf); err != nil {
		return nil, MutationOutput{}, err
	}

	return nil, s.applied("add-copy-field " + cf.String()), nil
}

func (s *Server) handleRemoveField(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RemoveFieldInput,
) (*mcp.CallToolResult, MutationOutput, error) {
	if err := s.ports.Schema.RemoveField(ctx, input.Name); err != nil {
		return nil, MutationOutput{}, err
	}

	return nil, s.applied("delete-field " + input.Name), nil
}

func (s *Server) applied(change string) MutationOutput {
	return MutationOutput{Collection: s.ports.Schema.Collection(), Applied: change}
}

func toFieldOutput(f domain.FieldDefinition) FieldOutput {
	out := FieldOutput{
		Name:        f.Name(),
		Type:        f.Type(),
		Indexed:     f.Indexed(),
		Stored:      f.Stored(),
		MultiValued: f.MultiValued(),
		Required:    f.Required(),
		CopyTo:      f.CopyTo(),
	}
	if v, ok := f.Default(); ok {
		out.Default = &v
	}
	return out
}
