package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/schemasync/internal/adapters/driven/schemafile"
	"github.com/custodia-labs/schemasync/internal/core/domain"
	"github.com/custodia-labs/schemasync/internal/schemacodec"
)

var (
	schemaShowJSON bool
	exportOutput   string
	fieldFlags     struct {
		fieldType   string
		indexed     bool
		stored      bool
		multiValued bool
		required    bool
		defaultVal  string
		copyTo      []string
	}
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Read and modify the collection schema",
	Long: `Read the live schema of the bound collection and add or remove field and
copy field definitions. Every command reads from the engine; nothing is cached.`,
}

var schemaNameCmd = &cobra.Command{
	Use:   "name",
	Short: "Print the schema name",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if schemaService == nil {
			return errSchemaNotConfigured
		}
		name, err := schemaService.SchemaName(cmd.Context())
		if err != nil {
			return err
		}
		cmd.Println(name)
		return nil
	},
}

var schemaVersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the schema version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if schemaService == nil {
			return errSchemaNotConfigured
		}
		v, err := schemaService.SchemaVersion(cmd.Context())
		if err != nil {
			return err
		}
		cmd.Println(formatVersion(v))
		return nil
	},
}

var schemaShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show all fields and copy fields",
	Args:  cobra.NoArgs,
	RunE:  runSchemaShow,
}

var schemaFieldCmd = &cobra.Command{
	Use:   "field <name>",
	Short: "Show a single field definition",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchemaField,
}

var schemaAddFieldCmd = &cobra.Command{
	Use:   "add-field <name>",
	Short: "Add a field",
	Long: `Add a field to the schema. Each --copy-to target is added as a separate
copy field after the field itself; if one is rejected, the field and any
earlier copy fields stay in place.

Example:
  schemasync schema add-field title --type text_general --indexed --stored --copy-to _text_`,
	Args: cobra.ExactArgs(1),
	RunE: runSchemaAddField,
}

var schemaAddCopyFieldCmd = &cobra.Command{
	Use:   "add-copy-field <source> <dest>",
	Short: "Add a copy field",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if schemaService == nil {
			return errSchemaNotConfigured
		}
		cf, err := domain.NewCopyFieldDefinition().CopyFrom(args[0]).To(args[1]).Create()
		if err != nil {
			return err
		}
		if err := schemaService.AddCopyField(cmd.Context(), cf); err != nil {
			return err
		}
		cmd.Println(successStyle.Render("Added copy field " + cf.String()))
		return nil
	},
}

var schemaRemoveFieldCmd = &cobra.Command{
	Use:   "remove-field <name>",
	Short: "Remove a field",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if schemaService == nil {
			return errSchemaNotConfigured
		}
		if err := schemaService.RemoveField(cmd.Context(), args[0]); err != nil {
			return err
		}
		cmd.Println(successStyle.Render("Removed field " + args[0]))
		return nil
	},
}

var schemaExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the live schema as a desired-schema file",
	Long: `Write the live schema in the desired-schema TOML format accepted by
'schemasync sync'. Writes to stdout unless --output is given.`,
	Args: cobra.NoArgs,
	RunE: runSchemaExport,
}

func init() {
	schemaShowCmd.Flags().BoolVar(&schemaShowJSON, "json", false, "output the schema document as JSON")
	schemaFieldCmd.Flags().BoolVar(&schemaShowJSON, "json", false, "output the field as JSON")

	f := schemaAddFieldCmd.Flags()
	f.StringVarP(&fieldFlags.fieldType, "type", "t", "", "field type (required)")
	f.BoolVar(&fieldFlags.indexed, "indexed", false, "make the field searchable")
	f.BoolVar(&fieldFlags.stored, "stored", false, "store the original value")
	f.BoolVar(&fieldFlags.multiValued, "multi-valued", false, "allow several values per document")
	f.BoolVar(&fieldFlags.required, "required", false, "require the field on every document")
	f.StringVar(&fieldFlags.defaultVal, "default", "", "default value")
	f.StringSliceVar(&fieldFlags.copyTo, "copy-to", nil, "copy field destinations (repeatable)")
	_ = schemaAddFieldCmd.MarkFlagRequired("type")

	schemaExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "file to write")

	schemaCmd.AddCommand(schemaNameCmd)
	schemaCmd.AddCommand(schemaVersionCmd)
	schemaCmd.AddCommand(schemaShowCmd)
	schemaCmd.AddCommand(schemaFieldCmd)
	schemaCmd.AddCommand(schemaAddFieldCmd)
	schemaCmd.AddCommand(schemaAddCopyFieldCmd)
	schemaCmd.AddCommand(schemaRemoveFieldCmd)
	schemaCmd.AddCommand(schemaExportCmd)
	rootCmd.AddCommand(schemaCmd)
}

func runSchemaShow(cmd *cobra.Command, _ []string) error {
	if schemaService == nil {
		return errSchemaNotConfigured
	}

	schema, err := schemaService.ReadSchema(cmd.Context())
	if err != nil {
		return err
	}

	if schemaShowJSON {
		data, err := schemacodec.Encode(schema)
		if err != nil {
			return fmt.Errorf("failed to encode schema: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	cmd.Println(titleStyle.Render(fmt.Sprintf("%s (version %s)", schema.Name(), formatVersion(schema.Version()))))
	cmd.Println(mutedStyle.Render("collection: " + schemaService.Collection()))
	cmd.Println()
	printFieldTable(cmd, schema.Fields())

	if cfs := schema.CopyFields(); len(cfs) > 0 {
		cmd.Println()
		t := newTable("SOURCE", "DEST")
		for _, cf := range cfs {
			t.Row(cf.Source(), cf.Destination())
		}
		cmd.Println(t.String())
	}
	return nil
}

func runSchemaField(cmd *cobra.Command, args []string) error {
	if schemaService == nil {
		return errSchemaNotConfigured
	}

	schema, err := schemaService.ReadSchema(cmd.Context())
	if err != nil {
		return err
	}
	field, ok := schema.FieldDefinition(args[0])
	if !ok {
		return fmt.Errorf("%w: field %q", domain.ErrNotFound, args[0])
	}

	if schemaShowJSON {
		data, err := jsonIndent(schemacodec.FieldToDoc(field))
		if err != nil {
			return err
		}
		cmd.Println(data)
		return nil
	}

	printFieldTable(cmd, []domain.FieldDefinition{field})
	return nil
}

func runSchemaAddField(cmd *cobra.Command, args []string) error {
	if schemaService == nil {
		return errSchemaNotConfigured
	}

	b := domain.NewFieldDefinition().Named(args[0]).TypedAs(fieldFlags.fieldType)
	if fieldFlags.indexed {
		b.Indexed()
	}
	if fieldFlags.stored {
		b.Stored()
	}
	if fieldFlags.multiValued {
		b.MultiValued()
	}
	if fieldFlags.required {
		b.Required()
	}
	if cmd.Flags().Changed("default") {
		b.DefaultedTo(fieldFlags.defaultVal)
	}
	if len(fieldFlags.copyTo) > 0 {
		b.CopyTo(fieldFlags.copyTo...)
	}

	field, err := b.Create()
	if err != nil {
		return err
	}
	if err := schemaService.AddField(cmd.Context(), field); err != nil {
		return err
	}

	cmd.Println(successStyle.Render("Added field " + field.Name()))
	for _, dest := range field.CopyTo() {
		cmd.Println(mutedStyle.Render("  copied to " + dest))
	}
	return nil
}

func runSchemaExport(cmd *cobra.Command, _ []string) error {
	if schemaService == nil {
		return errSchemaNotConfigured
	}

	schema, err := schemaService.ReadSchema(cmd.Context())
	if err != nil {
		return err
	}
	data, err := schemafile.Encode(schema)
	if err != nil {
		return err
	}

	if exportOutput == "" {
		cmd.Print(string(data))
		return nil
	}
	if err := os.WriteFile(exportOutput, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", exportOutput, err)
	}
	cmd.Println(successStyle.Render(fmt.Sprintf("Exported %d field(s) to %s", len(schema.FieldNames()), exportOutput)))
	return nil
}

func printFieldTable(cmd *cobra.Command, fields []domain.FieldDefinition) {
	t := newTable("NAME", "TYPE", "INDEXED", "STORED", "MULTI", "REQUIRED", "DEFAULT", "COPY TO")
	for _, f := range fields {
		def, _ := f.Default()
		t.Row(f.Name(), f.Type(), yesNo(f.Indexed()), yesNo(f.Stored()), yesNo(f.MultiValued()),
			yesNo(f.Required()), def, strings.Join(f.CopyTo(), ", "))
	}
	cmd.Println(t.String())
}
