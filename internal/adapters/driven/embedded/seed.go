package embedded

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/custodia-labs/schemasync/internal/schemacodec"
)

//go:embed seed/example-data-driven-schema.json
var defaultSeed []byte

// DefaultSeed returns the bundled example schema ("example-data-driven-schema", version 1.6).
func DefaultSeed() schemacodec.Document {
	doc, err := schemacodec.DecodeDocument(defaultSeed)
	if err != nil {
		panic(fmt.Sprintf("embedded: bundled seed is invalid: %v", err))
	}
	return doc
}

// LoadSeed reads a schema document from path. Both bare documents and
// GET /schema responses (wrapped under "schema") are accepted.
func LoadSeed(path string) (schemacodec.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return schemacodec.Document{}, fmt.Errorf("read seed: %w", err)
	}
	doc, err := schemacodec.DecodeDocument(data)
	if err != nil {
		return schemacodec.Document{}, err
	}
	if doc.Name == nil || doc.Version == nil {
		return schemacodec.Document{}, fmt.Errorf("seed %s: name and version are required", path)
	}
	return doc, nil
}
