package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/schemasync/internal/schemacodec"
)

const (
	// uriScheme is the custom URI scheme for schemasync resources.
	uriScheme = "schemasync://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for the whole schema document.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "schema",
		Name:        "schema",
		Description: "The bound collection's schema as an engine schema document",
		MIMEType:    "application/json",
	}, s.handleSchemaResource)

	// Static resource for stored snapshots.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "snapshots",
		Name:        "snapshots",
		Description: "Stored schema snapshots of the bound collection, newest first",
		MIMEType:    "application/json",
	}, s.handleSnapshotsResource)

	// Template for single fields.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "fields/{name}",
		Name:        "field",
		Description: "Definition of a single field",
		MIMEType:    "application/json",
	}, s.handleFieldResource)
}

// handleSchemaResource returns the live schema document.
func (s *Server) handleSchemaResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	schema, err := s.ports.Schema.ReadSchema(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}

	data, err := schemacodec.Encode(schema)
	if err != nil {
		return nil, fmt.Errorf("encoding schema: %w", err)
	}

	return jsonResult(req.Params.URI, data), nil
}

// handleSnapshotsResource lists stored snapshots without their schemas.
func (s *Server) handleSnapshotsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Snapshots == nil {
		return jsonResult(req.Params.URI, []byte("[]")), nil
	}

	snapshots, err := s.ports.Snapshots.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing snapshots: %w", err)
	}

	type snapshotInfo struct {
		ID         string `json:"id"`
		Collection string `json:"collection"`
		Note       string `json:"note,omitempty"`
		CapturedAt string `json:"captured_at"`
		Fields     int    `json:"fields"`
	}

	infos := make([]snapshotInfo, len(snapshots))
	for i := range snapshots {
		infos[i] = snapshotInfo{
			ID:         snapshots[i].ID,
			Collection: snapshots[i].Collection,
			Note:       snapshots[i].Note,
			CapturedAt: snapshots[i].CapturedAt.Format(time.RFC3339),
			Fields:     len(snapshots[i].Schema.FieldNames()),
		}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling snapshots: %w", err)
	}

	return jsonResult(req.Params.URI, data), nil
}

// handleFieldResource returns one field definition.
func (s *Server) handleFieldResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractFieldName(req.Params.URI)
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	schema, err := s.ports.Schema.ReadSchema(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}

	field, ok := schema.FieldDefinition(name)
	if !ok {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	data, err := json.MarshalIndent(toFieldOutput(field), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling field: %w", err)
	}

	return jsonResult(req.Params.URI, data), nil
}

func jsonResult(uri string, data []byte) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}
}

// extractFieldName extracts the field name from a URI like schemasync://fields/{name}.
func extractFieldName(uri string) string {
	const prefix = uriScheme + "fields/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	name := strings.TrimPrefix(uri, prefix)
	if strings.Contains(name, "/") {
		return ""
	}
	return name
}
