package embedded

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/custodia-labs/schemasync/internal/schemacodec"
)

// copyRule is a registered copy-field directive.
type copyRule struct {
	source string
	dest   string
}

// collectionState is the schema of one collection.
type collectionState struct {
	name          string
	version       float64
	uniqueKey     string
	fieldTypes    []schemacodec.FieldTypeDoc
	fields        []schemacodec.FieldDoc
	dynamicFields []schemacodec.FieldDoc
	copyFields    []copyRule
}

func newCollectionState(seed schemacodec.Document) *collectionState {
	st := &collectionState{
		uniqueKey:     seed.UniqueKey,
		fieldTypes:    slices.Clone(seed.FieldTypes),
		fields:        slices.Clone(seed.Fields),
		dynamicFields: slices.Clone(seed.DynamicFields),
	}
	if seed.Name != nil {
		st.name = *seed.Name
	}
	if seed.Version != nil {
		st.version = *seed.Version
	}
	for _, cf := range seed.CopyFields {
		for _, dest := range cf.Dest {
			st.copyFields = append(st.copyFields, copyRule{source: cf.Source, dest: dest})
		}
	}
	return st
}

func (st *collectionState) clone() *collectionState {
	c := *st
	c.fieldTypes = slices.Clone(st.fieldTypes)
	c.fields = slices.Clone(st.fields)
	c.dynamicFields = slices.Clone(st.dynamicFields)
	c.copyFields = slices.Clone(st.copyFields)
	return &c
}

func (st *collectionState) document() schemacodec.Document {
	name, version := st.name, st.version
	doc := schemacodec.Document{
		Name:          &name,
		Version:       &version,
		UniqueKey:     st.uniqueKey,
		FieldTypes:    slices.Clone(st.fieldTypes),
		Fields:        slices.Clone(st.fields),
		DynamicFields: slices.Clone(st.dynamicFields),
		CopyFields:    make([]schemacodec.CopyFieldDoc, 0, len(st.copyFields)),
	}
	for _, cf := range st.copyFields {
		doc.CopyFields = append(doc.CopyFields, schemacodec.CopyFieldDoc{
			Source: cf.source,
			Dest:   schemacodec.StringList{cf.dest},
		})
	}
	return doc
}

func (st *collectionState) fieldIndex(name string) int {
	for i := range st.fields {
		if st.fields[i].Name == name {
			return i
		}
	}
	return -1
}

func (st *collectionState) hasFieldType(name string) bool {
	for _, ft := range st.fieldTypes {
		if ft.Name == name {
			return true
		}
	}
	return false
}

// matchesDynamic reports whether name matches a dynamic field pattern.
func (st *collectionState) matchesDynamic(name string) bool {
	for _, df := range st.dynamicFields {
		if globMatch(df.Name, name) {
			return true
		}
	}
	return false
}

// command is one schema command from an update payload.
type command struct {
	name string
	raw  json.RawMessage
}

// parseCommands reads the payload's commands in document order. A command's
// value may be an object or an array of objects.
func parseCommands(payload []byte) ([]command, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("invalid JSON payload: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, errors.New("payload must be a JSON object of commands")
	}

	var cmds []command
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("invalid JSON payload: %w", err)
		}
		name, _ := tok.(string)

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("invalid value for %s: %w", name, err)
		}

		trimmed := bytes.TrimSpace(raw)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			var items []json.RawMessage
			if err := json.Unmarshal(trimmed, &items); err != nil {
				return nil, fmt.Errorf("invalid value for %s: %w", name, err)
			}
			for _, item := range items {
				cmds = append(cmds, command{name: name, raw: item})
			}
			continue
		}
		cmds = append(cmds, command{name: name, raw: trimmed})
	}

	if len(cmds) == 0 {
		return nil, errors.New("no commands in payload")
	}
	return cmds, nil
}

// apply executes cmd against st and returns the rejection messages, if any.
func (st *collectionState) apply(cmd command, protected map[string]bool) []string {
	switch cmd.name {
	case "add-field":
		return st.addField(cmd.raw)
	case "replace-field":
		return st.replaceField(cmd.raw)
	case "delete-field":
		return st.deleteField(cmd.raw, protected)
	case "add-copy-field":
		return st.addCopyField(cmd.raw)
	case "delete-copy-field":
		return st.deleteCopyField(cmd.raw)
	default:
		return []string{fmt.Sprintf("Unknown command '%s'", cmd.name)}
	}
}

func (st *collectionState) decodeField(raw json.RawMessage) (schemacodec.FieldDoc, []string) {
	var f schemacodec.FieldDoc
	if err := schemacodec.Unmarshal(raw, &f); err != nil {
		return f, []string{"Invalid field definition: " + err.Error()}
	}
	if f.Name == "" {
		return f, []string{"Field name must not be empty."}
	}
	if f.Type == "" {
		return f, []string{fmt.Sprintf("Field '%s': type must be specified.", f.Name)}
	}
	if !st.hasFieldType(f.Type) {
		return f, []string{fmt.Sprintf("Field '%s': Field type '%s' not found.", f.Name, f.Type)}
	}
	return f, nil
}

func (st *collectionState) addField(raw json.RawMessage) []string {
	f, msgs := st.decodeField(raw)
	if msgs != nil {
		return msgs
	}
	if st.fieldIndex(f.Name) >= 0 {
		return []string{fmt.Sprintf("Field '%s' already exists.", f.Name)}
	}
	st.fields = append(st.fields, f)
	return nil
}

func (st *collectionState) replaceField(raw json.RawMessage) []string {
	f, msgs := st.decodeField(raw)
	if msgs != nil {
		return msgs
	}
	i := st.fieldIndex(f.Name)
	if i < 0 {
		return []string{fmt.Sprintf("The field '%s' is not present in this schema, and so cannot be replaced.", f.Name)}
	}
	st.fields[i] = f
	return nil
}

func (st *collectionState) deleteField(raw json.RawMessage, protected map[string]bool) []string {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &req); err != nil || req.Name == "" {
		return []string{"The delete-field command requires a field name."}
	}

	i := st.fieldIndex(req.Name)
	if i < 0 {
		return []string{fmt.Sprintf("The field '%s' is not present in this schema, and so cannot be deleted.", req.Name)}
	}
	if req.Name == st.uniqueKey {
		return []string{fmt.Sprintf("Can't delete '%s' because it's the field used for uniqueKey.", req.Name)}
	}
	if protected[req.Name] {
		return []string{fmt.Sprintf("Can't delete '%s' because it's a protected field.", req.Name)}
	}
	for _, cf := range st.copyFields {
		if cf.source == req.Name || cf.dest == req.Name {
			return []string{fmt.Sprintf(
				"Can't delete field '%s' because it's referred to by at least one copy field directive.", req.Name)}
		}
	}

	st.fields = slices.Delete(st.fields, i, i+1)
	return nil
}

func (st *collectionState) addCopyField(raw json.RawMessage) []string {
	var req schemacodec.CopyFieldDoc
	if err := json.Unmarshal(raw, &req); err != nil {
		return []string{"Invalid copy field definition: " + err.Error()}
	}
	if req.Source == "" || len(req.Dest) == 0 {
		return []string{"The add-copy-field command requires a source and at least one dest."}
	}

	var msgs []string
	if !st.isValidCopySource(req.Source) {
		msgs = append(msgs, fmt.Sprintf(
			"copyField source :'%s' is not a glob and doesn't match any explicit field or dynamicField.", req.Source))
	}
	for _, dest := range req.Dest {
		if st.fieldIndex(dest) < 0 && !st.matchesDynamic(dest) && !st.isDynamicPattern(dest) {
			msgs = append(msgs, fmt.Sprintf(
				"copyField dest :'%s' is not an explicit field and doesn't match a dynamicField.", dest))
		}
		if slices.Contains(st.copyFields, copyRule{source: req.Source, dest: dest}) {
			msgs = append(msgs, fmt.Sprintf("Copy field '%s' -> '%s' already exists.", req.Source, dest))
		}
	}
	if len(msgs) > 0 {
		return msgs
	}

	for _, dest := range req.Dest {
		st.copyFields = append(st.copyFields, copyRule{source: req.Source, dest: dest})
	}
	return nil
}

func (st *collectionState) deleteCopyField(raw json.RawMessage) []string {
	var req schemacodec.CopyFieldDoc
	if err := json.Unmarshal(raw, &req); err != nil || req.Source == "" || len(req.Dest) == 0 {
		return []string{"The delete-copy-field command requires a source and a dest."}
	}

	var msgs []string
	for _, dest := range req.Dest {
		i := slices.Index(st.copyFields, copyRule{source: req.Source, dest: dest})
		if i < 0 {
			msgs = append(msgs, fmt.Sprintf("Copy field directive not found: '%s' -> '%s'", req.Source, dest))
			continue
		}
		st.copyFields = slices.Delete(st.copyFields, i, i+1)
	}
	return msgs
}

// isValidCopySource accepts explicit fields, names matching a dynamic field,
// and glob patterns.
func (st *collectionState) isValidCopySource(source string) bool {
	return st.fieldIndex(source) >= 0 || st.matchesDynamic(source) || strings.Contains(source, "*")
}

// isDynamicPattern reports whether dest is itself a declared dynamic field pattern.
func (st *collectionState) isDynamicPattern(dest string) bool {
	for _, df := range st.dynamicFields {
		if df.Name == dest {
			return true
		}
	}
	return false
}

// globMatch matches the engine's single-wildcard patterns ("*_s", "attr_*", "*").
func globMatch(pattern, name string) bool {
	switch {
	case pattern == "*":
		return true
	case strings.HasPrefix(pattern, "*"):
		return strings.HasSuffix(name, pattern[1:])
	case strings.HasSuffix(pattern, "*"):
		return strings.HasPrefix(name, pattern[:len(pattern)-1])
	default:
		return pattern == name
	}
}
