package domain

import (
	"fmt"
	"slices"
	"strings"
)

// SchemaDiff lists the changes that turn one schema into another.
type SchemaDiff struct {
	// AddFields are fields missing from the live schema. Copy-to targets are
	// carried separately in AddCopyFields.
	AddFields []FieldDefinition

	// ReplaceFields are fields present on both sides with different attributes.
	ReplaceFields []FieldDefinition

	// RemoveFields names live fields absent from the desired schema.
	RemoveFields []string

	// AddCopyFields are copy-fields missing from the live schema.
	AddCopyFields []CopyFieldDefinition

	// RemoveCopyFields are live copy-fields absent from the desired schema.
	RemoveCopyFields []CopyFieldDefinition
}

// DiffSchemas computes the changes needed to move actual towards desired.
// Copy-to lists on either side are treated as copy-fields.
func DiffSchemas(actual, desired SchemaDefinition) SchemaDiff {
	var diff SchemaDiff

	for _, want := range desired.Fields() {
		have, ok := actual.FieldDefinition(want.Name())
		want.copyTo = nil
		switch {
		case !ok:
			diff.AddFields = append(diff.AddFields, want)
		case !have.SameAttributes(want):
			diff.ReplaceFields = append(diff.ReplaceFields, want)
		}
	}

	for _, name := range actual.FieldNames() {
		if !desired.HasField(name) {
			diff.RemoveFields = append(diff.RemoveFields, name)
		}
	}

	wanted := desired.AllCopyFields()
	present := actual.AllCopyFields()
	for _, cf := range wanted {
		if !containsCopyField(present, cf) {
			diff.AddCopyFields = append(diff.AddCopyFields, cf)
		}
	}
	for _, cf := range present {
		if !containsCopyField(wanted, cf) {
			diff.RemoveCopyFields = append(diff.RemoveCopyFields, cf)
		}
	}

	return diff
}

// WithoutRemovals returns the diff restricted to additive and replacing changes.
func (d SchemaDiff) WithoutRemovals() SchemaDiff {
	d.RemoveFields = nil
	d.RemoveCopyFields = nil
	return d
}

// WithoutSystemRemovals drops removals of system fields (see IsSystemField)
// and of copy-fields that touch them. Fields named in keep, such as the
// unique key, are never removed either.
func (d SchemaDiff) WithoutSystemRemovals(keep ...string) SchemaDiff {
	var fields []string
	for _, name := range d.RemoveFields {
		if !IsSystemField(name) && !slices.Contains(keep, name) {
			fields = append(fields, name)
		}
	}
	var copyFields []CopyFieldDefinition
	for _, cf := range d.RemoveCopyFields {
		if !IsSystemField(cf.source) && !IsSystemField(cf.destination) {
			copyFields = append(copyFields, cf)
		}
	}
	d.RemoveFields = fields
	d.RemoveCopyFields = copyFields
	return d
}

// IsEmpty reports whether the diff contains no changes.
func (d SchemaDiff) IsEmpty() bool {
	return d.Len() == 0
}

// Len returns the number of individual changes.
func (d SchemaDiff) Len() int {
	return len(d.AddFields) + len(d.ReplaceFields) + len(d.RemoveFields) +
		len(d.AddCopyFields) + len(d.RemoveCopyFields)
}

// Summary renders the change counts on one line.
func (d SchemaDiff) Summary() string {
	if d.IsEmpty() {
		return "no changes"
	}
	var parts []string
	add := func(n int, label string) {
		if n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, label))
		}
	}
	add(len(d.AddFields), "field(s) to add")
	add(len(d.ReplaceFields), "field(s) to replace")
	add(len(d.RemoveFields), "field(s) to remove")
	add(len(d.AddCopyFields), "copy field(s) to add")
	add(len(d.RemoveCopyFields), "copy field(s) to remove")
	return strings.Join(parts, ", ")
}

// IsSystemField reports whether name follows the engine's reserved
// naming convention (leading and trailing underscore, e.g. "_version_").
func IsSystemField(name string) bool {
	return len(name) > 2 && strings.HasPrefix(name, "_") && strings.HasSuffix(name, "_")
}

func containsCopyField(list []CopyFieldDefinition, cf CopyFieldDefinition) bool {
	for _, v := range list {
		if v == cf {
			return true
		}
	}
	return false
}
