// Package schemafile reads and writes desired-schema files.
//
// A desired-schema file is TOML: a top-level name and optional version,
// followed by [[fields]] and [[copy_fields]] tables.
//
//	name = "products"
//
//	[[fields]]
//	name = "title_s"
//	type = "string"
//	indexed = true
//	stored = true
//	copy_to = ["_text_"]
//
//	[[copy_fields]]
//	source = "*_s"
//	dest = "_text_"
//
// Unknown keys are rejected so typos do not silently drop attributes.
package schemafile
