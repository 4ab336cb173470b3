// Package schemas embeds the JSON schemas for fairscore's YAML files.
package schemas

import _ "embed"

// ConfigSchemaJSON is the JSON Schema for .fairscore.yaml.
//
//go:embed config.schema.json
var ConfigSchemaJSON string
