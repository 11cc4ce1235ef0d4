package config

// configSchemaJSON is the JSON Schema the merged Config is validated
// against, mirroring the constraints §6 places on the CLI surface.
const configSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "output_format": {"type": "string", "enum": ["csv", "sql"]},
    "output_batch_size": {"type": "integer", "minimum": 1},
    "rayon_threads": {"type": "integer", "minimum": 1},
    "tick_interval": {"type": "integer", "minimum": 1},
    "idle_timeout": {"type": "integer", "minimum": 1},
    "channel_size": {"type": "integer", "minimum": 1},
    "grok_schema_columns": {"type": ["array", "null"], "items": {"type": "string"}},
    "grok_extra_patterns": {"type": ["array", "null"], "items": {"type": "string"}}
  },
  "required": ["output_format"]
}`
