package dsl

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
	yaml "gopkg.in/yaml.v3"
)

func GetJSONSchema() string {
	return `{
		"$schema": "http://json-schema.org/draft-07/schema#",
		"type": "object",
		"required": ["version", "name", "elements"],
		"properties": {
			"version": {
				"type": "string",
				"enum": ["v1"]
			},
			"name": {
				"type": "string",
				"minLength": 1
			},
			"threads": {
				"type": "integer",
				"minimum": 1
			},
			"iterations": {
				"type": "integer",
				"minimum": 1
			},
			"properties": {
				"type": "object"
			},
			"elements": {
				"type": "array",
				"items": {
					"$ref": "#/definitions/element"
				},
				"minItems": 1
			}
		},
		"definitions": {
			"element": {
				"type": "object",
				"required": ["kind"],
				"properties": {
					"kind": {
						"type": "string",
						"enum": ["preprocessor", "postprocessor", "sampler", "delay", "log"]
					},
					"name": {
						"type": "string"
					},
					"language": {
						"type": "string",
						"enum": ["javascript", "js", "shell"]
					},
					"script": {
						"type": "string",
						"minLength": 1
					},
					"file": {
						"type": "string",
						"minLength": 1
					},
					"duration": {
						"type": "string",
						"pattern": "^([0-9]+(\\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$"
					},
					"message": {
						"type": "string",
						"minLength": 1
					}
				},
				"allOf": [
					{
						"if": {
							"properties": {
								"kind": {
									"enum": ["delay"]
								}
							}
						},
						"then": {
							"required": ["duration"]
						}
					},
					{
						"if": {
							"properties": {
								"kind": {
									"enum": ["log"]
								}
							}
						},
						"then": {
							"required": ["message"]
						}
					},
					{
						"if": {
							"properties": {
								"kind": {
									"enum": ["preprocessor", "postprocessor", "sampler"]
								}
							}
						},
						"then": {
							"oneOf": [
								{"required": ["script"]},
								{"required": ["file"]}
							]
						}
					}
				]
			}
		}
	}`
}

func ValidateYAMLWithSchema(yamlPayload []byte) error {
	var data interface{}
	if err := yaml.Unmarshal(yamlPayload, &data); err != nil {
		return fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	jsonData, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal to JSON: %w", err)
	}

	schemaLoader := gojsonschema.NewStringLoader(GetJSONSchema())
	documentLoader := gojsonschema.NewBytesLoader(jsonData)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return fmt.Errorf("failed to validate schema: %w", err)
	}

	if !result.Valid() {
		var errMsg string
		for _, desc := range result.Errors() {
			errMsg += fmt.Sprintf("- %s\n", desc)
		}
		return fmt.Errorf("schema validation failed:\n%s", errMsg)
	}

	return nil
}
