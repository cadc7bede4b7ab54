package dsl

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// PlanFile is the YAML form of a plan
type PlanFile struct {
	Version    string         `json:"version" yaml:"version"`
	Name       string         `json:"name" yaml:"name"`
	Threads    int            `json:"threads" yaml:"threads"`
	Iterations int            `json:"iterations" yaml:"iterations"`
	Properties map[string]any `json:"properties" yaml:"properties"`
	Elements   []ElementFile  `json:"elements" yaml:"elements"`
}

// ElementFile is the YAML form of an element. Script text comes from script or from file.
type ElementFile struct {
	Kind     string `json:"kind" yaml:"kind"`
	Name     string `json:"name" yaml:"name"`
	Language string `json:"language" yaml:"language"`
	Script   string `json:"script" yaml:"script"`
	File     string `json:"file" yaml:"file"`
	Duration string `json:"duration" yaml:"duration"`
	Message  string `json:"message" yaml:"message"`
}

// ParseYAML validates and parses a plan. Script files are resolved against the working directory.
func ParseYAML(yamlPayload []byte) (*Plan, error) {
	return parse(yamlPayload, "")
}

// ParseFile reads a plan file. Script files are resolved against the plan's directory.
func ParseFile(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	return parse(data, filepath.Dir(path))
}

func parse(yamlPayload []byte, baseDir string) (*Plan, error) {
	if err := ValidateYAMLWithSchema(yamlPayload); err != nil {
		return nil, err
	}

	var file PlanFile
	if err := yaml.Unmarshal(yamlPayload, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	plan := NewPlan(file.Name)
	if file.Threads > 0 {
		plan.Threads = file.Threads
	}
	if file.Iterations > 0 {
		plan.Iterations = file.Iterations
	}
	for k, v := range file.Properties {
		plan.WithProperty(k, v)
	}

	for i, ef := range file.Elements {
		b, err := ef.builder(baseDir)
		if err != nil {
			name := ef.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return nil, fmt.Errorf("element %s: %w", name, err)
		}
		plan.Add(b)
	}
	return plan, nil
}

func (ef ElementFile) builder(baseDir string) (Builder, error) {
	kind, err := ParseKind(ef.Kind)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindDelay:
		d, err := time.ParseDuration(ef.Duration)
		if err != nil {
			return nil, fmt.Errorf("invalid duration format: %w", err)
		}
		return Delay(ef.Name, d), nil
	case KindLog:
		return Log(ef.Name, ef.Message), nil
	}

	text, err := ef.scriptContent(baseDir)
	if err != nil {
		return nil, err
	}
	raw := NewRawScript(kind, ef.Name, text)
	if ef.Language != "" {
		raw.WithLanguage(ef.Language)
	}
	return raw, nil
}

// scriptContent retrieves the script content from inline text or a file
func (ef ElementFile) scriptContent(baseDir string) (string, error) {
	if ef.Script != "" && ef.File != "" {
		return "", fmt.Errorf("only one of 'script' or 'file' can be provided")
	}
	if ef.Script != "" {
		return ef.Script, nil
	}
	if ef.File == "" {
		return "", fmt.Errorf("either 'script' or 'file' must be provided")
	}

	path := ef.File
	if baseDir != "" && !filepath.IsAbs(path) {
		path = filepath.Join(baseDir, path)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read script file %s: %w", ef.File, err)
	}
	return string(content), nil
}

// RenderYAML serializes a built plan. The output parses back with ParseYAML, with
// generated binding text kept verbatim.
func RenderYAML(plan *BuiltPlan) ([]byte, error) {
	out, err := yaml.Marshal(plan)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal plan: %w", err)
	}
	return out, nil
}
