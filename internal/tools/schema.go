package tools

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	jsonschemav5 "github.com/santhosh-tekuri/jsonschema/v5"
)

// Argument shapes for the five always-present tools plus the two
// agent-only ones. Field tags drive invopop/jsonschema reflection the
// same way the teacher derives its config schema in schema.go.
type bashArgs struct {
	Command        string `json:"command" jsonschema:"required,description=Shell command to execute"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty" jsonschema:"description=Override the default command timeout in seconds"`
}

type readFileArgs struct {
	Path string `json:"path" jsonschema:"required,description=Path to the file to read"`
}

type writeFileArgs struct {
	Path    string `json:"path" jsonschema:"required,description=Path to the file to write"`
	Content string `json:"content" jsonschema:"required,description=Full content to write to the file"`
}

type listFilesArgs struct {
	Path string `json:"path,omitempty" jsonschema:"description=Directory to list; defaults to the working directory"`
}

type searchFilesArgs struct {
	Pattern string `json:"pattern" jsonschema:"required,description=Regular expression to search for"`
	Path    string `json:"path,omitempty" jsonschema:"description=Directory to search; defaults to the working directory"`
}

type dispatchAgentArgs struct {
	Task string `json:"task" jsonschema:"required,description=Self-contained task description for the sub-agent"`
}

type loadSkillArgs struct {
	Name string `json:"name" jsonschema:"required,description=Name of the skill to load"`
}

func reflectSchema(v any) map[string]any {
	r := &jsonschema.Reflector{ExpandedStruct: true}
	s := r.Reflect(v)
	data, err := json.Marshal(s)
	if err != nil {
		// Reflection of a static, compile-time-known struct cannot fail;
		// a failure here means a programming error in the struct tags.
		panic(fmt.Sprintf("tools: reflect schema: %v", err))
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		panic(fmt.Sprintf("tools: decode reflected schema: %v", err))
	}
	return m
}

var compiledSchemas = map[string]*jsonschemav5.Schema{}

func compileSchema(name string, schema map[string]any) (*jsonschemav5.Schema, error) {
	if s, ok := compiledSchemas[name]; ok {
		return s, nil
	}
	data, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema for %s: %w", name, err)
	}
	compiled, err := jsonschemav5.CompileString(name+".schema.json", string(data))
	if err != nil {
		return nil, fmt.Errorf("compile schema for %s: %w", name, err)
	}
	compiledSchemas[name] = compiled
	return compiled, nil
}

// validateArguments checks a tool call's raw JSON arguments against its
// declared schema. Used by Registry.Dispatch before invoking the
// implementation, so malformed calls surface as an "Error" result text
// rather than a Go panic inside the tool body.
func validateArguments(def Definition, argumentsJSON string) error {
	schema, err := compileSchema(def.Name, def.Schema)
	if err != nil {
		return err
	}
	var decoded any
	if err := json.Unmarshal([]byte(argumentsJSON), &decoded); err != nil {
		return fmt.Errorf("invalid JSON arguments: %w", err)
	}
	if err := schema.Validate(decoded); err != nil {
		return fmt.Errorf("arguments do not match schema: %w", err)
	}
	return nil
}
