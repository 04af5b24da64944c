// Package chain implements spec §4.H's chain orchestrator: parsing a
// markdown chain file into a model.ChainSpec, resolving each step's tool
// filter against a registry, computing the chain's overall permission
// risk, and running every step through internal/agent.Loop in order.
// Grounded on haasonsaas-nexus's internal/skills/parser.go for the
// frontmatter-then-body split, generalized from one document to many
// step sections.
package chain

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/neolite/zaica/internal/model"
	"gopkg.in/yaml.v3"
)

// ErrEmptyChain is returned when a document has no "## " step headers.
var ErrEmptyChain = errors.New("chain: no steps found")

// ErrEmptyPrompt is returned when a step's body is blank after its
// config lines, per spec §4.H.
var ErrEmptyPrompt = errors.New("chain: step has an empty prompt")

const frontmatterDelimiter = "---"

var configLinePattern = regexp.MustCompile(`^([a-zA-Z_]+):\s*(.*)$`)

// Parse parses a chain document into a model.ChainSpec.
func Parse(data []byte) (*model.ChainSpec, error) {
	name, body := splitFrontmatter(string(data))

	trimmed := strings.TrimLeft(body, "\n")
	if !strings.HasPrefix(trimmed, "## ") {
		return nil, ErrEmptyChain
	}

	segments := strings.Split(trimmed, "\n## ")
	segments[0] = strings.TrimPrefix(segments[0], "## ")

	spec := &model.ChainSpec{Name: name}
	for _, seg := range segments {
		step, err := parseStep(seg)
		if err != nil {
			return nil, err
		}
		spec.Steps = append(spec.Steps, step)
	}
	if len(spec.Steps) == 0 {
		return nil, ErrEmptyChain
	}
	return spec, nil
}

// splitFrontmatter consumes an optional "---\n...\n---\n" header setting
// name, returning the rest of the document as body. A document without
// frontmatter returns an empty name and the whole document as body.
func splitFrontmatter(data string) (name, body string) {
	lines := strings.Split(data, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != frontmatterDelimiter {
		return "", data
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontmatterDelimiter {
			var front struct {
				Name string `yaml:"name"`
			}
			_ = yaml.Unmarshal([]byte(strings.Join(lines[1:i], "\n")), &front)
			return front.Name, strings.Join(lines[i+1:], "\n")
		}
	}
	return "", data
}

// parseStep parses one step section: its name on the first line, zero or
// more "key: value" config lines, a blank line, then the prompt body.
func parseStep(segment string) (model.ChainStep, error) {
	lines := strings.Split(segment, "\n")
	name := strings.TrimSpace(lines[0])

	step := model.ChainStep{Name: name, MaxIterations: model.DefaultMaxIterations}

	i := 1
	for i < len(lines) {
		line := lines[i]
		if strings.TrimSpace(line) == "" {
			i++
			break
		}
		match := configLinePattern.FindStringSubmatch(line)
		if match == nil {
			break
		}
		key, value := match[1], strings.TrimSpace(match[2])
		switch key {
		case "tools":
			step.ToolFilter = splitCommaList(value)
		case "max_iterations":
			n, err := strconv.Atoi(value)
			if err != nil {
				return model.ChainStep{}, fmt.Errorf("step %q: invalid max_iterations %q: %w", name, value, err)
			}
			step.MaxIterations = n
		}
		i++
	}

	prompt := strings.TrimSpace(strings.Join(lines[i:], "\n"))
	if prompt == "" {
		return model.ChainStep{}, fmt.Errorf("step %q: %w", name, ErrEmptyPrompt)
	}
	step.PromptTemplate = prompt
	return step, nil
}

func splitCommaList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
