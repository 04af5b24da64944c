// Package skills implements the SkillInfo catalog (spec §3): a markdown
// frontmatter scanner that builds the system-prompt suffix and answers
// load_skill tool calls. Grounded on haasonsaas-nexus's internal/skills
// (frontmatter split, SkillEntry shape) and discovery.go's layered-source
// idea, adapted from a pluggable DiscoverySource interface down to the
// two fixed layers this spec names: user-global and project-local.
package skills

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// frontmatterDelimiter marks the start/end of a skill file's YAML header,
// matching the teacher's SKILL.md convention.
const frontmatterDelimiter = "---"

// Info is the minimal interface the core consumes (spec §3 SkillInfo):
// name, description, whether it's always injected into the system prompt
// or loaded on demand via load_skill, and its body.
type Info struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Always      bool   `yaml:"always"`
	Available   bool   `yaml:"-"`
	Content     string `yaml:"-"`
}

// Catalog holds every discovered skill, keyed by name. Project-local
// skills (./.zaica/skills) override user-global ones (~/.config/zaica/
// skills) of the same name, per spec §6.
type Catalog struct {
	logger *slog.Logger
	byName map[string]Info
	order  []string
}

// Load scans userDir then projectDir (skipping either if absent),
// layering project entries over user entries of the same name. A
// malformed skill file is logged and skipped rather than aborting the
// scan, matching the session store's corrupt-line tolerance.
func Load(userDir, projectDir string, logger *slog.Logger) *Catalog {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "skills")

	c := &Catalog{logger: logger, byName: make(map[string]Info)}
	c.scanInto(userDir)
	c.scanInto(projectDir)
	return c
}

func (c *Catalog) scanInto(dir string) {
	if dir == "" {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		path := filepath.Join(dir, e.Name())
		info, err := parseFile(path)
		if err != nil {
			c.logger.Warn("skipping malformed skill file", "path", path, "error", err)
			continue
		}
		if _, exists := c.byName[info.Name]; !exists {
			c.order = append(c.order, info.Name)
		}
		c.byName[info.Name] = info
	}
}

func parseFile(path string) (Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Info{}, err
	}
	return parse(data)
}

func parse(data []byte) (Info, error) {
	frontmatter, body, err := splitFrontmatter(string(data))
	if err != nil {
		return Info{}, err
	}

	var info Info
	if err := yaml.Unmarshal([]byte(frontmatter), &info); err != nil {
		return Info{}, fmt.Errorf("parsing frontmatter: %w", err)
	}
	if info.Name == "" {
		return Info{}, fmt.Errorf("missing required name field")
	}
	if info.Description == "" {
		return Info{}, fmt.Errorf("missing required description field")
	}

	info.Content = strings.TrimSpace(body)
	info.Available = true
	return info, nil
}

func splitFrontmatter(data string) (frontmatter, body string, err error) {
	lines := strings.Split(data, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != frontmatterDelimiter {
		return "", "", fmt.Errorf("missing opening frontmatter delimiter")
	}

	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontmatterDelimiter {
			return strings.Join(lines[1:i], "\n"), strings.Join(lines[i+1:], "\n"), nil
		}
	}
	return "", "", fmt.Errorf("missing closing frontmatter delimiter")
}

// Load implements tools.SkillProvider: looks up a skill by name and
// returns its body as loaded, or an error when no skill has that name.
func (c *Catalog) Load(name string) (string, error) {
	info, ok := c.byName[name]
	if !ok {
		return "", fmt.Errorf("no such skill: %s", name)
	}
	return info.Content, nil
}

// Always returns every always-on skill, in discovery order, for the
// REPL's system-prompt suffix builder.
func (c *Catalog) Always() []Info {
	var out []Info
	for _, name := range c.order {
		if info := c.byName[name]; info.Always {
			out = append(out, info)
		}
	}
	return out
}

// OnDemand returns every skill available to load_skill but not injected
// by default, for /skills listing.
func (c *Catalog) OnDemand() []Info {
	var out []Info
	for _, name := range c.order {
		if info := c.byName[name]; !info.Always {
			out = append(out, info)
		}
	}
	return out
}

// All returns every discovered skill in discovery order.
func (c *Catalog) All() []Info {
	out := make([]Info, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.byName[name])
	}
	return out
}

// PromptSuffix renders the always-on skills into the system-prompt
// suffix the REPL driver appends, per spec §4.I.
func (c *Catalog) PromptSuffix() string {
	always := c.Always()
	if len(always) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n\nActive skills:\n")
	for _, info := range always {
		fmt.Fprintf(&b, "- %s: %s\n", info.Name, info.Description)
		b.WriteString(info.Content)
		b.WriteString("\n")
	}
	return b.String()
}
