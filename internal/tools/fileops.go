package tools

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// doReadFile implements the read_file tool. Grounded on the teacher's
// registerFileTools read_file handler in system_tools.go, stripped of
// its offset/limit parameters (spec's schema only names "path").
func doReadFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("Error reading %s: %v", path, err)
	}
	return string(data)
}

// doWriteFile implements the write_file tool. Grounded on the teacher's
// write_file handler: creates parent directories, overwrites in full.
func doWriteFile(path, content string) string {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Sprintf("Error creating directory for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Sprintf("Error writing %s: %v", path, err)
	}
	return fmt.Sprintf("Wrote %d bytes to %s", len(content), path)
}

// doListFiles implements the list_files tool: a single-level directory
// listing with a trailing slash on directories, grounded on the
// teacher's buildTree in codebase_tools.go but limited to one level
// (spec's schema names no max_depth parameter).
func doListFiles(path string) string {
	if path == "" {
		path = "."
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return fmt.Sprintf("Error listing %s: %v", path, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var b strings.Builder
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		fmt.Fprintln(&b, name)
	}
	if b.Len() == 0 {
		return "(empty directory)"
	}
	return b.String()
}

// doSearchFiles implements the search_files tool: a regex content search
// over path, shelling out to ripgrep and falling back to grep, the same
// fallback chain as the teacher's code_search in codebase_tools.go.
func doSearchFiles(pattern, path string) string {
	if path == "" {
		path = "."
	}
	if _, err := regexp.Compile(pattern); err != nil {
		return fmt.Sprintf("Error: invalid pattern: %v", err)
	}

	out, err := exec.Command("rg", "-n", "--no-heading", "--color=never", pattern, path).CombinedOutput()
	result := strings.TrimSpace(string(out))
	if err != nil && result == "" {
		out, err = exec.Command("grep", "-rn", pattern, path).CombinedOutput()
		result = strings.TrimSpace(string(out))
		if err != nil && result == "" {
			return "No matches found."
		}
	}
	if result == "" {
		return "No matches found."
	}
	return result
}
