package formatter

import (
	"go/format"
	"regexp"
	"sort"
	"strings"

	"github.com/dxshie/kv2/internal/errors"
)

var importRegex = regexp.MustCompile(`(?s)import\s*\((.+?)\)`)

// Formatter is responsible for formatting Go code according to standard conventions
type Formatter struct{}

// NewFormatter creates a new Formatter instance
func NewFormatter() *Formatter {
	return &Formatter{}
}

// Format takes Go code as a string and returns properly formatted Go code
func (f *Formatter) Format(code string) (string, error) {
	if strings.TrimSpace(code) == "" {
		return "", nil
	}

	formatted, err := format.Source([]byte(code))
	if err != nil {
		return "", errors.NewFormatError("failed to parse generated Go code", err)
	}

	return f.formatImports(string(formatted)), nil
}

// formatImports organizes import statements with standard library imports first,
// followed by third-party imports with a blank line in between
func (f *Formatter) formatImports(code string) string {
	importMatches := importRegex.FindStringSubmatch(code)
	if len(importMatches) < 2 {
		// No import block found or it's a single-line import
		return code
	}

	var stdLibImports, thirdPartyImports []string
	for _, line := range strings.Split(strings.TrimSpace(importMatches[1]), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		// The path is the last field; a name may precede it.
		fields := strings.Fields(line)
		importPath := strings.Trim(fields[len(fields)-1], `"`)
		first, _, _ := strings.Cut(importPath, "/")
		if strings.Contains(first, ".") {
			thirdPartyImports = append(thirdPartyImports, line)
		} else {
			stdLibImports = append(stdLibImports, line)
		}
	}

	sort.Slice(stdLibImports, byPath(stdLibImports))
	sort.Slice(thirdPartyImports, byPath(thirdPartyImports))

	var b strings.Builder
	b.WriteString("import (\n")
	for _, imp := range stdLibImports {
		b.WriteString("\t" + imp + "\n")
	}
	if len(stdLibImports) > 0 && len(thirdPartyImports) > 0 {
		b.WriteString("\n")
	}
	for _, imp := range thirdPartyImports {
		b.WriteString("\t" + imp + "\n")
	}
	b.WriteString(")")

	return strings.Replace(code, importMatches[0], b.String(), 1)
}

func byPath(lines []string) func(i, j int) bool {
	path := func(line string) string {
		fields := strings.Fields(line)
		return fields[len(fields)-1]
	}
	return func(i, j int) bool {
		return path(lines[i]) < path(lines[j])
	}
}
