// Package imports implements the textual import preprocessor spec.md §6.3
// treats as an external collaborator behind pkg/vex's HasImports/
// PreprocessImports hooks: it runs over raw source text before the lexer
// ever sees it, inlining `import "path"` and `from "path" import a, b`
// statements with banner comments, the way a C preprocessor inlines
// #include rather than the compiler resolving modules itself.
package imports

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

const (
	maxDepth  = 32
	extension = ".vex"
)

// stdlibDirs is the built-in standard-library search path, third in the
// resolution order behind relative/absolute and same-directory lookup.
var stdlibDirs = []string{
	"/usr/local/lib/vex",
	"/usr/lib/vex",
}

var (
	importRe = regexp.MustCompile(`^(\s*)import\s+"([^"]+)"(?:\s+as\s+(\w+))?\s*;?\s*$`)
	fromRe   = regexp.MustCompile(`^(\s*)from\s+"([^"]+)"\s+import\s+([\w,\s]+?)\s*;?\s*$`)
)

// HasImports reports whether source contains any import statement, so an
// embedder can skip preprocessing entirely for a self-contained script
// (spec.md §6.1's has_imports hook).
func HasImports(source string) bool {
	for _, line := range strings.Split(source, "\n") {
		if importRe.MatchString(line) || fromRe.MatchString(line) {
			return true
		}
	}
	return false
}

// PreprocessImports resolves every import statement in source, inlining
// the referenced file's text (spec.md §6.3). basePath anchors relative and
// same-directory lookups; it is normally the directory containing source.
func PreprocessImports(source, basePath string) (string, error) {
	seen := map[string]bool{}
	return expand(source, basePath, seen, 0)
}

func expand(source, basePath string, seen map[string]bool, depth int) (string, error) {
	if depth > maxDepth {
		return "", errors.Errorf("import nesting exceeds %d levels", maxDepth)
	}

	var out strings.Builder
	for _, line := range strings.Split(source, "\n") {
		if m := importRe.FindStringSubmatch(line); m != nil {
			text, err := expandOne(m[2], m[3], nil, basePath, seen, depth)
			if err != nil {
				return "", errors.Wrapf(err, "importing %q", m[2])
			}
			out.WriteString(text)
			continue
		}
		if m := fromRe.FindStringSubmatch(line); m != nil {
			names := splitNames(m[3])
			text, err := expandOne(m[2], "", names, basePath, seen, depth)
			if err != nil {
				return "", errors.Wrapf(err, "importing %q", m[2])
			}
			out.WriteString(text)
			continue
		}
		out.WriteString(line)
		out.WriteString("\n")
	}
	return out.String(), nil
}

func splitNames(raw string) []string {
	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if n := strings.TrimSpace(p); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// expandOne resolves and inlines one import. A path already in seen
// resolves silently to the empty string, the cycle guard of spec.md §6.3.
func expandOne(path, alias string, names []string, basePath string, seen map[string]bool, depth int) (string, error) {
	resolved, err := resolvePath(path, basePath)
	if err != nil {
		return "", err
	}
	if seen[resolved] {
		return "", nil
	}
	seen[resolved] = true

	data, err := os.ReadFile(resolved)
	if err != nil {
		return "", errors.Wrapf(err, "reading %q", resolved)
	}
	body := string(data)

	if names != nil {
		body = selectDefinitions(body, names)
	}

	nested, err := expand(body, filepath.Dir(resolved), seen, depth+1)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	if names != nil {
		b.WriteString("// [selective import: " + path + " (" + strings.Join(names, ", ") + ")]\n")
	} else {
		b.WriteString("// [import: " + path + "]\n")
	}
	if alias != "" {
		b.WriteString("// [namespace: " + alias + "]\n")
	}
	b.WriteString(nested)
	if !strings.HasSuffix(nested, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("// [end import]\n")
	return b.String(), nil
}

// resolvePath implements spec.md §6.3's four-step lookup: relative/
// absolute paths recognized by a leading '.' or '/', same-directory lookup
// by module name, the built-in stdlib directory list (~ expanded to
// $HOME), and colon-separated entries of PSEUDO_PATH. A missing extension
// is appended automatically.
func resolvePath(path, basePath string) (string, error) {
	candidate := path
	if !strings.HasSuffix(candidate, extension) {
		candidate += extension
	}

	var tryDirs []string
	if strings.HasPrefix(path, ".") || strings.HasPrefix(path, "/") {
		tryDirs = []string{basePath}
	} else {
		tryDirs = append(tryDirs, basePath)
		tryDirs = append(tryDirs, stdlibDirs...)
		if pp := os.Getenv("PSEUDO_PATH"); pp != "" {
			tryDirs = append(tryDirs, strings.Split(pp, ":")...)
		}
	}

	for _, dir := range tryDirs {
		dir = expandHome(dir)
		full := candidate
		if !filepath.IsAbs(candidate) {
			full = filepath.Join(dir, candidate)
		}
		if _, err := os.Stat(full); err == nil {
			abs, err := filepath.Abs(full)
			if err != nil {
				return "", err
			}
			return abs, nil
		}
	}
	return "", errors.Errorf("module %q not found", path)
}

func expandHome(dir string) string {
	if !strings.HasPrefix(dir, "~") {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return dir
	}
	return home + strings.TrimPrefix(dir, "~")
}

// selectDefinitions extracts only the top-level `fn` or `let` definitions
// named in names, scanning brace depth to find each definition's extent
// rather than the distilled spec's `end`-keyword depth counting, since
// Vex delimits blocks with `{ }` instead (spec.md §6.3 adapted to this
// front end's concrete grammar).
func selectDefinitions(source string, names []string) string {
	want := make(map[string]bool, len(names))
	for _, n := range names {
		want[n] = true
	}

	var out strings.Builder
	runes := []rune(source)
	i := 0
	for i < len(runes) {
		start := i
		name, nameOK := matchTopLevelName(runes, i)
		end := scanStatementEnd(runes, i)
		if nameOK && want[name] {
			out.WriteString(string(runes[start:end]))
			out.WriteString("\n")
		}
		i = end
	}
	return out.String()
}

// matchTopLevelName recognizes `fn name(` or `let name` at position i
// (which must be at the start of a logical line), returning the declared
// name.
func matchTopLevelName(runes []rune, i int) (string, bool) {
	line := string(runes[i:])
	if m := topFnRe.FindStringSubmatch(line); m != nil {
		return m[1], true
	}
	if m := topLetRe.FindStringSubmatch(line); m != nil {
		return m[1], true
	}
	return "", false
}

var (
	topFnRe  = regexp.MustCompile(`^\s*fn\s+(\w+)\s*\(`)
	topLetRe = regexp.MustCompile(`^\s*let\s+(\w+)\b`)
)

// scanStatementEnd returns the offset just past the statement starting at
// i: for a brace-bodied `fn`, the matching closing `}`; otherwise the next
// top-level semicolon or newline.
func scanStatementEnd(runes []rune, i int) int {
	n := len(runes)
	// Skip to the first `{` or `;`/newline at depth 0, tracking string
	// literals so braces inside them don't confuse the scan.
	depth := 0
	inString := false
	seenBrace := false
	j := i
	for j < n {
		c := runes[j]
		switch {
		case inString:
			if c == '\\' {
				j++
			} else if c == '"' {
				inString = false
			}
		case c == '"':
			inString = true
		case c == '{':
			depth++
			seenBrace = true
		case c == '}':
			depth--
			if seenBrace && depth == 0 {
				return j + 1
			}
		case c == ';' && depth == 0 && !seenBrace:
			return j + 1
		case c == '\n' && depth == 0 && !seenBrace:
			return j + 1
		}
		j++
	}
	return n
}
