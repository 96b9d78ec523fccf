package imports

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
	return path
}

func TestHasImportsDetectsBothForms(t *testing.T) {
	if !HasImports(`import "util";`) {
		t.Errorf("expected import statement to be detected")
	}
	if !HasImports(`from "util" import add;`) {
		t.Errorf("expected from-import statement to be detected")
	}
	if HasImports(`let x = 1;`) {
		t.Errorf("expected import-free source to report false")
	}
}

func TestPreprocessImportsInlinesFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "util.vex", `fn helper() { return 1; }`)

	source := `import "util";` + "\n" + `print helper();`
	out, err := PreprocessImports(source, dir)
	if err != nil {
		t.Fatalf("PreprocessImports returned error: %v", err)
	}
	if !strings.Contains(out, "fn helper()") {
		t.Errorf("expected the imported file's body to be inlined, got: %s", out)
	}
	if !strings.Contains(out, "[import: util]") {
		t.Errorf("expected an import banner comment, got: %s", out)
	}
	if !strings.Contains(out, "[end import]") {
		t.Errorf("expected a closing import banner comment, got: %s", out)
	}
	if !strings.Contains(out, "print helper();") {
		t.Errorf("expected the importing file's own statements to survive, got: %s", out)
	}
}

func TestPreprocessImportsAppendsExtensionAutomatically(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "math.vex", `let PI = 3;`)

	out, err := PreprocessImports(`import "math";`, dir)
	if err != nil {
		t.Fatalf("PreprocessImports returned error: %v", err)
	}
	if !strings.Contains(out, "let PI = 3;") {
		t.Errorf("expected math.vex's body inlined, got: %s", out)
	}
}

func TestPreprocessImportsMissingFileErrors(t *testing.T) {
	dir := t.TempDir()
	if _, err := PreprocessImports(`import "nope";`, dir); err == nil {
		t.Fatalf("expected an error for a missing module")
	}
}

func TestPreprocessImportsCycleGuardResolvesSilently(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.vex", `import "b";`+"\n"+`let fromA = 1;`)
	writeFile(t, dir, "b.vex", `import "a";`+"\n"+`let fromB = 2;`)

	out, err := PreprocessImports(`import "a";`, dir)
	if err != nil {
		t.Fatalf("PreprocessImports returned error on a cycle: %v", err)
	}
	if !strings.Contains(out, "fromA") || !strings.Contains(out, "fromB") {
		t.Errorf("expected both modules' definitions present once, got: %s", out)
	}
	// a re-imports b, and b re-imports a; the second occurrence of a must not
	// recurse again or the output would contain fromA/fromB more than once.
	if strings.Count(out, "fromA") != 1 {
		t.Errorf("expected fromA exactly once under the cycle guard, got: %s", out)
	}
}

func TestPreprocessImportsSelectiveImportOnlyPullsNamed(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "util.vex", `
fn wanted() { return 1; }
fn unwanted() { return 2; }
let alsoWanted = 3;
`)

	out, err := PreprocessImports(`from "util" import wanted, alsoWanted;`, dir)
	if err != nil {
		t.Fatalf("PreprocessImports returned error: %v", err)
	}
	if !strings.Contains(out, "fn wanted()") {
		t.Errorf("expected wanted() to be pulled in, got: %s", out)
	}
	if !strings.Contains(out, "alsoWanted") {
		t.Errorf("expected alsoWanted to be pulled in, got: %s", out)
	}
	if strings.Contains(out, "unwanted") {
		t.Errorf("expected unwanted() to be excluded, got: %s", out)
	}
}

func TestPreprocessImportsSelectiveImportHandlesBracesInBody(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "util.vex", `
fn wanted() {
	if (true) {
		return 1;
	}
	return 0;
}
`)

	out, err := PreprocessImports(`from "util" import wanted;`, dir)
	if err != nil {
		t.Fatalf("PreprocessImports returned error: %v", err)
	}
	if !strings.Contains(out, "return 1;") || !strings.Contains(out, "return 0;") {
		t.Errorf("expected the whole nested function body to be captured, got: %s", out)
	}
}

func TestPreprocessImportsNamespaceAliasBanner(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "util.vex", `let x = 1;`)

	out, err := PreprocessImports(`import "util" as u;`, dir)
	if err != nil {
		t.Fatalf("PreprocessImports returned error: %v", err)
	}
	if !strings.Contains(out, "[namespace: u]") {
		t.Errorf("expected a namespace banner comment, got: %s", out)
	}
}

func TestPreprocessImportsRelativePath(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "sub")
	if err := os.Mkdir(sub, 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, sub, "inner.vex", `let inSub = 1;`)

	out, err := PreprocessImports(`import "./sub/inner";`, dir)
	if err != nil {
		t.Fatalf("PreprocessImports returned error: %v", err)
	}
	if !strings.Contains(out, "inSub") {
		t.Errorf("expected relative-path resolution to find sub/inner.vex, got: %s", out)
	}
}

func TestPreprocessImportsPseudoPathEnv(t *testing.T) {
	pathDir := t.TempDir()
	writeFile(t, pathDir, "fromenv.vex", `let viaEnv = 1;`)

	t.Setenv("PSEUDO_PATH", pathDir)

	basePath := t.TempDir()
	out, err := PreprocessImports(`import "fromenv";`, basePath)
	if err != nil {
		t.Fatalf("PreprocessImports returned error: %v", err)
	}
	if !strings.Contains(out, "viaEnv") {
		t.Errorf("expected PSEUDO_PATH entry to be searched, got: %s", out)
	}
}
