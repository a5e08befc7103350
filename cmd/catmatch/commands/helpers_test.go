// ABOUTME: Shared fixtures for command tests
// ABOUTME: Writes small catalogs and reports into temp dirs and runs the root command

package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

const testSourceCatalog = `[
  {"japfa_id": "J1", "title": "Chicken Curry Cut", "type": "Chicken", "category_name": "Chicken",
   "description": "fresh curry cut chicken pieces", "weight": "500 g", "regular_price": "₹200"},
  {"japfa_id": "J2", "title": "Mutton Keema", "type": "Mutton", "category_name": "Mutton",
   "description": "minced goat meat", "weight": "450 g", "discounted_price": "₹450"},
  {"japfa_id": "J3", "title": "", "type": "Eggs"}
]`

const testTargetCatalog = `[
  {"licious_id": "L1", "title": "Chicken Curry Cut Large", "type": "Chicken", "category_name": "Chicken",
   "description": "curry cut chicken pieces with bone", "weight": "500 g", "regular_price": "₹250"},
  {"licious_id": "L2", "title": "Goat Keema", "type": "Mutton", "category_name": "Mutton",
   "description": "minced goat meat", "weight": "450 g", "regular_price": "₹500"},
  {"licious_id": "L3", "title": "Farm Eggs", "type": "Eggs", "category_name": "Eggs",
   "description": "pack of 6 eggs", "weight": "6 pcs", "regular_price": "₹90"}
]`

const testReport = `{
  "weighted_matches": {
    "J1": {
      "japfa_product": {"title": "Chicken Curry Cut", "category_name": "Chicken", "type": "Chicken"},
      "matches": [
        {"licious_id": "L1", "title": "Chicken Curry Cut Large", "type": "Chicken", "category_name": "Chicken", "confidence": "96.10%"},
        {"licious_id": "L2", "title": "Goat Keema", "type": "Mutton", "category_name": "Mutton", "confidence": "40.00%"}
      ]
    },
    "J2": {
      "japfa_product": {"title": "Mutton Keema", "category_name": "Mutton", "type": "Mutton"},
      "matches": [
        {"licious_id": "L2", "title": "Goat Keema", "type": "Mutton", "category_name": "Mutton", "confidence": "91.50%"},
        {"licious_id": "L1", "title": "Chicken Curry Cut Large", "type": "Chicken", "category_name": "Chicken", "confidence": "75.00%"}
      ]
    }
  }
}`

// fixtures holds paths to files written for one test
type fixtures struct {
	dir    string
	source string
	target string
	report string
}

// writeFixtures writes catalogs and a report and points the cache database at the temp dir
func writeFixtures(t *testing.T) fixtures {
	t.Helper()
	dir := t.TempDir()
	f := fixtures{
		dir:    dir,
		source: filepath.Join(dir, "japfa.json"),
		target: filepath.Join(dir, "licious.json"),
		report: filepath.Join(dir, "report.json"),
	}
	for path, content := range map[string]string{
		f.source: testSourceCatalog,
		f.target: testTargetCatalog,
		f.report: testReport,
	} {
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", path, err)
		}
	}

	t.Setenv("CATMATCH_CACHE_PATH", filepath.Join(dir, "catmatch.db"))
	t.Setenv("CATMATCH_LOG_FILE", "")
	t.Setenv("OPENAI_API_KEY", "")
	return f
}

// runCLI executes the root command and returns stdout
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}
