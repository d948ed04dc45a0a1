package e2e_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"math/rand"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

// runCLI runs isjson with stdin and returns stdout, stderr and the error
func runCLI(t testing.TB, stdin []byte, args ...string) (string, string, error) {
	t.Helper()
	cmd := exec.Command("go", append([]string{"run", "../../main.go"}, args...)...)
	cmd.Stdin = bytes.NewReader(stdin)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// TestEndToEnd_NumberLiterals tests that every JSON number literal is valid,
// whatever its range, and how each output format carries it
func TestEndToEnd_NumberLiterals(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "isjson-e2e")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	jsonContent := `{
		"ids": [0, -0, 9007199254740993, 12345678901234567890, 123456789012345678901234567890],
		"ratios": [0.1, 1e-7, 2.5E+3, 1e400],
		"labels": {"": "empty key", "名前": "値", "tab\tkey": "escaped"},
		"empty": {"object": {}, "array": []},
		"absent": null
	}`

	jsonFile := filepath.Join(tempDir, "numbers.json")
	err = os.WriteFile(jsonFile, []byte(jsonContent), 0644)
	require.NoError(t, err)

	outputFile := filepath.Join(tempDir, "numbers_report.json")

	cmd := exec.Command("go", "run", "../../main.go", "-i", jsonFile, "-o", outputFile, "-r", "json", "-a")
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "CLI command failed: %s", string(output))

	data, err := os.ReadFile(outputFile)
	require.NoError(t, err)

	var result struct {
		Source   string            `json:"source"`
		Format   string            `json:"format"`
		Valid    bool              `json:"valid"`
		RootKind string            `json:"root_kind"`
		Errors   []json.RawMessage `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, jsonFile, result.Source)
	assert.Equal(t, "json", result.Format)
	assert.True(t, result.Valid)
	assert.Equal(t, "object", result.RootKind)
	assert.Empty(t, result.Errors)

	// JSON output keeps every literal as written
	stdout, stderr, err := runCLI(t, []byte(jsonContent), "-e", "json")
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, "123456789012345678901234567890")
	assert.Contains(t, stdout, "1e400")

	// CBOR has no float past the float64 range
	_, stderr, err = runCLI(t, []byte(jsonContent), "-e", "cbor")
	require.Error(t, err)
	assert.Contains(t, stderr, "$.ratios[3]")
	assert.Contains(t, stderr, "exit status 1")

	// Integers keep their digits in CBOR
	stdout, stderr, err = runCLI(t, []byte(`[12345678901234567890, 123456789012345678901234567890]`), "-e", "cbor")
	require.NoError(t, err, stderr)
	var ids []any
	require.NoError(t, cbor.Unmarshal([]byte(stdout), &ids))
	require.Len(t, ids, 2)
	assert.Equal(t, uint64(12345678901234567890), ids[0])
	wide, ok := ids[1].(big.Int)
	require.True(t, ok, "got %T", ids[1])
	assert.Equal(t, "123456789012345678901234567890", wide.String())
}

// TestEndToEnd_BinaryFormats tests CBOR and MessagePack input, which can carry
// values JSON cannot
func TestEndToEnd_BinaryFormats(t *testing.T) {
	valid, err := cbor.Marshal(map[string]any{"list": []any{1, "two", nil}, "ok": true})
	require.NoError(t, err)
	stdout, stderr, err := runCLI(t, valid, "-F", "cbor")
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, "valid JSON value (object)")

	tagged, err := cbor.Marshal(map[string]any{"when": cbor.Tag{Number: 1, Content: 1700000000}})
	require.NoError(t, err)
	stdout, stderr, err = runCLI(t, tagged, "-F", "cbor")
	require.Error(t, err)
	assert.Contains(t, stdout, "$.when")
	assert.Contains(t, stderr, "exit status 2")

	bignum, ok := new(big.Int).SetString("123456789012345678901234567890", 10)
	require.True(t, ok)
	wide, err := cbor.Marshal(map[string]any{"n": bignum})
	require.NoError(t, err)
	stdout, stderr, err = runCLI(t, wide, "-F", "cbor", "-r", "json")
	require.Error(t, err)
	assert.Contains(t, stdout, `"path": "$.n"`)
	assert.Contains(t, stdout, `"kind": "bigint"`)
	assert.Contains(t, stderr, "exit status 2")

	packed, err := msgpack.Marshal(map[string]any{"raw": []byte("abc")})
	require.NoError(t, err)
	stdout, stderr, err = runCLI(t, packed, "-F", "msgpack")
	require.Error(t, err)
	assert.Contains(t, stdout, "$.raw")
	assert.Contains(t, stdout, "unsupported_value_kind")
	assert.Contains(t, stderr, "exit status 2")
}

// TestEndToEnd_YAMLOnlyValues tests YAML documents that decode to non-JSON values
func TestEndToEnd_YAMLOnlyValues(t *testing.T) {
	testCases := []struct {
		name string
		yaml string
		code string
		path string
	}{
		{name: "IntegerKeys", yaml: "1: one\n", code: "non_string_key", path: "$"},
		{name: "BoolKeys", yaml: "true: on\nfalse: off\n", code: "non_string_key", path: "$"},
		{name: "NestedPortKeys", yaml: "servers:\n  - 8080: http\n    8443: https\n", code: "non_string_key", path: "$.servers[0]"},
		{name: "NaN", yaml: "a:\n  b: .nan\n", code: "non_finite_number", path: "$.a.b"},
		{name: "Infinity", yaml: "- 1\n- -.inf\n", code: "non_finite_number", path: "$[1]"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stdout, stderr, err := runCLI(t, []byte(tc.yaml), "-F", "yaml", "-r", "json")
			require.Error(t, err)
			assert.Contains(t, stderr, "exit status 2")

			var result struct {
				Errors []struct {
					Path string `json:"path"`
					Code string `json:"code"`
				} `json:"errors"`
			}
			require.NoError(t, json.Unmarshal([]byte(stdout), &result), stdout)
			require.Len(t, result.Errors, 1)
			assert.Equal(t, tc.code, result.Errors[0].Code)
			assert.Equal(t, tc.path, result.Errors[0].Path)
		})
	}
}

// TestEndToEnd_ConfigFile tests that a config file next to the working
// directory is picked up
func TestEndToEnd_ConfigFile(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "isjson-config")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	configFile := filepath.Join(tempDir, "isjson.yml")
	err = os.WriteFile(configFile, []byte("input:\n  format: yaml\nreport:\n  format: yaml\nclassifier:\n  allow_non_finite: true\n"), 0644)
	require.NoError(t, err)

	stdout, stderr, err := runCLI(t, []byte("a: .nan\n"), "-c", configFile)
	require.NoError(t, err, stderr)
	assert.Contains(t, stdout, "valid: true")
	assert.Contains(t, stdout, "root_kind: object")
}

// generateLargeJSON writes a JSON array of records that mix number literal
// forms, empty containers, nulls and non-ASCII text
func generateLargeJSON(t testing.TB, filePath string, itemCount int) {
	// Seed random for reproducible results
	rng := rand.New(rand.NewSource(42))

	records := make([]any, itemCount)
	for i := range records {
		var parent any
		if i > 0 {
			parent = i - 1
		}
		records[i] = map[string]any{
			"seq":    i,
			"parent": parent,
			"wide":   json.Number(fmt.Sprintf("%d%019d", rng.Intn(9)+1, rng.Int63n(1e18))),
			"ratio":  json.Number(fmt.Sprintf("%de-%d", rng.Intn(1000), rng.Intn(400))),
			"label":  fmt.Sprintf("記録 %d", i),
			"shape":  []any{[]any{}, map[string]any{}, []any{rng.Intn(2) == 1, nil}},
		}
	}

	jsonData, err := json.MarshalIndent(records, "", "  ")
	require.NoError(t, err)

	err = os.WriteFile(filePath, jsonData, 0644)
	require.NoError(t, err)
}

// BenchmarkLargeJSON benchmarks the CLI with large JSON files
func BenchmarkLargeJSON(b *testing.B) {
	if testing.Short() {
		b.Skip("skipping benchmark in short mode")
	}

	tempDir, err := os.MkdirTemp("", "isjson-bench")
	require.NoError(b, err)
	defer os.RemoveAll(tempDir)

	sizes := []struct {
		name      string
		itemCount int
	}{
		{"100Items", 100},
		{"1000Items", 1000},
		{"10000Items", 10000},
	}

	for _, size := range sizes {
		b.Run(size.name, func(b *testing.B) {
			jsonFile := filepath.Join(tempDir, fmt.Sprintf("%s.json", size.name))
			generateLargeJSON(b, jsonFile, size.itemCount)

			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				cmd := exec.Command("go", "run", "../../main.go", "-i", jsonFile)
				output, err := cmd.CombinedOutput()
				require.NoError(b, err, "CLI command failed: %s", string(output))
			}
		})
	}
}

// TestEndToEnd_EdgeCases tests various edge cases
func TestEndToEnd_EdgeCases(t *testing.T) {
	testCases := []struct {
		name     string
		json     string
		expected string
		isError  bool
	}{
		{name: "EmptyObject", json: `{}`, expected: "valid JSON value (object)"},
		{name: "EmptyArray", json: `[]`, expected: "valid JSON value (array)"},
		{name: "SingleValue", json: `"just a string"`, expected: "valid JSON value (string)"},
		{name: "SingleNumber", json: `42`, expected: "valid JSON value (number)"},
		{name: "SingleBoolean", json: `true`, expected: "valid JSON value (bool)"},
		{name: "SingleNull", json: `null`, expected: "valid JSON value (null)"},
		{name: "InvalidJSON", json: `{"name": "Invalid JSON",}`, isError: true},
		{name: "TwoDocuments", json: `{} {}`, isError: true},
		{
			name:     "DeeplyNestedObject",
			json:     `{"level1":{"level2":{"level3":{"level4":{"level5":{"value":42}}}}}}`,
			expected: "valid JSON value (object)",
		},
		{name: "DeeplyNestedArray", json: `[[[[[[42]]]]]]`, expected: "valid JSON value (array)"},
		{name: "UnicodeKeys", json: `{"名前": "値", "two words": 1}`, expected: "valid JSON value (object)"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			stdout, stderr, err := runCLI(t, []byte(tc.json))
			if tc.isError {
				assert.Error(t, err, "Expected an error for %s", tc.name)
				assert.Contains(t, stderr, "exit status 1")
				return
			}
			require.NoError(t, err, "CLI command failed for %s: %s", tc.name, stderr)
			assert.Equal(t, "<stdin>: "+tc.expected, strings.TrimSpace(stdout))
		})
	}
}

// TestEndToEnd_MaxDepth tests the nesting limit
func TestEndToEnd_MaxDepth(t *testing.T) {
	stdout, stderr, err := runCLI(t, []byte(`[[[[[[42]]]]]]`), "--max-depth", "3")
	require.Error(t, err)
	assert.Contains(t, stderr, "exit status 2")
	assert.Contains(t, stdout, "depth_exceeded")
	assert.Contains(t, stdout, "$[0][0][0][0]")
}
