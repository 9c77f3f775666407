// internal/benchmark/suite.go
package benchmark

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Category classifies a test prompt. The set is closed: the statistical
// summary and the follow-up context chaining both key off these values.
type Category string

const (
	CategoryShort    Category = "short"
	CategoryMedium   Category = "medium"
	CategoryLong     Category = "long"
	CategoryFollowUp Category = "follow-up"
)

// categories lists every category in summary order.
var categories = []Category{CategoryShort, CategoryMedium, CategoryLong, CategoryFollowUp}

// TestCase is a single immutable benchmark prompt.
type TestCase struct {
	ID       string   `json:"id"`
	Category Category `json:"category"`
	Prompt   string   `json:"prompt"`
}

var shortPrompts = []string{
	"What is a variable in Python?",
	"How do I print in JavaScript?",
	"Explain a for loop briefly",
}

var mediumPrompts = []string{
	"Write a bubble sort function in Python with comments",
	"Create a simple calculator program in JavaScript",
	"Explain classes and objects in Python with an example",
}

var longPrompts = []string{
	"Explain object-oriented programming concepts with detailed examples in Python",
	"Write a complete web scraper in Python with error handling and documentation",
	"Create a detailed guide for beginners on how to use Git and GitHub",
}

var followUpPrompts = []string{
	"Can you explain that more simply?",
	"Can you add more comments to the code?",
	"What are some common mistakes beginners make with this?",
}

// DefaultSuite returns the built-in test suite: three prompts per category,
// with ids like short_1, medium_2, followup_3.
func DefaultSuite() []TestCase {
	var suite []TestCase
	add := func(category Category, idPrefix string, prompts []string) {
		for i, prompt := range prompts {
			suite = append(suite, TestCase{
				ID:       fmt.Sprintf("%s_%d", idPrefix, i+1),
				Category: category,
				Prompt:   prompt,
			})
		}
	}
	add(CategoryShort, "short", shortPrompts)
	add(CategoryMedium, "medium", mediumPrompts)
	add(CategoryLong, "long", longPrompts)
	add(CategoryFollowUp, "followup", followUpPrompts)
	return suite
}

// suiteSchema validates user-supplied prompt files before they replace the
// built-in suite.
const suiteSchema = `{
	"type": "array",
	"minItems": 1,
	"items": {
		"type": "object",
		"required": ["id", "category", "prompt"],
		"properties": {
			"id": {"type": "string", "minLength": 1},
			"category": {"enum": ["short", "medium", "long", "follow-up"]},
			"prompt": {"type": "string", "minLength": 1}
		}
	}
}`

// LoadSuite reads a custom test suite from a JSON file and validates it
// against the embedded schema.
func LoadSuite(path string) ([]TestCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read prompts file %s: %w", path, err)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewStringLoader(suiteSchema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("schema validation error for %s: %w", path, err)
	}
	if !result.Valid() {
		var details []string
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return nil, fmt.Errorf("prompts file %s failed validation: %s", path, strings.Join(details, "; "))
	}

	var suite []TestCase
	if err := json.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("unable to parse prompts file %s: %w", path, err)
	}
	return suite, nil
}

// TotalTestCount returns the number of individual tests a run will execute.
func TotalTestCount(suite []TestCase, iterations int) int {
	return len(suite) * iterations
}
