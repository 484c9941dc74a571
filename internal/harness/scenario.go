package harness

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Scenario is a named, ordered sequence of operations run against both
// transports.
type Scenario struct {
	// Name uniquely identifies the scenario.
	Name string `yaml:"name"`

	// Description explains what the scenario validates.
	Description string `yaml:"description"`

	Steps []Step `yaml:"steps"`
}

// Step is one logical operation.
type Step struct {
	Name string `yaml:"name"`
	Op   Op     `yaml:"op"`

	// Args are the operation inputs. Absent keys are not sent.
	Args map[string]any `yaml:"args,omitempty"`

	// Auth names the variable holding the bearer token.
	Auth string `yaml:"auth,omitempty"`

	// Expect is the required outcome. Empty means both sides only have to agree.
	Expect Outcome `yaml:"expect,omitempty"`

	// Message is the required error message on both sides.
	Message string `yaml:"message,omitempty"`

	// Capture stores record fields into variables: var -> field path.
	Capture map[string]string `yaml:"capture,omitempty"`

	// Fields are expected record values: field path -> literal or ${var}.
	Fields map[string]any `yaml:"fields,omitempty"`

	// Increased requires a field to be strictly greater than a variable:
	// field path -> var name.
	Increased map[string]string `yaml:"increased,omitempty"`

	// Setup marks a precondition; its failure aborts the scenario.
	Setup bool `yaml:"setup,omitempty"`
}

//go:embed scenarios/*.yaml
var builtinFS embed.FS

// LoadScenario reads and validates a scenario file.
func LoadScenario(file string) (*Scenario, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes YAML with unknown fields rejected.
func ParseScenario(data []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := validateScenario(&s); err != nil {
		return nil, fmt.Errorf("invalid scenario %q: %w", s.Name, err)
	}
	return &s, nil
}

// Builtin returns the embedded scenarios sorted by name.
func Builtin() ([]*Scenario, error) {
	entries, err := fs.Glob(builtinFS, "scenarios/*.yaml")
	if err != nil {
		return nil, err
	}
	out := make([]*Scenario, 0, len(entries))
	for _, name := range entries {
		data, err := builtinFS.ReadFile(name)
		if err != nil {
			return nil, err
		}
		s, err := ParseScenario(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path.Base(name), err)
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}
	for i, st := range s.Steps {
		if st.Name == "" {
			return fmt.Errorf("steps[%d]: name is required", i)
		}
		if _, err := lookupOp(st.Op); err != nil {
			return fmt.Errorf("steps[%d]: %w", i, err)
		}
		if st.Expect != "" && !st.Expect.valid() {
			return fmt.Errorf("steps[%d]: unknown expect %q", i, st.Expect)
		}
		for v, field := range st.Capture {
			if v == "" || field == "" {
				return fmt.Errorf("steps[%d]: capture entries need a variable and a field", i)
			}
		}
		for field, v := range st.Increased {
			if field == "" || strings.TrimSpace(v) == "" {
				return fmt.Errorf("steps[%d]: increased entries need a field and a variable", i)
			}
		}
	}
	return nil
}
