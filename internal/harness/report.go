package harness

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

type StepStatus string

const (
	StepPassed  StepStatus = "passed"
	StepFailed  StepStatus = "failed"
	StepSkipped StepStatus = "skipped"
)

type Verdict string

const (
	VerdictPassed  Verdict = "passed"
	VerdictFailed  Verdict = "failed"
	VerdictAborted Verdict = "aborted"
)

// SideResult is what one transport reported for a step.
type SideResult struct {
	Outcome Outcome `json:"outcome"`
	Native  string  `json:"native"`
	Message string  `json:"message,omitempty"`
}

type StepResult struct {
	Name   string      `json:"name"`
	Op     Op          `json:"op"`
	Setup  bool        `json:"setup,omitempty"`
	Status StepStatus  `json:"status"`
	REST   *SideResult `json:"rest,omitempty"`
	RPC    *SideResult `json:"rpc,omitempty"`
	Issues []Issue     `json:"issues,omitempty"`
}

type ScenarioResult struct {
	Name    string       `json:"name"`
	Verdict Verdict      `json:"verdict"`
	Error   string       `json:"error,omitempty"`
	Steps   []StepResult `json:"steps"`

	// Err wraps ErrScenarioAborted for aborted scenarios.
	Err error `json:"-"`
}

// Totals counts scenarios by verdict and steps that never ran.
type Totals struct {
	Passed  int `json:"passed"`
	Failed  int `json:"failed"`
	Aborted int `json:"aborted"`
	Skipped int `json:"skipped"`
}

type Report struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Totals    Totals           `json:"totals"`
}

func (r *Report) add(res ScenarioResult) {
	r.Scenarios = append(r.Scenarios, res)
	switch res.Verdict {
	case VerdictPassed:
		r.Totals.Passed++
	case VerdictAborted:
		r.Totals.Aborted++
	default:
		r.Totals.Failed++
	}
	for _, st := range res.Steps {
		if st.Status == StepSkipped {
			r.Totals.Skipped++
		}
	}
}

// OK reports whether every scenario passed.
func (r *Report) OK() bool {
	return r.Totals.Failed == 0 && r.Totals.Aborted == 0
}

func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func (r *Report) WriteText(w io.Writer) error {
	var b strings.Builder
	for _, s := range r.Scenarios {
		fmt.Fprintf(&b, "%s %s\n", strings.ToUpper(verdictLabel(s.Verdict)), s.Name)
		for _, st := range s.Steps {
			fmt.Fprintf(&b, "  %-7s %s [%s]", st.Status, st.Name, st.Op)
			if st.REST != nil && st.RPC != nil {
				fmt.Fprintf(&b, " rest=%s rpc=%s", st.REST.Native, st.RPC.Native)
			}
			b.WriteString("\n")
			for _, is := range st.Issues {
				fmt.Fprintf(&b, "          - %s\n", is)
			}
		}
		if s.Error != "" {
			fmt.Fprintf(&b, "  error: %s\n", s.Error)
		}
	}
	fmt.Fprintf(&b, "\n%d scenarios: %d passed, %d failed, %d aborted; %d steps skipped\n",
		len(r.Scenarios), r.Totals.Passed, r.Totals.Failed, r.Totals.Aborted, r.Totals.Skipped)
	_, err := io.WriteString(w, b.String())
	return err
}

func verdictLabel(v Verdict) string {
	switch v {
	case VerdictPassed:
		return "pass"
	case VerdictAborted:
		return "abort"
	default:
		return "fail"
	}
}
