package harness

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"taskapi/internal/logging"
)

// ErrScenarioAborted is recorded when a setup step fails.
var ErrScenarioAborted = errors.New("scenario aborted")

// Runner executes scenarios sequentially against two transports.
type Runner struct {
	REST Transport
	RPC  Transport
	Log  logging.Logger

	// SharedStore namespaces email args per transport so that both sides can
	// sign up the same literal against a single store.
	SharedStore bool
	// RunID tags namespaced values; generated when empty.
	RunID string
}

func NewRunner(rest, rpc Transport, log logging.Logger) *Runner {
	return &Runner{REST: rest, RPC: rpc, Log: log.With("component", "harness")}
}

// Run executes every scenario, in order, and always returns a report.
func (r *Runner) Run(ctx context.Context, scenarios []*Scenario) *Report {
	rep := &Report{}
	for _, s := range scenarios {
		res := r.RunScenario(ctx, s)
		r.Log.Info(ctx, "scenario finished", "scenario", s.Name, "verdict", string(res.Verdict))
		rep.add(res)
	}
	return rep
}

// RunScenario runs one scenario. Panics are recovered into the result.
func (r *Runner) RunScenario(ctx context.Context, s *Scenario) (res ScenarioResult) {
	res = ScenarioResult{Name: s.Name, Verdict: VerdictPassed, Steps: make([]StepResult, len(s.Steps))}
	for i, st := range s.Steps {
		res.Steps[i] = StepResult{Name: st.Name, Op: st.Op, Setup: st.Setup, Status: StepSkipped}
	}

	ns := namespacer{}
	if r.SharedStore {
		ns.run = r.RunID
		if ns.run == "" {
			ns.run = uuid.NewString()[:8]
		}
	}
	vars := map[string]map[string]any{r.REST.Name(): {}, r.RPC.Name(): {}}

	cur := 0
	defer func() {
		if p := recover(); p != nil {
			r.Log.Error(ctx, "scenario panicked", "scenario", s.Name, "panic", p)
			res.Verdict = VerdictFailed
			res.Error = fmt.Sprintf("panic: %v", p)
			if cur < len(res.Steps) {
				res.Steps[cur].Status = StepFailed
				res.Steps[cur].Issues = append(res.Steps[cur].Issues, Issue{Kind: IssuePanic, Detail: fmt.Sprint(p)})
			}
		}
	}()

	for i, st := range s.Steps {
		cur = i
		sr := r.runStep(ctx, st, vars, ns)
		res.Steps[i] = sr
		if sr.Status == StepPassed {
			continue
		}
		if st.Setup {
			res.Verdict = VerdictAborted
			res.Err = fmt.Errorf("%w: setup step %q failed", ErrScenarioAborted, st.Name)
		} else {
			res.Verdict = VerdictFailed
			res.Err = fmt.Errorf("step %q failed", st.Name)
		}
		res.Error = res.Err.Error()
		break
	}
	return res
}

func (r *Runner) runStep(ctx context.Context, st Step, vars map[string]map[string]any, ns namespacer) StepResult {
	sr := StepResult{Name: st.Name, Op: st.Op, Setup: st.Setup}
	issue := func(i Issue) { sr.Issues = append(sr.Issues, i) }

	var resps [2]*Response
	for i, t := range []Transport{r.REST, r.RPC} {
		side := t.Name()
		call, err := resolve(st, vars[side], ns, side)
		if err != nil {
			issue(Issue{Kind: IssueCapture, Detail: side + ": " + err.Error()})
			continue
		}
		resp, err := t.Do(ctx, call)
		if err != nil {
			issue(Issue{Kind: IssueTransport, Detail: side + ": " + err.Error()})
			continue
		}
		resps[i] = resp
	}
	if len(sr.Issues) > 0 {
		sr.Status = StepFailed
		return sr
	}

	a, b := resps[0], resps[1]
	sr.REST = &SideResult{Outcome: a.Outcome, Native: a.Native, Message: a.Message}
	sr.RPC = &SideResult{Outcome: b.Outcome, Native: b.Native, Message: b.Message}

	if a.Outcome != b.Outcome {
		issue(Issue{Kind: IssueOutcome, Detail: fmt.Sprintf("rest=%s(%s) rpc=%s(%s)", a.Outcome, a.Native, b.Outcome, b.Native)})
	}
	def, _ := lookupOp(st.Op)
	want := def.successStatus()
	if a.Outcome.ok() && a.Native != strconv.Itoa(want) {
		issue(Issue{Kind: IssueStatus, Detail: fmt.Sprintf("rest status %s, want %d", a.Native, want)})
	}
	if b.Outcome == OutcomeSuccess && b.Envelope != 0 && b.Envelope != want {
		issue(Issue{Kind: IssueStatus, Detail: fmt.Sprintf("rpc status envelope %d, want %d", b.Envelope, want)})
	}
	if st.Expect != "" && (a.Outcome != st.Expect || b.Outcome != st.Expect) {
		issue(Issue{Kind: IssueExpect, Detail: fmt.Sprintf("want %s, rest=%s rpc=%s", st.Expect, a.Outcome, b.Outcome)})
	}

	if st.Message != "" && (a.Message != st.Message || b.Message != st.Message) {
		issue(Issue{Kind: IssueExpect, Detail: fmt.Sprintf("want message %q, rest=%q rpc=%q", st.Message, a.Message, b.Message)})
	}

	if a.Outcome == OutcomeSuccess && b.Outcome == OutcomeSuccess {
		sr.Issues = append(sr.Issues, forbidden("rest", a.Body)...)
		sr.Issues = append(sr.Issues, forbidden("rpc", b.Body)...)
		sr.Issues = append(sr.Issues, Compare(a.Body, b.Body)...)
	}

	for i, t := range []Transport{r.REST, r.RPC} {
		resp := resps[i]
		if !resp.Outcome.ok() {
			continue
		}
		sr.Issues = append(sr.Issues, checkSide(st, t.Name(), resp.Body, vars[t.Name()])...)
	}

	sr.Status = StepPassed
	if len(sr.Issues) > 0 {
		sr.Status = StepFailed
	}
	r.Log.Debug(ctx, "step finished", "step", st.Name, "op", string(st.Op), "status", string(sr.Status))
	return sr
}

// resolve substitutes variables and namespaces emails for one side.
func resolve(st Step, vars map[string]any, ns namespacer, side string) (Call, error) {
	call := Call{Op: st.Op, Revert: ns.revert()}
	args, err := substitute(map[string]any(st.Args), vars)
	if err != nil {
		return call, fmt.Errorf("args: %w", err)
	}
	call.Args = args.(map[string]any)
	if email, ok := call.Args["email"].(string); ok {
		call.Args["email"] = ns.apply(side, email)
	}
	if st.Auth != "" {
		tok, ok := vars[st.Auth]
		if !ok {
			return call, fmt.Errorf("auth: undefined variable %q", st.Auth)
		}
		call.Token = argString(tok)
	}
	return call, nil
}

// checkSide applies field expectations and captures to one side's record.
func checkSide(st Step, side string, body any, vars map[string]any) []Issue {
	var out []Issue
	for _, path := range sortedKeys(st.Fields) {
		want, err := substitute(st.Fields[path], vars)
		if err != nil {
			out = append(out, Issue{Kind: IssueExpect, Path: path, Detail: side + ": " + err.Error()})
			continue
		}
		want = Normalize(lastKey(path), want)
		got, ok := lookup(body, path)
		if !ok {
			out = append(out, Issue{Kind: IssueExpect, Path: path, Detail: side + ": field is missing"})
			continue
		}
		if !reflect.DeepEqual(want, got) {
			out = append(out, Issue{Kind: IssueExpect, Path: path, Detail: fmt.Sprintf("%s: want %v, got %v", side, want, got)})
		}
	}

	for _, path := range sortedStrings(st.Increased) {
		name := st.Increased[path]
		prev, ok := vars[name]
		if !ok {
			out = append(out, Issue{Kind: IssueExpect, Path: path, Detail: fmt.Sprintf("%s: undefined variable %q", side, name)})
			continue
		}
		got, ok := lookup(body, path)
		if !ok || !greater(got, prev) {
			out = append(out, Issue{Kind: IssueExpect, Path: path, Detail: fmt.Sprintf("%s: %v is not after %v", side, got, prev)})
		}
	}

	for _, name := range sortedStrings(st.Capture) {
		path := st.Capture[name]
		got, ok := lookup(body, path)
		if !ok {
			out = append(out, Issue{Kind: IssueCapture, Path: path, Detail: side + ": field to capture is missing"})
			continue
		}
		vars[name] = got
	}
	return out
}

func greater(a, b any) bool {
	switch x := a.(type) {
	case int64:
		y, ok := b.(int64)
		return ok && x > y
	case float64:
		y, ok := b.(float64)
		return ok && x > y
	case string:
		y, ok := b.(string)
		return ok && x > y
	}
	return false
}

func sortedStrings(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
