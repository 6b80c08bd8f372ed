package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// fakeAIServer 记录请求并按 step 返回预设响应
type fakeAIServer struct {
	mu       sync.Mutex
	requests []map[string]any
	steps    map[int]string // step → 响应 JSON
	report   string
	status   map[int]int // step → 状态码
}

func (f *fakeAIServer) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ai/checkin-question", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		req, err := DecodeJSON(body)
		if err != nil {
			t.Errorf("bad request body: %v", err)
		}
		obj := req.(map[string]any)
		f.mu.Lock()
		f.requests = append(f.requests, obj)
		f.mu.Unlock()

		step := int(toNumber(obj["step"]))
		if code, ok := f.status[step]; ok {
			w.WriteHeader(code)
			_, _ = w.Write([]byte(`{"detail":"boom"}`))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(f.steps[step]))
	})
	mux.HandleFunc("/ai/daily-report", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		req, _ := DecodeJSON(body)
		f.mu.Lock()
		f.requests = append(f.requests, req.(map[string]any))
		f.mu.Unlock()
		_, _ = w.Write([]byte(f.report))
	})
	return mux
}

func newTestConversation(t *testing.T, f *fakeAIServer, observer StepObserver) *Conversation {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	return NewConversation(NewClient(&ClientConfig{BaseURL: srv.URL}), &ConversationConfig{Observer: observer})
}

func step1Input(late int) map[string]any {
	input, err := ParseInput([]byte(`{
		// 注释允许
		"step": 1,
		"context": {
			"user_profile": {"nickname": "hj"},
			"today_metrics": {"late_night_minutes": ` + itoa(late) + `, "session_features": {"max_session_minutes": 10}},
		},
	}`))
	if err != nil {
		panic(err)
	}
	return input
}

func itoa(n int) string {
	b, _ := json.Marshal(n)
	return string(b)
}

func TestRunChain_FollowsPreviousAnswers(t *testing.T) {
	f := &fakeAIServer{steps: map[int]string{
		1: `{"options":[{"value":"a"},{"value":"late_night_focus"}]}`,
		2: `{"options":[{"value":"s2a"},{"value":"s2b"}]}`,
		3: `{"options":[]}`,
	}}
	var emitted []string
	conv := newTestConversation(t, f, func(name string, _ any) error {
		emitted = append(emitted, name)
		return nil
	})

	res, err := conv.RunChain(context.Background(), step1Input(150), false)
	if err != nil {
		t.Fatalf("RunChain error: %v", err)
	}
	if len(f.requests) != 3 {
		t.Fatalf("requests=%d, want 3", len(f.requests))
	}

	step2 := f.requests[1]
	if toNumber(step2["step"]) != 2 {
		t.Fatalf("step2 request step=%v", step2["step"])
	}
	prev := step2["previous_answers"].([]any)
	if len(prev) != 1 || lookup(prev[0], "selected_values").([]any)[0] != "late_night_focus" {
		t.Fatalf("step2 previous_answers=%v", prev)
	}
	if lookup(step2, "context", "user_profile", "nickname") != "hj" {
		t.Fatalf("step2 should carry the step1 context")
	}

	step3 := f.requests[2]
	prev3 := step3["previous_answers"].([]any)
	if len(prev3) != 2 || lookup(prev3[1], "selected_values").([]any)[0] != "s2a" {
		t.Fatalf("step3 previous_answers=%v", prev3)
	}

	if len(res.Answers) != 3 || len(res.Answers[2].SelectedValues) != 0 {
		t.Fatalf("answers=%+v", res.Answers)
	}
	want := []string{"step1_output", "step2_output", "step3_output"}
	if len(emitted) != len(want) {
		t.Fatalf("emitted=%v", emitted)
	}
	for i := range want {
		if emitted[i] != want[i] {
			t.Fatalf("emitted=%v, want %v", emitted, want)
		}
	}
}

func TestRunChain_Step2WithoutOptionsFails(t *testing.T) {
	f := &fakeAIServer{steps: map[int]string{
		1: `{"options":[{"value":"a"}]}`,
		2: `{"options":[]}`,
	}}
	conv := newTestConversation(t, f, nil)

	_, err := conv.RunChain(context.Background(), step1Input(0), false)
	if !errors.Is(err, ErrNoOptions) {
		t.Fatalf("err=%v, want ErrNoOptions", err)
	}
	if len(f.requests) != 2 {
		t.Fatalf("step3 should not be requested, requests=%d", len(f.requests))
	}
}

func TestRunChain_Step2EmptyValueFails(t *testing.T) {
	f := &fakeAIServer{steps: map[int]string{
		1: `{"options":[{"value":"a"}]}`,
		2: `{"options":[{"value":"","label":"空"}]}`,
	}}
	conv := newTestConversation(t, f, nil)

	_, err := conv.RunChain(context.Background(), step1Input(0), false)
	if !errors.Is(err, ErrNoOptions) {
		t.Fatalf("err=%v, want ErrNoOptions", err)
	}
	if len(f.requests) != 2 {
		t.Fatalf("step3 should not be requested, requests=%d", len(f.requests))
	}
}

func TestRunChain_ObserverErrorAborts(t *testing.T) {
	f := &fakeAIServer{steps: map[int]string{
		1: `{"options":[{"value":"a"}]}`,
		2: `{"options":[{"value":"b"}]}`,
	}}
	writeErr := errors.New("disk full")
	conv := newTestConversation(t, f, func(string, any) error { return writeErr })

	_, err := conv.RunChain(context.Background(), step1Input(0), false)
	if !errors.Is(err, writeErr) {
		t.Fatalf("err=%v, want observer error", err)
	}
	if len(f.requests) != 1 {
		t.Fatalf("run should stop after step1, requests=%d", len(f.requests))
	}
}

func TestRunChain_FailFastOnHTTPError(t *testing.T) {
	f := &fakeAIServer{
		steps:  map[int]string{1: `{"options":[{"value":"a"}]}`},
		status: map[int]int{2: http.StatusInternalServerError},
	}
	conv := newTestConversation(t, f, nil)

	_, err := conv.RunChain(context.Background(), step1Input(0), false)
	var herr *HTTPStatusError
	if !errors.As(err, &herr) || herr.StatusCode != http.StatusInternalServerError {
		t.Fatalf("err=%v, want *HTTPStatusError 500", err)
	}
	if len(f.requests) != 2 {
		t.Fatalf("requests=%d, want 2 (no retry)", len(f.requests))
	}
}

func TestRunChain_NonJSONAborts(t *testing.T) {
	f := &fakeAIServer{steps: map[int]string{1: `<html>oops</html>`}}
	conv := newTestConversation(t, f, nil)

	_, err := conv.RunChain(context.Background(), step1Input(0), false)
	var nerr *NonJSONError
	if !errors.As(err, &nerr) {
		t.Fatalf("err=%v, want *NonJSONError", err)
	}
}

func TestRunChain_WithReport(t *testing.T) {
	f := &fakeAIServer{
		steps: map[int]string{
			1: `{"options":[{"value":"mixed_pace"}]}`,
			2: `{"options":[{"value":"x"}]}`,
			3: `{"options":[{"value":"y"}]}`,
		},
		report: `{"title":"t","summary":"s","comments":["c"],"suggestions":[{"title":"a","description":"b","why_this":"c","difficulty":"medium"}]}`,
	}
	conv := newTestConversation(t, f, nil)

	res, err := conv.RunChain(context.Background(), step1Input(0), true)
	if err != nil {
		t.Fatalf("RunChain report error: %v", err)
	}
	if res.Report == nil {
		t.Fatalf("report missing")
	}
	reportReq := f.requests[3]
	if lookup(reportReq, "checkin_answers", "step3", "selected_values").([]any)[0] != "y" {
		t.Fatalf("report request answers=%v", reportReq["checkin_answers"])
	}
	if lookup(reportReq, "user_profile", "nickname") != "hj" {
		t.Fatalf("report request profile=%v", reportReq["user_profile"])
	}
}

func TestRunChain_InvalidReport(t *testing.T) {
	f := &fakeAIServer{
		steps: map[int]string{
			1: `{"options":[{"value":"a"}]}`,
			2: `{"options":[{"value":"x"}]}`,
			3: `{"options":[]}`,
		},
		report: `{"title":"t","summary":"s","comments":["c"],"suggestions":[{"title":"a","description":"b","why_this":"c","difficulty":"hardish"}]}`,
	}
	conv := newTestConversation(t, f, nil)

	res, err := conv.RunChain(context.Background(), step1Input(0), true)
	var verr *ReportValidationError
	if !errors.As(err, &verr) || verr.Field != "suggestions[0].difficulty" {
		t.Fatalf("err=%v, want difficulty validation error", err)
	}
	if res == nil || res.Report == nil {
		t.Fatalf("invalid report should still be returned for inspection")
	}
}

func TestRunCoverage(t *testing.T) {
	f := &fakeAIServer{steps: map[int]string{
		1: `{"options":[{"value":"a"},{"label":"no value"},{"value":"b"}]}`,
		2: `{"options":[{"value":"z"}]}`,
	}}
	var emitted []string
	conv := newTestConversation(t, f, func(name string, _ any) error {
		emitted = append(emitted, name)
		return nil
	})

	res, err := conv.RunCoverage(context.Background(), step1Input(0))
	if err != nil {
		t.Fatalf("RunCoverage error: %v", err)
	}
	if len(res.Branches) != 2 || res.Branches[0].Value != "a" || res.Branches[1].Value != "b" {
		t.Fatalf("branches=%+v", res.Branches)
	}
	if len(f.requests) != 3 {
		t.Fatalf("requests=%d, want 3", len(f.requests))
	}
	for i, want := range []string{"a", "b"} {
		prev := f.requests[i+1]["previous_answers"].([]any)
		if lookup(prev[0], "selected_values").([]any)[0] != want {
			t.Fatalf("branch %d previous_answers=%v", i, prev)
		}
	}
	if emitted[len(emitted)-1] != "step2_selected_b" {
		t.Fatalf("emitted=%v", emitted)
	}
}

func TestRunCoverage_NoOptions(t *testing.T) {
	f := &fakeAIServer{steps: map[int]string{1: `{"options":[]}`}}
	conv := newTestConversation(t, f, nil)

	if _, err := conv.RunCoverage(context.Background(), step1Input(0)); !errors.Is(err, ErrNoOptions) {
		t.Fatalf("err=%v, want ErrNoOptions", err)
	}
}

func TestPickStep1Value(t *testing.T) {
	t.Parallel()

	metrics := func(late, maxSession, topSwitch int) map[string]any {
		return map[string]any{"context": map[string]any{"today_metrics": map[string]any{
			"late_night_minutes": json.Number(itoa(late)),
			"session_features": map[string]any{
				"max_session_minutes": json.Number(itoa(maxSession)),
				"top_switch_pairs":    []any{map[string]any{"count": json.Number(itoa(topSwitch))}},
			},
		}}}
	}
	opts := func(values ...string) any {
		list := make([]any, 0, len(values))
		for _, v := range values {
			list = append(list, map[string]any{"value": v})
		}
		return map[string]any{"options": list}
	}

	cases := []struct {
		name  string
		input map[string]any
		resp  any
		want  string
	}{
		{"late night wins", metrics(120, 90, 9), opts("mixed_pace", "long_immersion", "late_night_focus"), "late_night_focus"},
		{"late night absent falls to next candidate", metrics(200, 60, 0), opts("x", "long_immersion"), "long_immersion"},
		{"switch pairs", metrics(0, 0, 5), opts("sns_game_alt", "mixed_pace"), "sns_game_alt"},
		{"condition not met skips candidate", metrics(119, 59, 4), opts("late_night_focus", "mixed_pace"), "mixed_pace"},
		{"mixed pace when nothing matches", metrics(10, 10, 1), opts("a", "mixed_pace"), "mixed_pace"},
		{"first option fallback", metrics(10, 10, 1), opts("a", "b"), "a"},
		{"missing metrics", map[string]any{}, opts("q"), "q"},
	}
	for _, c := range cases {
		got, err := PickStep1Value(c.input, c.resp)
		if err != nil {
			t.Fatalf("%s: error %v", c.name, err)
		}
		if got != c.want {
			t.Errorf("%s: got %q, want %q", c.name, got, c.want)
		}
	}

	if _, err := PickStep1Value(map[string]any{}, map[string]any{"options": []any{}}); !errors.Is(err, ErrNoOptions) {
		t.Fatalf("no options should return ErrNoOptions, got %v", err)
	}
	if _, err := PickStep1Value(map[string]any{}, map[string]any{"options": []any{map[string]any{"value": ""}}}); !errors.Is(err, ErrNoOptions) {
		t.Fatalf("empty value should return ErrNoOptions, got %v", err)
	}
}

func TestNextInputDoesNotMutateBase(t *testing.T) {
	t.Parallel()

	base := map[string]any{"step": 1, "context": map[string]any{}}
	next := NextInput(base, 2, []Answer{{Step: 1, SelectedValues: []string{"a"}}})
	if base["step"] != 1 {
		t.Fatalf("base mutated: %v", base)
	}
	if _, ok := base["previous_answers"]; ok {
		t.Fatalf("base got previous_answers")
	}
	if next["step"] != 2 {
		t.Fatalf("next step=%v", next["step"])
	}
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{"": ModeChain, "chain": ModeChain, "coverage": ModeCoverage, "report": ModeReport} {
		got, err := ParseMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseMode(%q)=%q,%v", in, got, err)
		}
	}
	if _, err := ParseMode("deep"); err == nil {
		t.Fatalf("unknown mode accepted")
	}
}
