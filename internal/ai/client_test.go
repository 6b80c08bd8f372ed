package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yuqie6/WellMirror/internal/model"
)

func TestClientPostJSON_PreservesNumbers(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content-type=%q", r.Header.Get("Content-Type"))
		}
		body, _ := io.ReadAll(r.Body)
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	c := NewClient(&ClientConfig{BaseURL: srv.URL + "/"})
	out, err := c.PostJSON(context.Background(), "echo", map[string]any{"id": json.Number("9007199254740993")})
	if err != nil {
		t.Fatalf("PostJSON error: %v", err)
	}
	if lookup(out, "id") != json.Number("9007199254740993") {
		t.Fatalf("number not preserved: %v", out)
	}
}

func TestClientPostJSON_TypedErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/bad":
			http.Error(w, "nope", http.StatusBadGateway)
		case "/text":
			_, _ = w.Write([]byte("plain text"))
		}
	}))
	defer srv.Close()

	c := NewClient(&ClientConfig{BaseURL: srv.URL})

	_, err := c.PostJSON(context.Background(), "/bad", map[string]any{})
	var herr *HTTPStatusError
	if !errors.As(err, &herr) || herr.StatusCode != http.StatusBadGateway {
		t.Fatalf("err=%v, want HTTPStatusError 502", err)
	}

	_, err = c.PostJSON(context.Background(), "/text", map[string]any{})
	var nerr *NonJSONError
	if !errors.As(err, &nerr) || nerr.Body != "plain text" {
		t.Fatalf("err=%v, want NonJSONError", err)
	}
}

func TestParseInput(t *testing.T) {
	t.Parallel()

	in, err := ParseInput([]byte("{\n// c\n\"step\": 1,\n}"))
	if err != nil {
		t.Fatalf("ParseInput error: %v", err)
	}
	if toNumber(in["step"]) != 1 {
		t.Fatalf("step=%v", in["step"])
	}
	if _, err := ParseInput([]byte(`[1,2]`)); err == nil {
		t.Fatalf("array input should be rejected")
	}
}

func TestCommentClient(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != DefaultCommentEndpoint {
			t.Errorf("path=%s", r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&got)
		_, _ = w.Write([]byte(`{"comment":"잘했어요","suggestion":"일찍 자기"}`))
	}))
	defer srv.Close()

	cc := NewCommentClient(NewClient(&ClientConfig{BaseURL: srv.URL}), "")
	res, err := cc.GenerateComment(context.Background(), &CommentRequest{
		UserID:     "local",
		Date:       "2025-03-01",
		TotalScore: 88,
		CheckIn:    model.CheckInData{Mood: 4, GoalAchievement: 5, SelfRating: 3}.ToMobile(),
	})
	if err != nil {
		t.Fatalf("GenerateComment error: %v", err)
	}
	if res.Comment != "잘했어요" || res.Suggestion != "일찍 자기" {
		t.Fatalf("res=%+v", res)
	}
	if got["totalScore"] != float64(88) || got["user_id"] != "local" {
		t.Fatalf("request body=%v", got)
	}
	if lookup(got, "checkIn", "goalAchieved") != true {
		t.Fatalf("checkIn should use mobile shape: %v", got["checkIn"])
	}
}

func TestParseCommentResponse(t *testing.T) {
	t.Parallel()

	report := map[string]any{
		"summary":     "요약",
		"suggestions": []any{map[string]any{"title": "제목", "description": "설명"}},
	}
	res, err := ParseCommentResponse(report)
	if err != nil {
		t.Fatalf("report shape error: %v", err)
	}
	if res.Comment != "요약" || res.Suggestion != "제목：설명" {
		t.Fatalf("res=%+v", res)
	}

	if _, err := ParseCommentResponse(map[string]any{"comment": "only"}); err == nil {
		t.Fatalf("missing suggestion should fail")
	}
}
