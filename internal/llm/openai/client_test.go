package openai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"resume-converter/internal/llm"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient("test-key", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	client.baseURL = srv.URL
	client.httpClient = srv.Client()
	return client, srv
}

func completionResponse(content string) string {
	return `{"id":"chatcmpl-1","choices":[{"message":{"role":"assistant","content":` + mustQuote(content) + `}}],"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`
}

func mustQuote(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func TestStructureResumeSendsCandidateInfo(t *testing.T) {
	var captured []byte
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured, _ = io.ReadAll(r.Body)
		io.WriteString(w, completionResponse(`{"candidateName":"John Tan"}`))
	})

	out, err := client.StructureResume(context.Background(), llm.StructureInput{
		ResumeText:     "resume body",
		CandidateName:  "John Tan",
		Nationality:    "Malaysian",
		Gender:         "Male",
		ExpectedSalary: "3,800",
		NoticePeriod:   "1 month",
	})
	if err != nil {
		t.Fatalf("structure failed: %v", err)
	}
	if !strings.Contains(out, "John Tan") {
		t.Fatalf("unexpected output: %q", out)
	}

	body := string(captured)
	for _, want := range []string{"John Tan", "Malaysian", "3,800", "1 month", "json_object", "resume body"} {
		if !strings.Contains(body, want) {
			t.Fatalf("request body missing %q", want)
		}
	}
}

func TestTranscribeDocumentSendsInlineFile(t *testing.T) {
	var captured []byte
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		captured, _ = io.ReadAll(r.Body)
		io.WriteString(w, completionResponse("transcribed text"))
	})

	out, err := client.TranscribeDocument(context.Background(), []byte("%PDF-fake"), "application/pdf")
	if err != nil {
		t.Fatalf("transcribe failed: %v", err)
	}
	if out != "transcribed text" {
		t.Fatalf("unexpected output: %q", out)
	}
	if !strings.Contains(string(captured), "data:application/pdf;base64,") {
		t.Fatal("request body missing inline file data")
	}
}

func TestMissingCredentialsBeforeAnyCall(t *testing.T) {
	called := false
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	client.apiKey = ""

	_, err := client.StructureResume(context.Background(), llm.StructureInput{ResumeText: "x"})
	if !errors.Is(err, llm.ErrMissingCredentials) {
		t.Fatalf("expected ErrMissingCredentials, got %v", err)
	}
	if called {
		t.Fatal("no network call should happen without credentials")
	}
}

func TestUpstreamErrorIsServiceError(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		io.WriteString(w, `{"error":{"message":"rate limited","type":"rate_limit_error"}}`)
	})

	_, err := client.StructureResume(context.Background(), llm.StructureInput{ResumeText: "x"})
	if !errors.Is(err, llm.ErrService) {
		t.Fatalf("expected ErrService, got %v", err)
	}
	if !strings.Contains(err.Error(), "rate limited") {
		t.Fatalf("expected upstream message in error, got %v", err)
	}
}
