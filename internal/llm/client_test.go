package llm

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTrip func(*http.Request) *http.Response

func (rt roundTrip) RoundTrip(req *http.Request) (*http.Response, error) {
	return rt(req), nil
}

func jsonResponse(status int, body string) *http.Response {
	h := make(http.Header)
	h.Set("Content-Type", "application/json")
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     h,
	}
}

func TestChat(t *testing.T) {
	client := &Client{
		BaseURL: "https://api.test/v1",
		APIKey:  "secret",
		Model:   "gpt-test",
		HTTPClient: &http.Client{
			Transport: roundTrip(func(req *http.Request) *http.Response {
				if req.URL.Path != "/v1/chat/completions" {
					t.Errorf("unexpected path %s", req.URL.Path)
				}
				if got := req.Header.Get("Authorization"); got != "Bearer secret" {
					t.Errorf("unexpected auth header %q", got)
				}
				body, _ := io.ReadAll(req.Body)
				if !strings.Contains(string(body), "Known facts") {
					t.Errorf("expected user prompt in payload: %s", body)
				}
				return jsonResponse(200, `{"choices":[{"index":0,"message":{"role":"assistant","content":" 3 \n"}}]}`)
			}),
		},
	}
	out, err := client.Chat(context.Background(), "system", "Known facts: {A}")
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if out != "3" {
		t.Fatalf("unexpected chat output %q", out)
	}
}

func TestChatAPIError(t *testing.T) {
	client := &Client{
		BaseURL: "https://api.test/v1",
		Model:   "gpt-test",
		HTTPClient: &http.Client{
			Transport: roundTrip(func(req *http.Request) *http.Response {
				return jsonResponse(400, `{"error":{"message":"bad","type":"invalid_request_error"}}`)
			}),
		},
	}
	if _, err := client.Chat(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error")
	}
}

func TestChatEmptyChoices(t *testing.T) {
	client := &Client{
		BaseURL: "https://api.test/v1",
		Model:   "gpt-test",
		HTTPClient: &http.Client{
			Transport: roundTrip(func(req *http.Request) *http.Response {
				return jsonResponse(200, `{"choices":[]}`)
			}),
		},
	}
	if _, err := client.Chat(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestChatRequiresModel(t *testing.T) {
	if _, err := (&Client{}).Chat(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error without model")
	}
}
