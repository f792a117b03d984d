package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRestyClientDoSendsHeadersAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		if got := r.Header.Get("X-Test"); got != "1" {
			t.Fatalf("missing header, got %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if string(body) != "ping" {
			t.Fatalf("unexpected body %q", body)
		}
		w.Header().Set("X-Reply", "pong")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	client := NewRestyClient(2 * time.Second)
	resp, err := client.Do(context.Background(), Request{
		Method:      "post",
		URL:         srv.URL,
		HTTPVersion: "1.0",
		Headers:     map[string]string{"X-Test": "1"},
		Body:        []byte("ping"),
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if resp.StatusCode() != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode())
	}
	if got := resp.Header().Get("X-Reply"); got != "pong" {
		t.Fatalf("expected reply header, got %q", got)
	}
	if string(resp.Body()) != `{"ok":true}` {
		t.Fatalf("unexpected response body %q", resp.Body())
	}
}

func TestRestyClientDoReturnsStatusWithoutError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "missing", http.StatusNotFound)
	}))
	defer srv.Close()

	resp, err := NewRestyClient(time.Second).Do(context.Background(), Request{URL: srv.URL})
	if err != nil {
		t.Fatalf("non-2xx must not be a transport error: %v", err)
	}
	if resp.StatusCode() != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode())
	}
}

func TestRestyClientDoTimesOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	_, err := NewRestyClient(time.Second).Do(context.Background(), Request{
		URL:     srv.URL,
		Timeout: 50 * time.Millisecond,
	})
	if err == nil {
		t.Fatalf("expected timeout error")
	}
}

func TestRestyClientRequestTimeoutOverridesFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(300 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := NewRestyClient(50 * time.Millisecond)
	resp, err := client.Do(context.Background(), Request{
		URL:     srv.URL,
		Timeout: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("request with longer timeout failed: %v", err)
	}
	if resp.StatusCode() != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode())
	}

	if _, err := client.Do(context.Background(), Request{URL: srv.URL}); err == nil {
		t.Fatalf("expected fallback timeout without Request.Timeout")
	}
}
