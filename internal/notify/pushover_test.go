package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestPushoverNotifier_Push(t *testing.T) {
	var gotForm map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm failed: %v", err)
		}
		gotForm = map[string]string{
			"token":   r.PostFormValue("token"),
			"user":    r.PostFormValue("user"),
			"message": r.PostFormValue("message"),
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewTestNotifier("app-token", "user-key", srv.URL)

	if err := n.Push(context.Background(), "Recording test question"); err != nil {
		t.Fatalf("Push failed: %v", err)
	}

	if gotForm["token"] != "app-token" || gotForm["user"] != "user-key" {
		t.Errorf("Credentials not sent correctly: %+v", gotForm)
	}
	if gotForm["message"] != "Recording test question" {
		t.Errorf("Message mismatch: %q", gotForm["message"])
	}
}

func TestPushoverNotifier_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewTestNotifier("bad-token", "user-key", srv.URL)

	if err := n.Push(context.Background(), "hello"); err == nil {
		t.Error("Expected error for rejected delivery, got nil")
	}
}

func TestPushoverNotifier_Unreachable(t *testing.T) {
	n := NewTestNotifier("token", "user", "http://127.0.0.1:1")

	if err := n.Push(context.Background(), "hello"); err == nil {
		t.Error("Expected error for unreachable endpoint, got nil")
	}
}

func TestNoopNotifier(t *testing.T) {
	n := NewNoopNotifier()
	if err := n.Push(context.Background(), "dropped"); err != nil {
		t.Errorf("NoopNotifier should never fail, got %v", err)
	}
}
