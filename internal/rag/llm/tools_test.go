package llm

import (
	"context"
	"strings"
	"testing"
)

type recordingNotifier struct {
	messages []string
	err      error
}

func (r *recordingNotifier) Push(ctx context.Context, message string) error {
	r.messages = append(r.messages, message)
	return r.err
}

func TestPersonaTools_RecordUserDetails(t *testing.T) {
	notifier := &recordingNotifier{}
	tools := PersonaTools(notifier)

	tool, found := FindTool(tools, "record_user_details")
	if !found {
		t.Fatal("record_user_details tool missing")
	}

	t.Run("full details", func(t *testing.T) {
		result := tool.Execute(context.Background(), map[string]any{
			"email": "visitor@example.com",
			"name":  "Visitor",
			"notes": "wants to collaborate",
		})

		if result["recorded"] != "ok" {
			t.Errorf("Expected recorded=ok, got %v", result)
		}
		last := notifier.messages[len(notifier.messages)-1]
		if !strings.Contains(last, "visitor@example.com") || !strings.Contains(last, "Visitor") {
			t.Errorf("Notification missing details: %q", last)
		}
	})

	t.Run("email only uses fallbacks", func(t *testing.T) {
		tool.Execute(context.Background(), map[string]any{"email": "a@b.com"})

		last := notifier.messages[len(notifier.messages)-1]
		if !strings.Contains(last, "Name not provided") {
			t.Errorf("Expected name fallback in %q", last)
		}
	})
}

func TestPersonaTools_RecordUnknownQuestion(t *testing.T) {
	notifier := &recordingNotifier{}
	tools := PersonaTools(notifier)

	tool, found := FindTool(tools, "record_unknown_question")
	if !found {
		t.Fatal("record_unknown_question tool missing")
	}

	result := tool.Execute(context.Background(), map[string]any{
		"question": "what's your favourite compiler",
	})

	if result["recorded"] != "ok" {
		t.Errorf("Expected recorded=ok, got %v", result)
	}
	if len(notifier.messages) != 1 || !strings.Contains(notifier.messages[0], "favourite compiler") {
		t.Errorf("Notification mismatch: %v", notifier.messages)
	}
}

func TestFindTool_Unknown(t *testing.T) {
	tools := PersonaTools(&recordingNotifier{})
	if _, found := FindTool(tools, "delete_everything"); found {
		t.Error("Expected unknown tool to not be found")
	}
}
