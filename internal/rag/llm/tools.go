package llm

import (
	"context"
	"fmt"

	"github.com/sgupta/personabot/internal/metrics"
	"github.com/sgupta/personabot/internal/notify"
	"github.com/sgupta/personabot/pkg/logging"
)

// Tool is a provider-neutral function the model may call while answering.
// Each provider translates Name/Description/Params into its own declaration
// format; Execute always runs server-side.
type Tool struct {
	Name        string
	Description string
	Params      map[string]ToolParam
	Required    []string
	Execute     func(ctx context.Context, args map[string]any) map[string]any
}

type ToolParam struct {
	Type        string
	Description string
}

// PersonaTools returns the two tools the persona carries: one for visitors
// who leave contact details, one for questions it had no answer to. Both
// push a notification to the owner.
func PersonaTools(notifier notify.Notifier) []Tool {
	logger := logging.NewLogger("PersonaTools")

	return []Tool{
		{
			Name:        "record_user_details",
			Description: "Use this tool to record that a user is interested in being in touch and provided an email address",
			Params: map[string]ToolParam{
				"email": {Type: "string", Description: "The email address of this user"},
				"name":  {Type: "string", Description: "The user's name, if they provided it"},
				"notes": {Type: "string", Description: "Any additional information about the conversation that's worth recording to give context"},
			},
			Required: []string{"email"},
			Execute: func(ctx context.Context, args map[string]any) map[string]any {
				email := stringArg(args, "email", "")
				name := stringArg(args, "name", "Name not provided")
				notes := stringArg(args, "notes", "not provided")

				metrics.CountToolInvocation("record_user_details")
				msg := fmt.Sprintf("Recording %s with email %s and notes %s", name, email, notes)
				if err := notifier.Push(ctx, msg); err != nil {
					logger.Error("Failed to push user details", "error", err)
				}
				return map[string]any{"recorded": "ok"}
			},
		},
		{
			Name:        "record_unknown_question",
			Description: "Always use this tool to record any question that couldn't be answered as you didn't know the answer",
			Params: map[string]ToolParam{
				"question": {Type: "string", Description: "The question that couldn't be answered"},
			},
			Required: []string{"question"},
			Execute: func(ctx context.Context, args map[string]any) map[string]any {
				question := stringArg(args, "question", "")

				metrics.CountToolInvocation("record_unknown_question")
				if err := notifier.Push(ctx, fmt.Sprintf("Recording %s", question)); err != nil {
					logger.Error("Failed to push unknown question", "error", err)
				}
				return map[string]any{"recorded": "ok"}
			},
		},
	}
}

// FindTool looks a tool up by the name the model called.
func FindTool(tools []Tool, name string) (Tool, bool) {
	for _, t := range tools {
		if t.Name == name {
			return t, true
		}
	}
	return Tool{}, false
}

func stringArg(args map[string]any, key, fallback string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return fallback
}
