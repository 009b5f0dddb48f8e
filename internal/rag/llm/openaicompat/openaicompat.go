// Package openaicompat talks to Gemini through its OpenAI-compatible
// endpoint. Kept as an alternative to the native client so the service can
// run against any OpenAI-style API by overriding the base URL.
package openaicompat

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sgupta/personabot/internal/config"
	"github.com/sgupta/personabot/internal/rag/llm"
	"github.com/sgupta/personabot/pkg/logging"
)

type llmClient struct {
	client    openai.Client
	modelName string
	persona   llm.Persona
	tools     []llm.Tool
}

var logger *logging.Logger
var compatClient *llmClient
var once sync.Once

func GetOpenAICompatClient(ctx context.Context, baseURL string, modelName string, apikey string, persona llm.Persona, tools []llm.Tool) llm.Provider {
	once.Do(func() {
		logger = logging.NewLogger("llm_openai_compat")
		compatClient = &llmClient{
			client:    openai.NewClient(option.WithAPIKey(apikey), option.WithBaseURL(baseURL)),
			modelName: modelName,
			persona:   persona,
			tools:     tools,
		}
		logger.Info("OpenAI-compatible client created", "model", modelName, "baseURL", baseURL)
	})

	if compatClient == nil {
		return nil
	}
	return compatClient
}

func (c *llmClient) Generate(ctx context.Context, userQuery string, matches []string, messageHistory []string) (llm.Reply, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(c.persona.SystemPrompt(matches)),
		openai.UserMessage(llm.UserPrompt(userQuery, messageHistory)),
	}

	var toolsUsed []string

	for round := 0; round < config.MaxToolLoopRounds; round++ {
		resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:    openai.ChatModel(c.modelName),
			Messages: messages,
			Tools:    declareTools(c.tools),
		})
		if err != nil {
			log.Error("Chat completion failed", "error", err)
			return llm.Reply{}, err
		}
		if len(resp.Choices) == 0 {
			return llm.Reply{}, errors.New("empty completion response")
		}

		choice := resp.Choices[0]
		if len(choice.Message.ToolCalls) == 0 {
			return llm.Reply{Answer: choice.Message.Content, ToolsUsed: toolsUsed}, nil
		}

		messages = append(messages, choice.Message.ToParam())
		for _, tc := range choice.Message.ToolCalls {
			log.Debug("Tool called", "tool", tc.Function.Name)
			toolsUsed = append(toolsUsed, tc.Function.Name)

			var args map[string]any
			if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
				log.Error("Bad tool arguments", "tool", tc.Function.Name, "error", err)
				args = map[string]any{}
			}

			response := map[string]any{}
			if tool, ok := llm.FindTool(c.tools, tc.Function.Name); ok {
				response = tool.Execute(ctx, args)
			} else {
				log.Warn("Model called unknown tool", "tool", tc.Function.Name)
			}

			encoded, err := json.Marshal(response)
			if err != nil {
				encoded = []byte("{}")
			}
			messages = append(messages, openai.ToolMessage(string(encoded), tc.ID))
		}
	}

	return llm.Reply{}, errors.New("tool loop did not settle")
}

func declareTools(tools []llm.Tool) []openai.ChatCompletionToolParam {
	declarations := make([]openai.ChatCompletionToolParam, 0, len(tools))
	for _, t := range tools {
		properties := make(map[string]any, len(t.Params))
		for name, p := range t.Params {
			properties[name] = map[string]any{
				"type":        p.Type,
				"description": p.Description,
			}
		}
		declarations = append(declarations, openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters: openai.FunctionParameters{
					"type":                 "object",
					"properties":           properties,
					"required":             t.Required,
					"additionalProperties": false,
				},
			},
		})
	}
	return declarations
}
