package gemini

import (
	"context"
	"errors"
	"sync"

	"github.com/sgupta/personabot/internal/config"
	"github.com/sgupta/personabot/internal/rag/llm"
	"github.com/sgupta/personabot/pkg/logging"
	"google.golang.org/genai"
)

type llmClient struct {
	client    *genai.Client
	modelName string
	persona   llm.Persona
	tools     []llm.Tool
}

var logger *logging.Logger
var geminiClient *llmClient
var once sync.Once

func GetGeminiClient(ctx context.Context, modelName string, apikey string, persona llm.Persona, tools []llm.Tool) llm.Provider {
	once.Do(func() {
		logger = logging.NewLogger("llm_gemini")
		newGeminiClient(ctx, modelName, apikey, persona, tools)
	})

	if geminiClient == nil {
		return nil
	}
	return &llmClient{
		client:    geminiClient.client,
		modelName: geminiClient.modelName,
		persona:   geminiClient.persona,
		tools:     geminiClient.tools,
	}
}

func newGeminiClient(ctx context.Context, modelName string, apikey string, persona llm.Persona, tools []llm.Tool) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Gemini client:", "error", err)
	}
	if c != nil {
		geminiClient = &llmClient{client: c, modelName: modelName, persona: persona, tools: tools}
		logger.Info("Gemini client created", "model", modelName)
		go closeClient(ctx, geminiClient)
	}
}

func closeClient(ctx context.Context, c *llmClient) {
	<-ctx.Done()
	logger.Info("Closing Gemini client")
	c.client = nil
	c.modelName = ""
}

func (c *llmClient) Generate(ctx context.Context, userQuery string, matches []string, messageHistory []string) (llm.Reply, error) {
	log := logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	systemInstruction := &genai.Content{
		Parts: []*genai.Part{
			{Text: c.persona.SystemPrompt(matches)},
		},
	}

	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: systemInstruction,
		Temperature:       genai.Ptr(config.ModelTemperature),
		Tools:             declareTools(c.tools),
	}

	contents := []*genai.Content{
		genai.NewContentFromText(llm.UserPrompt(userQuery, messageHistory), genai.RoleUser),
	}

	var toolsUsed []string

	// the model may ask for tools before it settles on an answer; feed the
	// results back until it stops, bounded so a confused model can't spin
	for round := 0; round < config.MaxToolLoopRounds; round++ {
		result, err := c.client.Models.GenerateContent(ctx, c.modelName, contents, contentConfig)
		if err != nil {
			log.Error("Gemini generation failed", "error", err)
			return llm.Reply{}, err
		}

		calls := result.FunctionCalls()
		if len(calls) == 0 {
			return llm.Reply{Answer: result.Text(), ToolsUsed: toolsUsed}, nil
		}

		if len(result.Candidates) > 0 && result.Candidates[0].Content != nil {
			contents = append(contents, result.Candidates[0].Content)
		}

		for _, fc := range calls {
			log.Debug("Tool called", "tool", fc.Name)
			toolsUsed = append(toolsUsed, fc.Name)

			response := map[string]any{}
			if tool, ok := llm.FindTool(c.tools, fc.Name); ok {
				response = tool.Execute(ctx, fc.Args)
			} else {
				log.Warn("Model called unknown tool", "tool", fc.Name)
			}

			contents = append(contents, &genai.Content{
				Role: genai.RoleUser,
				Parts: []*genai.Part{
					{FunctionResponse: &genai.FunctionResponse{Name: fc.Name, Response: response}},
				},
			})
		}
	}

	return llm.Reply{}, errors.New("tool loop did not settle")
}

func declareTools(tools []llm.Tool) []*genai.Tool {
	if len(tools) == 0 {
		return nil
	}

	declarations := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, t := range tools {
		properties := make(map[string]*genai.Schema, len(t.Params))
		for name, p := range t.Params {
			properties[name] = &genai.Schema{
				Type:        genai.TypeString,
				Description: p.Description,
			}
		}
		declarations = append(declarations, &genai.FunctionDeclaration{
			Name:        t.Name,
			Description: t.Description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: properties,
				Required:   t.Required,
			},
		})
	}
	return []*genai.Tool{{FunctionDeclarations: declarations}}
}
