package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/generative-ai-go/genai"
	"github.com/ragforge/pdfrag/types"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GeminiService is the Gemini-backed chat assistant. It rotates through the
// configured API keys when a call fails, which rides out per-key quota
// exhaustion.
type GeminiService struct {
	apiKeys       []string
	currentKey    int
	client        *genai.Client
	model         *genai.GenerativeModel
	functionsCall map[string]types.FunctionHandler
	mu            sync.Mutex
}

func NewGeminiService(apiKeys []string, modelName string) (*GeminiService, error) {
	if len(apiKeys) == 0 {
		return nil, errors.New("no API keys provided")
	}

	service := &GeminiService{
		apiKeys:       apiKeys,
		currentKey:    0,
		functionsCall: make(map[string]types.FunctionHandler),
	}

	if err := service.initClient(); err != nil {
		return nil, err
	}

	service.model = service.client.GenerativeModel(modelName)
	return service, nil
}

func (s *GeminiService) initClient() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(s.apiKeys[s.currentKey]))
	if err != nil {
		return err
	}
	s.client = client
	return nil
}

func (s *GeminiService) rotateAPIKey() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.currentKey = (s.currentKey + 1) % len(s.apiKeys)
	if err := s.client.Close(); err != nil {
		return err
	}
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(s.apiKeys[s.currentKey]))
	if err != nil {
		return err
	}
	s.client = client
	return nil
}

// Chat sends the last message against the history formed by the earlier
// ones.
func (s *GeminiService) Chat(ctx context.Context, messages []types.Message) (*types.Message, error) {
	if len(messages) == 0 {
		return nil, errors.New("no messages provided")
	}
	prompt := messages[len(messages)-1].Content
	history := make([]*genai.Content, 0, len(messages)-1)
	for _, msg := range messages[:len(messages)-1] {
		history = append(history, &genai.Content{
			Parts: []genai.Part{genai.Text(msg.Content)},
			Role:  geminiRole(msg.Role),
		})
	}
	chat := s.model.StartChat()
	chat.History = history

	resp, err := chat.SendMessage(ctx, genai.Text(prompt))
	if err != nil {
		if err := s.rotateAPIKey(); err != nil {
			return nil, err
		}
		chat = s.model.StartChat()
		chat.History = history
		resp, err = chat.SendMessage(ctx, genai.Text(prompt))
		if err != nil {
			return nil, err
		}
	}

	if len(resp.Candidates) == 0 {
		return nil, errors.New("no response generated")
	}

	candidate := resp.Candidates[0]
	if funcs := candidate.FunctionCalls(); len(funcs) > 0 {
		resp, err = s.handleFunctionCall(ctx, chat, funcs)
		if err != nil {
			return nil, err
		}
	}

	content := ""
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if text, ok := part.(genai.Text); ok {
					content += string(text)
				}
			}
		}
	}

	return &types.Message{
		Role:    "assistant",
		Content: content,
	}, nil
}

func (s *GeminiService) handleFunctionCall(ctx context.Context, chat *genai.ChatSession, functions []genai.FunctionCall) (*genai.GenerateContentResponse, error) {
	funcResults := []genai.Part{}
	for _, function := range functions {
		handler, exists := s.functionsCall[function.Name]
		if !exists {
			return nil, fmt.Errorf("unknown function: %s", function.Name)
		}

		argsBytes, err := json.Marshal(function.Args)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal function args: %v", err)
		}
		result, err := handler(ctx, argsBytes)
		if err != nil {
			return nil, fmt.Errorf("function execution failed: %v", err)
		}
		funcResults = append(funcResults, genai.FunctionResponse{
			Name:     function.Name,
			Response: map[string]any{"result": result},
		})
	}
	resp, err := chat.SendMessage(ctx, funcResults...)
	if err != nil {
		return nil, err
	}
	if len(resp.Candidates) == 0 {
		return nil, errors.New("no response generated")
	}
	candidate := resp.Candidates[0]
	if funcs := candidate.FunctionCalls(); len(funcs) > 0 {
		return s.handleFunctionCall(ctx, chat, funcs)
	}

	return resp, nil
}

func (s *GeminiService) ChatStream(ctx context.Context, messages []types.Message, streamHandler types.StreamHandler) error {
	if len(messages) == 0 {
		return errors.New("no messages provided")
	}
	prompt := messages[len(messages)-1].Content
	iter := s.model.GenerateContentStream(ctx, genai.Text(prompt))

	for {
		resp, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			if err := s.rotateAPIKey(); err != nil {
				return err
			}
			iter = s.model.GenerateContentStream(ctx, genai.Text(prompt))
			resp, err = iter.Next()
			if err != nil {
				return err
			}
		}

		if len(resp.Candidates) == 0 {
			continue
		}

		for _, candidate := range resp.Candidates {
			for _, part := range candidate.Content.Parts {
				if text, ok := part.(genai.Text); ok {
					streamHandler(string(text))
				}
			}
		}
	}
	return nil
}

// RegisterFunction adds a new function to the model's capabilities.
func (s *GeminiService) RegisterFunction(name, description string, parameters map[string]*genai.Schema, handler types.FunctionHandler) {
	functionDeclaration := &genai.FunctionDeclaration{
		Name:        name,
		Description: description,
		Parameters: &genai.Schema{
			Type:       genai.TypeObject,
			Properties: parameters,
			Required:   make([]string, 0, len(parameters)),
		},
	}
	for paramName := range parameters {
		functionDeclaration.Parameters.Required = append(
			functionDeclaration.Parameters.Required,
			paramName,
		)
	}

	tool := &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{functionDeclaration},
	}

	s.model.Tools = append(s.model.Tools, tool)
	s.functionsCall[name] = handler
}

// RegisterRAGFunction exposes the vector store to the model as a
// search_documents tool, mirroring OpenAIService.RegisterRAGFunctionCall.
func (s *GeminiService) RegisterRAGFunction(store interface {
	Search(ctx context.Context, collectionName string, query string, k int) ([]types.SearchResult, error)
}, collectionName string, topK int) {
	params := map[string]*genai.Schema{
		"query": {
			Type:        genai.TypeString,
			Description: "The search query to run against the indexed documents",
		},
	}
	s.RegisterFunction(
		"search_documents",
		"Search the indexed PDF documents for passages relevant to a query",
		params,
		func(ctx context.Context, args []byte) (any, error) {
			var req struct {
				Query string `json:"query"`
			}
			if err := json.Unmarshal(args, &req); err != nil {
				return nil, err
			}
			results, err := store.Search(ctx, collectionName, req.Query, topK)
			if err != nil {
				return nil, err
			}
			data, err := json.Marshal(results)
			if err != nil {
				return nil, err
			}
			return string(data), nil
		},
	)
}

func geminiRole(role string) string {
	if role == "assistant" {
		return "model"
	}
	return "user"
}
