package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"

	"github.com/ragforge/pdfrag/database"
	"github.com/ragforge/pdfrag/types"
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

var SystemMessageDocumentAssistant = openai.ChatCompletionMessage{
	Role:    openai.ChatMessageRoleSystem,
	Content: "You are a document assistant. You answer questions about the indexed PDF documents. When the answer is not in the conversation, search the document collection before responding. Cite the source file and page when you use a retrieved passage. If the documents do not contain the answer, say so.",
}

type OpenAIService struct {
	client        *openai.Client
	functionsCall map[string]types.FunctionHandler
	tools         []openai.Tool
	model         string
}

func NewOpenAIService(baseURL string, apiKey, model string) *OpenAIService {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	client := openai.NewClientWithConfig(config)
	return &OpenAIService{
		client:        client,
		functionsCall: make(map[string]types.FunctionHandler),
		tools:         make([]openai.Tool, 0),
		model:         model,
	}
}

func (s *OpenAIService) Chat(ctx context.Context, messages []types.Message) (*types.Message, error) {
	openaiMessages := s.convertMessages(messages)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Messages: openaiMessages,
			Tools:    s.tools,
			Model:    s.model,
		},
	)
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("no response generated")
	}

	if resp.Choices[0].FinishReason == openai.FinishReasonToolCalls {
		resp, err = s.handleFunctionCall(ctx, openaiMessages, resp)
		if err != nil {
			return nil, err
		}
	}

	return &types.Message{
		Role:    "assistant",
		Content: resp.Choices[0].Message.Content,
	}, nil
}

func (s *OpenAIService) ChatStream(ctx context.Context, messages []types.Message, streamHandler types.StreamHandler) error {
	openaiMessages := s.convertMessages(messages)

	stream, err := s.client.CreateChatCompletionStream(
		ctx,
		openai.ChatCompletionRequest{
			Messages: openaiMessages,
			Tools:    s.tools,
			Model:    s.model,
		},
	)
	if err != nil {
		return err
	}
	defer stream.Close()
	for {
		resp, err := stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			log.Println("Error receiving response from stream:", err)
			return err
		}
		if len(resp.Choices) > 0 {
			streamHandler(resp.Choices[0].Delta.Content)
		}
	}
}

func (s *OpenAIService) convertMessages(messages []types.Message) []openai.ChatCompletionMessage {
	openaiMessages := make([]openai.ChatCompletionMessage, 0, len(messages)+1)
	openaiMessages = append(openaiMessages, SystemMessageDocumentAssistant)
	for _, msg := range messages {
		role := msg.Role
		if role == "" {
			role = openai.ChatMessageRoleUser
		}
		openaiMessages = append(openaiMessages, openai.ChatCompletionMessage{
			Role:    role,
			Content: msg.Content,
		})
	}
	return openaiMessages
}

func (s *OpenAIService) RegisterFunctionCall(name, description string, params jsonschema.Definition, handler types.FunctionHandler) {
	if s.functionsCall == nil {
		s.functionsCall = make(map[string]types.FunctionHandler)
	}
	f := openai.FunctionDefinition{
		Name:        name,
		Description: description,
		Parameters:  params,
	}
	t := openai.Tool{
		Type:     openai.ToolTypeFunction,
		Function: &f,
	}
	s.functionsCall[name] = handler
	s.tools = append(s.tools, t)
}

// RegisterRAGFunctionCall exposes the vector store to the model as a
// search_documents tool.
func (s *OpenAIService) RegisterRAGFunctionCall(store database.VectorStore, collectionName string, topK int) {
	params := jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"query": {
				Type:        jsonschema.String,
				Description: "The search query to run against the indexed documents",
			},
		},
		Required: []string{"query"},
	}
	s.RegisterFunctionCall(
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

// RegisterWebSearchFunctionCall exposes Google Custom Search to the model as
// a web_search tool.
func (s *OpenAIService) RegisterWebSearchFunctionCall(webSearch *WebSearchService) {
	params := jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"query": {
				Type:        jsonschema.String,
				Description: "The query to search the web for",
			},
		},
		Required: []string{"query"},
	}
	s.RegisterFunctionCall(
		"web_search",
		"Search the web for information not present in the indexed documents",
		params,
		func(ctx context.Context, args []byte) (any, error) {
			var req struct {
				Query string `json:"query"`
			}
			if err := json.Unmarshal(args, &req); err != nil {
				return nil, err
			}
			return webSearch.SearchJSON(ctx, req.Query)
		},
	)
}

func (s *OpenAIService) handleFunctionCall(ctx context.Context, openaiMessages []openai.ChatCompletionMessage, resp openai.ChatCompletionResponse) (openai.ChatCompletionResponse, error) {
	openaiMessages = append(openaiMessages, resp.Choices[0].Message)
	for _, toolCall := range resp.Choices[0].Message.ToolCalls {
		if toolCall.Type == openai.ToolTypeFunction {
			handler := s.functionsCall[toolCall.Function.Name]
			if handler == nil {
				return openai.ChatCompletionResponse{}, errors.New("no handler found for function call")
			}
			result, err := handler(ctx, []byte(toolCall.Function.Arguments))
			if err != nil {
				return openai.ChatCompletionResponse{}, err
			}
			content, ok := result.(string)
			if !ok {
				data, err := json.Marshal(result)
				if err != nil {
					return openai.ChatCompletionResponse{}, err
				}
				content = string(data)
			}
			openaiMessages = append(openaiMessages, openai.ChatCompletionMessage{
				Role:       openai.ChatMessageRoleTool,
				Content:    content,
				Name:       toolCall.Function.Name,
				ToolCallID: toolCall.ID,
			})
		}
	}
	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Messages: openaiMessages,
			Tools:    s.tools,
			Model:    s.model,
		},
	)
	if err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	if len(resp.Choices) == 0 {
		return openai.ChatCompletionResponse{}, errors.New("no response generated")
	}
	if resp.Choices[0].FinishReason == openai.FinishReasonToolCalls {
		return s.handleFunctionCall(ctx, openaiMessages, resp)
	}
	return resp, nil
}
