package service

import (
	"context"
	"encoding/json"
	"fmt"

	customsearch "google.golang.org/api/customsearch/v1"
	"google.golang.org/api/option"
)

// WebSearchResult is a single hit from the Google Custom Search API.
type WebSearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
}

// WebSearchService backs the chat assistant's web_search tool with Google
// Custom Search.
type WebSearchService struct {
	apiKey   string
	engineID string
}

func NewWebSearchService(apiKey, engineID string) *WebSearchService {
	return &WebSearchService{
		apiKey:   apiKey,
		engineID: engineID,
	}
}

func (s *WebSearchService) Search(ctx context.Context, query string) ([]WebSearchResult, error) {
	opts := []option.ClientOption{}
	if s.apiKey != "" {
		opts = append(opts, option.WithAPIKey(s.apiKey))
	}
	searchService, err := customsearch.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create search service: %v", err)
	}

	search := searchService.Cse.List()
	search.Q(query)
	search.Cx(s.engineID)
	search.Num(5)

	result, err := search.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %v", err)
	}

	searchResults := make([]WebSearchResult, 0)
	for _, item := range result.Items {
		searchResults = append(searchResults, WebSearchResult{
			Title:   item.Title,
			Link:    item.Link,
			Snippet: item.Snippet,
		})
	}

	return searchResults, nil
}

// SearchJSON returns the results as a JSON string suitable for a tool-call
// response.
func (s *WebSearchService) SearchJSON(ctx context.Context, query string) (string, error) {
	results, err := s.Search(ctx, query)
	if err != nil {
		return "", err
	}

	jsonResult, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("failed to marshal results: %v", err)
	}

	return string(jsonResult), nil
}
