package reranker

import (
	"context"
	"encoding/json"
	"fmt"

	jsonrepair "github.com/kaptinlin/jsonrepair"
	"github.com/lodestone-ai/lodestone/pkg/llm"
)

const llmScorerSystemPrompt = `You are an expert judge of search relevance.
Given a QUERY and a PASSAGE, respond with a JSON object of the form
{"score": <number between 0 and 1>} where 1 means the passage fully answers
the query and 0 means it is unrelated. Respond with the JSON object only.`

// LLMScorer judges query/passage relevance with a chat model.
type LLMScorer struct {
	client llm.Client
}

// NewLLMScorer creates a scorer backed by the given chat client.
func NewLLMScorer(client llm.Client) *LLMScorer {
	return &LLMScorer{client: client}
}

// Score asks the model for a relevance score in [0, 1].
func (s *LLMScorer) Score(ctx context.Context, query, passage string) (float64, error) {
	messages := []llm.Message{
		llm.NewSystemMessage(llmScorerSystemPrompt),
		llm.NewUserMessage(fmt.Sprintf("<QUERY>\n%s\n</QUERY>\n<PASSAGE>\n%s\n</PASSAGE>", query, passage)),
	}

	resp, err := s.client.Chat(ctx, messages)
	if err != nil {
		return 0, fmt.Errorf("relevance judgment: %w", err)
	}

	score, err := extractScore(resp.Content)
	if err != nil {
		return 0, fmt.Errorf("parse relevance judgment: %w", err)
	}
	return score, nil
}

// Close closes the underlying chat client.
func (s *LLMScorer) Close() error {
	return s.client.Close()
}

// extractScore reads {"score": n} from model output, repairing almost-JSON
// replies (markdown fences, trailing prose) before giving up.
func extractScore(content string) (float64, error) {
	var payload struct {
		Score float64 `json:"score"`
	}

	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(content)
		if repairErr != nil {
			return 0, fmt.Errorf("unparseable model reply %q", content)
		}
		if err := json.Unmarshal([]byte(repaired), &payload); err != nil {
			return 0, fmt.Errorf("unparseable model reply %q", content)
		}
	}

	if payload.Score < 0 || payload.Score > 1 {
		return 0, fmt.Errorf("score %v out of range [0,1]", payload.Score)
	}
	return payload.Score, nil
}
