// Package genai wraps the completion API used for quiz generation, the study
// chatbot, and report narratives.
package genai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ST-CK/Sturoom/internal/quiz"
)

// Completion is the single remote call everything here funnels through. The
// OpenAI implementation lives below; tests substitute a canned one.
type Completion interface {
	Complete(ctx context.Context, model, system, user string, temperature float32) (string, error)
}

type OpenAICompletion struct {
	client *openai.Client
}

func NewOpenAICompletion(apiKey string) (*OpenAICompletion, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("completion API key is required")
	}
	return &OpenAICompletion{client: openai.NewClient(apiKey)}, nil
}

func (c *OpenAICompletion) Complete(ctx context.Context, model, system, user string, temperature float32) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in completion response")
	}
	return resp.Choices[0].Message.Content, nil
}

// Service holds the model selection and prompt plumbing for the three call
// sites. No retries anywhere: a failed call surfaces to the handler.
type Service struct {
	completion     Completion
	quizModel      string
	narrativeModel string
}

func NewService(completion Completion, quizModel, narrativeModel string) *Service {
	return &Service{completion: completion, quizModel: quizModel, narrativeModel: narrativeModel}
}

const quizSystemPrompt = "You are an AI teacher that returns educational quizzes as JSON only."

const chatSystemPrompt = "You are a study assistant chatbot. Help the user with " +
	"quiz creation, summarizing course material, and forming questions. Answer " +
	"concisely but warmly, without filler."

const narrativeSystemPrompt = "You are an AI report analyzer that outputs JSON only."

// GenerateQuiz builds the mode-specific prompt over the extracted text and
// parses the model's array.
func (s *Service) GenerateQuiz(ctx context.Context, text string, mode quiz.Mode) ([]quiz.QuestionRecord, error) {
	raw, err := s.completion.Complete(ctx, s.quizModel, quizSystemPrompt, BuildQuizPrompt(text, mode), 0.3)
	if err != nil {
		return nil, fmt.Errorf("completion API: %w", err)
	}
	return ParseQuizArray(raw)
}

// Chat returns the assistant's reply verbatim.
func (s *Service) Chat(ctx context.Context, message string) (string, error) {
	return s.completion.Complete(ctx, s.quizModel, chatSystemPrompt, message, 1)
}

// GenerateNarrative turns a report summary into the fixed-shape coaching
// object.
func (s *Service) GenerateNarrative(ctx context.Context, summary any) (map[string]any, error) {
	buf, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}
	raw, err := s.completion.Complete(ctx, s.narrativeModel, narrativeSystemPrompt, BuildNarrativePrompt(string(buf)), 0.2)
	if err != nil {
		return nil, fmt.Errorf("completion API: %w", err)
	}
	return ParseObject(raw)
}
