package llm

import (
	"context"
	"fmt"
)

// MockLLM is a scriptable LLMClient for local mode and tests. When
// GenerateFunc is unset it echoes a canned reply.
type MockLLM struct {
	GenerateFunc func(ctx context.Context, systemInstruction, prompt string) (string, error)
}

func NewMockLLM() *MockLLM {
	return &MockLLM{}
}

// Generate implements domain.LLMClient.
func (m *MockLLM) Generate(ctx context.Context, systemInstruction, prompt string) (string, error) {
	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, systemInstruction, prompt)
	}
	return fmt.Sprintf("(mock) received a %d-character prompt", len(prompt)), nil
}
