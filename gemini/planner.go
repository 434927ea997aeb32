package gemini

import (
	"context"
	"fmt"

	"commitstack"
)

// Compile-time interface verification.
var _ commitstack.Planner = (*Planner)(nil)

// Planner implements commitstack.Planner using Google Gemini. It returns
// the model's raw text; JSON extraction and plan validation happen in the
// caller, where parse failures can be itemized for a retry prompt.
type Planner struct {
	client GenerativeClient
	model  string
}

// NewPlanner creates a new Planner.
func NewPlanner(client GenerativeClient, model string) *Planner {
	return &Planner{client: client, model: model}
}

// Plan sends the prompts to the model and returns the raw response text.
func (p *Planner) Plan(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	contents := []*Content{{
		Parts: []*Part{{Text: userPrompt}},
	}}

	temp := float32(0.4)
	config := &GenerateContentConfig{
		SystemInstruction: &Content{
			Parts: []*Part{{Text: systemPrompt}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
	}

	resp, err := p.client.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return "", err
	}
	if resp == nil {
		return "", fmt.Errorf("gemini: returned nil response")
	}
	return resp.Text, nil
}
