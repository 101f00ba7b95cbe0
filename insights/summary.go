package insights

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"churnboard-backend/retention"
)

// ChatCompleter is the slice of the OpenAI client this package needs.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Service turns a retention analysis into a short plain-language briefing
// for the dashboard.
type Service struct {
	api   ChatCompleter
	model string
}

// NewFromEnv returns a configured service or nil when OPENAI_API_KEY is
// not set; the summary endpoint is then simply unavailable.
func NewFromEnv() *Service {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil
	}
	model := os.Getenv("INSIGHTS_MODEL")
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Service{api: openai.NewClient(key), model: model}
}

func NewService(api ChatCompleter, model string) *Service {
	return &Service{api: api, model: model}
}

// Summarize asks the model for a short narrative over the computed
// numbers. Only already-derived aggregates leave the process; no raw
// customer rows are sent.
func (s *Service) Summarize(ctx context.Context, analysis retention.RetentionAnalysis) (string, error) {
	if s == nil {
		return "", errors.New("insights not configured")
	}
	resp, err := s.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a retention analyst. Write a concise briefing (max 150 words) for a subscription business operator. Plain text, no markdown.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(analysis),
			},
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("empty completion")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func buildPrompt(a retention.RetentionAnalysis) string {
	var b strings.Builder
	m := a.Metrics
	fmt.Fprintf(&b, "Retention: 30d=%.1f%% 90d=%.1f%% 6m=%.1f%% 12m=%.1f%%\n",
		m.Retention30Day, m.Retention90Day, m.Retention6Month, m.Retention12Month)
	fmt.Fprintf(&b, "Monthly churn: %.1f%% (revenue churn %.1f%%)\n", m.MonthlyChurnRate, m.RevenueChurnRate)
	fmt.Fprintf(&b, "At risk: %d customers, %.2f MRR. Pending cancellations: %d.\n",
		m.CustomersAtRisk, m.RevenueAtRisk, len(a.ActiveCancellations))
	if len(a.ChurnReasons) > 0 {
		b.WriteString("Top churn reasons:")
		for i, r := range a.ChurnReasons {
			if i >= 3 {
				break
			}
			fmt.Fprintf(&b, " %s (%d)", r.Reason, r.Count)
		}
		b.WriteString("\n")
	}
	for _, seg := range a.SegmentRetention {
		fmt.Fprintf(&b, "Segment %s: %d subs, retention %.1f%%\n", seg.Segment, seg.Count, seg.RetentionRate)
	}
	b.WriteString("Summarize the retention situation and the two most urgent actions.")
	return b.String()
}
