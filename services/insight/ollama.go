package insight

import (
	"context"
	"matchcast-backend/lib/ollama"
	"matchcast-backend/services/matchdata"

	"go.opentelemetry.io/otel/attribute"
)

// OllamaGenerator asks a chat model for the insight.
type OllamaGenerator struct {
	client *ollama.Client
}

func NewOllamaGenerator(client *ollama.Client) OllamaGenerator {
	return OllamaGenerator{client: client}
}

func (g OllamaGenerator) GenerateInsight(ctx context.Context, record matchdata.MatchRecord) (string, error) {
	ctx, span := tracer.Start(ctx, "OllamaGenerator.GenerateInsight")
	defer span.End()
	span.SetAttributes(
		attribute.String("match_id", record.MatchID),
		attribute.String("model", g.client.Model()),
	)

	return g.client.Chat(ctx, ollama.Message{
		Role:    "user",
		Content: BuildPrompt(record),
	})
}
