package intelligence

import (
	"context"
	"errors"
	"fmt"

	"github.com/tessavero/fabula/internal/importer"
	"github.com/tessavero/fabula/internal/llm"
)

// OutlineService runs the director round: project brief in, validated
// outline schema out.
type OutlineService struct {
	gen Generator
}

func NewOutlineService(gen Generator) *OutlineService {
	return &OutlineService{gen: gen}
}

// Generate sends the outline prompt and extracts the structured outline from
// the response text. The returned schema has passed structural validation
// but has not yet been converted to a project; callers hand it to
// importer.ToProjectOutline together with the user's character cards.
func (s *OutlineService) Generate(ctx context.Context, req OutlineRequest) (*importer.OutlineSchema, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid outline request: %w", err)
	}

	resp, err := s.gen.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskOutline,
		SystemPrompt: outlineSystemPrompt,
		UserPrompt:   BuildOutlinePrompt(req),
	})
	if err != nil {
		return nil, err
	}

	schema, err := llm.ExtractJSON(resp.Text, func(s importer.OutlineSchema) error {
		return errors.Join(importer.ValidateOutlineSchema(&s)...)
	})
	if err != nil {
		return nil, err
	}
	return &schema, nil
}
