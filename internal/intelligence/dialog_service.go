package intelligence

import (
	"context"
	"errors"
	"fmt"

	"github.com/tessavero/fabula/internal/domain"
	"github.com/tessavero/fabula/internal/importer"
	"github.com/tessavero/fabula/internal/llm"
)

// DialogService runs the screenwriter round: chapter context in, dialog
// sequence out.
type DialogService struct {
	gen Generator
}

func NewDialogService(gen Generator) *DialogService {
	return &DialogService{gen: gen}
}

// Generate sends the dialogs prompt for one chapter and extracts the dialog
// lines from the response. Role ids are checked against the characters in
// the request; an empty role id is narration and always allowed.
func (s *DialogService) Generate(ctx context.Context, req DialogsRequest) ([]domain.Dialog, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid dialogs request: %w", err)
	}

	resp, err := s.gen.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskDialogs,
		SystemPrompt: dialogsSystemPrompt,
		UserPrompt:   BuildDialogsPrompt(req),
	})
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(req.Characters))
	for _, c := range req.Characters {
		known[c.ID] = true
	}

	payload, err := llm.ExtractJSON(resp.Text, func(p importer.DialogsPayload) error {
		return errors.Join(importer.ValidateDialogsPayload(&p, known)...)
	})
	if err != nil {
		return nil, err
	}
	return importer.ToDialogs(&payload), nil
}
