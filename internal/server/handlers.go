package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tessavero/fabula/internal/importer"
	"github.com/tessavero/fabula/internal/intelligence"
	"github.com/tessavero/fabula/internal/llm"
)

// statusClientClosedRequest mirrors nginx's non-standard code for requests
// abandoned by the client. Superseded generations land here.
const statusClientClosedRequest = 499

// envelope is the uniform response shape: data on success, a message on
// failure, never both.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

func respondData(c *gin.Context, data json.RawMessage) {
	c.JSON(http.StatusOK, envelope{Success: true, Data: data})
}

func respondError(c *gin.Context, status int, msg string) {
	c.JSON(status, envelope{Success: false, Error: msg})
}

func (s *Server) handleOutline() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req intelligence.OutlineRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := req.Validate(); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		resp, err := s.gen.Generate(c.Request.Context(), llm.GenerateRequest{
			Task:         llm.TaskOutline,
			SystemPrompt: intelligence.OutlineSystemPrompt(),
			UserPrompt:   intelligence.BuildOutlinePrompt(req),
		})
		if err != nil {
			s.respondGenerationError(c, err)
			return
		}

		raw, err := llm.ExtractJSON(resp.Text, func(schema importer.OutlineSchema) error {
			return errors.Join(importer.ValidateOutlineSchema(&schema)...)
		})
		if err != nil {
			s.respondGenerationError(c, err)
			return
		}

		// The frontend receives the outline in the AI's own shape and runs
		// the transformer itself; re-marshal the validated schema verbatim.
		data, err := json.Marshal(raw)
		if err != nil {
			respondError(c, http.StatusInternalServerError, "encoding outline")
			return
		}
		respondData(c, data)
	}
}

func (s *Server) handleDialogs() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req intelligence.DialogsRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request body")
			return
		}
		if err := req.Validate(); err != nil {
			respondError(c, http.StatusBadRequest, err.Error())
			return
		}

		resp, err := s.gen.Generate(c.Request.Context(), llm.GenerateRequest{
			Task:         llm.TaskDialogs,
			SystemPrompt: intelligence.DialogsSystemPrompt(),
			UserPrompt:   intelligence.BuildDialogsPrompt(req),
		})
		if err != nil {
			s.respondGenerationError(c, err)
			return
		}

		known := make(map[string]bool, len(req.Characters))
		for _, ch := range req.Characters {
			known[ch.ID] = true
		}
		payload, err := llm.ExtractJSON(resp.Text, func(p importer.DialogsPayload) error {
			return errors.Join(importer.ValidateDialogsPayload(&p, known)...)
		})
		if err != nil {
			s.respondGenerationError(c, err)
			return
		}

		data, err := json.Marshal(gin.H{"dialogs": importer.ToDialogs(&payload)})
		if err != nil {
			respondError(c, http.StatusInternalServerError, "encoding dialogs")
			return
		}
		respondData(c, data)
	}
}

func (s *Server) handleHealthz() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.client.Available(c.Request.Context()) {
			respondError(c, http.StatusServiceUnavailable, "llm vendor unreachable")
			return
		}
		respondData(c, json.RawMessage(`{"status":"ok"}`))
	}
}

// respondGenerationError maps LLM layer errors onto HTTP statuses. A
// superseded request is not a failure; it is logged at debug level only.
func (s *Server) respondGenerationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, llm.ErrSuperseded):
		s.log.WithField("path", c.Request.URL.Path).Debug("generation superseded")
		respondError(c, statusClientClosedRequest, "request superseded")
	case errors.Is(err, llm.ErrInvalidOutput):
		s.log.WithError(err).Warn("unparseable llm output")
		respondError(c, http.StatusInternalServerError, err.Error())
	default:
		s.log.WithError(err).Error("generation failed")
		respondError(c, http.StatusInternalServerError, err.Error())
	}
}
