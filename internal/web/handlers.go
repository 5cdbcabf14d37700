package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/JonMunkholm/hostledger/internal/core"
)

// errInvalidPayload is mapped to CLS002 by core.MapError.
var errInvalidPayload = errors.New("invalid message payload")

// emailPayload is the JSON body of the inbound email webhook.
type emailPayload struct {
	From       string            `json:"from"`
	Subject    string            `json:"subject"`
	Text       string            `json:"text"`
	HTML       string            `json:"html"`
	ReceivedAt *time.Time        `json:"receivedAt"`
	Headers    map[string]string `json:"headers"`
}

func (p emailPayload) empty() bool {
	return strings.TrimSpace(p.From+p.Subject+p.Text+p.HTML) == ""
}

func (p emailPayload) message() core.RawMessage {
	msg := core.RawMessage{
		From:    p.From,
		Subject: p.Subject,
		Text:    p.Text,
		HTML:    p.HTML,
		Headers: p.Headers,
	}
	if p.ReceivedAt != nil {
		msg.ReceivedAt = *p.ReceivedAt
	}
	return msg
}

// handleEmailWebhook classifies and stores one inbound email.
// A message that matches no rule is still a 200 with success false.
func (s *Server) handleEmailWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxMessageSize)

	var p emailPayload
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		if isTooLarge(err) {
			respondError(w, r, errFileTooLarge, http.StatusRequestEntityTooLarge)
			return
		}
		respondError(w, r, fmt.Errorf("%w: %v", errInvalidPayload, err), http.StatusBadRequest)
		return
	}
	if p.empty() {
		respondError(w, r, fmt.Errorf("%w: no sender, subject, or body", errInvalidPayload), http.StatusBadRequest)
		return
	}

	out, err := s.service.IngestEmail(r.Context(), p.message())
	if err != nil {
		status := http.StatusInternalServerError
		if core.IsStorage(err) {
			status = http.StatusBadGateway
		}
		respondError(w, r, err, status)
		return
	}

	writeJSON(w, http.StatusOK, out)
}

// handleHealth reports liveness and store connectivity.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.service.Ping(ctx); err != nil {
		respondError(w, r, err, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ruleResponse describes one classification rule.
type ruleResponse struct {
	Name       string          `json:"name"`
	Collection core.Collection `json:"collection"`
	Sender     string          `json:"sender,omitempty"`
	Subject    string          `json:"subject,omitempty"`
	Fields     []string        `json:"fields"`
	MinMatches int             `json:"minMatches"`
}

// handleListRules returns the active rule table in evaluation order.
func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules := s.service.Classifier().Rules()
	out := make([]ruleResponse, 0, len(rules))
	for _, rule := range rules {
		resp := ruleResponse{
			Name:       rule.Name,
			Collection: rule.Collection,
			MinMatches: rule.MinMatches,
			Fields:     make([]string, 0, len(rule.Fields)),
		}
		if rule.Sender != nil {
			resp.Sender = rule.Sender.String()
		}
		if rule.Subject != nil {
			resp.Subject = rule.Subject.String()
		}
		for _, f := range rule.Fields {
			resp.Fields = append(resp.Fields, f.Name)
		}
		out = append(out, resp)
	}
	writeJSON(w, http.StatusOK, map[string]any{"rules": out})
}
