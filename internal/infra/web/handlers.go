package web

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"telegram-media-relay/internal/domain/model"
)

type loginRequest struct {
	Key string `json:"key"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if s.adminKey == "" || subtle.ConstantTimeCompare([]byte(req.Key), []byte(s.adminKey)) != 1 {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}
	token, err := s.auth.Mint()
	if err != nil {
		s.log.Error().Err(err).Msg("failed to mint ops token")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

type statsResponse struct {
	Recipients int `json:"recipients"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	n, err := s.recipients.Count(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("failed to count recipients")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, statsResponse{Recipients: n})
}

type broadcastRequest struct {
	Text        string `json:"text"`
	ButtonLabel string `json:"button_label"`
	ButtonURL   string `json:"button_url"`
}

type broadcastResponse struct {
	ID        string `json:"id"`
	Attempted int    `json:"attempted"`
	Delivered int    `json:"delivered"`
	Failed    int    `json:"failed"`
}

// handleBroadcast triggers a text broadcast without going through the
// Telegram composition flow. Media broadcasts stay chat-only: they need a
// Telegram file id, which only the chat flow can produce.
func (s *Server) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	var req broadcastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	var button *model.InlineButton
	if req.ButtonLabel != "" && req.ButtonURL != "" {
		button = &model.InlineButton{Label: req.ButtonLabel, URL: req.ButtonURL}
	}

	content := model.BroadcastContent{Kind: model.ContentText, Body: req.Text}
	report, err := s.broadcast.Dispatch(r.Context(), content, button)
	if err != nil {
		s.log.Error().Err(err).Msg("ops broadcast failed")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, broadcastResponse{
		ID:        report.ID,
		Attempted: report.Attempted,
		Delivered: report.Delivered,
		Failed:    len(report.Failures),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
