package server

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/kapu/viralscope-go/internal/domain"
	"github.com/kapu/viralscope-go/internal/service/gateway"
	"github.com/kapu/viralscope-go/pkg/errors"
	"go.uber.org/zap"
)

type analysisResponse struct {
	Record    *domain.AnalysisRecord `json:"record"`
	Persisted bool                   `json:"persisted"`
	Warning   *errorBody             `json:"warning,omitempty"`
}

type batchRequest struct {
	Items []domain.AnalysisRequest `json:"items"`
}

type batchItemResponse struct {
	Record    *domain.AnalysisRecord `json:"record,omitempty"`
	Persisted bool                   `json:"persisted"`
	Error     *errorBody             `json:"error,omitempty"`
}

type snapshotRequest struct {
	Platform           string `json:"platform"`
	ProfileURLOrHandle string `json:"profileUrlOrHandle"`
}

type relayScrapeResponse struct {
	Items    json.RawMessage `json:"items"`
	Provider string          `json:"provider"`
}

type relayGenerateResponse struct {
	Text     string `json:"text"`
	Model    string `json:"model,omitempty"`
	Provider string `json:"provider"`
}

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"persistence": h.records != nil,
	})
}

func (h *Handler) analyze(w http.ResponseWriter, r *http.Request) {
	var req domain.AnalysisRequest
	if err := decodeBody(r, &req); err != nil {
		writeAppError(w, err)
		return
	}

	record, err := h.analyzer.Analyze(r.Context(), req)
	if record == nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, h.analysisResponse(record, err))
}

// analysisResponse reports a persistence failure as a warning; the core
// result is still delivered.
func (h *Handler) analysisResponse(record *domain.AnalysisRecord, err error) analysisResponse {
	resp := analysisResponse{Record: record, Persisted: h.records != nil && err == nil}
	if err != nil {
		resp.Warning = envelopeOf(err)
	}
	return resp
}

func (h *Handler) analyzeBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := decodeBody(r, &req); err != nil {
		writeAppError(w, err)
		return
	}

	items, err := h.analyzer.AnalyzeBatch(r.Context(), req.Items)
	if err != nil {
		writeAppError(w, err)
		return
	}

	out := make([]batchItemResponse, len(items))
	for i, item := range items {
		out[i] = batchItemResponse{
			Record:    item.Record,
			Persisted: item.Record != nil && item.Err == nil && h.records != nil,
			Error:     envelopeOf(item.Err),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": out})
}

func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	var req snapshotRequest
	if err := decodeBody(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	platform, err := domain.ParsePlatform(req.Platform)
	if err != nil {
		writeAppError(w, err)
		return
	}

	snap, err := h.analyzer.Snapshot(r.Context(), platform, req.ProfileURLOrHandle)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *Handler) latestAnalysis(w http.ResponseWriter, r *http.Request) {
	if h.records == nil {
		writeError(w, http.StatusServiceUnavailable, errors.CodePersistence, "no record store configured")
		return
	}
	platform, err := domain.ParsePlatform(chi.URLParam(r, "platform"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	userID := strings.TrimSpace(chi.URLParam(r, "userId"))

	record, err := h.records.Latest(r.Context(), userID, platform)
	if err != nil {
		h.logger.Error("Failed to load analysis", zap.String("user_id", userID), zap.Error(err))
		writeAppError(w, err)
		return
	}
	if record == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no analysis for "+userID+"/"+platform.String())
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *Handler) relayScrape(w http.ResponseWriter, r *http.Request) {
	var req domain.ScrapeRequest
	if err := decodeBody(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	platform, err := domain.ParsePlatform(string(req.Platform))
	if err != nil {
		writeAppError(w, err)
		return
	}
	target := req.ProfileURLOrHandle
	if target == "" {
		target = req.Handle
	}
	handle, err := domain.ExtractHandle(platform, target)
	if err != nil {
		writeAppError(w, err)
		return
	}

	payload, provider, err := h.relay.ScrapeDirect(r.Context(), gateway.ScrapeJob{
		Platform:   platform,
		Handle:     handle,
		ProfileURL: target,
	})
	if err != nil {
		writeRelayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, relayScrapeResponse{Items: payload, Provider: provider})
}

func (h *Handler) relayGenerate(w http.ResponseWriter, r *http.Request) {
	var req domain.GenerationRequest
	if err := decodeBody(r, &req); err != nil {
		writeAppError(w, err)
		return
	}
	if strings.TrimSpace(req.PromptText) == "" {
		writeAppError(w, errors.NewValidationError("promptText is required", "promptText", ""))
		return
	}

	reply, provider, err := h.relay.GenerateDirect(r.Context(), req)
	if err != nil {
		writeRelayError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, relayGenerateResponse{Text: reply.Text, Model: reply.Model, Provider: provider})
}

// writeRelayError keeps relay failures non-2xx so callers never mistake an
// error body for a payload.
func writeRelayError(w http.ResponseWriter, err error) {
	var cred *errors.CredentialError
	if stderrors.As(err, &cred) {
		writeError(w, http.StatusServiceUnavailable, cred.Code, err.Error())
		return
	}
	writeAppError(w, err)
}
