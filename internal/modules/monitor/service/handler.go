package service

import (
	"io"
	"net/http"

	"signal_monitor/internal/models"
	rulesvc "signal_monitor/internal/modules/rules/service"
	"signal_monitor/pkg/logger"

	"github.com/bytedance/sonic"
)

// Handler — внешний триггер мониторинга: cron-вызов или ручной запуск.
type Handler struct {
	monitor   *Monitor
	validator *rulesvc.Validator
	signals   SignalStore
}

func NewHandler(monitor *Monitor, validator *rulesvc.Validator, signals SignalStore) *Handler {
	return &Handler{
		monitor:   monitor,
		validator: validator,
		signals:   signals,
	}
}

func NewMux(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/monitor/run", h.handleRun)
	mux.HandleFunc("POST /api/strategies/validate", h.handleValidate)
	mux.HandleFunc("POST /api/signals/cleanup", h.handleCleanup)
	return mux
}

func (h *Handler) handleRun(w http.ResponseWriter, r *http.Request) {
	var req TriggerRequest
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "unreadable body"})
		return
	}
	if len(body) > 0 {
		if err := sonic.Unmarshal(body, &req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": "malformed request body"})
			return
		}
	}
	if req.Source == "" {
		req.Source = "cron"
	}

	sum, err := h.monitor.Run(r.Context(), req)
	if err != nil {
		// fatal: пачка не загрузилась, спасать нечего
		logger.Error("[HTTP] прогон упал: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":     err.Error(),
			"timestamp": sum.Timestamp,
		})
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

type validateRequest struct {
	EntryRules []models.RuleGroup `json:"entry_rules"`
	ExitRules  []models.RuleGroup `json:"exit_rules"`
}

func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "unreadable body"})
		return
	}
	var req validateRequest
	if err := sonic.Unmarshal(body, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "malformed request body"})
		return
	}

	// advisory-only: сохранение никогда не блокируем, решает форма
	writeJSON(w, http.StatusOK, h.validator.Validate(req.EntryRules, req.ExitRules))
}

func (h *Handler) handleCleanup(w http.ResponseWriter, r *http.Request) {
	removed, err := h.signals.DeleteInvalid(r.Context())
	if err != nil {
		logger.Error("[HTTP] чистка сигналов упала: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"removed": removed})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := sonic.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
