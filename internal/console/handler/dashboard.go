package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/xela07ax/emergency-console/internal/console/service"
	"github.com/xela07ax/emergency-console/internal/domain"
)

// DashboardService Описываем, что нам нужно от сервиса
type DashboardService interface {
	Screen() domain.Screen
	Refresh() error
	History(ctx context.Context, limit int) []domain.ClassifiedCall
	Classify(ctx context.Context, text string) (*domain.ClassificationResponse, error)
}

type DashboardHandler struct {
	service  DashboardService
	validate *validator.Validate
}

func NewDashboardHandler(s DashboardService) *DashboardHandler {
	return &DashboardHandler{service: s, validate: newValidator()}
}

// newValidator добавляет правило transcript: текст не пустой после обрезки пробелов
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("transcript", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// GetScreen отдает экран целиком: режим, бейдж и модель панели
// GET /api/v1/dashboard
func (h *DashboardHandler) GetScreen(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Screen())
}

// Refresh ставит внеочередной опрос и сразу отвечает 202
// POST /api/v1/dashboard/refresh
func (h *DashboardHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Refresh(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "refresh_scheduled"})
}

// GetHistory возвращает последние звонки, при сбое бэкенда — пустой массив
// GET /api/v1/history?limit=10
func (h *DashboardHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, h.service.History(r.Context(), limit))
}

// Classify проксирует текст в сервис классификации
// POST /api/v1/classify {"text": "..."}
func (h *DashboardHandler) Classify(w http.ResponseWriter, r *http.Request) {
	var req domain.ClassifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid_text"})
		return
	}

	resp, err := h.service.Classify(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, service.ErrEmptyText) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		// tip: Не отдаем детали внутренних ошибок наружу
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "classification_unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
