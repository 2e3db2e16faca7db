package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Aias00/gold-price-monitor/internal/badge"
	"github.com/Aias00/gold-price-monitor/internal/model"
	"github.com/Aias00/gold-price-monitor/internal/service"
)

// messageTypeGetData is the on-demand request type consumers send.
const messageTypeGetData = "GET_GOLD_PRICE_DATA"

// apiResponse is the reply envelope: {ok, data} on success, {ok, error}
// otherwise.
type apiResponse struct {
	OK    bool              `json:"ok"`
	Data  *model.SeriesData `json:"data,omitempty"`
	Error string            `json:"error,omitempty"`
}

type messageRequest struct {
	Type         string `json:"type"`
	ForceRefresh bool   `json:"forceRefresh"`
}

type seriesGetter interface {
	GetSeries(ctx context.Context, forceRefresh bool) (model.SeriesData, error)
}

type api struct {
	svc seriesGetter
}

func (a *api) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(withJSONHeaders)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`"ok"`))
	})
	r.Get("/api/gold", a.handleGetSeries)
	r.Post("/api/message", a.handleMessage)
	r.Get("/api/badge", a.handleBadge)
	return r
}

func (a *api) handleGetSeries(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"
	a.reply(w, r, force)
}

// handleMessage mirrors the extension message protocol over HTTP.
func (a *api) handleMessage(w http.ResponseWriter, r *http.Request) {
	var msg messageRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(&msg); err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{OK: false, Error: "invalid JSON body"})
		return
	}
	if msg.Type != messageTypeGetData {
		writeJSON(w, http.StatusBadRequest, apiResponse{OK: false, Error: "unknown message type: " + msg.Type})
		return
	}
	a.reply(w, r, msg.ForceRefresh)
}

func (a *api) handleBadge(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	data, err := a.svc.GetSeries(ctx, false)
	if err != nil {
		writeJSON(w, statusFor(err), apiResponse{OK: false, Error: err.Error()})
		return
	}
	st, ok := badge.FromSeries(data)
	if !ok {
		writeJSON(w, http.StatusBadGateway, apiResponse{OK: false, Error: "no usable price for badge"})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (a *api) reply(w http.ResponseWriter, r *http.Request, force bool) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	data, err := a.svc.GetSeries(ctx, force)
	if err != nil {
		writeJSON(w, statusFor(err), apiResponse{OK: false, Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, apiResponse{OK: true, Data: &data})
}

func statusFor(err error) int {
	if errors.Is(err, service.ErrNoData) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func withJSONHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		// Basic CORS for the popup; adjust as needed.
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
