// Package api provides HTTP API handlers for the PlantarView preview server.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gaitlab/plantarview/internal/heatmap"
	"github.com/gaitlab/plantarview/internal/store"
)

// PresetHandler handles HTTP requests for render preset resources.
type PresetHandler struct {
	store *store.Store
}

// NewPresetHandler creates a new PresetHandler with the given store.
func NewPresetHandler(s *store.Store) *PresetHandler {
	return &PresetHandler{store: s}
}

// ServeHTTP implements the http.Handler interface and routes requests to appropriate methods.
func (h *PresetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Expected paths: /api/presets or /api/presets/{id}
	path := strings.TrimPrefix(r.URL.Path, "/api/presets")
	path = strings.TrimPrefix(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.create(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	id := path
	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.delete(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// Request and response types

// configPayload is the wire form of a rendering configuration.
type configPayload struct {
	OutputWidth  int     `json:"output_width"`
	OutputHeight int     `json:"output_height"`
	GridWidth    int     `json:"grid_width"`
	GridHeight   int     `json:"grid_height"`
	Radius       float64 `json:"radius"`
	Smoothness   float64 `json:"smoothness"`
	Margin       int     `json:"margin"`
	LegendWidth  int     `json:"legend_width"`
	TrailLength  int     `json:"trail_length"`
	TargetRate   float64 `json:"target_rate"`
}

func (p configPayload) toConfig() heatmap.Config {
	return heatmap.Config{
		OutputWidth:  p.OutputWidth,
		OutputHeight: p.OutputHeight,
		GridWidth:    p.GridWidth,
		GridHeight:   p.GridHeight,
		Radius:       p.Radius,
		Smoothness:   p.Smoothness,
		Margin:       p.Margin,
		LegendWidth:  p.LegendWidth,
		TrailLength:  p.TrailLength,
		TargetRate:   p.TargetRate,
	}
}

func payloadFromConfig(c heatmap.Config) configPayload {
	return configPayload{
		OutputWidth:  c.OutputWidth,
		OutputHeight: c.OutputHeight,
		GridWidth:    c.GridWidth,
		GridHeight:   c.GridHeight,
		Radius:       c.Radius,
		Smoothness:   c.Smoothness,
		Margin:       c.Margin,
		LegendWidth:  c.LegendWidth,
		TrailLength:  c.TrailLength,
		TargetRate:   c.TargetRate,
	}
}

type createPresetRequest struct {
	Name   string        `json:"name"`
	Config configPayload `json:"config"`
}

type updatePresetRequest struct {
	Name   string        `json:"name"`
	Config configPayload `json:"config"`
}

type presetResponse struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Config    configPayload `json:"config"`
	CreatedAt string        `json:"created_at"`
	UpdatedAt string        `json:"updated_at"`
}

type listPresetsResponse struct {
	Presets []presetResponse `json:"presets"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// toResponse converts a store.Preset to a presetResponse.
func toResponse(p *store.Preset) presetResponse {
	return presetResponse{
		ID:        p.ID,
		Name:      p.Name,
		Config:    payloadFromConfig(p.Config),
		CreatedAt: p.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt: p.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// list handles GET /api/presets and returns all presets.
func (h *PresetHandler) list(w http.ResponseWriter, r *http.Request) {
	presets, err := h.store.Presets().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list presets")
		return
	}

	response := listPresetsResponse{
		Presets: make([]presetResponse, 0, len(presets)),
	}
	for _, p := range presets {
		response.Presets = append(response.Presets, toResponse(p))
	}

	writeJSON(w, http.StatusOK, response)
}

// create handles POST /api/presets and stores a new preset.
func (h *PresetHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createPresetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	preset := &store.Preset{
		Name:   req.Name,
		Config: req.Config.toConfig(),
	}
	if err := h.store.Presets().Create(preset); err != nil {
		if errors.Is(err, heatmap.ErrInvalidConfig) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to create preset")
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(preset))
}

// get handles GET /api/presets/{id}.
func (h *PresetHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	preset, err := h.store.Presets().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Preset not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to get preset")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(preset))
}

// update handles PUT /api/presets/{id}.
func (h *PresetHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	var req updatePresetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	preset := &store.Preset{
		ID:     id,
		Name:   req.Name,
		Config: req.Config.toConfig(),
	}
	if err := h.store.Presets().Update(preset); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Preset not found")
			return
		}
		if errors.Is(err, heatmap.ErrInvalidConfig) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to update preset")
		return
	}

	writeJSON(w, http.StatusOK, toResponse(preset))
}

// delete handles DELETE /api/presets/{id}.
func (h *PresetHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Presets().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Preset not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete preset")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
