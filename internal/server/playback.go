package server

import (
	"encoding/json"
	"net/http"
	"strings"
)

type seekRequest struct {
	Index int `json:"index"`
}

type rateRequest struct {
	Rate float64 `json:"rate"`
}

type syncRequest struct {
	VideoIndex int `json:"video_index"`
	VideoTotal int `json:"video_total"`
}

// handlePlaybackStatus handles GET /api/playback and returns the current
// playback snapshot.
func (s *Server) handlePlaybackStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.config.Engine.Stat())
}

// handlePlaybackControl handles POST /api/playback/{action}. Every action
// responds with the post-action playback snapshot so clients never need a
// follow-up status request.
func (s *Server) handlePlaybackControl(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	eng := s.config.Engine
	action := strings.TrimPrefix(r.URL.Path, "/api/playback/")

	switch action {
	case "play":
		eng.Resume()
	case "pause":
		eng.Pause()
	case "seek":
		var req seekRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		eng.Seek(req.Index)
	case "rate":
		var req rateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.Rate <= 0 {
			http.Error(w, "Rate must be positive", http.StatusBadRequest)
			return
		}
		eng.SetRate(req.Rate)
	case "sync":
		var req syncRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.VideoTotal <= 0 {
			http.Error(w, "video_total must be positive", http.StatusBadRequest)
			return
		}
		eng.SyncToVideo(req.VideoIndex, req.VideoTotal)
	default:
		http.Error(w, "Unknown playback action", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(eng.Stat())
}
