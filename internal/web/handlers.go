package web

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"coherence-console/internal/state"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// handleHealth reports liveness and the number of connected pages.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
		"pages":   s.Pages(),
	})
}

// handleDevices returns the current device list as JSON.
func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.appState.Devices())
}

// handleAddDevice registers or replaces a device.
func (s *Server) handleAddDevice(w http.ResponseWriter, r *http.Request) {
	var d state.Device
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if d.USN == "" {
		http.Error(w, "Device usn is required", http.StatusBadRequest)
		return
	}

	s.appState.AddDevice(d)
	s.logger.Info("Device added", "usn", d.USN, "name", d.FriendlyName, "type", d.DeviceType)
	writeJSON(w, http.StatusCreated, d)
}

// handleRemoveDevice drops a device by USN.
func (s *Server) handleRemoveDevice(w http.ResponseWriter, r *http.Request) {
	usn := mux.Vars(r)["usn"]
	if !s.appState.RemoveDevice(usn) {
		http.Error(w, "Device not found", http.StatusNotFound)
		return
	}
	s.logger.Info("Device removed", "usn", usn)
	writeJSON(w, http.StatusOK, map[string]string{"status": "removed", "usn": usn})
}

// handleLogs returns the buffered log entries, oldest first.
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.appState.Logs())
}
