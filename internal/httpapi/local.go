package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"

	"attendance-backend/internal/attendance"
)

// Router serves the three operations over plain HTTP for local
// development. CORS is applied by the caller; status mapping is shared
// with the Lambda path.
func (a *API) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /sessions", a.localGenerateSession)
	mux.HandleFunc("POST /attendance", a.localMarkAttendance)
	mux.HandleFunc("GET /report", a.localGetReport)
	return mux
}

func (a *API) localGenerateSession(w http.ResponseWriter, r *http.Request) {
	defer a.localRecovered(w)

	var body createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("Invalid JSON: %v", err)})
		return
	}

	if body.ClassID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "classId is required"})
		return
	}

	issued, err := a.svc.GenerateSession(r.Context(), body.ClassID)
	if err != nil {
		status, respBody := outcome(err)
		writeJSON(w, status, respBody)
		return
	}

	writeJSON(w, http.StatusOK, issued)
}

func (a *API) localMarkAttendance(w http.ResponseWriter, r *http.Request) {
	defer a.localRecovered(w)

	var body markAttendanceRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("Invalid JSON: %v", err)})
		return
	}

	if body.SessionID == "" || body.QRToken == "" || body.StudentID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Missing required fields"})
		return
	}

	confirmation, err := a.svc.MarkAttendance(r.Context(), body.SessionID, body.QRToken, body.StudentID)
	if err != nil {
		status, respBody := outcome(err)
		writeJSON(w, status, respBody)
		return
	}

	result := struct {
		Message string `json:"message"`
		attendance.Confirmation
	}{
		Message:      "Attendance marked successfully",
		Confirmation: *confirmation,
	}

	writeJSON(w, http.StatusOK, result)
}

func (a *API) localGetReport(w http.ResponseWriter, r *http.Request) {
	defer a.localRecovered(w)

	sessionID := r.URL.Query().Get("sessionId")
	if sessionID == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "sessionId parameter is required"})
		return
	}

	report, err := a.svc.GetReport(r.Context(), sessionID)
	if err != nil {
		status, respBody := outcome(err)
		writeJSON(w, status, respBody)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (a *API) localRecovered(w http.ResponseWriter) {
	if r := recover(); r != nil {
		log.Error().Interface("panic", r).Msg("handler panic")
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: fmt.Sprint(r)})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
