package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog/log"

	"attendance-backend/internal/attendance"
	"attendance-backend/internal/telemetry"
)

// API adapts the attendance service to API Gateway proxy events. One
// method per operation; each recovers panics into a 500 response so an
// invocation never crashes.
type API struct {
	svc     *attendance.Service
	metrics telemetry.Publisher
}

// NewAPI creates a new API over the given service
func NewAPI(svc *attendance.Service, metrics telemetry.Publisher) *API {
	return &API{
		svc:     svc,
		metrics: metrics,
	}
}

type createSessionRequest struct {
	ClassID string `json:"classId"`
}

type markAttendanceRequest struct {
	SessionID string `json:"sessionId"`
	QRToken   string `json:"qrToken"`
	StudentID string `json:"studentId"`
}

// GenerateSession handles the create-session operation
func (a *API) GenerateSession(ctx context.Context, req events.APIGatewayProxyRequest) (resp events.APIGatewayProxyResponse, err error) {
	defer a.recovered(methodsPost, &resp)

	if req.HTTPMethod == http.MethodOptions {
		return respond(http.StatusOK, methodsPost, struct{}{}), nil
	}

	var body createSessionRequest
	if req.Body != "" {
		if jsonErr := json.Unmarshal([]byte(req.Body), &body); jsonErr != nil {
			return respond(http.StatusBadRequest, methodsPost, errorBody{Error: fmt.Sprintf("Invalid JSON: %v", jsonErr)}), nil
		}
	}

	if body.ClassID == "" {
		return respond(http.StatusBadRequest, methodsPost, errorBody{Error: "classId is required"}), nil
	}

	issued, err := a.svc.GenerateSession(ctx, body.ClassID)
	if err != nil {
		return a.failed(methodsPost, err), nil
	}

	return respond(http.StatusOK, methodsPost, issued), nil
}

// MarkAttendance handles the record-attendance operation
func (a *API) MarkAttendance(ctx context.Context, req events.APIGatewayProxyRequest) (resp events.APIGatewayProxyResponse, err error) {
	defer a.recovered(methodsPost, &resp)

	if req.HTTPMethod == http.MethodOptions {
		return respond(http.StatusOK, methodsPost, struct{}{}), nil
	}

	var body markAttendanceRequest
	if req.Body != "" {
		if jsonErr := json.Unmarshal([]byte(req.Body), &body); jsonErr != nil {
			return respond(http.StatusBadRequest, methodsPost, errorBody{Error: fmt.Sprintf("Invalid JSON: %v", jsonErr)}), nil
		}
	}

	if body.SessionID == "" || body.QRToken == "" || body.StudentID == "" {
		return respond(http.StatusBadRequest, methodsPost, errorBody{Error: "Missing required fields"}), nil
	}

	confirmation, err := a.svc.MarkAttendance(ctx, body.SessionID, body.QRToken, body.StudentID)
	if err != nil {
		return a.failed(methodsPost, err), nil
	}

	result := struct {
		Message string `json:"message"`
		attendance.Confirmation
	}{
		Message:      "Attendance marked successfully",
		Confirmation: *confirmation,
	}

	return respond(http.StatusOK, methodsPost, result), nil
}

// GetReport handles the report operation
func (a *API) GetReport(ctx context.Context, req events.APIGatewayProxyRequest) (resp events.APIGatewayProxyResponse, err error) {
	defer a.recovered(methodsGet, &resp)

	if req.HTTPMethod == http.MethodOptions {
		return respond(http.StatusOK, methodsGet, struct{}{}), nil
	}

	sessionID := req.QueryStringParameters["sessionId"]
	if sessionID == "" {
		return respond(http.StatusBadRequest, methodsGet, errorBody{Error: "sessionId parameter is required"}), nil
	}

	report, err := a.svc.GetReport(ctx, sessionID)
	if err != nil {
		return a.failed(methodsGet, err), nil
	}

	return respond(http.StatusOK, methodsGet, report), nil
}

// failed converts a service error into the matching response, counting
// unexpected faults
func (a *API) failed(methods string, err error) events.APIGatewayProxyResponse {
	status, body := outcome(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("handler failed")
		a.metrics.Error(context.Background())
	}
	return respond(status, methods, body)
}

// recovered turns a panic into a 500 response
func (a *API) recovered(methods string, resp *events.APIGatewayProxyResponse) {
	if r := recover(); r != nil {
		log.Error().Interface("panic", r).Msg("handler panic")
		a.metrics.Error(context.Background())
		*resp = respond(http.StatusInternalServerError, methods, errorBody{Error: fmt.Sprint(r)})
	}
}
