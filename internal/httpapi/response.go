package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"

	"attendance-backend/internal/attendance"
)

// Allow-Methods values per operation
const (
	methodsPost = "POST, OPTIONS"
	methodsGet  = "GET, OPTIONS"
)

type errorBody struct {
	Error string `json:"error"`
}

type messageBody struct {
	Message string `json:"message"`
}

// corsHeaders returns the permissive cross-origin headers every
// response carries, success or failure
func corsHeaders(methods string) map[string]string {
	return map[string]string{
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Headers": "Content-Type",
		"Access-Control-Allow-Methods": methods,
		"Content-Type":                 "application/json",
	}
}

func respond(status int, methods string, body any) events.APIGatewayProxyResponse {
	b, _ := json.Marshal(body)
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    corsHeaders(methods),
		Body:       string(b),
	}
}

// outcome maps a service error to a status and response body. Tagged
// outcomes map to their documented status; anything else is a 500 with
// the diagnostic message.
func outcome(err error) (int, any) {
	var ae *attendance.Error
	if errors.As(err, &ae) {
		switch ae.Code {
		case attendance.CodeSessionNotFound, attendance.CodeStudentNotFound:
			return http.StatusNotFound, errorBody{Error: ae.Detail}
		case attendance.CodeInvalidToken, attendance.CodeNotEnrolled:
			return http.StatusForbidden, errorBody{Error: ae.Detail}
		case attendance.CodeSessionExpired:
			return http.StatusGone, errorBody{Error: ae.Detail}
		case attendance.CodeAlreadyMarked:
			// duplicate submission is informational, not an error
			return http.StatusConflict, messageBody{Message: ae.Detail}
		}
	}
	return http.StatusInternalServerError, errorBody{Error: err.Error()}
}
