package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/require"

	"attendance-backend/internal/attendance"
	"attendance-backend/internal/notify"
	"attendance-backend/internal/store"
	"attendance-backend/internal/telemetry"
)

func newTestAPI(t *testing.T) (*API, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	svc := attendance.NewService(st, telemetry.Noop{}, notify.Noop{}, "https://example.edu")
	return NewAPI(svc, telemetry.Noop{}), st
}

func seedLiveSession(t *testing.T, st *store.MemoryStore, id, classID, token string) {
	t.Helper()
	now := time.Now().Unix()
	require.NoError(t, st.PutSession(context.Background(), &store.Session{
		SessionID: id,
		ClassID:   classID,
		Date:      time.Now().Format("2006-01-02"),
		CreatedAt: now,
		QRToken:   token,
		Active:    true,
		ExpiresAt: now + 1800,
	}))
}

func decodeBody(t *testing.T, resp events.APIGatewayProxyResponse) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
	return body
}

func postRequest(body string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{
		HTTPMethod: http.MethodPost,
		Body:       body,
	}
}

func TestGenerateSessionHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("missing classId", func(t *testing.T) {
		api, _ := newTestAPI(t)

		resp, err := api.GenerateSession(ctx, postRequest(`{}`))
		require.NoError(t, err)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "classId is required", decodeBody(t, resp)["error"])
	})

	t.Run("invalid JSON", func(t *testing.T) {
		api, _ := newTestAPI(t)

		resp, err := api.GenerateSession(ctx, postRequest(`{"classId":`))
		require.NoError(t, err)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Contains(t, decodeBody(t, resp)["error"], "Invalid JSON")
	})

	t.Run("success", func(t *testing.T) {
		api, _ := newTestAPI(t)

		resp, err := api.GenerateSession(ctx, postRequest(`{"classId":"CS101"}`))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		require.NotEmpty(t, body["sessionId"])
		require.Equal(t, "CS101", body["classId"])
		require.Contains(t, body["qrUrl"], "https://example.edu/attendance.html?session=")
		require.NotZero(t, body["expiresAt"])
	})

	t.Run("preflight", func(t *testing.T) {
		api, _ := newTestAPI(t)

		resp, err := api.GenerateSession(ctx, events.APIGatewayProxyRequest{HTTPMethod: http.MethodOptions})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestMarkAttendanceHandler(t *testing.T) {
	ctx := context.Background()

	markBody := func(sessionID, token, studentID string) string {
		return fmt.Sprintf(`{"sessionId":%q,"qrToken":%q,"studentId":%q}`, sessionID, token, studentID)
	}

	t.Run("missing fields", func(t *testing.T) {
		api, _ := newTestAPI(t)

		resp, err := api.MarkAttendance(ctx, postRequest(`{"sessionId":"sess-1"}`))
		require.NoError(t, err)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "Missing required fields", decodeBody(t, resp)["error"])
	})

	t.Run("empty body", func(t *testing.T) {
		api, _ := newTestAPI(t)

		resp, err := api.MarkAttendance(ctx, postRequest(""))
		require.NoError(t, err)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("session not found", func(t *testing.T) {
		api, _ := newTestAPI(t)

		resp, err := api.MarkAttendance(ctx, postRequest(markBody("missing", "tok", "stu1")))
		require.NoError(t, err)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
		require.Equal(t, "Session not found", decodeBody(t, resp)["error"])
	})

	t.Run("invalid token", func(t *testing.T) {
		api, st := newTestAPI(t)
		seedLiveSession(t, st, "sess-1", "CS101", "secret")

		resp, err := api.MarkAttendance(ctx, postRequest(markBody("sess-1", "wrong", "stu1")))
		require.NoError(t, err)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("expired session", func(t *testing.T) {
		api, st := newTestAPI(t)
		require.NoError(t, st.PutSession(ctx, &store.Session{
			SessionID: "sess-1",
			ClassID:   "CS101",
			QRToken:   "secret",
			Active:    true,
			ExpiresAt: time.Now().Unix() - 60,
		}))

		resp, err := api.MarkAttendance(ctx, postRequest(markBody("sess-1", "secret", "stu1")))
		require.NoError(t, err)
		require.Equal(t, http.StatusGone, resp.StatusCode)
	})

	t.Run("student not enrolled", func(t *testing.T) {
		api, st := newTestAPI(t)
		seedLiveSession(t, st, "sess-1", "CS101", "secret")
		require.NoError(t, st.PutStudent(ctx, &store.Student{StudentID: "stu1", EnrolledClasses: []string{"MATH200"}}))

		resp, err := api.MarkAttendance(ctx, postRequest(markBody("sess-1", "secret", "stu1")))
		require.NoError(t, err)
		require.Equal(t, http.StatusForbidden, resp.StatusCode)
	})

	t.Run("success then conflict", func(t *testing.T) {
		api, st := newTestAPI(t)
		seedLiveSession(t, st, "sess-1", "CS101", "secret")
		require.NoError(t, st.PutStudent(ctx, &store.Student{StudentID: "stu1", EnrolledClasses: []string{"CS101"}}))

		resp, err := api.MarkAttendance(ctx, postRequest(markBody("sess-1", "secret", "stu1")))
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		require.Equal(t, "Attendance marked successfully", body["message"])
		require.Equal(t, "stu1", body["studentId"])
		require.Equal(t, "CS101", body["classId"])

		resp, err = api.MarkAttendance(ctx, postRequest(markBody("sess-1", "secret", "stu1")))
		require.NoError(t, err)
		require.Equal(t, http.StatusConflict, resp.StatusCode)

		// conflict body is informational, not an error
		body = decodeBody(t, resp)
		require.Equal(t, "Attendance already marked for this session", body["message"])
		require.NotContains(t, body, "error")
	})
}

func TestGetReportHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("missing sessionId", func(t *testing.T) {
		api, _ := newTestAPI(t)

		resp, err := api.GetReport(ctx, events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet})
		require.NoError(t, err)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "sessionId parameter is required", decodeBody(t, resp)["error"])
	})

	t.Run("session not found", func(t *testing.T) {
		api, _ := newTestAPI(t)

		resp, err := api.GetReport(ctx, events.APIGatewayProxyRequest{
			HTTPMethod:            http.MethodGet,
			QueryStringParameters: map[string]string{"sessionId": "missing"},
		})
		require.NoError(t, err)
		require.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("success", func(t *testing.T) {
		api, st := newTestAPI(t)
		seedLiveSession(t, st, "sess-1", "CS101", "secret")
		require.NoError(t, st.PutAttendance(ctx, &store.Attendance{
			AttendanceID: "att-1",
			SessionID:    "sess-1",
			StudentID:    "stu1",
			ClassID:      "CS101",
			Timestamp:    1000,
			Status:       "present",
		}))

		resp, err := api.GetReport(ctx, events.APIGatewayProxyRequest{
			HTTPMethod:            http.MethodGet,
			QueryStringParameters: map[string]string{"sessionId": "sess-1"},
		})
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		body := decodeBody(t, resp)
		require.Equal(t, float64(1), body["totalPresent"])
		require.Equal(t, "CS101", body["classId"])
		require.Len(t, body["attendance"], 1)
	})
}

func TestCORSHeaders(t *testing.T) {
	ctx := context.Background()
	api, _ := newTestAPI(t)

	responses := []events.APIGatewayProxyResponse{}

	resp, err := api.GenerateSession(ctx, postRequest(`{}`))
	require.NoError(t, err)
	responses = append(responses, resp)

	resp, err = api.GenerateSession(ctx, postRequest(`{"classId":"CS101"}`))
	require.NoError(t, err)
	responses = append(responses, resp)

	resp, err = api.MarkAttendance(ctx, postRequest(`{"sessionId":"x","qrToken":"y","studentId":"z"}`))
	require.NoError(t, err)
	responses = append(responses, resp)

	resp, err = api.GetReport(ctx, events.APIGatewayProxyRequest{HTTPMethod: http.MethodGet})
	require.NoError(t, err)
	responses = append(responses, resp)

	for _, resp := range responses {
		require.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
		require.Equal(t, "Content-Type", resp.Headers["Access-Control-Allow-Headers"])
		require.Equal(t, "application/json", resp.Headers["Content-Type"])
	}
}

// panicStore blows up on first use, standing in for an unavailable
// backing service
type panicStore struct {
	store.Store
}

func (panicStore) GetSession(ctx context.Context, sessionID string) (*store.Session, error) {
	panic("store unavailable")
}

func TestHandlerRecovery(t *testing.T) {
	svc := attendance.NewService(panicStore{}, telemetry.Noop{}, notify.Noop{}, "")
	api := NewAPI(svc, telemetry.Noop{})

	resp, err := api.MarkAttendance(context.Background(), postRequest(`{"sessionId":"x","qrToken":"y","studentId":"z"}`))
	require.NoError(t, err)
	require.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	require.Contains(t, decodeBody(t, resp)["error"], "store unavailable")
	require.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
}
