package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"venue-booking/internal/handler"
	"venue-booking/internal/middleware"
	"venue-booking/internal/service/mocks"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

const (
	testSecret  = "test-secret"
	InvalidJSON = `{"invalid": json}`
)

type testMocks struct {
	checkout       *mocks.CheckoutServiceMock
	events         *mocks.EventServiceMock
	availability   *mocks.AvailabilityServiceMock
	promos         *mocks.PromoServiceMock
	bookings       *mocks.BookingAdminServiceMock
	reconciliation *mocks.ReconciliationServiceMock
}

func setupTestRouter() (*gin.Engine, *testMocks) {
	gin.SetMode(gin.TestMode)
	m := &testMocks{
		checkout:       mocks.NewCheckoutServiceMock(),
		events:         mocks.NewEventServiceMock(),
		availability:   mocks.NewAvailabilityServiceMock(),
		promos:         mocks.NewPromoServiceMock(),
		bookings:       mocks.NewBookingAdminServiceMock(),
		reconciliation: mocks.NewReconciliationServiceMock(),
	}
	router := handler.NewRouter(
		middleware.RequireRole(testSecret, "admin"),
		handler.NewCheckoutHandler(m.checkout),
		handler.NewEventHandler(m.events, m.availability),
		handler.NewPromoHandler(m.promos),
		handler.NewAdminHandler(m.bookings, m.reconciliation),
	)
	return router, m
}

func createJSONHTTPRequest(method, url string, data interface{}) *http.Request {
	var body []byte
	switch v := data.(type) {
	case string:
		body = []byte(v)
	default:
		body, _ = json.Marshal(v)
	}
	req, _ := http.NewRequest(method, url, bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func adminToken(t *testing.T, role string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "staff-1",
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return tok
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}
