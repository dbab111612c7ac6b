package controllers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/interiora/interiorabackend/controllers"
	"github.com/interiora/interiorabackend/services"
	"github.com/interiora/interiorabackend/testutil"
)

type captureSender struct {
	to   string
	code string
	err  error
}

func (s *captureSender) SendVerificationEmail(_ context.Context, to, code string) error {
	s.to = to
	s.code = code
	return s.err
}

func newOTPRouter(store *services.OTPStore, sender services.EmailSender) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/send-otp", controllers.SendOTP(store, sender))
	r.POST("/verify-otp", controllers.VerifyOTP(store))
	return r
}

func TestSendOTPRequiresValidEmail(t *testing.T) {
	r := newOTPRouter(services.NewOTPStore(), &captureSender{})

	w := testutil.PerformRequest(t, r, http.MethodPost, "/send-otp", bson.M{"email": "not-an-email"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := testutil.DecodeJSON(t, w.Body)
	assert.Equal(t, "Valid email is required", body["error"])
}

func TestSendAndVerifyOTP(t *testing.T) {
	store := services.NewOTPStore()
	sender := &captureSender{}
	r := newOTPRouter(store, sender)

	w := testutil.PerformRequest(t, r, http.MethodPost, "/send-otp", bson.M{"email": "User@Example.com"})
	require.Equal(t, http.StatusOK, w.Code)

	body := testutil.DecodeJSON(t, w.Body)
	sessionID := body["sessionId"].(string)
	require.NotEmpty(t, sessionID)
	assert.Equal(t, "user@example.com", sender.to)
	require.Len(t, sender.code, 6)

	w = testutil.PerformRequest(t, r, http.MethodPost, "/verify-otp", bson.M{
		"sessionId": sessionID, "code": sender.code,
	})
	require.Equal(t, http.StatusOK, w.Code)
	body = testutil.DecodeJSON(t, w.Body)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "user@example.com", body["email"])
}

func TestVerifyOTPFailures(t *testing.T) {
	store := services.NewOTPStore()
	sender := &captureSender{}
	r := newOTPRouter(store, sender)

	w := testutil.PerformRequest(t, r, http.MethodPost, "/verify-otp", bson.M{"sessionId": "", "code": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = testutil.PerformRequest(t, r, http.MethodPost, "/verify-otp", bson.M{
		"sessionId": "bogus", "code": "123456",
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := testutil.DecodeJSON(t, w.Body)
	assert.Equal(t, "Invalid session or code expired", body["error"])

	w = testutil.PerformRequest(t, r, http.MethodPost, "/send-otp", bson.M{"email": "user@example.com"})
	body = testutil.DecodeJSON(t, w.Body)
	sessionID := body["sessionId"].(string)

	wrong := "000000"
	if wrong == sender.code {
		wrong = "000001"
	}
	w = testutil.PerformRequest(t, r, http.MethodPost, "/verify-otp", bson.M{
		"sessionId": sessionID, "code": wrong,
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	body = testutil.DecodeJSON(t, w.Body)
	assert.Equal(t, "Invalid verification code", body["error"])

	// the mismatch did not burn the session
	w = testutil.PerformRequest(t, r, http.MethodPost, "/verify-otp", bson.M{
		"sessionId": sessionID, "code": sender.code,
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestVerifyOTPSingleUseOverHTTP(t *testing.T) {
	store := services.NewOTPStore()
	sender := &captureSender{}
	r := newOTPRouter(store, sender)

	w := testutil.PerformRequest(t, r, http.MethodPost, "/send-otp", bson.M{"email": "user@example.com"})
	body := testutil.DecodeJSON(t, w.Body)
	sessionID := body["sessionId"].(string)

	payload := bson.M{"sessionId": sessionID, "code": sender.code}
	w = testutil.PerformRequest(t, r, http.MethodPost, "/verify-otp", payload)
	require.Equal(t, http.StatusOK, w.Code)

	w = testutil.PerformRequest(t, r, http.MethodPost, "/verify-otp", payload)
	require.Equal(t, http.StatusBadRequest, w.Code)
	body = testutil.DecodeJSON(t, w.Body)
	assert.Equal(t, "Invalid session or code expired", body["error"])
}

func TestSendFailureKeepsSessionValid(t *testing.T) {
	store := services.NewOTPStore()
	sender := &captureSender{err: errors.New("smtp down")}
	r := newOTPRouter(store, sender)

	w := testutil.PerformRequest(t, r, http.MethodPost, "/send-otp", bson.M{"email": "user@example.com"})
	require.Equal(t, http.StatusInternalServerError, w.Code)

	// the issued session survives the failed delivery
	assert.Equal(t, 1, store.Len())
}
