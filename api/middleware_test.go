package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/banachtech/hedger/pricer"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"
)

const testKey = "hdg_k3Y9.RGbV3hb3LEwYohYW"

func hashKey(t *testing.T) string {
	h, err := bcrypt.GenerateFromPassword([]byte(testKey), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestAuthMiddleware(t *testing.T) {
	hash := hashKey(t)

	testCases := []struct {
		name          string
		hash          string
		setupAuth     func(t *testing.T, request *http.Request)
		checkResponse func(t *testing.T, recorder *httptest.ResponseRecorder)
	}{
		{
			name: "OK",
			hash: hash,
			setupAuth: func(t *testing.T, request *http.Request) {
				request.Header.Set(authorizationHeaderKey, fmt.Sprintf("%s %s", authorizationTypeBearer, testKey))
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
			},
		},
		{
			name: "AUTH_DISABLED",
			setupAuth: func(t *testing.T, request *http.Request) {
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusOK, recorder.Code)
			},
		},
		{
			name: "NO_AUTHORIZATION",
			hash: hash,
			setupAuth: func(t *testing.T, request *http.Request) {
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnauthorized, recorder.Code)
			},
		},
		{
			name: "UNSUPPORTED_AUTHORIZATION",
			hash: hash,
			setupAuth: func(t *testing.T, request *http.Request) {
				request.Header.Set(authorizationHeaderKey, fmt.Sprintf("%s %s", "unsupported", testKey))
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnauthorized, recorder.Code)
			},
		},
		{
			name: "INVALID_AUTHORIZATION_FORMAT",
			hash: hash,
			setupAuth: func(t *testing.T, request *http.Request) {
				request.Header.Set(authorizationHeaderKey, testKey)
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnauthorized, recorder.Code)
			},
		},
		{
			name: "WRONG_API_KEY",
			hash: hash,
			setupAuth: func(t *testing.T, request *http.Request) {
				request.Header.Set(authorizationHeaderKey, fmt.Sprintf("%s %s", authorizationTypeBearer, testKey+"X"))
			},
			checkResponse: func(t *testing.T, recorder *httptest.ResponseRecorder) {
				require.Equal(t, http.StatusUnauthorized, recorder.Code)
				require.Contains(t, recorder.Body.String(), "invalid API key")
			},
		},
	}

	for i := range testCases {
		tc := testCases[i]

		t.Run(tc.name, func(t *testing.T) {
			server := NewServer(&fakeEngine{}, pricer.Info{}, Options{APIKeyHash: tc.hash})

			authPath := "/auth"
			server.router.GET(
				authPath,
				server.authentication,
				func(ctx *gin.Context) {
					ctx.JSON(http.StatusOK, gin.H{})
				},
			)

			recorder := httptest.NewRecorder()
			request, err := http.NewRequest(http.MethodGet, authPath, nil)
			require.NoError(t, err)

			tc.setupAuth(t, request)
			server.router.ServeHTTP(recorder, request)
			tc.checkResponse(t, recorder)
		})
	}
}

func TestRateLimit(t *testing.T) {
	server := NewServer(&fakeEngine{}, pricer.Info{SampleNb: 10}, Options{Rate: rate.Every(1e12), Burst: 2})

	codes := make([]int, 3)
	for i := range codes {
		recorder := httptest.NewRecorder()
		request, err := http.NewRequest(http.MethodGet, "/v1/heartbeat", nil)
		require.NoError(t, err)
		request.RemoteAddr = "10.0.0.1:1234"
		server.router.ServeHTTP(recorder, request)
		codes[i] = recorder.Code
	}
	require.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// another client has its own bucket
	recorder := httptest.NewRecorder()
	request, err := http.NewRequest(http.MethodGet, "/v1/heartbeat", nil)
	require.NoError(t, err)
	request.RemoteAddr = "10.0.0.2:1234"
	server.router.ServeHTTP(recorder, request)
	require.Equal(t, http.StatusOK, recorder.Code)
}

func TestLimitersEvictIdle(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newLimiters(1, 1)
	l.now = func() time.Time { return now }

	a := l.get("10.0.0.1")
	l.get("10.0.0.2")
	require.Same(t, a, l.get("10.0.0.1"))

	now = now.Add(5 * time.Minute)
	l.get("10.0.0.1")

	now = now.Add(6 * time.Minute)
	l.get("10.0.0.3")
	require.Len(t, l.clients, 2)
	require.Contains(t, l.clients, "10.0.0.1")
	require.NotContains(t, l.clients, "10.0.0.2")
	require.Same(t, a, l.get("10.0.0.1"))
}
