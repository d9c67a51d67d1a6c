package recognition

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLuxandRecognize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/photo/search/v2", r.URL.Path)
		assert.Equal(t, "test-token", r.Header.Get("token"))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, _, err := r.FormFile("photo")
		assert.NoError(t, err)
		w.Write([]byte(`[{"uuid":"person-1","similarity":0.93}]`))
	}))
	defer srv.Close()

	c := NewLuxandClient("test-token", "")
	c.baseURL = srv.URL

	result, err := c.Recognize(context.Background(), "data:image/jpeg;base64,aGVsbG8=")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, "person-1", result.FaceID)
	assert.InDelta(t, 0.93, result.Confidence, 0.001)
}

func TestLuxandRecognizeNoMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewLuxandClient("test-token", "")
	c.baseURL = srv.URL

	result, err := c.Recognize(context.Background(), "aGVsbG8=")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "Face not recognized", result.Error)
}

func TestLuxandRegister(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/person", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "Test Student", r.FormValue("name"))
		assert.Equal(t, "1", r.FormValue("store"))
		assert.Equal(t, "classroom", r.FormValue("collections"))
		w.Write([]byte(`{"status":"success","uuid":"person-2"}`))
	}))
	defer srv.Close()

	c := NewLuxandClient("test-token", "classroom")
	c.baseURL = srv.URL

	faceID, err := c.Register(context.Background(), "user-1", "Test Student", "aGVsbG8=")
	require.NoError(t, err)
	assert.Equal(t, "person-2", faceID)
}

func TestLuxandRegisterFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":"error","message":"no face found"}`))
	}))
	defer srv.Close()

	c := NewLuxandClient("test-token", "")
	c.baseURL = srv.URL

	_, err := c.Register(context.Background(), "user-1", "", "aGVsbG8=")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no face found")
}

func TestLuxandServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "quota exceeded", http.StatusPaymentRequired)
	}))
	defer srv.Close()

	c := NewLuxandClient("test-token", "")
	c.baseURL = srv.URL

	_, err := c.Recognize(context.Background(), "aGVsbG8=")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "402")
}

func TestMockMatcherRoundTrips(t *testing.T) {
	m := NewMockMatcher()
	ctx := context.Background()

	faceID, err := m.Register(ctx, "user-1", "Test Student", "aGVsbG8=")
	require.NoError(t, err)

	result, err := m.Recognize(ctx, "aGVsbG8=")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, faceID, result.FaceID)

	other, err := m.Recognize(ctx, "b3RoZXIgZmFjZQ==")
	require.NoError(t, err)
	assert.NotEqual(t, faceID, other.FaceID)
}
