package backend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mprates/dailylesson/internal/backend"
)

func TestCloud_MissingCredentialFailsFast(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("network must not be touched without a credential")
	}))
	defer srv.Close()

	c := backend.NewCloud(backend.CloudConfig{URL: srv.URL})

	_, err := c.Generate(context.Background(), testContext())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "credential missing")
}

func TestCloud_ParsesCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": `{"title":"From Cloud","summary":["s"],"lesson":"<p>x</p>"}`}},
			},
		})
	}))
	defer srv.Close()

	c := backend.NewCloud(backend.CloudConfig{APIKey: "test-key", URL: srv.URL})

	result, err := c.Generate(context.Background(), testContext())

	require.NoError(t, err)
	assert.Equal(t, "From Cloud", result.Title)
}

func TestLocal_SurfacesStatusAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not loaded", http.StatusInternalServerError)
	}))
	defer srv.Close()

	l := backend.NewLocal(backend.LocalConfig{URL: srv.URL, Model: "llama3.2"})

	_, err := l.Generate(context.Background(), testContext())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestLocal_ParsesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "llama3.2", body["model"])
		assert.Equal(t, false, body["stream"])
		json.NewEncoder(w).Encode(map[string]string{
			"response": `{"title":"From Local","summary":["s"],"lesson":"<p>x</p>"}`,
		})
	}))
	defer srv.Close()

	l := backend.NewLocal(backend.LocalConfig{URL: srv.URL, Model: "llama3.2"})

	result, err := l.Generate(context.Background(), testContext())

	require.NoError(t, err)
	assert.Equal(t, "From Local", result.Title)
}

type stubDevice struct {
	available    bool
	availableErr error
	reply        string
	prompted     bool
}

func (d *stubDevice) Available(context.Context) (bool, error) { return d.available, d.availableErr }
func (d *stubDevice) Prompt(_ context.Context, _ string) (string, error) {
	d.prompted = true
	return d.reply, nil
}

func TestOnDevice_UnavailableFailsFast(t *testing.T) {
	device := &stubDevice{available: false}
	o := backend.NewOnDevice(device)

	_, err := o.Generate(context.Background(), testContext())

	require.Error(t, err)
	assert.False(t, device.prompted, "prompt must not run when unavailable")
}

func TestOnDevice_CapabilityErrorTreatedAsUnavailable(t *testing.T) {
	device := &stubDevice{availableErr: assert.AnError}
	o := backend.NewOnDevice(device)

	_, err := o.Generate(context.Background(), testContext())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unavailable")
	assert.False(t, device.prompted)
}

func TestOnDevice_Generates(t *testing.T) {
	device := &stubDevice{available: true, reply: `{"title":"From Device","summary":["s"],"lesson":"<p>x</p>"}`}
	o := backend.NewOnDevice(device)

	result, err := o.Generate(context.Background(), testContext())

	require.NoError(t, err)
	assert.Equal(t, "From Device", result.Title)
}
