package api

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rileyhilliard/sensorwatch/internal/errors"
	"github.com/rileyhilliard/sensorwatch/internal/logger"
	"github.com/rileyhilliard/sensorwatch/internal/sensor"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL + "/api/"}, nil, logger.Noop())
}

func TestReadings_QueryParameters(t *testing.T) {
	var got *http.Request
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"sensorType":"temp","location":"greenhouseA","value":20,"timestamp":1714557600000}]`))
	})

	f := sensor.Filter{
		SensorType: "temp",
		Location:   "greenhouseA",
		Start:      time.Date(2024, 5, 1, 8, 30, 15, 999, time.FixedZone("X", 2*3600)),
		End:        time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
	}
	readings, err := c.Readings(context.Background(), f)
	require.NoError(t, err)
	require.Len(t, readings, 1)
	assert.Equal(t, "greenhouseA", readings[0].Location)

	require.NotNil(t, got)
	assert.Equal(t, "/api/sensorData", got.URL.Path)
	q := got.URL.Query()
	assert.Equal(t, "temp", q.Get("sensorType"))
	assert.Equal(t, "greenhouseA", q.Get("location"))
	assert.Equal(t, "2024-05-01T06:30:15Z", q.Get("startDate"))
	assert.Equal(t, "2024-05-02T00:00:00Z", q.Get("endDate"))
}

func TestReadings_OmitsUnsetParameters(t *testing.T) {
	var rawQuery string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		rawQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`[]`))
	})

	readings, err := c.Readings(context.Background(), sensor.Filter{})
	require.NoError(t, err)
	assert.Empty(t, readings)
	assert.Empty(t, rawQuery)
}

func TestReadings_FetchErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{
			name:    "json message",
			status:  http.StatusBadRequest,
			body:    `{"message":"startDate must be before endDate"}`,
			wantMsg: "Error 400: Bad Request - startDate must be before endDate",
		},
		{
			name:    "plain text",
			status:  http.StatusServiceUnavailable,
			body:    "database offline",
			wantMsg: "Error 503: Service Unavailable - database offline",
		},
		{
			name:    "empty body",
			status:  http.StatusNotFound,
			body:    "",
			wantMsg: "Error 404: Not Found",
		},
		{
			name:    "html body is not shown",
			status:  http.StatusBadGateway,
			body:    "<html><body>bad gateway</body></html>",
			wantMsg: "Error 502: Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.Readings(context.Background(), sensor.Filter{})
			require.Error(t, err)

			var fe *FetchError
			require.True(t, stderrors.As(err, &fe))
			assert.Equal(t, tt.status, fe.StatusCode)
			assert.Equal(t, tt.wantMsg, fe.Error())
		})
	}
}

func TestReadings_MalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"not":"a list"}`))
	})

	_, err := c.Readings(context.Background(), sensor.Filter{})
	assert.True(t, errors.IsCode(err, errors.ErrFetch))
}

func TestReadings_DropsInvalidEntries(t *testing.T) {
	log := logger.NewBufferLogger()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"sensorType":"temp","location":"a","value":1,"timestamp":null},
			{"sensorType":"temp","location":"a","value":2,"timestamp":1714557600000}
		]`))
	}))
	t.Cleanup(srv.Close)
	c := New(Config{BaseURL: srv.URL}, nil, log)

	rs, err := c.Readings(context.Background(), sensor.Filter{})
	require.NoError(t, err)
	require.Len(t, rs, 1)
	assert.Equal(t, 2.0, rs[0].Value)
	assert.True(t, log.HasLevel("warn"))
}

func TestTags(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/availableTags", r.URL.Path)
		_, _ = w.Write([]byte(`{"sensorTypes":["humidity","temp"],"locations":["greenhouseA","greenhouseB"]}`))
	})

	tags, err := c.Tags(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"humidity", "temp"}, tags.SensorTypes)
	assert.Equal(t, []string{"greenhouseA", "greenhouseB"}, tags.Locations)
}

func TestUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := New(Config{BaseURL: base, Timeout: time.Second}, nil, logger.Noop())
	_, err := c.Tags(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrFetch))

	var fe *FetchError
	assert.False(t, stderrors.As(err, &fe))
}

func TestContextCancel(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Readings(ctx, sensor.Filter{})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, context.Canceled))
}
