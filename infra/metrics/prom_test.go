package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/depot/core/metrics"
	"github.com/kilianp07/depot/core/model"
)

func TestPromSink_RecordTrip(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordTrip(coremetrics.TripRecord{Origin: 1, Destination: 2, Passengers: 3, Capacity: 4}))
	require.NoError(t, sink.RecordTrip(coremetrics.TripRecord{Origin: 1, Destination: 2, Passengers: 2, Capacity: 4}))

	expected := `
# HELP depot_passengers_transported_total Passengers carried by released trips, by route
# TYPE depot_passengers_transported_total counter
depot_passengers_transported_total{destination="2",origin="1"} 5
`
	assert.NoError(t, testutil.CollectAndCompare(sink.passengers, strings.NewReader(expected)))
	assert.Equal(t, 2.0, testutil.ToFloat64(sink.trips.WithLabelValues("1", "2")))
	assert.Equal(t, 1, testutil.CollectAndCount(sink.loadFactor))
}

func TestPromSink_DayAndOccupancy(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordDayStart(coremetrics.DayStartEvent{}))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.active))
	require.NoError(t, sink.RecordOccupancy([]coremetrics.Occupancy{{GarageID: 1, Vehicles: 3}, {GarageID: 2, Vehicles: 0}}))
	assert.Equal(t, 3.0, testutil.ToFloat64(sink.garages.WithLabelValues("1")))
	assert.Equal(t, 2, testutil.CollectAndCount(sink.garages))

	require.NoError(t, sink.RecordRejection(coremetrics.RejectionEvent{Reason: "origin_empty"}))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.rejections.WithLabelValues("origin_empty")))

	require.NoError(t, sink.RecordDayEnd(model.DaySummary{}))
	assert.Equal(t, 0.0, testutil.ToFloat64(sink.active))
	assert.Equal(t, 0, testutil.CollectAndCount(sink.garages))
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	s1, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	s2, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	require.NoError(t, s1.RecordTrip(coremetrics.TripRecord{Origin: 1, Destination: 2}))
	assert.Equal(t, 1.0, testutil.ToFloat64(s2.trips.WithLabelValues("1", "2")))
}

func TestHandler_ServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	require.NoError(t, sink.RecordDayStart(coremetrics.DayStartEvent{}))

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "depot_session_active 1")

	resp2, err := http.Get(srv.URL + "/other")
	require.NoError(t, err)
	resp2.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp2.StatusCode)
}
