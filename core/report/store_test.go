package report

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/depot/core/model"
)

func summaryAt(ended time.Time, vehicles ...model.VehicleDay) model.DaySummary {
	s := model.DaySummary{
		DayID:     uuid.New(),
		StartedAt: ended.Add(-8 * time.Hour),
		EndedAt:   ended,
		Vehicles:  vehicles,
	}
	for _, v := range vehicles {
		s.TotalTrips += v.Trips
		s.TotalPassengers += v.Passengers
	}
	return s
}

func TestQueryMatch(t *testing.T) {
	base := time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)
	s := summaryAt(base, model.VehicleDay{VehicleID: 1, Trips: 2, Passengers: 5}, model.VehicleDay{VehicleID: 2})
	assert.True(t, Query{}.Match(s))
	assert.True(t, Query{Start: base.Add(-time.Hour), End: base.Add(time.Hour)}.Match(s))
	assert.False(t, Query{Start: base.Add(time.Minute)}.Match(s))
	assert.False(t, Query{End: base.Add(-time.Minute)}.Match(s))
	assert.True(t, Query{VehicleID: 1}.Match(s))
	assert.False(t, Query{VehicleID: 2}.Match(s), "idle vehicle should not match")
	assert.False(t, Query{VehicleID: 9}.Match(s))
}

// storeContract exercises behaviour shared by every backend.
func storeContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	day1 := time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)
	day2 := day1.Add(24 * time.Hour)
	require.NoError(t, store.Append(ctx, summaryAt(day1, model.VehicleDay{VehicleID: 1, Trips: 1, Passengers: 3})))
	require.NoError(t, store.Append(ctx, summaryAt(day2, model.VehicleDay{VehicleID: 2, Trips: 2, Passengers: 7})))

	all, err := store.Query(ctx, Query{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 3, all[0].TotalPassengers)
	assert.Equal(t, 7, all[1].TotalPassengers)

	second, err := store.Query(ctx, Query{Start: day1.Add(time.Hour)})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.True(t, second[0].EndedAt.Equal(day2))

	v1, err := store.Query(ctx, Query{VehicleID: 1})
	require.NoError(t, err)
	require.Len(t, v1, 1)
	assert.Equal(t, 1, v1[0].TotalTrips)
}

func TestMemoryStore(t *testing.T) {
	storeContract(t, NewMemoryStore())
}

func TestJSONLStore(t *testing.T) {
	store, err := NewJSONLStore(filepath.Join(t.TempDir(), "days.jsonl"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	storeContract(t, store)
}

func TestRotatingJSONLStore(t *testing.T) {
	store, err := NewRotatingJSONLStore(filepath.Join(t.TempDir(), "nested", "days.jsonl"), 1, 2, 1)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	storeContract(t, store)
}

func TestRotatingJSONLStore_Rotation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "days.jsonl")
	store, err := NewRotatingJSONLStore(path, 1, 5, 1)
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	vehicles := make([]model.VehicleDay, 2000)
	for i := range vehicles {
		vehicles[i] = model.VehicleDay{VehicleID: i + 1, Plate: "PLATE-0000-XYZ", Capacity: 12, Trips: 1, Passengers: 3}
	}
	ended := time.Date(2024, 3, 1, 18, 0, 0, 0, time.UTC)
	const days = 20
	for i := 0; i < days; i++ {
		require.NoError(t, store.Append(context.Background(), summaryAt(ended.Add(time.Duration(i)*time.Hour), vehicles...)))
	}
	files, _ := filepath.Glob(filepath.Join(dir, "days-*.jsonl"))
	assert.NotEmpty(t, files, "expected rotated files")

	out, err := store.Query(context.Background(), Query{})
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.True(t, out[len(out)-1].EndedAt.Equal(ended.Add((days-1)*time.Hour)), "latest summary must be readable")
	for i := 1; i < len(out); i++ {
		assert.False(t, out[i].EndedAt.Before(out[i-1].EndedAt), "results must be ordered by end time")
	}
}

func TestSQLiteStore(t *testing.T) {
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "days.db"))
	require.NoError(t, err)
	defer func() { _ = store.Close() }()
	storeContract(t, store)
}

func TestNewStore(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		cfg  Config
		want any
	}{
		{Config{Backend: BackendMemory}, &MemoryStore{}},
		{Config{Backend: BackendJSONL, Path: filepath.Join(dir, "a.jsonl")}, &JSONLStore{}},
		{Config{Backend: BackendJSONL, Path: filepath.Join(dir, "b.jsonl"), MaxSizeMB: 1}, &RotatingJSONLStore{}},
		{Config{Backend: BackendSQLite, Path: filepath.Join(dir, "c.db")}, &SQLiteStore{}},
	}
	for _, c := range cases {
		store, err := NewStore(c.cfg)
		require.NoError(t, err, c.cfg.Backend)
		assert.IsType(t, c.want, store)
		_ = store.Close()
	}

	store, err := NewStore(Config{Backend: BackendNone})
	require.NoError(t, err)
	assert.Nil(t, store)

	_, err = NewStore(Config{Backend: "csv"})
	assert.Error(t, err)
}

func TestConfigDefaults(t *testing.T) {
	var c Config
	c.SetDefaults()
	assert.Equal(t, BackendJSONL, c.Backend)
	assert.Equal(t, "days.jsonl", c.Path)
	require.NoError(t, c.Validate())

	c = Config{Backend: BackendSQLite}
	c.SetDefaults()
	assert.Equal(t, "days.db", c.Path)

	assert.Error(t, Config{Backend: BackendJSONL}.Validate())
}
