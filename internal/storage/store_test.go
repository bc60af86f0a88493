package storage

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/helm/internal/config"
	"github.com/san-kum/helm/internal/dynamo"
)

func testResult() *dynamo.Result {
	return &dynamo.Result{
		Samples: []dynamo.Sample{
			{Time: 0, Dt: 0.5, Reference: 1, Observable: 0, Requested: 1, Actual: 1, Increment: 1, Mode: dynamo.Automatic},
			{Time: 0.5, Dt: 0.5, Reference: 1, Observable: math.NaN(), Requested: 1, Actual: 1, Mode: dynamo.Automatic},
			{Time: 1, Dt: 0.5, Reference: 1, Observable: 0.4, Requested: 0.7, Actual: 0.7, Mode: dynamo.Manual},
		},
		Metrics:    map[string]float64{"iae": 1.5, "overshoot": 0},
		StepsTaken: 3,
	}
}

func fixedStore(t *testing.T) *Store {
	st := New(t.TempDir())
	st.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	require.NoError(t, st.Init())
	return st
}

func TestStore_SaveLoad(t *testing.T) {
	// GIVEN
	st := fixedStore(t)
	cfg := config.GetPreset("pi")
	cfg.Seed = 42
	tuning := map[string]float64{"gain": 1, "integral_time": 2, "filter_time": math.Inf(1)}

	// WHEN
	runID, err := st.Save("pi", cfg, tuning, testResult())

	// THEN
	require.NoError(t, err)
	assert.Equal(t, "pi_20260102-030405", runID)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, "pi", meta.Name)
	assert.Equal(t, int64(42), meta.Seed)
	assert.Equal(t, config.Float(1.5), meta.Metrics["iae"])
	assert.True(t, math.IsInf(float64(meta.Tuning["filter_time"]), 1))
	assert.Equal(t, 3, meta.Steps)

	loaded, err := st.LoadConfig(runID)
	require.NoError(t, err)
	assert.Equal(t, config.Float(2), loaded.Tuning.IntegralTime)
}

func TestStore_LoadSamples(t *testing.T) {
	// GIVEN
	st := fixedStore(t)
	runID, err := st.Save("run", config.DefaultConfig(), nil, testResult())
	require.NoError(t, err)

	// WHEN
	samples, err := st.LoadSamples(runID)

	// THEN
	require.NoError(t, err)
	require.Len(t, samples, 3)
	assert.True(t, math.IsNaN(samples[1].Observable))
	assert.Equal(t, dynamo.Manual, samples[2].Mode)
	assert.Equal(t, 0.7, samples[2].Requested)
	assert.Equal(t, 1.0, samples[0].Increment)
	assert.Equal(t, 0.5, samples[0].Dt)
	assert.Equal(t, 0.5, samples[2].Dt)
}

func TestStore_LoadSamplesKeepsIncrements(t *testing.T) {
	// GIVEN a loop whose actuator range excludes 0, so the first request
	// is not an increment from 0
	st := fixedStore(t)
	result := &dynamo.Result{Samples: []dynamo.Sample{
		{Time: 0, Dt: 0.1, Reference: 1, Requested: 2.25, Actual: 2, Increment: 0.25, Mode: dynamo.Automatic},
		{Time: 0.1, Dt: 0.1, Reference: 1, Requested: 2.5, Actual: 2, Increment: 0.25, Mode: dynamo.Automatic},
	}}
	runID, err := st.Save("offset", config.DefaultConfig(), nil, result)
	require.NoError(t, err)

	// WHEN
	samples, err := st.LoadSamples(runID)

	// THEN
	require.NoError(t, err)
	require.Len(t, samples, 2)
	for i, s := range samples {
		assert.Equal(t, result.Samples[i], s)
	}
}

func TestStore_SameSecondRunsGetDistinctIDs(t *testing.T) {
	// GIVEN
	st := fixedStore(t)

	// WHEN
	first, err := st.Save("pid", config.DefaultConfig(), nil, testResult())
	require.NoError(t, err)
	second, err := st.Save("pid", config.DefaultConfig(), nil, testResult())
	require.NoError(t, err)

	// THEN
	assert.NotEqual(t, first, second)
	assert.Equal(t, first+"_2", second)
}

func TestStore_List(t *testing.T) {
	// GIVEN
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, name := range []string{"late", "early"} {
		offset := time.Duration(1-i) * time.Hour
		st.now = func() time.Time { return base.Add(offset) }
		_, err := st.Save(name, config.DefaultConfig(), nil, testResult())
		require.NoError(t, err)
	}
	require.NoError(t, os.Mkdir(filepath.Join(st.baseDir, "not-a-run"), 0755))

	// WHEN
	runs, err = st.List()

	// THEN
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "early", runs[0].Name)
	assert.Equal(t, "late", runs[1].Name)
}

func TestStore_ListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "missing"))

	runs, err := st.List()

	assert.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStore_LoadMissingRun(t *testing.T) {
	st := fixedStore(t)

	_, err := st.Load("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = st.LoadSamples("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = st.LoadConfig("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestStore_FileStructure(t *testing.T) {
	st := fixedStore(t)

	runID, err := st.Save("run", config.DefaultConfig(), nil, testResult())
	require.NoError(t, err)

	for _, name := range []string{metadataFile, samplesFile, configFile} {
		_, err := os.Stat(filepath.Join(st.baseDir, runID, name))
		assert.NoError(t, err, name)
	}
	assert.Equal(t, filepath.Join(st.baseDir, runID, samplesFile), st.SamplesPath(runID))
}

func TestReadSamplesCSV_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty", ""},
		{"short row", "time,dt,reference,observable,requested,actual,increment,mode\n0,1,2\n"},
		{"not a number", "time,dt,reference,observable,requested,actual,increment,mode\n0,0.1,1,x,0,0,0,auto\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadSamplesCSV(strings.NewReader(tt.data))
			assert.ErrorIs(t, err, ErrBadSamples)
		})
	}
}

func TestWriteSamplesCSV(t *testing.T) {
	var buf bytes.Buffer

	err := WriteSamplesCSV(&buf, testResult().Samples[1:])

	require.NoError(t, err)
	assert.Equal(t,
		"time,dt,reference,observable,requested,actual,increment,mode\n"+
			"0.5,0.5,1,NaN,1,1,0,auto\n"+
			"1,0.5,1,0.4,0.7,0.7,0,manual\n",
		buf.String())
}

func TestExportJSON(t *testing.T) {
	// GIVEN
	meta := &RunMetadata{ID: "r1", Name: "pid", Metrics: map[string]config.Float{"iae": 2}}
	var buf bytes.Buffer

	// WHEN
	err := ExportJSON(&buf, meta, testResult().Samples)

	// THEN
	require.NoError(t, err)

	var decoded struct {
		Run     map[string]any   `json:"run"`
		Samples []map[string]any `json:"samples"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "r1", decoded.Run["id"])
	require.Len(t, decoded.Samples, 3)
	assert.Equal(t, "nan", decoded.Samples[1]["observable"])
	assert.Equal(t, "manual", decoded.Samples[2]["mode"])
}
