package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/gridsolve/internal/config"
	"github.com/san-kum/gridsolve/internal/experiment"
)

func sampleResult() *experiment.Result {
	return &experiment.Result{
		Experiment: "wavepacket",
		Method:     "rk4",
		Names:      []string{"norm", "peak"},
		Coords:     []float64{-1, 0, 1},
		Samples: []experiment.Sample{
			{Step: 0, Time: 0, Values: []float64{1, 0.75}, Profile: []float64{0.1, 0.5, 0.1}},
			{Step: 10, Time: 0.1, Values: []float64{0.999999, 0.7}, Profile: []float64{0.2, 0.4, 0.2}},
		},
		StepsTaken:  10,
		Evaluations: 40,
		Final:       map[string]float64{"norm": 0.999999, "peak": 0.7},
		Elapsed:     1500 * time.Millisecond,
	}
}

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	cfg := config.GetPreset("wavepacket", "free")
	id, err := st.Save(cfg, sampleResult(), nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(id, "wavepacket_"))
	assert.Len(t, id, len("wavepacket_")+8)

	meta, err := st.Load(id)
	require.NoError(t, err)
	assert.Equal(t, "rk4", meta.Method)
	assert.Equal(t, cfg.Shape, meta.Shape)
	assert.Equal(t, 40, meta.Evaluations)
	assert.Equal(t, 0.7, meta.Metrics["peak"])
	assert.Empty(t, meta.Error)

	names, samples, err := st.LoadSamples(id)
	require.NoError(t, err)
	assert.Equal(t, []string{"norm", "peak"}, names)
	require.Len(t, samples, 2)
	assert.Equal(t, 10, samples[1].Step)
	assert.Equal(t, 0.1, samples[1].Time)
	assert.Equal(t, []float64{0.999999, 0.7}, samples[1].Values)

	profiles, err := st.LoadProfiles(id)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, []float64{0.2, 0.4, 0.2}, profiles[1].Profile)
}

func TestStoreLoadResult(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	want := sampleResult()
	id, err := st.Save(config.DefaultConfig(), want, nil)
	require.NoError(t, err)

	got, err := st.LoadResult(id)
	require.NoError(t, err)
	assert.Equal(t, want.Names, got.Names)
	assert.Equal(t, want.Samples, got.Samples)
	assert.Equal(t, want.Coords, got.Coords)
	assert.Equal(t, want.Elapsed, got.Elapsed)
	assert.Equal(t, []float64{1, 0.999999}, got.Series("norm"))
}

func TestStoreSave_RecordsError(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	id, err := st.Save(config.DefaultConfig(), sampleResult(), errors.New("step 3 (t=0.0300): boom"))
	require.NoError(t, err)

	meta, err := st.Load(id)
	require.NoError(t, err)
	assert.Contains(t, meta.Error, "boom")
}

func TestStoreList(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	require.NoError(t, st.Init())
	first, err := st.Save(config.DefaultConfig(), sampleResult(), nil)
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	second, err := st.Save(config.DefaultConfig(), sampleResult(), nil)
	require.NoError(t, err)

	// stray entries are skipped
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "not-a-run"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	runs, err = st.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first, runs[0].ID)
	assert.Equal(t, second, runs[1].ID)
}

func TestStoreLoad_Missing(t *testing.T) {
	st := New(t.TempDir())
	_, err := st.Load("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, _, err = st.LoadSamples("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestStoreLoadSamples_Corrupt(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "bad"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad", samplesFile), []byte("step,time,norm\n1,0.1,abc\n"), 0644))

	_, _, err := st.LoadSamples("bad")
	assert.ErrorContains(t, err, "line 2")
}

func TestExport(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())
	id, err := st.Save(config.DefaultConfig(), sampleResult(), nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, st.Export(&buf, id))

	var data ExportData
	require.NoError(t, json.Unmarshal(buf.Bytes(), &data))
	assert.Equal(t, id, data.ID)
	assert.Equal(t, []float64{0, 0.1}, data.Times)
	assert.Equal(t, []float64{0.1, 0.5, 0.1}, data.Profiles[0])
	assert.Equal(t, 0.999999, data.Metrics["norm"])
}
