//-------------------------------------------------------------------------
//
// pgEdge Demand Preprocessor
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package preprocess

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pgEdge/pgedge-demandprep/internal/dataset"
	"github.com/pgEdge/pgedge-demandprep/internal/testutil"
)

type recordingSink struct {
	calls int
	info  RunInfo
	out   *dataset.Outputs
	err   error
}

func (s *recordingSink) Store(ctx context.Context, info RunInfo, out *dataset.Outputs) error {
	s.calls++
	s.info = info
	s.out = out
	return s.err
}

func TestLoad(t *testing.T) {
	dir := testutil.WriteInputs(t, nil)

	in, err := Load(context.Background(), dir)
	require.NoError(t, err)

	assert.Len(t, in.Train, 5)
	assert.Len(t, in.Stores, 2)
	assert.Len(t, in.Oil, 3)
	assert.Len(t, in.Holidays, 4)
	assert.Len(t, in.Test, 2)
	assert.True(t, in.HasTrainID)
	assert.True(t, in.HasTestID)
}

func TestLoadMissingFile(t *testing.T) {
	dir := testutil.WriteInputs(t, map[string]string{dataset.StoresFile: ""})

	_, err := Load(context.Background(), dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), dataset.StoresFile)
}

func TestLoadMissingColumn(t *testing.T) {
	dir := testutil.WriteInputs(t, map[string]string{
		dataset.OilFile: "date,price\n2023-01-01,50\n",
	})

	_, err := Load(context.Background(), dir)
	require.Error(t, err)
	assert.ErrorIs(t, err, dataset.ErrMissingColumn)
}

func TestLoadCanceled(t *testing.T) {
	dir := testutil.WriteInputs(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Load(ctx, dir)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun(t *testing.T) {
	input := testutil.WriteInputs(t, nil)
	output := filepath.Join(t.TempDir(), "processed")

	info, err := Run(context.Background(), Options{InputDir: input, OutputDir: output})
	require.NoError(t, err)
	assert.NotEmpty(t, info.RunID)
	assert.Equal(t, 5, info.TrainRows)
	assert.Equal(t, 2, info.TestRows)
	assert.Equal(t, 3, info.MonthlyRows)

	train := testutil.Lines(testutil.ReadFile(t, output, dataset.TrainProcessedFile))
	assert.Equal(t, []string{
		"id,date,store_nbr,family,sales,onpromotion,city,state,type,cluster,dcoilwtico,is_holiday,year,month,day,weekday,elasticity_proxy,comp_price_proxy,cum_sales",
		"0,2023-01-01,1,A,0,0,Quito,Pichincha,D,13,50,1,2023,1,1,6,0,50,0",
		"1,2023-01-02,1,A,10,2,Quito,Pichincha,D,13,50,0,2023,1,2,0,5,50,10",
		"2,2023-01-02,2,B,7.5,0,Guayaquil,Guayas,A,5,50,0,2023,1,2,0,7.5,50,7.5",
		"3,2023-01-03,1,A,20,0,Quito,Pichincha,D,13,50,0,2023,1,3,1,20,50,30",
		"4,2023-01-03,9,A,3,1,,,,,50,0,2023,1,3,1,3,50,3",
	}, train)

	test := testutil.Lines(testutil.ReadFile(t, output, dataset.TestProcessedFile))
	assert.Equal(t, []string{
		"id,date,store_nbr,family,onpromotion,city,state,type,cluster,dcoilwtico,is_holiday,year,month,day,weekday,comp_price_proxy",
		"5,2023-01-04,1,A,3,Quito,Pichincha,D,13,,1,2023,1,4,2,",
		"6,2023-01-05,2,B,0,Guayaquil,Guayas,A,5,,0,2023,1,5,3,",
	}, test)

	monthly := testutil.Lines(testutil.ReadFile(t, output, dataset.MonthlyAggFile))
	assert.Equal(t, []string{
		"year,month,store_nbr,family,sales",
		"2023,1,1,A,30",
		"2023,1,2,B,7.5",
		"2023,1,9,A,3",
	}, monthly)
}

func TestRunIdempotent(t *testing.T) {
	input := testutil.WriteInputs(t, nil)
	output := t.TempDir()
	opts := Options{InputDir: input, OutputDir: output}

	_, err := Run(context.Background(), opts)
	require.NoError(t, err)
	first := map[string]string{}
	for _, name := range []string{dataset.TrainProcessedFile, dataset.TestProcessedFile, dataset.MonthlyAggFile} {
		first[name] = testutil.ReadFile(t, output, name)
	}

	_, err = Run(context.Background(), opts)
	require.NoError(t, err)
	for name, content := range first {
		assert.Equal(t, content, testutil.ReadFile(t, output, name), name)
	}
}

func TestRunWithoutIDColumns(t *testing.T) {
	input := testutil.WriteInputs(t, map[string]string{
		dataset.TrainFile: "date,store_nbr,family,sales,onpromotion\n2023-01-02,1,A,4,0\n",
		dataset.TestFile:  "date,store_nbr,family,onpromotion\n2023-01-04,1,A,0\n",
	})
	output := t.TempDir()

	_, err := Run(context.Background(), Options{InputDir: input, OutputDir: output})
	require.NoError(t, err)

	header, rows, err := dataset.ReadTable(filepath.Join(output, dataset.TrainProcessedFile))
	require.NoError(t, err)
	assert.Equal(t, dataset.TrainColumns, header)
	assert.Len(t, rows, 1)

	header, _, err = dataset.ReadTable(filepath.Join(output, dataset.TestProcessedFile))
	require.NoError(t, err)
	assert.Equal(t, dataset.TestColumns, header)
}

func TestRunAllOilMissing(t *testing.T) {
	input := testutil.WriteInputs(t, map[string]string{
		dataset.OilFile: "date,dcoilwtico\n2023-01-01,\n2023-01-02,NA\n",
	})
	output := t.TempDir()

	_, err := Run(context.Background(), Options{InputDir: input, OutputDir: output})
	require.NoError(t, err)

	header, rows, err := dataset.ReadTable(filepath.Join(output, dataset.TrainProcessedFile))
	require.NoError(t, err)
	oilCol := indexOf(header, "dcoilwtico")
	proxyCol := indexOf(header, "comp_price_proxy")
	for _, r := range rows {
		assert.Empty(t, r[oilCol])
		assert.Empty(t, r[proxyCol])
	}
}

func TestRunHolidayLocales(t *testing.T) {
	input := testutil.WriteInputs(t, nil)
	output := t.TempDir()

	_, err := Run(context.Background(), Options{
		InputDir:       input,
		OutputDir:      output,
		HolidayLocales: []string{"Local"},
	})
	require.NoError(t, err)

	header, rows, err := dataset.ReadTable(filepath.Join(output, dataset.TrainProcessedFile))
	require.NoError(t, err)
	col := indexOf(header, "is_holiday")
	for _, r := range rows {
		assert.Equal(t, "0", r[col])
	}
}

func TestRunSink(t *testing.T) {
	input := testutil.WriteInputs(t, nil)
	sink := &recordingSink{}

	info, err := Run(context.Background(), Options{InputDir: input, OutputDir: t.TempDir(), Sink: sink})
	require.NoError(t, err)

	assert.Equal(t, 1, sink.calls)
	assert.Equal(t, info.RunID, sink.info.RunID)
	require.NotNil(t, sink.out)
	assert.Len(t, sink.out.Train, 5)
	assert.Len(t, sink.out.Monthly, 3)
}

func TestRunSinkError(t *testing.T) {
	input := testutil.WriteInputs(t, nil)
	output := t.TempDir()
	boom := errors.New("boom")

	_, err := Run(context.Background(), Options{
		InputDir:  input,
		OutputDir: output,
		Sink:      &recordingSink{err: boom},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)

	// CSV outputs are written before the sink runs.
	_, err = os.Stat(filepath.Join(output, dataset.TrainProcessedFile))
	assert.NoError(t, err)
}

func indexOf(header []string, name string) int {
	for i, h := range header {
		if h == name {
			return i
		}
	}
	return -1
}
