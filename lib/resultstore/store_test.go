// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package resultstore_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/cryptobench/lib/algorithm"
	"github.com/bureau-foundation/cryptobench/lib/clock"
	"github.com/bureau-foundation/cryptobench/lib/codec"
	"github.com/bureau-foundation/cryptobench/lib/cputimer"
	"github.com/bureau-foundation/cryptobench/lib/evaluation"
	"github.com/bureau-foundation/cryptobench/lib/hwinfo"
	"github.com/bureau-foundation/cryptobench/lib/profiling"
	"github.com/bureau-foundation/cryptobench/lib/resultstore"
	"github.com/bureau-foundation/cryptobench/lib/sampler"
)

var epoch = time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.UTC)

func TestEvaluationRoundtrip(t *testing.T) {
	for _, compression := range []codec.Compression{codec.CompressionNone, codec.CompressionLZ4, codec.CompressionZstd} {
		t.Run(compression.String(), func(t *testing.T) {
			store := openTestStore(t, compression)
			original := sampleEvaluation(algorithm.MLKEM1024, 1000, 0)

			if err := store.SaveEvaluation(context.Background(), original); err != nil {
				t.Fatalf("SaveEvaluation: %v", err)
			}
			loaded, err := store.Evaluation(context.Background(), original.ID)
			if err != nil {
				t.Fatalf("Evaluation: %v", err)
			}

			if loaded.ID != original.ID || loaded.Algorithm != original.Algorithm || loaded.Seed != original.Seed {
				t.Errorf("identity mismatch: got %+v", loaded)
			}
			if !loaded.StartedAt.Equal(original.StartedAt) {
				t.Errorf("StartedAt = %v, want %v", loaded.StartedAt, original.StartedAt)
			}
			if loaded.Metrics == nil {
				t.Fatal("Metrics lost")
			}
			if got, want := len(loaded.Metrics.Memory.Samples), len(original.Metrics.Memory.Samples); got != want {
				t.Errorf("memory samples = %d, want %d", got, want)
			}
			if *loaded.Metrics.Hardware.CPUBrand != *original.Metrics.Hardware.CPUBrand {
				t.Errorf("cpu brand = %q", *loaded.Metrics.Hardware.CPUBrand)
			}
			if *loaded.Summary.CPUCycles != *original.Summary.CPUCycles {
				t.Errorf("cycles = %d", *loaded.Summary.CPUCycles)
			}
		})
	}
}

func TestLargeSeedRoundtrip(t *testing.T) {
	store := openTestStore(t, codec.CompressionNone)
	original := sampleEvaluation(algorithm.AESGCM, 10, 0)
	original.Seed = 1<<64 - 1

	if err := store.SaveEvaluation(context.Background(), original); err != nil {
		t.Fatalf("SaveEvaluation: %v", err)
	}
	records, err := store.List(context.Background(), resultstore.Filter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 || records[0].Seed != original.Seed {
		t.Errorf("records = %+v, want seed %d", records, original.Seed)
	}
}

func TestEvaluationNotFound(t *testing.T) {
	store := openTestStore(t, codec.CompressionZstd)
	_, err := store.Evaluation(context.Background(), "missing")
	if !errors.Is(err, resultstore.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	_, err = store.Series(context.Background(), "missing")
	if !errors.Is(err, resultstore.ErrNotFound) {
		t.Errorf("Series err = %v, want ErrNotFound", err)
	}
}

func TestFailedEvaluationStored(t *testing.T) {
	store := openTestStore(t, codec.CompressionLZ4)
	failed := evaluation.Evaluation{
		ID:            "RSA_failed",
		Algorithm:     algorithm.RSAPSS,
		ChallengeType: algorithm.RSAPSS.ChallengeType(),
		Volume:        5,
		StartedAt:     epoch,
		Status:        evaluation.StatusFailed,
		Notes:         "Error: boom",
	}
	if err := store.SaveEvaluation(context.Background(), failed); err != nil {
		t.Fatalf("SaveEvaluation: %v", err)
	}
	loaded, err := store.Evaluation(context.Background(), failed.ID)
	if err != nil {
		t.Fatalf("Evaluation: %v", err)
	}
	if loaded.Metrics != nil {
		t.Error("failed evaluation gained metrics")
	}
	if loaded.Notes != failed.Notes || loaded.Status != evaluation.StatusFailed {
		t.Errorf("loaded = %+v", loaded)
	}
}

func TestSeriesRoundtripPreservesOrder(t *testing.T) {
	store := openTestStore(t, codec.CompressionZstd)
	volumes := []int{100, 10, 1000}
	series := evaluation.Series{
		ID:        "series_MLDSA87",
		Algorithm: algorithm.MLDSA87,
		Volumes:   volumes,
		Seed:      42,
		Status:    evaluation.StatusSuccess,
	}
	for i, volume := range volumes {
		series.Evaluations = append(series.Evaluations, sampleEvaluation(algorithm.MLDSA87, volume, i))
	}
	series.Aggregate = evaluation.AggregateSeries(series.Evaluations)

	if err := store.SaveSeries(context.Background(), series); err != nil {
		t.Fatalf("SaveSeries: %v", err)
	}
	loaded, err := store.Series(context.Background(), series.ID)
	if err != nil {
		t.Fatalf("Series: %v", err)
	}
	if len(loaded.Evaluations) != len(volumes) {
		t.Fatalf("evaluations = %d, want %d", len(loaded.Evaluations), len(volumes))
	}
	for i, volume := range volumes {
		if loaded.Evaluations[i].Volume != volume {
			t.Errorf("evaluation %d volume = %d, want %d", i, loaded.Evaluations[i].Volume, volume)
		}
	}
	if loaded.Aggregate.SuccessRate != 1 {
		t.Errorf("SuccessRate = %v, want 1", loaded.Aggregate.SuccessRate)
	}

	// A series ID is not a comparison ID.
	if _, err := store.Comparison(context.Background(), series.ID); !errors.Is(err, resultstore.ErrNotFound) {
		t.Errorf("Comparison(series ID) err = %v, want ErrNotFound", err)
	}

	records, err := store.List(context.Background(), resultstore.Filter{GroupID: series.ID})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != len(volumes) {
		t.Errorf("group records = %d, want %d", len(records), len(volumes))
	}
}

func TestComparisonResaveReplacesMembers(t *testing.T) {
	store := openTestStore(t, codec.CompressionNone)
	comparison := evaluation.Comparison{
		ID:     "comparison_1",
		Volume: 10,
		Seed:   42,
		Status: evaluation.StatusSuccess,
		Evaluations: []evaluation.Evaluation{
			sampleEvaluation(algorithm.AESGCM, 10, 0),
			sampleEvaluation(algorithm.XChaCha20Poly1305, 10, 1),
		},
	}
	if err := store.SaveComparison(context.Background(), comparison); err != nil {
		t.Fatalf("SaveComparison: %v", err)
	}
	comparison.Evaluations = comparison.Evaluations[1:]
	if err := store.SaveComparison(context.Background(), comparison); err != nil {
		t.Fatalf("SaveComparison again: %v", err)
	}
	loaded, err := store.Comparison(context.Background(), comparison.ID)
	if err != nil {
		t.Fatalf("Comparison: %v", err)
	}
	if len(loaded.Evaluations) != 1 || loaded.Evaluations[0].Algorithm != algorithm.XChaCha20Poly1305 {
		t.Errorf("members = %+v", loaded.Evaluations)
	}
}

func TestListFiltersAndOrders(t *testing.T) {
	store := openTestStore(t, codec.CompressionZstd)
	ctx := context.Background()

	saved := []evaluation.Evaluation{
		sampleEvaluation(algorithm.MLKEM1024, 10, 0),
		sampleEvaluation(algorithm.AESGCM, 10, 1),
		sampleEvaluation(algorithm.MLKEM1024, 100, 2),
	}
	saved[1].Status = evaluation.StatusFailed
	for _, e := range saved {
		if err := store.SaveEvaluation(ctx, e); err != nil {
			t.Fatalf("SaveEvaluation: %v", err)
		}
	}

	tests := []struct {
		name    string
		filter  resultstore.Filter
		wantIDs []string
	}{
		{"all newest first", resultstore.Filter{}, []string{saved[2].ID, saved[1].ID, saved[0].ID}},
		{"by algorithm", resultstore.Filter{Algorithm: algorithm.MLKEM1024.String()}, []string{saved[2].ID, saved[0].ID}},
		{"by status", resultstore.Filter{Status: evaluation.StatusFailed}, []string{saved[1].ID}},
		{"limit", resultstore.Filter{Limit: 1}, []string{saved[2].ID}},
		{"no match", resultstore.Filter{Algorithm: algorithm.X25519.String()}, nil},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			records, err := store.List(ctx, test.filter)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			var ids []string
			for _, record := range records {
				ids = append(ids, record.ID)
			}
			if fmt.Sprint(ids) != fmt.Sprint(test.wantIDs) {
				t.Errorf("ids = %v, want %v", ids, test.wantIDs)
			}
		})
	}
}

func TestRawEvaluationDiagnosable(t *testing.T) {
	store := openTestStore(t, codec.CompressionZstd)
	original := sampleEvaluation(algorithm.X25519, 10, 0)
	if err := store.SaveEvaluation(context.Background(), original); err != nil {
		t.Fatal(err)
	}
	raw, err := store.RawEvaluation(context.Background(), original.ID)
	if err != nil {
		t.Fatalf("RawEvaluation: %v", err)
	}
	notation, err := codec.Diagnose(raw)
	if err != nil {
		t.Fatalf("Diagnose: %v", err)
	}
	if len(notation) == 0 {
		t.Error("empty notation")
	}
}

func TestConcurrentSaves(t *testing.T) {
	store := openTestStore(t, codec.CompressionLZ4)

	const writers = 8
	var waitGroup sync.WaitGroup
	errs := make(chan error, writers)
	for i := range writers {
		waitGroup.Add(1)
		go func() {
			defer waitGroup.Done()
			errs <- store.SaveEvaluation(context.Background(), sampleEvaluation(algorithm.Age, 10, i))
		}()
	}
	waitGroup.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Error(err)
		}
	}

	records, err := store.List(context.Background(), resultstore.Filter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != writers {
		t.Errorf("records = %d, want %d", len(records), writers)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := resultstore.Open(resultstore.Config{}); err == nil {
		t.Fatal("expected error for empty Path")
	}
}

func openTestStore(t *testing.T, compression codec.Compression) *resultstore.Store {
	t.Helper()
	store, err := resultstore.Open(resultstore.Config{
		Path:        filepath.Join(t.TempDir(), "results.db"),
		Compression: compression,
		Clock:       clock.Fake(epoch),
	})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return store
}

// sampleEvaluation builds a successful evaluation started offset
// seconds after epoch.
func sampleEvaluation(alg algorithm.Algorithm, volume, offset int) evaluation.Evaluation {
	started := epoch.Add(time.Duration(offset) * time.Second)
	brand := "Test CPU @ 3.00GHz"
	cycles := uint64(123_456_789)
	samples := make([]float64, 200)
	for i := range samples {
		samples[i] = 48 + float64(i%8)*0.125
	}
	metrics := profiling.Metrics{
		CPU: cputimer.Profile{ExclusiveTimeMS: 30, CumulativeTimeMS: 30, PrimitiveCallCount: 4, TotalCallCount: 5},
		System: sampler.AggregateMetrics{
			CPUPercentAvg:    97.5,
			MemoryPercentMax: 1.25,
			CPUCycles:        &cycles,
			SampleCount:      12,
		},
		Hardware: hwinfo.Snapshot{CPUBrand: &brand},
		Memory:   profiling.MemoryMetrics{PeakMB: 48.875, Samples: samples},
	}
	return evaluation.Evaluation{
		ID:            evaluation.NewID(alg.String(), started),
		Algorithm:     alg,
		ChallengeType: alg.ChallengeType(),
		Volume:        volume,
		Seed:          42 + uint64(offset),
		StartedAt:     started,
		EndedAt:       started.Add(250 * time.Millisecond),
		DurationMS:    250,
		Status:        evaluation.StatusSuccess,
		Summary: evaluation.Summary{
			CPUTimeMS:   30,
			MemoryMB:    48.875,
			CPUCycles:   &cycles,
			SampleCount: 12,
		},
		Metrics: &metrics,
	}
}
