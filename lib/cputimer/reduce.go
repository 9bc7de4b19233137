// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cputimer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/pprof/profile"
)

// Reduce parses a pprof-encoded CPU profile and computes a Profile.
func Reduce(data []byte) (Profile, error) {
	parsed, err := profile.Parse(bytes.NewReader(data))
	if err != nil {
		return Profile{}, fmt.Errorf("cputimer: %w", err)
	}
	return reduce(parsed)
}

func reduce(parsed *profile.Profile) (Profile, error) {
	valueIndex, unit, err := cpuValueIndex(parsed)
	if err != nil {
		return Profile{}, err
	}

	var result Profile
	var exclusive int64
	cumulative := make(map[string]int64)
	for _, sample := range parsed.Sample {
		value := sample.Value[valueIndex]
		frames := stackFunctions(sample)
		if len(frames) == 0 {
			continue
		}
		exclusive += value

		seen := make(map[string]struct{}, len(frames))
		for _, name := range frames {
			result.TotalCallCount++
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			result.PrimitiveCallCount++
			cumulative[name] += value
		}
	}

	var peak int64
	for _, value := range cumulative {
		peak = max(peak, value)
	}
	result.ExclusiveTimeMS = toMilliseconds(exclusive, unit)
	result.CumulativeTimeMS = toMilliseconds(peak, unit)
	return result, nil
}

// cpuValueIndex finds the sample value holding CPU time. Go profiles
// carry "samples/count" and "cpu/nanoseconds".
func cpuValueIndex(parsed *profile.Profile) (int, time.Duration, error) {
	for index, sampleType := range parsed.SampleType {
		if sampleType.Type != "cpu" {
			continue
		}
		switch sampleType.Unit {
		case "nanoseconds":
			return index, time.Nanosecond, nil
		case "microseconds":
			return index, time.Microsecond, nil
		case "milliseconds":
			return index, time.Millisecond, nil
		default:
			return 0, 0, fmt.Errorf("cputimer: unsupported cpu unit %q", sampleType.Unit)
		}
	}
	return 0, 0, fmt.Errorf("cputimer: profile has no cpu sample type")
}

// stackFunctions returns the function names of a sample's stack, leaf
// first, with inlined frames expanded.
func stackFunctions(sample *profile.Sample) []string {
	var names []string
	for _, location := range sample.Location {
		for _, line := range location.Line {
			if line.Function != nil {
				names = append(names, line.Function.Name)
			}
		}
		if len(location.Line) == 0 {
			names = append(names, fmt.Sprintf("0x%x", location.Address))
		}
	}
	return names
}

func toMilliseconds(value int64, unit time.Duration) float64 {
	return float64(time.Duration(value)*unit) / float64(time.Millisecond)
}
