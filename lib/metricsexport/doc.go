// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package metricsexport publishes evaluation results as Prometheus
// metrics in the node_exporter textfile format.
//
// An [Exporter] owns a private registry so that writing a textfile never
// includes Go runtime or process collectors. Observe records the latest
// figures for each algorithm and volume; WriteTextfile renders the
// registry atomically to a path the node_exporter textfile collector
// scans.
package metricsexport
