// Copyright (c) AgentMesh Authors.
// Licensed under the MIT License.

// Package telemetry wires the OpenTelemetry SDK (OTLP gRPC traces and
// metrics) behind a single Init/Shutdown pair. This package is internal and
// should not be imported by external projects.
package telemetry
