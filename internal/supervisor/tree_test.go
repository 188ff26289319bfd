// AgriSat - Satellite Agriculture Learning Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agrisat

package supervisor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// countingService runs until canceled, failing its first failFirst runs.
type countingService struct {
	name      string
	failFirst int32
	starts    atomic.Int32
}

func (s *countingService) Serve(ctx context.Context) error {
	if s.starts.Add(1) <= s.failFirst {
		return errors.New("simulated failure")
	}
	<-ctx.Done()
	return ctx.Err()
}

func (s *countingService) String() string { return s.name }

func TestNewSupervisorTree_Defaults(t *testing.T) {
	t.Parallel()
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if tree.config != DefaultTreeConfig() {
		t.Errorf("config = %+v, want defaults", tree.config)
	}
	if tree.Root() == nil {
		t.Error("root supervisor is nil")
	}
}

func TestSupervisorTree_RunsBothLayers(t *testing.T) {
	t.Parallel()
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{FailureBackoff: 10 * time.Millisecond, ShutdownTimeout: time.Second})
	if err != nil {
		t.Fatal(err)
	}
	sweeper := &countingService{name: "session-sweeper"}
	server := &countingService{name: "http-server"}
	tree.AddMaintenanceService(sweeper)
	tree.AddAPIService(server)

	ctx, cancel := context.WithCancel(context.Background())
	done := tree.ServeBackground(ctx)

	deadline := time.After(2 * time.Second)
	for sweeper.starts.Load() == 0 || server.starts.Load() == 0 {
		select {
		case <-deadline:
			t.Fatal("services did not start")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done

	report, err := tree.UnstoppedServiceReport()
	if err != nil {
		t.Fatal(err)
	}
	if len(report) != 0 {
		t.Errorf("unstopped services: %v", report)
	}
}

func TestSupervisorTree_RestartsFailedMaintenanceService(t *testing.T) {
	t.Parallel()
	tree, err := NewSupervisorTree(quietLogger(), TreeConfig{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		ShutdownTimeout:  time.Second,
	})
	if err != nil {
		t.Fatal(err)
	}
	janitor := &countingService{name: "cache-janitor", failFirst: 2}
	server := &countingService{name: "http-server"}
	tree.AddMaintenanceService(janitor)
	tree.AddAPIService(server)

	ctx, cancel := context.WithCancel(context.Background())
	done := tree.ServeBackground(ctx)
	defer func() {
		cancel()
		<-done
	}()

	deadline := time.After(3 * time.Second)
	for janitor.starts.Load() < 3 || server.starts.Load() == 0 {
		select {
		case <-deadline:
			t.Fatalf("janitor starts = %d, want 3", janitor.starts.Load())
		case <-time.After(5 * time.Millisecond):
		}
	}
	if server.starts.Load() != 1 {
		t.Errorf("http server restarted %d times; maintenance failures must not affect the api layer", server.starts.Load()-1)
	}
}
