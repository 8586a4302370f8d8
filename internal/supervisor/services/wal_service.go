// Platewise - Collaborative Filtering Recommendations for Food Ordering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/platewise

package services

import (
	"context"
	"fmt"
)

// StartStopper is the lifecycle of *wal.RetryLoop and *wal.Compactor.
type StartStopper interface {
	Start(ctx context.Context) error
	Stop()
	IsRunning() bool
}

// StartStopService adapts a Start/Stop component to suture's Serve.
type StartStopService struct {
	component StartStopper
	name      string
}

// NewWALRetryService supervises the WAL retry loop.
func NewWALRetryService(retryLoop StartStopper) *StartStopService {
	return &StartStopService{component: retryLoop, name: "wal-retry-loop"}
}

// NewWALCompactorService supervises the WAL compactor.
func NewWALCompactorService(compactor StartStopper) *StartStopService {
	return &StartStopService{component: compactor, name: "wal-compactor"}
}

// Serve starts the component, blocks until ctx is canceled, then stops it.
// A Start error is returned so suture restarts the service.
func (s *StartStopService) Serve(ctx context.Context) error {
	if err := s.component.Start(ctx); err != nil {
		return fmt.Errorf("%s start failed: %w", s.name, err)
	}

	<-ctx.Done()
	s.component.Stop()
	return ctx.Err()
}

// String implements fmt.Stringer for suture's logs.
func (s *StartStopService) String() string {
	return s.name
}
