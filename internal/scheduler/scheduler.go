// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package scheduler fires generation runs on the configured cadence.
// There is at most one pending fire at any time; Reschedule replaces it.
package scheduler

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"autoblog/internal/config"
	"autoblog/internal/generator"
)

// Runner executes one generation cycle.
type Runner interface {
	GeneratePost(ctx context.Context, topic string) generator.Result
}

// State is a snapshot of the schedule.
type State struct {
	Frequency  config.Frequency  `json:"frequency"`
	NextRunAt  *time.Time        `json:"next_run_at,omitempty"`
	Running    bool              `json:"running"`
	LastRunAt  *time.Time        `json:"last_run_at,omitempty"`
	LastResult *generator.Result `json:"last_result,omitempty"`
}

// Scheduler owns the schedule state and the single pending timer.
type Scheduler struct {
	runner    Runner
	frequency func() config.Frequency
	interval  func(config.Frequency) time.Duration

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	timer   *time.Timer
	epoch   uint64
	state   State
	running sync.WaitGroup
}

// New creates a Scheduler. frequency is read each time a fire is
// scheduled, so settings changes apply on the next Reschedule.
func New(runner Runner, frequency func() config.Frequency) *Scheduler {
	return &Scheduler{
		runner:    runner,
		frequency: frequency,
		interval:  config.Frequency.Interval,
	}
}

// Start installs the first fire. Runs use a context derived from ctx.
// Calling Start on a started scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx != nil {
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.scheduleLocked()
	slog.Info("scheduler started", "frequency", s.state.Frequency, "next_run", s.state.NextRunAt)
}

// Stop clears the pending fire, cancels an in-flight run and waits for it.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.ctx == nil {
		s.mu.Unlock()
		return
	}
	s.clearLocked()
	s.cancel()
	s.ctx, s.cancel = nil, nil
	s.mu.Unlock()

	s.running.Wait()
	slog.Info("scheduler stopped")
}

// Reschedule clears any pending fire and installs a new one from the
// current frequency. It is idempotent and safe before Start, where it only
// refreshes the reported frequency.
func (s *Scheduler) Reschedule() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
	if s.ctx == nil {
		s.state.Frequency = s.frequency()
		return
	}
	s.scheduleLocked()
	slog.Info("schedule updated", "frequency", s.state.Frequency, "next_run", s.state.NextRunAt)
}

// State returns a snapshot of the schedule.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state
	if s.state.Frequency == "" {
		st.Frequency = s.frequency()
	}
	return st
}

// Trigger runs one generation cycle now and records its outcome.
func (s *Scheduler) Trigger(ctx context.Context) generator.Result {
	s.mu.Lock()
	s.state.Running = true
	s.mu.Unlock()

	res := s.runner.GeneratePost(ctx, "")
	if res.Success {
		slog.Info("scheduled generation succeeded", "content_id", res.ContentID, "topic", res.Topic)
	} else {
		slog.Error("scheduled generation failed", "topic", res.Topic, "error", res.Error)
	}

	now := time.Now()
	s.mu.Lock()
	s.state.Running = false
	s.state.LastRunAt = &now
	s.state.LastResult = &res
	s.mu.Unlock()
	return res
}

// scheduleLocked installs the next fire. Callers hold s.mu.
func (s *Scheduler) scheduleLocked() {
	freq := s.frequency()
	d := s.interval(freq)
	next := time.Now().Add(d)

	s.epoch++
	epoch := s.epoch
	s.timer = time.AfterFunc(d, func() { s.fire(epoch) })
	s.state.Frequency = freq
	s.state.NextRunAt = &next
}

// clearLocked drops the pending fire. Callers hold s.mu.
func (s *Scheduler) clearLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.epoch++
	s.state.NextRunAt = nil
}

// fire runs a cycle unless the schedule changed since it was installed,
// then installs the following fire.
func (s *Scheduler) fire(epoch uint64) {
	s.mu.Lock()
	if s.ctx == nil || epoch != s.epoch {
		s.mu.Unlock()
		return
	}
	ctx := s.ctx
	s.timer = nil
	s.state.NextRunAt = nil
	s.running.Add(1)
	s.mu.Unlock()
	defer s.running.Done()

	s.Trigger(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx != nil && epoch == s.epoch {
		s.scheduleLocked()
	}
}
