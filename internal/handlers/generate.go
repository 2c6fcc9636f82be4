// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"log/slog"
	"net/http"

	"autoblog/internal/generator"
)

type generateRequest struct {
	Topic string `json:"topic"`
}

type bulkRequest struct {
	Count  int      `json:"count"`
	Topics []string `json:"topics"`
}

// Generate runs one generation. An empty topic lets the text service pick
// one. Responds 200 with the Result on success and 500 otherwise.
func (a *API) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	topic, msg := validateTopic(req.Topic)
	if msg != "" {
		writeError(w, http.StatusBadRequest, msg)
		return
	}

	res := a.deps.Generator.GeneratePost(detach(r), topic)
	if !res.Success {
		slog.Error("manual generation failed", "topic", res.Topic, "error", res.Error)
		writeJSON(w, http.StatusInternalServerError, res)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// BulkGenerate runs count generations in sequence and returns every
// Result. Counts above the bulk maximum are capped.
func (a *API) BulkGenerate(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Count < 1 {
		writeError(w, http.StatusBadRequest, "count must be at least 1")
		return
	}
	for i, t := range req.Topics {
		topic, msg := validateTopic(t)
		if msg != "" {
			writeError(w, http.StatusBadRequest, msg)
			return
		}
		req.Topics[i] = topic
	}

	results := a.deps.Generator.BulkGenerate(detach(r), req.Count, req.Topics)
	succeeded := 0
	for _, res := range results {
		if res.Success {
			succeeded++
		}
	}
	slog.Info("bulk generation finished", "requested", req.Count, "succeeded", succeeded)
	if results == nil {
		results = []generator.Result{}
	}
	writeJSON(w, http.StatusOK, results)
}

// Schedule returns the scheduler state.
func (a *API) Schedule(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, a.deps.Schedule.State())
}

// RunSchedule fires the scheduled generation now, recording it as the
// schedule's last run.
func (a *API) RunSchedule(w http.ResponseWriter, r *http.Request) {
	res := a.deps.Schedule.Trigger(detach(r))
	status := http.StatusOK
	if !res.Success {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, res)
}
