// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides in-memory fakes for the API dependencies.
package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"autoblog/internal/analytics"
	"autoblog/internal/generator"
	"autoblog/internal/models"
	"autoblog/internal/scheduler"
	"autoblog/internal/settings"
	"autoblog/internal/store"
	"autoblog/internal/unsplash"
)

type fakeGenerator struct {
	result     generator.Result
	topics     []string
	bulkCount  int
	bulkTopics []string
}

func (f *fakeGenerator) GeneratePost(_ context.Context, topic string) generator.Result {
	f.topics = append(f.topics, topic)
	res := f.result
	if res.Topic == "" {
		res.Topic = topic
	}
	return res
}

func (f *fakeGenerator) BulkGenerate(_ context.Context, count int, topics []string) []generator.Result {
	f.bulkCount, f.bulkTopics = count, topics
	out := make([]generator.Result, count)
	for i := range out {
		out[i] = generator.Result{Success: i%2 == 0, Topic: "bulk"}
	}
	return out
}

type fakeRecords struct {
	records   []models.GenerationRecord
	untracked []models.UntrackedContent
	offset    int
	limit     int
	updated   map[uuid.UUID]models.PostStatus
	err       error
}

func (f *fakeRecords) List(_ context.Context, offset, limit int) ([]models.GenerationRecord, int, error) {
	f.offset, f.limit = offset, limit
	if f.err != nil {
		return nil, 0, f.err
	}
	end := min(offset+limit, len(f.records))
	if offset > end {
		return nil, len(f.records), nil
	}
	return f.records[offset:end], len(f.records), nil
}

func (f *fakeRecords) Untracked(context.Context, int) ([]models.UntrackedContent, error) {
	return f.untracked, f.err
}

func (f *fakeRecords) UpdateStatus(_ context.Context, id uuid.UUID, status models.PostStatus, _ *time.Time) error {
	if f.updated == nil {
		f.updated = make(map[uuid.UUID]models.PostStatus)
	}
	f.updated[id] = status
	return nil
}

type fakeContent struct {
	existing  map[uuid.UUID]bool
	published []uuid.UUID
	deleted   []uuid.UUID
}

func (f *fakeContent) Publish(_ context.Context, id uuid.UUID, _ time.Time) error {
	if !f.existing[id] {
		return store.ErrNotFound
	}
	f.published = append(f.published, id)
	return nil
}

func (f *fakeContent) Delete(_ context.Context, id uuid.UUID) error {
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeAnalytics struct {
	days int
	err  error
}

func (f *fakeAnalytics) Stats(context.Context) (analytics.Stats, error) {
	return analytics.Stats{PostsGenerated: 4, PostsPublished: 1}, f.err
}

func (f *fakeAnalytics) Analytics(_ context.Context, days int) (analytics.Report, error) {
	f.days = days
	return analytics.Report{Days: analytics.NormalizeDays(days), SuccessRate: 25}, f.err
}

func (f *fakeAnalytics) Export(_ context.Context, format analytics.Format, w io.Writer) error {
	if f.err != nil {
		return f.err
	}
	if format == analytics.FormatJSON {
		_, err := io.WriteString(w, `{"days":365}`)
		return err
	}
	_, err := io.WriteString(w, "Date,Topic,Status,Published\n")
	return err
}

type fakeImages struct {
	keyword string
	count   int
}

func (f *fakeImages) SearchImages(_ context.Context, keyword string, count int) []unsplash.Photo {
	f.keyword, f.count = keyword, count
	return []unsplash.Photo{{ID: "p1", URL: "https://img.test/p1.jpg"}}
}

type fakeSchedule struct {
	state    scheduler.State
	triggers int
	result   generator.Result
}

func (f *fakeSchedule) State() scheduler.State { return f.state }

func (f *fakeSchedule) Trigger(context.Context) generator.Result {
	f.triggers++
	return f.result
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type countingInvalidator struct{ n int }

func (c *countingInvalidator) Invalidate(context.Context) { c.n++ }

type memSettingStore map[string]string

func (m memSettingStore) All(context.Context) (models.SiteSettings, error) {
	out := models.SiteSettings{}
	for k, v := range m {
		out[k] = v
	}
	return out, nil
}

func (m memSettingStore) SetMany(_ context.Context, s map[string]string) error {
	for k, v := range s {
		m[k] = v
	}
	return nil
}

// testEnv holds the fakes behind an API.
type testEnv struct {
	Gen         *fakeGenerator
	Records     *fakeRecords
	Content     *fakeContent
	Analytics   *fakeAnalytics
	Images      *fakeImages
	Schedule    *fakeSchedule
	Settings    *settings.Service
	SettingRows memSettingStore
	Invalidator *countingInvalidator
	API         *API
}

var fixedNow = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	rows := memSettingStore{"text_api_key": "sk-0123456789"}
	svc := settings.New(rows)
	if _, err := svc.Load(context.Background()); err != nil {
		t.Fatalf("load settings: %v", err)
	}

	env := &testEnv{
		Gen:         &fakeGenerator{result: generator.Result{Success: true, ContentID: uuid.New()}},
		Records:     &fakeRecords{},
		Content:     &fakeContent{existing: map[uuid.UUID]bool{}},
		Analytics:   &fakeAnalytics{},
		Images:      &fakeImages{},
		Schedule:    &fakeSchedule{},
		Settings:    svc,
		SettingRows: rows,
		Invalidator: &countingInvalidator{},
	}
	env.API = NewAPI(Deps{
		Generator:   env.Gen,
		Records:     env.Records,
		Content:     env.Content,
		Analytics:   env.Analytics,
		Images:      env.Images,
		Settings:    env.Settings,
		Schedule:    env.Schedule,
		TextPing:    fakePinger{},
		ImagePing:   fakePinger{},
		Invalidator: env.Invalidator,
	})
	env.API.now = func() time.Time { return fixedNow }
	return env
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func jsonRequest(method, target, body string) *http.Request {
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rec.Body.String())
	}
}
