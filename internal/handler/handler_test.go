package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"report-bot/internal/handler"
	"report-bot/internal/model"
	"report-bot/internal/policy"
	"report-bot/internal/service"
	"report-bot/internal/store/memory"
)

type fakeTrigger struct{ ran []string }

func (f *fakeTrigger) RunNow(name string) error {
	if name != "attendance" {
		return fmt.Errorf("unknown task %q", name)
	}
	f.ran = append(f.ran, name)
	return nil
}

type fixture struct {
	srv     *httptest.Server
	store   *memory.Store
	trigger *fakeTrigger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.New()
	clock := func() time.Time { return time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC) }
	records := service.NewRecordService(st.Records(), st.Members(), policy.Rules{DayStartHour: 8, Location: time.UTC}, clock)
	trig := &fakeTrigger{}
	router := handler.NewRouter(
		handler.NewRecordHandler(records),
		handler.NewMemberHandler(service.NewMemberService(st.Members())),
		handler.NewJobHandler(trig, st.Cards()),
		nil,
	)
	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return &fixture{srv: srv, store: st, trigger: trig}
}

func (f *fixture) do(t *testing.T, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, f.srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestSubmitRecord(t *testing.T) {
	// GIVEN a registered member
	f := newFixture(t)
	require.NoError(t, f.store.Members().Save(context.Background(), &model.Member{ID: "a", Name: "Aye", Email: "aye@example.com", Role: model.RoleMember, IsActive: true}))

	// WHEN
	resp, body := f.do(t, http.MethodPost, "/api/records", `{"owner_id":"a","working_time":"full","workspace":"office","late_at":"08:15"}`)

	// THEN
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "working", body["kind"])
	assert.EqualValues(t, 15, body["late_minutes"])
	assert.Equal(t, "2026-10-15", body["day"])
}

func TestSubmitRecord_ErrorMapping(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPost, "/api/records", `{"working_time":"full"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "owner_id", body["field"])

	resp, _ = f.do(t, http.MethodPost, "/api/records", `{`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/api/records", `{"owner_id":"ghost","working_time":"full"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMembersLifecycle(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPost, "/api/members", `{"name":"Aye","email":"aye@example.com","role":"member","is_active":true,"can_report":true}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	id := body["id"].(string)

	resp, _ = f.do(t, http.MethodPost, "/api/members/"+id+"/deactivate", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = f.do(t, http.MethodDelete, "/api/members/"+id, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = f.do(t, http.MethodDelete, "/api/members/"+id, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/api/members", `{"name":"X","email":"x@example.com","role":"boss"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestTriggerJob(t *testing.T) {
	f := newFixture(t)

	resp, _ := f.do(t, http.MethodPost, "/api/jobs/attendance", "")
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	assert.Equal(t, []string{"attendance"}, f.trigger.ran)

	resp, _ = f.do(t, http.MethodPost, "/api/jobs/nope", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListEndpoints(t *testing.T) {
	f := newFixture(t)

	for _, path := range []string{"/api/records/today", "/api/cards", "/api/members"} {
		resp, err := http.Get(f.srv.URL + path)
		require.NoError(t, err)
		var out []any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
		assert.NotNil(t, out, path)
	}

	resp, _ := f.do(t, http.MethodGet, "/api/records/stale?days=x", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = f.do(t, http.MethodGet, "/api/records", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = f.do(t, http.MethodGet, "/ready", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSubmitTasks(t *testing.T) {
	// GIVEN a registered member
	f := newFixture(t)
	require.NoError(t, f.store.Members().Save(context.Background(), &model.Member{ID: "a", Name: "Aye", Email: "aye@example.com", Role: model.RoleMember, IsActive: true}))

	// WHEN the evening report is posted
	resp, err := http.Post(f.srv.URL+"/api/records/tasks", "application/json", strings.NewReader(
		`{"owner_id":"a","working_time":"8","tasks":[{"project":"Alpha","task_title":"Login API","progress":50,"man_hours":"2.5"}]}`))
	require.NoError(t, err)
	defer resp.Body.Close()

	// THEN the stored task rows come back
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var rows []map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "task", rows[0]["category"])
	assert.Equal(t, "Login API", rows[0]["task_title"])
	assert.Equal(t, "2.5", rows[0]["man_hours"])
	assert.Equal(t, "2026-10-15", rows[0]["day"])

	r, body := f.do(t, http.MethodPost, "/api/records/tasks", `{"owner_id":"a","tasks":[]}`)
	assert.Equal(t, http.StatusBadRequest, r.StatusCode)
	assert.Equal(t, "tasks", body["field"])

	r, _ = f.do(t, http.MethodPost, "/api/records/tasks", `{"owner_id":"ghost","tasks":[{"task_title":"x"}]}`)
	assert.Equal(t, http.StatusNotFound, r.StatusCode)
}

func TestSubmitRecord_KindContradictingWorkingTime(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Members().Save(context.Background(), &model.Member{ID: "a", Name: "Aye", Email: "aye@example.com", Role: model.RoleMember, IsActive: true}))

	resp, body := f.do(t, http.MethodPost, "/api/records", `{"owner_id":"a","kind":"leave","working_time":"full"}`)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "kind", body["field"])
}
