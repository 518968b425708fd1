package policy_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"report-bot/internal/apperr"
	"report-bot/internal/model"
	"report-bot/internal/policy"
)

var yangon = time.FixedZone("MMT", 6*3600+1800)

func TestResolveLeavePeriod_Table(t *testing.T) {
	periods := []model.LeavePeriod{"", model.LeavePeriodFull, model.LeavePeriodMorning, model.LeavePeriodEvening}

	for _, declared := range periods {
		assert.Equal(t, model.LeavePeriodEvening, policy.ResolveLeavePeriod(model.WorkingTimeMorning, declared), "morning/%q", declared)
		assert.Equal(t, model.LeavePeriodMorning, policy.ResolveLeavePeriod(model.WorkingTimeEvening, declared), "evening/%q", declared)
		assert.Equal(t, model.LeavePeriodFull, policy.ResolveLeavePeriod(model.WorkingTimeFull, declared), "full/%q", declared)
	}

	assert.Equal(t, model.LeavePeriodMorning, policy.ResolveLeavePeriod("", model.LeavePeriodMorning))
	assert.Equal(t, model.LeavePeriodEvening, policy.ResolveLeavePeriod("", model.LeavePeriodEvening))
	assert.Equal(t, model.LeavePeriodFull, policy.ResolveLeavePeriod("", model.LeavePeriodFull))
	assert.Equal(t, model.LeavePeriodFull, policy.ResolveLeavePeriod("", ""))
}

func TestResolveLeaveReason(t *testing.T) {
	assert.Equal(t, "flu", policy.ResolveLeaveReason("other", "flu"))
	assert.Equal(t, "sick", policy.ResolveLeaveReason("sick", "flu"))
	assert.Equal(t, "", policy.ResolveLeaveReason("other", ""))
	assert.Equal(t, "", policy.ResolveLeaveReason("", "flu"))
}

func TestLateMinutes(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, yangon)

	cases := []struct {
		name    string
		arrival string
		want    int
	}{
		{"empty means on time", "", 0},
		{"clock reading", "08:25", 25},
		{"early arrival stays negative", "07:45", -15},
		{"exactly on time", "08:00", 0},
		{"rfc3339 converted into location", "2026-03-10T02:00:00Z", 30}, // 08:30 local
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := policy.LateMinutes(tc.arrival, 8, now, yangon)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := policy.LateMinutes("half past eight", 8, now, yangon)
	assert.Error(t, err)
}

func TestBuildRecord_FullWorkingDayKeepsDeclaredPeriod(t *testing.T) {
	rec, err := policy.BuildRecord(policy.Submission{
		OwnerID:     "u1",
		Kind:        model.KindWorking,
		Workspace:   model.WorkspaceOffice,
		WorkingTime: model.WorkingTimeFull,
		Project:     "ojt",
		LateAt:      "08:10",
	}, "2026-03-10", time.Date(2026, 3, 10, 9, 0, 0, 0, yangon), policy.Rules{DayStartHour: 8, Location: yangon})
	require.NoError(t, err)

	assert.Equal(t, model.KindWorking, rec.Kind)
	assert.Equal(t, model.LeavePeriod(""), rec.LeavePeriod)
	assert.Equal(t, 10, rec.LateMinutes)
	assert.Equal(t, "u1", rec.CreatorID, "creator defaults to owner")
	assert.Equal(t, model.RecordStatusPending, rec.Status)
	assert.Equal(t, model.CategoryAttendance, rec.Category)
}

func TestBuildRecord_HalfDayBecomesLeave(t *testing.T) {
	rec, err := policy.BuildRecord(policy.Submission{
		OwnerID:          "u1",
		CreatorID:        "lead",
		WorkingTime:      model.WorkingTimeEvening,
		LeaveReason:      "other",
		OtherLeaveReason: "dentist",
	}, "2026-03-10", time.Now(), policy.Rules{DayStartHour: 8, Location: yangon})
	require.NoError(t, err)

	assert.Equal(t, model.KindLeave, rec.Kind)
	assert.Equal(t, model.LeavePeriodMorning, rec.LeavePeriod)
	assert.Equal(t, "dentist", rec.LeaveReason)
	assert.Equal(t, "lead", rec.CreatorID)
}

func TestBuildRecord_Validation(t *testing.T) {
	rules := policy.Rules{DayStartHour: 8, Location: yangon}

	_, err := policy.BuildRecord(policy.Submission{}, "2026-03-10", time.Now(), rules)
	assert.True(t, apperr.IsClientError(err))

	_, err = policy.BuildRecord(policy.Submission{OwnerID: "u1", Workspace: "cafe"}, "2026-03-10", time.Now(), rules)
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "workspace", verr.Field)

	_, err = policy.BuildRecord(policy.Submission{OwnerID: "u1", LateAt: "soon"}, "2026-03-10", time.Now(), rules)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "late_at", verr.Field)
}

func TestBuildRecord_KindMustAgreeWithWorkingTime(t *testing.T) {
	rules := policy.Rules{DayStartHour: 8, Location: yangon}
	day := "2026-03-10"

	tests := []struct {
		name string
		kind model.Kind
		wt   model.WorkingTime
		ok   bool
	}{
		{"leave declared on a full working day", model.KindLeave, model.WorkingTimeFull, false},
		{"working declared on a half day", model.KindWorking, model.WorkingTimeMorning, false},
		{"working declared without working time", model.KindWorking, "", false},
		{"working full day", model.KindWorking, model.WorkingTimeFull, true},
		{"leave half day", model.KindLeave, model.WorkingTimeEvening, true},
		{"leave without working time", model.KindLeave, "", true},
		{"kind omitted", "", model.WorkingTimeFull, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := policy.BuildRecord(policy.Submission{OwnerID: "u1", Kind: tt.kind, WorkingTime: tt.wt}, day, time.Now(), rules)
			if !tt.ok {
				var verr *apperr.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, "kind", verr.Field)
				return
			}
			require.NoError(t, err)
			if tt.kind != "" {
				assert.Equal(t, tt.kind, rec.Kind)
			}
		})
	}
}

func TestDecide(t *testing.T) {
	existing := &model.DailyRecord{ID: "r1"}

	cases := []struct {
		name         string
		existing     *model.DailyRecord
		period       model.LeavePeriod
		hasCompanion bool
		want         policy.Plan
	}{
		{"new full leave creates companion", nil, model.LeavePeriodFull, false, policy.Plan{Primary: policy.PrimaryCreate, Companion: policy.CompanionCreate}},
		{"new half day creates primary only", nil, model.LeavePeriodMorning, false, policy.Plan{Primary: policy.PrimaryCreate, Companion: policy.CompanionNone}},
		{"new working day creates primary only", nil, "", false, policy.Plan{Primary: policy.PrimaryCreate, Companion: policy.CompanionNone}},
		{"update to half day drops companion", existing, model.LeavePeriodEvening, true, policy.Plan{Primary: policy.PrimaryUpdate, Companion: policy.CompanionDelete}},
		{"update to working day drops companion", existing, "", true, policy.Plan{Primary: policy.PrimaryUpdate, Companion: policy.CompanionDelete}},
		{"update to full leave adds missing companion", existing, model.LeavePeriodFull, false, policy.Plan{Primary: policy.PrimaryUpdate, Companion: policy.CompanionCreate}},
		{"update to full leave keeps existing companion", existing, model.LeavePeriodFull, true, policy.Plan{Primary: policy.PrimaryUpdate, Companion: policy.CompanionNone}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, policy.Decide(tc.existing, tc.period, tc.hasCompanion))
		})
	}
}

func TestCompanionAndOverwrite(t *testing.T) {
	created := time.Date(2026, 3, 10, 8, 0, 0, 0, yangon)
	primary := &model.DailyRecord{ID: "r1", Day: "2026-03-10", Project: "ojt", OwnerID: "u1", CreatorID: "u1", CreatedAt: created}

	c := policy.Companion(primary)
	assert.True(t, c.Companion)
	assert.Equal(t, model.CategoryTask, c.Category)
	assert.True(t, c.WorkingTime.IsZero())
	assert.Equal(t, "u1", c.OwnerID)

	next := &model.DailyRecord{ID: "ignored", Kind: model.KindLeave, OwnerID: "u1"}
	out := policy.Overwrite(primary, next)
	assert.Equal(t, "r1", out.ID)
	assert.Equal(t, created, out.CreatedAt)
	assert.Equal(t, model.KindLeave, out.Kind)
	assert.Equal(t, "", out.Project, "overwrite replaces rather than merges")
}

func TestBuildTasks(t *testing.T) {
	rows, err := policy.BuildTasks(policy.TaskReport{
		OwnerID:     "u1",
		WorkingTime: decimal.NewFromInt(4),
		Tasks: []policy.TaskInput{
			{Project: "ojt", TaskTitle: "Login API", Progress: 50, ManHours: decimal.RequireFromString("2.5")},
			{Project: "ojt", TaskTitle: "Review"},
		},
	}, "2026-03-10")
	require.NoError(t, err)

	require.Len(t, rows, 2)
	assert.Equal(t, "Login API", rows[0].TaskTitle)
	assert.Equal(t, "Review", rows[1].TaskTitle)
	for _, r := range rows {
		assert.Equal(t, model.CategoryTask, r.Category)
		assert.Equal(t, "2026-03-10", r.Day)
		assert.Equal(t, "u1", r.CreatorID, "creator defaults to owner")
		assert.True(t, r.WorkingTime.Equal(decimal.NewFromInt(4)))
		assert.False(t, r.Companion)
	}
	assert.Equal(t, "2.5", rows[0].ManHours.String())
}

func TestBuildTasks_Validation(t *testing.T) {
	task := policy.TaskInput{TaskTitle: "t"}
	tests := []struct {
		name  string
		rep   policy.TaskReport
		field string
	}{
		{"no owner", policy.TaskReport{Tasks: []policy.TaskInput{task}}, "owner_id"},
		{"no tasks", policy.TaskReport{OwnerID: "u1"}, "tasks"},
		{"untitled task", policy.TaskReport{OwnerID: "u1", Tasks: []policy.TaskInput{{}}}, "tasks"},
		{"progress over 100", policy.TaskReport{OwnerID: "u1", Tasks: []policy.TaskInput{{TaskTitle: "t", Progress: 120}}}, "tasks"},
		{"negative hours", policy.TaskReport{OwnerID: "u1", Tasks: []policy.TaskInput{{TaskTitle: "t", ManHours: decimal.NewFromInt(-1)}}}, "tasks"},
		{"working time over a day", policy.TaskReport{OwnerID: "u1", WorkingTime: decimal.NewFromInt(25), Tasks: []policy.TaskInput{task}}, "working_time"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := policy.BuildTasks(tt.rep, "2026-03-10")
			var verr *apperr.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}
