package policy

import (
	"time"

	"report-bot/internal/apperr"
	"report-bot/internal/model"
)

// Submission is what a member (or someone on their behalf) sends for today.
type Submission struct {
	OwnerID          string            `json:"owner_id"`
	CreatorID        string            `json:"creator_id"`
	Kind             model.Kind        `json:"kind"`
	Workspace        model.Workspace   `json:"workspace"`
	WorkingTime      model.WorkingTime `json:"working_time"`
	Project          string            `json:"project"`
	LeavePeriod      model.LeavePeriod `json:"leave_period"`
	LeaveReason      string            `json:"leave_reason"`
	OtherLeaveReason string            `json:"other_leave_reason"`
	LateAt           string            `json:"late_at"` // arrival time; empty when on time
}

// Validate checks the fields the upsert depends on.
func (s Submission) Validate() error {
	if s.OwnerID == "" {
		return apperr.Invalid("owner_id", "required")
	}
	if s.Kind != "" && s.Kind != model.KindWorking && s.Kind != model.KindLeave {
		return apperr.Invalid("kind", "unknown kind %q", s.Kind)
	}
	if !s.Workspace.Valid() {
		return apperr.Invalid("workspace", "unknown workspace %q", s.Workspace)
	}
	if !s.WorkingTime.Valid() {
		return apperr.Invalid("working_time", "unknown working time %q", s.WorkingTime)
	}
	if !s.LeavePeriod.Valid() {
		return apperr.Invalid("leave_period", "unknown leave period %q", s.LeavePeriod)
	}
	// kind is derived from working_time; a declared kind must agree with it.
	switch {
	case s.Kind == model.KindWorking && s.WorkingTime != model.WorkingTimeFull:
		return apperr.Invalid("kind", "working requires working_time %q", model.WorkingTimeFull)
	case s.Kind == model.KindLeave && s.WorkingTime == model.WorkingTimeFull:
		return apperr.Invalid("kind", "leave contradicts working_time %q", model.WorkingTimeFull)
	}
	return nil
}

// Rules carries the site-specific constants the policy needs.
type Rules struct {
	DayStartHour int
	Location     *time.Location
}

// BuildRecord turns a submission into the attendance record to persist for
// day. A full working day keeps the declared leave period as-is; anything
// else goes through ResolveLeavePeriod.
func BuildRecord(s Submission, day string, now time.Time, rules Rules) (*model.DailyRecord, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	late, err := LateMinutes(s.LateAt, rules.DayStartHour, now, rules.Location)
	if err != nil {
		return nil, apperr.Invalid("late_at", "%v", err)
	}

	rec := &model.DailyRecord{
		Category:    model.CategoryAttendance,
		Day:         day,
		Kind:        model.KindLeave,
		Workspace:   s.Workspace,
		Project:     s.Project,
		LeavePeriod: ResolveLeavePeriod(s.WorkingTime, s.LeavePeriod),
		LeaveReason: ResolveLeaveReason(s.LeaveReason, s.OtherLeaveReason),
		LateMinutes: late,
		OwnerID:     s.OwnerID,
		CreatorID:   s.CreatorID,
		Status:      model.RecordStatusPending,
	}
	if rec.CreatorID == "" {
		rec.CreatorID = s.OwnerID
	}
	if s.WorkingTime == model.WorkingTimeFull {
		rec.Kind = model.KindWorking
		rec.LeavePeriod = s.LeavePeriod
	}
	return rec, nil
}

type PrimaryAction int

const (
	PrimaryCreate PrimaryAction = iota
	PrimaryUpdate
)

type CompanionAction int

const (
	CompanionNone CompanionAction = iota
	CompanionCreate
	CompanionDelete
)

// Plan is the set of writes one submission results in.
type Plan struct {
	Primary   PrimaryAction
	Companion CompanionAction
}

// Decide picks the writes for a submission. existing is today's pending
// record for the owner (nil if none); hasCompanion says whether today's
// placeholder task row already exists.
//
// A full-day leave period needs exactly one companion; any other period
// needs none once the member has revised their submission.
func Decide(existing *model.DailyRecord, period model.LeavePeriod, hasCompanion bool) Plan {
	p := Plan{Primary: PrimaryCreate}
	if existing != nil {
		p.Primary = PrimaryUpdate
	}

	full := period == model.LeavePeriodFull
	switch {
	case full && !hasCompanion:
		p.Companion = CompanionCreate
	case !full && hasCompanion && existing != nil:
		p.Companion = CompanionDelete
	}
	return p
}

// Companion returns the placeholder task row for primary's owner and day.
func Companion(primary *model.DailyRecord) *model.DailyRecord {
	return &model.DailyRecord{
		Category:  model.CategoryTask,
		Day:       primary.Day,
		Project:   primary.Project,
		OwnerID:   primary.OwnerID,
		CreatorID: primary.CreatorID,
		Status:    model.RecordStatusPending,
		Companion: true,
	}
}

// Overwrite copies the submission-derived fields of next onto existing,
// keeping existing's identity and creation time.
func Overwrite(existing, next *model.DailyRecord) *model.DailyRecord {
	out := *next
	out.ID = existing.ID
	out.CreatedAt = existing.CreatedAt
	return &out
}
