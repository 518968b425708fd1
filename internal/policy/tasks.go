package policy

import (
	"github.com/shopspring/decimal"

	"report-bot/internal/apperr"
	"report-bot/internal/model"
)

const maxProgress = 100

var maxDayHours = decimal.NewFromInt(24)

// TaskInput is one line of an evening report.
type TaskInput struct {
	Project         string          `json:"project"`
	TaskTitle       string          `json:"task_title"`
	TaskDescription string          `json:"task_description"`
	Progress        int             `json:"progress"`
	ManHours        decimal.Decimal `json:"man_hours"`
}

// TaskReport is a member's evening report for today. WorkingTime is the
// hours actually worked; 0 reads as a full-day leave and 4 as a half day.
type TaskReport struct {
	OwnerID     string          `json:"owner_id"`
	CreatorID   string          `json:"creator_id"`
	WorkingTime decimal.Decimal `json:"working_time"`
	Tasks       []TaskInput     `json:"tasks"`
}

func (r TaskReport) Validate() error {
	if r.OwnerID == "" {
		return apperr.Invalid("owner_id", "required")
	}
	if len(r.Tasks) == 0 {
		return apperr.Invalid("tasks", "at least one task is required")
	}
	if r.WorkingTime.IsNegative() || r.WorkingTime.GreaterThan(maxDayHours) {
		return apperr.Invalid("working_time", "must be between 0 and %s hours", maxDayHours)
	}
	for i, t := range r.Tasks {
		if t.TaskTitle == "" {
			return apperr.Invalid("tasks", "task %d: title required", i+1)
		}
		if t.Progress < 0 || t.Progress > maxProgress {
			return apperr.Invalid("tasks", "task %d: progress must be between 0 and %d", i+1, maxProgress)
		}
		if t.ManHours.IsNegative() || t.ManHours.GreaterThan(maxDayHours) {
			return apperr.Invalid("tasks", "task %d: man_hours must be between 0 and %s", i+1, maxDayHours)
		}
	}
	return nil
}

// BuildTasks turns a report into the task rows to persist for day, in
// submission order.
func BuildTasks(r TaskReport, day string) ([]model.DailyRecord, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	creator := r.CreatorID
	if creator == "" {
		creator = r.OwnerID
	}
	out := make([]model.DailyRecord, 0, len(r.Tasks))
	for _, t := range r.Tasks {
		out = append(out, model.DailyRecord{
			Category:        model.CategoryTask,
			Day:             day,
			Project:         t.Project,
			TaskTitle:       t.TaskTitle,
			TaskDescription: t.TaskDescription,
			Progress:        t.Progress,
			ManHours:        t.ManHours,
			WorkingTime:     r.WorkingTime,
			OwnerID:         r.OwnerID,
			CreatorID:       creator,
			Status:          model.RecordStatusPending,
		})
	}
	return out, nil
}
