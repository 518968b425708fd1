package card

import (
	"context"
	"fmt"
	"strings"
	"time"

	"report-bot/internal/i18n"
	"report-bot/internal/model"
)

// Attendance builds the daily attendance summary. Records are rendered in
// the order given; total is the roster size.
func Attendance(ctx context.Context, day time.Time, records []model.DailyRecord, total int) Message {
	var working, leave, office, home, late []model.DailyRecord
	for _, r := range records {
		if r.Kind == model.KindWorking {
			working = append(working, r)
		}
		if r.Kind == model.KindLeave {
			leave = append(leave, r)
		}
		switch r.Workspace {
		case model.WorkspaceOffice:
			office = append(office, r)
		case model.WorkspaceHome:
			home = append(home, r)
		}
		if r.LateMinutes != 0 {
			late = append(late, r)
		}
	}

	body := []Element{
		{
			Type:   "TextBlock",
			Text:   i18n.T(ctx, "card.attendance.header", map[string]any{"Date": day.Format("2006.01.02")}),
			Weight: "Bolder",
			Size:   "Large",
		},
		textBlock(i18n.T(ctx, "card.attendance.totals", map[string]any{"Total": total, "Working": len(working)})),
		{Type: "TextBlock", Text: i18n.T(ctx, "card.attendance.office"), Weight: "Bolder"},
	}
	for i, r := range office {
		body = append(body, textBlock(entryPrefix(i, 0, r)+"("+r.OwnerProject()+")"))
	}

	homeHeading := "card.attendance.home"
	if len(home) == 0 {
		homeHeading = "card.attendance.home_none"
	}
	body = append(body, Element{Type: "TextBlock", Text: i18n.T(ctx, homeHeading), Weight: "Bolder"})
	for i, r := range home {
		body = append(body, textBlock(entryPrefix(i, len(office), r)+"("+r.OwnerProject()+") "+halfDayTag(r.LeavePeriod)))
	}

	body = append(body, textBlock(countHeading(ctx, "card.attendance.leave", len(leave))))
	for i, r := range leave {
		text := entryPrefix(i, 0, r) + " (" + r.LeaveReason + ") "
		if r.LeavePeriod != model.LeavePeriodFull && r.LeavePeriod != "" {
			text += "【 " + string(r.LeavePeriod) + " 】"
		}
		body = append(body, textBlock(text))
	}

	body = append(body, textBlock(countHeading(ctx, "card.attendance.late", len(late))))
	for i, r := range late {
		body = append(body, textBlock(fmt.Sprintf("%s(%dmin)", entryPrefix(i, 0, r), r.LateMinutes)))
	}

	return wrap("1.0", body, nil, nil)
}

// AttendanceReminder mentions every member who has not reported yet.
func AttendanceReminder(ctx context.Context, missing []model.Member, formURL string) Message {
	names := make([]string, 0, len(missing))
	entities := make([]Mention, 0, len(missing))
	for _, m := range missing {
		names = append(names, "<at>"+m.Name+"</at>")
		entities = append(entities, mention(m.Name, m.Email))
	}

	body := []Element{
		{Type: "TextBlock", Text: strings.Join(names, ", "), Wrap: true},
		richText(i18n.T(ctx, "card.reminder.attendance"), ""),
	}
	actions := []Action{{
		Type:  "Action.OpenUrl",
		Title: i18n.T(ctx, "card.reminder.attendance_action"),
		URL:   formURL,
	}}
	return wrap("1.0", body, &MSTeams{Entities: entities}, actions)
}

func entryPrefix(i, offset int, r model.DailyRecord) string {
	return fmt.Sprintf("%d. %s %s", i+1+offset, r.OwnerName(), nbspRun)
}

// halfDayTag names the half a home worker is on duty for.
func halfDayTag(p model.LeavePeriod) string {
	switch p {
	case model.LeavePeriodMorning:
		return "【evening】"
	case model.LeavePeriodEvening:
		return "【morning】"
	}
	return ""
}

func countHeading(ctx context.Context, id string, n int) string {
	if n == 0 {
		return i18n.T(ctx, id+"_none")
	}
	return i18n.T(ctx, id, map[string]any{"Count": n})
}
