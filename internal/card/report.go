package card

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"report-bot/internal/apperr"
	"report-bot/internal/i18n"
	"report-bot/internal/model"
)

type BlockKind string

const (
	BlockManager   BlockKind = "manager"
	BlockHeader    BlockKind = "header"
	BlockProject   BlockKind = "project"
	BlockTask      BlockKind = "task"
	BlockFooter    BlockKind = "footer"
	BlockSeparator BlockKind = "separator"
)

// Block is one logical line of the task summary before it is laid out as a card.
type Block struct {
	Kind    BlockKind
	Content string
	Manager *Manager
}

type Manager struct {
	Name  string
	Email string
}

var halfDay = decimal.NewFromInt(4)

// TaskSummaryBlocks lays out a group's task records, one section per owner in
// order of first appearance. The manager is the group member with the
// manager role, else fallback.
func TaskSummaryBlocks(ctx context.Context, day time.Time, members []model.Member, records []model.DailyRecord, fallback Manager) ([]Block, error) {
	mgr := fallback
	for _, m := range members {
		if m.Role == model.RoleManager {
			mgr = Manager{Name: m.Name, Email: m.Email}
			break
		}
	}
	if mgr.Name == "" || mgr.Email == "" {
		return nil, apperr.Invalid("manager", "no manager configured for group")
	}

	blocks := []Block{
		{Kind: BlockManager, Manager: &mgr},
		{Kind: BlockHeader, Content: i18n.T(ctx, "card.report.header", map[string]any{"Date": day.Format("2006-01-02")})},
	}

	type section struct {
		name, project string
		workingTime   decimal.Decimal
		tasks         []model.DailyRecord
	}
	var order []string
	sections := map[string]*section{}
	for _, r := range records {
		if r.Owner == nil {
			continue
		}
		s, ok := sections[r.OwnerID]
		if !ok {
			s = &section{name: r.Owner.Name, project: r.Owner.ProjectName, workingTime: r.WorkingTime}
			sections[r.OwnerID] = s
			order = append(order, r.OwnerID)
		}
		s.tasks = append(s.tasks, r)
	}

	for i, id := range order {
		s := sections[id]
		if i > 0 {
			blocks = append(blocks, Block{Kind: BlockSeparator})
		}
		blocks = append(blocks,
			Block{Kind: BlockProject, Content: "◆ " + s.name},
			Block{Kind: BlockProject, Content: i18n.T(ctx, "card.report.project", map[string]any{"Project": s.project})},
			Block{Kind: BlockTask, Content: i18n.T(ctx, "card.report.done_today")},
		)
		for j, t := range s.tasks {
			blocks = append(blocks, Block{Kind: BlockTask, Content: taskLine(j, t)})
		}
		switch {
		case s.workingTime.IsZero():
			blocks = append(blocks, Block{Kind: BlockTask, Content: i18n.T(ctx, "card.report.full_leave")})
		case s.workingTime.Equal(halfDay):
			blocks = append(blocks, Block{Kind: BlockTask, Content: i18n.T(ctx, "card.report.half_leave")})
		}
	}

	blocks = append(blocks, Block{Kind: BlockFooter, Content: i18n.T(ctx, "card.report.footer")})
	return blocks, nil
}

func taskLine(i int, t model.DailyRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d)【%s】%s ", i+1, t.Project, t.TaskTitle)
	if t.Progress != 0 {
		fmt.Fprintf(&b, "<%d%%完了>", t.Progress)
	}
	b.WriteString(" ")
	if !t.ManHours.IsZero() {
		fmt.Fprintf(&b, "(%shr)", t.ManHours.String())
	}
	if t.TaskDescription != "" {
		b.WriteString(" \n       -" + t.TaskDescription)
	}
	return b.String()
}

// TaskSummary renders blocks as a card, collecting the manager mention.
func TaskSummary(blocks []Block) Message {
	var entities []Mention
	body := make([]Element, 0, len(blocks))
	for _, blk := range blocks {
		switch blk.Kind {
		case BlockManager:
			name := ""
			if blk.Manager != nil {
				name = blk.Manager.Name
				if blk.Manager.Email != "" && name != "" {
					entities = append(entities, mention(name, blk.Manager.Email))
				}
			}
			body = append(body, Element{Type: "TextBlock", Text: "<at>" + name + "</at>", Wrap: true})
		case BlockHeader:
			body = append(body, Element{Type: "TextBlock", Text: blk.Content, Wrap: true, Size: "Medium", Weight: "Bolder"})
		case BlockProject:
			body = append(body, Element{Type: "TextBlock", Text: blk.Content, Wrap: true, Spacing: "Small"})
		case BlockTask:
			body = append(body, richText(blk.Content, "None"))
		case BlockFooter:
			body = append(body, Element{Type: "TextBlock", Text: blk.Content, Wrap: true, Spacing: "Medium", IsSubtle: true})
		case BlockSeparator:
			body = append(body, Element{Type: "TextBlock", Text: " ", Separator: true, Spacing: "Medium"})
		}
	}
	if entities == nil {
		entities = []Mention{}
	}
	return wrap("1.4", body, &MSTeams{Entities: entities}, nil)
}

// ReportReminder is the evening "@everyone, have you reported?" card.
func ReportReminder(ctx context.Context, formURL string) Message {
	body := []Element{richText(i18n.T(ctx, "card.report_reminder.text"), "")}
	actions := []Action{{
		Type:  "Action.OpenUrl",
		Title: i18n.T(ctx, "card.report_reminder.action"),
		URL:   formURL,
	}}
	return wrap("1.0", body, &MSTeams{Entities: []Mention{mention("everyone", "everyone")}}, actions)
}
