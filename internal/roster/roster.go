// Package roster reconciles the member roster against the day's records
// and derives the reporting groups used by the evening summary.
package roster

import (
	"fmt"

	"report-bot/internal/apperr"
	"report-bot/internal/model"
)

// Partition splits roster into members that own at least one of records and
// members that do not. Roster order is preserved in both halves. Records
// without an owner are ignored.
func Partition(roster []model.Member, records []model.DailyRecord) (reported, notReported []model.Member) {
	owners := make(map[string]struct{}, len(records))
	for _, r := range records {
		if r.OwnerID == "" {
			continue
		}
		owners[r.OwnerID] = struct{}{}
	}

	for _, m := range roster {
		if _, ok := owners[m.ID]; ok {
			reported = append(reported, m)
		} else {
			notReported = append(notReported, m)
		}
	}
	return reported, notReported
}

// Group is a lead plus their direct reports, summarised into one card.
type Group struct {
	Lead       model.Member
	MemberIDs  []string
	ChannelURL string
}

// Groups derives one group per active member that has a channel URL. The
// lead is listed first, followed by their active direct subordinates that
// can report, in input order.
func Groups(members []model.Member) []Group {
	var groups []Group
	for _, lead := range members {
		if !lead.IsActive || lead.ChannelURL == "" {
			continue
		}
		g := Group{Lead: lead, MemberIDs: []string{lead.ID}, ChannelURL: lead.ChannelURL}
		for _, m := range members {
			if m.SupervisorID == lead.ID && m.ID != lead.ID && m.IsActive && m.CanReport {
				g.MemberIDs = append(g.MemberIDs, m.ID)
			}
		}
		groups = append(groups, g)
	}
	return groups
}

// Index maps member ids to members.
func Index(members []model.Member) map[string]model.Member {
	idx := make(map[string]model.Member, len(members))
	for _, m := range members {
		idx[m.ID] = m
	}
	return idx
}

// Attach sets Owner on every record whose owner is in idx.
func Attach(records []model.DailyRecord, idx map[string]model.Member) {
	for i := range records {
		if m, ok := idx[records[i].OwnerID]; ok {
			records[i].Owner = &m
		}
	}
}

// CheckSupervisor rejects a supervisor assignment that would close a loop in
// the supervisor tree. An empty supervisorID is always allowed.
func CheckSupervisor(members []model.Member, memberID, supervisorID string) error {
	if supervisorID == "" {
		return nil
	}
	idx := Index(members)
	seen := make(map[string]bool)
	for cur := supervisorID; cur != ""; {
		if cur == memberID {
			return apperr.Invalid("supervisor_id", "assigning %s would create a supervisor cycle", supervisorID)
		}
		if seen[cur] {
			// Pre-existing loop that does not involve memberID.
			return apperr.Invalid("supervisor_id", "supervisor chain of %s is cyclic", supervisorID)
		}
		seen[cur] = true
		m, ok := idx[cur]
		if !ok {
			if cur == supervisorID {
				return fmt.Errorf("supervisor %s: %w", supervisorID, apperr.ErrNotFound)
			}
			break
		}
		cur = m.SupervisorID
	}
	return nil
}
