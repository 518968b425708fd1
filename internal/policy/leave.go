package policy

import "report-bot/internal/model"

// ResolveLeavePeriod maps the declared working time and leave period to the
// effective leave period. First match wins:
//
//	morning worked      -> evening off
//	evening worked      -> morning off
//	nothing worked, declared period given -> declared period
//	otherwise           -> full
func ResolveLeavePeriod(workingTime model.WorkingTime, declared model.LeavePeriod) model.LeavePeriod {
	switch {
	case workingTime == model.WorkingTimeMorning:
		return model.LeavePeriodEvening
	case workingTime == model.WorkingTimeEvening:
		return model.LeavePeriodMorning
	case workingTime == "" && declared != "":
		return declared
	default:
		return model.LeavePeriodFull
	}
}

// ResolveLeaveReason returns the declared reason, or the free text when the
// declared reason is "other". The free text is passed through unchecked.
func ResolveLeaveReason(declared, other string) string {
	if declared != model.LeaveReasonOther {
		return declared
	}
	return other
}
