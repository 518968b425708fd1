package model

// Kind says whether a record describes a working day or a leave.
type Kind string

const (
	KindWorking Kind = "working"
	KindLeave   Kind = "leave"
)

type Workspace string

const (
	WorkspaceOffice Workspace = "office"
	WorkspaceHome   Workspace = "home"
)

// WorkingTime is the part of the day the member declares they worked.
type WorkingTime string

const (
	WorkingTimeFull    WorkingTime = "full"
	WorkingTimeMorning WorkingTime = "morning"
	WorkingTimeEvening WorkingTime = "evening"
)

// LeavePeriod is the part of the day the member is absent.
type LeavePeriod string

const (
	LeavePeriodFull    LeavePeriod = "full"
	LeavePeriodMorning LeavePeriod = "morning"
	LeavePeriodEvening LeavePeriod = "evening"
)

const (
	LeaveReasonSick     = "sick"
	LeaveReasonPersonal = "personal"
	LeaveReasonOther    = "other"
)

func (w Workspace) Valid() bool {
	return w == "" || w == WorkspaceOffice || w == WorkspaceHome
}

func (w WorkingTime) Valid() bool {
	switch w {
	case "", WorkingTimeFull, WorkingTimeMorning, WorkingTimeEvening:
		return true
	}
	return false
}

func (p LeavePeriod) Valid() bool {
	switch p {
	case "", LeavePeriodFull, LeavePeriodMorning, LeavePeriodEvening:
		return true
	}
	return false
}
