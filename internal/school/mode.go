package school

import "strings"

// Mode selects the attendance recording protocol of a school.
type Mode string

const (
	ModeSimple     Mode = "simple"
	ModePeriodWise Mode = "period_wise"
	ModeCheckInOut Mode = "check_in_out"
)

// ParseMode falls back to simple for missing or unrecognised configuration.
func ParseMode(v string) Mode {
	m := Mode(strings.ToLower(strings.TrimSpace(v)))
	if m.Valid() {
		return m
	}
	return ModeSimple
}

func (m Mode) Valid() bool {
	_, ok := routes[m]
	return ok
}

type Flow string

const (
	FlowRoster  Flow = "roster"
	FlowCheckIn Flow = "check_in"
)

// Route is what a mode resolves to: the flow to run and, for roster flows, whether records
// are keyed by (student, period) instead of student alone.
type Route struct {
	Mode        Mode `json:"mode"`
	Flow        Flow `json:"flow"`
	PeriodKeyed bool `json:"period_keyed"`
}

var routes = map[Mode]Route{
	ModeSimple:     {Mode: ModeSimple, Flow: FlowRoster},
	ModePeriodWise: {Mode: ModePeriodWise, Flow: FlowRoster, PeriodKeyed: true},
	ModeCheckInOut: {Mode: ModeCheckInOut, Flow: FlowCheckIn},
}

func Dispatch(m Mode) Route {
	if r, ok := routes[m]; ok {
		return r
	}
	return routes[ModeSimple]
}
