package model

// DashboardStats summarises bookings in a date range.
type DashboardStats struct {
	From          string         `json:"from"`
	To            string         `json:"to"`
	TotalBookings int            `json:"totalBookings"`
	ByStatus      map[string]int `json:"byStatus"`
	Revenue       int64          `json:"revenue"`
	TodayBookings int            `json:"todayBookings"`
	ActiveFields  int            `json:"activeFields"`
	OpenOpponents int            `json:"openOpponents"`
}

// ChartPeriod selects the bucket size of a revenue series.
type ChartPeriod string

const (
	PeriodDay   ChartPeriod = "day"
	PeriodWeek  ChartPeriod = "week"
	PeriodMonth ChartPeriod = "month"
)

func (p ChartPeriod) Valid() bool {
	return p == PeriodDay || p == PeriodWeek || p == PeriodMonth
}

// ChartPoint is one bucket of a series.  Label is the bucket key (a date,
// an ISO week, a month, a field size or a weekday name).
type ChartPoint struct {
	Label   string `json:"label"`
	Count   int    `json:"count"`
	Revenue int64  `json:"revenue"`
}

// DashboardChart groups revenue three ways.
type DashboardChart struct {
	Period    ChartPeriod  `json:"period"`
	Series    []ChartPoint `json:"series"`
	BySize    []ChartPoint `json:"byFieldSize"`
	ByWeekday []ChartPoint `json:"byWeekday"`
}
