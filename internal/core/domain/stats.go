package domain

// PageViews is the view count of a single site page.
type PageViews struct {
	Page  string `json:"page"`
	Views int    `json:"views"`
}

// DailyVisits is one point of the visits-per-day series.
type DailyVisits struct {
	Date   string `json:"date"`
	Visits int    `json:"visits"`
}

// SiteStats is a read-only analytics snapshot for the admin dashboard.
type SiteStats struct {
	TotalVisits       int           `json:"totalVisits"`
	UniqueVisitors    int           `json:"uniqueVisitors"`
	PageViews         int           `json:"pageViews"`
	AverageTimeOnSite string        `json:"averageTimeOnSite"`
	TopPages          []PageViews   `json:"topPages"`
	VisitsByDay       []DailyVisits `json:"visitsByDay"`
}
