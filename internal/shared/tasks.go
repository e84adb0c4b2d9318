package shared

// Task types and queue names for the background worker.
const (
	// TypeOverdueNotice is the daily sweep that emails members holding
	// overdue loans.
	TypeOverdueNotice = "circulation:overdue_notice"

	// QueueCirculation carries circulation maintenance jobs.
	QueueCirculation = "circulation"
)
