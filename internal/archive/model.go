package archive

import "time"

// Origin tags who produced an archive row
type Origin string

const (
	OriginManual Origin = "manual"
	OriginAuto   Origin = "auto"
)

// DaySummary is the department-grouped activity summary for one calendar
// date. It is stored serialized in the archive row's summary blob.
type DaySummary struct {
	Date        string         `json:"date"`
	Departments []DeptActivity `json:"departments"`
	TotalTasks  int            `json:"total_tasks"`
	DoneCount   int            `json:"done_count"`
	InProgress  int            `json:"in_progress"`
	NotStarted  int            `json:"not_started"`
	DeptCount   int            `json:"dept_count"`
}

// DeptActivity is one department's slice of a day summary. Departments with
// no qualifying tasks are omitted from the summary entirely.
type DeptActivity struct {
	DeptID      string       `json:"dept_id"`
	DeptName    string       `json:"dept_name"`
	DeptEmoji   string       `json:"dept_emoji"`
	ManagerName *string      `json:"manager_name"`
	Tasks       []TaskDigest `json:"tasks"`
}

// TaskDigest is a task as it appears in a day summary: live status plus only
// the reports created on the target date.
type TaskDigest struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	Description  string         `json:"description"`
	Status       string         `json:"status"`
	Priority     string         `json:"priority"`
	AssigneeName *string        `json:"assignee_name"`
	DueDate      *string        `json:"due_date"`
	Reports      []ReportDigest `json:"reports"`
}

// ReportDigest is a report embedded in a day summary
type ReportDigest struct {
	ID           string  `json:"id"`
	Content      string  `json:"content"`
	ReporterName *string `json:"reporter_name"`
	CreatedAt    string  `json:"created_at"`
}

// Record is a stored archive row including the summary blob
type Record struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"`
	SummaryJSON string    `json:"summary_json"`
	TotalTasks  int       `json:"total_tasks"`
	DoneCount   int       `json:"done_count"`
	InProgress  int       `json:"in_progress"`
	NotStarted  int       `json:"not_started"`
	DeptCount   int       `json:"dept_count"`
	SavedBy     Origin    `json:"saved_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ListItem is a list-view archive row; the summary blob is omitted to keep
// listings small.
type ListItem struct {
	ID         string    `json:"id"`
	Date       string    `json:"date"`
	TotalTasks int       `json:"total_tasks"`
	DoneCount  int       `json:"done_count"`
	InProgress int       `json:"in_progress"`
	NotStarted int       `json:"not_started"`
	DeptCount  int       `json:"dept_count"`
	SavedBy    Origin    `json:"saved_by"`
	CreatedAt  time.Time `json:"created_at"`
}
