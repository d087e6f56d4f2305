package snapshot

// Document is the durable full-dataset snapshot shape. Field names and enum
// tags are a wire contract shared with external tooling; changing them
// requires a migration.
//
// Optional fields are pointers and marshal to explicit nulls rather than
// being omitted.
type Document struct {
	SavedAt     string             `json:"saved_at"`
	Departments []DepartmentRecord `json:"departments"`
	Users       []UserRecord       `json:"users"`
	Tasks       []TaskRecord       `json:"tasks"`
	Reports     []ReportRecord     `json:"reports"`
}

// DepartmentRecord is the flat wire form of a department
type DepartmentRecord struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Emoji       *string `json:"emoji"`
	Description *string `json:"description"`
	ManagerName *string `json:"manager_name"`
	CreatedAt   *string `json:"created_at"`
}

// UserRecord is the flat wire form of a user. Password carries the stored
// hash verbatim.
type UserRecord struct {
	ID          string  `json:"id"`
	Username    string  `json:"username"`
	Password    string  `json:"password"`
	DisplayName string  `json:"display_name"`
	Role        *string `json:"role"`
	DeptID      *string `json:"dept_id"`
	IsActive    *bool   `json:"is_active"`
	CreatedAt   *string `json:"created_at"`
}

// TaskRecord is the flat wire form of a task
type TaskRecord struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Description   *string `json:"description"`
	DeptID        string  `json:"dept_id"`
	DepartmentIDs *string `json:"department_ids"`
	Status        *string `json:"status"`
	Priority      *string `json:"priority"`
	AssigneeName  *string `json:"assignee_name"`
	AssigneeIDs   *string `json:"assignee_ids"`
	StartDate     *string `json:"start_date"`
	DueDate       *string `json:"due_date"`
	IsHidden      *bool   `json:"is_hidden"`
	HiddenAt      *string `json:"hidden_at"`
	CreatedAt     *string `json:"created_at"`
	UpdatedAt     *string `json:"updated_at"`
}

// ReportRecord is the flat wire form of a report
type ReportRecord struct {
	ID           string  `json:"id"`
	TaskID       string  `json:"task_id"`
	Content      string  `json:"content"`
	ReporterName *string `json:"reporter_name"`
	CreatedAt    *string `json:"created_at"`
	UpdatedAt    *string `json:"updated_at"`
}
