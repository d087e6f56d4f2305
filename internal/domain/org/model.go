package org

import "time"

// Role represents a user's permission level
type Role string

const (
	RoleMaster Role = "master"
	RoleAdmin  Role = "admin"
	RoleUser   Role = "user"
)

// Status represents the workflow state of a task
type Status string

const (
	StatusNotStarted Status = "notStarted"
	StatusInProgress Status = "inProgress"
	StatusDone       Status = "done"
)

// Priority represents the urgency of a task
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Department groups tasks and users under one organizational unit
type Department struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Emoji       string    `json:"emoji"`
	Description string    `json:"description"`
	ManagerName *string   `json:"manager_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// User is an account in the organization. Password holds the bcrypt hash;
// the archival core copies it verbatim and never inspects it.
type User struct {
	ID          string    `json:"id"`
	Username    string    `json:"username"`
	Password    string    `json:"-"`
	DisplayName string    `json:"display_name"`
	Role        Role      `json:"role"`
	DeptID      *string   `json:"dept_id,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Task is a unit of work owned by exactly one department.
// DepartmentIDs and AssigneeIDs are opaque blobs maintained by the CRUD
// collaborator; the core carries them through snapshots untouched.
type Task struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	DeptID        string     `json:"dept_id"`
	DepartmentIDs *string    `json:"department_ids,omitempty"`
	Status        Status     `json:"status"`
	Priority      Priority   `json:"priority"`
	AssigneeName  *string    `json:"assignee_name,omitempty"`
	AssigneeIDs   *string    `json:"assignee_ids,omitempty"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	DueDate       *time.Time `json:"due_date,omitempty"`
	IsHidden      bool       `json:"is_hidden"`
	HiddenAt      *time.Time `json:"hidden_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Report is a progress note attached to a task
type Report struct {
	ID           string    `json:"id"`
	TaskID       string    `json:"task_id"`
	Content      string    `json:"content"`
	ReporterName *string   `json:"reporter_name,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
