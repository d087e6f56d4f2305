package snapshot

import (
	"fmt"
	"time"

	"github.com/songhq/songwork/internal/domain/org"
)

// Decode fallbacks for absent optional fields. Enum tags outside the
// declared sets are rejected, never defaulted.
const (
	defaultEmoji = "📁"
)

// timeLayout is the canonical timezone-naive ISO-8601 form. Fractional
// seconds are kept when present.
const timeLayout = "2006-01-02T15:04:05.999999"

// EncodeTimestamp renders a timestamp in canonical form, UTC-normalized.
// The document's saved_at field and every record timestamp use it.
func EncodeTimestamp(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func encodeTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := EncodeTimestamp(*t)
	return &s
}

// decodeTime accepts the canonical naive form and timezone-suffixed
// variants (Z or a numeric offset), normalizing to timezone-naive UTC.
// Empty or unparseable values decode to nil, matching the lenient source
// format.
func decodeTime(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	layouts := []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05.999999999",
		"2006-01-02 15:04:05.999999999",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, *s); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}

// decodeTimeOr is decodeTime with a fallback for required timestamps.
func decodeTimeOr(s *string, fallback time.Time) time.Time {
	if t := decodeTime(s); t != nil {
		return *t
	}
	return fallback
}

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func strOr(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}
func boolOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// EncodeDepartment converts a department to its wire record
func EncodeDepartment(d org.Department) DepartmentRecord {
	return DepartmentRecord{
		ID:          d.ID,
		Name:        d.Name,
		Emoji:       strPtr(d.Emoji),
		Description: strPtr(d.Description),
		ManagerName: d.ManagerName,
		CreatedAt:   strPtr(EncodeTimestamp(d.CreatedAt)),
	}
}

// DecodeDepartment converts a wire record back to a department.
// Missing emoji falls back to the default glyph, missing description to "".
func DecodeDepartment(rec DepartmentRecord) (org.Department, error) {
	if rec.ID == "" {
		return org.Department{}, fmt.Errorf("%w: department missing id", ErrParse)
	}
	return org.Department{
		ID:          rec.ID,
		Name:        rec.Name,
		Emoji:       strOr(rec.Emoji, defaultEmoji),
		Description: strOr(rec.Description, ""),
		ManagerName: rec.ManagerName,
		CreatedAt:   decodeTimeOr(rec.CreatedAt, time.Now().UTC()),
	}, nil
}

// EncodeUser converts a user to its wire record
func EncodeUser(u org.User) UserRecord {
	role := string(u.Role)
	return UserRecord{
		ID:          u.ID,
		Username:    u.Username,
		Password:    u.Password,
		DisplayName: u.DisplayName,
		Role:        &role,
		DeptID:      u.DeptID,
		IsActive:    boolPtr(u.IsActive),
		CreatedAt:   strPtr(EncodeTimestamp(u.CreatedAt)),
	}
}

// DecodeUser converts a wire record back to a user. Missing role falls back
// to "user", missing is_active to true. The password hash is carried
// verbatim.
func DecodeUser(rec UserRecord) (org.User, error) {
	if rec.ID == "" {
		return org.User{}, fmt.Errorf("%w: user missing id", ErrParse)
	}
	role, err := org.ParseRole(strOr(rec.Role, string(org.RoleUser)))
	if err != nil {
		return org.User{}, err
	}
	return org.User{
		ID:          rec.ID,
		Username:    rec.Username,
		Password:    rec.Password,
		DisplayName: rec.DisplayName,
		Role:        role,
		DeptID:      rec.DeptID,
		IsActive:    boolOr(rec.IsActive, true),
		CreatedAt:   decodeTimeOr(rec.CreatedAt, time.Now().UTC()),
	}, nil
}

// EncodeTask converts a task to its wire record
func EncodeTask(t org.Task) TaskRecord {
	status := string(t.Status)
	priority := string(t.Priority)
	return TaskRecord{
		ID:            t.ID,
		Title:         t.Title,
		Description:   strPtr(t.Description),
		DeptID:        t.DeptID,
		DepartmentIDs: t.DepartmentIDs,
		Status:        &status,
		Priority:      &priority,
		AssigneeName:  t.AssigneeName,
		AssigneeIDs:   t.AssigneeIDs,
		StartDate:     encodeTimePtr(t.StartDate),
		DueDate:       encodeTimePtr(t.DueDate),
		IsHidden:      boolPtr(t.IsHidden),
		HiddenAt:      encodeTimePtr(t.HiddenAt),
		CreatedAt:     strPtr(EncodeTimestamp(t.CreatedAt)),
		UpdatedAt:     strPtr(EncodeTimestamp(t.UpdatedAt)),
	}
}

// DecodeTask converts a wire record back to a task. Missing status falls
// back to notStarted, missing priority to medium.
func DecodeTask(rec TaskRecord) (org.Task, error) {
	if rec.ID == "" {
		return org.Task{}, fmt.Errorf("%w: task missing id", ErrParse)
	}
	status, err := org.ParseStatus(strOr(rec.Status, string(org.StatusNotStarted)))
	if err != nil {
		return org.Task{}, err
	}
	priority, err := org.ParsePriority(strOr(rec.Priority, string(org.PriorityMedium)))
	if err != nil {
		return org.Task{}, err
	}
	now := time.Now().UTC()
	return org.Task{
		ID:            rec.ID,
		Title:         rec.Title,
		Description:   strOr(rec.Description, ""),
		DeptID:        rec.DeptID,
		DepartmentIDs: rec.DepartmentIDs,
		Status:        status,
		Priority:      priority,
		AssigneeName:  rec.AssigneeName,
		AssigneeIDs:   rec.AssigneeIDs,
		StartDate:     decodeTime(rec.StartDate),
		DueDate:       decodeTime(rec.DueDate),
		IsHidden:      boolOr(rec.IsHidden, false),
		HiddenAt:      decodeTime(rec.HiddenAt),
		CreatedAt:     decodeTimeOr(rec.CreatedAt, now),
		UpdatedAt:     decodeTimeOr(rec.UpdatedAt, now),
	}, nil
}

// EncodeReport converts a report to its wire record
func EncodeReport(r org.Report) ReportRecord {
	return ReportRecord{
		ID:           r.ID,
		TaskID:       r.TaskID,
		Content:      r.Content,
		ReporterName: r.ReporterName,
		CreatedAt:    strPtr(EncodeTimestamp(r.CreatedAt)),
		UpdatedAt:    strPtr(EncodeTimestamp(r.UpdatedAt)),
	}
}

// DecodeReport converts a wire record back to a report
func DecodeReport(rec ReportRecord) (org.Report, error) {
	if rec.ID == "" {
		return org.Report{}, fmt.Errorf("%w: report missing id", ErrParse)
	}
	now := time.Now().UTC()
	return org.Report{
		ID:           rec.ID,
		TaskID:       rec.TaskID,
		Content:      rec.Content,
		ReporterName: rec.ReporterName,
		CreatedAt:    decodeTimeOr(rec.CreatedAt, now),
		UpdatedAt:    decodeTimeOr(rec.UpdatedAt, now),
	}, nil
}
