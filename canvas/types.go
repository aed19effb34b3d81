package canvas

import "time"

// User is the Canvas user object, as embedded in enrollments.
type User struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	SortableName string `json:"sortable_name"`
	ShortName    string `json:"short_name"`
	SISUserID    string `json:"sis_user_id"`
	LoginID      string `json:"login_id"`
}

// Enrollment ties a user to a course section with a state. Students sitting
// in several sections show up once per section.
type Enrollment struct {
	ID              int64  `json:"id"`
	CourseID        int64  `json:"course_id"`
	SectionID       int64  `json:"course_section_id"`
	Type            string `json:"type"`
	EnrollmentState string `json:"enrollment_state"`
	User            User   `json:"user"`
}

type Assignment struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	DueAt          *time.Time `json:"due_at"`
	PointsPossible float64    `json:"points_possible"`
	Published      bool       `json:"published"`
}

// Override is a per-student exception to an assignment's due date.
type Override struct {
	ID           int64      `json:"id"`
	AssignmentID int64      `json:"assignment_id"`
	Title        string     `json:"title"`
	StudentIDs   []int64    `json:"student_ids"`
	DueAt        *time.Time `json:"due_at"`
}

type Event struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	StartAt       time.Time `json:"start_at"`
	EndAt         time.Time `json:"end_at"`
	LocationName  string    `json:"location_name"`
	ContextCode   string    `json:"context_code"`
	WorkflowState string    `json:"workflow_state"`
	UpdatedAt     time.Time `json:"updated_at"`
	URL           string    `json:"url"`
}

// Duration of the event; zero for events missing either end.
func (e Event) Duration() time.Duration {
	if e.StartAt.IsZero() || e.EndAt.IsZero() {
		return 0
	}
	return e.EndAt.Sub(e.StartAt)
}

// Overlaps reports whether the event intersects the [start, end) interval.
func (e Event) Overlaps(start, end time.Time) bool {
	return e.StartAt.Before(end) && e.EndAt.After(start)
}

type GroupCategory struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	CourseID int64  `json:"course_id"`
}

type Group struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	GroupCategoryID int64  `json:"group_category_id"`
	MembersCount    int    `json:"members_count"`
}
