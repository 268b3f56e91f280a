package backend

import (
	"context"
	"fmt"
	"sort"

	"github.com/campusgrid/lectern/internal/model"
	"github.com/campusgrid/lectern/internal/rest"
)

func (c *Client) Courses(ctx context.Context) ([]model.Course, error) {
	var out []model.Course
	if err := c.api.Get(ctx, "/courses", &out); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return out, nil
}

func (c *Client) Course(ctx context.Context, id string) (*model.Course, error) {
	var out model.Course
	if err := c.api.Get(ctx, "/courses/"+rest.PathEscape(id), &out); err != nil {
		return nil, fmt.Errorf("fetch course %s: %w", id, err)
	}
	return &out, nil
}

// gradeRecord is the backend's per-student grade row for a course.
type gradeRecord struct {
	StudentID  string              `json:"studentId"`
	Grades     map[string]*float64 `json:"grades"`
	FinalGrade float64             `json:"finalGrade"`
}

type userRecord struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

func (u userRecord) displayName() string {
	if u.Name != "" {
		return u.Name
	}
	if u.FirstName == "" && u.LastName == "" {
		return u.Email
	}
	if u.FirstName == "" {
		return u.LastName
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// StudentsForCourse resolves a course's enrollments into student records with
// their grade maps: enrollment IDs across all years, the matching user
// profiles via /users/by-ids, and the course's grade rows merged on top.
// Students without a grade row get an empty grade map.
func (c *Client) StudentsForCourse(ctx context.Context, courseID string) ([]model.Student, error) {
	course, err := c.Course(ctx, courseID)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	var ids []string
	for _, yearIDs := range course.Enrollments {
		for _, id := range yearIDs {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	if len(ids) == 0 {
		return []model.Student{}, nil
	}
	sort.Strings(ids)

	var users []userRecord
	if err := c.api.Post(ctx, "/users/by-ids", map[string][]string{"ids": ids}, &users); err != nil {
		return nil, fmt.Errorf("fetch users for course %s: %w", courseID, err)
	}

	var records []gradeRecord
	if err := c.api.Get(ctx, "/courses/"+rest.PathEscape(courseID)+"/grades", &records); err != nil {
		// A course with no gradebook yet is not an error.
		if !rest.IsNotFound(err) {
			return nil, fmt.Errorf("fetch grades for course %s: %w", courseID, err)
		}
	}
	byStudent := make(map[string]gradeRecord, len(records))
	for _, r := range records {
		byStudent[r.StudentID] = r
	}

	students := make([]model.Student, 0, len(users))
	for _, u := range users {
		s := model.Student{
			ID:     u.ID,
			Name:   u.displayName(),
			Email:  u.Email,
			Grades: map[string]*float64{},
		}
		if rec, ok := byStudent[u.ID]; ok {
			if rec.Grades != nil {
				s.Grades = rec.Grades
			}
			s.FinalGrade = rec.FinalGrade
		}
		students = append(students, s)
	}
	sort.Slice(students, func(i, j int) bool { return students[i].Name < students[j].Name })
	return students, nil
}
