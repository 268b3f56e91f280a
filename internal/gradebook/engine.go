// Package gradebook implements the grade computation and the logic that
// keeps grade columns in step with assignments.
package gradebook

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/campusgrid/lectern/internal/model"
)

// typePercentages maps an assignment type to the suggested weight of its
// auto-created grade column.
var typePercentages = map[string]float64{
	"homework":     10,
	"project":      25,
	"essay":        15,
	"lab":          10,
	"presentation": 15,
	"quiz":         5,
	"exam":         20,
}

const defaultPercentage = 10

// FinalGrade is the weighted sum of a student's present grades:
// grade × percentage / 100 per column, skipping columns with no recorded
// grade. The sum is intentionally not normalized by the total weight of
// graded columns, so a student graded only in a 10% column tops out at 10.
// Rounded to two decimals.
func FinalGrade(s *model.Student, cols []model.GradeColumn) float64 {
	var total float64
	for _, col := range cols {
		if g, ok := s.Grade(col.ID); ok {
			total += g * col.Percentage / 100
		}
	}
	return round2(total)
}

// TotalPercentage sums the column weights. Used to validate additions; the
// computation itself never divides by it.
func TotalPercentage(cols []model.GradeColumn) float64 {
	var total float64
	for _, col := range cols {
		total += col.Percentage
	}
	return total
}

// ValidateNewColumn rejects a column whose weight would push the course
// total past 100.
func ValidateNewColumn(cols []model.GradeColumn, percentage float64) error {
	if percentage <= 0 {
		return fmt.Errorf("percentage must be positive")
	}
	if total := TotalPercentage(cols) + percentage; total > 100 {
		return fmt.Errorf("total percentage would be %.0f%%, which exceeds 100%%", total)
	}
	return nil
}

// SuggestedPercentage picks the weight for an auto-created column from the
// assignment type, clamped so the course total cannot exceed 100. The floor
// is 1 so a nearly full gradebook still yields a usable column.
func SuggestedPercentage(assignmentType string, cols []model.GradeColumn) float64 {
	pct, ok := typePercentages[strings.ToLower(assignmentType)]
	if !ok {
		pct = defaultPercentage
	}
	remaining := 100 - TotalPercentage(cols)
	if pct > remaining {
		pct = remaining
	}
	if pct < 1 {
		pct = 1
	}
	return pct
}

// MatchColumn finds the grade column linked to an assignment: the explicit
// source link wins; otherwise fall back to the legacy name heuristic
// (case-insensitive containment either way, or exact match) for columns
// created before the link existed.
func MatchColumn(cols []model.GradeColumn, a model.Assignment) *model.GradeColumn {
	for i := range cols {
		if cols[i].SourceAssignmentID != "" && cols[i].SourceAssignmentID == a.ID {
			return &cols[i]
		}
	}
	title := strings.ToLower(a.Title)
	for i := range cols {
		name := strings.ToLower(cols[i].Name)
		if name == title || strings.Contains(name, title) || strings.Contains(title, name) {
			return &cols[i]
		}
	}
	return nil
}

// ParseGradeInput turns raw cell input into a grade. Empty input clears the
// cell; otherwise the value must be a number in [0,100].
func ParseGradeInput(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("grade must be a number")
	}
	if v < 0 || v > 100 {
		return nil, fmt.Errorf("grade must be between 0 and 100")
	}
	return &v, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
