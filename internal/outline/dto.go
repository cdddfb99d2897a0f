package outline

import (
	"encoding/json"
	"regexp"
	"strconv"
)

const (
	DefaultPace = 4
	MaxPace     = 52
)

type GenerateDTO struct {
	Topic      string `json:"topic" validate:"required,max=200"`
	Difficulty string `json:"difficulty" validate:"max=50"`
	Pace       Pace   `json:"pace"`
}

type UpdateDTO struct {
	Title       string   `json:"title" validate:"required,max=300"`
	Description string   `json:"description"`
	Modules     []Module `json:"modules" validate:"required,min=1"`
}

type GenerateResponse struct {
	Success         bool       `json:"success"`
	CourseID        string     `json:"course_id"`
	CourseStructure *GenCourse `json:"courseStructure"`
	RedirectURL     string     `json:"redirectUrl"`
}

type OutlineResponse struct {
	CourseID    string   `json:"course_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Modules     []Module `json:"modules"`
}

var leadingInt = regexp.MustCompile(`^\s*([+-]?\d+)`)

// Pace is the course length in weeks. It accepts a JSON number or a string whose
// leading integer is used, like "6 weeks".
type Pace int

func (p *Pace) UnmarshalJSON(data []byte) error {
	var n float64
	if err := json.Unmarshal(data, &n); err == nil {
		*p = Pace(int(n))
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*p = 0
		return nil
	}
	m := leadingInt.FindStringSubmatch(s)
	if m == nil {
		*p = 0
		return nil
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		*p = 0
		return nil
	}
	*p = Pace(v)
	return nil
}

// Weeks returns the usable week count.
func (p Pace) Weeks() int {
	switch {
	case p < 1:
		return DefaultPace
	case p > MaxPace:
		return MaxPace
	default:
		return int(p)
	}
}
