package outline

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GenCourse is the outline produced by the model, editable until generation starts.
type GenCourse struct {
	ID          string                      `gorm:"primaryKey;size:36" json:"id"`
	UserID      string                      `gorm:"size:10;not null;index" json:"user_id"`
	CourseID    string                      `gorm:"size:10;not null;uniqueIndex" json:"course_id"`
	Title       string                      `gorm:"not null" json:"title"`
	Description string                      `gorm:"type:text" json:"description"`
	Modules     datatypes.JSONSlice[Module] `json:"modules"`
	CreatedAt   time.Time                   `json:"createdAt"`
	UpdatedAt   time.Time                   `json:"updatedAt"`
}

func (g *GenCourse) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}

type Module struct {
	Week       int        `json:"week"`
	Title      string     `json:"title"`
	Objectives Objectives `json:"objectives"`
	TimeSpent  TimeSpent  `json:"timeSpent"`
}

// Objectives decodes either a JSON array of strings or a single comma separated string.
type Objectives []string

func (o *Objectives) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*o = list
		return nil
	}
	var single string
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*o = nil
	for _, part := range strings.Split(single, ",") {
		if p := strings.TrimSpace(part); p != "" {
			*o = append(*o, p)
		}
	}
	return nil
}

func (o Objectives) String() string {
	return strings.Join(o, ", ")
}

// TimeSpent is free text such as "2 hours"; a bare number is read as hours.
type TimeSpent string

func (t *TimeSpent) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*t = TimeSpent(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	unit := "hours"
	if n == 1 {
		unit = "hour"
	}
	*t = TimeSpent(strconv.FormatFloat(n, 'f', -1, 64) + " " + unit)
	return nil
}
