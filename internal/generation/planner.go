package generation

import (
	"context"
	"fmt"
	"strings"

	"github.com/grivax/grivax-api/internal/config"
	"github.com/grivax/grivax-api/internal/llm"
	"github.com/grivax/grivax-api/internal/metrics"
	"github.com/grivax/grivax-api/internal/outline"
)

const planMaxTokens = 3000

// Planner turns an outline into units and chapters.
type Planner struct {
	provider llm.Provider
}

func NewPlanner(provider llm.Provider) *Planner {
	return &Planner{provider: provider}
}

// Plan asks the model for the breakdown and falls back to one chapter per
// module. The result always has one unit per module, each with chapters.
func (p *Planner) Plan(ctx context.Context, g *outline.GenCourse) []PlannedUnit {
	log := config.WithContext(ctx).WithField("course_id", g.CourseID)

	text, err := p.provider.Complete(ctx, llm.Prompt("plan", buildPlanPrompt(g), planMaxTokens))
	if err != nil {
		log.WithError(err).Warn("Plan request failed, using outline structure")
		metrics.Fallbacks.WithLabelValues("plan").Inc()
		return fallbackPlan(g.Modules)
	}

	var raw struct {
		Units []PlannedUnit `json:"units"`
	}
	if err := llm.ExtractObject(text, &raw); err != nil || len(raw.Units) == 0 {
		log.WithError(err).Warn("Plan response unusable, using outline structure")
		metrics.Fallbacks.WithLabelValues("plan").Inc()
		return fallbackPlan(g.Modules)
	}
	return normalizePlan(raw.Units, g.Modules)
}

func buildPlanPrompt(g *outline.GenCourse) string {
	var b strings.Builder
	b.WriteString("You are an expert course designer. Create a detailed course structure based on the following information:\n\n")
	fmt.Fprintf(&b, "Course Title: %s\nCourse Description: %s\n\n", g.Title, g.Description)
	fmt.Fprintf(&b, "The course has %d modules (weeks):\n", len(g.Modules))
	for i, m := range g.Modules {
		fmt.Fprintf(&b, "\nModule %d (Week %d):\n- Title: %s\n- Objectives: %s\n- Time Duration: %s\n",
			i+1, m.Week, m.Title, m.Objectives.String(), m.TimeSpent)
	}
	b.WriteString(`
Requirements:
1. Each module is one unit, in the same order.
2. Each unit contains 2-3 relevant chapters.
3. Each chapter has a descriptive title, a brief description, an estimated time in minutes,
   3-5 key learning points, suggested resources and a YouTube search query for a relevant video.

Return ONLY valid JSON in the following structure:
{
  "units": [
    {
      "unitNumber": 1,
      "title": "Unit Title",
      "description": "Unit description",
      "chapters": [
        {
          "chapterNumber": 1,
          "title": "Chapter Title",
          "description": "Chapter description",
          "estimatedTime": "30 minutes",
          "learningPoints": ["Point 1", "Point 2", "Point 3"],
          "resources": ["Resource 1", "Resource 2"],
          "youtubeSearchQuery": "YouTube search query"
        }
      ]
    }
  ]
}`)
	return b.String()
}

func fallbackUnit(i int, m outline.Module) PlannedUnit {
	points := []string(m.Objectives)
	if len(points) == 0 {
		points = []string{"Learning point 1", "Learning point 2"}
	}
	title := "Introduction to " + m.Title
	return PlannedUnit{
		UnitNumber:  i + 1,
		Title:       m.Title,
		Description: fmt.Sprintf("Unit %d: %s", i+1, m.Title),
		Chapters: []PlannedChapter{{
			ChapterNumber:      1,
			Title:              title,
			Description:        title,
			EstimatedTime:      "30 minutes",
			LearningPoints:     points,
			Resources:          []string{"Resource 1", "Resource 2"},
			YoutubeSearchQuery: m.Title + " tutorial",
		}},
	}
}

func fallbackPlan(modules []outline.Module) []PlannedUnit {
	units := make([]PlannedUnit, len(modules))
	for i, m := range modules {
		units[i] = fallbackUnit(i, m)
	}
	return units
}

// normalizePlan aligns the model's units with the outline modules: one unit per
// module, extra units dropped, missing or empty ones synthesized.
func normalizePlan(units []PlannedUnit, modules []outline.Module) []PlannedUnit {
	out := make([]PlannedUnit, len(modules))
	for i, m := range modules {
		if i >= len(units) {
			out[i] = fallbackUnit(i, m)
			continue
		}

		u := units[i]
		u.UnitNumber = i + 1
		if strings.TrimSpace(u.Title) == "" {
			u.Title = m.Title
		}

		chapters := make([]PlannedChapter, 0, len(u.Chapters))
		for _, ch := range u.Chapters {
			if strings.TrimSpace(ch.Title) == "" {
				continue
			}
			if strings.TrimSpace(ch.YoutubeSearchQuery) == "" {
				ch.YoutubeSearchQuery = ch.Title + " tutorial"
			}
			ch.ChapterNumber = len(chapters) + 1
			chapters = append(chapters, ch)
		}
		if len(chapters) == 0 {
			chapters = fallbackUnit(i, m).Chapters
		}
		u.Chapters = chapters
		out[i] = u
	}
	return out
}
