package quiz

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/grivax/grivax-api/internal/course"
)

const (
	quizMaxTokens      = 3000
	defaultExplanation = "No explanation provided"
)

func buildPrompt(c *course.Course) string {
	var b strings.Builder
	b.WriteString("You are an expert educational content creator specializing in quiz questions for online courses.\n\n")
	fmt.Fprintf(&b, "Create a quiz for the course \"%s\".\n\nCourse structure:\n", c.Title)
	for i, u := range c.Units {
		fmt.Fprintf(&b, "Unit %d: %s\n", i+1, u.Name)
		for _, ch := range u.Chapters {
			fmt.Fprintf(&b, "  - %s\n", ch.Name)
		}
	}
	fmt.Fprintf(&b, `
Requirements:
1. Generate exactly %d multiple-choice questions covering different units.
2. Each question has exactly %d options.
3. Test practical understanding: concepts, application, best practices and problem solving.
4. Give a clear explanation of the correct answer.

Return only a JSON object:
{
  "questions": [
    {
      "questionText": "Clear, specific question",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correctAnswer": 0,
      "explanation": "Why the correct answer is right"
    }
  ]
}`, QuestionCount, OptionCount)
	return b.String()
}

type rawQuiz struct {
	Questions []rawQuestion `json:"questions"`
}

type rawQuestion struct {
	QuestionText  string          `json:"questionText"`
	Options       []string        `json:"options"`
	CorrectAnswer json.RawMessage `json:"correctAnswer"`
	Explanation   string          `json:"explanation"`
}

// answerIndex reads a correct answer given as an index or a letter. Anything
// else, or an index outside the options, becomes 0.
func answerIndex(raw json.RawMessage) int {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return clampAnswer(int(n))
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	s = strings.TrimSpace(s)
	if v, err := strconv.Atoi(s); err == nil {
		return clampAnswer(v)
	}
	if len(s) == 1 {
		return clampAnswer(int(strings.ToUpper(s)[0] - 'A'))
	}
	return 0
}

func clampAnswer(i int) int {
	if i < 0 || i >= OptionCount {
		return 0
	}
	return i
}

// normalize keeps the first well-formed questions and pads to QuestionCount.
func normalize(raw []rawQuestion, courseTitle string) []Question {
	out := make([]Question, 0, QuestionCount)
	for _, q := range raw {
		if len(out) == QuestionCount {
			break
		}
		if strings.TrimSpace(q.QuestionText) == "" || len(q.Options) != OptionCount {
			continue
		}
		explanation := q.Explanation
		if strings.TrimSpace(explanation) == "" {
			explanation = defaultExplanation
		}
		out = append(out, Question{
			QuestionText:  q.QuestionText,
			Options:       q.Options,
			CorrectAnswer: answerIndex(q.CorrectAnswer),
			Explanation:   explanation,
		})
	}
	return pad(out, courseTitle)
}

func pad(questions []Question, courseTitle string) []Question {
	for len(questions) < QuestionCount {
		questions = append(questions, Question{
			QuestionText: fmt.Sprintf("What is the main focus of the %q course?", courseTitle),
			Options: []string{
				"Understanding and applying the core concepts covered in the course",
				"Memorizing theoretical definitions without practical application",
				"Learning unrelated programming languages",
				"Studying outdated industry practices",
			},
			CorrectAnswer: 0,
			Explanation:   fmt.Sprintf("This course focuses on practical understanding and application of %s concepts.", courseTitle),
		})
	}
	return questions
}

// fallbackQuestions builds a deterministic quiz from the course and unit names.
func fallbackQuestions(c *course.Course) []Question {
	questions := []Question{{
		QuestionText: fmt.Sprintf("What is the primary subject of the %q course?", c.Title),
		Options: []string{
			"Learning and understanding " + c.Title,
			"Basic computer literacy",
			"Hardware troubleshooting",
			"Network administration",
		},
		CorrectAnswer: 0,
		Explanation:   fmt.Sprintf("This course is designed to teach %s concepts and applications.", c.Title),
	}}

	for _, u := range c.Units {
		if len(questions) == QuestionCount {
			break
		}
		questions = append(questions, Question{
			QuestionText: fmt.Sprintf("What is covered in the %q unit?", u.Name),
			Options: []string{
				"Core concepts and practical applications of " + u.Name,
				"Unrelated programming topics",
				"Hardware specifications",
				"Network protocols",
			},
			CorrectAnswer: 0,
			Explanation:   fmt.Sprintf("The %s unit focuses on the essential concepts and practical applications in this area.", u.Name),
		})
	}
	return pad(questions, c.Title)
}
