package outline

import (
	"fmt"
	"strings"
)

const outlineMaxTokens = 4000

func formatWeeks(n int) string {
	if n == 1 {
		return "1 week"
	}
	return fmt.Sprintf("%d weeks", n)
}

func buildPrompt(topic, difficulty string, weeks int) string {
	duration := formatWeeks(weeks)

	var b strings.Builder
	b.WriteString("You are an AI capable of curating course content, coming up with relevant chapter titles, and creating comprehensive learning paths.\n")
	b.WriteString("Create a detailed course outline for the following parameters:\n")
	fmt.Fprintf(&b, "- Topic: %s\n", topic)
	fmt.Fprintf(&b, "- Difficulty Level: %s\n", difficulty)
	fmt.Fprintf(&b, "- Course Duration: %s\n\n", duration)
	b.WriteString("The outline must include the main topics for each week, the estimated time required for each topic ")
	b.WriteString("(a number of hours, not a range) and the learning objectives for each week.\n\n")
	b.WriteString(`Format the response as a JSON object with the following structure:
{
  "title": "Course Title",
  "description": "Course Description",
  "modules": [
    {
      "week": 1,
      "title": "Module Title",
      "objectives": ["Objective 1", "Objective 2"],
      "timeSpent": "2 hours"
    }
  ]
}
`)
	fmt.Fprintf(&b, "\nEach module represents one week of content and the number of modules must be exactly %d to fit %s.", weeks, duration)
	return b.String()
}
