package quiz

type QuizBody struct {
	QuizID    string     `json:"quiz_id"`
	Questions []Question `json:"questions"`
}

type GenerateResponse struct {
	Success bool     `json:"success"`
	Quiz    QuizBody `json:"quiz"`
}

type QuizView struct {
	Quiz       QuizBody `json:"quiz"`
	HasAttempt bool     `json:"hasAttempt"`
	Attempt    *Attempt `json:"attempt"`
}

type SubmitDTO struct {
	Answers *[]int `json:"answers"`
}

type Result struct {
	QuestionIndex int      `json:"questionIndex"`
	QuestionText  string   `json:"questionText"`
	UserAnswer    *int     `json:"userAnswer"`
	CorrectAnswer int      `json:"correctAnswer"`
	IsCorrect     bool     `json:"isCorrect"`
	Explanation   string   `json:"explanation"`
	Options       []string `json:"options"`
}

type SubmitResult struct {
	Success        bool     `json:"success"`
	Score          int      `json:"score"`
	CorrectAnswers int      `json:"correctAnswers"`
	TotalQuestions int      `json:"totalQuestions"`
	Results        []Result `json:"results"`
	AttemptID      string   `json:"attemptId"`
}

type AttemptView struct {
	Success bool     `json:"success"`
	Quiz    QuizBody `json:"quiz"`
	Attempt *Attempt `json:"attempt"`
	Results []Result `json:"results"`
}
