package quiz

import (
	"context"
	"errors"
	"fmt"

	"github.com/grivax/grivax-api/internal/config"
	"github.com/grivax/grivax-api/internal/course"
	"github.com/grivax/grivax-api/internal/llm"
	"github.com/grivax/grivax-api/internal/metrics"
	util "github.com/grivax/grivax-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrQuizExists      = errors.New("quiz already exists for this course")
	ErrQuizNotFound    = errors.New("quiz not found")
	ErrAttemptExists   = errors.New("quiz already attempted")
	ErrAttemptNotFound = errors.New("no quiz attempt found")
	ErrAnswerCount     = errors.New("number of answers does not match number of questions")
	ErrCourseNotFound  = course.ErrCourseNotFound
)

type QuizService interface {
	Generate(ctx context.Context, userID, courseID string) (*Quiz, error)
	Get(ctx context.Context, userID, courseID string) (*QuizView, error)
	Submit(ctx context.Context, userID, courseID string, answers []int) (*SubmitResult, error)
	Attempt(ctx context.Context, userID, courseID string) (*AttemptView, error)
}

type quizService struct {
	repo     QuizRepository
	courses  course.Repository
	provider llm.Provider
}

func NewService(repo QuizRepository, courses course.Repository, provider llm.Provider) QuizService {
	return &quizService{repo: repo, courses: courses, provider: provider}
}

func (s *quizService) Generate(ctx context.Context, userID, courseID string) (*Quiz, error) {
	log := config.WithContext(ctx).WithField("course_id", courseID)

	c, err := s.courses.GetWithContent(ctx, userID, courseID)
	if err != nil {
		log.WithError(err).Error("Failed to load course for quiz")
		return nil, err
	}
	if c == nil {
		return nil, ErrCourseNotFound
	}

	existing, err := s.repo.GetByCourse(ctx, courseID)
	if err != nil {
		log.WithError(err).Error("Failed to look up quiz")
		return nil, err
	}
	if existing != nil {
		return nil, ErrQuizExists
	}

	q := &Quiz{CourseID: courseID, Questions: s.questions(ctx, c)}
	if err := s.repo.Create(ctx, q); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrQuizExists
		}
		log.WithError(err).Error("Failed to store quiz")
		return nil, fmt.Errorf("store quiz: %w", err)
	}

	log.WithField("quiz_id", q.QuizID).Info("Quiz generated")
	return q, nil
}

// questions asks the model for the quiz and degrades to the deterministic set.
func (s *quizService) questions(ctx context.Context, c *course.Course) []Question {
	log := config.WithContext(ctx).WithField("course_id", c.CourseID)

	text, err := s.provider.Complete(ctx, llm.Prompt("quiz", buildPrompt(c), quizMaxTokens))
	if err != nil {
		log.WithError(err).Warn("Quiz request failed, using fallback questions")
		metrics.Fallbacks.WithLabelValues("quiz").Inc()
		return fallbackQuestions(c)
	}

	var raw rawQuiz
	if err := llm.ExtractObject(text, &raw); err != nil || len(raw.Questions) == 0 {
		log.WithError(err).Warn("Quiz response unusable, using fallback questions")
		metrics.Fallbacks.WithLabelValues("quiz").Inc()
		return fallbackQuestions(c)
	}
	return normalize(raw.Questions, c.Title)
}

// quizFor loads the quiz of a course owned by userID.
func (s *quizService) quizFor(ctx context.Context, userID, courseID string) (*Quiz, error) {
	c, err := s.courses.Get(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrQuizNotFound
	}
	q, err := s.repo.GetByCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}
	if q == nil {
		return nil, ErrQuizNotFound
	}
	return q, nil
}

func (s *quizService) Get(ctx context.Context, userID, courseID string) (*QuizView, error) {
	q, err := s.quizFor(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	attempt, err := s.repo.GetAttempt(ctx, q.QuizID, userID)
	if err != nil {
		config.WithContext(ctx).WithError(err).Error("Failed to look up quiz attempt")
		return nil, err
	}
	return &QuizView{
		Quiz:       QuizBody{QuizID: q.QuizID, Questions: q.Questions},
		HasAttempt: attempt != nil,
		Attempt:    attempt,
	}, nil
}

func (s *quizService) Submit(ctx context.Context, userID, courseID string, answers []int) (*SubmitResult, error) {
	log := config.WithContext(ctx).WithField("course_id", courseID)

	q, err := s.quizFor(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}

	existing, err := s.repo.GetAttempt(ctx, q.QuizID, userID)
	if err != nil {
		log.WithError(err).Error("Failed to look up quiz attempt")
		return nil, err
	}
	if existing != nil {
		return nil, ErrAttemptExists
	}
	if len(answers) != len(q.Questions) {
		return nil, ErrAnswerCount
	}

	results, correct := grade(q.Questions, answers)
	a := &Attempt{
		QuizID:         q.QuizID,
		UserID:         userID,
		Answers:        answers,
		Score:          util.Percent(correct, len(q.Questions)),
		CorrectCount:   correct,
		TotalQuestions: len(q.Questions),
	}
	if err := s.repo.CreateAttempt(ctx, a); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAttemptExists
		}
		log.WithError(err).Error("Failed to store quiz attempt")
		return nil, fmt.Errorf("store attempt: %w", err)
	}

	log.WithField("score", a.Score).Info("Quiz submitted")
	return &SubmitResult{
		Success:        true,
		Score:          a.Score,
		CorrectAnswers: correct,
		TotalQuestions: a.TotalQuestions,
		Results:        results,
		AttemptID:      a.AttemptID,
	}, nil
}

func (s *quizService) Attempt(ctx context.Context, userID, courseID string) (*AttemptView, error) {
	q, err := s.quizFor(ctx, userID, courseID)
	if err != nil {
		return nil, err
	}
	a, err := s.repo.GetAttempt(ctx, q.QuizID, userID)
	if err != nil {
		config.WithContext(ctx).WithError(err).Error("Failed to look up quiz attempt")
		return nil, err
	}
	if a == nil {
		return nil, ErrAttemptNotFound
	}

	results, _ := grade(q.Questions, a.Answers)
	return &AttemptView{
		Success: true,
		Quiz:    QuizBody{QuizID: q.QuizID, Questions: q.Questions},
		Attempt: a,
		Results: results,
	}, nil
}

// grade compares answers index by index. Missing answers count as wrong.
func grade(questions []Question, answers []int) ([]Result, int) {
	results := make([]Result, len(questions))
	correct := 0
	for i, q := range questions {
		r := Result{
			QuestionIndex: i,
			QuestionText:  q.QuestionText,
			CorrectAnswer: q.CorrectAnswer,
			Explanation:   q.Explanation,
			Options:       q.Options,
		}
		if r.Explanation == "" {
			r.Explanation = defaultExplanation
		}
		if i < len(answers) {
			answer := answers[i]
			r.UserAnswer = &answer
			r.IsCorrect = answer == q.CorrectAnswer
		}
		if r.IsCorrect {
			correct++
		}
		results[i] = r
	}
	return results, correct
}
