package container

import (
	"context"
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"github.com/grivax/grivax-api/internal/auth"
	"github.com/grivax/grivax-api/internal/chat"
	"github.com/grivax/grivax-api/internal/config"
	"github.com/grivax/grivax-api/internal/course"
	"github.com/grivax/grivax-api/internal/database"
	"github.com/grivax/grivax-api/internal/generation"
	"github.com/grivax/grivax-api/internal/llm"
	"github.com/grivax/grivax-api/internal/outline"
	"github.com/grivax/grivax-api/internal/quiz"
	"github.com/grivax/grivax-api/internal/recaptcha"
	"github.com/grivax/grivax-api/internal/router"
	"github.com/grivax/grivax-api/internal/search"
	"github.com/grivax/grivax-api/internal/user"
)

type Container struct {
	Settings *config.Settings
	DB       *gorm.DB

	UserContainer       *user.UserContainer
	OutlineContainer    *outline.OutlineContainer
	GenerationContainer *generation.GenerationContainer
	CourseContainer     *course.CourseContainer
	QuizContainer       *quiz.QuizContainer
	ChatContainer       *chat.ChatContainer
	RecaptchaContainer  *recaptcha.RecaptchaContainer

	session *auth.Handler
}

func New(ctx context.Context) (*Container, error) {
	settings := config.Load()

	logFormat := "text"
	if settings.IsProduction() {
		logFormat = "json"
	}
	config.InitLogger(settings.LogLevel, logFormat)
	auth.Init(settings.JWTSecret)

	cipher, err := config.NewCipher(settings.CryptoKey)
	if err != nil {
		return nil, err
	}

	db, err := database.Connect(ctx, settings.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, err
	}

	provider := llm.Unavailable()
	if settings.GeminiAPIKey != "" {
		provider, err = llm.NewGeminiProvider(ctx, settings.GeminiAPIKey, settings.LLMModel, settings.LLMTimeout)
		if err != nil {
			_ = database.Close(db)
			return nil, err
		}
	} else {
		config.WithContext(ctx).Warn("GEMINI_API_KEY is not set, model calls will use fallbacks")
	}

	images, err := search.NewImageSearcher(ctx, settings.GoogleAPIKey, settings.GoogleCX, settings.SearchTimeout)
	if err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("image search: %w", err)
	}
	videos, err := search.NewVideoSearcher(ctx, settings.YouTubeAPIKey, settings.SearchTimeout)
	if err != nil {
		_ = database.Close(db)
		return nil, fmt.Errorf("video search: %w", err)
	}

	session := auth.NewHandler(settings.CookieDomain, settings.IsProduction())

	outlineRepo := outline.NewRepository(db)
	courseContainer := course.NewCourseContainer(db)
	generationContainer := generation.NewGenerationContainer(
		db,
		outlineRepo,
		courseContainer.Repo,
		provider,
		images,
		videos,
		settings.Generation,
	)

	return &Container{
		Settings: settings,
		DB:       db,

		UserContainer:       user.NewUserContainer(db, settings, session, cipher),
		OutlineContainer:    outline.NewOutlineContainer(outlineRepo, provider, generationContainer.Service),
		GenerationContainer: generationContainer,
		CourseContainer:     courseContainer,
		QuizContainer:       quiz.NewQuizContainer(db, courseContainer.Repo, provider),
		ChatContainer:       chat.NewChatContainer(provider),
		RecaptchaContainer:  recaptcha.NewRecaptchaContainer(settings.RecaptchaSecretKey),

		session: session,
	}, nil
}

func (c *Container) Router() http.Handler {
	return router.New(router.RouterConfig{
		UserHandler:       c.UserContainer.Handler,
		SessionHandler:    c.session,
		OutlineHandler:    c.OutlineContainer.Handler,
		GenerationHandler: c.GenerationContainer.Handler,
		CourseHandler:     c.CourseContainer.Handler,
		QuizHandler:       c.QuizContainer.Handler,
		ChatHandler:       c.ChatContainer.Handler,
		RecaptchaHandler:  c.RecaptchaContainer.Handler,

		AllowedOrigins:     c.Settings.CORSAllowedOrigins,
		RateLimitPerMinute: c.Settings.RateLimitPerMinute,
	})
}

// Close stops the sweeper and the job pub/sub, then releases the database.
func (c *Container) Close() error {
	c.GenerationContainer.Sweeper.Stop()
	if err := c.GenerationContainer.Close(); err != nil {
		config.WithContext(context.Background()).WithError(err).Warn("Failed to close job pub/sub")
	}
	return database.Close(c.DB)
}
