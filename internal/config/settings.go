package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

type Settings struct {
	Port     string
	Env      string
	LogLevel string

	DatabaseDSN string

	JWTSecret    string
	CryptoKey    string
	CookieDomain string
	BaseURL      string

	CORSAllowedOrigins []string
	RateLimitPerMinute int

	GeminiAPIKey string
	LLMModel     string
	LLMTimeout   time.Duration

	GoogleAPIKey  string
	GoogleCX      string
	YouTubeAPIKey string
	SearchTimeout time.Duration

	RecaptchaSecretKey string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	GithubClientID     string
	GithubClientSecret string
	GithubRedirectURL  string

	Generation GenerationSettings
}

type GenerationSettings struct {
	UnitConcurrency    int
	VideoConcurrency   int
	ReadingConcurrency int
	JobConcurrency     int
	MaxAttempts        int
	JobTimeout         time.Duration
	StaleAfter         time.Duration
	SweepSchedule      string
}

// Load reads a .env file when present and builds Settings from the environment.
func Load() *Settings {
	if err := godotenv.Load(); err != nil {
		logrus.Debug(".env file not found, using process environment")
	}

	s := &Settings{
		Port:     getEnv("PORT", "8080"),
		Env:      getEnv("ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		DatabaseDSN: os.Getenv("DATABASE_DSN"),

		JWTSecret:    os.Getenv("JWT_SECRET"),
		CryptoKey:    os.Getenv("CRYPTO_KEY"),
		CookieDomain: os.Getenv("COOKIE_DOMAIN"),
		BaseURL:      getEnv("BASE_URL", "http://localhost:3000"),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 20),

		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		LLMModel:     getEnv("LLM_MODEL", "gemini-2.0-flash"),
		LLMTimeout:   getEnvDuration("LLM_TIMEOUT", 60*time.Second),

		GoogleAPIKey:  os.Getenv("GOOGLE_API_KEY"),
		GoogleCX:      os.Getenv("GOOGLE_CX"),
		YouTubeAPIKey: os.Getenv("YOUTUBE_API_KEY"),
		SearchTimeout: getEnvDuration("SEARCH_TIMEOUT", 5*time.Second),

		RecaptchaSecretKey: os.Getenv("RECAPTCHA_SECRET_KEY"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
		GithubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		GithubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		GithubRedirectURL:  os.Getenv("GITHUB_REDIRECT_URL"),

		Generation: GenerationSettings{
			UnitConcurrency:    getEnvInt("GENERATION_UNIT_CONCURRENCY", 3),
			VideoConcurrency:   getEnvInt("GENERATION_VIDEO_CONCURRENCY", 5),
			ReadingConcurrency: getEnvInt("GENERATION_READING_CONCURRENCY", 2),
			JobConcurrency:     getEnvInt("GENERATION_JOB_CONCURRENCY", 2),
			MaxAttempts:        getEnvInt("GENERATION_MAX_ATTEMPTS", 3),
			JobTimeout:         getEnvDuration("GENERATION_JOB_TIMEOUT", 15*time.Minute),
			StaleAfter:         getEnvDuration("GENERATION_STALE_AFTER", 5*time.Minute),
			SweepSchedule:      getEnv("GENERATION_SWEEP_SCHEDULE", "@every 30s"),
		},
	}

	if s.JWTSecret == "" {
		logrus.Warn("JWT_SECRET is not set")
	}
	return s
}

func (s *Settings) IsProduction() bool {
	return s.Env == "production"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil || intValue <= 0 {
		logrus.WithError(err).Warnf("Invalid value for %s, using %d", key, defaultValue)
		return defaultValue
	}
	return intValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		logrus.WithError(err).Warnf("Invalid duration for %s, using %s", key, defaultValue)
		return defaultValue
	}
	return d
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
