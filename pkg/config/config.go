package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database      DatabaseConfig
	Redis         RedisConfig
	JWT           JWTConfig
	CORS          CORSConfig
	Log           LogConfig
	Workflow      WorkflowConfig
	Rewards       RewardsConfig
	Stats         StatsConfig
	Notifications NotificationsConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// WorkflowConfig carries the scoring thresholds and criterion weights
// driving suggestion routing decisions.
type WorkflowConfig struct {
	MinFeasibilityScore float64
	MinCostScore        int
	EscalationCostScore int
	Weights             FeasibilityWeights
	SubmissionPoints    int
	ApprovalPoints      int
	CompletionPoints    int
}

// FeasibilityWeights are percentage weights for the seven feasibility
// criteria. They must sum to 100.
type FeasibilityWeights struct {
	Innovation                 int
	Safety                     int
	Environment                int
	EmployeeSatisfaction       int
	TechnologicalCompatibility int
	ImplementationEase         int
	CostBenefit                int
}

// Sum returns the total of all weights.
func (w FeasibilityWeights) Sum() int {
	return w.Innovation + w.Safety + w.Environment + w.EmployeeSatisfaction +
		w.TechnologicalCompatibility + w.ImplementationEase + w.CostBenefit
}

// RewardsConfig governs the reward ledger policy.
type RewardsConfig struct {
	AllowMultiplePerSuggestion bool
}

// StatsConfig governs cache behaviour for statistics endpoints.
type StatsConfig struct {
	CacheTTL time.Duration
}

// NotificationsConfig tunes the side-effect dispatch queue.
type NotificationsConfig struct {
	Workers    int
	MaxRetries int
	RetryDelay time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Workflow = WorkflowConfig{
		MinFeasibilityScore: v.GetFloat64("WORKFLOW_MIN_FEASIBILITY_SCORE"),
		MinCostScore:        v.GetInt("WORKFLOW_MIN_COST_SCORE"),
		EscalationCostScore: v.GetInt("WORKFLOW_ESCALATION_COST_SCORE"),
		Weights: FeasibilityWeights{
			Innovation:                 v.GetInt("WORKFLOW_WEIGHT_INNOVATION"),
			Safety:                     v.GetInt("WORKFLOW_WEIGHT_SAFETY"),
			Environment:                v.GetInt("WORKFLOW_WEIGHT_ENVIRONMENT"),
			EmployeeSatisfaction:       v.GetInt("WORKFLOW_WEIGHT_EMPLOYEE_SATISFACTION"),
			TechnologicalCompatibility: v.GetInt("WORKFLOW_WEIGHT_TECHNOLOGICAL_COMPATIBILITY"),
			ImplementationEase:         v.GetInt("WORKFLOW_WEIGHT_IMPLEMENTATION_EASE"),
			CostBenefit:                v.GetInt("WORKFLOW_WEIGHT_COST_BENEFIT"),
		},
		SubmissionPoints: v.GetInt("WORKFLOW_SUBMISSION_POINTS"),
		ApprovalPoints:   v.GetInt("WORKFLOW_APPROVAL_POINTS"),
		CompletionPoints: v.GetInt("WORKFLOW_COMPLETION_POINTS"),
	}

	cfg.Rewards = RewardsConfig{
		AllowMultiplePerSuggestion: v.GetBool("REWARDS_ALLOW_MULTIPLE"),
	}

	cfg.Stats = StatsConfig{
		CacheTTL: parseDuration(v.GetString("STATS_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Notifications = NotificationsConfig{
		Workers:    v.GetInt("NOTIFICATIONS_WORKERS"),
		MaxRetries: v.GetInt("NOTIFICATIONS_MAX_RETRIES"),
		RetryDelay: parseDuration(v.GetString("NOTIFICATIONS_RETRY_DELAY"), time.Second),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "kaizen_portal")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("WORKFLOW_MIN_FEASIBILITY_SCORE", 2.5)
	v.SetDefault("WORKFLOW_MIN_COST_SCORE", 3)
	v.SetDefault("WORKFLOW_ESCALATION_COST_SCORE", 2)
	v.SetDefault("WORKFLOW_WEIGHT_INNOVATION", 15)
	v.SetDefault("WORKFLOW_WEIGHT_SAFETY", 15)
	v.SetDefault("WORKFLOW_WEIGHT_ENVIRONMENT", 15)
	v.SetDefault("WORKFLOW_WEIGHT_EMPLOYEE_SATISFACTION", 10)
	v.SetDefault("WORKFLOW_WEIGHT_TECHNOLOGICAL_COMPATIBILITY", 15)
	v.SetDefault("WORKFLOW_WEIGHT_IMPLEMENTATION_EASE", 15)
	v.SetDefault("WORKFLOW_WEIGHT_COST_BENEFIT", 15)
	v.SetDefault("WORKFLOW_SUBMISSION_POINTS", 10)
	v.SetDefault("WORKFLOW_APPROVAL_POINTS", 20)
	v.SetDefault("WORKFLOW_COMPLETION_POINTS", 50)

	v.SetDefault("REWARDS_ALLOW_MULTIPLE", false)

	v.SetDefault("STATS_CACHE_TTL", "5m")

	v.SetDefault("NOTIFICATIONS_WORKERS", 2)
	v.SetDefault("NOTIFICATIONS_MAX_RETRIES", 3)
	v.SetDefault("NOTIFICATIONS_RETRY_DELAY", "1s")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
