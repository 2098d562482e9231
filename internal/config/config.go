package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	Logger      LoggerConfig
	Gemini      GeminiConfig
	JWT         JWTConfig
	GoogleOAuth GoogleOAuthConfig
	CORS        CORSConfig
	Analysis    AnalysisConfig
}

type ServerConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	BodyLimit    int // bytes
}

type LoggerConfig struct {
	Level string
	Env   string
}

type GeminiConfig struct {
	APIKey          string
	Model           string
	Temperature     float64
	MaxOutputTokens int
}

type JWTConfig struct {
	SecretKey       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

type CORSConfig struct {
	AllowOrigins string
}

type AnalysisConfig struct {
	// MaxAttempts is the fixed retry budget for one analysis call.
	MaxAttempts int
	// MaxContentBytes caps the lecture text accepted for analysis.
	MaxContentBytes int
	RequestTimeout  time.Duration
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	if os.Getenv("ENV") == "test" {
		viper.AddConfigPath("../../config")
		viper.AddConfigPath("../../")
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	viper.AutomaticEnv()

	viper.SetDefault("server.port", 8090)
	viper.SetDefault("server.read_timeout", 20)
	viper.SetDefault("server.write_timeout", 20)
	viper.SetDefault("server.body_limit_mb", 10)
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("gemini.model", "gemini-1.5-flash")
	viper.SetDefault("gemini.temperature", 0.4)
	viper.SetDefault("gemini.max_output_tokens", 8192)
	viper.SetDefault("jwt.access_token_ttl", 15)
	viper.SetDefault("jwt.refresh_token_ttl", 10080)
	viper.SetDefault("cors.allow_origins", "*")
	viper.SetDefault("analysis.max_attempts", 3)
	viper.SetDefault("analysis.max_content_bytes", 4*1024*1024)
	viper.SetDefault("analysis.request_timeout", 90)

	if err := viper.ReadInConfig(); err != nil {
		// The config file is optional: env vars plus defaults can carry a deployment.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{
		Server: ServerConfig{
			Port:         viper.GetInt("server.port"),
			ReadTimeout:  viper.GetDuration("server.read_timeout") * time.Second,
			WriteTimeout: viper.GetDuration("server.write_timeout") * time.Second,
			BodyLimit:    viper.GetInt("server.body_limit_mb") * 1024 * 1024,
		},
		Logger: LoggerConfig{
			Level: viper.GetString("logger.level"),
			Env:   viper.GetString("logger.env"),
		},
		Gemini: GeminiConfig{
			APIKey:          viper.GetString("gemini.api_key"),
			Model:           viper.GetString("gemini.model"),
			Temperature:     viper.GetFloat64("gemini.temperature"),
			MaxOutputTokens: viper.GetInt("gemini.max_output_tokens"),
		},
		JWT: JWTConfig{
			SecretKey:       viper.GetString("jwt.secret_key"),
			AccessTokenTTL:  viper.GetDuration("jwt.access_token_ttl") * time.Minute,
			RefreshTokenTTL: viper.GetDuration("jwt.refresh_token_ttl") * time.Minute,
		},
		GoogleOAuth: GoogleOAuthConfig{
			ClientID:     viper.GetString("google_oauth.client_id"),
			ClientSecret: viper.GetString("google_oauth.client_secret"),
			RedirectURL:  viper.GetString("google_oauth.redirect_url"),
		},
		CORS: CORSConfig{
			AllowOrigins: viper.GetString("cors.allow_origins"),
		},
		Analysis: AnalysisConfig{
			MaxAttempts:     viper.GetInt("analysis.max_attempts"),
			MaxContentBytes: viper.GetInt("analysis.max_content_bytes"),
			RequestTimeout:  viper.GetDuration("analysis.request_timeout") * time.Second,
		},
	}

	// Environment variables win over file values.
	if env := os.Getenv("ENV"); env != "" {
		config.Logger.Env = env
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		config.Gemini.APIKey = apiKey
	}
	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		config.Gemini.Model = model
	}
	if secret := os.Getenv("JWT_SECRET_KEY"); secret != "" {
		config.JWT.SecretKey = secret
	}
	if clientID := os.Getenv("GOOGLE_CLIENT_ID"); clientID != "" {
		config.GoogleOAuth.ClientID = clientID
	}
	if clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET"); clientSecret != "" {
		config.GoogleOAuth.ClientSecret = clientSecret
	}
	if redirectURL := os.Getenv("GOOGLE_REDIRECT_URL"); redirectURL != "" {
		config.GoogleOAuth.RedirectURL = redirectURL
	}

	return config, nil
}
