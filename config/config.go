package config

import (
	"crypto/rand"
	"encoding/base64"
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort          string
	AppURL           string
	Environment      string
	DataDir          string
	GitHubAPIURL     string
	GitHubToken      string
	LocalPostsDir    string
	DefaultRepoURL   string
	DefaultPostsPath string
	SessionSecret    string
	CSRFSecret       string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		if _, exists := os.Stat(".env"); exists == nil {
			log.Println("Warning: .env file exists but couldn't be loaded:", err)
		}
	}

	environment := getEnv("ENVIRONMENT", "development")
	sessionSecret := getEnv("SESSION_SECRET", "")
	csrfSecret := getEnv("CSRF_SECRET", "")

	if sessionSecret == "" {
		sessionSecret = generateRandomSecret("SESSION_SECRET")
	}
	if csrfSecret == "" {
		csrfSecret = generateRandomSecret("CSRF_SECRET")
	}

	appPort := getEnv("APP_PORT", "8080")
	appURL := getEnv("APP_URL", "")

	if appURL == "" {
		if environment == "production" {
			log.Println("Warning: APP_URL not set in production, CSRF origin validation may fail")
		} else {
			appURL = "http://localhost:" + appPort
		}
	}

	cfg := &Config{
		AppPort:          appPort,
		AppURL:           appURL,
		Environment:      environment,
		DataDir:          getEnv("DATA_DIR", "data"),
		GitHubAPIURL:     getEnv("GITHUB_API_URL", "https://api.github.com"),
		GitHubToken:      getEnv("GITHUB_TOKEN", ""),
		LocalPostsDir:    getEnv("LOCAL_POSTS_DIR", "posts"),
		DefaultRepoURL:   getEnv("DEFAULT_REPO_URL", "https://github.com/monokaijs/feeds"),
		DefaultPostsPath: getEnv("DEFAULT_POSTS_PATH", "posts"),
		SessionSecret:    sessionSecret,
		CSRFSecret:       csrfSecret,
	}

	log.Printf("Configuration loaded:")
	log.Printf("  Environment: %s", cfg.Environment)
	log.Printf("  APP_PORT: %s", cfg.AppPort)
	log.Printf("  DATA_DIR: %s", cfg.DataDir)
	log.Printf("  LOCAL_POSTS_DIR: %s", cfg.LocalPostsDir)

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func generateRandomSecret(name string) string {
	log.Printf("Warning: %s not set, generating random secret (will not persist across restarts)", name)

	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatalf("Failed to generate random secret for %s: %v", name, err)
	}

	return base64.StdEncoding.EncodeToString(b)
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
