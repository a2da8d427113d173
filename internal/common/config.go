package common

import (
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Extract  ExtractConfig
	LLM      LLMConfig
	Pipeline PipelineConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr       string
	UploadDir  string
	MaxRequest int64
}

// ExtractConfig holds text-extraction configuration.
type ExtractConfig struct {
	Pdftotext   string
	Tesseract   string
	OCRLanguage string
}

// LLMConfig holds structuring-service configuration.
type LLMConfig struct {
	BaseURL       string
	APIKey        string
	Model         string
	Temperature   float32
	MaxTextLength int

	// Declared by the original system but not applied to any stage.
	// See DESIGN.md before wiring these anywhere.
	MaxRetries int
	Timeout    time.Duration
}

// PipelineConfig holds worker pool configuration.
type PipelineConfig struct {
	Workers   int
	QueueSize int
}

// LoadConfig loads configuration from environment variables.
func LoadConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:       getEnv("HTTP_ADDR", ":8080"),
			UploadDir:  getEnv("UPLOAD_DIR", os.TempDir()),
			MaxRequest: int64(getEnvAsInt("MAX_REQUEST_BYTES", 12<<20)),
		},
		Extract: ExtractConfig{
			Pdftotext:   getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Tesseract:   getEnv("TESSERACT_BIN", "tesseract"),
			OCRLanguage: getEnv("OCR_LANGUAGE", "eng"),
		},
		LLM: LLMConfig{
			BaseURL:       getEnv("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
			APIKey:        getEnv("GROQ_API_KEY", ""),
			Model:         getEnv("GROQ_MODEL", "llama-3.3-70b-versatile"),
			Temperature:   getEnvAsFloat32("GROQ_TEMPERATURE", 0.1),
			MaxTextLength: getEnvAsInt("MAX_TEXT_LENGTH", 6000),
			MaxRetries:    getEnvAsInt("MAX_RETRIES", 3),
			Timeout:       getEnvAsDuration("REQUEST_TIMEOUT", 30*time.Second),
		},
		Pipeline: PipelineConfig{
			Workers:   getEnvAsInt("PIPELINE_WORKERS", 4),
			QueueSize: getEnvAsInt("PIPELINE_QUEUE_SIZE", 256),
		},
	}
}

// Validate validates the loaded configuration.
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "GROQ_API_KEY is required", ErrInvalidInput)
	}
	if c.Server.Addr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.LLM.MaxTextLength <= 0 {
		return NewAppError("CONFIG_ERROR", "MAX_TEXT_LENGTH must be positive", ErrInvalidInput)
	}
	return nil
}

// Helper functions for environment variable parsing.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
