package common

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	OCR    OCRConfig
	PDF    PDFConfig
	Vision VisionConfig
	Batch  BatchConfig
}

// OCRConfig holds local recognition configuration
type OCRConfig struct {
	Engine     string // "exec" | "embedded"
	Tesseract  string // binary name or absolute path; if empty -> "tesseract"
	Language   string // e.g. "rus+eng"
	Thresholds []int  // binarization thresholds tried by the variant grid
	PSMModes   []int  // page segmentation modes tried by the variant grid
	MinWidth   int    // upscale target for the local path
	TmpDir     string // scratch dir for preprocessed artifacts; "" -> os.TempDir
}

// PDFConfig holds PDF strategy configuration
type PDFConfig struct {
	Pdftotext   string // binary name or absolute path; if empty -> "pdftotext"
	Pdftoppm    string // binary name or absolute path; if empty -> "pdftoppm"
	OCRTool     string // optional external pdf-ocr helper; "" disables the strategy
	DPI         int    // rasterization DPI for scanned PDFs
	MaxPages    int    // 0 = no limit
	SizeCapMB   int64  // text-layer extraction is skipped above this size
	Retention   time.Duration
}

// VisionConfig holds cloud vision recognition configuration
type VisionConfig struct {
	Provider    string // "openai" | "gemini"
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
}

// BatchConfig holds batch orchestration configuration
type BatchConfig struct {
	WindowSize  int
	WindowDelay time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		OCR: OCRConfig{
			Engine:     getEnv("OCR_ENGINE", "exec"),
			Tesseract:  getEnv("TESSERACT_BIN", "tesseract"),
			Language:   getEnv("OCR_LANG", "rus+eng"),
			Thresholds: getEnvAsIntList("OCR_THRESHOLDS", []int{140, 170}),
			PSMModes:   getEnvAsIntList("OCR_PSM_MODES", []int{3, 4, 6, 11, 12}),
			MinWidth:   getEnvAsInt("OCR_MIN_WIDTH", 1000),
			TmpDir:     getEnv("OCR_TMP_DIR", ""),
		},
		PDF: PDFConfig{
			Pdftotext: getEnv("PDFTOTEXT_BIN", "pdftotext"),
			Pdftoppm:  getEnv("PDFTOPPM_BIN", "pdftoppm"),
			OCRTool:   getEnv("PDF_OCR_TOOL", ""),
			DPI:       getEnvAsInt("PDF_DPI", 300),
			MaxPages:  getEnvAsInt("PDF_MAX_PAGES", 0),
			SizeCapMB: int64(getEnvAsInt("PDF_SIZE_CAP_MB", 100)),
			Retention: getEnvAsDuration("PDF_RETENTION", 72*time.Hour),
		},
		Vision: VisionConfig{
			Provider:    getEnv("VISION_PROVIDER", "openai"),
			Model:       getEnv("VISION_MODEL", "gpt-4o"),
			APIKey:      getEnv("VISION_API_KEY", os.Getenv("OPENAI_API_KEY")),
			BaseURL:     getEnv("VISION_BASE_URL", "https://api.openai.com/v1"),
			Temperature: getEnvAsFloat32("VISION_TEMPERATURE", 0.1),
			Timeout:     getEnvAsDuration("VISION_TIMEOUT", 45*time.Second),
		},
		Batch: BatchConfig{
			WindowSize:  getEnvAsInt("BATCH_WINDOW", 3),
			WindowDelay: getEnvAsDuration("BATCH_WINDOW_DELAY", 100*time.Millisecond),
		},
	}
}

// Helper functions for environment variable parsing
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

func getEnvAsIntList(key string, defaultValue []int) []int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []int
	for _, part := range strings.Split(value, ",") {
		if v, err := strconv.Atoi(strings.TrimSpace(part)); err == nil {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.OCR.Engine != "exec" && c.OCR.Engine != "embedded" {
		return NewAppError("CONFIG_ERROR", "OCR_ENGINE must be exec or embedded", ErrInvalidInput)
	}
	if len(c.OCR.Thresholds) == 0 || len(c.OCR.PSMModes) == 0 {
		return NewAppError("CONFIG_ERROR", "OCR_THRESHOLDS and OCR_PSM_MODES must be non-empty", ErrInvalidInput)
	}
	if c.Batch.WindowSize <= 0 {
		return NewAppError("CONFIG_ERROR", "BATCH_WINDOW must be positive", ErrInvalidInput)
	}
	if c.Vision.Provider != "openai" && c.Vision.Provider != "gemini" {
		return NewAppError("CONFIG_ERROR", "VISION_PROVIDER must be openai or gemini", ErrInvalidInput)
	}
	return nil
}
