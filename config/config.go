package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/prasetyowira/qrstudio/domain/style"
)

type Config struct {
	Port            int
	DatabaseURL     string
	AuthUser        string
	AuthPass        string
	CacheSize       int
	SessionCapacity int
	LogLevel        string
	JPEGQuality     int
	Style           style.Config
}

// LoadConfig reads the environment, after loading an optional .env file
func LoadConfig() Config {
	_ = godotenv.Load()

	port, _ := strconv.Atoi(getEnv("PORT", "8080"))
	cacheSize, _ := strconv.Atoi(getEnv("CACHE_SIZE", "1000"))
	sessionCapacity, _ := strconv.Atoi(getEnv("SESSION_CAPACITY", "100"))
	jpegQuality, _ := strconv.Atoi(getEnv("JPEG_QUALITY", "92"))

	return Config{
		Port:            port,
		DatabaseURL:     getEnv("DATABASE_URL", "qrstudio.db"),
		AuthUser:        getEnv("AUTH_USER", "admin"),
		AuthPass:        getEnv("AUTH_PASS", "password"),
		CacheSize:       cacheSize,
		SessionCapacity: sessionCapacity,
		LogLevel:        getEnv("LOG_LEVEL", "INFO"),
		JPEGQuality:     jpegQuality,
		Style:           DefaultStyle(),
	}
}

// DefaultStyle is the committed style new sessions and CLI runs start with.
// Values that do not parse fall back to the built-in defaults.
func DefaultStyle() style.Config {
	d := style.DefaultConfig()
	c := style.Config{
		PixelSize:  style.ParseDimension(getEnv("DEFAULT_SIZE", ""), d.PixelSize, style.MinPixelSize, style.MaxPixelSize),
		Padding:    style.ParseDimension(getEnv("DEFAULT_PADDING", ""), d.Padding, style.MinPadding, style.MaxPadding),
		Foreground: getEnv("DEFAULT_FG", d.Foreground),
		Background: getEnv("DEFAULT_BG", d.Background),
		Level:      style.Level(getEnv("DEFAULT_LEVEL", string(d.Level))),
		Format:     style.Format(getEnv("DEFAULT_FORMAT", string(d.Format))),
	}
	return c.Normalize()
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
