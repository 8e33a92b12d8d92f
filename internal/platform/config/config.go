package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DefaultPort                = "8080"
	DefaultAPIBaseURL          = "http://localhost:3000/api"
	DefaultFrontendURL         = "http://localhost:8080"
	DefaultHTTPTimeout         = 10 * time.Second
	DefaultScanRefreshInterval = 15 * time.Second
	DefaultIdleTimeout         = 30 * time.Minute
)

type Config struct {
	Env  string
	Port string

	// API externa de PetGuardian (auth, pets, scans).
	APIBaseURL string
	// Origen público que se codifica en los QR: <FrontendURL>/pet/<id>.
	FrontendURL string

	// Opcional: si viene, el storage durable de tokens usa Postgres.
	DBDSN string
	// Firma de la cookie de sesión del browser.
	SessionSecret string

	HTTPTimeout         time.Duration
	ScanRefreshInterval time.Duration
	// Dashboards, vistas de perfil y sesiones anónimas sin requests por más
	// de este tiempo se descartan.
	IdleTimeout time.Duration

	// Carpeta del CLI (token + archivos exportados).
	PetctlHome string

	// Warnings son los valores ignorados al cargar (.env ilegible, duraciones
	// inválidas). Los mains los pasan al logger.
	Warnings []string
}

// Load lee .env (si existe) y luego el entorno. Las variables de entorno
// ganan sobre el archivo porque godotenv no pisa valores ya seteados.
func Load() *Config {
	var warn warnings
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		warn.add("ignoring .env: %v", err)
	}

	cfg := &Config{
		Env:                 getEnv("ENV", "development"),
		Port:                getEnv("PORT", DefaultPort),
		APIBaseURL:          strings.TrimRight(getEnv("API_BASE_URL", DefaultAPIBaseURL), "/"),
		FrontendURL:         strings.TrimRight(getEnv("FRONTEND_URL", DefaultFrontendURL), "/"),
		DBDSN:               getEnv("DB_DSN", ""),
		SessionSecret:       getEnv("SESSION_SECRET", ""),
		HTTPTimeout:         getEnvAsDuration(&warn, "HTTP_TIMEOUT", DefaultHTTPTimeout),
		ScanRefreshInterval: getEnvAsDuration(&warn, "SCAN_REFRESH_INTERVAL", DefaultScanRefreshInterval),
		IdleTimeout:         getEnvAsDuration(&warn, "IDLE_TIMEOUT", DefaultIdleTimeout),
		PetctlHome:          getEnv("PETCTL_HOME", defaultPetctlHome()),
	}
	cfg.Warnings = warn
	return cfg
}

type warnings []string

func (w *warnings) add(format string, args ...any) {
	*w = append(*w, fmt.Sprintf(format, args...))
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Env, "production")
}

func defaultPetctlHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".petguardian"
	}
	return filepath.Join(home, ".petguardian")
}

func getEnv(key string, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

// getEnvAsDuration acepta "15s", "2m" o segundos a secas ("15").
func getEnvAsDuration(warn *warnings, key string, defaultVal time.Duration) time.Duration {
	valStr := strings.TrimSpace(os.Getenv(key))
	if valStr == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(valStr); err == nil && d > 0 {
		return d
	}
	if n, err := strconv.Atoi(valStr); err == nil && n > 0 {
		return time.Duration(n) * time.Second
	}
	warn.add("invalid value for %s, using default %s", key, defaultVal)
	return defaultVal
}
