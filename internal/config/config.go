package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	RegistryURL string
	Headless    bool
	PageSize    int

	LemitBaseURL string
	LemitToken   string

	TallosBaseURL string
	TallosToken   string

	// Browser wait tuning. The registry renders results asynchronously, so
	// every page advance is bracketed by a busy-indicator cycle plus a
	// settle delay for rendering lag.
	BusyAppearTimeout time.Duration
	BusyClearTimeout  time.Duration
	FormSettle        time.Duration
	ResultsSettle     time.Duration
	PageSettle        time.Duration
	InterPageDelay    time.Duration
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: Error loading .env file")
	}

	return &Config{
		Port:        getEnv("PORT", "8080"),
		RegistryURL: getEnv("REGISTRY_URL", "https://crmma.org.br/busca-medicos"),
		Headless:    getBoolEnv("HEADLESS", true),
		PageSize:    getIntEnv("PAGE_SIZE", 10),

		LemitBaseURL: getEnv("LEMIT_BASE_URL", "https://api.lemit.com.br/api/v1"),
		LemitToken:   getEnv("LEMIT_TOKEN", ""),

		TallosBaseURL: getEnv("TALLOS_BASE_URL", "https://api.tallos.com.br"),
		TallosToken:   getEnv("TALLOS_TOKEN", ""),

		BusyAppearTimeout: getDurationEnv("BUSY_APPEAR_TIMEOUT_MS", 10000),
		BusyClearTimeout:  getDurationEnv("BUSY_CLEAR_TIMEOUT_MS", 30000),
		FormSettle:        getDurationEnv("FORM_SETTLE_MS", 5000),
		ResultsSettle:     getDurationEnv("RESULTS_SETTLE_MS", 20000),
		PageSettle:        getDurationEnv("PAGE_SETTLE_MS", 3000),
		InterPageDelay:    getDurationEnv("INTER_PAGE_DELAY_MS", 2000),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getBoolEnv(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		log.Printf("Warning: invalid %s value %q, using default", key, value)
		return fallback
	}
	return b
}

func getIntEnv(key string, fallback int) int {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		log.Printf("Warning: invalid %s value %q, using default", key, value)
		return fallback
	}
	return n
}

func getDurationEnv(key string, fallbackMs int) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return time.Duration(fallbackMs) * time.Millisecond
	}
	ms, err := strconv.Atoi(value)
	if err != nil || ms < 0 {
		log.Printf("Warning: invalid %s value %q, using default", key, value)
		return time.Duration(fallbackMs) * time.Millisecond
	}
	return time.Duration(ms) * time.Millisecond
}
