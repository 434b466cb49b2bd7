package config

import (
	"fmt"
	"net/mail"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/flag-backend/internal/settings"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// Admin
	AdminEmails  string
	AdminUserIDs string
	AdminToken   string

	// Server
	Port        string
	CORSOrigins string

	// Site (feeds mail templates and user URL builders)
	SiteName      string
	PublicBaseURL string
	AdminBaseURL  string

	// Flag policy defaults (overridable per content type via the settings file)
	FlagModels             string // CSV allow-list; empty allows every model
	LimitForObject         int
	LimitSameObjectForUser int
	AllowComments          bool
	SendMails              bool
	SendMailsFrom          string
	SendMailsTo            string // RFC 5322 address list
	SendMailsRules         string // "min:step,min:step"
	FlagSettingsPath       string // optional JSON per-model overrides

	// Mail relay
	MailEndpoint    string
	MailAccessKey   string
	MailTemplateDir string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", ""),
		DBName:     getEnv("DB_NAME", "flag_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "15m")),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h")),

		AdminEmails:  getEnv("ADMIN_EMAILS", ""),
		AdminUserIDs: getEnv("ADMIN_USER_IDS", ""),
		AdminToken:   getEnv("ADMIN_TOKEN", ""),

		Port:        getEnv("PORT", "8080"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),

		SiteName:      getEnv("SITE_NAME", "flag-backend"),
		PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
		AdminBaseURL:  getEnv("ADMIN_BASE_URL", ""),

		FlagModels:             getEnv("FLAG_MODELS", ""),
		LimitForObject:         parseInt(getEnv("FLAG_LIMIT_FOR_OBJECT", "0")),
		LimitSameObjectForUser: parseInt(getEnv("FLAG_LIMIT_SAME_OBJECT_FOR_USER", "0")),
		AllowComments:          parseBool(getEnv("FLAG_ALLOW_COMMENTS", "false")),
		SendMails:              parseBool(getEnv("FLAG_SEND_MAILS", "false")),
		SendMailsFrom:          getEnv("FLAG_SEND_MAILS_FROM", ""),
		SendMailsTo:            getEnv("FLAG_SEND_MAILS_TO", ""),
		SendMailsRules:         getEnv("FLAG_SEND_MAILS_RULES", ""),
		FlagSettingsPath:       getEnv("FLAG_SETTINGS_PATH", ""),

		MailEndpoint:    getEnv("MAIL_ENDPOINT", ""),
		MailAccessKey:   getEnv("MAIL_ACCESS_KEY", ""),
		MailTemplateDir: getEnv("MAIL_TEMPLATE_DIR", ""),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

// FlagSettings builds the layered flag policy resolver from the configured
// global defaults, then merges the optional per-model settings file.
func (c *Config) FlagSettings() (*settings.Settings, error) {
	def := settings.DefaultModel()
	def.LimitForObject = c.LimitForObject
	def.LimitSameObjectForUser = c.LimitSameObjectForUser
	def.AllowComments = c.AllowComments
	def.SendMails = c.SendMails
	def.SendMailsFrom = c.SendMailsFrom

	if c.SendMailsTo != "" {
		addrs, err := mail.ParseAddressList(c.SendMailsTo)
		if err != nil {
			return nil, fmt.Errorf("invalid FLAG_SEND_MAILS_TO: %w", err)
		}
		for _, a := range addrs {
			def.SendMailsTo = append(def.SendMailsTo, settings.Recipient{
				Name:    a.Name,
				Address: a.Address,
			})
		}
	}

	rules, err := settings.ParseMailRules(c.SendMailsRules)
	if err != nil {
		return nil, fmt.Errorf("invalid FLAG_SEND_MAILS_RULES: %w", err)
	}
	def.SendMailsRules = rules

	s := settings.New(def, splitCSV(c.FlagModels))
	if c.FlagSettingsPath != "" {
		if err := s.LoadFile(c.FlagSettingsPath); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return 15 * time.Minute
	}
	return d
}

func parseInt(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false
	}
	return b
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
