package utils

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Session  SessionConfig
	Booking  BookingConfig
	Wallet   WalletConfig
	Cron     CronConfig
	WhatsApp WhatsAppConfig
}

type AppConfig struct {
	Name        string
	Port        string
	Debug       bool
	LogPath     string
	Timezone    string
	CORSOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	MaxConns int32
}

type SessionConfig struct {
	ExpiryHours int
}

type BookingConfig struct {
	// unpaid initiated bookings older than this are expired
	GraceMinutes int
}

type WalletConfig struct {
	ReferralReward     int64
	SignupBonus        int64
	CreditValidityDays int
}

type CronConfig struct {
	Secret           string
	ServiceJWTSecret string
}

type WhatsAppConfig struct {
	APIURL   string
	APIToken string
	Timeout  time.Duration
}

// GracePeriod returns the abandoned-booking window.
func (c BookingConfig) GracePeriod() time.Duration {
	if c.GraceMinutes <= 0 {
		return 2 * time.Hour
	}
	return time.Duration(c.GraceMinutes) * time.Minute
}

// CreditValidity returns how long an earned wallet credit stays spendable.
// Zero means credits never expire.
func (c WalletConfig) CreditValidity() time.Duration {
	if c.CreditValidityDays <= 0 {
		return 0
	}
	return time.Duration(c.CreditValidityDays) * 24 * time.Hour
}

// Location resolves the configured timezone, falling back to UTC.
func (c AppConfig) Location() *time.Location {
	if c.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func LoadConfig() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")

	// Set defaults
	viper.SetDefault("APP_NAME", "travel-booking")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("DEBUG", false)
	viper.SetDefault("DB_MAX_CONNS", 10)
	viper.SetDefault("LOG_PATH", "logs/")
	viper.SetDefault("APP_TIMEZONE", "Asia/Kolkata")
	viper.SetDefault("CORS_ORIGINS", "*")
	viper.SetDefault("SESSION_EXPIRY_HOURS", 24)
	viper.SetDefault("BOOKING_GRACE_MINUTES", 120)
	viper.SetDefault("REFERRAL_REWARD", 500)
	viper.SetDefault("SIGNUP_BONUS", 0)
	viper.SetDefault("WALLET_CREDIT_VALIDITY_DAYS", 180)
	viper.SetDefault("WHATSAPP_TIMEOUT_SECONDS", 10)

	if err := viper.ReadInConfig(); err != nil {
		// env-only deployments have no .env file
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	viper.AutomaticEnv()

	config := &Config{
		App: AppConfig{
			Name:        viper.GetString("APP_NAME"),
			Port:        viper.GetString("PORT"),
			Debug:       viper.GetBool("DEBUG"),
			LogPath:     viper.GetString("LOG_PATH"),
			Timezone:    viper.GetString("APP_TIMEZONE"),
			CORSOrigins: splitList(viper.GetString("CORS_ORIGINS")),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			Name:     viper.GetString("DB_NAME"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASS"),
			MaxConns: viper.GetInt32("DB_MAX_CONNS"),
		},
		Session: SessionConfig{
			ExpiryHours: viper.GetInt("SESSION_EXPIRY_HOURS"),
		},
		Booking: BookingConfig{
			GraceMinutes: viper.GetInt("BOOKING_GRACE_MINUTES"),
		},
		Wallet: WalletConfig{
			ReferralReward:     viper.GetInt64("REFERRAL_REWARD"),
			SignupBonus:        viper.GetInt64("SIGNUP_BONUS"),
			CreditValidityDays: viper.GetInt("WALLET_CREDIT_VALIDITY_DAYS"),
		},
		Cron: CronConfig{
			Secret:           viper.GetString("CRON_SECRET"),
			ServiceJWTSecret: viper.GetString("SERVICE_JWT_SECRET"),
		},
		WhatsApp: WhatsAppConfig{
			APIURL:   viper.GetString("WHATSAPP_API_URL"),
			APIToken: viper.GetString("WHATSAPP_API_TOKEN"),
			Timeout:  time.Duration(viper.GetInt("WHATSAPP_TIMEOUT_SECONDS")) * time.Second,
		},
	}

	return config, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
