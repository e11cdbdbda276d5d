package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
	Region          string
}

type MailConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	From            string
	QueueSize       int
}

type DatabaseConfig struct {
	URL          string
	Host         string
	User         string
	Password     string
	Name         string
	Port         string
	QueryTimeout time.Duration
}

type Config struct {
	Port              string
	JWTSecret         string
	Database          DatabaseConfig
	R2                R2Config
	Mail              MailConfig
	ReconcileInterval time.Duration
}

// Load reads configuration from the environment, after loading a .env file
// if one is present.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	return &Config{
		Port:      getEnv("PORT", "8080"),
		JWTSecret: os.Getenv("JWT_SECRET"),
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			Host:         getEnv("DB_HOST", "localhost"),
			User:         os.Getenv("DB_USER"),
			Password:     os.Getenv("DB_PASSWORD"),
			Name:         os.Getenv("DB_NAME"),
			Port:         getEnv("DB_PORT", "5432"),
			QueryTimeout: getDuration("DB_QUERY_TIMEOUT", 5*time.Second),
		},
		R2: GetR2Config(),
		Mail: MailConfig{
			Region:          getEnv("SES_REGION", "us-east-1"),
			AccessKeyID:     os.Getenv("SES_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("SES_SECRET_ACCESS_KEY"),
			From:            os.Getenv("MAIL_FROM"),
			QueueSize:       getInt("NOTIFY_QUEUE_SIZE", 100),
		},
		ReconcileInterval: getDuration("RECONCILE_INTERVAL", time.Minute),
	}
}

func GetR2Config() R2Config {
	return R2Config{
		AccountID:       os.Getenv("CLOUDFLARE_ACCOUNT_ID"),
		AccessKeyID:     os.Getenv("CLOUDFLARE_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("CLOUDFLARE_SECRET_ACCESS_KEY"),
		BucketName:      os.Getenv("CLOUDFLARE_BUCKET_NAME"),
		PublicURL:       os.Getenv("CLOUDFLARE_PUBLIC_URL"),
		Region:          "auto",
	}
}

// DSN builds the postgres connection string. DATABASE_URL wins when set.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		d.Host, d.User, d.Password, d.Name, d.Port)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("Invalid %s=%q, using %d", key, v, fallback)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Printf("Invalid %s=%q, using %s", key, v, fallback)
		return fallback
	}
	return d
}
