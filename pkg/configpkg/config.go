// Package configpkg provides parsing functionality for environment variables.
package configpkg

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration of the application.
//
// The values are read by viper fron a config file or environement variables.
type Config struct {
	DBDriver             string        `mapstructure:"DB_DRIVER"`
	DBSource             string        `mapstructure:"DB_SOURCE"`
	MigrationURL         string        `mapstructure:"MIGRATION_URL"`
	ServerAddress        string        `mapstructure:"SERVER_ADDRESS"`
	TokenType            string        `mapstructure:"TOKEN_TYPE"`
	TokenSymmetricKey    string        `mapstructure:"TOKEN_SYMMETRIC_KEY"`
	AccessTokenDuration  time.Duration `mapstructure:"ACCESS_TOKEN_DURATION"`
	RefreshTokenDuration time.Duration `mapstructure:"REFRESH_TOKEN_DURATION"`
	OTPDuration          time.Duration `mapstructure:"OTP_DURATION"`
	RedisAddress         string        `mapstructure:"REDIS_ADDRESS"`
	RedisPassword        string        `mapstructure:"REDIS_PASSWORD"`
	MailBackend          string        `mapstructure:"MAIL_BACKEND"`
	MailFrom             string        `mapstructure:"MAIL_FROM"`
	SMTPHost             string        `mapstructure:"SMTP_HOST"`
	SMTPPort             int           `mapstructure:"SMTP_PORT"`
	SMTPUsername         string        `mapstructure:"SMTP_USERNAME"`
	SMTPPassword         string        `mapstructure:"SMTP_PASSWORD"`
	KafkaBrokers         string        `mapstructure:"KAFKA_BROKERS"`
	KafkaTransferTopic   string        `mapstructure:"KAFKA_TRANSFER_TOPIC"`
	Environement         string        `mapstructure:"GO_ENV"`
}

// Brokers returns the comma separated KafkaBrokers as a slice.
func (c Config) Brokers() []string {
	var brokers []string

	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	return brokers
}

// Load read configuration from file or environment variables.
func Load(path string) (Config, error) {
	var c Config

	v := viper.New()

	v.AddConfigPath(path)
	v.SetConfigName("app")
	v.SetConfigType("env")

	v.SetDefault("TOKEN_TYPE", "paseto")
	v.SetDefault("OTP_DURATION", 5*time.Minute)
	v.SetDefault("MAIL_BACKEND", "console")
	v.SetDefault("MAIL_FROM", "no-reply@lifemanager.local")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("KAFKA_TRANSFER_TOPIC", "transfer_completed")
	v.SetDefault("MIGRATION_URL", "file://db/migration")

	v.AutomaticEnv()

	err := v.ReadInConfig()
	if err != nil {
		return c, err
	}

	err = v.Unmarshal(&c)
	if err != nil {
		return c, err
	}

	return c, nil
}
