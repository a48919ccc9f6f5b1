package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App          AppConfig          `envPrefix:"LETSCHAT_APP_"`
	Server       ServerConfig       `envPrefix:"LETSCHAT_SERVER_"`
	Log          LogConfig          `envPrefix:"LETSCHAT_LOG_"`
	Database     DatabaseConfig     `envPrefix:"LETSCHAT_DATABASE_"`
	JWT          JWTConfig          `envPrefix:"LETSCHAT_JWT_"`
	RefreshToken RefreshTokenConfig `envPrefix:"LETSCHAT_REFRESH_TOKEN_"`
	Auth         AuthConfig         `envPrefix:"LETSCHAT_AUTH_"`
	Mail         MailConfig         `envPrefix:"LETSCHAT_MAIL_"`
	RateLimit    RateLimitConfig    `envPrefix:"LETSCHAT_RATELIMIT_"`
}

type AppConfig struct {
	Name string `env:"NAME" envDefault:"letschat"`
	URL  string `env:"URL" envDefault:"http://localhost:8080"`
}

type ServerConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
	Host string `env:"HOST" envDefault:"localhost"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Output string `env:"OUTPUT" envDefault:"stdout"`
}

type DatabaseConfig struct {
	Driver      string `env:"DRIVER" envDefault:"sqlite"`
	DSN         string `env:"DSN" envDefault:"letschat.db"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

type JWTConfig struct {
	SecretKey    string        `env:"SECRET_KEY"`
	Issuer       string        `env:"ISSUER" envDefault:"letschat"`
	AccessExpiry time.Duration `env:"ACCESS_EXPIRY" envDefault:"15m"`
}

type RefreshTokenConfig struct {
	TokenLength  int           `env:"TOKEN_LENGTH" envDefault:"32"`
	Expiry       time.Duration `env:"EXPIRY" envDefault:"720h"`
	CookieSecure bool          `env:"COOKIE_SECURE" envDefault:"true"`
}

type AuthConfig struct {
	MinLength      int  `env:"PASSWORD_MIN_LENGTH" envDefault:"8"`
	RequireUpper   bool `env:"PASSWORD_REQUIRE_UPPER" envDefault:"true"`
	RequireLower   bool `env:"PASSWORD_REQUIRE_LOWER" envDefault:"true"`
	RequireNumber  bool `env:"PASSWORD_REQUIRE_NUMBER" envDefault:"true"`
	RequireSpecial bool `env:"PASSWORD_REQUIRE_SPECIAL" envDefault:"false"`
	BcryptCost     int  `env:"BCRYPT_COST" envDefault:"12"`
}

type MailConfig struct {
	Enabled     bool   `env:"ENABLED" envDefault:"false"`
	Host        string `env:"HOST" envDefault:"localhost"`
	Port        int    `env:"PORT" envDefault:"587"`
	Username    string `env:"USERNAME"`
	Password    string `env:"PASSWORD"`
	Encryption  string `env:"ENCRYPTION" envDefault:"starttls"`
	FromAddress string `env:"FROM_ADDRESS"`
	FromName    string `env:"FROM_NAME" envDefault:"letschat"`
}

type RateLimitConfig struct {
	Enabled     bool          `env:"ENABLED" envDefault:"true"`
	SignupRate  int           `env:"SIGNUP_RATE" envDefault:"5"`
	LoginRate   int           `env:"LOGIN_RATE" envDefault:"10"`
	RefreshRate int           `env:"REFRESH_RATE" envDefault:"30"`
	Period      time.Duration `env:"PERIOD" envDefault:"1m"`
	Store       string        `env:"STORE" envDefault:"memory"`
}

func LoadConfig(cfg *Config) error {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	return env.Parse(cfg)
}
