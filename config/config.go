package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port           string        `mapstructure:"port"`
	Mode           string        `mapstructure:"mode"`
	AllowedOrigins []string      `mapstructure:"allowedOrigins"`
	ReadTimeout    time.Duration `mapstructure:"readTimeout"`
	WriteTimeout   time.Duration `mapstructure:"writeTimeout"`
	IdleTimeout    time.Duration `mapstructure:"idleTimeout"`
	RequestTimeout time.Duration `mapstructure:"requestTimeout"`
}

type MongoConfig struct {
	// Driver is "mongo" in production; "memory" keeps everything in process for local runs.
	Driver         string        `mapstructure:"driver"`
	URI            string        `mapstructure:"uri"`
	DBName         string        `mapstructure:"dbName"`
	ConnectTimeout time.Duration `mapstructure:"connectTimeout"`
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	Expiration time.Duration `mapstructure:"expiration"`
}

type MediaConfig struct {
	Provider string `mapstructure:"provider"`
	Folder   string `mapstructure:"folder"`
}

type CloudinaryConfig struct {
	CloudName string `mapstructure:"cloudName"`
	APIKey    string `mapstructure:"apiKey"`
	APISecret string `mapstructure:"apiSecret"`
}

type S3Config struct {
	Bucket           string `mapstructure:"bucket"`
	Region           string `mapstructure:"region"`
	AccessKeyID      string `mapstructure:"accessKeyID"`
	SecretAccessKey  string `mapstructure:"secretAccessKey"`
	CloudFrontDomain string `mapstructure:"cloudFrontDomain"`
}

type EmailConfig struct {
	APIKey       string `mapstructure:"apiKey"`
	From         string `mapstructure:"from"`
	AdminAddress string `mapstructure:"adminAddress"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"botToken"`
}

type GeminiConfig struct {
	APIKey string `mapstructure:"apiKey"`
	Model  string `mapstructure:"model"`
}

type StripeConfig struct {
	SecretKey     string `mapstructure:"secretKey"`
	WebhookSecret string `mapstructure:"webhookSecret"`
	// ListingFee is expressed in the currency's minor unit.
	ListingFee int64  `mapstructure:"listingFee"`
	Currency   string `mapstructure:"currency"`
}

type OutboxConfig struct {
	PollInterval time.Duration `mapstructure:"pollInterval"`
	Lease        time.Duration `mapstructure:"lease"`
	MaxAttempts  int           `mapstructure:"maxAttempts"`
	BaseBackoff  time.Duration `mapstructure:"baseBackoff"`
}

type CacheConfig struct {
	Size int           `mapstructure:"size"`
	TTL  time.Duration `mapstructure:"ttl"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type AdminConfig struct {
	Name     string `mapstructure:"name"`
	Email    string `mapstructure:"email"`
	Password string `mapstructure:"password"`
}

type AppConfig struct {
	BaseURL         string `mapstructure:"baseURL"`
	DefaultCurrency string `mapstructure:"defaultCurrency"`
}

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Mongo      MongoConfig      `mapstructure:"mongo"`
	JWT        JWTConfig        `mapstructure:"jwt"`
	Media      MediaConfig      `mapstructure:"media"`
	Cloudinary CloudinaryConfig `mapstructure:"cloudinary"`
	S3         S3Config         `mapstructure:"s3"`
	Email      EmailConfig      `mapstructure:"email"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Gemini     GeminiConfig     `mapstructure:"gemini"`
	Stripe     StripeConfig     `mapstructure:"stripe"`
	Outbox     OutboxConfig     `mapstructure:"outbox"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Log        LogConfig        `mapstructure:"log"`
	Admin      AdminConfig      `mapstructure:"admin"`
	App        AppConfig        `mapstructure:"app"`
}

var envBindings = map[string]string{
	"server.port":           "PORT",
	"server.mode":           "GIN_MODE",
	"server.allowedOrigins": "ALLOWED_ORIGINS",
	"mongo.driver":          "MONGO_DRIVER",
	"mongo.uri":             "MONGO_URI",
	"mongo.dbName":          "MONGO_DBNAME",
	"jwt.secret":            "JWT_SECRET",
	"jwt.expiration":        "JWT_EXPIRATION",
	"media.provider":        "MEDIA_PROVIDER",
	"media.folder":          "MEDIA_FOLDER",
	"cloudinary.cloudName":  "CLOUDINARY_CLOUD_NAME",
	"cloudinary.apiKey":     "CLOUDINARY_API_KEY",
	"cloudinary.apiSecret":  "CLOUDINARY_API_SECRET",
	"s3.bucket":             "S3_BUCKET",
	"s3.region":             "S3_REGION",
	"s3.accessKeyID":        "S3_ACCESS_KEY_ID",
	"s3.secretAccessKey":    "S3_SECRET_ACCESS_KEY",
	"s3.cloudFrontDomain":   "S3_CLOUDFRONT_DOMAIN",
	"email.apiKey":          "RESEND_API_KEY",
	"email.from":            "EMAIL_FROM",
	"email.adminAddress":    "ADMIN_NOTIFICATION_EMAIL",
	"telegram.botToken":     "TELEGRAM_BOT_TOKEN",
	"gemini.apiKey":         "GEMINI_API_KEY",
	"gemini.model":          "GEMINI_MODEL",
	"stripe.secretKey":      "STRIPE_SECRET_KEY",
	"stripe.webhookSecret":  "STRIPE_WEBHOOK_SECRET",
	"stripe.listingFee":     "STRIPE_LISTING_FEE",
	"stripe.currency":       "STRIPE_CURRENCY",
	"outbox.pollInterval":   "OUTBOX_POLL_INTERVAL",
	"outbox.maxAttempts":    "OUTBOX_MAX_ATTEMPTS",
	"cache.size":            "CACHE_SIZE",
	"cache.ttl":             "CACHE_TTL",
	"log.level":             "LOG_LEVEL",
	"log.format":            "LOG_FORMAT",
	"admin.email":           "ADMIN_EMAIL",
	"admin.password":        "ADMIN_PASSWORD",
	"app.baseURL":           "PUBLIC_BASE_URL",
	"app.defaultCurrency":   "DEFAULT_CURRENCY",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.allowedOrigins", []string{"*"})
	v.SetDefault("server.readTimeout", 15*time.Second)
	v.SetDefault("server.writeTimeout", 30*time.Second)
	v.SetDefault("server.idleTimeout", 60*time.Second)
	v.SetDefault("server.requestTimeout", 10*time.Second)
	v.SetDefault("mongo.driver", "mongo")
	v.SetDefault("mongo.dbName", "vehiclestore")
	v.SetDefault("mongo.connectTimeout", 30*time.Second)
	v.SetDefault("jwt.expiration", 24*time.Hour)
	v.SetDefault("media.provider", "cloudinary")
	v.SetDefault("media.folder", "1auto/vehicles")
	v.SetDefault("gemini.model", "gemini-1.5-flash")
	v.SetDefault("stripe.currency", "usd")
	v.SetDefault("outbox.pollInterval", 5*time.Second)
	v.SetDefault("outbox.lease", time.Minute)
	v.SetDefault("outbox.maxAttempts", 5)
	v.SetDefault("outbox.baseBackoff", 30*time.Second)
	v.SetDefault("cache.size", 512)
	v.SetDefault("cache.ttl", 5*time.Minute)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("admin.name", "Administrador")
	v.SetDefault("app.baseURL", "http://localhost:3000")
	v.SetDefault("app.defaultCurrency", "COP")
}

// LoadConfig reads config.yaml from path (if present), then overrides with
// environment variables. A .env file in the working directory is loaded first.
func LoadConfig(path string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	setDefaults(v)

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Server.AllowedOrigins = splitOrigins(cfg.Server.AllowedOrigins)
	cfg.Email.AdminAddress = strings.TrimSpace(cfg.Email.AdminAddress)
	return cfg, nil
}

// Validate checks the settings the API server cannot start without.
func (c Config) Validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("jwt.secret (JWT_SECRET) is required")
	}
	if c.Mongo.Driver != "memory" && strings.TrimSpace(c.Mongo.URI) == "" {
		return errors.New("mongo.uri (MONGO_URI) is required")
	}
	return nil
}

// splitOrigins accepts both a yaml list and a comma separated env value.
func splitOrigins(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
