package config

import (
	"flag"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const defaultConfigPath = "./config/local.yaml"

type Config struct {
	Env        string        `yaml:"env" env-default:"local"`
	Clients    ClientsConfig `yaml:"clients"`
	AppSecret  string        `yaml:"app_secret" env-required:"true" env:"APP_SECRET"`
	HTTPServer `yaml:"http_server"`
	Postgres   `yaml:"postgres"`
	Redis      `yaml:"redis"`
	RabbitMQ   `yaml:"rabbitmq"`
	Booking    `yaml:"booking"`
	Payments   `yaml:"payments"`
	Tracing    `yaml:"tracing"`
	Email      `yaml:"email"`
}

// NotifierConfig is the smaller config of the email notifier process.
type NotifierConfig struct {
	Env      string `yaml:"env" env-default:"local"`
	RabbitMQ `yaml:"rabbitmq"`
	Email    `yaml:"email"`
}

type HTTPServer struct {
	Address      string        `yaml:"address" env-default:"localhost:8080"`
	Timeout      time.Duration `yaml:"timeout" env-default:"4s"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" env-default:"60s"`
	WriteTimeout time.Duration `yaml:"write_timeout" env-default:"10s"`
}

type Client struct {
	Address      string        `yaml:"address"`
	Timeout      time.Duration `yaml:"timeout"`
	RetriesCount int           `yaml:"retries_count"`
}

type ClientsConfig struct {
	SSO Client `yaml:"sso"`
}

type Postgres struct {
	Host     string `yaml:"host" env-default:"postgres"`
	Port     int    `yaml:"port" env-default:"5432"`
	User     string `yaml:"user" env-required:"true"`
	Password string `yaml:"password" env-required:"true" env:"POSTGRES_PASSWORD"`
	DBName   string `yaml:"dbname" env-required:"true"`
	SSLMode  string `yaml:"sslmode" env-default:"disable"`
}

type Redis struct {
	Host     string `yaml:"host" env-default:"redis:6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
	DB       int    `yaml:"db" env-default:"0"`
}

type RabbitMQ struct {
	URL       string `yaml:"url" env-required:"true" env:"RABBITMQ_URL"`
	Exchange  string `yaml:"exchange" env-default:"bookings"`
	QueueName string `yaml:"queue_name" env-default:"booking_events"`
}

type Booking struct {
	DemoSpaceID string `yaml:"demo_space_id" env-default:"1"`
	SeedDemo    bool   `yaml:"seed_demo" env-default:"true"`
	Timezone    string `yaml:"timezone" env-default:"Asia/Kuala_Lumpur"`
}

type Payments struct {
	PublishableKey string        `yaml:"publishable_key" env:"PAYMENTS_PUBLISHABLE_KEY"`
	WalletDelay    time.Duration `yaml:"wallet_delay" env-default:"2s"`
	CardDelay      time.Duration `yaml:"card_delay" env-default:"1500ms"`
	IntentTTL      time.Duration `yaml:"intent_ttl" env-default:"24h"`
}

type Tracing struct {
	Endpoint    string `yaml:"endpoint" env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName string `yaml:"service_name" env-default:"sharedspace"`
}

type Email struct {
	Host               string `yaml:"host" env-default:"smtp.gmail.com"`
	Port               int    `yaml:"port" env-default:"587"`
	Username           string `yaml:"username" env:"EMAIL_USERNAME"`
	Password           string `yaml:"password" env:"EMAIL_PASSWORD"`
	AdministratorEmail string `yaml:"administrator_email" env:"ADMINISTRATOR_EMAIL"`
}

// MustLoad reads the config file named by the -config flag, CONFIG_PATH or the local default.
func MustLoad() *Config {
	return MustLoadPath(fetchConfigPath())
}

func MustLoadPath(configPath string) *Config {
	var cfg Config
	mustRead(configPath, &cfg)
	return &cfg
}

func MustLoadNotifier() *NotifierConfig {
	var cfg NotifierConfig
	mustRead(fetchConfigPath(), &cfg)

	if cfg.Email.AdministratorEmail == "" {
		log.Fatal("email.administrator_email is required")
	}

	return &cfg
}

func mustRead(configPath string, cfg any) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("config file does not exist: %s", configPath)
	}

	if err := cleanenv.ReadConfig(configPath, cfg); err != nil {
		log.Fatalf("cannot read config: %s: %s", configPath, err)
	}
}

// Location resolves the booking timezone, falling back to UTC.
func (b Booking) Location() *time.Location {
	loc, err := time.LoadLocation(b.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func fetchConfigPath() string {
	var res string

	flag.StringVar(&res, "config", "", "path to config file")
	flag.Parse()

	if res == "" {
		res = os.Getenv("CONFIG_PATH")
	}
	if res == "" {
		res = defaultConfigPath
	}

	return res
}
