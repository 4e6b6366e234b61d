package config

import (
	"flag"
	"os"
	"time"

	"github.com/caarlos0/env/v8"
)

type Config interface {
	ServerAddress() string
	DatabaseURI() string
	UploadDir() string
	GatewayBaseURL() string
	GatewayClientID() string
	GatewayClientSecret() string
	GatewayAPIVersion() string
	GatewayCurrency() string
	GatewayReturnURL() string
	GatewayCustomerPhone() string
	WebhookSecret() string
	GatewayTimeout() time.Duration
	StorageTimeout() time.Duration
	AdminLogin() string
	AdminPasswordHash() string
	RedisAddr() string
	LogLevel() string
	ConfirmWorkers() int
}

type Builder struct {
	parameters *parameters
	arguments  []string
	err        error
}

type parameters struct {
	ServerAddress        string        `env:"RUN_ADDRESS"`
	DatabaseURI          string        `env:"DATABASE_URI"`
	UploadDir            string        `env:"UPLOAD_DIR"`
	GatewayBaseURL       string        `env:"GATEWAY_BASE_URL"`
	GatewayClientID      string        `env:"GATEWAY_CLIENT_ID"`
	GatewayClientSecret  string        `env:"GATEWAY_CLIENT_SECRET"`
	GatewayAPIVersion    string        `env:"GATEWAY_API_VERSION"`
	GatewayCurrency      string        `env:"GATEWAY_CURRENCY"`
	GatewayReturnURL     string        `env:"GATEWAY_RETURN_URL"`
	GatewayCustomerPhone string        `env:"GATEWAY_CUSTOMER_PHONE"`
	WebhookSecret        string        `env:"WEBHOOK_SECRET"`
	GatewayTimeout       time.Duration `env:"GATEWAY_TIMEOUT"`
	StorageTimeout       time.Duration `env:"STORAGE_TIMEOUT"`
	AdminLogin           string        `env:"ADMIN_LOGIN"`
	AdminPasswordHash    string        `env:"ADMIN_PASSWORD_HASH"`
	RedisAddr            string        `env:"REDIS_ADDR"`
	LogLevel             string        `env:"LOG_LEVEL"`
	ConfirmWorkers       int           `env:"CONFIRM_WORKERS"`
}

const (
	defaultServerAddress        = "localhost:8080"
	defaultUploadDir            = "uploads"
	defaultGatewayBaseURL       = "https://api.cashfree.com/pg"
	defaultGatewayAPIVersion    = "2023-08-01"
	defaultGatewayCurrency      = "INR"
	defaultGatewayCustomerPhone = "9999999999"
	defaultGatewayTimeout       = 10 * time.Second
	defaultStorageTimeout       = 5 * time.Second
	defaultLogLevel             = "info"
	defaultConfirmWorkers       = 4
)

func NewBuilder() *Builder {
	return &Builder{
		parameters: &parameters{
			ServerAddress:        defaultServerAddress,
			UploadDir:            defaultUploadDir,
			GatewayBaseURL:       defaultGatewayBaseURL,
			GatewayAPIVersion:    defaultGatewayAPIVersion,
			GatewayCurrency:      defaultGatewayCurrency,
			GatewayCustomerPhone: defaultGatewayCustomerPhone,
			GatewayTimeout:       defaultGatewayTimeout,
			StorageTimeout:       defaultStorageTimeout,
			LogLevel:             defaultLogLevel,
			ConfirmWorkers:       defaultConfirmWorkers,
		},
		arguments: os.Args[1:],
	}
}

func (b *Builder) SetDefaultServerAddress(addr string) *Builder {
	b.parameters.ServerAddress = addr

	return b
}

func (b *Builder) LoadEnv() *Builder {
	if b.err != nil {
		return b
	}

	b.err = env.Parse(b.parameters)

	return b
}

func (b *Builder) LoadFlags() *Builder {
	if b.err != nil {
		return b
	}

	fs := flag.NewFlagSet("printshop", flag.ContinueOnError)
	fs.StringVar(&b.parameters.ServerAddress, "a", b.parameters.ServerAddress, "адрес и порт запуска HTTP-сервера")
	fs.StringVar(&b.parameters.DatabaseURI, "d", b.parameters.DatabaseURI, "адрес подключения к PostgreSQL")
	fs.StringVar(&b.parameters.UploadDir, "u", b.parameters.UploadDir, "каталог для файлов заказов")
	fs.StringVar(&b.parameters.GatewayBaseURL, "g", b.parameters.GatewayBaseURL, "адрес API платежного шлюза")
	fs.StringVar(&b.parameters.RedisAddr, "r", b.parameters.RedisAddr, "адрес Redis для блокировок заказов")
	fs.StringVar(&b.parameters.LogLevel, "l", b.parameters.LogLevel, "уровень логирования")
	fs.DurationVar(&b.parameters.GatewayTimeout, "gateway-timeout", b.parameters.GatewayTimeout, "таймаут запросов к платежному шлюзу")
	fs.DurationVar(&b.parameters.StorageTimeout, "storage-timeout", b.parameters.StorageTimeout, "таймаут запросов к хранилищу")
	b.err = fs.Parse(b.arguments)

	return b
}

func (b *Builder) Build() (Config, error) {
	return b, b.err
}

func (b *Builder) ServerAddress() string {
	return b.parameters.ServerAddress
}

func (b *Builder) DatabaseURI() string {
	return b.parameters.DatabaseURI
}

func (b *Builder) UploadDir() string {
	return b.parameters.UploadDir
}

func (b *Builder) GatewayBaseURL() string {
	return b.parameters.GatewayBaseURL
}

func (b *Builder) GatewayClientID() string {
	return b.parameters.GatewayClientID
}

func (b *Builder) GatewayClientSecret() string {
	return b.parameters.GatewayClientSecret
}

func (b *Builder) GatewayAPIVersion() string {
	return b.parameters.GatewayAPIVersion
}

func (b *Builder) GatewayCurrency() string {
	return b.parameters.GatewayCurrency
}

func (b *Builder) GatewayReturnURL() string {
	return b.parameters.GatewayReturnURL
}

func (b *Builder) GatewayCustomerPhone() string {
	return b.parameters.GatewayCustomerPhone
}

// WebhookSecret возвращает ключ подписи уведомлений платежного шлюза. Если ключ
// не задан, используется секрет клиента шлюза.
func (b *Builder) WebhookSecret() string {
	if b.parameters.WebhookSecret == "" {
		return b.parameters.GatewayClientSecret
	}

	return b.parameters.WebhookSecret
}

func (b *Builder) GatewayTimeout() time.Duration {
	return b.parameters.GatewayTimeout
}

func (b *Builder) StorageTimeout() time.Duration {
	return b.parameters.StorageTimeout
}

func (b *Builder) AdminLogin() string {
	return b.parameters.AdminLogin
}

func (b *Builder) AdminPasswordHash() string {
	return b.parameters.AdminPasswordHash
}

func (b *Builder) RedisAddr() string {
	return b.parameters.RedisAddr
}

func (b *Builder) LogLevel() string {
	return b.parameters.LogLevel
}

func (b *Builder) ConfirmWorkers() int {
	return b.parameters.ConfirmWorkers
}
