package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config, uygulamanın tüm yapılandırmasını temsil eder.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Storage  StorageConfig  `mapstructure:"storage"`
	PayMongo PayMongoConfig `mapstructure:"paymongo"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	Admin    AdminConfig    `mapstructure:"admin"`
}

type ServerConfig struct {
	Port    int    `mapstructure:"port"`
	BaseURL string `mapstructure:"base_url"`
}

type StorageConfig struct {
	DataFile string `mapstructure:"data_file"`
	CartFile string `mapstructure:"cart_file"`
}

type PayMongoConfig struct {
	APIURL    string `mapstructure:"api_url"`
	SecretKey string `mapstructure:"secret_key"`
	Currency  string `mapstructure:"currency"`
}

type SMTPConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
	AdminTo  string `mapstructure:"admin_to"`
}

type AdminConfig struct {
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
}

// Load, yapılandırmayı dosyadan ve ortam değişkenlerinden yükler.
// Ortam değişkenleri dosyayı ezer (örn. DENTALMARKET_PAYMONGO_SECRET_KEY).
func Load(configPath string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", 8082)
	v.SetDefault("server.base_url", "http://localhost:8082")
	v.SetDefault("storage.data_file", "./data.json")
	v.SetDefault("storage.cart_file", "./carts.json")
	v.SetDefault("paymongo.api_url", "https://api.paymongo.com/v1")
	v.SetDefault("paymongo.currency", "PHP")
	v.SetDefault("smtp.host", "smtp.gmail.com")
	v.SetDefault("smtp.port", 587)

	v.SetEnvPrefix("DENTALMARKET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("yapılandırma dosyası okunamadı: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("yapılandırma çözümlenemedi: %w", err)
	}

	return &config, nil
}
