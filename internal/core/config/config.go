package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
}

type Log struct {
	Level string
	JSON  bool
	File  string // 为空则只写 stdout
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
}

// Auth 域名限制与管理员种子账号
type Auth struct {
	AllowedDomain  string `mapstructure:"allowed_domain"`
	MinPasswordLen int    `mapstructure:"min_password_len"`
	AdminName      string `mapstructure:"admin_name"`
	AdminEmail     string `mapstructure:"admin_email"`
	AdminPassword  string `mapstructure:"admin_password"`
}

// Archive 清理任务写入的归档文件
type Archive struct {
	File           string `mapstructure:"file"`
	RetentionHours int    `mapstructure:"retention_hours"`
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Config struct {
	App     App
	Log     Log
	JWT     JWT
	Auth    Auth    `mapstructure:"auth"`
	Archive Archive `mapstructure:"archive"`
	DB      DB
	Redis   Redis `mapstructure:"redis"`
}

func Load(path string) *Config {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		log.Fatalf("read config: %v", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		log.Fatalf("unmarshal config: %v", err)
	}
	applyDefaults(&c)
	return &c
}

func applyDefaults(c *Config) {
	if c.Auth.AllowedDomain == "" {
		c.Auth.AllowedDomain = "poornima.edu.in"
	}
	if c.Auth.MinPasswordLen <= 0 {
		c.Auth.MinPasswordLen = 6
	}
	if c.Auth.AdminName == "" {
		c.Auth.AdminName = "FindEase Admin"
	}
	if c.Auth.AdminEmail == "" {
		c.Auth.AdminEmail = "admin@" + c.Auth.AllowedDomain
	}
	if c.Auth.AdminPassword == "" {
		c.Auth.AdminPassword = "Admin@123"
	}
	if c.Archive.File == "" {
		c.Archive.File = "data/resolved-archive.txt"
	}
	if c.Archive.RetentionHours <= 0 {
		c.Archive.RetentionHours = 24
	}
	if c.JWT.Issuer == "" {
		c.JWT.Issuer = "findease"
	}
	if c.JWT.AccessTokenTTLMin <= 0 {
		c.JWT.AccessTokenTTLMin = 7 * 24 * 60 // 7d
	}
}
