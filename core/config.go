package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	serverConfig struct {
		Address                   string
		Host                      string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		DisableReqLogs            bool
	}

	databaseConfig struct {
		Engine        string
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	redisConfig struct {
		Address  string
		Password string
		DB       int
	}

	rateLimitConfig struct {
		Requests int
		Window   time.Duration
	}

	importConfig struct {
		ChunkSize int
	}

	Config struct {
		Env                       string
		Debug                     bool
		TestMode                  bool
		AppName                   string
		Build                     string
		WorkDir                   string
		SecretKey                 string
		DefaultFromEmail          mail.Address
		FrontendBaseURL           string
		RollbarToken              string
		SendgridAPIKey            string
		PasswordResetTimeoutDelta time.Duration

		Server    serverConfig
		Database  databaseConfig
		Redis     redisConfig
		RateLimit rateLimitConfig
		Import    importConfig
	}
)

func (db databaseConfig) Address() string {
	return net.JoinHostPort(db.Host, db.Port)
}

// NewConfig reads the configuration of the current environment (ENV: DEV (default), TEST, QA, PROD).
// Values come from `<ENV>_<KEY>` environment variables, optionally loaded from config/.env.<env>.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "Ogrencim")
	v.SetDefault("build", "develop")
	v.SetDefault("secretKey", "k2v@9s!7qy0$d3w+e8m#r1u)h6j(z4x-bt5n%cg&p_lf")
	v.SetDefault("defaultFromEmail", "Ogrencim <noreply@ogrencim.local>")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridAPIKey", "")
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)

	v.SetDefault("server.address", "0.0.0.0:8000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.debugHost", "0.0.0.0:4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 15*time.Minute)
	v.SetDefault("server.jwtRefreshExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.disableReqLogs", false)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "ogrencim")
	v.SetDefault("database.user", "ogrencim")
	v.SetDefault("database.password", "ogrencim")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "postgres")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("rateLimit.requests", 10)
	v.SetDefault("rateLimit.window", time.Minute)

	v.SetDefault("import.chunkSize", 100)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd := Getwd()

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	from, err := mail.ParseAddress(v.GetString("defaultFromEmail"))
	if err != nil {
		log.Fatalf("config.defaultFromEmail: %v", err)
	}

	conf := &Config{
		Env:                       env,
		Debug:                     v.GetBool("debug"),
		TestMode:                  v.GetBool("testMode"),
		AppName:                   v.GetString("appName"),
		Build:                     v.GetString("build"),
		WorkDir:                   wd,
		SecretKey:                 v.GetString("secretKey"),
		DefaultFromEmail:          *from,
		FrontendBaseURL:           strings.TrimRight(v.GetString("frontendBaseURL"), "/"),
		RollbarToken:              v.GetString("rollbarToken"),
		SendgridAPIKey:            v.GetString("sendgridAPIKey"),
		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),
	}
	conf.Server = serverConfig{
		Address:                   v.GetString("server.address"),
		Host:                      v.GetString("server.host"),
		DebugHost:                 v.GetString("server.debugHost"),
		ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
		JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
		JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
		DisableReqLogs:            v.GetBool("server.disableReqLogs"),
	}
	conf.Database = databaseConfig{
		Engine:        v.GetString("database.engine"),
		Host:          v.GetString("database.host"),
		Port:          v.GetString("database.port"),
		Name:          v.GetString("database.name"),
		User:          v.GetString("database.user"),
		Password:      v.GetString("database.password"),
		AdminUser:     v.GetString("database.adminUser"),
		AdminPassword: v.GetString("database.adminPassword"),
		DisableTLS:    v.GetBool("database.disableTLS"),
	}
	conf.Redis = redisConfig{
		Address:  v.GetString("redis.address"),
		Password: v.GetString("redis.password"),
		DB:       v.GetInt("redis.db"),
	}
	conf.RateLimit = rateLimitConfig{
		Requests: v.GetInt("rateLimit.requests"),
		Window:   v.GetDuration("rateLimit.window"),
	}
	conf.Import = importConfig{
		ChunkSize: v.GetInt("import.chunkSize"),
	}
	return conf
}
