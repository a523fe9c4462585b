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
	ServerConfig struct {
		Host                      string
		Address                   string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string // postgres | memory
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	// SchoolConfig holds the identity printed in the bulletin header.
	SchoolConfig struct {
		Name     string
		City     string
		BP       string
		Tel      string
		TelAlt   string
		Email    string
		Country  string
		Motto    string
		Ministry string
	}

	BulletinConfig struct {
		DefaultPart1         string // comma separated
		DefaultPart2         string // comma separated
		StampPath            string
		MaxConcurrentRenders int
	}

	Config struct {
		Env                     string
		Build                   string
		Debug                   bool
		TestMode                bool
		AppName                 string
		SecretKey               string
		RollbarToken            string
		SendgridAPIKey          string
		TeacherRegistrationCode string
		FrontendBaseURL         string
		Server                  ServerConfig
		Database                DatabaseConfig
		School                  SchoolConfig
		Bulletin                BulletinConfig

		defaultFromEmail string
	}
)

func (db DatabaseConfig) Address() string {
	return net.JoinHostPort(db.Host, db.Port)
}

func (conf *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(conf.defaultFromEmail)
	if err != nil {
		return mail.Address{Name: conf.AppName, Address: conf.defaultFromEmail}
	}
	return *addr
}

// NewConfig loads the configuration of the current ENV (DEV by default) from
// the environment and the optional `config/.env.<env>` file.
func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "Bulletin")
	v.SetDefault("secretKey", "poq5-wer)enb$+57=dz&uoxh2(h!x)#*c2(#yg4h^$cegm2emy")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("teacherRegistrationCode", "SCHOOL2025")
	v.SetDefault("defaultFromEmail", "Bulletin <noreply@localhost>")
	v.SetDefault("frontendBaseUrl", "http://localhost:3000")

	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverAddress", ":8000")
	v.SetDefault("serverDebugHost", ":4000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 4*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 7*24*time.Hour)

	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", "5432")
	v.SetDefault("dbName", "bulletin")
	v.SetDefault("dbUser", "bulletin")
	v.SetDefault("dbPassword", "")
	v.SetDefault("dbAdminUser", "postgres")
	v.SetDefault("dbAdminPassword", "")
	v.SetDefault("dbDisableTls", true)

	v.SetDefault("schoolName", "Michel ALLAIRE")
	v.SetDefault("schoolCity", "Ségou")
	v.SetDefault("schoolBp", "580")
	v.SetDefault("schoolTel", "21-32-11-20")
	v.SetDefault("schoolTelAlt", "79 07 03 60")
	v.SetDefault("schoolEmail", "michelallaire2007@yahoo.fr")
	v.SetDefault("schoolCountry", "République du Mali")
	v.SetDefault("schoolMotto", "Un Peuple-Un But-Une Foi")
	v.SetDefault("schoolMinistry", "Ministère de l'Education Nationale")

	v.SetDefault("bulletinDefaultPart1", "")
	v.SetDefault("bulletinDefaultPart2", "")
	v.SetDefault("bulletinStampPath", "")
	v.SetDefault("bulletinMaxConcurrentRenders", 4)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		Env:                     env,
		Build:                   v.GetString("build"),
		Debug:                   v.GetBool("debug"),
		TestMode:                v.GetBool("testMode"),
		AppName:                 v.GetString("appName"),
		SecretKey:               v.GetString("secretKey"),
		RollbarToken:            v.GetString("rollbarToken"),
		SendgridAPIKey:          v.GetString("sendgridApiKey"),
		TeacherRegistrationCode: v.GetString("teacherRegistrationCode"),
		FrontendBaseURL:         v.GetString("frontendBaseUrl"),
		defaultFromEmail:        v.GetString("defaultFromEmail"),
		Server: ServerConfig{
			Host:                      v.GetString("serverHost"),
			Address:                   v.GetString("serverAddress"),
			DebugHost:                 v.GetString("serverDebugHost"),
			ShutdownTimeout:           v.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("dbEngine"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetString("dbPort"),
			Name:          v.GetString("dbName"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			DisableTLS:    v.GetBool("dbDisableTls"),
		},
		School: SchoolConfig{
			Name:     v.GetString("schoolName"),
			City:     v.GetString("schoolCity"),
			BP:       v.GetString("schoolBp"),
			Tel:      v.GetString("schoolTel"),
			TelAlt:   v.GetString("schoolTelAlt"),
			Email:    v.GetString("schoolEmail"),
			Country:  v.GetString("schoolCountry"),
			Motto:    v.GetString("schoolMotto"),
			Ministry: v.GetString("schoolMinistry"),
		},
		Bulletin: BulletinConfig{
			DefaultPart1:         v.GetString("bulletinDefaultPart1"),
			DefaultPart2:         v.GetString("bulletinDefaultPart2"),
			StampPath:            v.GetString("bulletinStampPath"),
			MaxConcurrentRenders: v.GetInt("bulletinMaxConcurrentRenders"),
		},
	}
}

// NewTestConfig returns the configuration used by test suites: test mode, in-memory storage.
func NewTestConfig() *Config {
	conf := NewConfig()
	conf.Env = "TEST"
	conf.TestMode = true
	conf.Database.Engine = "memory"
	return conf
}
