package config

import (
	"fmt"
	"log"
	"sync"

	"github.com/asaskevich/govalidator"
	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	IsDebug *bool `yaml:"is_debug" valid:"-"`
	Listen  struct {
		BindIP   string `yaml:"bind_ip" env:"CDR_BIND_IP" env-default:"0.0.0.0" valid:"ip"`
		Port     string `yaml:"port" env:"CDR_PORT" env-default:"5000" valid:"port"`
		TLS      bool   `yaml:"tls_enabled" env-default:"false"`
		CertFile string `yaml:"cert_file" env-default:""`
		KeyFile  string `yaml:"key_file" env-default:""`
	} `yaml:"listen"`
	Log struct {
		Level        string `yaml:"level" env:"CDR_LOG_LEVEL" env-default:"info" valid:"in(trace|debug|info|warn|error)"`
		ReportCaller bool   `yaml:"report_caller" env-default:"false"`
		TimeZone     string `yaml:"time_zone" env:"CDR_LOG_TIME_ZONE" env-default:"UTC"`
	} `yaml:"log"`
	Mongo struct {
		Enabled  bool   `yaml:"enabled" env:"MONGO_ENABLED" env-default:"false"`
		Host     string `yaml:"host" env:"MONGO_HOST" env-default:"127.0.0.1" valid:"host"`
		Port     string `yaml:"port" env:"MONGO_PORT" env-default:"27017" valid:"port"`
		User     string `yaml:"user" env:"MONGO_USER" env-default:""`
		Password string `yaml:"password" env:"MONGO_PASSWORD" env-default:""`
		Database string `yaml:"database" env:"MONGO_DATABASE" env-default:"evcdr" valid:"required"`
	} `yaml:"mongo"`
	Ocpi struct {
		Enabled bool   `yaml:"enabled" env:"OCPI_ENABLED" env-default:"false"`
		Url     string `yaml:"url" env:"OCPI_URL" env-default:"" valid:"url,optional"`
		Token   string `yaml:"token" env:"OCPI_TOKEN" env-default:""`
	} `yaml:"ocpi"`
	Cdr struct {
		SignedDataEncoding string `yaml:"signed_data_encoding" env-default:"OCMF" valid:"required"`
		Store              bool   `yaml:"store" env-default:"true"`
		Push               bool   `yaml:"push" env-default:"false"`
	} `yaml:"cdr"`
}

func (c *Config) Debug() bool {
	return c.IsDebug != nil && *c.IsDebug
}

// Validate checks field formats and the settings that depend on each other
func (c *Config) Validate() error {
	if _, err := govalidator.ValidateStruct(c); err != nil {
		return appendInvalid(err)
	}
	if c.Listen.TLS && (c.Listen.CertFile == "" || c.Listen.KeyFile == "") {
		return fmt.Errorf("invalid listen: tls enabled without cert_file and key_file")
	}
	if c.Ocpi.Enabled && c.Ocpi.Url == "" {
		return fmt.Errorf("invalid ocpi: url is required when enabled")
	}
	if c.Cdr.Push && !c.Ocpi.Enabled {
		return fmt.Errorf("invalid cdr: push requires ocpi to be enabled")
	}
	return nil
}

func appendInvalid(err error) error {
	var errs govalidator.Errors
	list, ok := err.(govalidator.Errors)
	if !ok {
		return fmt.Errorf("invalid %w", err)
	}
	for _, e := range list.Errors() {
		errs = append(errs, fmt.Errorf("invalid %w", e))
	}
	return errs
}

var instance *Config
var once sync.Once

func GetConfig(path string) (*Config, error) {
	var err error
	once.Do(func() {
		log.Println("reading config", path)
		instance, err = Read(path)
	})
	if instance == nil && err == nil {
		err = fmt.Errorf("configuration %s was not loaded", path)
	}
	return instance, err
}

// Read loads and validates a configuration file, environment variables override it
func Read(path string) (*Config, error) {
	conf := &Config{}
	if err := cleanenv.ReadConfig(path, conf); err != nil {
		desc, _ := cleanenv.GetDescription(conf, nil)
		log.Println(desc)
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}
