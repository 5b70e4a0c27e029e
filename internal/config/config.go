package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const (
	StoragePostgres = "postgres"
	StorageBolt     = "bolt"
)

type Application struct {
	Server   Server   `koanf:"server"`
	Database Database `koanf:"db"`
	Storage  Storage  `koanf:"storage"`
	Client   Client   `koanf:"client"`
	UI       UI       `koanf:"ui"`
}

type Server struct {
	Addr string `koanf:"addr"`
	// MaxOccurrences caps the occurrences one recurring event may expand to in a single listing.
	MaxOccurrences int `koanf:"maxoccurrences"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`

	// MaxConns and MinConns size the connection pool.
	MaxConns int `koanf:"maxconns"`
	MinConns int `koanf:"minconns"`
}

type Storage struct {
	// Driver is either "postgres" or "bolt".
	Driver string `koanf:"driver"`
	// Path is the bbolt database file.
	Path string `koanf:"path"`
}

type Client struct {
	BaseURL string        `koanf:"baseurl"`
	Timeout time.Duration `koanf:"timeout"`
	// Refresh is the cron schedule used by the watch command.
	Refresh string `koanf:"refresh"`
}

type UI struct {
	DarkMode bool `koanf:"darkmode"`
}

func defaults() Application {
	return Application{
		Server: Server{
			Addr:           ":8181",
			MaxOccurrences: 5000,
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "quhixcal",
			Pass:   "",
			Name:   "quhixcal",
			Schema: "quhixcal",

			MaxConns: 10,
			MinConns: 2,
		},
		Storage: Storage{
			Driver: StoragePostgres,
			Path:   "quhixcal.db",
		},
		Client: Client{
			BaseURL: "http://localhost:8181",
			Timeout: 10 * time.Second,
			Refresh: "*/5 * * * *",
		},
		UI: UI{
			DarkMode: true,
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "QUHIXCAL_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "QUHIXCAL_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
