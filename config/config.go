package config

import (
	"log"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"

	"realestate-compare/utils"
)

// Config holds all application configuration loaded from .env, config.yaml and
// environment variables.
type Config struct {
	GoogleMapsAPIKey   string
	DefaultDestination string
	CommuteMode        string
	ScrapeDelayMs      int
	MaxRetries         int
	RequestTimeoutSecs int

	MaxListings       int
	RecordsPerPage    int
	LatitudeMin       float64
	LatitudeMax       float64
	LongitudeMin      float64
	LongitudeMax      float64
	SearchLocation    string
	ChromeBin         string
	Headless          bool
	BrowserTimeoutSec int

	DataDir        string
	OutputFilename string

	CrimeFeedURL  string
	CrimeRadiusKm float64

	PostgresEnabled  bool
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	ServerPort int
	Log        utils.LogConfig
}

// Load reads the .env file, an optional config.yaml and the environment, and
// returns a populated Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("google_maps_api_key", "")
	v.SetDefault("default_destination", "Parliament Hill, Ottawa, ON")
	v.SetDefault("commute_mode", "driving")
	v.SetDefault("scrape_delay_ms", 2000)
	v.SetDefault("max_retries", 3)
	v.SetDefault("request_timeout_secs", 10)

	v.SetDefault("max_listings", 50)
	v.SetDefault("records_per_page", 50)
	v.SetDefault("latitude_min", 45.0)
	v.SetDefault("latitude_max", 45.6)
	v.SetDefault("longitude_min", -76.5)
	v.SetDefault("longitude_max", -75.0)
	v.SetDefault("search_location", "Ottawa, ON")
	v.SetDefault("chrome_bin", "")
	v.SetDefault("headless", true)
	v.SetDefault("browser_timeout_secs", 90)

	v.SetDefault("data_dir", "./data")
	v.SetDefault("output_filename", "real_estate_data.csv")

	v.SetDefault("crime_feed_url", "https://opendata.arcgis.com/datasets/ottawa::criminal-offences-.geojson")
	v.SetDefault("crime_radius_km", 1.0)

	v.SetDefault("postgres_enabled", false)
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", "5432")
	v.SetDefault("postgres_user", "scraper")
	v.SetDefault("postgres_password", "scraper123")
	v.SetDefault("postgres_db", "realestate")
	v.SetDefault("postgres_sslmode", "disable")

	v.SetDefault("server_port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		GoogleMapsAPIKey:   v.GetString("google_maps_api_key"),
		DefaultDestination: v.GetString("default_destination"),
		CommuteMode:        v.GetString("commute_mode"),
		ScrapeDelayMs:      v.GetInt("scrape_delay_ms"),
		MaxRetries:         v.GetInt("max_retries"),
		RequestTimeoutSecs: v.GetInt("request_timeout_secs"),

		MaxListings:       v.GetInt("max_listings"),
		RecordsPerPage:    v.GetInt("records_per_page"),
		LatitudeMin:       v.GetFloat64("latitude_min"),
		LatitudeMax:       v.GetFloat64("latitude_max"),
		LongitudeMin:      v.GetFloat64("longitude_min"),
		LongitudeMax:      v.GetFloat64("longitude_max"),
		SearchLocation:    v.GetString("search_location"),
		ChromeBin:         v.GetString("chrome_bin"),
		Headless:          v.GetBool("headless"),
		BrowserTimeoutSec: v.GetInt("browser_timeout_secs"),

		DataDir:        v.GetString("data_dir"),
		OutputFilename: v.GetString("output_filename"),

		CrimeFeedURL:  v.GetString("crime_feed_url"),
		CrimeRadiusKm: v.GetFloat64("crime_radius_km"),

		PostgresEnabled:  v.GetBool("postgres_enabled"),
		PostgresHost:     v.GetString("postgres_host"),
		PostgresPort:     v.GetString("postgres_port"),
		PostgresUser:     v.GetString("postgres_user"),
		PostgresPassword: v.GetString("postgres_password"),
		PostgresDB:       v.GetString("postgres_db"),
		PostgresSSLMode:  v.GetString("postgres_sslmode"),

		ServerPort: v.GetInt("server_port"),
		Log: utils.LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

// RawDir is where scraped source CSVs are written.
func (c *Config) RawDir() string {
	return filepath.Join(c.DataDir, "raw")
}

// ProcessedDir is where merged datasets are written.
func (c *Config) ProcessedDir() string {
	return filepath.Join(c.DataDir, "processed")
}

// DefaultOutputPath is the merged dataset path used when none is given.
func (c *Config) DefaultOutputPath() string {
	return filepath.Join(c.ProcessedDir(), c.OutputFilename)
}
