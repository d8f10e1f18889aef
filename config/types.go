package config

import "time"

type AppConfig struct {
	DBDriver      string          `yaml:"db_driver" env:"RIGHTSWATCH_DB_DRIVER" env-default:"mongo"`
	DBURL         string          `yaml:"db_url" env:"RIGHTSWATCH_DB_URL" env-default:"mongodb://localhost:27017"`
	MongoDatabase string          `yaml:"mongo_database" env:"RIGHTSWATCH_MONGO_DATABASE" env-default:"rightswatch"`
	ListenAddr    string          `yaml:"listen_addr" env:"RIGHTSWATCH_LISTEN_ADDR" env-default:"0.0.0.0:8000"`
	AppEnv        string          `yaml:"app_env" env:"RIGHTSWATCH_APP_ENV"`
	HTTP          HTTPConfig      `yaml:"http"`
	Uploads       UploadsConfig   `yaml:"uploads"`
	Analytics     AnalyticsConfig `yaml:"analytics"`
	Log           LogConfig       `yaml:"log"`
}

type HTTPConfig struct {
	CORSOrigins       []string      `yaml:"cors_origins" env:"RIGHTSWATCH_HTTP_CORS_ORIGINS" env-separator:"," env-default:"http://localhost:3000"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout" env:"RIGHTSWATCH_HTTP_READ_HEADER_TIMEOUT" env-default:"5s"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout" env:"RIGHTSWATCH_HTTP_SHUTDOWN_TIMEOUT" env-default:"10s"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes" env:"RIGHTSWATCH_HTTP_MAX_BODY_BYTES" env-default:"1048576"`
}

type UploadsConfig struct {
	Dir      string `yaml:"dir" env:"RIGHTSWATCH_UPLOADS_DIR" env-default:"uploads"`
	MaxBytes int64  `yaml:"max_bytes" env:"RIGHTSWATCH_UPLOADS_MAX_BYTES" env-default:"33554432"`
}

type AnalyticsConfig struct {
	ViolationsLimit int          `yaml:"violations_limit" env:"RIGHTSWATCH_ANALYTICS_VIOLATIONS_LIMIT" env-default:"50"`
	TimelineLimit   int          `yaml:"timeline_limit" env:"RIGHTSWATCH_ANALYTICS_TIMELINE_LIMIT" env-default:"50"`
	GeodataLimit    int          `yaml:"geodata_limit" env:"RIGHTSWATCH_ANALYTICS_GEODATA_LIMIT" env-default:"100"`
	Digest          DigestConfig `yaml:"digest"`
}

type DigestConfig struct {
	Enabled  bool   `yaml:"enabled" env:"RIGHTSWATCH_ANALYTICS_DIGEST_ENABLED" env-default:"true"`
	Schedule string `yaml:"schedule" env:"RIGHTSWATCH_ANALYTICS_DIGEST_SCHEDULE" env-default:"@every 5m"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"RIGHTSWATCH_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"RIGHTSWATCH_LOG_FORMAT" env-default:"text"`
}

func (c *AppConfig) IsMongo() bool {
	if c == nil {
		return false
	}
	return c.DBDriver == "mongo"
}

const (
	defaultViolationsLimit = 50
	defaultTimelineLimit   = 50
	defaultGeodataLimit    = 100
)

// Limits returns the analytics row caps with unset values replaced by defaults.
func (c AnalyticsConfig) Limits() (violations, timeline, geodata int) {
	violations, timeline, geodata = c.ViolationsLimit, c.TimelineLimit, c.GeodataLimit
	if violations <= 0 {
		violations = defaultViolationsLimit
	}
	if timeline <= 0 {
		timeline = defaultTimelineLimit
	}
	if geodata <= 0 {
		geodata = defaultGeodataLimit
	}
	return violations, timeline, geodata
}
