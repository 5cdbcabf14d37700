package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Load builds a Config from the process environment and validates it.
//
// Every leaf field names its variable in an env tag. An empty variable counts
// as unset: the envAlt variable is tried next, then the default tag. Fields
// tagged required="true" must resolve to something.
func Load() (*Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	for _, f := range envFields(reflect.ValueOf(cfg).Elem()) {
		if err := f.resolve(getenv); err != nil {
			return nil, fmt.Errorf("config load: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// envField is one settable leaf of Config and the variables that feed it.
type envField struct {
	name     string
	alt      string
	fallback string
	required bool
	dst      reflect.Value
}

// envFields flattens the section structs of v into their tagged leaves.
func envFields(v reflect.Value) []envField {
	var out []envField
	t := v.Type()
	for i := range t.NumField() {
		sf, fv := t.Field(i), v.Field(i)
		if !fv.CanSet() {
			continue
		}
		if sf.Type.Kind() == reflect.Struct {
			out = append(out, envFields(fv)...)
			continue
		}
		name := sf.Tag.Get("env")
		if name == "" {
			continue
		}
		out = append(out, envField{
			name:     name,
			alt:      sf.Tag.Get("envAlt"),
			fallback: sf.Tag.Get("default"),
			required: sf.Tag.Get("required") == "true",
			dst:      fv,
		})
	}
	return out
}

func (f envField) resolve(getenv func(string) string) error {
	raw := getenv(f.name)
	if raw == "" && f.alt != "" {
		raw = getenv(f.alt)
	}
	if raw == "" {
		if f.required {
			return fmt.Errorf("required environment variable %s is not set", f.name)
		}
		raw = f.fallback
	}
	if raw == "" {
		return nil
	}
	if err := assign(f.dst, raw); err != nil {
		return fmt.Errorf("invalid value for %s=%q: %w", f.name, raw, err)
	}
	return nil
}

var durationType = reflect.TypeOf(time.Duration(0))

// assign parses raw into dst according to dst's type.
func assign(dst reflect.Value, raw string) error {
	switch {
	case dst.Type() == durationType:
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		dst.SetInt(int64(d))
	case dst.Kind() == reflect.String:
		dst.SetString(raw)
	case dst.CanInt():
		n, err := strconv.ParseInt(raw, 10, dst.Type().Bits())
		if err != nil {
			return err
		}
		dst.SetInt(n)
	case dst.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return err
		}
		dst.SetBool(b)
	case dst.Type() == reflect.TypeOf([]string(nil)):
		dst.Set(reflect.ValueOf(splitList(raw)))
	default:
		return fmt.Errorf("unsupported field type %s", dst.Type())
	}
	return nil
}

// splitList reads a comma-separated list, dropping blank entries.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// problems collects validation failures so Validate can report all of them.
type problems []string

func (p *problems) check(ok bool, format string, args ...any) {
	if !ok {
		*p = append(*p, fmt.Sprintf(format, args...))
	}
}

// Validate reports every invalid setting, one per line, naming the variable
// that controls it.
func (c *Config) Validate() error {
	var p problems
	c.Database.validate(&p)
	c.Server.validate(&p)
	c.Upload.validate(&p)
	c.Rate.validate(&p)
	c.Ingest.validate(&p)
	c.Audit.validate(&p)
	c.Security.validate(&p)
	c.Logging.validate(&p)

	if len(p) == 0 {
		return nil
	}
	return errors.New("validation failed:\n  - " + strings.Join(p, "\n  - "))
}

func (d *DatabaseConfig) validate(p *problems) {
	p.check(d.URL != "", "DATABASE_URL is required")
	p.check(d.MaxConns >= d.MinConns, "DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", d.MaxConns, d.MinConns)
	p.check(d.MaxConns > 0, "DB_MAX_CONNS must be positive")
	p.check(d.MinConns >= 0, "DB_MIN_CONNS must be non-negative")
}

func (s *ServerConfig) validate(p *problems) {
	p.check(s.Port > 0 && s.Port <= 65535, "SERVER_PORT (%d) must be 1-65535", s.Port)
	p.check(s.ReadTimeout >= 0, "SERVER_READ_TIMEOUT must be non-negative")
	p.check(s.ShutdownTimeout > 0, "SERVER_SHUTDOWN_TIMEOUT must be positive")
}

func (u *UploadConfig) validate(p *problems) {
	p.check(u.MaxFileSize > 0, "UPLOAD_MAX_FILE_SIZE must be positive")
	p.check(u.MaxMessageSize > 0, "UPLOAD_MAX_MESSAGE_SIZE must be positive")
	p.check(u.MaxConcurrent > 0, "UPLOAD_MAX_CONCURRENT must be positive")
	p.check(u.MaxWaitTime > 0, "UPLOAD_MAX_WAIT_TIME must be positive")
}

func (r *RateLimitConfig) validate(p *problems) {
	if !r.Enabled {
		return
	}
	p.check(r.RequestsPerMinute > 0, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
	p.check(r.ImportLimit > 0, "RATE_LIMIT_IMPORT must be positive when rate limiting is enabled")
}

func (i *IngestConfig) validate(p *problems) {
	p.check(i.StoreTimeout > 0, "INGEST_STORE_TIMEOUT must be positive")
	p.check(i.ValidateWorkers >= 0, "INGEST_VALIDATE_WORKERS must be non-negative")
}

func (a *AuditConfig) validate(p *problems) {
	p.check(a.RetentionDays > 0, "AUDIT_RETENTION_DAYS must be positive")
	p.check(a.PurgeInterval > 0, "AUDIT_PURGE_INTERVAL must be positive")
}

func (s *SecurityConfig) validate(p *problems) {
	for _, cidr := range s.TrustedProxies {
		_, _, err := net.ParseCIDR(cidr)
		p.check(err == nil, "TRUSTED_PROXIES entry %q is not a valid CIDR", cidr)
	}
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

func (l *LoggingConfig) validate(p *problems) {
	p.check(slices.Contains(logLevels, strings.ToLower(l.Level)),
		"LOG_LEVEL (%q) must be one of: %s", l.Level, strings.Join(logLevels, ", "))
	p.check(slices.Contains(logFormats, strings.ToLower(l.Format)),
		"LOG_FORMAT (%q) must be one of: %s", l.Format, strings.Join(logFormats, ", "))
}

// String summarizes the settings that shape ingestion. The database URL
// carries credentials and is never printed.
func (c *Config) String() string {
	return fmt.Sprintf("Config{listen=%s db=[MASKED] pool=%d-%d imports=%d/%s rate=%v:%d/min "+
		"store_timeout=%s workers=%d naive_split=%v rules=%q audit=%dd/%s log=%s/%s}",
		c.Server.Addr(), c.Database.MinConns, c.Database.MaxConns,
		c.Upload.MaxConcurrent, c.Upload.MaxWaitTime, c.Rate.Enabled, c.Rate.RequestsPerMinute,
		c.Ingest.StoreTimeout, c.Ingest.ValidateWorkers, c.Ingest.NaiveSplit, c.Ingest.RulesFile,
		c.Audit.RetentionDays, c.Audit.PurgeInterval, c.Logging.Level, c.Logging.Format)
}
