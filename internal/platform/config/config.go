package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultNotifyChannel  = "employees_changes"
	defaultReconnectDelay = 5 * time.Second
	defaultLogLevel       = "info"
)

var channelPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Sync     SyncConfig     `yaml:"sync"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig は gRPC サーバーに関する設定です。
type ServerConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
// Host が空の場合はストア未設定として扱います。
type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
}

// SyncConfig はローカル一覧の同期と変更フローに関する設定です。
type SyncConfig struct {
	// NotifyChannel は employees_notify_change トリガーの引数と一致している必要があります。
	NotifyChannel     string        `yaml:"notify_channel"`
	RefetchAfterWrite *bool         `yaml:"refetch_after_write"`
	RequireTeamOnAdd  *bool         `yaml:"require_team_on_add"`
	ReconnectDelay    time.Duration `yaml:"-"`
	ReconnectDelayRaw string        `yaml:"reconnect_delay"`
}

// LogConfig はロガーの設定です。
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Load は指定されたパスから設定ファイルを読み込みます。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validateAndNormalize() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}

	if err := c.Database.validateAndNormalize(); err != nil {
		return err
	}

	if err := c.Sync.validateAndNormalize(); err != nil {
		return err
	}

	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}

	return nil
}

// Enabled はデータベースが設定されているかを返します。
func (d DatabaseConfig) Enabled() bool {
	return d.Host != ""
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if !d.Enabled() {
		return nil
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func (s *SyncConfig) validateAndNormalize() error {
	if s.NotifyChannel == "" {
		s.NotifyChannel = defaultNotifyChannel
	}
	if !channelPattern.MatchString(s.NotifyChannel) {
		return fmt.Errorf("config: sync.notify_channel %q is not a valid identifier", s.NotifyChannel)
	}

	delay, err := parseDurationAllowEmpty(s.ReconnectDelayRaw)
	if err != nil {
		return fmt.Errorf("config: sync.reconnect_delay: %w", err)
	}
	if delay <= 0 {
		delay = defaultReconnectDelay
	}
	s.ReconnectDelay = delay

	return nil
}

// RefetchAfterWriteEnabled は未指定なら true を返します。
func (s SyncConfig) RefetchAfterWriteEnabled() bool {
	return s.RefetchAfterWrite == nil || *s.RefetchAfterWrite
}

// RequireTeamOnAddEnabled は未指定なら true を返します。
func (s SyncConfig) RequireTeamOnAddEnabled() bool {
	return s.RequireTeamOnAdd == nil || *s.RequireTeamOnAdd
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     d.Host + ":" + strconv.Itoa(d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}
