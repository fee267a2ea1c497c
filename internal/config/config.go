package config

import "time"

// Store drivers.
const (
	StoreDriverFile   = "file"
	StoreDriverSQLite = "sqlite"
)

// Config holds server configuration values.
type Config struct {
	Addr              string        `mapstructure:"addr" yaml:"addr"`
	AdminAddr         string        `mapstructure:"admin_addr" yaml:"admin_addr"`
	MaxClients        int           `mapstructure:"max_clients" yaml:"max_clients"`
	SendQueueSize     int           `mapstructure:"send_queue_size" yaml:"send_queue_size"`
	StoreDriver       string        `mapstructure:"store_driver" yaml:"store_driver"`
	UsersFile         string        `mapstructure:"users_file" yaml:"users_file"`
	DatabasePath      string        `mapstructure:"database_path" yaml:"database_path"`
	PasswordHashing   string        `mapstructure:"password_hashing" yaml:"password_hashing"`
	LogLevel          string        `mapstructure:"log_level" yaml:"log_level"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:              ":8080",
		AdminAddr:         "",
		MaxClients:        10,
		SendQueueSize:     64,
		StoreDriver:       StoreDriverFile,
		UsersFile:         "users.txt",
		DatabasePath:      "lanchat.db",
		PasswordHashing:   "plain",
		LogLevel:          "info",
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.AdminAddr != "" {
		c.AdminAddr = other.AdminAddr
	}
	if other.MaxClients != 0 {
		c.MaxClients = other.MaxClients
	}
	if other.SendQueueSize != 0 {
		c.SendQueueSize = other.SendQueueSize
	}
	if other.StoreDriver != "" {
		c.StoreDriver = other.StoreDriver
	}
	if other.UsersFile != "" {
		c.UsersFile = other.UsersFile
	}
	if other.DatabasePath != "" {
		c.DatabasePath = other.DatabasePath
	}
	if other.PasswordHashing != "" {
		c.PasswordHashing = other.PasswordHashing
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
}
