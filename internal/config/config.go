package config

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"

	"authn-simple/internal/service"
)

const (
	UserSourceConfig = "config"
	UserSourceSQLite = "sqlite"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr   string
		Prefix string
	}
	Log struct {
		Level  string
		Format string
	}
	Database struct {
		Path string
	}
	Users struct {
		Source string
	}
	// Mechanism is the optional label echoed back on successful logins.
	Mechanism string
	// IP is an optional whitespace separated allowlist of addresses and
	// CIDR prefixes.
	IP string

	// UserList is the ordered user.list value.
	UserList []string `mapstructure:"-"`
	// Passwords holds user.<name>.password for every listed user that has one.
	Passwords map[string]string `mapstructure:"-"`
}

// PasswordFor returns the configured password hash for username.
func (c Config) PasswordFor(username string) (string, bool) {
	hash, ok := c.Passwords[username]
	return hash, ok
}

// Load reads configuration from environment variables and an optional config
// file. When file is empty the usual search paths are tried.
func Load(file string) (Config, error) {
	loadDotEnv()

	v := viper.New()
	v.SetEnvPrefix("AUTHN_SIMPLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("server.prefix", "/authn.simple")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("database.path", "data/authn.db")
	v.SetDefault("users.source", UserSourceConfig)
	v.SetDefault("mechanism", "")
	v.SetDefault("ip", "")
	v.SetDefault("user.list", []string{})

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/authn-simple")
		_ = v.ReadInConfig() // optional file
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.UserList = userList(v)
	cfg.Passwords = make(map[string]string, len(cfg.UserList))
	folded := make(map[string]string, len(cfg.UserList))
	for _, user := range cfg.UserList {
		lower := strings.ToLower(user)
		if other, ok := folded[lower]; ok && other != user {
			return Config{}, &service.ConfigError{
				Username: user,
				Reason:   fmt.Sprintf("conflicts with %q (config keys are case-insensitive)", other),
			}
		}
		folded[lower] = user

		key := "user." + user + ".password"
		if v.IsSet(key) {
			cfg.Passwords[user] = v.GetString(key)
		}
	}

	switch cfg.Users.Source {
	case UserSourceConfig, UserSourceSQLite:
	default:
		return Config{}, fmt.Errorf("unknown users.source %q", cfg.Users.Source)
	}

	return cfg, nil
}

// userList accepts user.list either as a list or as a whitespace/comma
// separated string, which is how it arrives from the environment.
func userList(v *viper.Viper) []string {
	var users []string
	for _, item := range v.GetStringSlice("user.list") {
		for _, name := range strings.FieldsFunc(item, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		}) {
			users = append(users, name)
		}
	}
	return users
}

func loadDotEnv() {
	file, err := os.Open(".env")
	if err != nil {
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		partsIndex := strings.Index(line, "=")
		if partsIndex <= 0 {
			continue
		}

		key := strings.TrimSpace(line[:partsIndex])
		value := strings.TrimSpace(line[partsIndex+1:])
		value = strings.Trim(value, `"'`)
		if key == "" {
			continue
		}

		if _, exists := os.LookupEnv(key); !exists {
			_ = os.Setenv(key, value)
		}
	}
}
