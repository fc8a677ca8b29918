package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Data struct {
		Dir                 string `yaml:"dir"`
		Pattern             string `yaml:"pattern"`
		Watch               bool   `yaml:"watch"`
		PollIntervalSeconds int    `yaml:"poll_interval_seconds"`
	} `yaml:"data"`
	Logging struct {
		Level      string `yaml:"level"`
		Pretty     bool   `yaml:"pretty"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
		MaxAgeDays int    `yaml:"max_age_days"`
	} `yaml:"logging"`
	Server struct {
		Addr                string   `yaml:"addr"`
		Pprof               bool     `yaml:"pprof"`
		ReadTimeoutSeconds  int      `yaml:"read_timeout_seconds"`
		WriteTimeoutSeconds int      `yaml:"write_timeout_seconds"`
		IdleTimeoutSeconds  int      `yaml:"idle_timeout_seconds"`
		AdminAllowCIDRs     []string `yaml:"admin_allow_cidrs"`
	} `yaml:"server"`
}

func defaultConfig() Config {
	var c Config
	c.Data.Dir = "data"
	c.Data.Pattern = "*.csv"
	c.Data.Watch = false
	c.Data.PollIntervalSeconds = 2
	c.Logging.Level = "info"
	c.Logging.Pretty = false
	c.Logging.File = ""
	c.Logging.MaxSizeMB = 100
	c.Logging.MaxBackups = 3
	c.Logging.MaxAgeDays = 28
	c.Server.Addr = ":9090"
	c.Server.Pprof = false
	c.Server.ReadTimeoutSeconds = 5
	c.Server.WriteTimeoutSeconds = 10
	c.Server.IdleTimeoutSeconds = 60
	c.Server.AdminAllowCIDRs = []string{"127.0.0.0/8", "::1/128"}
	return c
}

func Load() Config {
	c := defaultConfig()
	if path := os.Getenv("FXBOOK_CONFIG"); path != "" {
		if b, err := os.ReadFile(path); err == nil {
			_ = yaml.Unmarshal(b, &c)
		}
	}
	if v := os.Getenv("FXBOOK_DATA_DIR"); v != "" {
		c.Data.Dir = v
	}
	if v := os.Getenv("FXBOOK_DATA_PATTERN"); v != "" {
		c.Data.Pattern = v
	}
	if v := os.Getenv("FXBOOK_WATCH"); v == "1" || v == "true" {
		c.Data.Watch = true
	}
	if v := os.Getenv("FXBOOK_POLL_INTERVAL_SECONDS"); v != "" {
		var n int
		_, _ = fmt.Sscan(v, &n)
		if n > 0 {
			c.Data.PollIntervalSeconds = n
		}
	}
	if v := os.Getenv("FXBOOK_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("FXBOOK_LOG_PRETTY"); v == "1" || v == "true" {
		c.Logging.Pretty = true
	}
	if v := os.Getenv("FXBOOK_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv("FXBOOK_HTTP_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("FXBOOK_PPROF"); v == "1" || v == "true" {
		c.Server.Pprof = true
	}
	if v := os.Getenv("FXBOOK_ADMIN_ALLOW_CIDRS"); v != "" {
		c.Server.AdminAllowCIDRs = splitCSV(v)
	}
	return c
}

func splitCSV(s string) []string {
	var out []string
	buf := []rune{}
	for _, r := range s {
		if r == ',' {
			if len(buf) > 0 {
				out = append(out, string(buf))
				buf = buf[:0]
			}
			continue
		}
		buf = append(buf, r)
	}
	if len(buf) > 0 {
		out = append(out, string(buf))
	}
	return out
}
