package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const (
	LFJSON LogFormat = "json"
	LFText LogFormat = "text"
)

// Config holds the CLI settings. Flags override values from the file.
type Config struct {
	Proxy struct {
		Host     string `toml:"host"`
		Port     int    `toml:"port"`
		User     string `toml:"user"`
		Password string `toml:"password"`
	} `toml:"proxy"`
	Verify struct {
		Timeout Duration `toml:"timeout"`
		Domain  bool     `toml:"domain"`
		Mailbox bool     `toml:"mailbox"`
		Strict  bool     `toml:"strict"`
		Workers int      `toml:"workers"`
	} `toml:"verify"`
	Probe struct {
		Port     string   `toml:"port"`
		HeloName string   `toml:"heloName"`
		MailFrom string   `toml:"mailFrom"`
		DenyList []string `toml:"denyList"`
	} `toml:"probe"`
	Log struct {
		Level  string    `toml:"level"`
		Format LogFormat `toml:"format"`
	} `toml:"log"`
}

// DefaultConfig returns the settings used without a config file.
func DefaultConfig() Config {
	c := Config{}
	c.Proxy.Host = "127.0.0.1"
	c.Proxy.Port = 1080
	c.Verify.Timeout = Duration{duration: 10 * time.Second}
	c.Verify.Domain = true
	c.Verify.Mailbox = true
	c.Verify.Workers = 5
	c.Log.Level = "info"
	c.Log.Format = LFText
	return c
}

// LoadConfig decodes fileName on top of base.
func LoadConfig(fileName string, base Config) (Config, error) {
	c := base
	if _, err := toml.DecodeFile(fileName, &c); err != nil {
		return base, fmt.Errorf("unable to load %q, reason: %w", fileName, err)
	}
	return c, nil
}

type Duration struct {
	duration time.Duration
}

func (d Duration) String() string {
	return d.duration.String()
}

func (d *Duration) Set(v string) error {
	var err error
	d.duration, err = time.ParseDuration(v)
	return err
}

func (d Duration) Type() string {
	return "duration"
}

func (d Duration) AsDuration() time.Duration {
	return d.duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	return d.Set(string(text))
}

type LogFormat string

func (lf LogFormat) String() string {
	return string(lf)
}

func (lf *LogFormat) Set(v string) error {
	return lf.UnmarshalText([]byte(v))
}

func (lf LogFormat) Type() string {
	return "format"
}

func (lf *LogFormat) UnmarshalText(value []byte) error {
	validTypes := []string{string(LFJSON), string(LFText)}
	v := string(value)
	for _, t := range validTypes {
		if t == v {
			*lf = LogFormat(v)
			return nil
		}
	}

	expected := strings.Join(validTypes, ", ")
	return fmt.Errorf("unsupported value %q for log format. Expected one of: %q", value, expected)
}
