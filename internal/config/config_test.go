package config

import "testing"

func validConfig() *Config {
	return &Config{
		Addr:                 ":8080",
		DefaultMode:          "at_least_once",
		DefaultLossThreshold: 0,
		MaxRequestsPerSecond: 100,
		LogLevel:             "info",
		LogFormat:            "json",
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
}

func TestValidateRejectsEmptyAddr(t *testing.T) {
	c := validConfig()
	c.Addr = ""
	if err := c.Validate(); err == nil {
		t.Fatal("Validate() with empty Addr returned nil error")
	}
}

func TestValidateRejectsOutOfRangeLossThreshold(t *testing.T) {
	c := validConfig()
	c.DefaultLossThreshold = 101
	if err := c.Validate(); err == nil {
		t.Fatal("Validate() with loss threshold 101 returned nil error")
	}
}

func TestValidateRejectsUnknownMode(t *testing.T) {
	c := validConfig()
	c.DefaultMode = "sometimes"
	if err := c.Validate(); err == nil {
		t.Fatal("Validate() with unknown mode returned nil error")
	}
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	c := validConfig()
	c.LogLevel = "verbose"
	if err := c.Validate(); err == nil {
		t.Fatal("Validate() with unknown log level returned nil error")
	}
}
