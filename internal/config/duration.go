package config

import (
	"fmt"
	"strings"
	"time"
)

// DurationOrDefault parses a duration string and falls back to defaultValue when empty.
func DurationOrDefault(value string, defaultValue string) (time.Duration, error) {
	candidate := strings.TrimSpace(value)
	if candidate == "" {
		candidate = strings.TrimSpace(defaultValue)
	}
	if candidate == "" {
		return 0, fmt.Errorf("duration value is empty")
	}

	d, err := time.ParseDuration(candidate)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", candidate, err)
	}
	return d, nil
}

// ServerTimeouts is the parsed form of the server section.
type ServerTimeouts struct {
	Read     time.Duration
	Write    time.Duration
	Idle     time.Duration
	Shutdown time.Duration
}

func (s ServerConfig) Timeouts() (ServerTimeouts, error) {
	var out ServerTimeouts
	fields := []struct {
		name  string
		value string
		def   string
		dst   *time.Duration
	}{
		{"server.read_timeout", s.ReadTimeout, DefaultServerReadTimeout, &out.Read},
		{"server.write_timeout", s.WriteTimeout, DefaultServerWriteTimeout, &out.Write},
		{"server.idle_timeout", s.IdleTimeout, DefaultServerIdleTimeout, &out.Idle},
		{"server.shutdown_timeout", s.ShutdownTimeout, DefaultServerShutdownTimeout, &out.Shutdown},
	}
	for _, f := range fields {
		d, err := DurationOrDefault(f.value, f.def)
		if err != nil {
			return ServerTimeouts{}, fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = d
	}
	return out, nil
}
