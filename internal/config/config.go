// Package config loads named Proxmox VE connection profiles from an INI file.
//
// Every section of the file is one profile; keys of the [DEFAULT] section are
// inherited by all profiles. Recognised keys: host, port, user, password,
// token_name, token_value, verify_ssl and timeout.
package config

import (
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/ini.v1"

	"github.com/dm/pvecheck/internal/client"
)

const (
	// DefaultPort is the port of the Proxmox VE API daemon.
	DefaultPort = 8006
	// DefaultTimeout is used when a profile sets no timeout.
	DefaultTimeout = 10 * time.Second
)

// Keys are case-insensitive and values keep '#' and ';' (no inline comments),
// since passwords and tokens may contain them.
var loadOptions = ini.LoadOptions{
	InsensitiveKeys:     true,
	IgnoreInlineComment: true,
}

// Profile is one named set of connection parameters.
type Profile struct {
	Name       string
	Host       string
	Port       int
	User       string
	Password   string
	TokenName  string
	TokenValue string
	VerifySSL  bool
	Timeout    time.Duration
}

// Config is the ordered set of profiles found in a file.
type Config struct {
	Source   string
	Profiles []Profile
}

// Load parses the INI file at path and validates every profile in it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "load config %s", path)
	}
	cfg, err := LoadBytes(data)
	if err != nil {
		return nil, errors.Wrapf(err, "config %s", path)
	}
	cfg.Source = path
	return cfg, nil
}

// LoadBytes parses INI data held in memory.
func LoadBytes(data []byte) (*Config, error) {
	f, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	return parse(f)
}

func parse(f *ini.File) (*Config, error) {
	defaults := f.Section(ini.DefaultSection)
	cfg := &Config{}
	for _, sec := range f.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		p, err := parseProfile(sec, defaults)
		if err != nil {
			return nil, err
		}
		cfg.Profiles = append(cfg.Profiles, p)
	}
	if len(cfg.Profiles) == 0 {
		return nil, errors.New("no profiles defined")
	}
	return cfg, nil
}

// lookup returns the value of key in sec, falling back to the default section.
func lookup(sec, defaults *ini.Section, key string) (string, bool) {
	if sec.HasKey(key) {
		return strings.TrimSpace(sec.Key(key).String()), true
	}
	if defaults.HasKey(key) {
		return strings.TrimSpace(defaults.Key(key).String()), true
	}
	return "", false
}

func parseProfile(sec, defaults *ini.Section) (Profile, error) {
	p := Profile{
		Name:      sec.Name(),
		Port:      DefaultPort,
		VerifySSL: true,
		Timeout:   DefaultTimeout,
	}
	get := func(key string) string {
		v, _ := lookup(sec, defaults, key)
		return v
	}

	p.Host = get("host")
	p.User = get("user")
	p.Password = get("password")
	p.TokenName = get("token_name")
	p.TokenValue = get("token_value")

	if h, port, err := net.SplitHostPort(p.Host); err == nil {
		n, err := strconv.Atoi(port)
		if err != nil {
			return Profile{}, errors.Errorf("profile %s: invalid port in host %q", p.Name, p.Host)
		}
		p.Host, p.Port = h, n
	}
	if v, ok := lookup(sec, defaults, "port"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 65535 {
			return Profile{}, errors.Errorf("profile %s: invalid port %q", p.Name, v)
		}
		p.Port = n
	}
	if v, ok := lookup(sec, defaults, "verify_ssl"); ok && v != "" {
		b, err := parseBool(v)
		if err != nil {
			return Profile{}, errors.Wrapf(err, "profile %s: verify_ssl", p.Name)
		}
		p.VerifySSL = b
	}
	if v, ok := lookup(sec, defaults, "timeout"); ok && v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return Profile{}, errors.Wrapf(err, "profile %s: timeout", p.Name)
		}
		p.Timeout = d
	}

	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Validate checks that the profile carries everything needed to connect.
func (p Profile) Validate() error {
	switch {
	case p.Host == "":
		return errors.Errorf("profile %s: host is required", p.Name)
	case p.User == "":
		return errors.Errorf("profile %s: user is required", p.Name)
	case (p.TokenName == "") != (p.TokenValue == ""):
		return errors.Errorf("profile %s: token_name and token_value must be set together", p.Name)
	case p.TokenName == "" && p.Password == "":
		return errors.Errorf("profile %s: either password or token_name/token_value is required", p.Name)
	}
	return nil
}

// BaseURL returns the API root of the profile's host.
func (p Profile) BaseURL() string {
	return "https://" + net.JoinHostPort(p.Host, strconv.Itoa(p.Port)) + "/api2/json"
}

// AuthMode describes how the profile authenticates, for display.
func (p Profile) AuthMode() string {
	if p.TokenName != "" {
		return "token " + p.User + "!" + p.TokenName
	}
	return "password " + p.User
}

// ClientConfig converts the profile to a client configuration. A non-zero
// timeout overrides the profile's own timeout.
func (p Profile) ClientConfig(timeout time.Duration) client.ClientConfig {
	if timeout <= 0 {
		timeout = p.Timeout
	}
	return client.ClientConfig{
		BaseURL:            p.BaseURL(),
		User:               p.User,
		Password:           p.Password,
		TokenName:          p.TokenName,
		TokenValue:         p.TokenValue,
		InsecureSkipVerify: !p.VerifySSL,
		RequestTimeout:     timeout,
	}
}

// Names returns the profile names in file order.
func (c *Config) Names() []string {
	names := make([]string, len(c.Profiles))
	for i, p := range c.Profiles {
		names[i] = p.Name
	}
	return names
}

// Select returns the named profiles in the requested order, or every profile
// in file order when names is empty. Unknown or duplicate names are errors.
func (c *Config) Select(names []string) ([]Profile, error) {
	if len(names) == 0 {
		return append([]Profile(nil), c.Profiles...), nil
	}

	byName := make(map[string]Profile, len(c.Profiles))
	for _, p := range c.Profiles {
		byName[p.Name] = p
	}
	seen := make(map[string]bool, len(names))
	out := make([]Profile, 0, len(names))
	for _, n := range names {
		p, ok := byName[n]
		if !ok {
			return nil, errors.Errorf("unknown section %q (available: %s)", n, strings.Join(c.Names(), ", "))
		}
		if seen[n] {
			return nil, errors.Errorf("section %q selected more than once", n)
		}
		seen[n] = true
		out = append(out, p)
	}
	return out, nil
}

func parseBool(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "1", "yes", "true", "on":
		return true, nil
	case "0", "no", "false", "off":
		return false, nil
	}
	return false, errors.Errorf("not a boolean: %q", v)
}

// parseTimeout accepts a Go duration ("15s") or a plain number of seconds.
func parseTimeout(v string) (time.Duration, error) {
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		if secs <= 0 {
			return 0, errors.Errorf("must be positive: %q", v)
		}
		return time.Duration(secs * float64(time.Second)), nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid duration %q", v)
	}
	if d <= 0 {
		return 0, errors.Errorf("must be positive: %q", v)
	}
	return d, nil
}
