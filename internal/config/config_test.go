package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleConfig = `
[DEFAULT]
user = monitor@pve
token_name = nagios
verify_ssl = false

[cluster-a]
host = pve-a.example.com
token_value = aaaa-bbbb

[cluster-b]
host = 10.0.0.2:8443
user = root@pam
password = p#ss;word
token_name =
timeout = 30

[Cluster-C]
HOST = pve-c.example.com
Token_Value = cccc
verify_ssl = yes
timeout = 1m30s
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pve.ini")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Profiles(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, []string{"cluster-a", "cluster-b", "Cluster-C"}, cfg.Names())

	a := cfg.Profiles[0]
	assert.Equal(t, "pve-a.example.com", a.Host)
	assert.Equal(t, DefaultPort, a.Port)
	assert.Equal(t, "monitor@pve", a.User, "inherited from DEFAULT")
	assert.Equal(t, "nagios", a.TokenName, "inherited from DEFAULT")
	assert.Equal(t, "aaaa-bbbb", a.TokenValue)
	assert.False(t, a.VerifySSL)
	assert.Equal(t, DefaultTimeout, a.Timeout)

	b := cfg.Profiles[1]
	assert.Equal(t, "10.0.0.2", b.Host)
	assert.Equal(t, 8443, b.Port)
	assert.Equal(t, "root@pam", b.User)
	assert.Equal(t, "p#ss;word", b.Password, "no inline comment stripping")
	assert.Empty(t, b.TokenName, "explicit empty value overrides DEFAULT")
	assert.Equal(t, 30*time.Second, b.Timeout)

	c := cfg.Profiles[2]
	assert.Equal(t, "pve-c.example.com", c.Host, "keys are case-insensitive")
	assert.Equal(t, "cccc", c.TokenValue)
	assert.True(t, c.VerifySSL)
	assert.Equal(t, 90*time.Second, c.Timeout)
}

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.ini")
	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "load config "+path)
}

func TestLoad_SharesParserWithLoadBytes(t *testing.T) {
	fromFile, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)
	fromBytes, err := LoadBytes([]byte(sampleConfig))
	require.NoError(t, err)

	assert.NotEmpty(t, fromFile.Source)
	assert.Empty(t, fromBytes.Source)
	assert.Equal(t, fromBytes.Profiles, fromFile.Profiles)

	path := writeConfig(t, "[a]\nhost = pve\n")
	_, err = Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config "+path+": ")
	assert.Contains(t, err.Error(), "user is required")
}

func TestLoadBytes_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"no sections", "user = x\n", "no profiles defined"},
		{"missing host", "[a]\nuser = root@pam\npassword = x\n", "host is required"},
		{"missing user", "[a]\nhost = pve\npassword = x\n", "user is required"},
		{"no credentials", "[a]\nhost = pve\nuser = root@pam\n", "either password or token_name/token_value is required"},
		{"half token", "[a]\nhost = pve\nuser = root@pam\ntoken_name = t\n", "must be set together"},
		{"bad port", "[a]\nhost = pve\nuser = u\npassword = x\nport = http\n", "invalid port"},
		{"bad verify_ssl", "[a]\nhost = pve\nuser = u\npassword = x\nverify_ssl = maybe\n", "verify_ssl"},
		{"bad timeout", "[a]\nhost = pve\nuser = u\npassword = x\ntimeout = soon\n", "timeout"},
		{"negative timeout", "[a]\nhost = pve\nuser = u\npassword = x\ntimeout = -5\n", "must be positive"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := LoadBytes([]byte(tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestSelect(t *testing.T) {
	cfg, err := LoadBytes([]byte(sampleConfig))
	require.NoError(t, err)

	all, err := cfg.Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	sel, err := cfg.Select([]string{"Cluster-C", "cluster-a"})
	require.NoError(t, err)
	require.Len(t, sel, 2)
	assert.Equal(t, "Cluster-C", sel[0].Name, "requested order is kept")
	assert.Equal(t, "cluster-a", sel[1].Name)

	_, err = cfg.Select([]string{"cluster-x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown section "cluster-x"`)

	_, err = cfg.Select([]string{"cluster-a", "cluster-a"})
	assert.Error(t, err)
}

func TestProfile_ClientConfig(t *testing.T) {
	p := Profile{
		Name:       "a",
		Host:       "pve.example.com",
		Port:       8006,
		User:       "monitor@pve",
		TokenName:  "nagios",
		TokenValue: "secret",
		VerifySSL:  false,
		Timeout:    20 * time.Second,
	}

	cc := p.ClientConfig(0)
	assert.Equal(t, "https://pve.example.com:8006/api2/json", cc.BaseURL)
	assert.True(t, cc.InsecureSkipVerify)
	assert.True(t, cc.UsesToken())
	assert.Equal(t, 20*time.Second, cc.RequestTimeout)

	cc = p.ClientConfig(5 * time.Second)
	assert.Equal(t, 5*time.Second, cc.RequestTimeout, "explicit timeout overrides the profile")

	assert.Equal(t, "token monitor@pve!nagios", p.AuthMode())
	p.TokenName = ""
	assert.Equal(t, "password monitor@pve", p.AuthMode())
}

func TestProfile_BaseURL_IPv6(t *testing.T) {
	p := Profile{Host: "fd00::10", Port: 8006}
	assert.Equal(t, "https://[fd00::10]:8006/api2/json", p.BaseURL())
}
