package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Transport selects how the portal reaches the spreadsheet backend.
type Transport string

const (
	TransportHTTP   Transport = "http"
	TransportBridge Transport = "bridge"
	TransportMock   Transport = "mock"
)

type Config struct {
	Addr        string
	DBUrl       string
	TokenSecret string
	TokenTTL    time.Duration
	TokenSweep  string
	Debug       bool
	LogJSON     bool

	Transport   Transport
	Endpoint    string
	BridgeURL   string
	BridgeToken string
	MockDelay   time.Duration
	HTTPTimeout time.Duration
}

// ParseFlags loads an optional .env file and parses the command line.
func ParseFlags() (Config, error) {
	_ = godotenv.Load()
	return Parse(os.Args[1:], os.Getenv)
}

// Parse reads the flags in args. Environment variables named PORTAL_<FLAG>
// (upper case, dashes as underscores) replace the built-in defaults.
func Parse(args []string, getenv func(string) string) (cfg Config, err error) {
	env := func(name, def string) string {
		if v := getenv(name); v != "" {
			return v
		}
		return def
	}

	fs := flag.NewFlagSet("portal", flag.ContinueOnError)

	var host string
	fs.StringVar(&host, "host", env("PORTAL_HOST", "0.0.0.0"), "listen host name")
	var port uint
	fs.UintVar(&port, "port", envUint(env("PORTAL_PORT", ""), 8080), "listen port number")
	fs.StringVar(&cfg.DBUrl, "db-url", env("PORTAL_DB_URL", "portal.sqlite"), "path to SQLite3 DB file")
	fs.StringVar(&cfg.TokenSecret, "token-secret", env("PORTAL_TOKEN_SECRET", ""), "secret key for token encryption and decryption")
	var ttl uint
	fs.UintVar(&ttl, "token-ttl", envUint(env("PORTAL_TOKEN_TTL", ""), 3600), "token TTL in seconds")
	fs.StringVar(&cfg.TokenSweep, "token-sweep", env("PORTAL_TOKEN_SWEEP", "@every 1h"), "cron spec for deleting expired refresh tokens")
	fs.BoolVar(&cfg.Debug, "debug", env("PORTAL_DEBUG", "") == "true", "log at DEBUG level")
	fs.BoolVar(&cfg.LogJSON, "log-json", env("PORTAL_LOG_JSON", "") == "true", "log as JSON lines")

	var transport string
	fs.StringVar(&transport, "transport", env("PORTAL_TRANSPORT", string(TransportHTTP)), "backend transport: http, bridge or mock")
	fs.StringVar(&cfg.Endpoint, "endpoint", env("PORTAL_ENDPOINT", ""), "default backend endpoint (http transport)")
	fs.StringVar(&cfg.BridgeURL, "bridge-url", env("PORTAL_BRIDGE_URL", ""), "script execution URL (bridge transport)")
	fs.StringVar(&cfg.BridgeToken, "bridge-token", env("PORTAL_BRIDGE_TOKEN", ""), "bearer token for the script execution URL")
	fs.DurationVar(&cfg.MockDelay, "mock-delay", envDuration(env("PORTAL_MOCK_DELAY", ""), 800*time.Millisecond), "simulated latency when no bridge is configured")
	fs.DurationVar(&cfg.HTTPTimeout, "http-timeout", envDuration(env("PORTAL_HTTP_TIMEOUT", ""), 30*time.Second), "timeout for backend requests")

	if err = fs.Parse(args); err != nil {
		return
	}

	cfg.Addr = net.JoinHostPort(host, strconv.Itoa(int(port)))
	cfg.TokenTTL = time.Duration(ttl) * time.Second
	cfg.Transport = Transport(transport)

	switch {
	case cfg.TokenSecret == "":
		err = errors.New("missing parameter -token-secret")
	case cfg.Transport != TransportHTTP && cfg.Transport != TransportBridge && cfg.Transport != TransportMock:
		err = fmt.Errorf("invalid -transport %q", transport)
	}

	return
}

func envUint(v string, def uint) uint {
	n, err := strconv.ParseUint(v, 10, 0)
	if err != nil {
		return def
	}
	return uint(n)
}

func envDuration(v string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func (cfg Config) Url() (url string) {
	url = cfg.Addr
	url = regexp.MustCompile(`^0.0.0.0`).ReplaceAllString(url, "localhost")
	url = "http://" + url
	return
}
