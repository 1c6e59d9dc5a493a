// Package cli implements the server binary's flag parsing, configuration
// load/generate logic, and run loop, the outer surface surrounding the
// protocol core.
package cli

import (
	"flag"
	"os"
	"strconv"
	"time"
)

// Flavor names the configuration flavor selector's CLI values.
type Flavor string

const (
	FlavorDiscreteLogarithm Flavor = "discrete-logarithm"
	FlavorEllipticCurve     Flavor = "elliptic-curve"
)

// Options holds the server binary's resolved configuration.
type Options struct {
	Host string
	Port int

	ConfigPath      string
	ConfigGenerate  bool
	ConfigOverwrite bool
	ConfigFlavor    Flavor
	ConfigPrimeBits int
	ConfigPrime     string

	ChallengeTTL time.Duration
	SessionTTL   time.Duration
}

// ParseOptions parses args (typically os.Args[1:]) into Options, applying
// PORT and CONFIG_PATH environment overrides as defaults the flags can
// still override.
func ParseOptions(args []string) (*Options, error) {
	fs := flag.NewFlagSet("zkauthd", flag.ContinueOnError)

	host := fs.String("host", "127.0.0.1", "listen host")
	port := fs.Int("port", envInt("PORT", 0), "listen port (0 selects an ephemeral port)")
	configPath := fs.String("config", envString("CONFIG_PATH", "zkauth-config.json"), "configuration file path")
	configGenerate := fs.Bool("config-generate", false, "generate a fresh configuration and exit without serving")
	configOverwrite := fs.Bool("config-overwrite", false, "allow overwriting an existing configuration file")
	configFlavor := fs.String("config-flavor", string(FlavorDiscreteLogarithm), "flavor to generate: discrete-logarithm|elliptic-curve")
	configPrimeBits := fs.Int("config-prime-bits", 256, "bit length of the generated discrete-logarithm prime q")
	configPrime := fs.String("config-prime", "", "explicit decimal prime q to use instead of generating one (discrete-logarithm only)")
	challengeTTL := fs.Duration("challenge-ttl", 5*time.Minute, "challenge TTL")
	sessionTTL := fs.Duration("session-ttl", 60*time.Minute, "session TTL")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return &Options{
		Host:            *host,
		Port:            *port,
		ConfigPath:      *configPath,
		ConfigGenerate:  *configGenerate,
		ConfigOverwrite: *configOverwrite,
		ConfigFlavor:    Flavor(*configFlavor),
		ConfigPrimeBits: *configPrimeBits,
		ConfigPrime:     *configPrime,
		ChallengeTTL:    *challengeTTL,
		SessionTTL:      *sessionTTL,
	}, nil
}

func envString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
