package cli

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/allsmog/zkauth-go/pkg/zkauth"
	"github.com/allsmog/zkauth-go/pkg/zkauth/discretelog"
	"github.com/allsmog/zkauth-go/pkg/zkauth/elliptic"
)

// LoadOrGenerateConfiguration implements the server's load-or-generate
// configuration surface: if -config-generate was not passed and a
// configuration already exists at opts.ConfigPath, it is loaded;
// otherwise a fresh one is generated per opts.ConfigFlavor and persisted
// (subject to -config-overwrite).
func LoadOrGenerateConfiguration(opts *Options) (zkauth.Configuration, error) {
	if !opts.ConfigGenerate {
		if _, err := os.Stat(opts.ConfigPath); err == nil {
			return loadConfiguration(opts.ConfigPath)
		}
	}

	cfg, err := generateConfiguration(opts)
	if err != nil {
		return zkauth.Configuration{}, err
	}

	if err := writeConfiguration(opts, cfg); err != nil {
		return zkauth.Configuration{}, err
	}

	return cfg, nil
}

func loadConfiguration(path string) (zkauth.Configuration, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return zkauth.Configuration{}, fmt.Errorf("%w: reading %s: %v", zkauth.ErrInternal, path, err)
	}

	var cfg zkauth.Configuration
	if err := json.Unmarshal(b, &cfg); err != nil {
		return zkauth.Configuration{}, fmt.Errorf("%w: parsing %s: %v", zkauth.ErrInvalidEncoding, path, err)
	}

	return cfg, nil
}

func generateConfiguration(opts *Options) (zkauth.Configuration, error) {
	switch opts.ConfigFlavor {
	case FlavorDiscreteLogarithm:
		params, err := discreteLogParameters(opts)
		if err != nil {
			return zkauth.Configuration{}, err
		}
		return discretelog.New(params).Configuration(), nil

	case FlavorEllipticCurve:
		f, err := elliptic.GenerateParameters()
		if err != nil {
			return zkauth.Configuration{}, err
		}
		return f.Configuration(), nil

	default:
		return zkauth.Configuration{}, fmt.Errorf("%w: unknown config flavor %q", zkauth.ErrInvalidArgument, opts.ConfigFlavor)
	}
}

func discreteLogParameters(opts *Options) (*discretelog.Parameters, error) {
	if opts.ConfigPrime != "" {
		q, ok := new(big.Int).SetString(opts.ConfigPrime, 10)
		if !ok {
			return nil, fmt.Errorf("%w: -config-prime %q is not a decimal integer", zkauth.ErrInvalidArgument, opts.ConfigPrime)
		}
		return discretelog.GenerateParametersWithQ(q)
	}
	return discretelog.GenerateParameters(opts.ConfigPrimeBits)
}

func writeConfiguration(opts *Options, cfg zkauth.Configuration) error {
	if _, err := os.Stat(opts.ConfigPath); err == nil && !opts.ConfigOverwrite {
		return fmt.Errorf("%w: %s already exists (pass -config-overwrite to replace it)", zkauth.ErrInvalidArgument, opts.ConfigPath)
	}

	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %v", zkauth.ErrInternal, err)
	}

	if err := os.WriteFile(opts.ConfigPath, b, 0o600); err != nil {
		return fmt.Errorf("%w: writing %s: %v", zkauth.ErrInternal, opts.ConfigPath, err)
	}

	return nil
}
