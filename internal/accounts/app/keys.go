package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/aussiebroadwan/accounts/pkg/cryptox"
	"github.com/aussiebroadwan/accounts/pkg/jwtx"
)

// InitSigningKey loads the RSA key pair and builds the token codec around
// it. With GenerateKeys set, a missing pair is generated and written first.
// Every node serving the same users must share the pair.
func InitSigningKey(cfg Config, logger *slog.Logger) (*jwtx.Codec, *jwtx.KeySet, error) {
	if _, err := os.Stat(cfg.PrivateKeyFile); errors.Is(err, fs.ErrNotExist) {
		if !cfg.GenerateKeys {
			return nil, nil, fmt.Errorf("private key %s not found (set AUTH_GENERATE_KEYS=true to create one)", cfg.PrivateKeyFile)
		}

		logger.Warn("generating new signing key pair",
			"private_key", cfg.PrivateKeyFile,
			"public_key", cfg.PublicKeyFile,
			"bits", cfg.RSABits,
		)
		if err := cryptox.WriteRSAKeyPair(cfg.PrivateKeyFile, cfg.PublicKeyFile, cfg.RSABits); err != nil {
			return nil, nil, fmt.Errorf("failed to generate key pair: %w", err)
		}
	}

	priv, _, err := jwtx.LoadRSAKeyPair(cfg.PrivateKeyFile, cfg.PublicKeyFile)
	if err != nil {
		return nil, nil, err
	}

	signer, err := jwtx.NewSignerRS256FromKey(priv)
	if err != nil {
		return nil, nil, err
	}

	keys := jwtx.NewKeySet()
	codec, err := jwtx.NewCodec(signer, keys, cfg.Issuer)
	if err != nil {
		return nil, nil, err
	}

	logger.Info("signing key loaded", "kid", signer.KID(), "issuer", cfg.Issuer)
	return codec, keys, nil
}
