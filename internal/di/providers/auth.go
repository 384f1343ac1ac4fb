package providers

import (
	"github.com/samber/do/v2"

	"github.com/mailib/mailib-server/internal/auth"
	"github.com/mailib/mailib-server/internal/config"
	"github.com/mailib/mailib-server/internal/logger"
)

// AuthKey wraps the token key bytes.
type AuthKey []byte

// ProvideAuthKey uses the configured key or loads/generates {data}/auth.key.
func ProvideAuthKey(i do.Injector) (AuthKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if len(cfg.Auth.TokenKey) > 0 {
		log.Info("Authentication key taken from configuration")
		return AuthKey(cfg.Auth.TokenKey), nil
	}

	key, err := auth.LoadOrGenerateKey(cfg.Storage.DataPath)
	if err != nil {
		return nil, err
	}
	cfg.Auth.TokenKey = key

	log.Info("Authentication key loaded",
		"access_token_duration", cfg.Auth.AccessTokenDuration,
	)

	return AuthKey(key), nil
}

// ProvideTokenService provides the PASETO token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	key := do.MustInvoke[AuthKey](i)

	return auth.NewTokenService([]byte(key), auth.TokenOptions{
		Issuer:         cfg.Auth.Issuer,
		Audience:       cfg.Auth.Audience,
		AccessDuration: cfg.Auth.AccessTokenDuration,
	})
}
