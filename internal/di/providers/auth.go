package providers

import (
	"github.com/samber/do/v2"

	"github.com/larderapp/larder-server/internal/auth"
	"github.com/larderapp/larder-server/internal/config"
	"github.com/larderapp/larder-server/internal/logger"
)

// SessionKey wraps the session cookie key bytes.
type SessionKey []byte

// ProvideSessionKey loads or generates the session cookie key.
func ProvideSessionKey(i do.Injector) (SessionKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	key, err := auth.LoadOrGenerateKey(cfg.Metadata.BasePath)
	if err != nil {
		return nil, err
	}

	cfg.Auth.SessionKey = key

	log.Info("Session key loaded",
		"session_duration", cfg.Auth.SessionDuration,
		"secure_cookies", cfg.Auth.SecureCookies,
	)

	return SessionKey(key), nil
}

// ProvideSessionCodec provides the PASETO session cookie codec.
func ProvideSessionCodec(i do.Injector) (*auth.SessionCodec, error) {
	cfg := do.MustInvoke[*config.Config](i)
	key := do.MustInvoke[SessionKey](i)

	return auth.NewSessionCodec([]byte(key), cfg.Auth.SessionDuration)
}
