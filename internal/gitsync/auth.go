package gitsync

import (
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"

	"git.home.luguber.info/inful/navindex/internal/config"
	"git.home.luguber.info/inful/navindex/internal/foundation/errors"
)

// authMethod builds go-git authentication from config. A nil config means
// anonymous access.
func authMethod(auth *config.AuthConfig) (transport.AuthMethod, error) {
	if auth == nil {
		return nil, nil
	}
	switch auth.Type {
	case config.AuthTypeNone, "":
		return nil, nil

	case config.AuthTypeSSH:
		keyPath := auth.KeyPath
		if keyPath == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, errors.WrapError(err, errors.CategoryConfig, "cannot locate default ssh key").Build()
			}
			keyPath = filepath.Join(home, ".ssh", "id_rsa")
		}
		keys, err := ssh.NewPublicKeysFromFile("git", keyPath, auth.Password)
		if err != nil {
			return nil, errors.WrapError(err, errors.CategoryAuth, "failed to load ssh key").
				WithContext("key_path", keyPath).
				Build()
		}
		return keys, nil

	case config.AuthTypeToken:
		if auth.Token == "" {
			return nil, errors.ConfigError("token authentication requires a token").Build()
		}
		// GitHub and GitLab accept any non-empty username with a token.
		return &http.BasicAuth{Username: "token", Password: auth.Token}, nil

	case config.AuthTypeBasic:
		if auth.Username == "" || auth.Password == "" {
			return nil, errors.ConfigError("basic authentication requires username and password").Build()
		}
		return &http.BasicAuth{Username: auth.Username, Password: auth.Password}, nil

	default:
		return nil, errors.ConfigError("unsupported git authentication type").
			WithContext("type", string(auth.Type)).
			Build()
	}
}
