package config

import "git.home.luguber.info/inful/navindex/internal/foundation/normalization"

var (
	missingScriptsNormalizer = normalization.NewNormalizer("site.missing_scripts", map[string]MissingScriptPolicy{
		"error": MissingScriptError,
		"warn":  MissingScriptWarn,
	}, MissingScriptError)

	retryModeNormalizer = normalization.NewNormalizer("retry.mode", map[string]RetryBackoffMode{
		"fixed":       RetryBackoffFixed,
		"linear":      RetryBackoffLinear,
		"exponential": RetryBackoffExponential,
	}, RetryBackoffLinear)

	authTypeNormalizer = normalization.NewNormalizer("git.auth.type", map[string]AuthType{
		"none":  AuthTypeNone,
		"token": AuthTypeToken,
		"basic": AuthTypeBasic,
		"ssh":   AuthTypeSSH,
	}, AuthTypeNone)
)
