package gitsync

import (
	"strings"

	"git.home.luguber.info/inful/navindex/internal/foundation/errors"
)

// classify translates go-git errors into classified errors so retry.Policy
// only retries transient transport failures.
func classify(err error, op, url string) error {
	if err == nil {
		return nil
	}
	if _, ok := errors.AsClassified(err); ok {
		return err
	}

	l := strings.ToLower(err.Error())
	category := errors.CategoryGit
	retryable := false
	switch {
	case strings.Contains(l, "authentication") || strings.Contains(l, "authorization") ||
		strings.Contains(l, "not authorized") || strings.Contains(l, "invalid credentials"):
		category = errors.CategoryAuth
	case strings.Contains(l, "repository not found") || strings.Contains(l, "does not exist") ||
		strings.Contains(l, "couldn't find remote ref") || strings.Contains(l, "reference not found"):
		category = errors.CategoryNotFound
	case strings.Contains(l, "remote hung up") || strings.Contains(l, "connection reset") ||
		strings.Contains(l, "connection refused") || strings.Contains(l, "timeout") ||
		strings.Contains(l, "no route to host") || strings.Contains(l, "temporary"):
		category = errors.CategoryNetwork
		retryable = true
	case strings.Contains(l, "unsupported scheme") || strings.Contains(l, "protocol not supported"):
		category = errors.CategoryConfig
	}

	b := errors.WrapError(err, category, "git "+op+" failed").
		WithContext("op", op).
		WithContext("url", url)
	if retryable {
		b = b.Retryable()
	}
	return b.Build()
}
