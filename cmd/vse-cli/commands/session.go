package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"vse-client/internal/scrapers/vse"
)

// readSession loads a cached credential, found is false if nothing was cached.
func readSession(path string) (cred vse.Credential, found bool, err error) {
	contents, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return vse.Credential{}, false, nil
	}
	if err != nil {
		return vse.Credential{}, false, err
	}
	err = json.Unmarshal(contents, &cred)
	if err != nil {
		return vse.Credential{}, false, fmt.Errorf("unmarshal session %s: %w", path, err)
	}
	return cred, !cred.IsZero(), nil
}

// the session holds a live login, only the current user may read it
func writeSession(path string, cred vse.Credential) error {
	serialized, err := json.Marshal(cred)
	if err != nil {
		return err
	}
	return os.WriteFile(path, serialized, 0600)
}

func login(ctx context.Context) (vse.Credential, vse.AuthResult, error) {
	cred, result, err := client.Authenticate(ctx, cfg.Username, cfg.Password)
	if err != nil {
		return vse.Credential{}, result, err
	}
	if result != vse.AUTH_AUTHENTICATED {
		return cred, result, nil
	}
	err = writeSession(*sessionPath, cred)
	if err != nil {
		slog.Warn("failed to cache session", "path", *sessionPath, "err", err)
	}
	return cred, result, nil
}

// cachedCredential reads the session cache, an unreadable cache counts as no session.
func cachedCredential() (vse.Credential, bool) {
	cred, found, err := readSession(*sessionPath)
	if err != nil {
		slog.Warn("ignoring unreadable session", "path", *sessionPath, "err", err)
	}
	return cred, found
}

// freshCredential logs in and fails unless the login was accepted.
func freshCredential(ctx context.Context) (vse.Credential, error) {
	cred, result, err := login(ctx)
	if err != nil {
		return vse.Credential{}, err
	}
	if result != vse.AUTH_AUTHENTICATED {
		return vse.Credential{}, fmt.Errorf("login %s for %s", result, cfg.Username)
	}
	return cred, nil
}

type sessionSource struct {
	cached func() (vse.Credential, bool)
	login  func(ctx context.Context) (vse.Credential, error)
}

var defaultSessionSource = sessionSource{
	cached: cachedCredential,
	login:  freshCredential,
}

// withSession runs op with the cached session, or with a new login when nothing is cached.
// The site does not say when a session expires, so a cached session it refuses is replaced
// by a new login once and op is run again.
func withSession[T any](ctx context.Context, source sessionSource, op func(cred vse.Credential) (T, error)) (T, error) {
	var zero T
	cred, cached := source.cached()
	if !cached {
		var err error
		cred, err = source.login(ctx)
		if err != nil {
			return zero, fmt.Errorf("login: %w", err)
		}
	}

	out, err := op(cred)
	if !cached || !vse.IsUnauthorized(err) {
		return out, err
	}

	slog.Info("cached session was refused, logging in again", "path", *sessionPath)
	cred, err = source.login(ctx)
	if err != nil {
		return zero, fmt.Errorf("login: %w", err)
	}
	return op(cred)
}
