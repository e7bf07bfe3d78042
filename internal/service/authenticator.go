package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"authn-simple/internal/domain"
	"authn-simple/internal/passwd"
)

// APIVersion is reported by the version endpoint.
const APIVersion = "3.0.0"

const (
	msgUsernameRequired = "username cannot be null or empty"
	msgPasswordRequired = "password cannot be null or empty"
	msgAddressDenied    = "authn.simple does not allow log in from your IP address %s"
	msgMismatch         = "The username and password do not match"
)

// Config carries everything an Authenticator needs. It is fixed at
// construction.
type Config struct {
	Passwords PasswordTable
	Verifier  passwd.Verifier
	Gate      *AddressGate
	// Mechanism is echoed back on success when not empty.
	Mechanism string
	Logger    *logrus.Logger
}

// Authenticator validates credential payloads against the password table.
type Authenticator struct {
	cfg Config
}

func NewAuthenticator(cfg Config) *Authenticator {
	if cfg.Verifier == nil {
		cfg.Verifier = passwd.NewVerifier()
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Authenticator{cfg: cfg}
}

// Authenticate checks the credentials in payload. Rejections are returned as
// *AuthError.
func (a *Authenticator) Authenticate(ctx context.Context, payload string) (*domain.Identity, error) {
	req := ParseCredentials(payload)
	return a.authenticateRequest(ctx, req)
}

func (a *Authenticator) authenticateRequest(ctx context.Context, req domain.CredentialRequest) (*domain.Identity, error) {
	username := deref(req.Username)
	log := a.cfg.Logger.WithField("username", username)
	log.Debug("login request")

	if username == "" {
		log.Debug(msgUsernameRequired)
		return nil, forbidden(msgUsernameRequired)
	}
	password := deref(req.Password)
	if password == "" {
		log.Debug(msgPasswordRequired)
		return nil, forbidden(msgPasswordRequired)
	}

	decision, err := a.cfg.Gate.Evaluate(ctx, req.IP)
	if err != nil {
		log.WithError(err).Debug("address check failed")
		var gateErr *GateError
		if errors.As(err, &gateErr) {
			return nil, internalError("%T %v", gateErr.Err, gateErr.Err)
		}
		return nil, internalError("%v", err)
	}
	if decision == Denied {
		log.WithField("ip", deref(req.IP)).Debug("address not permitted")
		return nil, forbidden(msgAddressDenied, deref(req.IP))
	}

	hash, ok := a.cfg.Passwords.Lookup(username)
	if !a.cfg.Verifier.Verify(password, hash, ok) {
		log.Debug("password mismatch")
		return nil, forbidden(msgMismatch)
	}

	identity := &domain.Identity{Username: username, Mechanism: a.cfg.Mechanism}
	entry := log
	msg := fmt.Sprintf("%s logged in successfully", username)
	if identity.Mechanism != "" {
		entry = entry.WithField("mechanism", identity.Mechanism)
		msg += " by " + identity.Mechanism
	}
	entry.Info(msg)
	return identity, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
