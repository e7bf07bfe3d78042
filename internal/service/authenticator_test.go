package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"authn-simple/internal/address"
	"authn-simple/internal/domain"
	"authn-simple/internal/passwd"
)

type countingVerifier struct {
	mu    sync.Mutex
	calls int
	inner passwd.Verifier
}

func (c *countingVerifier) Verify(password, hash string, ok bool) bool {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.inner.Verify(password, hash, ok)
}

func payload(username, password string, ip ...string) string {
	s := fmt.Sprintf(`{"credentials":[{"username":%q},{"password":%q}]`, username, password)
	if len(ip) > 0 {
		s += fmt.Sprintf(`,"ip":%q`, ip[0])
	}
	return s + "}"
}

func newTestAuthenticator(t *testing.T, gate *AddressGate, mechanism string) (*Authenticator, *countingVerifier, *logtest.Hook) {
	t.Helper()
	aliceHash, err := passwd.Hash("wonderland", bcrypt.MinCost)
	require.NoError(t, err)
	table, err := NewPasswordTable([]string{"alice", "bob"}, lookupFrom(map[string]string{
		"alice": aliceHash,
		"bob":   "builder",
	}))
	require.NoError(t, err)

	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	verifier := &countingVerifier{inner: passwd.NewVerifier()}
	a := NewAuthenticator(Config{
		Passwords: table,
		Verifier:  verifier,
		Gate:      gate,
		Mechanism: mechanism,
		Logger:    logger,
	})
	return a, verifier, hook
}

func requireAuthError(t *testing.T, err error, code int, msg string) {
	t.Helper()
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, code, authErr.Code)
	assert.Equal(t, msg, authErr.Message)
}

func TestAuthenticateSuccess(t *testing.T) {
	a, _, hook := newTestAuthenticator(t, nil, "db")

	identity, err := a.Authenticate(context.Background(), payload("alice", "wonderland"))
	require.NoError(t, err)
	assert.Equal(t, &domain.Identity{Username: "alice", Mechanism: "db"}, identity)

	last := hook.LastEntry()
	require.NotNil(t, last)
	assert.Equal(t, logrus.InfoLevel, last.Level)
	assert.Equal(t, "alice logged in successfully by db", last.Message)
	assert.Equal(t, "db", last.Data["mechanism"])

	first := hook.AllEntries()[0]
	assert.Equal(t, logrus.DebugLevel, first.Level)
	assert.Equal(t, "alice", first.Data["username"])
}

func TestAuthenticateWithoutMechanism(t *testing.T) {
	a, _, hook := newTestAuthenticator(t, nil, "")

	identity, err := a.Authenticate(context.Background(), payload("bob", "builder"))
	require.NoError(t, err)
	assert.Equal(t, "bob", identity.Username)
	assert.Empty(t, identity.Mechanism)
	assert.Equal(t, "bob logged in successfully", hook.LastEntry().Message)
	assert.NotContains(t, hook.LastEntry().Data, "mechanism")
}

func TestAuthenticateValidation(t *testing.T) {
	deny := &fakeChecker{allow: false}
	a, verifier, _ := newTestAuthenticator(t, NewAddressGate(deny), "")

	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{name: "empty username", payload: payload("", "wonderland"), want: msgUsernameRequired},
		{name: "empty username and password", payload: payload("", ""), want: msgUsernameRequired},
		{name: "missing username", payload: `{"credentials":[{"password":"wonderland"}]}`, want: msgUsernameRequired},
		{name: "garbage", payload: `not json`, want: msgUsernameRequired},
		{name: "empty password", payload: payload("alice", ""), want: msgPasswordRequired},
		{name: "missing password", payload: `{"credentials":[{"username":"alice"}]}`, want: msgPasswordRequired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Authenticate(context.Background(), tt.payload)
			requireAuthError(t, err, http.StatusForbidden, tt.want)
		})
	}
	assert.Zero(t, deny.calls, "address gate runs after validation")
	assert.Zero(t, verifier.calls, "password is not verified for invalid requests")
}

func TestAuthenticateAddressDenied(t *testing.T) {
	deny := &fakeChecker{allow: false}
	a, verifier, _ := newTestAuthenticator(t, NewAddressGate(deny), "")

	_, err := a.Authenticate(context.Background(), payload("alice", "wonderland", "203.0.113.7"))
	requireAuthError(t, err, http.StatusForbidden,
		"authn.simple does not allow log in from your IP address 203.0.113.7")
	assert.Equal(t, 1, deny.calls)
	assert.Zero(t, verifier.calls)
}

func TestAuthenticateAddressCheckerFailure(t *testing.T) {
	failing := &fakeChecker{err: &address.CheckError{Address: "host", Err: errors.New("lookup failed")}}
	a, verifier, _ := newTestAuthenticator(t, NewAddressGate(failing), "")

	_, err := a.Authenticate(context.Background(), payload("alice", "wonderland", "host"))
	requireAuthError(t, err, http.StatusInternalServerError,
		`*address.CheckError cannot check address "host": lookup failed`)
	assert.Zero(t, verifier.calls)
}

func TestAuthenticateWithAllowlist(t *testing.T) {
	checker, err := address.NewChecker("10.0.0.0/8")
	require.NoError(t, err)
	a, _, _ := newTestAuthenticator(t, NewAddressGate(checker), "simple")

	identity, err := a.Authenticate(context.Background(), payload("alice", "wonderland", "10.20.30.40"))
	require.NoError(t, err)
	assert.Equal(t, "simple", identity.Mechanism)

	_, err = a.Authenticate(context.Background(), payload("alice", "wonderland", "192.0.2.1"))
	requireAuthError(t, err, http.StatusForbidden,
		"authn.simple does not allow log in from your IP address 192.0.2.1")

	_, err = a.Authenticate(context.Background(), payload("alice", "wonderland"))
	var authErr *AuthError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, http.StatusInternalServerError, authErr.Code)
}

func TestAuthenticateNoGateIgnoresIP(t *testing.T) {
	a, _, _ := newTestAuthenticator(t, nil, "")
	for _, p := range []string{
		payload("alice", "wonderland"),
		payload("alice", "wonderland", ""),
		payload("alice", "wonderland", "not-an-address"),
	} {
		_, err := a.Authenticate(context.Background(), p)
		assert.NoError(t, err)
	}
}

func TestAuthenticateMismatchDoesNotEnumerate(t *testing.T) {
	a, verifier, _ := newTestAuthenticator(t, nil, "")

	_, wrongPassword := a.Authenticate(context.Background(), payload("alice", "looking-glass"))
	_, unknownUser := a.Authenticate(context.Background(), payload("mallory", "looking-glass"))

	requireAuthError(t, wrongPassword, http.StatusForbidden, msgMismatch)
	requireAuthError(t, unknownUser, http.StatusForbidden, msgMismatch)
	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
	assert.Equal(t, 2, verifier.calls)
}

func TestAuthenticateConcurrent(t *testing.T) {
	users := map[string]string{}
	var names []string
	for i := 0; i < 16; i++ {
		name := fmt.Sprintf("user%02d", i)
		names = append(names, name)
		users[name] = "pw-" + name
	}
	table, err := NewPasswordTable(names, lookupFrom(users))
	require.NoError(t, err)
	logger, _ := logtest.NewNullLogger()
	a := NewAuthenticator(Config{Passwords: table, Mechanism: "simple", Logger: logger})

	var wg sync.WaitGroup
	errs := make(chan error, len(names)*20)
	for _, name := range names {
		for j := 0; j < 20; j++ {
			wg.Add(1)
			go func(name string, good bool) {
				defer wg.Done()
				pw := "pw-" + name
				if !good {
					pw = "nope"
				}
				identity, err := a.Authenticate(context.Background(), payload(name, pw))
				switch {
				case good && err != nil:
					errs <- fmt.Errorf("%s: %v", name, err)
				case good && identity.Username != name:
					errs <- fmt.Errorf("%s: got identity %s", name, identity.Username)
				case !good && err == nil:
					errs <- fmt.Errorf("%s: accepted a wrong password", name)
				}
			}(name, j%2 == 0)
		}
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

func TestNewAuthenticatorDefaults(t *testing.T) {
	a := NewAuthenticator(Config{Mechanism: "m"})
	assert.NotNil(t, a.cfg.Verifier)
	assert.NotNil(t, a.cfg.Logger)
	_, err := a.Authenticate(context.Background(), payload("alice", "x"))
	requireAuthError(t, err, http.StatusForbidden, msgMismatch)
}
