// ABOUTME: Auth flow controller driving password and Google sign-in
// ABOUTME: Owns the status line and writes credentials to the store

package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/tsundip4/airport-ops-console/internal/client"
	"github.com/tsundip4/airport-ops-console/internal/credential"
)

// Status lines shown to the operator.
const (
	MsgLoggingIn        = "Logging in..."
	MsgLoggedIn         = "Logged in"
	MsgRedirecting      = "Redirecting to Google..."
	MsgCompletingGoogle = "Completing Google login..."
	MsgLoggedInGoogle   = "Logged in with Google"
	MsgFragmentLogin    = "Logged in via external provider"
	MsgLoggedOut        = "Logged out"
	MsgMissingAuthURL   = "Missing Google auth URL"
	MsgNoCredential     = "No access_token returned"
)

// ErrAuthInProgress is returned when sign-in is requested while a code
// exchange is still running.
var ErrAuthInProgress = errors.New("authentication already in progress")

// ProviderError is an error reported by the OAuth provider on redirect.
type ProviderError struct {
	Code string
}

func (e *ProviderError) Error() string {
	return "Google login error: " + e.Code
}

// Status is the derived session state.
type Status int

const (
	Anonymous Status = iota
	Authenticating
	Authenticated
	Failed
)

func (s Status) String() string {
	switch s {
	case Authenticating:
		return "authenticating"
	case Authenticated:
		return "authenticated"
	case Failed:
		return "failed"
	default:
		return "anonymous"
	}
}

// API is the subset of the request executor used for sign-in.
type API interface {
	Login(ctx context.Context, email, password string) (string, error)
	GoogleAuthURL(ctx context.Context) (string, error)
	ExchangeGoogleCode(ctx context.Context, code string) (string, error)
}

// Outcome reports what HandleLocation did with a redirect.
type Outcome struct {
	Pending Pending
	// CleanLocation is the location to show once callback parameters are
	// consumed; empty when the location should stay as it is.
	CleanLocation string
	Err           error
}

// Controller runs the sign-in flows against one credential store.
type Controller struct {
	store *credential.Store
	api   API
	nav   Navigator
	log   *zap.Logger

	sfGroup singleflight.Group

	mu         sync.Mutex
	message    string
	exchanging int
	failed     bool
}

// NewController wires a controller. A nil navigator opens the system browser.
func NewController(store *credential.Store, api API, nav Navigator, log *zap.Logger) *Controller {
	if nav == nil {
		nav = BrowserNavigator{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{store: store, api: api, nav: nav, log: log}
}

// Status derives the session state from in-flight work and the store.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch {
	case c.exchanging > 0:
		return Authenticating
	case c.store.Active():
		return Authenticated
	case c.failed:
		return Failed
	default:
		return Anonymous
	}
}

// Message returns the most recent status line.
func (c *Controller) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

// HandleLocation applies a redirect location once, in priority order:
// fragment token, nothing, provider error, then code exchange.
func (c *Controller) HandleLocation(ctx context.Context, raw string) Outcome {
	p := ParseLocation(raw)
	out := Outcome{Pending: p}

	switch p.Kind {
	case KindNone:
		return out

	case KindFragmentToken:
		if err := c.store.Set(p.Value); err != nil {
			c.fail("Google login failed: "+err.Error(), err)
			out.Err = err
			return out
		}
		c.succeed(MsgFragmentLogin)
		c.log.Info("credential received in redirect fragment")
		out.CleanLocation = StripCallback(raw)
		return out

	case KindError:
		err := &ProviderError{Code: p.Value}
		c.fail(err.Error(), err)
		out.Err = err
		return out
	}

	if err := c.exchangeCode(ctx, p.Value); err != nil {
		out.Err = err
		return out
	}
	out.CleanLocation = StripCallback(raw)
	return out
}

// exchangeCode trades an authorization code for a credential. Duplicate
// deliveries of the same code share one exchange.
func (c *Controller) exchangeCode(ctx context.Context, code string) error {
	c.mu.Lock()
	c.exchanging++
	c.message = MsgCompletingGoogle
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.exchanging--
		c.mu.Unlock()
	}()

	v, err, shared := c.sfGroup.Do(code, func() (interface{}, error) {
		return c.api.ExchangeGoogleCode(ctx, code)
	})
	if shared {
		c.log.Debug("authorization code exchange shared")
	}
	if err != nil {
		c.fail("Google login failed: "+failureText(err), err)
		return err
	}

	if err := c.store.Set(v.(string)); err != nil {
		c.fail("Google login failed: "+err.Error(), err)
		return err
	}
	c.succeed(MsgLoggedInGoogle)
	c.log.Info("google login completed")
	return nil
}

// PasswordLogin signs in with email and password.
func (c *Controller) PasswordLogin(ctx context.Context, email, password string) error {
	if err := c.begin(MsgLoggingIn); err != nil {
		return err
	}

	token, err := c.api.Login(ctx, email, password)
	if err != nil {
		c.fail("Login failed: "+failureText(err), err)
		return err
	}
	if err := c.store.Set(token); err != nil {
		c.fail("Login failed: "+err.Error(), err)
		return err
	}

	c.succeed(MsgLoggedIn)
	c.log.Info("password login completed", zap.String("email", email))
	return nil
}

// BeginGoogle fetches the consent URL and navigates to it. The URL is
// returned even when navigation fails so it can be shown to the operator.
func (c *Controller) BeginGoogle(ctx context.Context) (string, error) {
	if err := c.begin(MsgRedirecting); err != nil {
		return "", err
	}

	authURL, err := c.api.GoogleAuthURL(ctx)
	if err != nil {
		c.fail("Google login failed: "+failureText(err), err)
		return "", err
	}

	if err := c.nav.Open(authURL); err != nil {
		c.fail("Google login failed: "+err.Error(), err)
		return authURL, err
	}
	return authURL, nil
}

// Logout clears the credential. Persistence failures are logged only.
func (c *Controller) Logout() {
	if err := c.store.Clear(); err != nil {
		c.log.Warn("failed to clear persisted credential", zap.Error(err))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.failed = false
	c.message = MsgLoggedOut
}

// begin refuses new sign-in attempts while an exchange is running.
func (c *Controller) begin(msg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.exchanging > 0 {
		return ErrAuthInProgress
	}
	c.message = msg
	return nil
}

func (c *Controller) succeed(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failed = false
	c.message = msg
}

func (c *Controller) fail(msg string, err error) {
	c.log.Warn("sign-in failed", zap.Error(err))

	c.mu.Lock()
	defer c.mu.Unlock()
	c.failed = true
	c.message = msg
}

// failureText renders executor errors, naming missing contract fields the
// way the status line expects.
func failureText(err error) string {
	var contract *client.ContractError
	if errors.As(err, &contract) {
		switch contract.Field {
		case "access_token":
			return MsgNoCredential
		case "url":
			return MsgMissingAuthURL
		}
		return fmt.Sprintf("no %s returned", contract.Field)
	}
	return client.Message(err)
}
