// Package flow orchestrates the authorization-code flow as an explicit state
// machine. Each callback walks Initiated → Exchanging → FetchingIdentity →
// Completed; any failure drops into Errored and ends the flow instance. There
// are no retries; the user restarts from the initiation route.
package flow

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"

	"leagueledger/internal/oauth/provider"
	"leagueledger/internal/oauth/state"
	"leagueledger/internal/platform/metrics"
)

// State enumerates the positions of one flow instance. Tests assert on these
// directly instead of inferring progress from side effects.
type State int

const (
	StateIdle State = iota
	StateInitiated
	StateExchanging
	StateFetchingIdentity
	StateCompleted
	StateErrored
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateInitiated:
		return "initiated"
	case StateExchanging:
		return "exchanging"
	case StateFetchingIdentity:
		return "fetching_identity"
	case StateCompleted:
		return "completed"
	case StateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// Machine-readable error codes surfaced to the browser. Internal detail
// never leaves the server.
const (
	ErrCodeAccessDenied  = "access_denied"
	ErrCodeStateMismatch = "state_mismatch"
	ErrCodeTokenExchange = "token_exchange_failed"
	ErrCodeUserInfo      = "userinfo_failed"
	ErrCodeRegistration  = "registration_failed"
	ErrCodeCredential    = "credential_failed"
)

// Registrar upserts the ledger record for a verified identity.
type Registrar interface {
	Register(ctx context.Context, userID string) error
}

// CredentialIssuer mints the outbound credential attached to the completion
// redirect.
type CredentialIssuer interface {
	Issue(sub, displayName string) (string, error)
}

// Result is the outcome of one callback invocation.
type Result struct {
	State       State
	ErrorCode   string
	RedirectURL string
	Identity    provider.Identity
}

// Controller drives the flow. The registrar and issuer are optional; when
// absent, completion skips the ledger upsert and attaches the raw subject id
// instead of a signed credential.
type Controller struct {
	states      *state.Manager
	provider    provider.Client
	registrar   Registrar
	issuer      CredentialIssuer
	frontendURL string
	errorURL    string
	logger      *slog.Logger
}

type Option func(*Controller)

// WithRegistrar enables the ledger upsert on completion.
func WithRegistrar(r Registrar) Option {
	return func(c *Controller) { c.registrar = r }
}

// WithCredentialIssuer enables signed-credential minting on completion.
func WithCredentialIssuer(i CredentialIssuer) Option {
	return func(c *Controller) { c.issuer = i }
}

func New(states *state.Manager, client provider.Client, frontendURL, errorURL string, logger *slog.Logger, opts ...Option) *Controller {
	c := &Controller{
		states:      states,
		provider:    client,
		frontendURL: frontendURL,
		errorURL:    errorURL,
		logger:      logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BeginAuth moves Idle → Initiated: generate the state, bind it to the
// browser, and return the provider's authorization URL. No network call yet.
func (c *Controller) BeginAuth(w http.ResponseWriter) (string, error) {
	st, err := c.states.Generate()
	if err != nil {
		return "", fmt.Errorf("begin auth: %w", err)
	}
	c.states.Bind(w, st)
	return c.provider.AuthCodeURL(st), nil
}

// HandleCallback runs the rest of the machine for one callback invocation.
// Every terminal path clears the state cookie; ordering is strict: state
// validation gates the exchange, the exchange gates identity retrieval,
// identity retrieval gates the ledger upsert.
func (c *Controller) HandleCallback(ctx context.Context, w http.ResponseWriter, r *http.Request) Result {
	q := r.URL.Query()

	// Provider reported an explicit error: do not contact it further.
	if errParam := q.Get("error"); errParam != "" {
		c.states.Clear(w)
		return c.fail(ctx, StateInitiated, reflectedErrorCode(errParam), nil)
	}

	if !c.states.Consume(w, r, q.Get("state")) {
		return c.fail(ctx, StateInitiated, ErrCodeStateMismatch, nil)
	}

	accessToken, err := c.provider.Exchange(ctx, q.Get("code"))
	if err != nil {
		return c.fail(ctx, StateExchanging, ErrCodeTokenExchange, err)
	}

	identity, err := c.provider.FetchUserInfo(ctx, accessToken)
	if err != nil {
		return c.fail(ctx, StateFetchingIdentity, ErrCodeUserInfo, err)
	}

	return c.complete(ctx, identity)
}

func (c *Controller) complete(ctx context.Context, identity provider.Identity) Result {
	if c.registrar != nil {
		if err := c.registrar.Register(ctx, identity.Sub); err != nil {
			return c.fail(ctx, StateCompleted, ErrCodeRegistration, err)
		}
	}

	redirect, err := c.completionRedirect(identity)
	if err != nil {
		return c.fail(ctx, StateCompleted, ErrCodeCredential, err)
	}

	metrics.LoginsCompleted.Inc()
	c.logger.InfoContext(ctx, "login flow completed", "sub", identity.Sub)

	return Result{
		State:       StateCompleted,
		RedirectURL: redirect,
		Identity:    identity,
	}
}

// completionRedirect attaches either the signed credential or the raw
// subject id to the front-end landing URL.
func (c *Controller) completionRedirect(identity provider.Identity) (string, error) {
	u, err := url.Parse(c.frontendURL)
	if err != nil {
		return "", fmt.Errorf("parse frontend URL: %w", err)
	}
	q := u.Query()

	if c.issuer != nil {
		signed, err := c.issuer.Issue(identity.Sub, identity.DisplayName)
		if err != nil {
			return "", fmt.Errorf("mint credential: %w", err)
		}
		q.Set("token", signed)
	} else {
		q.Set("userId", identity.Sub)
	}

	u.RawQuery = q.Encode()
	return u.String(), nil
}

func (c *Controller) fail(ctx context.Context, at State, code string, err error) Result {
	metrics.LoginFailures.WithLabelValues(at.String()).Inc()
	c.logger.WarnContext(ctx, "login flow errored",
		"stage", at.String(),
		"code", code,
		"error", err,
	)

	u, parseErr := url.Parse(c.errorURL)
	if parseErr != nil {
		u = &url.URL{Path: "/"}
	}
	q := u.Query()
	q.Set("error", code)
	u.RawQuery = q.Encode()

	return Result{State: StateErrored, ErrorCode: code, RedirectURL: u.String()}
}

var errorCodePattern = regexp.MustCompile(`^[a-z0-9_]{1,64}$`)

// reflectedErrorCode passes the provider's error code through when it looks
// like a plain code; anything else collapses to access_denied so arbitrary
// provider input never lands in a redirect.
func reflectedErrorCode(errParam string) string {
	if errorCodePattern.MatchString(errParam) {
		return errParam
	}
	return ErrCodeAccessDenied
}
