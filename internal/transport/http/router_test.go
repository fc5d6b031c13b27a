package httptransport

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ledgerhandler "leagueledger/internal/ledger/handler"
	ledgerservice "leagueledger/internal/ledger/service"
	ledgerstore "leagueledger/internal/ledger/store"
	"leagueledger/internal/oauth/flow"
	oauthhandler "leagueledger/internal/oauth/handler"
	"leagueledger/internal/oauth/provider"
	"leagueledger/internal/oauth/state"
	"leagueledger/internal/platform/config"
)

const testSecret = "router-secret"

type ledgerRegistrar struct {
	svc *ledgerservice.Service
}

func (a ledgerRegistrar) Register(ctx context.Context, userID string) error {
	_, err := a.svc.Register(ctx, userID)
	return err
}

// fakeIdP stands in for the identity provider's token and userinfo
// endpoints.
func fakeIdP(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "at-123",
			"token_type":   "Bearer",
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"sub":  "provider-user-9",
			"name": "Dana",
		})
	})
	return httptest.NewServer(mux)
}

func newTestRouter(t *testing.T, idp *httptest.Server) (http.Handler, *ledgerservice.Service) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	svc := ledgerservice.New(ledgerstore.NewInMemoryStore(), logger)

	states := state.NewManager(config.StateConfig{
		CookieName: "__league_oauth_state",
		TTL:        5 * time.Minute,
		Secure:     true,
	})
	client := provider.NewHTTPClient(config.ProviderConfig{
		ClientID:     "league-client",
		ClientSecret: "league-secret",
		AuthURL:      idp.URL + "/authorize",
		TokenURL:     idp.URL + "/token",
		UserInfoURL:  idp.URL + "/userinfo",
		RedirectURL:  "https://api.example.com/oauth/callback",
		Scopes:       []string{"openid", "profile"},
		Timeout:      2 * time.Second,
	})
	fc := flow.New(states, client, "https://app.example.com/welcome", "https://app.example.com/login",
		logger, flow.WithRegistrar(ledgerRegistrar{svc: svc}))

	router := NewRouter(oauthhandler.New(fc, logger), ledgerhandler.New(svc, logger), testSecret, logger)
	return router, svc
}

func TestHealth(t *testing.T) {
	idp := fakeIdP(t)
	defer idp.Close()
	router, _ := newTestRouter(t, idp)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestMetricsExposed(t *testing.T) {
	idp := fakeIdP(t)
	defer idp.Close()
	router, _ := newTestRouter(t, idp)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLedgerRoutesGated(t *testing.T) {
	idp := fakeIdP(t)
	defer idp.Close()
	router, _ := newTestRouter(t, idp)

	t.Run("no secret rejected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/tokens?userId=U1", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("secret admits", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/tokens?userId=U1", nil)
		req.Header.Set("Authorization", "Bearer "+testSecret)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestOAuthRoutesBypassGate(t *testing.T) {
	idp := fakeIdP(t)
	defer idp.Close()
	router, _ := newTestRouter(t, idp)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/auth", nil))

	// A redirect to the provider, not a 401.
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), idp.URL)
}

func TestFullLoginFlow(t *testing.T) {
	idp := fakeIdP(t)
	defer idp.Close()
	router, svc := newTestRouter(t, idp)

	// Step 1: begin the flow.
	beginRec := httptest.NewRecorder()
	router.ServeHTTP(beginRec, httptest.NewRequest(http.MethodGet, "/auth", nil))
	require.Equal(t, http.StatusFound, beginRec.Code)

	location, err := url.Parse(beginRec.Header().Get("Location"))
	require.NoError(t, err)
	st := location.Query().Get("state")
	require.NotEmpty(t, st)

	cookies := beginRec.Result().Cookies()
	require.Len(t, cookies, 1)

	// Step 2: the provider redirects back with code and state.
	cbReq := httptest.NewRequest(http.MethodGet,
		"/oauth/callback?code=auth-code&state="+url.QueryEscape(st), nil)
	cbReq.AddCookie(cookies[0])
	cbRec := httptest.NewRecorder()
	router.ServeHTTP(cbRec, cbReq)

	require.Equal(t, http.StatusFound, cbRec.Code)
	dest, err := url.Parse(cbRec.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "app.example.com", dest.Host)
	assert.Equal(t, "provider-user-9", dest.Query().Get("userId"))

	// Step 3: the callback registered the ledger record.
	rec, err := svc.GetOrCreate(context.Background(), "provider-user-9")
	require.NoError(t, err)
	assert.True(t, rec.IsRegistered)
}
