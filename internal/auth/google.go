package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	sharedauth "business-navigator/internal/shared/auth"
	"business-navigator/internal/shared/server/respond"
	"business-navigator/internal/shared/telemetry"
	"business-navigator/internal/users"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	oauthStateTTL     = 5 * time.Minute
)

// GoogleService signs founders in with Google and hands the UI a navigator token.
type GoogleService struct {
	oauthConfig *oauth2.Config
	userInfoURL string
	uiRedirect  string
	states      *stateStore
	users       *users.Service
	tokens      *sharedauth.Tokens
}

// NewGoogleService builds a GoogleService.
func NewGoogleService(clientID, clientSecret, redirectURL, uiRedirect string, userSvc *users.Service, tokens *sharedauth.Tokens) *GoogleService {
	return &GoogleService{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		userInfoURL: googleUserInfoURL,
		uiRedirect:  uiRedirect,
		states:      newStateStore(oauthStateTTL, time.Now),
		users:       userSvc,
		tokens:      tokens,
	}
}

// RegisterRoutes attaches Google auth routes.
func (s *GoogleService) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/google/start", s.start)
	rg.GET("/auth/google/callback", s.callback)
}

func (s *GoogleService) configured() bool {
	c := s.oauthConfig
	return c.ClientID != "" && c.ClientSecret != "" && c.RedirectURL != "" && s.uiRedirect != ""
}

func (s *GoogleService) start(c *gin.Context) {
	if !s.configured() {
		respond.Error(c, http.StatusInternalServerError, "auth_not_configured", "Google auth not configured", nil)
		return
	}
	c.Redirect(http.StatusFound, s.oauthConfig.AuthCodeURL(s.states.issue(), oauth2.AccessTypeOnline))
}

func (s *GoogleService) callback(c *gin.Context) {
	state, code := c.Query("state"), c.Query("code")
	if state == "" || code == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "missing state or code", nil)
		return
	}
	if !s.states.consume(state) {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid or expired state", nil)
		return
	}

	ctx := c.Request.Context()
	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid_request", "failed to exchange code", err)
		return
	}
	profile, err := s.fetchProfile(ctx, token)
	if err != nil {
		fail(c, http.StatusBadGateway, "auth_failed", "failed to fetch user profile", err)
		return
	}

	user, err := s.users.UpsertFromAuth(ctx, users.User{Email: profile.Email, Name: profile.Name})
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal_error", "failed to store user", err)
		return
	}
	signed, err := s.tokens.Sign(user.ID, user.Email, user.DisplayName())
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal_error", "failed to issue token", err)
		return
	}
	target, err := appendToken(s.uiRedirect, signed)
	if err != nil {
		fail(c, http.StatusInternalServerError, "internal_error", "failed to redirect", err)
		return
	}
	telemetry.Info("auth.google_login", map[string]any{"user_id": user.ID})
	c.Redirect(http.StatusFound, target)
}

func fail(c *gin.Context, status int, code, message string, err error) {
	telemetry.Warn("auth.google_failed", map[string]any{"reason": message, "error": err.Error()})
	respond.Error(c, status, code, message, nil)
}

type googleProfile struct {
	Sub   string `json:"sub"`
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (s *GoogleService) fetchProfile(ctx context.Context, token *oauth2.Token) (googleProfile, error) {
	resp, err := s.oauthConfig.Client(ctx, token).Get(s.userInfoURL)
	if err != nil {
		return googleProfile{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return googleProfile{}, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var p googleProfile
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return googleProfile{}, fmt.Errorf("decode userinfo: %w", err)
	}
	if p.Sub == "" {
		p.Sub = p.ID
	}
	p.Email = strings.TrimSpace(p.Email)
	if p.Sub == "" || p.Email == "" {
		return googleProfile{}, errors.New("userinfo missing subject or email")
	}
	return p, nil
}

// stateStore holds single-use OAuth states until they expire.
type stateStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	items map[string]time.Time
}

func newStateStore(ttl time.Duration, now func() time.Time) *stateStore {
	return &stateStore{ttl: ttl, now: now, items: map[string]time.Time{}}
}

func (s *stateStore) issue() string {
	state := uuid.NewString()
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, exp := range s.items {
		if now.After(exp) {
			delete(s.items, k)
		}
	}
	s.items[state] = now.Add(s.ttl)
	return state
}

func (s *stateStore) consume(state string) bool {
	s.mu.Lock()
	exp, ok := s.items[state]
	delete(s.items, state)
	s.mu.Unlock()
	return ok && !s.now().After(exp)
}

func appendToken(rawURL, token string) (string, error) {
	if rawURL == "" {
		return "", errors.New("redirect url required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
