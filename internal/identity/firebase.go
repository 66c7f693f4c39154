package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"firebase.google.com/go/v4/auth"
)

const signInEndpoint = "https://identitytoolkit.googleapis.com/v1/accounts:signInWithPassword"

// TokenClient is the subset of *auth.Client used to trust and revoke sessions.
type TokenClient interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error
}

type Firebase struct {
	apiKey   string
	endpoint string
	client   *http.Client
	tokens   TokenClient
}

type FirebaseOption func(*Firebase)

func WithEndpoint(endpoint string) FirebaseOption {
	return func(f *Firebase) { f.endpoint = endpoint }
}

func WithHTTPClient(c *http.Client) FirebaseOption {
	return func(f *Firebase) { f.client = c }
}

func NewFirebase(apiKey string, tokens TokenClient, opts ...FirebaseOption) *Firebase {
	f := &Firebase{
		apiKey:   apiKey,
		endpoint: signInEndpoint,
		client:   &http.Client{Timeout: 15 * time.Second},
		tokens:   tokens,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

type signInRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type signInResponse struct {
	LocalID string `json:"localId"`
	Email   string `json:"email"`
	IDToken string `json:"idToken"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (f *Firebase) SignIn(ctx context.Context, email, password string) (*Identity, error) {
	body, err := json.Marshal(signInRequest{Email: email, Password: password, ReturnSecureToken: true})
	if err != nil {
		return nil, fmt.Errorf("marshal sign-in: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint+"?key="+url.QueryEscape(f.apiKey), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build sign-in request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sign-in request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		_ = json.NewDecoder(resp.Body).Decode(&e)
		switch e.Error.Message {
		case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED", "INVALID_EMAIL", "MISSING_PASSWORD":
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("sign-in: status %d: %s", resp.StatusCode, e.Error.Message)
	}

	var out signInResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode sign-in: %w", err)
	}

	token, err := f.tokens.VerifyIDToken(ctx, out.IDToken)
	if err != nil {
		return nil, fmt.Errorf("verify id token: %w", err)
	}
	return &Identity{UID: token.UID, Email: out.Email}, nil
}

func (f *Firebase) SignOut(ctx context.Context, id *Identity) error {
	if id == nil {
		return nil
	}
	if err := f.tokens.RevokeRefreshTokens(ctx, id.UID); err != nil {
		return fmt.Errorf("revoke tokens: %w", err)
	}
	return nil
}
