// Package client provides a Go API client with automatic token refresh.
// Пакет client предоставляет Go API клиент с автоматическим обновлением токенов.
//
// The client holds one token pair and transparently rotates it when the
// server answers 401. Concurrent requests that hit 401 at the same time
// are collapsed into a single refresh call: the refresh token is
// single-use, so only one caller may redeem it.
// Клиент хранит одну пару токенов и прозрачно ротирует её, когда сервер
// отвечает 401. Одновременные запросы, получившие 401, сворачиваются в
// один вызов обновления: refresh токен одноразовый, поэтому погасить его
// может только один вызывающий.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/planwisehq/planwise/internal/pkg/apperror"
	"github.com/planwisehq/planwise/internal/port"
)

// Client is an HTTP client for the planning service API.
// Client — HTTP клиент для API сервиса планирования.
type Client struct {
	baseURL    string        // API base URL / Базовый URL API
	httpClient *http.Client  // Underlying HTTP client / Нижележащий HTTP клиент

	mu     sync.RWMutex // Guards tokens / Защищает токены
	tokens port.TokenPair

	// refreshGroup collapses concurrent refresh attempts into one flight.
	// refreshGroup сворачивает одновременные попытки обновления в один вызов.
	refreshGroup singleflight.Group
}

// Option configures a Client.
// Option настраивает Client.
type Option func(*Client)

// WithHTTPClient sets a custom underlying HTTP client.
// WithHTTPClient устанавливает пользовательский нижележащий HTTP клиент.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// New creates a new API client.
// New создаёт новый API клиент.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetTokens stores a token pair obtained out of band (e.g. after login).
// SetTokens сохраняет пару токенов, полученную отдельно (например, после входа).
func (c *Client) SetTokens(tokens port.TokenPair) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = tokens
}

// Tokens returns the currently held token pair.
// Tokens возвращает текущую пару токенов.
func (c *Client) Tokens() port.TokenPair {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens
}

// Login authenticates and stores the resulting token pair.
// Login аутентифицирует и сохраняет полученную пару токенов.
func (c *Client) Login(ctx context.Context, email, password string) (*port.AuthResult, error) {
	body := map[string]string{"email": email, "password": password}

	var result port.AuthResult
	if err := c.postJSON(ctx, "/api/v1/auth/login", body, &result); err != nil {
		return nil, err
	}

	c.SetTokens(result.Tokens)
	return &result, nil
}

// Register creates an account and stores the resulting token pair.
// Register создаёт аккаунт и сохраняет полученную пару токенов.
func (c *Client) Register(ctx context.Context, email, password, displayName string) (*port.AuthResult, error) {
	body := map[string]string{
		"email":       email,
		"password":    password,
		"displayName": displayName,
	}

	var result port.AuthResult
	if err := c.postJSON(ctx, "/api/v1/auth/register", body, &result); err != nil {
		return nil, err
	}

	c.SetTokens(result.Tokens)
	return &result, nil
}

// Logout invalidates the current session and clears stored tokens.
// Logout инвалидирует текущую сессию и очищает сохранённые токены.
func (c *Client) Logout(ctx context.Context) error {
	tokens := c.Tokens()
	if tokens.RefreshToken == "" {
		return nil
	}

	body := map[string]string{"refreshToken": tokens.RefreshToken}
	err := c.postJSON(ctx, "/api/v1/auth/logout", body, nil)

	c.SetTokens(port.TokenPair{})
	return err
}

// Do executes an authenticated request against the API.
// Do выполняет аутентифицированный запрос к API.
//
// A 401 response triggers one token refresh followed by one retry of the
// original request. A second 401 is returned to the caller as-is: the
// session is gone and re-login is the only way forward.
// Ответ 401 запускает одно обновление токенов и один повтор исходного
// запроса. Второй 401 возвращается вызывающему как есть: сессия утрачена,
// и единственный выход — повторный вход.
func (c *Client) Do(ctx context.Context, method, path string, body, out interface{}) error {
	access := c.Tokens().AccessToken

	resp, err := c.send(ctx, method, path, body, access)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		_ = resp.Body.Close()

		if refreshErr := c.refresh(ctx, access); refreshErr != nil {
			return refreshErr
		}

		resp, err = c.send(ctx, method, path, body, c.Tokens().AccessToken)
		if err != nil {
			return err
		}
	}
	defer func() { _ = resp.Body.Close() }()

	return decodeResponse(resp, out)
}

// refresh rotates the token pair, collapsing concurrent callers.
// refresh ротирует пару токенов, сворачивая одновременных вызывающих.
//
// All goroutines waiting on the same flight receive the outcome of the
// single real refresh; none of them burn the single-use token twice.
// A latecomer whose failed access token was already replaced skips the
// rotation entirely.
// Все горутины, ожидающие один вызов, получают результат единственного
// реального обновления; никто не сжигает одноразовый токен дважды.
// Опоздавший, чей отклонённый access токен уже заменён, пропускает
// ротацию полностью.
func (c *Client) refresh(ctx context.Context, failedAccess string) error {
	_, err, _ := c.refreshGroup.Do("refresh", func() (interface{}, error) {
		tokens := c.Tokens()

		// Someone else rotated while we waited for the flight.
		// Кто-то другой ротировал, пока мы ждали вызов.
		if tokens.AccessToken != failedAccess {
			return nil, nil
		}

		if tokens.RefreshToken == "" {
			return nil, apperror.Unauthorized("no refresh token held")
		}

		body := map[string]string{"refreshToken": tokens.RefreshToken}
		var result port.AuthResult
		if err := c.postJSON(ctx, "/api/v1/auth/refresh", body, &result); err != nil {
			// A rejected refresh token ends the session on the client too.
			// Отклонённый refresh токен завершает сессию и на клиенте.
			c.SetTokens(port.TokenPair{})
			return nil, err
		}

		c.SetTokens(result.Tokens)
		return nil, nil
	})
	return err
}

// send builds and executes one HTTP request with the given access token.
// send строит и выполняет один HTTP запрос с данным access токеном.
func (c *Client) send(ctx context.Context, method, path string, body interface{}, accessToken string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}

	return c.httpClient.Do(req)
}

// postJSON executes an unauthenticated-or-authenticated POST without retry.
// postJSON выполняет POST без повтора.
func (c *Client) postJSON(ctx context.Context, path string, body, out interface{}) error {
	resp, err := c.send(ctx, http.MethodPost, path, body, c.Tokens().AccessToken)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	return decodeResponse(resp, out)
}

// decodeResponse maps an HTTP response to a result or a coded error.
// decodeResponse сопоставляет HTTP ответ результату или ошибке с кодом.
func decodeResponse(resp *http.Response, out interface{}) error {
	if resp.StatusCode >= 400 {
		var envelope struct {
			Error      string `json:"error"`
			Message    string `json:"message"`
			StatusCode int    `json:"statusCode"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil || envelope.Error == "" {
			return apperror.New("INTERNAL_ERROR", fmt.Sprintf("unexpected status %d", resp.StatusCode), resp.StatusCode)
		}
		return apperror.New(envelope.Error, envelope.Message, resp.StatusCode)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response body: %w", err)
	}
	return nil
}
