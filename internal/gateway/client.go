package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"xfinance-dashboard/internal/domain"
)

const (
	resultSuccess = 2000

	HeaderUserID    = "X-User-Id"
	HeaderUserRole  = "X-User-Role"
	HeaderUserEmail = "X-User-Email"
)

// envelope mirror of the server's response wrapper.
type envelope struct {
	Code    int             `json:"code"`
	Type    string          `json:"type"`
	Message string          `json:"message"`
	Result  json.RawMessage `json:"result"`
}

type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	RetryCount int
	Actor      domain.Actor
}

// Client HTTP Gateway backed by resty.
type Client struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader(HeaderUserID, strconv.FormatInt(cfg.Actor.UserID, 10)).
		SetHeader(HeaderUserRole, cfg.Actor.Role).
		SetHeader(HeaderUserEmail, cfg.Actor.Email)

	return &Client{httpClient: client, logger: logger}
}

func (c *Client) Excluir(ctx context.Context, in ExcluirInput) (Result, error) {
	return c.mutate(ctx, http.MethodPost, "/api/acoes/excluir", in)
}

func (c *Client) Encaminhar(ctx context.Context, in EncaminharInput) (Result, error) {
	return c.mutate(ctx, http.MethodPost, "/api/acoes/encaminhar", in)
}

func (c *Client) Marcar(ctx context.Context, in MarcarInput) (Result, error) {
	return c.mutate(ctx, http.MethodPost, "/api/acoes/marcar", in)
}

func (c *Client) UpdateInspectionField(ctx context.Context, idPrinc int64, field, value string) (Result, error) {
	path := "/api/inspections/" + strconv.FormatInt(idPrinc, 10)
	return c.mutate(ctx, http.MethodPatch, path, FieldUpdate{Field: field, Value: value})
}

func (c *Client) FetchUsersOptions(ctx context.Context) ([]UserOption, error) {
	var out []UserOption
	if err := c.fetch(ctx, "/api/lookups/users", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) FetchInspections(ctx context.Context) ([]domain.Inspection, error) {
	var out []domain.Inspection
	if err := c.fetch(ctx, "/api/inspections", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) FetchKPIs(ctx context.Context) (domain.PendingTotals, error) {
	var out domain.PendingTotals
	err := c.fetch(ctx, "/api/kpis", &out)
	return out, err
}

// mutate a server rejection is a Result, not an error.
func (c *Client) mutate(ctx context.Context, method, path string, body any) (Result, error) {
	env, ok, err := c.do(ctx, method, path, body)
	if err != nil {
		return Failed(FallbackMessage), err
	}
	if !ok {
		msg := env.Message
		if msg == "" {
			msg = FallbackMessage
		}
		return Failed(msg), nil
	}
	res := Result{Success: true}
	if len(env.Result) > 0 && string(env.Result) != "null" {
		if err := json.Unmarshal(env.Result, &res); err != nil {
			return Failed(FallbackMessage), fmt.Errorf("%w: %s %s: decode result: %v", ErrTransport, method, path, err)
		}
	}
	res.Success = true
	return res, nil
}

func (c *Client) fetch(ctx context.Context, path string, out any) error {
	env, ok, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if !ok {
		return &RejectedError{Message: env.Message}
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return fmt.Errorf("%w: GET %s: decode result: %v", ErrTransport, path, err)
	}
	return nil
}

// do ok=false means the server sent a parseable failure envelope.
func (c *Client) do(ctx context.Context, method, path string, body any) (envelope, bool, error) {
	req := c.httpClient.R().SetContext(ctx)
	if body != nil {
		req.SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err != nil {
		c.logger.Error("Gateway call failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return envelope{}, false, fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil || env.Code == 0 {
		c.logger.Error("Gateway returned unparseable response",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode()),
		)
		return envelope{}, false, fmt.Errorf("%w: %s %s: status %d", ErrTransport, method, path, resp.StatusCode())
	}
	if resp.IsError() || env.Code != resultSuccess {
		c.logger.Warn("Gateway rejected request",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode()),
			zap.String("message", env.Message),
		)
		return env, false, nil
	}
	return env, true, nil
}

var _ Gateway = (*Client)(nil)
