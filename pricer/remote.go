package pricer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/banachtech/hedger/model"
)

const (
	HeartbeatPath = "/v1/heartbeat"
	PricePath     = "/v1/price"

	authorizationHeaderKey  = "authorization"
	authorizationTypeBearer = "bearer"
)

// Remote calls a pricing server over HTTP.
type Remote struct {
	addr   string
	apiKey string
	client *http.Client
}

// NewRemote returns a client of the server at addr. A non-empty apiKey is
// sent as a bearer token.
func NewRemote(addr, apiKey string, timeout time.Duration) *Remote {
	return &Remote{
		addr:   strings.TrimRight(addr, "/"),
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
	}
}

func (r *Remote) Heartbeat(ctx context.Context) (Info, error) {
	var info Info
	err := r.do(ctx, http.MethodGet, HeartbeatPath, nil, &info)
	return info, err
}

func (r *Remote) PriceAndDeltas(ctx context.Context, req Request) (Response, error) {
	var res Response
	err := r.do(ctx, http.MethodPost, PricePath, req, &res)
	return res, err
}

func (r *Remote) do(ctx context.Context, method, path string, body, out interface{}) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%w: encode request: %v", model.ErrPricerComputation, err)
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, r.addr+path, rd)
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrPricerUnavailable, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if r.apiKey != "" {
		req.Header.Set(authorizationHeaderKey, authorizationTypeBearer+" "+r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", model.ErrPricerUnavailable, method, path, err)
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", model.ErrPricerUnavailable, err)
	}
	switch {
	case resp.StatusCode == http.StatusServiceUnavailable || resp.StatusCode == http.StatusBadGateway || resp.StatusCode == http.StatusGatewayTimeout:
		return fmt.Errorf("%w: %s %s: %s", model.ErrPricerUnavailable, method, path, resp.Status)
	case resp.StatusCode/100 != 2:
		return fmt.Errorf("%w: %s %s: %s: %s", model.ErrPricerComputation, method, path, resp.Status, errorMessage(b))
	}
	if err := json.Unmarshal(b, out); err != nil {
		return fmt.Errorf("%w: decode response: %v", model.ErrPricerComputation, err)
	}
	return nil
}

func errorMessage(b []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(b, &e) == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(b))
}
