package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/pitix_local/models"
	"bitbucket.org/mmdatafocus/pitix_local/utils"
)

// Transport carries the HTTP plumbing every entity API shares: base URL,
// bearer credential, shop header.
type Transport struct {
	baseURL string
	tokens  TokenSource
	http    *http.Client
}

func NewTransport(tokens TokenSource) *Transport {
	baseURL := strings.TrimSpace(os.Getenv("PITIX_API_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://api.pitix.com"
	}
	return &Transport{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (t *Transport) BaseURL() string { return t.baseURL }

func (t *Transport) do(ctx context.Context, method string, path string, shopId string, body any, out any) error {
	token, err := t.tokens.Token(ctx)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("X-Shop-Id", shopId)
	req.Header.Set("Accept", "application/json")
	if deviceId, ok := utils.GetDeviceIdFromContext(ctx); ok && deviceId != "" {
		req.Header.Set("X-Device-Id", deviceId)
	}
	if correlationId, ok := utils.GetCorrelationIdFromContext(ctx); ok && correlationId != "" {
		req.Header.Set("X-Correlation-Id", correlationId)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("pitix api error %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

type listResponse[T any] struct {
	Data  []*T `json:"data"`
	Items []*T `json:"items"`
}

func (r listResponse[T]) records() []*T {
	if len(r.Data) > 0 {
		return r.Data
	}
	return r.Items
}

// httpAPI implements API[T] against /v1/<entity> endpoints.
type httpAPI[T models.Record] struct {
	t    *Transport
	path string
}

func (a httpAPI[T]) List(ctx context.Context, shopId string) ([]*T, error) {
	var parsed listResponse[T]
	if err := a.t.do(ctx, http.MethodGet, a.path, shopId, nil, &parsed); err != nil {
		return nil, err
	}
	return parsed.records(), nil
}

func (a httpAPI[T]) Create(ctx context.Context, record *T) (*T, error) {
	var created T
	if err := a.t.do(ctx, http.MethodPost, a.path, (*record).GetShopId(), record, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (a httpAPI[T]) Update(ctx context.Context, record *T) (*T, error) {
	var updated T
	path := a.path + "/" + url.PathEscape((*record).GetID())
	if err := a.t.do(ctx, http.MethodPut, path, (*record).GetShopId(), record, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (a httpAPI[T]) Delete(ctx context.Context, shopId string, id string) error {
	return a.t.do(ctx, http.MethodDelete, a.path+"/"+url.PathEscape(id), shopId, nil, nil)
}

type httpSalesAPI struct {
	httpAPI[models.Sale]
}

func (a httpSalesAPI) ListRecent(ctx context.Context, shopId string, since time.Time) ([]*models.Sale, error) {
	params := url.Values{}
	params.Set("since", since.UTC().Format(time.RFC3339))
	var parsed listResponse[models.Sale]
	if err := a.t.do(ctx, http.MethodGet, a.path+"?"+params.Encode(), shopId, nil, &parsed); err != nil {
		return nil, err
	}
	return parsed.records(), nil
}

type httpSettingsAPI struct {
	t *Transport
}

func (a httpSettingsAPI) Get(ctx context.Context, shopId string) (*models.Setting, error) {
	var setting models.Setting
	if err := a.t.do(ctx, http.MethodGet, "/v1/settings", shopId, nil, &setting); err != nil {
		return nil, err
	}
	return &setting, nil
}

func (a httpSettingsAPI) Update(ctx context.Context, record *models.Setting) (*models.Setting, error) {
	var updated models.Setting
	if err := a.t.do(ctx, http.MethodPut, "/v1/settings", record.ShopId, record, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

type httpTrashAPI struct {
	t *Transport
}

func (a httpTrashAPI) List(ctx context.Context, shopId string) ([]*models.TrashEntry, error) {
	var parsed listResponse[models.TrashEntry]
	if err := a.t.do(ctx, http.MethodGet, "/v1/trash", shopId, nil, &parsed); err != nil {
		return nil, err
	}
	return parsed.records(), nil
}

func (a httpTrashAPI) Restore(ctx context.Context, shopId string, table models.Table, id string) error {
	path := fmt.Sprintf("/v1/trash/%s/%s/restore", url.PathEscape(string(table)), url.PathEscape(id))
	return a.t.do(ctx, http.MethodPost, path, shopId, nil, nil)
}

func (a httpTrashAPI) Purge(ctx context.Context, shopId string, table models.Table, id string) error {
	path := fmt.Sprintf("/v1/trash/%s/%s", url.PathEscape(string(table)), url.PathEscape(id))
	return a.t.do(ctx, http.MethodDelete, path, shopId, nil, nil)
}

// NewHTTPClient wires every entity endpoint onto one transport.
func NewHTTPClient(tokens TokenSource) (*Client, error) {
	if tokens == nil {
		return nil, errors.New("token source is required")
	}
	t := NewTransport(tokens)
	return &Client{
		Products:         httpAPI[models.Product]{t: t, path: "/v1/products"},
		Categories:       httpAPI[models.Category]{t: t, path: "/v1/categories"},
		Customers:        httpAPI[models.Customer]{t: t, path: "/v1/customers"},
		Suppliers:        httpAPI[models.Supplier]{t: t, path: "/v1/suppliers"},
		Sales:            httpSalesAPI{httpAPI[models.Sale]{t: t, path: "/v1/sales"}},
		Purchases:        httpAPI[models.Purchase]{t: t, path: "/v1/purchases"},
		Expenses:         httpAPI[models.Expense]{t: t, path: "/v1/expenses"},
		CashTransactions: httpAPI[models.CashTransaction]{t: t, path: "/v1/cash-transactions"},
		StockAdjustments: httpAPI[models.StockAdjustment]{t: t, path: "/v1/stock-adjustments"},
		Settings:         httpSettingsAPI{t: t},
		Trash:            httpTrashAPI{t: t},
	}, nil
}
