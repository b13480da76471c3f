package suppliers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mateovidal/dropcart-backend/pkg/db/models"
	pkgerrors "github.com/mateovidal/dropcart-backend/pkg/errors"
)

const defaultRequestTimeout = 30 * time.Second

var (
	errBaseURLRequired = errors.New("supplier api base url is required")
	errAPIKeyRequired  = errors.New("supplier api key is required")
)

// RESTOptions configure the generic REST supplier adapter.
type RESTOptions struct {
	Timeout time.Duration
	// HTTPClient overrides the default client, used by tests.
	HTTPClient *http.Client
}

// restAdapter talks to suppliers exposing the standard dropship REST surface:
// shop metadata, paged catalog, order submission, tracking and fulfillment
// lookups. Auth is a bearer token per supplier.
type restAdapter struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewRESTAdapter validates the supplier credentials and returns the adapter.
func NewRESTAdapter(supplier *models.Supplier, opts RESTOptions) (Adapter, error) {
	if supplier == nil {
		return nil, errors.New("supplier record required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(supplier.APIBaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLRequired
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("invalid supplier base url: %w", err)
	}
	apiKey := strings.TrimSpace(supplier.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}

	client := opts.HTTPClient
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultRequestTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &restAdapter{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  client,
	}, nil
}

func (a *restAdapter) TestConnection(ctx context.Context) (*ConnectionResult, error) {
	var payload struct {
		ShopName string `json:"shop_name"`
	}
	if err := a.get(ctx, "/v1/shop", nil, &payload); err != nil {
		return &ConnectionResult{Success: false, Error: err.Error()}, nil
	}
	return &ConnectionResult{Success: true, ShopName: payload.ShopName}, nil
}

func (a *restAdapter) FetchProducts(ctx context.Context, page, pageSize int) (*ProductPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 50
	}
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))
	query.Set("page_size", strconv.Itoa(pageSize))

	var result ProductPage
	if err := a.get(ctx, "/v1/products", query, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (a *restAdapter) CreateOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	if len(req.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier order needs at least one item")
	}
	if !req.ShippingAddress.Validate() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is incomplete")
	}

	var result CreateOrderResult
	if err := a.post(ctx, "/v1/orders", req, &result); err != nil {
		return nil, err
	}
	if strings.TrimSpace(result.SupplierOrderRef) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeSupplierRejected, "supplier accepted order without returning a reference")
	}
	return &result, nil
}

func (a *restAdapter) GetTracking(ctx context.Context, supplierOrderRef string) (*TrackingInfo, error) {
	ref := strings.TrimSpace(supplierOrderRef)
	if ref == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier order ref required")
	}

	var info TrackingInfo
	err := a.get(ctx, "/v1/orders/"+url.PathEscape(ref)+"/tracking", nil, &info)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			return nil, nil
		}
		return nil, err
	}
	if info.TrackingNumber == "" && info.Status == "" {
		return nil, nil
	}
	return &info, nil
}

func (a *restAdapter) GetFulfillment(ctx context.Context, supplierOrderRef string) (*FulfillmentInfo, error) {
	ref := strings.TrimSpace(supplierOrderRef)
	if ref == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "supplier order ref required")
	}

	var info FulfillmentInfo
	if err := a.get(ctx, "/v1/orders/"+url.PathEscape(ref)+"/fulfillment", nil, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (a *restAdapter) get(ctx context.Context, path string, query url.Values, out any) error {
	endpoint := a.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build supplier request")
	}
	return a.do(req, out)
}

func (a *restAdapter) post(ctx context.Context, path string, body, out any) error {
	raw, err := json.Marshal(body)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode supplier request")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+path, bytes.NewReader(raw))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build supplier request")
	}
	req.Header.Set("Content-Type", "application/json")
	return a.do(req, out)
}

func (a *restAdapter) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+a.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "supplier api unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return supplierError(resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode supplier response")
	}
	return nil
}

func supplierError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	message := strings.TrimSpace(string(raw))
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		if payload.Error != "" {
			message = payload.Error
		} else if payload.Message != "" {
			message = payload.Message
		}
	}
	if message == "" {
		message = resp.Status
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return pkgerrors.New(pkgerrors.CodeNotFound, message)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return pkgerrors.New(pkgerrors.CodeUnauthorized, message)
	case resp.StatusCode >= 500:
		return pkgerrors.New(pkgerrors.CodeDependency, message)
	default:
		return pkgerrors.New(pkgerrors.CodeSupplierRejected, message)
	}
}
