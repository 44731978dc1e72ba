package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/flexprice/tariff/internal/config"
	"github.com/flexprice/tariff/internal/domain/tariffplan"
	ierr "github.com/flexprice/tariff/internal/errors"
	"github.com/flexprice/tariff/internal/httpclient"
	"github.com/flexprice/tariff/internal/logger"
	"github.com/flexprice/tariff/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// PlanPayload is a plan in the billing backend's source format, as served over HTTP or
// written in YAML plan files. Numeric fields may be strings or numbers, the method is
// the backend's own identifier.
type PlanPayload struct {
	ID           string            `json:"id" yaml:"id"`
	Name         string            `json:"name" yaml:"name"`
	Description  string            `json:"description" yaml:"description"`
	Method       string            `json:"method" yaml:"method"`
	BasePrice    decimal.Decimal   `json:"base_price" yaml:"base_price"`
	FixedCost    decimal.Decimal   `json:"fixed_cost" yaml:"fixed_cost"`
	FreeQuantity decimal.Decimal   `json:"free_quantity" yaml:"free_quantity"`
	Tax          *decimal.Decimal  `json:"tax" yaml:"tax"`
	Currency     string            `json:"currency" yaml:"currency"`
	Tiers        []TierPayload     `json:"tiers" yaml:"tiers"`
	Metadata     map[string]string `json:"metadata" yaml:"metadata"`
	CreatedAt    time.Time         `json:"created_at" yaml:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at" yaml:"updated_at"`
}

type TierPayload struct {
	Threshold decimal.Decimal `json:"threshold" yaml:"threshold"`
	Price     decimal.Decimal `json:"price" yaml:"price"`
	Free      decimal.Decimal `json:"free" yaml:"free"`
}

type listPayload struct {
	Items []PlanPayload `json:"items"`
	Total int           `json:"total"`
}

// ToPlan maps the backend representation onto the domain plan. An unknown method is a
// misconfigured plan and is never defaulted.
func (p PlanPayload) ToPlan(ctx context.Context) (*tariffplan.Plan, error) {
	method, err := types.EstimateMethodFromSource(p.Method)
	if err != nil {
		return nil, ierr.WithError(err).
			WithReportableDetails(map[string]any{
				"plan_id": p.ID,
				"method":  p.Method,
			}).
			Mark(ierr.ErrMisconfiguredPlan)
	}

	plan := &tariffplan.Plan{
		ID:             p.ID,
		Name:           p.Name,
		Description:    p.Description,
		EstimateMethod: method,
		BasePrice:      p.BasePrice,
		FixedCost:      p.FixedCost,
		FreeQuantity:   p.FreeQuantity,
		TaxPercent:     lo.FromPtrOr(p.Tax, decimal.Zero),
		Currency:       strings.ToLower(p.Currency),
		Metadata:       p.Metadata,
		BaseModel: types.BaseModel{
			TenantID:  types.GetTenantID(ctx),
			Status:    types.StatusPublished,
			CreatedAt: p.CreatedAt,
			UpdatedAt: p.UpdatedAt,
		},
	}
	if len(p.Tiers) > 0 {
		plan.Tiers = lo.Map(p.Tiers, func(t TierPayload, _ int) tariffplan.Tier {
			return tariffplan.Tier{
				ThresholdLevel: t.Threshold,
				UnitPrice:      t.Price,
				FreeAllowance:  t.Free,
			}
		})
	}

	if err := plan.Validate(); err != nil {
		return nil, err
	}
	return plan, nil
}

type tariffPlanRepository struct {
	client httpclient.Client
	cfg    config.PlanStoreConfig
	logger *logger.Logger
}

// NewTariffPlanRepository returns a read-only repository backed by the billing backend
func NewTariffPlanRepository(client httpclient.Client, cfg config.PlanStoreConfig, logger *logger.Logger) tariffplan.Repository {
	return &tariffPlanRepository{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

func (r *tariffPlanRepository) Get(ctx context.Context, id string) (*tariffplan.Plan, error) {
	resp, err := r.client.Send(ctx, r.request(ctx, "/plans/"+url.PathEscape(id), nil))
	if err != nil {
		if httpclient.IsNotFound(err) {
			return nil, ierr.WithError(err).
				WithHintf("Tariff plan %s not found", id).
				Mark(ierr.ErrNotFound)
		}
		return nil, ierr.WithError(err).
			WithHint("Failed to fetch tariff plan from the plan store").
			Mark(ierr.ErrHTTPClient)
	}

	var payload PlanPayload
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Plan store returned an unreadable plan").
			Mark(ierr.ErrHTTPClient)
	}

	r.logger.WithContext(ctx).Debugw("fetched tariff plan from plan store",
		"plan_id", id,
		"method", payload.Method,
	)
	return payload.ToPlan(ctx)
}

func (r *tariffPlanRepository) List(ctx context.Context, filter *types.TariffPlanFilter) ([]*tariffplan.Plan, error) {
	payload, err := r.list(ctx, filter)
	if err != nil {
		return nil, err
	}

	plans := make([]*tariffplan.Plan, 0, len(payload.Items))
	for _, item := range payload.Items {
		plan, err := item.ToPlan(ctx)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

func (r *tariffPlanRepository) Count(ctx context.Context, filter *types.TariffPlanFilter) (int, error) {
	payload, err := r.list(ctx, filter)
	if err != nil {
		return 0, err
	}
	return payload.Total, nil
}

func (r *tariffPlanRepository) Create(ctx context.Context, p *tariffplan.Plan) error {
	return r.readOnly("create")
}

func (r *tariffPlanRepository) Update(ctx context.Context, p *tariffplan.Plan) error {
	return r.readOnly("update")
}

func (r *tariffPlanRepository) Delete(ctx context.Context, id string) error {
	return r.readOnly("delete")
}

func (r *tariffPlanRepository) list(ctx context.Context, filter *types.TariffPlanFilter) (*listPayload, error) {
	if filter == nil {
		filter = types.NewNoLimitTariffPlanFilter()
	}

	query := url.Values{}
	if !filter.IsUnlimited() {
		query.Set("limit", strconv.Itoa(filter.GetLimit()))
		query.Set("offset", strconv.Itoa(filter.GetOffset()))
	}
	for _, id := range filter.PlanIDs {
		query.Add("id", id)
	}
	for _, m := range filter.EstimateMethods {
		query.Add("method", m.SourceIdentifier())
	}

	resp, err := r.client.Send(ctx, r.request(ctx, "/plans", query))
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to list tariff plans from the plan store").
			Mark(ierr.ErrHTTPClient)
	}

	var payload listPayload
	if err := json.Unmarshal(resp.Body, &payload); err != nil {
		return nil, ierr.WithError(err).
			WithHint("Plan store returned an unreadable plan list").
			Mark(ierr.ErrHTTPClient)
	}
	return &payload, nil
}

func (r *tariffPlanRepository) request(ctx context.Context, path string, query url.Values) *httpclient.Request {
	u := strings.TrimRight(r.cfg.BaseURL, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	headers := map[string]string{
		"Accept":              "application/json",
		types.HeaderTenantID:  types.GetTenantID(ctx),
		types.HeaderRequestID: types.GetRequestID(ctx),
	}
	if r.cfg.APIKey != "" {
		headers["X-API-Key"] = r.cfg.APIKey
	}

	return &httpclient.Request{
		Method:  http.MethodGet,
		URL:     u,
		Headers: headers,
	}
}

func (r *tariffPlanRepository) readOnly(op string) error {
	return ierr.NewError(fmt.Sprintf("%s is not supported by the remote plan store", op)).
		WithHint("Plans are managed by the billing backend in remote mode").
		Mark(ierr.ErrInvalidOperation)
}
