// Package forecast projects tenant revenue with a language model, falling
// back to a linear trend.
package forecast

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bizdesk/backend/internal/domain/forecast"
	"github.com/bizdesk/backend/internal/domain/report"
	"github.com/bizdesk/backend/internal/domain/shared"
	"github.com/bizdesk/backend/internal/infrastructure/llm"
	"github.com/bizdesk/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const systemPrompt = `You are a financial analyst for a small business. Given monthly revenue
history, forecast the next months. Answer with JSON only, shaped as
{"forecast":[{"month":"YYYY-MM","revenue":number}],"summary":"one or two sentences"}.
Revenue is never negative.`

var errUnusableCompletion = errors.New("unusable forecast completion")

type RevenueRequest struct {
	HistoryMonths int `json:"history_months" binding:"omitempty,min=1,max=36"`
	Horizon       int `json:"horizon" binding:"omitempty,min=1,max=12"`
}

// RevenueReader totals issued invoices per month
type RevenueReader interface {
	RevenueByMonth(ctx context.Context, tenantID uuid.UUID, from, to time.Time) (map[string]decimal.Decimal, error)
}

var _ RevenueReader = (report.Reader)(nil)

type Service struct {
	reader  RevenueReader
	client  llm.Client
	logger  *zap.Logger
	observe func(source string)
	now     func() time.Time
}

type Option func(*Service)

// WithSourceObserver is called with the source of every forecast served
func WithSourceObserver(fn func(source string)) Option {
	return func(s *Service) { s.observe = fn }
}

// NewService creates a forecast Service. A nil client always uses the
// baseline trend.
func NewService(reader RevenueReader, client llm.Client, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{reader: reader, client: client, logger: logger, observe: func(string) {}, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Revenue forecasts the coming months from the completed months before now
func (s *Service) Revenue(ctx context.Context, tenantID uuid.UUID, req RevenueRequest) (*forecast.Forecast, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "forecast", "revenue")
	defer span.End()

	historyMonths := req.HistoryMonths
	if historyMonths == 0 {
		historyMonths = forecast.DefaultHistoryMonths
	}
	if historyMonths < 1 || historyMonths > forecast.MaxHistoryMonths {
		return nil, shared.NewDomainError("INVALID_HISTORY", fmt.Sprintf("History must be between 1 and %d months", forecast.MaxHistoryMonths))
	}
	horizon := req.Horizon
	if horizon == 0 {
		horizon = forecast.DefaultHorizon
	}
	if err := forecast.ValidateHorizon(horizon); err != nil {
		return nil, err
	}

	now := s.now()
	to := forecast.MonthStart(now)
	from := to.AddDate(0, -historyMonths, 0)
	totals, err := s.reader.RevenueByMonth(ctx, tenantID, from, to)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	history := forecast.FillHistory(forecast.HistoryMonths(now, historyMonths), totals)
	months := forecast.NextMonths(history, now, horizon)

	result := &forecast.Forecast{History: history, Generated: now}
	if s.client != nil {
		points, summary, err := s.ask(ctx, history, months)
		if err == nil {
			result.Source = forecast.SourceLLM
			result.Model = s.client.Model()
			result.Points = points
			result.Summary = summary
			telemetry.SetAttribute(span, telemetry.SpanAttrProvider, s.client.Model())
			s.observe(string(result.Source))
			return result, nil
		}
		s.logger.Warn("LLM forecast failed, using baseline",
			zap.String("tenant_id", tenantID.String()),
			zap.String("model", s.client.Model()),
			zap.Error(err))
	}

	result.Source = forecast.SourceBaseline
	result.Points = forecast.Baseline(history, months)
	result.Summary = forecast.BaselineSummary(history, result.Points)
	telemetry.SetAttribute(span, telemetry.SpanAttrProvider, string(forecast.SourceBaseline))
	s.observe(string(result.Source))
	return result, nil
}

func (s *Service) ask(ctx context.Context, history []forecast.Point, months []string) ([]forecast.Point, string, error) {
	var b strings.Builder
	b.WriteString("Monthly revenue history:\n")
	for _, p := range history {
		fmt.Fprintf(&b, "%s: %s\n", p.Month, p.Revenue.StringFixed(2))
	}
	fmt.Fprintf(&b, "Forecast these months: %s.", strings.Join(months, ", "))

	content, err := s.client.Complete(ctx, systemPrompt, b.String())
	if err != nil {
		return nil, "", err
	}
	return parseCompletion(content, months)
}

// parseCompletion reads the model answer. Every requested month must be
// present; extra months are ignored and negative values are clamped to zero.
func parseCompletion(content string, months []string) ([]forecast.Point, string, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	if !gjson.Valid(content) {
		return nil, "", fmt.Errorf("%w: not JSON", errUnusableCompletion)
	}
	parsed := gjson.Parse(content)

	byMonth := map[string]decimal.Decimal{}
	for _, item := range parsed.Get("forecast").Array() {
		month := item.Get("month").String()
		revenue := item.Get("revenue")
		if month == "" || !revenue.Exists() {
			continue
		}
		v, err := decimal.NewFromString(revenue.Raw)
		if err != nil {
			v, err = decimal.NewFromString(revenue.String())
			if err != nil {
				continue
			}
		}
		if v.IsNegative() {
			v = decimal.Zero
		}
		byMonth[month] = shared.RoundMoney(v)
	}

	points := make([]forecast.Point, len(months))
	for i, m := range months {
		v, ok := byMonth[m]
		if !ok {
			return nil, "", fmt.Errorf("%w: month %s missing", errUnusableCompletion, m)
		}
		points[i] = forecast.Point{Month: m, Revenue: v}
	}
	return points, strings.TrimSpace(parsed.Get("summary").String()), nil
}
