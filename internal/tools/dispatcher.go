package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Content is one item of a tool response.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Result is the response envelope of a tool call. IsError is omitted on success.
type Result struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// Handler runs one tool against decoded JSON arguments.
type Handler func(ctx context.Context, args map[string]any) (any, error)

// CallObserver is told about every finished tool call.
type CallObserver interface {
	ObserveToolCall(tool string, failed bool, elapsed time.Duration)
}

// Dispatcher routes tool calls by name and turns results and errors into envelopes.
type Dispatcher struct {
	catalog  []Descriptor
	handlers map[string]Handler
	logger   *zap.Logger
	observer CallObserver
}

// NewDispatcher binds the catalog to the service. observer may be nil.
func NewDispatcher(svc *Service, logger *zap.Logger, observer CallObserver) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		catalog:  Catalog(),
		handlers: handlers(svc),
		logger:   logger,
		observer: observer,
	}
}

func handlers(svc *Service) map[string]Handler {
	return map[string]Handler{
		GetReserveData: func(ctx context.Context, args map[string]any) (any, error) {
			var params ReserveDataParams
			if err := decodeArgs(args, &params, "chain_id"); err != nil {
				return nil, err
			}
			return svc.ReserveData(ctx, params)
		},
		GetUserData: func(ctx context.Context, args map[string]any) (any, error) {
			var params UserDataParams
			if err := decodeArgs(args, &params, "chain_id", "user_address"); err != nil {
				return nil, err
			}
			return svc.UserData(ctx, params)
		},
		GetTokenInfo: func(ctx context.Context, args map[string]any) (any, error) {
			var params TokenInfoParams
			if err := decodeArgs(args, &params, "chain_id"); err != nil {
				return nil, err
			}
			return svc.TokenInfo(ctx, params)
		},
		GetInterestRateStrategies: func(ctx context.Context, args map[string]any) (any, error) {
			var params StrategiesParams
			if err := decodeArgs(args, &params, "chain_id"); err != nil {
				return nil, err
			}
			return svc.InterestRateStrategies(ctx, params)
		},
		GetHistoricalRates: func(ctx context.Context, args map[string]any) (any, error) {
			var params HistoricalRatesParams
			if err := decodeArgs(args, &params, "chain_id", "asset", "days"); err != nil {
				return nil, err
			}
			return svc.HistoricalRates(ctx, params)
		},
	}
}

// List returns the tool catalog.
func (d *Dispatcher) List() []Descriptor {
	out := make([]Descriptor, len(d.catalog))
	copy(out, d.catalog)
	return out
}

// Call runs the named tool. It never returns a Go error: failures become error envelopes.
func (d *Dispatcher) Call(ctx context.Context, name string, args map[string]any) Result {
	handler, ok := d.handlers[name]
	if !ok {
		d.logger.Warn("unknown tool", zap.String("tool", name))
		return errorResult(fmt.Sprintf("Unknown tool: %s", name))
	}
	if args == nil {
		args = map[string]any{}
	}

	start := time.Now()
	value, err := handler(ctx, args)
	if err == nil {
		var text []byte
		text, err = json.Marshal(value)
		if err == nil {
			d.observe(name, false, start)
			return Result{Content: []Content{{Type: "text", Text: string(text)}}}
		}
		err = fmt.Errorf("encode %s result: %w", name, err)
	}

	d.observe(name, true, start)
	d.logger.Error("tool call failed", zap.String("tool", name), zap.Error(err))
	return errorResult(err.Error())
}

func (d *Dispatcher) observe(name string, failed bool, start time.Time) {
	if d.observer != nil {
		d.observer.ObserveToolCall(name, failed, time.Since(start))
	}
}

func errorResult(message string) Result {
	body, _ := json.Marshal(map[string]string{
		"error":  message,
		"status": "failed",
	})
	return Result{
		Content: []Content{{Type: "text", Text: string(body)}},
		IsError: true,
	}
}
