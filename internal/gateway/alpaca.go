package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"tradebridge/internal/domain"
	"tradebridge/internal/util"
)

// Compile-time interface checks.
var _ Gateway = (*AlpacaGateway)(nil)
var _ Session = (*alpacaSession)(nil)

// AlpacaGateway implements the Gateway interface on the Alpaca trading API.
// Alpaca trades US equities only; qualification of futures descriptors
// always fails with ErrContractNotFound.
type AlpacaGateway struct {
	apiKey         string
	apiSecret      string
	baseURL        string
	connectTimeout time.Duration
	log            *slog.Logger
}

// NewAlpacaGateway creates an AlpacaGateway configured with the given
// credentials and API endpoint.
func NewAlpacaGateway(apiKey, apiSecret, baseURL string, connectTimeout time.Duration, log *slog.Logger) *AlpacaGateway {
	if log == nil {
		log = slog.Default()
	}
	return &AlpacaGateway{
		apiKey:         apiKey,
		apiSecret:      apiSecret,
		baseURL:        baseURL,
		connectTimeout: connectTimeout,
		log:            log.With("gateway", "alpaca"),
	}
}

// Name returns "alpaca".
func (g *AlpacaGateway) Name() string { return "alpaca" }

// Connect builds a REST client and verifies the credentials by fetching the
// account. The verification is retried within the connect timeout; failure
// is reported as a ConnectionError.
func (g *AlpacaGateway) Connect(ctx context.Context) (Session, error) {
	client := alpaca.NewClient(alpaca.ClientOpts{
		APIKey:    g.apiKey,
		APISecret: g.apiSecret,
		BaseURL:   g.baseURL,
	})

	ctx, cancel := context.WithTimeout(ctx, g.connectTimeout)
	defer cancel()

	err := util.Retry(ctx, 3, 500*time.Millisecond, func() error {
		_, err := client.GetAccount()
		return err
	})
	if err != nil {
		return nil, &ConnectionError{Provider: "alpaca", Err: err}
	}

	g.log.Debug("session established")
	return &alpacaSession{client: client, log: g.log}, nil
}

type alpacaSession struct {
	client *alpaca.Client
	log    *slog.Logger
}

// Qualify checks that the broker knows a tradable asset for the descriptor.
func (s *alpacaSession) Qualify(_ context.Context, desc domain.ContractDescriptor) (domain.ContractDescriptor, error) {
	if desc.Kind == domain.InstrumentFuture {
		return domain.ContractDescriptor{}, fmt.Errorf("qualifying %s: futures are not tradable on alpaca: %w", desc.Key(), ErrContractNotFound)
	}

	asset, err := s.client.GetAsset(desc.Root)
	if err != nil {
		return domain.ContractDescriptor{}, fmt.Errorf("qualifying %s: %w", desc.Root, ErrContractNotFound)
	}
	if !asset.Tradable {
		return domain.ContractDescriptor{}, fmt.Errorf("qualifying %s: asset not tradable: %w", desc.Root, ErrContractNotFound)
	}

	// Alpaca reports the asset's primary exchange; keep it on the
	// descriptor for diagnostics.
	out := desc
	out.Exchange = string(asset.Exchange)
	return out, nil
}

// Positions returns settled positions with signed quantities.
func (s *alpacaSession) Positions(_ context.Context) ([]domain.Position, error) {
	positions, err := s.client.GetPositions()
	if err != nil {
		return nil, fmt.Errorf("fetching positions: %w", err)
	}

	out := make([]domain.Position, 0, len(positions))
	for _, p := range positions {
		qty := p.Qty.IntPart()
		if p.Side == "short" && qty > 0 {
			qty = -qty
		}
		out = append(out, domain.Position{
			Contract: domain.ContractDescriptor{Kind: domain.InstrumentEquity, Root: p.Symbol},
			Qty:      qty,
		})
	}
	return out, nil
}

// OpenOrders returns all currently open, unfilled orders.
func (s *alpacaSession) OpenOrders(_ context.Context) ([]domain.OpenOrder, error) {
	orders, err := s.client.GetOrders(alpaca.GetOrdersRequest{
		Status: "open",
		Limit:  500,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching open orders: %w", err)
	}

	out := make([]domain.OpenOrder, 0, len(orders))
	for _, o := range orders {
		var qty int64
		if o.Qty != nil {
			qty = o.Qty.IntPart()
		}
		side := domain.OrderSideBuy
		if o.Side == alpaca.Sell {
			side = domain.OrderSideSell
		}
		out = append(out, domain.OpenOrder{
			Contract: domain.ContractDescriptor{Kind: domain.InstrumentEquity, Root: o.Symbol},
			Side:     side,
			Qty:      qty,
		})
	}
	return out, nil
}

// Submit places the order with a fresh client order ID.
func (s *alpacaSession) Submit(_ context.Context, desc domain.ContractDescriptor, order domain.ReconciledOrder) (domain.BrokerOrder, error) {
	qty := decimal.NewFromInt(order.Quantity)
	req := alpaca.PlaceOrderRequest{
		Symbol:        desc.LocalSymbol(),
		Qty:           &qty,
		Side:          alpaca.Buy,
		Type:          alpacaOrderType(order.Type),
		TimeInForce:   alpaca.Day,
		ClientOrderID: "tb-" + uuid.NewString(),
	}
	if order.Side == domain.OrderSideSell {
		req.Side = alpaca.Sell
	}
	if order.LimitPrice != nil {
		p := decimal.NewFromFloat(*order.LimitPrice)
		req.LimitPrice = &p
	}
	if order.StopPrice != nil {
		p := decimal.NewFromFloat(*order.StopPrice)
		req.StopPrice = &p
	}

	o, err := s.client.PlaceOrder(req)
	if err != nil {
		return domain.BrokerOrder{}, fmt.Errorf("placing order for %s: %w", desc.Key(), err)
	}

	s.log.Info("order placed",
		"symbol", desc.LocalSymbol(),
		"side", order.Side,
		"qty", order.Quantity,
		"type", order.Type,
		"broker_order_id", o.ID,
	)

	return domain.BrokerOrder{
		ID:            o.ID,
		ClientOrderID: req.ClientOrderID,
		Status:        string(o.Status),
		SubmittedAt:   time.Now().UTC(),
	}, nil
}

// OrderStatus reads back the broker's current status for an order.
func (s *alpacaSession) OrderStatus(_ context.Context, orderID string) (string, error) {
	o, err := s.client.GetOrder(orderID)
	if err != nil {
		return "", fmt.Errorf("fetching order %s: %w", orderID, err)
	}
	return string(o.Status), nil
}

// Disconnect releases the session. The Alpaca REST API is stateless, so
// there is nothing to tear down.
func (s *alpacaSession) Disconnect() error {
	s.log.Debug("session released")
	return nil
}

func alpacaOrderType(t domain.OrderType) alpaca.OrderType {
	switch t {
	case domain.OrderTypeLimit:
		return alpaca.Limit
	case domain.OrderTypeStop:
		return alpaca.Stop
	case domain.OrderTypeStopLimit:
		return alpaca.StopLimit
	default:
		return alpaca.Market
	}
}
