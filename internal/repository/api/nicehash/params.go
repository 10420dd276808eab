package nicehash

import (
	"time"

	"github.com/shopspring/decimal"
)

// Field order below is the order parameters appear on the wire.

const (
	DefaultPageSize   = 100
	DefaultTradeLimit = 25
)

func nowMillis(now time.Time) int64 {
	return now.UnixMilli()
}

// Hashpower

type HashpowerOrderBookParams struct {
	Algorithm string `url:"algorithm" validate:"required"`
	Size      int    `url:"size"`
	Page      int    `url:"page"`
}

func (p *HashpowerOrderBookParams) setDefaults(time.Time) {
	if p.Size == 0 {
		p.Size = DefaultPageSize
	}
}

// HashpowerSummaryParams filters summaries. Both fields are optional for the
// summaries endpoint and required for the single summary endpoint.
type HashpowerSummaryParams struct {
	Algorithm string `url:"algorithm"`
	Market    string `url:"market" validate:"omitempty,oneof=EU USA EU_N USA_E"`
}

type AlgoHistoryParams struct {
	Algorithm string `url:"algorithm" validate:"required"`
}

type PublicOrdersParams struct {
	Algorithm string `url:"algorithm"`
	Market    string `url:"market" validate:"omitempty,oneof=EU USA EU_N USA_E"`
	Op        string `url:"op" validate:"oneof=GT GE LT LE"`
	Timestamp int64  `url:"timestamp"`
	Page      int    `url:"page"`
	Size      int    `url:"size"`
}

func (p *PublicOrdersParams) setDefaults(now time.Time) {
	if p.Op == "" {
		p.Op = "LT"
	}
	if p.Timestamp == 0 {
		p.Timestamp = nowMillis(now)
	}
	if p.Size == 0 {
		p.Size = DefaultPageSize
	}
}

type FixedPriceRequest struct {
	Algorithm string          `json:"algorithm" validate:"required"`
	Market    string          `json:"market" validate:"required,oneof=EU USA EU_N USA_E"`
	Limit     decimal.Decimal `json:"limit"`
}

type MyHashpowerOrdersParams struct {
	Algorithm string `url:"algorithm"`
	Market    string `url:"market" validate:"omitempty,oneof=EU USA EU_N USA_E"`
	Timestamp int64  `url:"ts"`
	Limit     int    `url:"limit" validate:"gt=0"`
	Op        string `url:"op" validate:"required,oneof=GT GE LT LE"`
	Active    bool   `url:"active"`
	Status    string `url:"status"`
}

func (p *MyHashpowerOrdersParams) setDefaults(now time.Time) {
	if p.Timestamp == 0 {
		p.Timestamp = nowMillis(now)
	}
}

const (
	OrderTypeStandard = "STANDARD"
	OrderTypeFixed    = "FIXED"
)

// HashpowerOrder is what callers supply to create an order. Market factors are
// looked up from the algorithm list.
type HashpowerOrder struct {
	Type      string `validate:"required,oneof=STANDARD FIXED"`
	Market    string `validate:"required,oneof=EU USA EU_N USA_E"`
	Algorithm string `validate:"required"`
	Amount    decimal.Decimal
	Price     decimal.Decimal
	Limit     decimal.Decimal
	PoolID    string `validate:"required"`
}

type hashpowerOrderBody struct {
	Market              string          `json:"market"`
	Algorithm           string          `json:"algorithm"`
	Amount              decimal.Decimal `json:"amount"`
	Price               decimal.Decimal `json:"price"`
	Limit               decimal.Decimal `json:"limit"`
	PoolID              string          `json:"poolId"`
	Type                string          `json:"type"`
	MarketFactor        RawMessage      `json:"marketFactor"`
	DisplayMarketFactor RawMessage      `json:"displayMarketFactor"`
}

type refillBody struct {
	Amount decimal.Decimal `json:"amount"`
}

type priceLimitBody struct {
	Price               *decimal.Decimal `json:"price,omitempty"`
	Limit               *decimal.Decimal `json:"limit,omitempty"`
	MarketFactor        RawMessage       `json:"marketFactor"`
	DisplayMarketFactor RawMessage       `json:"displayMarketFactor"`
}

// Exchange

type CandlesticksParams struct {
	Market     string `url:"market" validate:"required"`
	From       int64  `url:"from" validate:"required"`
	To         int64  `url:"to" validate:"required,gtefield=From"`
	Resolution int    `url:"resolution" validate:"oneof=1 60 1440"`
}

type TradesParams struct {
	Market        string `url:"market" validate:"required"`
	SortDirection string `url:"sortDirection" validate:"oneof=ASC DESC"`
	Limit         int    `url:"limit"`
	Timestamp     int64  `url:"timestamp"`
}

func (p *TradesParams) setDefaults(now time.Time) {
	if p.SortDirection == "" {
		p.SortDirection = "DESC"
	}
	if p.Limit == 0 {
		p.Limit = DefaultTradeLimit
	}
	if p.Timestamp == 0 {
		p.Timestamp = nowMillis(now)
	}
}

type OrderBookParams struct {
	Market string `url:"market" validate:"required"`
	Limit  int    `url:"limit"`
}

func (p *OrderBookParams) setDefaults(time.Time) {
	if p.Limit == 0 {
		p.Limit = DefaultTradeLimit
	}
}

type MyExchangeOrdersParams struct {
	Market        string `url:"market" validate:"required"`
	OrderState    string `url:"orderState"`
	OrderStatus   string `url:"orderStatus"`
	SortDirection string `url:"sortDirection" validate:"oneof=ASC DESC"`
	Limit         int    `url:"limit"`
	Timestamp     int64  `url:"timestamp"`
}

func (p *MyExchangeOrdersParams) setDefaults(now time.Time) {
	if p.SortDirection == "" {
		p.SortDirection = "DESC"
	}
	if p.Limit == 0 {
		p.Limit = DefaultTradeLimit
	}
	if p.Timestamp == 0 {
		p.Timestamp = nowMillis(now)
	}
}

type MyTradesParams = TradesParams

type LimitOrderParams struct {
	Market   string  `url:"market" validate:"required"`
	Side     string  `url:"side" validate:"oneof=buy sell"`
	Type     string  `url:"type"`
	Quantity Decimal `url:"quantity"`
	Price    Decimal `url:"price"`
}

func NewLimitOrder(market, side string, quantity, price decimal.Decimal) *LimitOrderParams {
	return &LimitOrderParams{
		Market:   market,
		Side:     side,
		Type:     "limit",
		Quantity: NewDecimal(quantity),
		Price:    NewDecimal(price),
	}
}

type MarketBuyParams struct {
	Market      string  `url:"market" validate:"required"`
	Side        string  `url:"side"`
	Type        string  `url:"type"`
	SecQuantity Decimal `url:"secQuantity"`
	MinQuantity Decimal `url:"minQuantity"`
}

// NewMarketBuy spends secQuantity of the quote currency. minQuantity may be
// the zero Decimal.
func NewMarketBuy(market string, secQuantity decimal.Decimal, minQuantity Decimal) *MarketBuyParams {
	return &MarketBuyParams{
		Market:      market,
		Side:        "buy",
		Type:        "market",
		SecQuantity: NewDecimal(secQuantity),
		MinQuantity: minQuantity,
	}
}

type MarketSellParams struct {
	Market         string  `url:"market" validate:"required"`
	Side           string  `url:"side"`
	Type           string  `url:"type"`
	Quantity       Decimal `url:"quantity"`
	MinSecQuantity Decimal `url:"minSecQuantity"`
}

func NewMarketSell(market string, quantity decimal.Decimal, minSecQuantity Decimal) *MarketSellParams {
	return &MarketSellParams{
		Market:         market,
		Side:           "sell",
		Type:           "market",
		Quantity:       NewDecimal(quantity),
		MinSecQuantity: minSecQuantity,
	}
}

type MyOrderParams struct {
	Market  string `url:"market" validate:"required"`
	OrderID string `url:"orderId" validate:"required"`
}

type OrderTradesParams struct {
	Market        string `url:"market" validate:"required"`
	OrderID       string `url:"orderId" validate:"required"`
	SortDirection string `url:"sortDirection" validate:"oneof=ASC DESC"`
}

func (p *OrderTradesParams) setDefaults(time.Time) {
	if p.SortDirection == "" {
		p.SortDirection = "DESC"
	}
}

type CancelOrderParams struct {
	Market  string `url:"market" validate:"required"`
	OrderID string `url:"orderId" validate:"required"`
}

type CancelAllParams struct {
	Market string `url:"market"`
	Side   string `url:"side" validate:"omitempty,oneof=buy sell BUY SELL"`
}

// Accounting

type AccountsParams struct {
	ExtendedResponse bool   `url:"extendedResponse"`
	Fiat             string `url:"fiat"`
}

func (p *AccountsParams) setDefaults(time.Time) {
	if p.Fiat == "" {
		p.Fiat = "USD"
	}
}

type AccountParams struct {
	ExtendedResponse bool `url:"extendedResponse"`
}

type ActivityParams struct {
	Type      string `url:"type" validate:"omitempty,oneof=DEPOSIT WITHDRAWAL HASHPOWER MINING EXCHANGE UNPAID_MINING OTHER"`
	Timestamp int64  `url:"timestamp"`
	Stage     string `url:"stage"`
	Limit     int    `url:"limit"`
}

func (p *ActivityParams) setDefaults(now time.Time) {
	if p.Timestamp == 0 {
		p.Timestamp = nowMillis(now)
	}
	if p.Stage == "" {
		p.Stage = "ALL"
	}
	if p.Limit == 0 {
		p.Limit = 10
	}
}

type DepositAddressesParams struct {
	Currency   string `url:"currency" validate:"required"`
	WalletType string `url:"walletType" validate:"omitempty,oneof=BITGO BLOCKCHAIN LIGHTNING MULTISIG"`
}

type WithdrawalAddressesParams struct {
	Currency string `url:"currency"`
	Size     int    `url:"size"`
	Page     int    `url:"page"`
	Type     string `url:"type"`
}

func (p *WithdrawalAddressesParams) setDefaults(time.Time) {
	if p.Size == 0 {
		p.Size = DefaultPageSize
	}
}

type WithdrawalRequest struct {
	Currency            string          `json:"currency" validate:"required"`
	Amount              decimal.Decimal `json:"amount"`
	WithdrawalAddressID string          `json:"withdrawalAddressId" validate:"required"`
}

// Mining

type GroupsParams struct {
	ExtendedResponse bool `url:"extendedResponse"`
}

const (
	RigActionStart     = "START"
	RigActionStop      = "STOP"
	RigActionPowerMode = "POWER_MODE"
)

type RigStatusUpdate struct {
	Group    string   `json:"group"`
	RigID    string   `json:"rigId"`
	DeviceID string   `json:"deviceId"`
	Action   string   `json:"action" validate:"oneof=START STOP POWER_MODE"`
	Options  []string `json:"options"`
}

// Pools

type PoolsParams struct {
	Size      int    `url:"size"`
	Page      int    `url:"page"`
	Algorithm string `url:"algorithm"`
}

func (p *PoolsParams) setDefaults(time.Time) {
	if p.Size == 0 {
		p.Size = DefaultPageSize
	}
}

type Pool struct {
	Name            string `json:"name" validate:"required"`
	Algorithm       string `json:"algorithm" validate:"required"`
	StratumHostname string `json:"stratumHostname"`
	StratumPort     int    `json:"stratumPort"`
	Username        string `json:"username"`
	Password        string `json:"password"`
}

type PoolVerification struct {
	Location        string `json:"poolVerificationServiceLocation"`
	MiningAlgorithm string `json:"miningAlgorithm"`
	StratumHost     string `json:"stratumHost"`
	StratumPort     int    `json:"stratumPort"`
	Username        string `json:"username"`
	Password        string `json:"password"`
}
