package nicehash

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"nhgate/internal/logging"
)

const (
	pathAccounts            = "/main/api/v2/accounting/accounts2/"
	pathAccount             = "/main/api/v2/accounting/account2/"
	pathActivity            = "/main/api/v2/accounting/activity/"
	pathDepositAddresses    = "/main/api/v2/accounting/depositAddresses/"
	pathWithdrawalAddresses = "/main/api/v2/accounting/withdrawalAddresses/"
	pathWithdrawal          = "/main/api/v2/accounting/withdrawal/"

	pathMyHashpowerOrders = "/main/api/v2/hashpower/myOrders"
	pathHashpowerOrder    = "/main/api/v2/hashpower/order/"

	pathRigs          = "/main/api/v2/mining/rigs2"
	pathRig           = "/main/api/v2/mining/rig2/"
	pathRigStatus     = "/main/api/v2/mining/rigs/status2"
	pathMiningAddress = "/main/api/v2/mining/miningAddress"
	pathGroups        = "/main/api/v2/mining/groups/list"
	pathPool          = "/main/api/v2/pool/"
	pathPools         = "/main/api/v2/pools/"
	pathPoolsVerify   = "/main/api/v2/pools/verify"

	pathFeeStatus       = "/exchange/api/v2/info/fees/status"
	pathMyOrder         = "/exchange/api/v2/info/myOrder"
	pathMyOrders        = "/exchange/api/v2/info/myOrders"
	pathMyTrades        = "/exchange/api/v2/info/myTrades"
	pathOrderTrades     = "/exchange/api/v2/info/orderTrades"
	pathExchangeOrder   = "/exchange/api/v2/order"
	pathCancelAllOrders = "/exchange/api/v2/info/cancelAllOrders"
)

// PrivateClient signs every request with the organization's API key. Public
// endpoints stay reachable through the embedded client and are sent
// unsigned.
type PrivateClient struct {
	*PublicClient
	signer *Signer
}

func NewPrivate(host string, creds Credentials, options ...Option) (*PrivateClient, error) {
	s := newSettings(options)

	signer, err := NewSigner(creds, s.clock, s.nonces)
	if err != nil {
		return nil, err
	}

	return &PrivateClient{
		PublicClient: newPublic(host, s),
		signer:       signer,
	}, nil
}

// Do signs and sends req. The body is marshalled once and those exact bytes
// are both signed and sent.
func (c *PrivateClient) Do(ctx context.Context, req Request, out any) error {
	body, err := encodeBody(req.Body)
	if err != nil {
		return errors.Wrap(err, "marshal request body")
	}

	env, err := c.signer.Sign(req.Method, req.Path, req.Query, body)
	if err != nil {
		return err
	}

	ctx = logging.WithRequestID(ctx, env.RequestID)

	raw, err := c.send(ctx, req, body, env.Header())
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Unauthorized() {
			c.logger.WarnContext(ctx, "request rejected as unauthorized, check the system clock and API credentials",
				"method", req.Method, "path", req.Path)
		}
		return logging.WrapError(ctx, err)
	}

	return decodeInto(raw, out)
}

func (c *PrivateClient) call(ctx context.Context, method, path string, params, body any) (RawMessage, error) {
	req, err := c.newRequest(method, path, params, body)
	if err != nil {
		return nil, err
	}

	var out RawMessage
	if err := c.Do(ctx, req, &out); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *PrivateClient) get(ctx context.Context, path string, params any) (RawMessage, error) {
	return c.call(ctx, http.MethodGet, path, params, nil)
}

// Accounting

func (c *PrivateClient) Accounts(ctx context.Context, p AccountsParams) (RawMessage, error) {
	return c.get(ctx, pathAccounts, &p)
}

func (c *PrivateClient) Account(ctx context.Context, currency string, extended bool) (RawMessage, error) {
	return c.get(ctx, pathAccount+segment(currency), &AccountParams{ExtendedResponse: extended})
}

func (c *PrivateClient) Activity(ctx context.Context, currency string, p ActivityParams) (RawMessage, error) {
	return c.get(ctx, pathActivity+segment(currency), &p)
}

func (c *PrivateClient) DepositAddresses(ctx context.Context, p DepositAddressesParams) (RawMessage, error) {
	return c.get(ctx, pathDepositAddresses, &p)
}

func (c *PrivateClient) WithdrawalAddresses(ctx context.Context, p WithdrawalAddressesParams) (RawMessage, error) {
	return c.get(ctx, pathWithdrawalAddresses, &p)
}

func (c *PrivateClient) Withdraw(ctx context.Context, w WithdrawalRequest) (RawMessage, error) {
	return c.call(ctx, http.MethodPost, pathWithdrawal, nil, &w)
}

func (c *PrivateClient) DeleteWithdrawal(ctx context.Context, currency, id string) (RawMessage, error) {
	return c.call(ctx, http.MethodDelete, pathWithdrawal+segment(currency)+"/"+segment(id), nil, nil)
}

// Hashpower

func (c *PrivateClient) MyHashpowerOrders(ctx context.Context, p MyHashpowerOrdersParams) (RawMessage, error) {
	return c.get(ctx, pathMyHashpowerOrders, &p)
}

// AlgorithmSettings returns the market factors of algorithm from the
// algorithm list. The last matching entry wins.
func AlgorithmSettings(algorithms RawMessage, algorithm string) (marketFactor, displayMarketFactor RawMessage, err error) {
	var found gjson.Result
	gjson.GetBytes(algorithms, "miningAlgorithms").ForEach(func(_, item gjson.Result) bool {
		if item.Get("algorithm").String() == algorithm {
			found = item
		}
		return true
	})
	if !found.Exists() {
		return nil, nil, errors.Wrap(ErrAlgorithmNotFound, algorithm)
	}

	return rawOrNull(found.Get("marketFactor")), rawOrNull(found.Get("displayMarketFactor")), nil
}

func rawOrNull(r gjson.Result) RawMessage {
	if !r.Exists() {
		return RawMessage("null")
	}
	return RawMessage(r.Raw)
}

func (c *PrivateClient) algorithmSettings(ctx context.Context, algorithm string) (RawMessage, RawMessage, error) {
	algos, err := c.Algorithms(ctx)
	if err != nil {
		return nil, nil, errors.Wrap(err, "fetch algorithms")
	}
	return AlgorithmSettings(algos, algorithm)
}

// CreateHashpowerOrder places a STANDARD or FIXED order. FIXED orders are
// priced from a fresh fixed price quote and o.Price is ignored.
func (c *PrivateClient) CreateHashpowerOrder(ctx context.Context, o HashpowerOrder) (RawMessage, error) {
	if err := validate.Struct(&o); err != nil {
		return nil, &ParamsError{Path: pathHashpowerOrder, Err: err}
	}

	mf, dmf, err := c.algorithmSettings(ctx, o.Algorithm)
	if err != nil {
		return nil, err
	}

	price := o.Price
	if o.Type == OrderTypeFixed {
		quote, err := c.FixedPrice(ctx, FixedPriceRequest{Algorithm: o.Algorithm, Market: o.Market, Limit: o.Limit})
		if err != nil {
			return nil, errors.Wrap(err, "fixed price quote")
		}
		if price, err = decimalField(quote, "fixedPrice"); err != nil {
			return nil, err
		}
	}

	return c.call(ctx, http.MethodPost, pathHashpowerOrder, nil, &hashpowerOrderBody{
		Market:              o.Market,
		Algorithm:           o.Algorithm,
		Amount:              o.Amount,
		Price:               price,
		Limit:               o.Limit,
		PoolID:              o.PoolID,
		Type:                o.Type,
		MarketFactor:        mf,
		DisplayMarketFactor: dmf,
	})
}

func decimalField(raw RawMessage, path string) (decimal.Decimal, error) {
	r := gjson.GetBytes(raw, path)
	if !r.Exists() {
		return decimal.Decimal{}, errors.Errorf("response has no %s", path)
	}

	s := r.Raw
	if r.Type == gjson.String {
		s = r.Str
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(err, "parse %s", path)
	}
	return d, nil
}

func (c *PrivateClient) HashpowerOrder(ctx context.Context, id string) (RawMessage, error) {
	return c.get(ctx, pathHashpowerOrder+segment(id), nil)
}

func (c *PrivateClient) CancelHashpowerOrder(ctx context.Context, id string) (RawMessage, error) {
	return c.call(ctx, http.MethodDelete, pathHashpowerOrder+segment(id), nil, nil)
}

func (c *PrivateClient) RefillHashpowerOrder(ctx context.Context, id string, amount decimal.Decimal) (RawMessage, error) {
	return c.call(ctx, http.MethodPost, pathHashpowerOrder+segment(id)+"/refill/", nil, &refillBody{Amount: amount})
}

// UpdatePriceAndLimit changes price, limit or both of an active order. A nil
// value is left out of the request.
func (c *PrivateClient) UpdatePriceAndLimit(ctx context.Context, id, algorithm string, price, limit *decimal.Decimal) (RawMessage, error) {
	path := pathHashpowerOrder + segment(id) + "/updatePriceAndLimit/"
	if price == nil && limit == nil {
		return nil, &ParamsError{Path: path, Err: errMissing("price or limit")}
	}

	mf, dmf, err := c.algorithmSettings(ctx, algorithm)
	if err != nil {
		return nil, err
	}

	return c.call(ctx, http.MethodPost, path, nil, &priceLimitBody{
		Price:               price,
		Limit:               limit,
		MarketFactor:        mf,
		DisplayMarketFactor: dmf,
	})
}

// Mining

// Rigs lists the rigs of the root group. Paging and filters are not sent.
func (c *PrivateClient) Rigs(ctx context.Context) (RawMessage, error) {
	return c.get(ctx, pathRigs, nil)
}

func (c *PrivateClient) Rig(ctx context.Context, id string) (RawMessage, error) {
	return c.get(ctx, pathRig+segment(id), nil)
}

func (c *PrivateClient) UpdateRigStatus(ctx context.Context, u RigStatusUpdate) (RawMessage, error) {
	return c.call(ctx, http.MethodPost, pathRigStatus, nil, &u)
}

func (c *PrivateClient) MiningAddress(ctx context.Context) (RawMessage, error) {
	return c.get(ctx, pathMiningAddress, nil)
}

func (c *PrivateClient) Groups(ctx context.Context, extended bool) (RawMessage, error) {
	return c.get(ctx, pathGroups, &GroupsParams{ExtendedResponse: extended})
}

// Pools

func (c *PrivateClient) Pools(ctx context.Context, p PoolsParams) (RawMessage, error) {
	return c.get(ctx, pathPools, &p)
}

func (c *PrivateClient) Pool(ctx context.Context, id string) (RawMessage, error) {
	return c.get(ctx, pathPool+segment(id), nil)
}

func (c *PrivateClient) CreatePool(ctx context.Context, p Pool) (RawMessage, error) {
	return c.call(ctx, http.MethodPost, pathPool, nil, &p)
}

func (c *PrivateClient) DeletePool(ctx context.Context, id string) (RawMessage, error) {
	return c.call(ctx, http.MethodDelete, pathPool+segment(id), nil, nil)
}

func (c *PrivateClient) VerifyPool(ctx context.Context, v PoolVerification) (RawMessage, error) {
	return c.call(ctx, http.MethodPost, pathPoolsVerify, nil, &v)
}

// Exchange

func (c *PrivateClient) FeeStatus(ctx context.Context) (RawMessage, error) {
	return c.get(ctx, pathFeeStatus, nil)
}

func (c *PrivateClient) MyExchangeOrder(ctx context.Context, market, orderID string) (RawMessage, error) {
	return c.get(ctx, pathMyOrder, &MyOrderParams{Market: market, OrderID: orderID})
}

func (c *PrivateClient) MyExchangeOrders(ctx context.Context, p MyExchangeOrdersParams) (RawMessage, error) {
	return c.get(ctx, pathMyOrders, &p)
}

func (c *PrivateClient) MyTrades(ctx context.Context, p MyTradesParams) (RawMessage, error) {
	return c.get(ctx, pathMyTrades, &p)
}

func (c *PrivateClient) OrderTrades(ctx context.Context, p OrderTradesParams) (RawMessage, error) {
	return c.get(ctx, pathOrderTrades, &p)
}

// PlaceOrder submits a limit or market order. Exchange orders travel in the
// query string with no body.
func (c *PrivateClient) PlaceOrder(ctx context.Context, params any) (RawMessage, error) {
	switch params.(type) {
	case *LimitOrderParams, *MarketBuyParams, *MarketSellParams:
	default:
		return nil, &ParamsError{Path: pathExchangeOrder, Err: errors.Errorf("unsupported order parameters %T", params)}
	}
	return c.call(ctx, http.MethodPost, pathExchangeOrder, params, nil)
}

func (c *PrivateClient) CancelExchangeOrder(ctx context.Context, market, orderID string) (RawMessage, error) {
	return c.call(ctx, http.MethodDelete, pathExchangeOrder, &CancelOrderParams{Market: market, OrderID: orderID}, nil)
}

func (c *PrivateClient) CancelAllOrders(ctx context.Context, p CancelAllParams) (RawMessage, error) {
	return c.call(ctx, http.MethodDelete, pathCancelAllOrders, &p, nil)
}
