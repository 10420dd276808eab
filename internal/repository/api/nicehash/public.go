package nicehash

import (
	"context"
	"net/http"
	"net/url"
)

const (
	pathServerTime         = "/api/v2/time"
	pathAPIFlags           = "/api/v2/system/flags"
	pathAlgorithms         = "/main/api/v2/mining/algorithms"
	pathCurrencies         = "/main/api/v2/public/currencies"
	pathFeeRules           = "/main/api/v2/public/service/fee/info"
	pathBuyInfo            = "/main/api/v2/public/buy/info"
	pathMultiAlgoInfo      = "/main/api/v2/public/simplemultialgo/info"
	pathGlobalStats24h     = "/main/api/v2/public/stats/global/24h"
	pathGlobalStatsCurrent = "/main/api/v2/public/stats/global/current"
	pathHashpowerOrderBook = "/main/api/v2/hashpower/orderBook"
	pathHashpowerSummaries = "/main/api/v2/hashpower/orders/summaries"
	pathHashpowerSummary   = "/main/api/v2/hashpower/orders/summary"
	pathFixedPrice         = "/main/api/v2/hashpower/orders/fixedPrice"
	pathPublicOrders       = "/main/api/v2/public/orders"
	pathAlgoHistory        = "/main/api/v2/public/algo/history"

	pathCandlesticks  = "/exchange/api/v2/candlesticks"
	pathExchangeStats = "/exchange/api/v2/info/marketStats"
	pathCurrentPrices = "/exchange/api/v2/info/prices"
	pathMarketsInfo   = "/exchange/api/v2/info/status"
	pathTrades        = "/exchange/api/v2/info/trades"
	pathExchangeBook  = "/exchange/api/v2/orderbook"
)

// BuyInfoCacheKey names the single cache entry shared by every BuyInfo call.
const BuyInfoCacheKey = "buy_info"

func (c *PublicClient) get(ctx context.Context, path string, params any) (RawMessage, error) {
	return c.call(ctx, http.MethodGet, path, params, nil)
}

func (c *PublicClient) ServerTime(ctx context.Context) (RawMessage, error) {
	return c.get(ctx, pathServerTime, nil)
}

func (c *PublicClient) APIFlags(ctx context.Context) (RawMessage, error) {
	return c.get(ctx, pathAPIFlags, nil)
}

// Algorithms lists mining algorithms with their market factors.
func (c *PublicClient) Algorithms(ctx context.Context) (RawMessage, error) {
	return c.get(ctx, pathAlgorithms, nil)
}

func (c *PublicClient) Currencies(ctx context.Context) (RawMessage, error) {
	return c.get(ctx, pathCurrencies, nil)
}

func (c *PublicClient) FeeRules(ctx context.Context) (RawMessage, error) {
	return c.get(ctx, pathFeeRules, nil)
}

// BuyInfo returns order limits per algorithm. The response is cached for the
// cache TTL regardless of who asks.
func (c *PublicClient) BuyInfo(ctx context.Context) (RawMessage, error) {
	req, err := c.newRequest(http.MethodGet, pathBuyInfo, nil, nil)
	if err != nil {
		return nil, err
	}
	return c.cached(ctx, BuyInfoCacheKey, req)
}

func (c *PublicClient) MultiAlgoInfo(ctx context.Context) (RawMessage, error) {
	return c.get(ctx, pathMultiAlgoInfo, nil)
}

func (c *PublicClient) GlobalStats24h(ctx context.Context) (RawMessage, error) {
	return c.get(ctx, pathGlobalStats24h, nil)
}

func (c *PublicClient) GlobalStatsCurrent(ctx context.Context) (RawMessage, error) {
	return c.get(ctx, pathGlobalStatsCurrent, nil)
}

func (c *PublicClient) HashpowerOrderBook(ctx context.Context, p HashpowerOrderBookParams) (RawMessage, error) {
	return c.get(ctx, pathHashpowerOrderBook, &p)
}

func (c *PublicClient) HashpowerSummaries(ctx context.Context, p HashpowerSummaryParams) (RawMessage, error) {
	return c.get(ctx, pathHashpowerSummaries, &p)
}

func (c *PublicClient) HashpowerSummary(ctx context.Context, algorithm, market string) (RawMessage, error) {
	if algorithm == "" || market == "" {
		return nil, &ParamsError{Path: pathHashpowerSummary, Err: errMissing("algorithm and market")}
	}
	return c.get(ctx, pathHashpowerSummary, &HashpowerSummaryParams{Algorithm: algorithm, Market: market})
}

// FixedPrice quotes a FIXED order for the given speed limit.
func (c *PublicClient) FixedPrice(ctx context.Context, req FixedPriceRequest) (RawMessage, error) {
	return c.call(ctx, http.MethodPost, pathFixedPrice, nil, &req)
}

func (c *PublicClient) PublicOrders(ctx context.Context, p PublicOrdersParams) (RawMessage, error) {
	return c.get(ctx, pathPublicOrders, &p)
}

func (c *PublicClient) AlgoHistory(ctx context.Context, algorithm string) (RawMessage, error) {
	return c.get(ctx, pathAlgoHistory, &AlgoHistoryParams{Algorithm: algorithm})
}

func (c *PublicClient) Candlesticks(ctx context.Context, p CandlesticksParams) (RawMessage, error) {
	return c.get(ctx, pathCandlesticks, &p)
}

func (c *PublicClient) ExchangeStatistics(ctx context.Context) (RawMessage, error) {
	return c.get(ctx, pathExchangeStats, nil)
}

func (c *PublicClient) CurrentPrices(ctx context.Context) (RawMessage, error) {
	return c.get(ctx, pathCurrentPrices, nil)
}

func (c *PublicClient) MarketsInfo(ctx context.Context) (RawMessage, error) {
	return c.get(ctx, pathMarketsInfo, nil)
}

func (c *PublicClient) Trades(ctx context.Context, p TradesParams) (RawMessage, error) {
	return c.get(ctx, pathTrades, &p)
}

func (c *PublicClient) ExchangeOrderBook(ctx context.Context, p OrderBookParams) (RawMessage, error) {
	return c.get(ctx, pathExchangeBook, &p)
}

// segment escapes one path segment taken from caller input.
func segment(s string) string {
	return url.PathEscape(s)
}
