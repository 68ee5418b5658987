package command

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"binance-cli/internal/exchange/binance"
	"binance-cli/internal/param"
)

// venueSet produces the command table for one venue. The same table is
// instantiated three times with different prefixes and clients; nothing here
// is venue-specific beyond what the client's descriptor says.
type venueSet struct {
	client  *binance.Client
	printer *Printer
}

func (v *venueSet) commands() []*cli.Command {
	d := v.client.Venue()
	p := d.CommandPrefix

	cmds := []*cli.Command{
		{
			Name:    p + "account",
			Aliases: []string{p + "a"},
			Usage:   "Get account balance. API key and secret are required.",
			Action:  v.account,
		},
		{
			Name:      p + "agg_trades",
			Aliases:   []string{p + "at"},
			Usage:     "Get compressed/aggregate trades list",
			ArgsUsage: "<symbol>",
			Flags: []cli.Flag{
				stringFlag("limit", "l", "Default 500; max 1000."),
				stringFlag("startTime", "s", "Timestamp in ms to get aggregate trades from INCLUSIVE."),
				stringFlag("endTime", "e", "Timestamp in ms to get aggregate trades until INCLUSIVE."),
				stringFlag("fromId", "f", "Trade id to fetch from. Default gets most recent trades."),
			},
			Action: v.aggTrades,
		},
		{
			Name:    p + "book_ticker",
			Aliases: []string{p + "bt"},
			Usage:   "Get best bid/ask price and quantity on the order book",
			Flags:   []cli.Flag{stringFlag("symbol", "s", "trading symbol")},
			Action:  v.bookTicker,
		},
		{
			Name:   p + "buy",
			Usage:  "Place a buy order. API key and secret are required.",
			Flags:  orderFlags(),
			Action: v.newOrder("BUY"),
		},
		{
			Name:      p + "cancel_all",
			Aliases:   []string{p + "ca"},
			Usage:     "Cancel all open orders. API key and secret are required.",
			ArgsUsage: "<symbol>",
			Action:    v.cancelAll,
		},
		{
			Name:      p + "cancel_order",
			Aliases:   []string{p + "cancel"},
			Usage:     "Cancel an order. API key and secret are required.",
			ArgsUsage: "<symbol>",
			Flags:     orderRefFlags(),
			Action:    v.cancelOrder,
		},
		{
			Name:      p + "get_order",
			Aliases:   []string{p + "get"},
			Usage:     "Get an order's details. API key and secret are required.",
			ArgsUsage: "<symbol>",
			Flags:     orderRefFlags(),
			Action:    v.getOrder,
		},
		{
			Name:      p + "hist_trades",
			Aliases:   []string{p + "ht"},
			Usage:     "Get historical trades. API key is required.",
			ArgsUsage: "<symbol>",
			Flags: []cli.Flag{
				stringFlag("limit", "l", "Default 500; max 1000."),
				stringFlag("fromId", "f", "Trade id to fetch from. Default gets most recent trades."),
			},
			Action: v.histTrades,
		},
		{
			Name:    p + "info",
			Aliases: []string{p + "i"},
			Usage:   "Get exchange info",
			Action:  v.exchangeInfo,
		},
		{
			Name:      p + "klines",
			Aliases:   []string{p + "k"},
			Usage:     "Get kline/candlestick data",
			ArgsUsage: "<symbol> <interval>",
			Flags: []cli.Flag{
				stringFlag("limit", "l", "Default 500; max 1000."),
				stringFlag("startTime", "s", "Timestamp in ms to get klines from INCLUSIVE."),
				stringFlag("endTime", "e", "Timestamp in ms to get klines until INCLUSIVE."),
			},
			Action: v.klines,
		},
		{
			Name:      p + "listen",
			Aliases:   []string{p + "l"},
			Usage:     "Listen to a single or multiple streams until interrupted",
			ArgsUsage: "<stream> [streams...]",
			Action:    v.listen,
		},
		{
			Name:      p + "order_book",
			Aliases:   []string{p + "ob", p + "book"},
			Usage:     "Get order book",
			ArgsUsage: "<symbol>",
			Flags: []cli.Flag{
				stringFlag("limit", "l", "Default 100; max 5000. Valid limits: [5, 10, 20, 50, 100, 500, 1000, 5000]"),
			},
			Action: v.orderBook,
		},
		{
			Name:   p + "price",
			Usage:  "Get latest ticker price",
			Flags:  []cli.Flag{stringFlag("symbol", "s", "trading symbol")},
			Action: v.tickerPrice,
		},
		{
			Name:   p + "sell",
			Usage:  "Place a sell order. API key and secret are required.",
			Flags:  orderFlags(),
			Action: v.newOrder("SELL"),
		},
		{
			Name:   p + "ticker",
			Usage:  "Get 24hr ticker data",
			Flags:  []cli.Flag{stringFlag("symbol", "s", "trading symbol")},
			Action: v.ticker24hr,
		},
		{
			Name:    p + "time",
			Aliases: []string{p + "t"},
			Usage:   "Get server time",
			Action:  v.serverTime,
		},
		{
			Name:      p + "trades",
			Usage:     "Get recent trades",
			ArgsUsage: "<symbol>",
			Flags: []cli.Flag{
				stringFlag("limit", "l", "Default 500; max 1000."),
			},
			Action: v.trades,
		},
	}

	if d.HasAvgPrice {
		cmds = append(cmds, &cli.Command{
			Name:      p + "avg_price",
			Aliases:   []string{p + "ap"},
			Usage:     "Get current average price",
			ArgsUsage: "<symbol>",
			Action:    v.avgPrice,
		})
	}
	return cmds
}

func stringFlag(name, alias, usage string) *cli.StringFlag {
	f := &cli.StringFlag{Name: name, Usage: usage}
	if alias != "" {
		f.Aliases = []string{alias}
	}
	return f
}

func orderFlags() []cli.Flag {
	return []cli.Flag{
		stringFlag("symbol", "s", "trading symbol, e.g. BNBUSDT; all symbols are available from the info command"),
		stringFlag("type", "t", "order type, e.g. LIMIT, MARKET, LIMIT_MAKER"),
		stringFlag("qty", "q", "order quantity; check the exchange filters if you see errors like LOT_SIZE"),
		stringFlag("price", "p", "order price; not required for MARKET orders"),
		stringFlag("tif", "f", "time in force: GTC, IOC or FOK"),
		stringFlag("quoteOrderQty", "u", "quote order quantity, for MARKET orders"),
	}
}

func orderRefFlags() []cli.Flag {
	return []cli.Flag{
		stringFlag("orderId", "i", "order id; wins when origClientOrderId is also given"),
		stringFlag("origClientOrderId", "c", "client order id used when placing the order"),
	}
}

// requireArgs enforces positional arity before anything else runs; a miss is
// a dispatch failure and exits non-zero without touching the network.
func requireArgs(cCtx *cli.Context, names ...string) ([]string, error) {
	if cCtx.NArg() < len(names) {
		return nil, fmt.Errorf("missing required argument %q", names[cCtx.NArg()])
	}
	return cCtx.Args().Slice()[:len(names)], nil
}

// run issues the single network call and prints its outcome. Handler errors
// never propagate past here: a printed error payload is a result, and the
// process exits zero, which existing scripts rely on.
func (v *venueSet) run(cCtx *cli.Context, call func(ctx context.Context) (json.RawMessage, error)) error {
	res, err := call(cCtx.Context)
	if err != nil {
		v.printer.PrintError(err)
		return nil
	}
	v.printer.Print(res)
	return nil
}

func (v *venueSet) serverTime(cCtx *cli.Context) error {
	return v.run(cCtx, v.client.Time)
}

func (v *venueSet) exchangeInfo(cCtx *cli.Context) error {
	return v.run(cCtx, v.client.ExchangeInfo)
}

func (v *venueSet) orderBook(cCtx *cli.Context) error {
	args, err := requireArgs(cCtx, "symbol")
	if err != nil {
		return err
	}
	limit := cCtx.String("limit")
	return v.run(cCtx, func(ctx context.Context) (json.RawMessage, error) {
		return v.client.Depth(ctx, args[0], limit)
	})
}

func (v *venueSet) trades(cCtx *cli.Context) error {
	args, err := requireArgs(cCtx, "symbol")
	if err != nil {
		return err
	}
	bag := param.Bag{"limit": cCtx.String("limit")}
	return v.run(cCtx, func(ctx context.Context) (json.RawMessage, error) {
		return v.client.Trades(ctx, args[0], bag)
	})
}

func (v *venueSet) histTrades(cCtx *cli.Context) error {
	args, err := requireArgs(cCtx, "symbol")
	if err != nil {
		return err
	}
	if err := v.client.Credentials().RequireKey(); err != nil {
		v.printer.PrintError(err)
		return nil
	}
	bag := param.Bag{
		"limit":  cCtx.String("limit"),
		"fromId": cCtx.String("fromId"),
	}
	return v.run(cCtx, func(ctx context.Context) (json.RawMessage, error) {
		return v.client.HistoricalTrades(ctx, args[0], bag)
	})
}

func (v *venueSet) aggTrades(cCtx *cli.Context) error {
	args, err := requireArgs(cCtx, "symbol")
	if err != nil {
		return err
	}
	bag := param.Bag{
		"limit":     cCtx.String("limit"),
		"startTime": cCtx.String("startTime"),
		"endTime":   cCtx.String("endTime"),
		"fromId":    cCtx.String("fromId"),
	}
	return v.run(cCtx, func(ctx context.Context) (json.RawMessage, error) {
		return v.client.AggTrades(ctx, args[0], bag)
	})
}

func (v *venueSet) klines(cCtx *cli.Context) error {
	args, err := requireArgs(cCtx, "symbol", "interval")
	if err != nil {
		return err
	}
	bag := param.Bag{
		"limit":     cCtx.String("limit"),
		"startTime": cCtx.String("startTime"),
		"endTime":   cCtx.String("endTime"),
	}
	return v.run(cCtx, func(ctx context.Context) (json.RawMessage, error) {
		return v.client.Klines(ctx, args[0], args[1], bag)
	})
}

func (v *venueSet) avgPrice(cCtx *cli.Context) error {
	args, err := requireArgs(cCtx, "symbol")
	if err != nil {
		return err
	}
	return v.run(cCtx, func(ctx context.Context) (json.RawMessage, error) {
		return v.client.AvgPrice(ctx, args[0])
	})
}

func (v *venueSet) ticker24hr(cCtx *cli.Context) error {
	symbol := cCtx.String("symbol")
	return v.run(cCtx, func(ctx context.Context) (json.RawMessage, error) {
		return v.client.Ticker24hr(ctx, symbol)
	})
}

func (v *venueSet) tickerPrice(cCtx *cli.Context) error {
	symbol := cCtx.String("symbol")
	return v.run(cCtx, func(ctx context.Context) (json.RawMessage, error) {
		return v.client.TickerPrice(ctx, symbol)
	})
}

func (v *venueSet) bookTicker(cCtx *cli.Context) error {
	symbol := cCtx.String("symbol")
	return v.run(cCtx, func(ctx context.Context) (json.RawMessage, error) {
		return v.client.BookTicker(ctx, symbol)
	})
}

func (v *venueSet) account(cCtx *cli.Context) error {
	if err := v.client.Credentials().RequireKeyAndSecret(); err != nil {
		v.printer.PrintError(err)
		return nil
	}
	return v.run(cCtx, v.client.Account)
}

func (v *venueSet) newOrder(side string) cli.ActionFunc {
	return func(cCtx *cli.Context) error {
		if err := v.client.Credentials().RequireKeyAndSecret(); err != nil {
			v.printer.PrintError(err)
			return nil
		}
		for _, opt := range []string{"qty", "price", "quoteOrderQty"} {
			raw := strings.TrimSpace(cCtx.String(opt))
			if raw == "" {
				continue
			}
			if _, err := decimal.NewFromString(raw); err != nil {
				v.printer.PrintError(fmt.Errorf("invalid %s %q: must be a decimal number", opt, raw))
				return nil
			}
		}
		bag := param.Bag{
			"quantity":      cCtx.String("qty"),
			"price":         cCtx.String("price"),
			"timeInForce":   cCtx.String("tif"),
			"quoteOrderQty": cCtx.String("quoteOrderQty"),
		}
		symbol := cCtx.String("symbol")
		orderType := cCtx.String("type")
		return v.run(cCtx, func(ctx context.Context) (json.RawMessage, error) {
			return v.client.NewOrder(ctx, symbol, side, orderType, bag)
		})
	}
}

func (v *venueSet) getOrder(cCtx *cli.Context) error {
	return v.orderLookup(cCtx, v.client.GetOrder)
}

func (v *venueSet) cancelOrder(cCtx *cli.Context) error {
	return v.orderLookup(cCtx, v.client.CancelOrder)
}

func (v *venueSet) orderLookup(cCtx *cli.Context, call func(context.Context, string, binance.OrderRef) (json.RawMessage, error)) error {
	args, err := requireArgs(cCtx, "symbol")
	if err != nil {
		return err
	}
	if err := v.client.Credentials().RequireKeyAndSecret(); err != nil {
		v.printer.PrintError(err)
		return nil
	}
	ref := binance.OrderRef{
		OrderID:           cCtx.String("orderId"),
		OrigClientOrderID: cCtx.String("origClientOrderId"),
	}
	return v.run(cCtx, func(ctx context.Context) (json.RawMessage, error) {
		return call(ctx, args[0], ref)
	})
}

func (v *venueSet) cancelAll(cCtx *cli.Context) error {
	args, err := requireArgs(cCtx, "symbol")
	if err != nil {
		return err
	}
	if err := v.client.Credentials().RequireKeyAndSecret(); err != nil {
		v.printer.PrintError(err)
		return nil
	}
	return v.run(cCtx, func(ctx context.Context) (json.RawMessage, error) {
		return v.client.CancelAllOpenOrders(ctx, args[0])
	})
}

func (v *venueSet) listen(cCtx *cli.Context) error {
	streams := cCtx.Args().Slice()
	if len(streams) == 0 {
		return errors.New("at least one stream name is required")
	}
	err := v.client.Listen(cCtx.Context, streams,
		func(msg []byte) { v.printer.Print(json.RawMessage(msg)) },
		func(state string) { v.printer.Print(state) })
	if err != nil {
		v.printer.PrintError(err)
	}
	return nil
}
