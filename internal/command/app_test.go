package command

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"binance-cli/internal/exchange/binance"
	"binance-cli/internal/venue"
)

// fixture drives the full three-venue app against a single fake server so a
// test can run any command end to end and inspect what hit the wire.
type fixture struct {
	out    *bytes.Buffer
	server *httptest.Server
	run    func(args ...string) error
}

func newFixture(t *testing.T, handler http.Handler, withCreds bool) *fixture {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	var out bytes.Buffer
	clients := make([]*binance.Client, 0, 3)
	for _, d := range venue.Table() {
		settings := venue.Settings{
			Descriptor: d,
			BaseURL:    srv.URL,
			StreamURL:  "ws://example.invalid",
		}
		if withCreds {
			settings.Credentials = venue.Credentials{
				APIKey:    "test-key",
				APISecret: "test-secret",
				KeyEnv:    d.KeyEnv,
				SecretEnv: d.SecretEnv,
			}
		} else {
			settings.Credentials = venue.Credentials{KeyEnv: d.KeyEnv, SecretEnv: d.SecretEnv}
		}
		clients = append(clients, binance.NewClient(settings, binance.Options{}))
	}

	app := NewApp(Params{
		Printer:   NewPrinter(&out),
		Spot:      clients[0],
		UMFutures: clients[1],
		CMFutures: clients[2],
	})
	app.Writer = io.Discard
	app.ErrWriter = io.Discard

	return &fixture{
		out:    &out,
		server: srv,
		run: func(args ...string) error {
			return app.Run(append([]string{"binance-cli"}, args...))
		},
	}
}

func countingHandler(calls *int, status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	})
}

func TestCommandTableShape(t *testing.T) {
	app := NewApp(Params{
		Printer:   NewPrinter(io.Discard),
		Spot:      spotClient(t),
		UMFutures: umClient(t),
		CMFutures: cmClient(t),
	})

	names := make(map[string]bool)
	for _, cmd := range app.Commands {
		names[cmd.Name] = true
	}
	if len(app.Commands) != 52 {
		t.Fatalf("len(Commands) = %d, want 52", len(app.Commands))
	}
	if !names["avg_price"] {
		t.Fatal("spot avg_price command is missing")
	}
	if names["um_avg_price"] || names["cm_avg_price"] {
		t.Fatal("avg_price must not exist on futures venues")
	}
	for _, want := range []string{"account", "um_account", "cm_account", "listen", "um_listen", "cm_listen"} {
		if !names[want] {
			t.Fatalf("command %q is missing", want)
		}
	}
}

func venueClient(t *testing.T, idx int) *binance.Client {
	t.Helper()
	d := venue.Table()[idx]
	return binance.NewClient(venue.Settings{
		Descriptor: d,
		BaseURL:    "https://example.invalid",
		StreamURL:  d.DefaultStreamURL,
	}, binance.Options{})
}

func spotClient(t *testing.T) *binance.Client { return venueClient(t, 0) }
func umClient(t *testing.T) *binance.Client   { return venueClient(t, 1) }
func cmClient(t *testing.T) *binance.Client   { return venueClient(t, 2) }

func TestOrderBookDefaultsLimitAndPrintsPayload(t *testing.T) {
	payload := `{"lastUpdateId":1027024,"bids":[["4.00000000","431.00000000"]],"asks":[]}`
	var gotPath, gotQuery string
	fx := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		_, _ = io.WriteString(w, payload)
	}), false)

	if err := fx.run("order_book", "BNBUSDT"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if gotPath != "/api/v3/depth" {
		t.Fatalf("path = %q, want /api/v3/depth", gotPath)
	}
	if gotQuery != "limit=100&symbol=BNBUSDT" {
		t.Fatalf("query = %q", gotQuery)
	}
	if got := fx.out.String(); got != payload+"\n" {
		t.Fatalf("output = %q, want payload", got)
	}
}

func TestOrderBookRejectsBadLimitWithoutCalling(t *testing.T) {
	calls := 0
	fx := newFixture(t, countingHandler(&calls, http.StatusOK, `{}`), false)

	if err := fx.run("order_book", "-l", "42", "BNBUSDT"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if calls != 0 {
		t.Fatalf("server calls = %d, want 0", calls)
	}
	if !strings.Contains(fx.out.String(), "invalid depth limit") {
		t.Fatalf("output = %q, want depth limit diagnostic", fx.out.String())
	}
}

func TestBuyPlacesSignedOrder(t *testing.T) {
	var gotMethod, gotPath string
	var gotForm map[string][]string
	fx := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm: %v", err)
		}
		gotForm = r.PostForm
		_, _ = io.WriteString(w, `{"orderId":28,"status":"NEW"}`)
	}), true)

	err := fx.run("buy", "-s", "BNBUSDT", "-t", "LIMIT", "-q", "0.05", "-p", "350", "-f", "GTC")
	if err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != "/api/v3/order" {
		t.Fatalf("request = %s %s, want POST /api/v3/order", gotMethod, gotPath)
	}
	want := map[string]string{
		"symbol":      "BNBUSDT",
		"side":        "BUY",
		"type":        "LIMIT",
		"quantity":    "0.05",
		"price":       "350",
		"timeInForce": "GTC",
	}
	for k, v := range want {
		if len(gotForm[k]) != 1 || gotForm[k][0] != v {
			t.Fatalf("form[%q] = %v, want %q", k, gotForm[k], v)
		}
	}
	if len(gotForm["quoteOrderQty"]) != 0 {
		t.Fatalf("form carries empty quoteOrderQty: %v", gotForm["quoteOrderQty"])
	}
	if len(gotForm["signature"]) != 1 || gotForm["signature"][0] == "" {
		t.Fatal("form is missing a signature")
	}
	if got := fx.out.String(); got != `{"orderId":28,"status":"NEW"}`+"\n" {
		t.Fatalf("output = %q", got)
	}
}

func TestBuyRejectsNonDecimalQuantity(t *testing.T) {
	calls := 0
	fx := newFixture(t, countingHandler(&calls, http.StatusOK, `{}`), true)

	if err := fx.run("buy", "-s", "BNBUSDT", "-t", "MARKET", "-q", "lots"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if calls != 0 {
		t.Fatalf("server calls = %d, want 0", calls)
	}
	if !strings.Contains(fx.out.String(), "invalid qty") {
		t.Fatalf("output = %q, want qty diagnostic", fx.out.String())
	}
}

func TestAccountWithoutCredentialsPrintsDiagnostic(t *testing.T) {
	calls := 0
	fx := newFixture(t, countingHandler(&calls, http.StatusOK, `{}`), false)

	if err := fx.run("account"); err != nil {
		t.Fatalf("run() error = %v, want nil for printed diagnostic", err)
	}
	if calls != 0 {
		t.Fatalf("server calls = %d, want 0", calls)
	}
	out := fx.out.String()
	if !strings.Contains(out, "BINANCE_API_KEY") || !strings.Contains(out, "BINANCE_API_SECRET") {
		t.Fatalf("output = %q, want env var names", out)
	}
}

func TestFuturesAccountNamesFuturesEnvVars(t *testing.T) {
	calls := 0
	fx := newFixture(t, countingHandler(&calls, http.StatusOK, `{}`), false)

	if err := fx.run("um_account"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if !strings.Contains(fx.out.String(), "BINANCE_FUTURES_API_KEY") {
		t.Fatalf("output = %q, want futures env var name", fx.out.String())
	}
}

func TestVenueRouting(t *testing.T) {
	var paths []string
	fx := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_, _ = io.WriteString(w, `{"serverTime":1}`)
	}), false)

	for _, cmd := range []string{"time", "um_time", "cm_time"} {
		if err := fx.run(cmd); err != nil {
			t.Fatalf("run(%q) error = %v", cmd, err)
		}
	}
	want := []string{"/api/v3/time", "/fapi/v1/time", "/dapi/v1/time"}
	if len(paths) != len(want) {
		t.Fatalf("paths = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Fatalf("paths[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestRemoteErrorBodyIsTheResult(t *testing.T) {
	body := `{"code":-1121,"msg":"Invalid symbol."}`
	fx := newFixture(t, countingHandler(new(int), http.StatusBadRequest, body), false)

	if err := fx.run("ticker", "-s", "NOPE"); err != nil {
		t.Fatalf("run() error = %v, want nil for printed rejection", err)
	}
	if got := fx.out.String(); got != body+"\n" {
		t.Fatalf("output = %q, want remote error body", got)
	}
}

func TestUnknownCommandFailsDispatch(t *testing.T) {
	fx := newFixture(t, http.NotFoundHandler(), false)

	if err := fx.run("moon"); err == nil {
		t.Fatal("run() error = nil, want dispatch failure for unknown command")
	}
}

func TestMissingPositionalFailsDispatch(t *testing.T) {
	calls := 0
	fx := newFixture(t, countingHandler(&calls, http.StatusOK, `{}`), false)

	if err := fx.run("order_book"); err == nil {
		t.Fatal("run() error = nil, want missing argument failure")
	}
	if calls != 0 {
		t.Fatalf("server calls = %d, want 0", calls)
	}
}

func TestMissingPositionalBeatsCredentialCheck(t *testing.T) {
	calls := 0
	fx := newFixture(t, countingHandler(&calls, http.StatusOK, `{}`), false)

	for _, cmd := range []string{"hist_trades", "get_order", "cancel_order", "cancel_all"} {
		if err := fx.run(cmd); err == nil {
			t.Fatalf("run(%q) error = nil, want missing argument failure", cmd)
		}
	}
	if calls != 0 {
		t.Fatalf("server calls = %d, want 0", calls)
	}
	if out := fx.out.String(); out != "" {
		t.Fatalf("output = %q, want no credential diagnostic for a usage failure", out)
	}
}

func TestUnknownFlagFailsDispatch(t *testing.T) {
	fx := newFixture(t, http.NotFoundHandler(), false)

	if err := fx.run("time", "--sideways"); err == nil {
		t.Fatal("run() error = nil, want unknown flag failure")
	}
}

func TestGetOrderRequiresAnIdentifier(t *testing.T) {
	calls := 0
	fx := newFixture(t, countingHandler(&calls, http.StatusOK, `{}`), true)

	if err := fx.run("get_order", "BNBUSDT"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if calls != 0 {
		t.Fatalf("server calls = %d, want 0", calls)
	}
	if !strings.Contains(fx.out.String(), "orderId or origClientOrderId") {
		t.Fatalf("output = %q, want identifier diagnostic", fx.out.String())
	}
}

func TestCancelAllHitsVenueSpecificPath(t *testing.T) {
	var gotMethod, gotPath string
	fx := newFixture(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		_, _ = io.WriteString(w, `[]`)
	}), true)

	if err := fx.run("um_cancel_all", "BTCUSDT"); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/fapi/v1/allOpenOrders" {
		t.Fatalf("request = %s %s, want DELETE /fapi/v1/allOpenOrders", gotMethod, gotPath)
	}
}
