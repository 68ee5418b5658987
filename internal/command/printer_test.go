package command

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"binance-cli/internal/exchange/binance"
)

func TestPrintCompactsJSONPayloads(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Print(json.RawMessage("{\n  \"serverTime\": 1499827319559\n}"))

	if got := buf.String(); got != `{"serverTime":1499827319559}`+"\n" {
		t.Fatalf("Print() wrote %q", got)
	}
}

func TestPrintStringsVerbatim(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.Print("open")

	if got := buf.String(); got != "open\n" {
		t.Fatalf("Print() wrote %q", got)
	}
}

func TestPrintErrorUsesRemoteBodyWhenPresent(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintError(binance.APIError{
		Status: 400,
		Code:   -1121,
		Msg:    "Invalid symbol.",
		Body:   []byte(`{"code":-1121,"msg":"Invalid symbol."}`),
	})

	if got := buf.String(); got != `{"code":-1121,"msg":"Invalid symbol."}`+"\n" {
		t.Fatalf("PrintError() wrote %q", got)
	}
}

func TestPrintErrorFallsBackToErrorString(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintError(errors.New("dial tcp: connection refused"))

	if got := buf.String(); got != "dial tcp: connection refused\n" {
		t.Fatalf("PrintError() wrote %q", got)
	}
}
