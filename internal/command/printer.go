package command

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"binance-cli/internal/exchange/binance"
)

// Printer renders exactly one result or error per command invocation.
// Successful payloads come out as a single line of JSON; errors print the
// venue's own error body when one exists, so scripts can parse rejections the
// same way they parse results.
type Printer struct {
	out io.Writer
}

func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

func (p *Printer) Print(v any) {
	switch t := v.(type) {
	case json.RawMessage:
		p.printJSON(t)
	case []byte:
		p.printJSON(t)
	case string:
		fmt.Fprintln(p.out, t)
	default:
		b, err := json.Marshal(v)
		if err != nil {
			fmt.Fprintln(p.out, v)
			return
		}
		p.printJSON(b)
	}
}

func (p *Printer) PrintError(err error) {
	if apiErr, ok := binance.AsAPIError(err); ok && len(apiErr.Body) > 0 {
		p.printJSON(apiErr.Body)
		return
	}
	fmt.Fprintln(p.out, err)
}

func (p *Printer) printJSON(b []byte) {
	var buf bytes.Buffer
	if err := json.Compact(&buf, b); err != nil {
		fmt.Fprintln(p.out, strings.TrimSpace(string(b)))
		return
	}
	buf.WriteByte('\n')
	_, _ = p.out.Write(buf.Bytes())
}
