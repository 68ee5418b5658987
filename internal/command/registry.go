package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"binance-cli/internal/exchange/binance"
)

// Version is printed by the --version flag.
const Version = "1.2.0"

// Params wires one client per venue into the application. All three are
// required; a venue without credentials still serves its public commands.
type Params struct {
	Printer   *Printer
	Spot      *binance.Client
	UMFutures *binance.Client
	CMFutures *binance.Client
}

// NewApp assembles the full command table: the spot commands unprefixed,
// USD-margined futures under um_, coin-margined futures under cm_.
func NewApp(params Params) *cli.App {
	var cmds []*cli.Command
	for _, client := range []*binance.Client{params.Spot, params.UMFutures, params.CMFutures} {
		set := &venueSet{client: client, printer: params.Printer}
		cmds = append(cmds, set.commands()...)
	}
	mustBeUnique(cmds)

	app := &cli.App{
		Name:            "binance-cli",
		Usage:           "command line interface for the Binance spot and futures APIs",
		Version:         Version,
		Commands:        cmds,
		HideHelpCommand: true,
		Action: func(cCtx *cli.Context) error {
			if cCtx.NArg() > 0 {
				return fmt.Errorf("unknown command %q", cCtx.Args().First())
			}
			return cli.ShowAppHelp(cCtx)
		},
	}
	return app
}

// mustBeUnique catches name or alias collisions across venues at startup.
// The venue prefixes make collisions impossible by construction, so a clash
// here means a table edit went wrong.
func mustBeUnique(cmds []*cli.Command) {
	seen := make(map[string]string)
	for _, cmd := range cmds {
		for _, name := range append([]string{cmd.Name}, cmd.Aliases...) {
			if prev, ok := seen[name]; ok {
				panic(fmt.Sprintf("command %q collides with %q", name, prev))
			}
			seen[name] = cmd.Name
		}
	}
}
