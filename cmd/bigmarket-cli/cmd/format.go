package cmd

import (
	"fmt"
	"io"

	"github.com/cockroachdb/apd/v3"
	"github.com/fatih/color"

	"github.com/radicleart/bigmarket-dao/market"
)

var (
	okColor      = color.New(color.FgGreen).SprintFunc()
	expectColor  = color.New(color.FgYellow).SprintFunc()
	failColor    = color.New(color.FgRed, color.Bold).SprintFunc()
	headingColor = color.New(color.FgCyan, color.Bold).SprintFunc()
)

// FormatAmount renders a base-unit amount with the token's decimals, e.g. 150000000
// with 8 decimals is "1.50000000".
func FormatAmount(amount uint64, decimals uint32) string {
	d := apd.NewWithBigInt(new(apd.BigInt).SetUint64(amount), -int32(decimals))
	return d.Text('f')
}

func printStep(w io.Writer, i int, r StepResult, decimals uint32) {
	label := fmt.Sprintf("%3d h=%-6d %-8s %-10s m=%d", i, r.Height, r.Step.Op, r.Step.Caller, r.Step.Market)
	switch {
	case r.Err == nil && r.Step.Op == "claim":
		fmt.Fprintf(w, "%s %s payout %s\n", okColor("ok  "), label, FormatAmount(r.Payout, decimals))
	case r.Err == nil:
		fmt.Fprintf(w, "%s %s\n", okColor("ok  "), label)
	default:
		code, _ := market.Code(r.Err)
		status := failColor("fail")
		if code != 0 && code == r.Step.ExpectError {
			status = expectColor("err ")
		}
		fmt.Fprintf(w, "%s %s [%d] %v\n", status, label, code, r.Err)
	}
}
