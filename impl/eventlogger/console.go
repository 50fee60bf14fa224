package eventlogger

import (
	"github.com/pterm/pterm"
	"io"
	"oral-messages-simulation/impl/messages"
	"sort"
	"strings"
)

// Console narrates a run for a human reader. Lines are indented by the
// recursion depth so the OM(m) tree stays readable.
type Console struct {
	info    *pterm.PrefixPrinter
	warning *pterm.PrefixPrinter
	success *pterm.PrefixPrinter
	failure *pterm.PrefixPrinter
	section *pterm.SectionPrinter

	verbose bool
}

// NewConsole creates a narrator writing to w. Without verbose, individual
// sends and receives are skipped and only commands and decisions are shown.
func NewConsole(w io.Writer, verbose bool) *Console {
	return &Console{
		info:    pterm.Info.WithWriter(w),
		warning: pterm.Warning.WithWriter(w),
		success: pterm.Success.WithWriter(w),
		failure: pterm.Error.WithWriter(w),
		section: pterm.DefaultSection.WithWriter(w),
		verbose: verbose,
	}
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}

func colorOrder(order messages.Order) string {
	if order.Attack {
		return pterm.LightRed(order.String())
	}
	return pterm.LightCyan(order.String())
}

func (c *Console) TrialStarted(trial int) {
	c.section.Printfln("Trial %d", trial)
}

func (c *Console) TrialFinished(trial int, successful bool, reason string) {
	if successful {
		c.success.Printfln("trial %d: loyal generals agree", trial)
		return
	}
	c.failure.Printfln("trial %d: consensus not reached (%s)", trial, reason)
}

func (c *Console) OnTraitor(general int) {
	c.warning.Printfln("General #%d is a traitor", general)
}

func (c *Console) OnCommand(commander int, order messages.Order, rounds int, depth int) {
	c.info.Printfln(
		"%sGeneral #%d acting as commander, sending %s, m: %d",
		indent(depth), commander, colorOrder(order), rounds)
}

func (c *Console) OnSend(commander int, lieutenant int, order messages.Order, depth int) {
	if !c.verbose {
		return
	}
	c.info.Printfln(
		"%s#%d -> #%d: %s", indent(depth+1), commander, lieutenant, colorOrder(order))
}

func (c *Console) OnReceive(lieutenant int, commander int, order messages.Order) {
	if !c.verbose {
		return
	}
	c.info.Printfln(
		"General #%d receiving order (%s) from commander #%d",
		lieutenant, colorOrder(order), commander)
}

func (c *Console) OnDecide(general int, attackVotes int, retreatVotes int, decision messages.Order) {
	c.info.Printfln(
		"General #%d orders: %d attack, %d retreat, decision: %s",
		general, attackVotes, retreatVotes, colorOrder(decision))
}

// Decisions lists the final order of every general, by id.
func (c *Console) Decisions(decisions map[int]messages.Order) {
	ids := make([]int, 0, len(decisions))
	for id := range decisions {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		c.info.Printfln("General #%d final decision: %s", id, colorOrder(decisions[id]))
	}
}
