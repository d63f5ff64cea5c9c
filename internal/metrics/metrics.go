// Package metrics exposes the prometheus instrumentation for the bot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

//nolint:gochecknoglobals
var (
	// Commands counts slash command invocations by command name.
	Commands = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "xban_commands_total", Help: "Total slash commands handled"},
		[]string{"command"})

	// CrossBans counts cross-ban executions, successful or not.
	CrossBans = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "xban_crossban_total", Help: "Total cross-bans executed"})

	// CrossBanFailures counts individual guild bans that failed, local or
	// remote.
	CrossBanFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "xban_crossban_failures_total", Help: "Total per guild ban failures"})
)

//nolint:gochecknoinits
func init() {
	for _, metric := range []prometheus.Collector{Commands, CrossBans, CrossBanFailures} {
		_ = prometheus.Register(metric)
	}
}
