package conflict

import (
	"fmt"

	"agentsync/internal/model"
	"agentsync/internal/vcs"
)

// Guidance is an ordered list of human-readable steps for a strategy the
// resolver does not execute itself. Pure data, no side effects.
type Guidance struct {
	Strategy     model.ResolutionStrategy
	Steps        []string
	MarkerTokens []string
}

func GuidanceFor(strategy model.ResolutionStrategy, path string) Guidance {
	g := Guidance{
		Strategy:     strategy,
		MarkerTokens: []string{vcs.MarkerStart, vcs.MarkerDivider, vcs.MarkerEnd},
	}

	switch strategy {
	case model.StrategyManual:
		g.Steps = []string{
			fmt.Sprintf("open %s in your editor", path),
			fmt.Sprintf("locate the %q / %q / %q markers", vcs.MarkerStart, vcs.MarkerDivider, vcs.MarkerEnd),
			"edit the region into the content you want to keep, removing all marker lines",
			fmt.Sprintf("run: agentsync resolve %s --strategy MANUAL to verify and record the resolution", path),
			"run: agentsync sync to commit and publish",
		}
	case model.StrategyMerge:
		g.Steps = []string{
			"no automatic content merge is available",
			fmt.Sprintf("combine the two sides of %s by hand, the same way as a MANUAL resolution", path),
			fmt.Sprintf("run: agentsync resolve %s --strategy MANUAL once the markers are gone", path),
		}
	case model.StrategyRebase:
		g.Steps = []string{
			"rebase is not performed by this tool",
			"use your git client to rebase local commits onto the remote branch",
			"re-run: agentsync sync afterwards",
		}
	case model.StrategyKeepLocal, model.StrategyKeepRemote:
		g.Steps = []string{
			fmt.Sprintf("run: agentsync resolve %s --strategy %s", path, strategy),
		}
	}

	return g
}
