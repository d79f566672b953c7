// Package presenter renders optimisation results.
//
// The canonical text form is a single line: the revenue, then each chosen
// technology prefixed by one space, then a newline. The CLI prepends a
// version banner so consumers can detect format changes.
package presenter

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"techsel/pkg/domain"
)

// Banner is printed by the CLI before the canonical result line.
const Banner = "#version 1"

// Render returns the canonical text form of a selection.
func Render(sel *domain.Selection) string {
	var sb strings.Builder
	sb.WriteString(strconv.FormatInt(sel.Revenue, 10))
	for _, name := range sel.Chosen {
		sb.WriteByte(' ')
		sb.WriteString(name)
	}
	sb.WriteByte('\n')
	return sb.String()
}

// Write renders the selection to w in canonical form.
func Write(w io.Writer, sel *domain.Selection) error {
	_, err := io.WriteString(w, Render(sel))
	return err
}

// WriteCLI renders the banner line followed by the canonical result.
func WriteCLI(w io.Writer, sel *domain.Selection) error {
	if _, err := fmt.Fprintln(w, Banner); err != nil {
		return err
	}
	return Write(w, sel)
}

// SolutionView is the JSON shape returned by the HTTP API.
type SolutionView struct {
	ID              string   `json:"id,omitempty"`
	Revenue         int64    `json:"revenue"`
	Chosen          []string `json:"chosen"`
	MaxFlow         int64    `json:"max_flow"`
	TechnologyCount int      `json:"technology_count"`
	DependencyCount int      `json:"dependency_count"`
	SolveDurationMs float64  `json:"solve_duration_ms"`
	CreatedAt       string   `json:"created_at,omitempty"`
	Cached          bool     `json:"cached"`
	Canonical       string   `json:"canonical"`
}

// FromSolution converts a stored solution into the API view.
func FromSolution(sol *domain.Solution) *SolutionView {
	view := &SolutionView{
		ID:              sol.ID,
		Revenue:         sol.Revenue,
		Chosen:          sol.Chosen,
		MaxFlow:         sol.MaxFlow,
		TechnologyCount: sol.TechnologyCount,
		DependencyCount: sol.DependencyCount,
		SolveDurationMs: float64(sol.SolveDuration.Microseconds()) / 1000.0,
		Canonical:       Render(&domain.Selection{Revenue: sol.Revenue, Chosen: sol.Chosen}),
	}
	if view.Chosen == nil {
		view.Chosen = []string{}
	}
	if !sol.CreatedAt.IsZero() {
		view.CreatedAt = sol.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return view
}
