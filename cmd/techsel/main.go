// Package main is the techsel command line planner.
//
// techsel reads a plan in the text format (header "T D", T technology lines
// "name cost profit", D dependency lines "from -> to") from a file given as
// the first argument or from stdin, computes the most profitable closed
// subset of technologies, and prints the canonical result:
//
//	#version 1
//	<revenue> <chosen...>
//
// Usage:
//
//	techsel plan.txt
//	techsel < plan.txt
package main

import (
	"fmt"
	"io"
	"os"

	"techsel/internal/flownet"
	"techsel/internal/loader"
	"techsel/internal/presenter"
	"techsel/pkg/domain"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "techsel:", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	input := stdin
	if len(args) > 0 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		input = f
	}

	plan, err := loader.Parse(input)
	if err != nil {
		return err
	}

	sel, err := solve(plan)
	if err != nil {
		return err
	}

	return presenter.WriteCLI(stdout, sel)
}

// solve builds the closure network and runs the optimisation. An empty plan
// short-circuits to the zero selection: nothing to research, zero revenue.
func solve(plan *domain.Plan) (*domain.Selection, error) {
	if len(plan.Technologies) == 0 {
		return &domain.Selection{}, nil
	}

	nw := flownet.NewNetwork()
	for _, tech := range plan.Technologies {
		if err := nw.AddTechnology(tech.Name, tech.Profit, tech.Cost); err != nil {
			return nil, err
		}
	}
	for _, dep := range plan.Dependencies {
		if err := nw.AddDependency(dep.From, dep.To); err != nil {
			return nil, err
		}
	}

	return nw.Optimise(), nil
}
