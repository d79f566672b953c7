// Package loader parses the plan text format into a domain.Plan.
//
// The format is line oriented:
//
//	T D
//	<name> <cost> <profit>     (T lines)
//	<from> -> <to>             (D lines)
//
// The first line holds the technology and dependency counts. Technology
// lines carry cost before profit. Dependency lines use a literal "->"
// separator and mean "from requires to".
package loader

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"techsel/pkg/apperror"
	"techsel/pkg/domain"
)

// Parse reads a plan from r. The returned plan preserves declaration order
// for both technologies and dependencies.
func Parse(r io.Reader) (*domain.Plan, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	line, ok := nextLine(sc)
	if !ok {
		return nil, apperror.NewWarning(apperror.CodeEmptyPlan, "plan input is empty")
	}

	techCount, depCount, err := parseHeader(line)
	if err != nil {
		return nil, err
	}

	plan := &domain.Plan{
		Technologies: make([]domain.Technology, 0, techCount),
		Dependencies: make([]domain.Dependency, 0, depCount),
	}

	for i := 0; i < techCount; i++ {
		line, ok := nextLine(sc)
		if !ok {
			return nil, malformed(fmt.Sprintf("expected %d technology lines, got %d", techCount, i))
		}
		tech, err := parseTechnology(line, i)
		if err != nil {
			return nil, err
		}
		plan.Technologies = append(plan.Technologies, tech)
	}

	for i := 0; i < depCount; i++ {
		line, ok := nextLine(sc)
		if !ok {
			return nil, malformed(fmt.Sprintf("expected %d dependency lines, got %d", depCount, i))
		}
		dep, err := parseDependency(line, i)
		if err != nil {
			return nil, err
		}
		plan.Dependencies = append(plan.Dependencies, dep)
	}

	if err := sc.Err(); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeMalformedPlan, "failed to read plan input")
	}

	return plan, nil
}

// nextLine advances to the next non-blank line.
func nextLine(sc *bufio.Scanner) (string, bool) {
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line != "" {
			return line, true
		}
	}
	return "", false
}

func parseHeader(line string) (int, int, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return 0, 0, malformed(fmt.Sprintf("header must be two integers, got %q", line))
	}

	techCount, err := strconv.Atoi(fields[0])
	if err != nil || techCount < 0 {
		return 0, 0, malformed(fmt.Sprintf("invalid technology count %q", fields[0]))
	}

	depCount, err := strconv.Atoi(fields[1])
	if err != nil || depCount < 0 {
		return 0, 0, malformed(fmt.Sprintf("invalid dependency count %q", fields[1]))
	}

	return techCount, depCount, nil
}

func parseTechnology(line string, index int) (domain.Technology, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return domain.Technology{}, malformed(
			fmt.Sprintf("technology line %d must be 'name cost profit', got %q", index+1, line))
	}

	cost, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return domain.Technology{}, malformed(
			fmt.Sprintf("technology line %d: invalid cost %q", index+1, fields[1]))
	}

	profit, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return domain.Technology{}, malformed(
			fmt.Sprintf("technology line %d: invalid profit %q", index+1, fields[2]))
	}

	return domain.Technology{
		Name:   fields[0],
		Profit: profit,
		Cost:   cost,
	}, nil
}

func parseDependency(line string, index int) (domain.Dependency, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 || fields[1] != "->" {
		return domain.Dependency{}, malformed(
			fmt.Sprintf("dependency line %d must be 'from -> to', got %q", index+1, line))
	}

	return domain.Dependency{
		From: fields[0],
		To:   fields[2],
	}, nil
}

func malformed(msg string) *apperror.Error {
	return apperror.New(apperror.CodeMalformedPlan, msg)
}
