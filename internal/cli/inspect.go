package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/cespare/prune/internal/instance"
)

// InspectOptions are the flags of the inspect command.
type InspectOptions struct {
	*RootOptions
	Kind string
}

// A Stat is one line of an instance summary.
type Stat struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Summary describes an instance.
type Summary struct {
	Kind  instance.Kind `json:"kind"`
	File  string        `json:"file"`
	Stats []Stat        `json:"stats"`
}

// NewInspectCommand returns the inspect command.
func NewInspectCommand(root *RootOptions) *cobra.Command {
	opts := &InspectOptions{RootOptions: root}
	cmd := &cobra.Command{
		Use:   "inspect --kind KIND FILE",
		Short: "Summarize an instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(opts, cmd.OutOrStdout(), args[0])
		},
	}
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "instance format (qap|tsp|jobshop|rcpsp|maxsat)")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}

func runInspect(opts *InspectOptions, w io.Writer, path string) error {
	inst, _, err := readInstance(opts.Kind, path)
	if err != nil {
		return err
	}
	sum := Summary{Kind: instance.Kind(opts.Kind), File: path, Stats: summarize(inst)}
	return opts.formatter(w).Success(sum, func(w io.Writer) error {
		return writeSummary(w, sum)
	})
}

// readInstance parses the file at path and also returns its contents.
func readInstance(kind, path string) (any, []byte, error) {
	k, err := instance.ParseKind(kind)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "bad --kind", err)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open instance", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to read instance", err)
	}
	inst, err := instance.Parse(k, bytes.NewReader(data))
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, fmt.Sprintf("failed to parse %s", path), err)
	}
	return inst, data, nil
}

func summarize(inst any) []Stat {
	switch inst := inst.(type) {
	case *instance.QAP:
		flow := 0
		for _, row := range inst.Weight {
			for _, w := range row {
				flow += w
			}
		}
		return []Stat{{"facilities", inst.N}, {"total flow", flow}}
	case *instance.TSP:
		lo, hi := 0, 0
		first := true
		for i, row := range inst.Distance {
			for j, d := range row {
				if i == j {
					continue
				}
				if first || d < lo {
					lo = d
				}
				if first || d > hi {
					hi = d
				}
				first = false
			}
		}
		return []Stat{{"cities", inst.N}, {"min distance", lo}, {"max distance", hi}}
	case *instance.JobShop:
		ops := 0
		load := make([]int, inst.Machines)
		bound := 0
		for _, job := range inst.Jobs {
			length := 0
			for _, op := range job {
				ops++
				load[op.Machine] += op.Duration
				length += op.Duration
			}
			bound = max(bound, length)
		}
		for _, l := range load {
			bound = max(bound, l)
		}
		return []Stat{
			{"jobs", len(inst.Jobs)},
			{"machines", inst.Machines},
			{"operations", ops},
			{"horizon", inst.Horizon()},
			{"lower bound", bound},
		}
	case *instance.RCPSP:
		arcs := 0
		for _, a := range inst.Activities {
			arcs += len(a.Successors)
		}
		stats := []Stat{
			{"activities", len(inst.Activities)},
			{"resources", len(inst.Capacity)},
			{"precedences", arcs},
			{"horizon", inst.Horizon()},
		}
		for r, c := range inst.Capacity {
			stats = append(stats, Stat{fmt.Sprintf("capacity %d", r+1), c})
		}
		return stats
	case *instance.CNF:
		lits, longest := 0, 0
		for _, c := range inst.Clauses {
			lits += len(c)
			longest = max(longest, len(c))
		}
		return []Stat{
			{"variables", inst.Vars},
			{"clauses", len(inst.Clauses)},
			{"literals", lits},
			{"longest", longest},
		}
	}
	return nil
}

func writeSummary(w io.Writer, sum Summary) error {
	p := message.NewPrinter(language.English)
	if _, err := p.Fprintf(w, "%s instance %s\n", sum.Kind, sum.File); err != nil {
		return err
	}
	for _, s := range sum.Stats {
		if _, err := p.Fprintf(w, "  %-12s %8d\n", s.Name, s.Value); err != nil {
			return err
		}
	}
	return nil
}
