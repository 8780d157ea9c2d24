// Command devtool renders a reactor dependency graph as ASCII tables,
// for poking at the engine's introspection surface (spec §6) from a
// terminal instead of from inside an embedding application.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/reactorkit/reactorkit/reactor"
	"github.com/urfave/cli/v3"
)

const widthKey = "width"

func main() {
	cmd := &cli.Command{
		Name:  "devtool",
		Usage: "Inspect a reactor demo dependency graph",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  widthKey,
				Usage: "Number of source atoms to wire into the demo graph",
				Value: 3,
			},
		},
		Commands: []*cli.Command{
			{Name: "deps", Usage: "Render the dependency tree of the demo's root computed value", Action: runDeps},
			{Name: "observers", Usage: "Render the observer tree of the demo's first source atom", Action: runObservers},
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// buildDemoGraph wires `width` source atoms into two computed values and
// one reaction, mirroring the shape cmd/benchmark builds but small enough
// to print.
func buildDemoGraph(width int) (atoms []*reactor.Atom, sum *reactor.Computed[int], r *reactor.Reaction) {
	reactor.ResetGlobalState()
	var values []*reactor.ObservableValue[int]
	for i := 0; i < width; i++ {
		v := reactor.NewObservableValue(fmt.Sprintf("source_%d", i), i, nil, nil)
		values = append(values, v)
		atoms = append(atoms, v.Atom())
	}

	doubled := reactor.NewComputed("doubled", func() int {
		total := 0
		for _, v := range values {
			total += v.Get()
		}
		return total * 2
	}, nil)

	sum = reactor.NewComputed("sum_plus_one", func() int {
		v, _ := doubled.Get()
		return v + 1
	}, nil)

	r = reactor.Autorun("printer", func() {
		_, _ = sum.Get()
	})
	return atoms, sum, r
}

func runDeps(ctx context.Context, cmd *cli.Command) error {
	start := time.Now()
	_, sum, _ := buildDemoGraph(int(cmd.Uint(widthKey)))
	tree := reactor.GetDependencyTree(sum)

	tbl := tablewriter.NewWriter(os.Stdout)
	tbl.SetHeader([]string{"node", "kind", "depth"})
	renderDependencyTree(tbl, tree, 0)
	tbl.Render()

	log.Printf("dependency tree rendered in %s", humanize.Time(start))
	return nil
}

func runObservers(ctx context.Context, cmd *cli.Command) error {
	start := time.Now()
	atoms, _, _ := buildDemoGraph(int(cmd.Uint(widthKey)))

	tbl := tablewriter.NewWriter(os.Stdout)
	tbl.SetHeader([]string{"node", "kind", "depth"})
	if len(atoms) > 0 {
		tree := reactor.GetObserverTree(atoms[0])
		renderDependencyTree(tbl, tree, 0)
	}
	tbl.Render()

	log.Printf("observed %s nodes in %s", humanize.Comma(int64(len(atoms))), humanize.Time(start))
	return nil
}

func renderDependencyTree(tbl *tablewriter.Table, node *reactor.DependencyNode, depth int) {
	if node == nil {
		return
	}
	tbl.Append([]string{fmt.Sprintf("%*s%s", depth*2, "", node.Name), kindLabel(node.Kind), humanize.Comma(int64(depth))})
	for _, child := range node.Children {
		renderDependencyTree(tbl, child, depth+1)
	}
}

func kindLabel(k reactor.DependencyKind) string {
	switch k {
	case reactor.KindAtomNode:
		return "atom"
	case reactor.KindComputedNode:
		return "computed"
	case reactor.KindReactionNode:
		return "reaction"
	default:
		return "unknown"
	}
}
