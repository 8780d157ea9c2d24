package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/reactorkit/reactorkit/reactor"
)

var (
	ww    = []int{1, 10, 100, 1_000}
	hh    = []int{1, 10, 100, 1_000}
	iters = 100
)

func main() {
	flag.Parse()

	log.Printf("warming up")
	benchmarkPropagation(true)
}

// benchmarkPropagation builds, for every (width, height) pair, `width`
// chains of `height` computed values stacked on one shared source atom,
// each chain terminated by a reaction, then times how long a single write
// to the source atom takes to settle across the whole graph. Shaped after
// the teacher's benchmarkAlien/benchmarkRocket nested ww/hh loops.
func benchmarkPropagation(shouldRender bool) {
	tbl := table.NewWriter()
	tbl.SetTitle("reactor propagation")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})

	for _, w := range ww {
		for _, h := range hh {
			tach := tachymeter.New(&tachymeter.Config{Size: iters})

			reactor.ResetGlobalState()
			src := reactor.NewObservableValue("src", 1, nil, nil)

			var reactions []*reactor.Reaction
			for i := 0; i < w; i++ {
				var last func() int = src.Get
				for j := 0; j < h; j++ {
					prev := last
					c := reactor.NewComputed(fmt.Sprintf("c%d_%d", i, j), func() int {
						return prev() + 1
					}, nil)
					last = func() int {
						v, err := c.Get()
						if err != nil {
							log.Panic(err)
						}
						return v
					}
				}
				final := last
				reactions = append(reactions, reactor.Autorun(fmt.Sprintf("leaf%d", i), func() {
					final()
				}))
			}

			for i := 0; i < iters; i++ {
				start := time.Now()
				reactor.AllowStateChanges(true, func() any {
					cur := src.Get()
					if _, err := src.Set(cur + 1); err != nil {
						log.Panic(err)
					}
					return nil
				})
				tach.AddTime(time.Since(start))
			}

			for _, r := range reactions {
				r.Dispose()
			}

			calc := tach.Calc()
			tbl.AppendRows([]table.Row{
				{
					fmt.Sprintf("propagate: %d * %d", w, h),
					calc.Time.Avg,
					calc.Time.Min,
					calc.Time.P75,
					calc.Time.P99,
					calc.Time.Max,
				},
			})
		}
	}

	if shouldRender {
		tbl.Render()
	}
}
