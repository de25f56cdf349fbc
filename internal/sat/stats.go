package sat

import (
	"fmt"
	"time"
)

func (s *Solver) printSeparator() {
	fmt.Fprintln(s.output, "c ---------------------------------------------------------------------------")
}

func (s *Solver) printSearchHeader() {
	fmt.Fprintln(s.output, "c            time      conflicts       restarts        learnts          stage")
}

func (s *Solver) printSearchStats() {
	fmt.Fprintf(
		s.output,
		"c %14.3fs %14d %14d %14d %14d\n",
		time.Since(s.startTime).Seconds(),
		s.TotalConflicts,
		s.TotalRestarts,
		len(s.learnts),
		s.stageNum(),
	)
}

func (s *Solver) stageNum() int {
	if s.stage == nil {
		return 0
	}
	return s.stage.stage
}
