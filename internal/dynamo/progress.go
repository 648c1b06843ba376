package dynamo

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// DefaultPrintStep is the number of steps between progress reports.
const DefaultPrintStep = 10000

// Progress reports percentage and estimated time remaining of a loop with a
// known number of steps. A nil *Progress is valid and reports nothing.
type Progress struct {
	Name      string
	Total     int
	PrintStep int

	logger *log.Logger
	start  time.Time
	now    func() time.Time
}

// NewProgress creates a tracker that logs through logger every printStep
// steps. A nil logger uses log.Default().
func NewProgress(name string, total, printStep int, logger *log.Logger) *Progress {
	if logger == nil {
		logger = log.Default()
	}
	if printStep <= 0 {
		printStep = DefaultPrintStep
	}
	return &Progress{
		Name:      name,
		Total:     total,
		PrintStep: printStep,
		logger:    logger,
		start:     time.Now(),
		now:       time.Now,
	}
}

// Update reports step i. Reports are emitted every PrintStep steps and once
// when i reaches Total.
func (p *Progress) Update(i int) {
	if p == nil || p.Total <= 0 {
		return
	}
	if i >= p.Total {
		p.Done()
		return
	}
	if i%p.PrintStep != 0 {
		return
	}

	elapsed := p.Elapsed()
	pct := float64(i) / float64(p.Total) * 100
	if i == 0 {
		p.logger.Info(p.Name, "progress", formatPct(pct))
		return
	}
	remain := time.Duration(float64(elapsed) / float64(i) * float64(p.Total-i))
	p.logger.Info(p.Name, "progress", formatPct(pct), "eta", remain.Round(time.Second))
}

// Done reports completion with the total elapsed time.
func (p *Progress) Done() {
	if p == nil {
		return
	}
	p.logger.Info(p.Name, "progress", formatPct(100), "elapsed", p.Elapsed().Round(time.Millisecond))
}

// Elapsed returns the time since the tracker was created.
func (p *Progress) Elapsed() time.Duration {
	if p == nil {
		return 0
	}
	return p.now().Sub(p.start)
}

func formatPct(pct float64) string {
	return fmt.Sprintf("%.2f%%", pct)
}
