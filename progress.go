package main

import (
	"github.com/banachtech/hedger/hedging"
	"github.com/schollz/progressbar/v3"
)

// progress draws a console bar advancing one tick per simulated step.
type progress struct {
	bar *progressbar.ProgressBar
}

func newProgress(steps int) *progress {
	bar := progressbar.NewOptions(
		steps,
		progressbar.OptionSetDescription("hedging"),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(20),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
	return &progress{bar: bar}
}

func (p *progress) OnStep(ev hedging.StepEvent) {
	if ev.Phase == hedging.Done {
		p.bar.Finish()
		return
	}
	p.bar.Add(1)
}
