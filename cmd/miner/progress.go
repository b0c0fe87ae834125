package main

import (
	"io"

	"github.com/schollz/progressbar/v3"
)

// commitBar draws one bar per mined repository.
type commitBar struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

func newCommitBar(out io.Writer) *commitBar {
	return &commitBar{out: out}
}

func (b *commitBar) Begin(label string, total int) {
	if total <= 0 {
		b.bar = nil
		return
	}
	b.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(b.out),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func (b *commitBar) Tick() {
	if b.bar != nil {
		_ = b.bar.Add(1)
	}
}

func (b *commitBar) Done() {
	if b.bar == nil {
		return
	}
	_ = b.bar.Finish()
	b.bar = nil
}
