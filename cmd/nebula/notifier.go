package main

import (
	"io"

	"github.com/fatih/color"
)

// colorNotifier prints client notifications to the terminal.
type colorNotifier struct {
	w    io.Writer
	err  *color.Color
	warn *color.Color
}

func newColorNotifier(w io.Writer) *colorNotifier {
	return &colorNotifier{
		w:    w,
		err:  color.New(color.FgRed, color.Bold),
		warn: color.New(color.FgYellow),
	}
}

func (n *colorNotifier) Error(msg string) {
	_, _ = n.err.Fprintln(n.w, "✖ "+msg)
}

func (n *colorNotifier) Warning(msg string) {
	_, _ = n.warn.Fprintln(n.w, "! "+msg)
}
