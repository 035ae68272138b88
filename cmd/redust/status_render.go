package main

import (
	"fmt"
	"io"
	"strings"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

var statusStyles = map[statusKind]struct{ label, color string }{
	statusInfo:  {"INFO", "\x1b[34m"},
	statusOK:    {"OK", "\x1b[32m"},
	statusWarn:  {"WARN", "\x1b[33m"},
	statusError: {"ERROR", "\x1b[31m"},
}

const (
	ansiReset        = "\x1b[0m"
	statusLabelWidth = 20
	statusIndent     = "  "
)

// statusSection collects "label: [KIND] message" lines under a heading.
type statusSection struct {
	title    string
	colorize bool
	lines    []string
}

func newStatusSection(title string, out io.Writer) *statusSection {
	return &statusSection{title: strings.TrimSpace(title), colorize: shouldColorize(out)}
}

func (s *statusSection) add(label string, kind statusKind, message string) {
	s.lines = append(s.lines, renderStatusLine(label, kind, message, s.colorize))
}

func (s *statusSection) addf(label string, kind statusKind, format string, args ...any) {
	s.add(label, kind, fmt.Sprintf(format, args...))
}

func (s *statusSection) write(out io.Writer) {
	heading := fmt.Sprintf("== %s ==", s.title)
	rule := strings.Repeat("-", len(heading))
	if s.colorize {
		color := statusStyles[statusInfo].color
		heading, rule = color+heading+ansiReset, color+rule+ansiReset
	}
	fmt.Fprintln(out, heading)
	fmt.Fprintln(out, rule)
	for _, line := range s.lines {
		fmt.Fprintln(out, line)
	}
	fmt.Fprintln(out)
}

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	style := statusStyles[kind]
	text := "[" + style.label + "]"
	if message != "" {
		text += " " + message
	}
	line := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", text)
	if colorize {
		return style.color + line + ansiReset
	}
	return line
}

func shouldColorize(w io.Writer) bool {
	return isTerminal(w)
}
