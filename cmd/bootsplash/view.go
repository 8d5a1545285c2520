package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette.
var (
	colorGreen = lipgloss.Color("#4ade80")
	colorRed   = lipgloss.Color("#f87171")
	colorCyan  = lipgloss.Color("#22d3ee")
	colorWhite = lipgloss.Color("#e5e7eb")
	colorGray  = lipgloss.Color("#6b7280")
	colorDim   = lipgloss.Color("#374151")
)

func title(s string) string {
	return lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Render(s)
}

func kv(k, v string, vc lipgloss.Color) string {
	return lipgloss.NewStyle().Foreground(colorGray).Width(18).Render(k) +
		lipgloss.NewStyle().Foreground(vc).Render(v)
}

func kvf(k string, v interface{}) string {
	return kv(k, fmt.Sprint(v), colorWhite)
}

func divider(w int) string {
	return lipgloss.NewStyle().Foreground(colorDim).Render(strings.Repeat("─", w))
}

func status(ok bool, s string) string {
	if ok {
		return lipgloss.NewStyle().Foreground(colorGreen).Render("✓ " + s)
	}
	return lipgloss.NewStyle().Foreground(colorRed).Render("✗ " + s)
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
