package ui

import "github.com/charmbracelet/lipgloss"

var (
	cyanNeon   = lipgloss.Color("#00f3ff")
	purpleNeon = lipgloss.Color("#bc13fe")
	greenNeon  = lipgloss.Color("#0aff60")
	redNeon    = lipgloss.Color("#ff003c")
)

type styles struct {
	logBox   lipgloss.Style
	inputBox lipgloss.Style
	title    lipgloss.Style
	local    lipgloss.Style
	remote   lipgloss.Style
	status   lipgloss.Style
}

func newStyles() styles {
	box := lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	return styles{
		logBox:   box.BorderForeground(cyanNeon),
		inputBox: box.BorderForeground(purpleNeon),
		title:    lipgloss.NewStyle().Bold(true).Foreground(cyanNeon),
		local:    lipgloss.NewStyle().Bold(true).Foreground(greenNeon),
		remote:   lipgloss.NewStyle().Bold(true).Foreground(purpleNeon),
		status:   lipgloss.NewStyle().Foreground(redNeon),
	}
}
