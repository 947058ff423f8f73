package tui

import (
	"ScalpSignal/internal/domain/models"

	"github.com/charmbracelet/lipgloss"
)

var (
	bullStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#26a641"))
	bearStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#e05c5c"))
	wickStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	lineStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#58a6ff"))
	predictionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#d2a8ff"))
	buyStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3fb950"))
	sellStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f85149"))
	axisStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555"))
	headerStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#aaaaaa"))
	footerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555"))
	panelStyle      = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#30363d")).Padding(0, 1)
)

var logStyles = map[models.LogCategory]lipgloss.Style{
	models.LogInfo:       lipgloss.NewStyle().Foreground(lipgloss.Color("#c9d1d9")),
	models.LogBuy:        buyStyle,
	models.LogSell:       sellStyle,
	models.LogError:      lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")),
	models.LogWarning:    lipgloss.NewStyle().Foreground(lipgloss.Color("#f59e0b")),
	models.LogPrediction: predictionStyle,
}

var latencyStyles = map[string]lipgloss.Style{
	models.LatencyIdeal:  lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e")),
	models.LatencyFast:   lipgloss.NewStyle().Foreground(lipgloss.Color("#84cc16")),
	models.LatencyNormal: lipgloss.NewStyle().Foreground(lipgloss.Color("#f97316")),
	models.LatencySlow:   lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")),
	models.LatencyError:  lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444")),
}
