package tui

import (
	"context"
	"fmt"
	"strings"

	"ScalpSignal/internal/domain/models"

	tea "github.com/charmbracelet/bubbletea"
)

const maxLogLines = 200

// Controller is the session surface the keyboard drives.
type Controller interface {
	Start(ctx context.Context) error
	Stop() error
	NextEndpoint(ctx context.Context) (models.Endpoint, error)
	ToggleChartType() models.Settings
	TogglePredictions() models.Settings
	Session() models.SessionView
}

type eventMsg struct{ ev models.Event }

type model struct {
	ctx     context.Context
	ctrl    Controller
	frame   *models.Frame
	logs    []models.LogEntry
	stats   models.Stats
	session models.SessionView
	width   int
	height  int
}

func newModel(ctx context.Context, ctrl Controller) model {
	return model{ctx: ctx, ctrl: ctrl, session: ctrl.Session()}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "s":
			if err := m.ctrl.Start(m.ctx); err != nil {
				m.addLog(models.LogWarning, err.Error())
			}
		case "x":
			if err := m.ctrl.Stop(); err != nil {
				m.addLog(models.LogWarning, err.Error())
			}
		case "e":
			if _, err := m.ctrl.NextEndpoint(m.ctx); err != nil {
				m.addLog(models.LogError, err.Error())
			}
		case "c":
			s := m.ctrl.ToggleChartType()
			if m.frame != nil {
				f := *m.frame
				f.ChartType = s.ChartType
				m.frame = &f
			}
		case "p":
			s := m.ctrl.TogglePredictions()
			if m.frame != nil {
				f := *m.frame
				f.ShowPredictions = s.ShowPredictions
				m.frame = &f
			}
		}
		m.session = m.ctrl.Session()
		return m, nil

	case eventMsg:
		m.apply(msg.ev)
		return m, nil
	}
	return m, nil
}

func (m *model) apply(ev models.Event) {
	switch ev.Kind {
	case models.EventFrame:
		if ev.Frame != nil {
			m.frame = ev.Frame
		}
	case models.EventLog:
		if ev.Log != nil {
			m.logs = append(m.logs, *ev.Log)
			if len(m.logs) > maxLogLines {
				m.logs = m.logs[len(m.logs)-maxLogLines:]
			}
		}
	case models.EventStats:
		if ev.Stats != nil {
			m.stats = *ev.Stats
		}
	}
	m.session = m.ctrl.Session()
}

func (m *model) addLog(cat models.LogCategory, msg string) {
	m.apply(models.NewLogEvent(cat, msg))
}

func (m model) View() string {
	if m.width == 0 {
		return "starting…"
	}
	logRows := 6
	// header + chart axis + indicators + stats panel (3) + logs + footer
	chartH := m.height - logRows - 8
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteByte('\n')
	b.WriteString(renderChart(m.frame, m.width, chartH))
	b.WriteByte('\n')
	b.WriteString(m.renderIndicators())
	b.WriteByte('\n')
	b.WriteString(panelStyle.Render(m.renderStats()))
	b.WriteByte('\n')
	b.WriteString(m.renderLogs(logRows))
	b.WriteString(footerStyle.Render("[s] start  [x] stop  [e] endpoint  [c] chart  [p] predictions  [q] quit"))
	return b.String()
}

func (m model) renderHeader() string {
	state := "STOPPED"
	if m.session.Running {
		state = "RUNNING"
	}
	quality := m.session.LatencyQuality
	latency := "-- ms"
	if quality != "" && quality != models.LatencyError {
		latency = fmt.Sprintf("%d ms", m.session.LatencyMs)
	}
	if quality == "" {
		quality = "unknown"
	}
	qs, ok := latencyStyles[quality]
	if !ok {
		qs = footerStyle
	}
	return headerStyle.Render(fmt.Sprintf("%s  %s  %s  ", m.session.Symbol, state, m.session.Endpoint.Name)) +
		qs.Render(fmt.Sprintf("● %s %s", quality, latency))
}

func (m model) renderIndicators() string {
	if m.frame == nil || m.frame.Indicators == nil {
		return axisStyle.Render("indicators warming up")
	}
	ind := m.frame.Indicators
	line := fmt.Sprintf("price %.4f  sma20 %.4f  sma50 %.4f  rsi %.1f  macd %.4f  bb %.2f  vol %.2fx",
		ind.CurrentPrice, ind.SMAFast, ind.SMASlow, ind.RSI, ind.MACD, ind.BollingerPosition, ind.VolumeRatio)
	if m.frame.Signal != nil {
		line += fmt.Sprintf("  %s %.0f%%", *m.frame.Signal, m.frame.Confidence*100)
	}
	return headerStyle.Render(line)
}

func (m model) renderStats() string {
	trained := "no"
	if m.stats.ModelTrained {
		trained = "yes"
	}
	return fmt.Sprintf("signals %d  buy %d  sell %d  model trained %s  cycles %d",
		m.stats.TotalSignals, m.stats.BuyCount, m.stats.SellCount, trained, m.stats.Cycles)
}

func (m model) renderLogs(rows int) string {
	logs := m.logs
	if len(logs) > rows {
		logs = logs[len(logs)-rows:]
	}
	var b strings.Builder
	for _, l := range logs {
		st, ok := logStyles[l.Category]
		if !ok {
			st = logStyles[models.LogInfo]
		}
		b.WriteString(st.Render(fmt.Sprintf("%s  %s", l.Time.Format("15:04:05"), l.Message)))
		b.WriteByte('\n')
	}
	for i := len(logs); i < rows; i++ {
		b.WriteByte('\n')
	}
	return b.String()
}
