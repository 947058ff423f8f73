package tui

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"ScalpSignal/internal/domain/models"
	domrepo "ScalpSignal/internal/domain/repository"

	tea "github.com/charmbracelet/bubbletea"
)

// Presenter forwards events into the bubbletea program, so view state is
// only touched by the program's update loop.
type Presenter struct {
	mu   sync.RWMutex
	prog *tea.Program
}

var _ domrepo.Presenter = (*Presenter)(nil)

func NewPresenter() *Presenter { return &Presenter{} }

// Handle drops events until a program is running.
func (p *Presenter) Handle(ev models.Event) {
	p.mu.RLock()
	prog := p.prog
	p.mu.RUnlock()
	if prog != nil {
		prog.Send(eventMsg{ev: ev})
	}
}

// Run starts the terminal UI and blocks until the user quits or ctx ends.
func (p *Presenter) Run(ctx context.Context, ctrl Controller) error {
	prog := tea.NewProgram(newModel(ctx, ctrl), tea.WithAltScreen(), tea.WithContext(ctx))
	p.mu.Lock()
	p.prog = prog
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.prog = nil
		p.mu.Unlock()
	}()

	if _, err := prog.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}
