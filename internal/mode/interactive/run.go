// ABOUTME: Entry point for the interactive Bubble Tea session UI
// ABOUTME: Creates the tea.Program, attaches the tracker bridge, blocks until exit

package interactive

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the interactive app. Blocks until the user exits.
func Run(deps Deps) error {
	m := NewAppModel(deps)

	p := tea.NewProgram(
		m,
		tea.WithOutput(os.Stderr),
	)

	// NewAppModel allocates sh as a pointer; tea.NewProgram copies the
	// model value but shares the pointer.
	m.sh.program = p

	detach := AttachBridge(p, deps.Engine.Tracker())
	defer detach()

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("bubble tea: %w", err)
	}
	return nil
}
