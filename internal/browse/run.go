package browse

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultLogFile receives log output while the browser owns the terminal.
const DefaultLogFile = "artmatrix-browse.log"

// Run starts the browser and blocks until the user quits or ctx ends.
// Standard log output is redirected to logPath ("" discards it) for the
// duration so it cannot corrupt the screen.
func Run(ctx context.Context, m *Model, logPath string) error {
	restore, err := redirectLog(logPath)
	if err != nil {
		return err
	}
	defer restore()

	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err = p.Run()
	m.closeDetail()
	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("browser exited: %w", err)
	}
	return nil
}

func redirectLog(path string) (func(), error) {
	prevOut := log.Writer()

	if path == "" {
		log.SetOutput(io.Discard)
		return func() { log.SetOutput(prevOut) }, nil
	}

	f, err := tea.LogToFile(path, "")
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	log.Printf("[Browse] session started (pid %d)", os.Getpid())
	return func() {
		f.Close()
		log.SetOutput(prevOut)
	}, nil
}
