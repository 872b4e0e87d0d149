// ABOUTME: Pre-sets lipgloss dark background before BubbleTea's init() sends OSC queries
// ABOUTME: Must be imported (with _) before any package that imports bubbletea

package termfix

import "github.com/charmbracelet/lipgloss"

func init() {
	// Declare a dark background up front so lipgloss never issues OSC
	// 10/11 terminal queries. BubbleTea's init() asks
	// lipgloss.HasDarkBackground(); with the background already set, the
	// sync.Once guarding the query never fires, and no async query
	// response can leak into the editor's input stream.
	//
	// This package must not import bubbletea, directly or transitively,
	// so Go's init order runs it first.
	lipgloss.SetHasDarkBackground(true)
}
