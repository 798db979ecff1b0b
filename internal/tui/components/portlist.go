package components

import (
	"path/filepath"

	"github.com/allbin/go-fedsync/internal/tui/colors"
	"github.com/allbin/go-fedsync/internal/tui/styles"
	"github.com/charmbracelet/lipgloss"
)

// PortList is the horizontal port selector under the header
type PortList struct {
	ports    []string
	selected int
}

func NewPortList() *PortList {
	return &PortList{}
}

func (p *PortList) SetPorts(ports []string) {
	p.ports = ports
	if p.selected >= len(ports) {
		p.selected = 0
	}
}

func (p *PortList) Ports() []string {
	return p.ports
}

func (p *PortList) Selected() int {
	return p.selected
}

func (p *PortList) Select(index int) {
	if index >= 0 && index < len(p.ports) {
		p.selected = index
	}
}

// Next returns the index after the selected one, wrapping around
func (p *PortList) Next() int {
	if len(p.ports) == 0 {
		return 0
	}
	return (p.selected + 1) % len(p.ports)
}

// Prev returns the index before the selected one, wrapping around
func (p *PortList) Prev() int {
	if len(p.ports) == 0 {
		return 0
	}
	return (p.selected - 1 + len(p.ports)) % len(p.ports)
}

func (p *PortList) View() string {
	label := lipgloss.NewStyle().Foreground(colors.Muted).Render("Port:")
	if len(p.ports) == 0 {
		none := lipgloss.NewStyle().Foreground(colors.Red).Padding(0, 1).Render("no serial ports found")
		return lipgloss.JoinHorizontal(lipgloss.Left, label, none)
	}

	parts := []string{label}
	for i, port := range p.ports {
		name := filepath.Base(port)
		if i == p.selected {
			parts = append(parts, styles.PortSelectedStyle.Render(name))
		} else {
			parts = append(parts, styles.PortStyle.Render(name))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, parts...)
}
