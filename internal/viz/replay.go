package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/threebody/internal/physics"
	"github.com/san-kum/threebody/internal/sim"
)

const (
	canvasWidth  = 72
	canvasHeight = 24
	trailLength  = 60
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)

	bodyStyles = [physics.NumBodies]lipgloss.Style{
		lipgloss.NewStyle().Foreground(lipgloss.Color("82")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		lipgloss.NewStyle().Foreground(lipgloss.Color("203")),
	}
	bodyGlyphs = [physics.NumBodies]string{"●", "●", "●"}
	trailGlyph = "·"
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(33*time.Millisecond, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Replay is a bubbletea model that plays a recorded trajectory back in
// the terminal. The bounding box is fixed over the whole run so the view
// does not jump between frames.
type Replay struct {
	samples []sim.Sample
	frame   int
	playing bool
	speed   int

	minX, maxX float64
	minY, maxY float64
}

func NewReplay(samples []sim.Sample) *Replay {
	r := &Replay{samples: samples, playing: true, speed: 1}
	if len(samples) == 0 {
		return r
	}

	r.minX, r.maxX = samples[0].State[0], samples[0].State[0]
	r.minY, r.maxY = samples[0].State[1], samples[0].State[1]
	for _, sample := range samples {
		for b := 0; b < physics.NumBodies; b++ {
			x, y := sample.State[b*4], sample.State[b*4+1]
			if x < r.minX {
				r.minX = x
			}
			if x > r.maxX {
				r.maxX = x
			}
			if y < r.minY {
				r.minY = y
			}
			if y > r.maxY {
				r.maxY = y
			}
		}
	}
	// Pad so bodies never sit on the frame border.
	padX := (r.maxX - r.minX) * 0.08
	padY := (r.maxY - r.minY) * 0.08
	if padX == 0 {
		padX = 1
	}
	if padY == 0 {
		padY = 1
	}
	r.minX -= padX
	r.maxX += padX
	r.minY -= padY
	r.maxY += padY
	return r
}

func (r *Replay) Init() tea.Cmd { return tick() }

func (r *Replay) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return r, tea.Quit
		case " ":
			r.playing = !r.playing
		case "left", "h":
			r.playing = false
			r.seek(r.frame - r.speed)
		case "right", "l":
			r.playing = false
			r.seek(r.frame + r.speed)
		case "+", "=":
			if r.speed < 64 {
				r.speed *= 2
			}
		case "-":
			if r.speed > 1 {
				r.speed /= 2
			}
		case "r":
			r.frame = 0
			r.playing = true
		}
		return r, nil
	case tickMsg:
		if r.playing && len(r.samples) > 0 {
			r.seek(r.frame + r.speed)
			if r.frame == len(r.samples)-1 {
				r.playing = false
			}
		}
		return r, tick()
	}
	return r, nil
}

func (r *Replay) seek(frame int) {
	if frame < 0 {
		frame = 0
	}
	if frame > len(r.samples)-1 {
		frame = len(r.samples) - 1
	}
	r.frame = frame
}

func (r *Replay) project(x, y float64) (int, int) {
	col := int((x - r.minX) / (r.maxX - r.minX) * float64(canvasWidth-1))
	row := int((1 - (y-r.minY)/(r.maxY-r.minY)) * float64(canvasHeight-1))
	return col, row
}

func (r *Replay) View() string {
	if len(r.samples) == 0 {
		return "no samples to replay\n"
	}

	canvas := make([][]string, canvasHeight)
	for i := range canvas {
		canvas[i] = make([]string, canvasWidth)
		for j := range canvas[i] {
			canvas[i][j] = " "
		}
	}

	// Trails first so current positions draw over them.
	start := r.frame - trailLength
	if start < 0 {
		start = 0
	}
	for b := 0; b < physics.NumBodies; b++ {
		for i := start; i < r.frame; i++ {
			col, row := r.project(r.samples[i].State[b*4], r.samples[i].State[b*4+1])
			if col >= 0 && col < canvasWidth && row >= 0 && row < canvasHeight {
				canvas[row][col] = bodyStyles[b].Render(trailGlyph)
			}
		}
	}
	current := r.samples[r.frame]
	for b := 0; b < physics.NumBodies; b++ {
		col, row := r.project(current.State[b*4], current.State[b*4+1])
		if col >= 0 && col < canvasWidth && row >= 0 && row < canvasHeight {
			canvas[row][col] = bodyStyles[b].Render(bodyGlyphs[b])
		}
	}

	var sb strings.Builder
	sb.WriteString(headerStyle.Render("three-body replay"))
	sb.WriteString("\n")
	sb.WriteString("┌" + strings.Repeat("─", canvasWidth) + "┐\n")
	for _, row := range canvas {
		sb.WriteString("│" + strings.Join(row, "") + "│\n")
	}
	sb.WriteString("└" + strings.Repeat("─", canvasWidth) + "┘\n")

	status := "playing"
	if !r.playing {
		status = "paused"
	}
	sb.WriteString(fmt.Sprintf("%s %s   %s %s   %s %s   %s %s\n",
		labelStyle.Render("t:"), valueStyle.Render(fmt.Sprintf("%.3f", current.Time)),
		labelStyle.Render("energy:"), valueStyle.Render(fmt.Sprintf("%.6g", current.Energy)),
		labelStyle.Render("frame:"), valueStyle.Render(fmt.Sprintf("%d/%d", r.frame, len(r.samples)-1)),
		labelStyle.Render("speed:"), valueStyle.Render(fmt.Sprintf("%dx", r.speed))))
	sb.WriteString(fmt.Sprintf("%s %s\n",
		labelStyle.Render(status+" "),
		helpStyle.Render("space pause  ←/→ scrub  +/- speed  r restart  q quit")))
	return sb.String()
}

// Run blocks until the viewer exits.
func Run(samples []sim.Sample) error {
	program := tea.NewProgram(NewReplay(samples))
	_, err := program.Run()
	return err
}
