package tui

import (
	"strings"
	"testing"

	"waveform/internal/analysis"
	"waveform/internal/audio"

	tea "github.com/charmbracelet/bubbletea"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m tea.Model, msg tea.Msg) (tea.Model, tea.Cmd) {
	t.Helper()
	return m.Update(msg)
}

func spectrumFrame(seq uint64) *analysis.Frame {
	bins := make([]float32, 1024)
	for i := range bins {
		bins[i] = analysis.MinDecibels
	}
	bins[20] = -6 // 20 * 48000/2048 ≈ 469 Hz, in lowMid
	return &analysis.Frame{Seq: seq, Mode: "spectrum", Spectrum: [][]float32{bins}}
}

func TestMonitorWaitsForFrames(t *testing.T) {
	m := NewMonitorModel("waveform", 48000, -120)
	if view := m.View(); !strings.Contains(view, "Waiting for audio") {
		t.Errorf("View() before any frame:\n%s", view)
	}
}

func TestMonitorSpectrum(t *testing.T) {
	var model tea.Model = NewMonitorModel("waveform", 48000, -120)
	model, _ = update(t, model, tea.WindowSizeMsg{Width: 80, Height: 24})
	model, _ = update(t, model, copyFrame(spectrumFrame(5)))

	m := model.(MonitorModel)
	if len(m.levels) != 1 || len(m.levels[0]) != len(m.bands) {
		t.Fatalf("levels = %v", m.levels)
	}
	for i, band := range m.bands {
		want := analysis.MinDecibels
		if band.Name == "lowMid" {
			want = -6
		}
		if m.levels[0][i] != want {
			t.Errorf("band %s = %v, want %v", band.Name, m.levels[0][i], want)
		}
	}

	view := m.View()
	for _, want := range []string{"lowMid", "-6.0 dB", "-inf dB", "frame 5"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
}

func TestMonitorMeter(t *testing.T) {
	var model tea.Model = NewMonitorModel("waveform", 48000, -120)
	frame := &analysis.Frame{Seq: 2, Mode: "meter", Silent: true, Meter: []float32{-3, -200}}
	model, _ = update(t, model, copyFrame(frame))

	view := model.View()
	for _, want := range []string{"L ", "R ", "-3.0 dB", "silent"} {
		if !strings.Contains(view, want) {
			t.Errorf("View() missing %q:\n%s", want, view)
		}
	}
}

func TestMonitorKeys(t *testing.T) {
	var model tea.Model = NewMonitorModel("waveform", 48000, -120)

	model, _ = update(t, model, tea.KeyMsg{Type: tea.KeySpace})
	model, _ = update(t, model, copyFrame(spectrumFrame(9)))
	if m := model.(MonitorModel); !m.paused || m.seen {
		t.Errorf("paused monitor accepted a frame: paused=%v seen=%v", m.paused, m.seen)
	}

	_, cmd := update(t, model, runes("q"))
	if cmd == nil {
		t.Fatal("q returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestMonitorFraction(t *testing.T) {
	m := NewMonitorModel("waveform", 48000, -120)
	tests := []struct {
		db   float32
		want float64
	}{
		{-200, 0},
		{-120, 0},
		{-60, 0.5},
		{0, 1},
		{6, 1},
	}
	for _, tt := range tests {
		if got := m.fraction(tt.db); got != tt.want {
			t.Errorf("fraction(%v) = %v, want %v", tt.db, got, tt.want)
		}
	}
}

func TestCopyFrame(t *testing.T) {
	f := spectrumFrame(1)
	c := copyFrame(f)
	f.Spectrum[0][20] = 0
	if c.Spectrum[0][20] != -6 {
		t.Error("copyFrame() aliases the source spectrum")
	}
}

func TestMonitorRejectsOtherPayloads(t *testing.T) {
	mon := NewMonitor(NewMonitorModel("waveform", 48000, -120))
	if err := mon.Send("frame"); err == nil {
		t.Error("Send() accepted a string")
	}
}

func TestDeviceListModel(t *testing.T) {
	devices := []audio.Device{
		{ID: 0, Name: "Speakers", MaxOutputChannels: 2},
		{ID: 1, Name: "Microphone", MaxInputChannels: 1, DefaultSampleRate: 48000},
		{ID: 2, Name: "Interface", MaxInputChannels: 8, MaxOutputChannels: 8, DefaultSampleRate: 96000},
	}

	var model tea.Model = NewDeviceListModel(devices)
	if model.View() != "Initializing..." {
		t.Errorf("View() before sizing = %q", model.View())
	}
	model, _ = update(t, model, tea.WindowSizeMsg{Width: 80, Height: 24})

	view := model.View()
	if strings.Contains(view, "Speakers") || !strings.Contains(view, "Microphone") {
		t.Errorf("output only devices should be hidden:\n%s", view)
	}

	model, _ = update(t, model, tea.KeyMsg{Type: tea.KeyDown})
	model, _ = update(t, model, tea.KeyMsg{Type: tea.KeyDown}) // clamped at the end
	model, cmd := update(t, model, tea.KeyMsg{Type: tea.KeyEnter})

	if got := model.(DeviceListModel).Chosen(); got != 2 {
		t.Errorf("Chosen() = %d, want 2", got)
	}
	if cmd == nil {
		t.Fatal("enter returned no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("enter did not quit")
	}
}

func TestDeviceListCancel(t *testing.T) {
	var model tea.Model = NewDeviceListModel(nil)
	model, _ = update(t, model, tea.WindowSizeMsg{Width: 80, Height: 24})
	if !strings.Contains(model.View(), "No input devices") {
		t.Errorf("View():\n%s", model.View())
	}
	model, _ = update(t, model, tea.KeyMsg{Type: tea.KeyEnter})
	if model.(DeviceListModel).Chosen() != -1 {
		t.Error("enter on an empty list selected a device")
	}
}
