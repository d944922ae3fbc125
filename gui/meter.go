//go:build gui

package gui

import (
	"image/color"
	"math"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

const (
	meterBars   = 24
	barWidth    = 6
	barGap      = 2
	meterHeight = 36
)

var (
	barIdle        = color.RGBA{70, 70, 78, 255}
	barRecording   = color.RGBA{255, 69, 58, 255}
	barTranscribe  = color.RGBA{255, 214, 10, 255}
	barRecordingLo = color.RGBA{120, 36, 32, 255}
)

// MeterWidget draws a rolling level meter: one bar per recent RMS
// sample while recording, a pulsing sweep while transcribing.
type MeterWidget struct {
	widget.BaseWidget

	mu           sync.Mutex
	frame        int
	levels       [meterBars]float64
	recording    bool
	transcribing bool
	stopCh       chan struct{}
}

func NewMeterWidget() *MeterWidget {
	m := &MeterWidget{stopCh: make(chan struct{})}
	m.ExtendBaseWidget(m)
	go m.animate()
	return m
}

func (m *MeterWidget) SetRecording(r bool) {
	m.mu.Lock()
	m.recording = r
	if !r {
		m.levels = [meterBars]float64{}
	}
	m.mu.Unlock()
}

func (m *MeterWidget) SetTranscribing(t bool) {
	m.mu.Lock()
	m.transcribing = t
	m.mu.Unlock()
}

// PushLevel shifts the history left and appends the newest sample.
func (m *MeterWidget) PushLevel(l float64) {
	m.mu.Lock()
	if m.recording {
		copy(m.levels[:], m.levels[1:])
		m.levels[meterBars-1] = math.Min(1, l*3)
	}
	m.mu.Unlock()
}

func (m *MeterWidget) Stop() {
	select {
	case <-m.stopCh:
	default:
		close(m.stopCh)
	}
}

func (m *MeterWidget) animate() {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-m.stopCh:
			return
		case <-ticker.C:
			m.mu.Lock()
			m.frame++
			m.mu.Unlock()
			fyne.Do(func() {
				m.Refresh()
			})
		}
	}
}

func (m *MeterWidget) MinSize() fyne.Size {
	return fyne.NewSize(float32(meterBars*(barWidth+barGap)+barGap), meterHeight)
}

func (m *MeterWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &meterRenderer{meter: m}
	for i := 0; i < meterBars; i++ {
		r.bars[i] = canvas.NewRectangle(barIdle)
	}
	return r
}

type meterRenderer struct {
	meter *MeterWidget
	bars  [meterBars]*canvas.Rectangle
}

func (r *meterRenderer) Layout(size fyne.Size) {
	r.layoutBars(size, nil)
}

func (r *meterRenderer) layoutBars(size fyne.Size, heights []float32) {
	for i, bar := range r.bars {
		h := size.Height * 0.25
		if heights != nil {
			h = heights[i]
		}
		x := float32(barGap + i*(barWidth+barGap))
		bar.Move(fyne.NewPos(x, (size.Height-h)/2))
		bar.Resize(fyne.NewSize(barWidth, h))
	}
}

func (r *meterRenderer) MinSize() fyne.Size {
	return r.meter.MinSize()
}

func (r *meterRenderer) Refresh() {
	r.meter.mu.Lock()
	frame := r.meter.frame
	levels := r.meter.levels
	recording := r.meter.recording
	transcribing := r.meter.transcribing
	r.meter.mu.Unlock()

	size := r.meter.Size()
	if size.Height == 0 {
		size = r.meter.MinSize()
	}

	heights := make([]float32, meterBars)
	for i := range r.bars {
		switch {
		case recording:
			h := float32(levels[i]) * size.Height
			if h < 3 {
				h = 3
			}
			heights[i] = h
			if levels[i] > 0.02 {
				r.bars[i].FillColor = barRecording
			} else {
				r.bars[i].FillColor = barRecordingLo
			}
		case transcribing:
			// Sweep a bright band across the bars.
			phase := math.Abs(float64((frame+i)%meterBars)/meterBars - 0.5)
			heights[i] = float32(6 + phase*10)
			if (frame+i)%meterBars < 4 {
				r.bars[i].FillColor = barTranscribe
			} else {
				r.bars[i].FillColor = barIdle
			}
		default:
			heights[i] = 3
			r.bars[i].FillColor = barIdle
		}
	}
	r.layoutBars(size, heights)
	for _, bar := range r.bars {
		bar.Refresh()
	}
}

func (r *meterRenderer) Objects() []fyne.CanvasObject {
	objs := make([]fyne.CanvasObject, 0, meterBars)
	for _, bar := range r.bars {
		objs = append(objs, bar)
	}
	return objs
}

func (r *meterRenderer) Destroy() {
	r.meter.Stop()
}
