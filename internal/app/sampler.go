// ABOUTME: Sampler application orchestration
// ABOUTME: Coordinates device, sample bank, voices, metrics and UI
package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/Resonate-Protocol/resonate-sampler/internal/config"
	"github.com/Resonate-Protocol/resonate-sampler/internal/metrics"
	"github.com/Resonate-Protocol/resonate-sampler/internal/ui"
	"github.com/Resonate-Protocol/resonate-sampler/pkg/audio/backend"
	"github.com/Resonate-Protocol/resonate-sampler/pkg/audio/sample"
	"github.com/Resonate-Protocol/resonate-sampler/pkg/audio/sound"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus"
)

// pumpInterval is how often finished voices are reaped and headless
// devices are rendered
const pumpInterval = 20 * time.Millisecond

// OpenDevice creates and opens the backend named in settings
func OpenDevice(settings *config.Settings) (backend.Device, error) {
	rate, channels := settings.Device.SampleRate, settings.Device.Channels

	switch settings.Backend {
	case config.BackendMemory:
		return backend.NewMemory(rate, channels), nil
	case config.BackendOto:
		dev := backend.NewOto()
		if err := dev.Open(rate, channels); err != nil {
			return nil, err
		}
		return dev, nil
	case config.BackendMalgo:
		dev := backend.NewMalgo()
		if err := dev.Open(rate, channels); err != nil {
			return nil, err
		}
		return dev, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", settings.Backend)
	}
}

// Sampler owns the loaded pads and their playing voices
type Sampler struct {
	settings *config.Settings
	device   backend.Device
	bank     *sample.Bank
	metrics  *metrics.SamplerMetrics
	server   *http.Server

	mu     sync.Mutex
	pads   []*sample.Ref
	voices map[int][]*sound.Sound
}

// New creates a sampler on an open device
func New(settings *config.Settings, device backend.Device) (*Sampler, error) {
	m, err := metrics.NewSamplerMetrics(prometheus.NewRegistry())
	if err != nil {
		return nil, err
	}

	manager := sample.NewManager(device)
	manager.Observer = m

	s := &Sampler{
		settings: settings,
		device:   device,
		bank:     sample.NewBank(manager),
		metrics:  m,
		voices:   make(map[int][]*sound.Sound),
	}

	if settings.Metrics.Addr != "" {
		s.server = m.Serve(settings.Metrics.Addr)
	}
	return s, nil
}

// LoadPads loads every path into a pad. Duplicate paths share one buffer.
func (s *Sampler) LoadPads(paths []string) error {
	var errs []error
	for _, path := range paths {
		ref, err := s.bank.Acquire(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		s.mu.Lock()
		s.pads = append(s.pads, ref)
		s.mu.Unlock()
	}
	return errors.Join(errs...)
}

// Pads returns the UI description of the loaded pads
func (s *Sampler) Pads() []ui.Pad {
	s.mu.Lock()
	defer s.mu.Unlock()

	pads := make([]ui.Pad, len(s.pads))
	for i, ref := range s.pads {
		d := ref.Data()
		title := d.Tags().Title()
		if title == "" {
			title = d.Path()
		}
		pads[i] = ui.Pad{
			Title:      title,
			Path:       d.Path(),
			Channels:   d.Info().Channels,
			SampleRate: d.Info().SampleRate,
			Duration:   d.Duration(),
		}
	}
	return pads
}

// Trigger starts a new voice of pad
func (s *Sampler) Trigger(pad int) (*sound.Sound, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if pad < 0 || pad >= len(s.pads) {
		return nil, fmt.Errorf("no pad %d", pad+1)
	}

	snd, err := sound.New(s.pads[pad], s.device)
	if err != nil {
		return nil, err
	}
	snd.Play()
	s.voices[pad] = append(s.voices[pad], snd)

	log.Printf("Triggered pad %d: %s (%d voices)", pad+1, snd.Sample().Path(), len(s.voices[pad]))
	return snd, nil
}

// Voices returns the live voice count per pad
func (s *Sampler) Voices() []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := make([]int, len(s.pads))
	for pad, voices := range s.voices {
		counts[pad] = len(voices)
	}
	return counts
}

// StopAll stops and closes every voice
func (s *Sampler) StopAll() {
	s.device.StopAll()
	s.reap()
}

// reap closes voices that finished playing
func (s *Sampler) reap() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for pad, voices := range s.voices {
		live := voices[:0]
		for _, snd := range voices {
			if snd.IsPlaying() {
				live = append(live, snd)
				continue
			}
			if err := snd.Close(); err != nil {
				log.Printf("Warning: %v", err)
			}
		}
		if len(live) == 0 {
			delete(s.voices, pad)
		} else {
			s.voices[pad] = live
		}
	}
}

// pump advances headless devices and reaps finished voices
func (s *Sampler) pump() {
	if mem, ok := s.device.(*backend.Memory); ok {
		mem.Render(mem.SampleRate() * int(pumpInterval/time.Millisecond) / 1000)
	}
	s.reap()
}

// Status returns the current UI state
func (s *Sampler) Status() ui.StatusMsg {
	live := s.bank.Len()
	return ui.StatusMsg{
		Backend:     s.settings.Backend,
		SampleRate:  s.settings.Device.SampleRate,
		Channels:    s.settings.Device.Channels,
		Voices:      s.Voices(),
		LiveBuffers: &live,
	}
}

// PlayAll plays each pad with two overlapping voices, one pad after another
func (s *Sampler) PlayAll(ctx context.Context) error {
	pads := s.Pads()

	for i, pad := range pads {
		log.Printf("Playing pad %d: %s (%.2fs)", i+1, pad.Title, pad.Duration.Seconds())

		if _, err := s.Trigger(i); err != nil {
			return err
		}

		// Second voice of the same buffer, a quarter of the way in
		second := time.After(pad.Duration / 4)
		started := false

		ticker := time.NewTicker(pumpInterval)
		for done := false; !done; {
			select {
			case <-ctx.Done():
				ticker.Stop()
				s.StopAll()
				return ctx.Err()
			case <-second:
				if _, err := s.Trigger(i); err != nil {
					log.Printf("Warning: second voice: %v", err)
				}
				started = true
			case <-ticker.C:
				s.pump()
				done = started && s.Voices()[i] == 0
			}
		}
		ticker.Stop()
	}
	return nil
}

// RunTUI runs the sample pad UI until the user quits
func (s *Sampler) RunTUI(ctx context.Context) error {
	ctrl := ui.NewControl()
	prog, err := ui.Run(ctrl)
	if err != nil {
		return fmt.Errorf("failed to start TUI: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.handleControls(ctx, ctrl, prog)
	}()

	_, err = prog.Run()
	cancel()
	wg.Wait()

	if err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// handleControls applies UI actions and pushes status updates
func (s *Sampler) handleControls(ctx context.Context, ctrl *ui.Control, prog *tea.Program) {
	// Send blocks until the program runs
	prog.Send(ui.StatusMsg{Pads: s.Pads()})
	prog.Send(s.Status())

	ticker := time.NewTicker(pumpInterval * 5)
	defer ticker.Stop()

	for {
		select {
		case msg := <-ctrl.Triggers:
			if _, err := s.Trigger(msg.Pad); err != nil {
				log.Printf("Trigger failed: %v", err)
			}
		case <-ctrl.Stop:
			s.StopAll()
		case msg := <-ctrl.Volume:
			s.device.SetVolume(msg.Volume)
			s.device.SetMuted(msg.Muted)
		case <-ctrl.Quit:
			return
		case <-ticker.C:
			s.pump()
			prog.Send(s.Status())
		case <-ctx.Done():
			return
		}
	}
}

// Close stops all voices, releases every pad and closes the device
func (s *Sampler) Close() error {
	s.device.StopAll()

	s.mu.Lock()
	for pad, voices := range s.voices {
		for _, snd := range voices {
			if err := snd.Close(); err != nil {
				log.Printf("Warning: %v", err)
			}
		}
		delete(s.voices, pad)
	}
	for _, ref := range s.pads {
		ref.Release()
	}
	s.pads = nil
	s.mu.Unlock()

	if s.server != nil {
		if err := s.server.Close(); err != nil {
			log.Printf("Warning: metrics server close: %v", err)
		}
	}

	return s.device.Close()
}
