package main

import (
	"flag"
	"fmt"
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gocmon/pkg/acquire"
	"github.com/itohio/gocmon/pkg/analytics"
	"github.com/itohio/gocmon/pkg/config"
	"github.com/itohio/gocmon/pkg/distance"
	"github.com/itohio/gocmon/pkg/gui"
)

func main() {
	var (
		portFlag   = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag   = flag.Bool("mock", false, "Use mocked sensor head instead of serial port")
	)
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Override serial port if provided via command line
	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}

	converter, err := distance.NewConverter(cfg.Lut)
	if err != nil {
		log.Fatalf("Invalid calibration tables: %v", err)
	}

	// Create Fyne application
	application := app.NewWithID("com.itohio.gocmon")

	window := application.NewWindow("Cable Monitor")
	window.Resize(fyne.NewSize(480, 700))
	window.CenterOnScreen()

	lcd := NewLCD()
	state := &appState{
		cfg:        cfg,
		converter:  converter,
		window:     window,
		lcd:        lcd,
		classifier: gui.NewClassifier(cfg.Measurement.TouchSettle),
		sites:      gui.NewSiteManager(lcd, gui.OptionsState{Mode: distance.ModeL}),
		useMock:    *mockFlag,
	}

	toolbar := createToolbar(state)
	window.SetContent(container.NewBorder(toolbar, nil, nil, nil, lcd))

	// The poll loop stands in for the firmware main loop: one tick reads
	// every input edge and advances the analyzer and the GUI.
	ticker := time.NewTicker(cfg.Measurement.PollInterval)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fyne.Do(func() { state.poll(time.Now()) })
			}
		}
	}()
	window.SetOnClosed(func() {
		ticker.Stop()
		close(done)
		state.disconnect()
	})

	window.ShowAndRun()
}

// appState holds the application state.
type appState struct {
	cfg       *config.Config
	converter *distance.Converter
	window    fyne.Window

	lcd        *LCDWidget
	classifier *gui.Classifier
	sites      *gui.SiteManager

	connectBtn *widget.Button
	measureBtn *widget.Button
	useMock    bool

	mu       sync.Mutex
	device   acquire.Device
	analyzer *analytics.Analyzer
	button   bool
	result   *analytics.Result
}

// createToolbar creates the toolbar with connect, settings and the
// stand-in for the hardware pushbutton.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	// The blue pushbutton of the handheld
	measureBtn := widget.NewButtonWithIcon("Measure", theme.MediaPlayIcon(), func() {
		state.mu.Lock()
		state.button = true
		state.mu.Unlock()
	})
	measureBtn.Disable()
	state.measureBtn = measureBtn

	return container.NewBorder(
		nil,
		nil,
		container.NewHBox(connectBtn, settingsBtn),
		container.NewHBox(measureBtn),
		nil,
	)
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	state.mu.Lock()
	connected := state.device != nil && state.device.IsConnected()
	state.mu.Unlock()

	if connected {
		state.disconnect()
		state.measureBtn.Disable()
		if state.useMock {
			fmt.Println("Disconnected from mocked sensor head")
		} else {
			fmt.Println("Disconnected from serial port")
		}
		return
	}

	var device acquire.Device
	if state.useMock {
		device = acquire.NewMock(&state.cfg.Mock)
		fmt.Println("Using mocked sensor head")
	} else {
		device = acquire.New(state.cfg.Serial.Port, acquire.DefaultBaudRate, acquire.DefaultBufferSize)
	}

	if err := device.Connect(); err != nil {
		if state.useMock {
			dialog.ShowError(fmt.Errorf("failed to connect to mocked sensor head: %w", err), state.window)
		} else {
			dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err), state.window)
		}
		return
	}
	if state.useMock {
		fmt.Println("Connected to mocked sensor head")
	} else {
		fmt.Printf("Connected to serial port: %s\n", state.cfg.Serial.Port)
	}

	analyzer := analytics.New(state.cfg, state.converter, device, state.sites.Options().Snapshot())

	state.mu.Lock()
	state.device = device
	state.analyzer = analyzer
	state.mu.Unlock()

	analyzer.OnResult(func(r analytics.Result) {
		// Runs on the poll goroutine inside HandleScan; the same tick's
		// site manager advance picks it up.
		state.mu.Lock()
		state.result = &r
		state.mu.Unlock()
	})

	state.measureBtn.Enable()
}

// disconnect tears the device down and drops the analyzer with it.
func (s *appState) disconnect() {
	s.mu.Lock()
	device := s.device
	s.device = nil
	s.analyzer = nil
	s.result = nil
	s.mu.Unlock()

	if device != nil {
		if err := device.Close(); err != nil {
			log.Printf("Failed to close device: %v", err)
		}
	}
}

// poll runs one loop tick: drain finished scans, consume the input edges,
// advance the analyzer and the site manager, hand over fresh option
// snapshots. Runs on the Fyne thread.
func (s *appState) poll(now time.Time) {
	s.mu.Lock()
	device := s.device
	analyzer := s.analyzer
	button := s.button
	s.button = false
	s.mu.Unlock()

	if device != nil && analyzer != nil {
		for draining := true; draining; {
			select {
			case scan, ok := <-device.Scans():
				if !ok {
					draining = false
					break
				}
				analyzer.HandleScan(scan, now)
			default:
				draining = false
			}
		}
		analyzer.Tick(now)
	}

	touchSample := s.lcd.Touch()
	ev := s.classifier.Classify(touchSample, s.sites.Site(), s.sites.Options(), now)

	// The pushbutton both dismisses the hint page and triggers measurements
	if button && analyzer != nil && s.sites.Site() != gui.SiteHint {
		analyzer.PressButton(now)
	}

	s.mu.Lock()
	result := s.result
	s.result = nil
	s.mu.Unlock()

	if changed := s.sites.Advance(ev, button, result); changed && analyzer != nil {
		analyzer.SetOptions(s.sites.Options().Snapshot())
	}

	s.lcd.Refresh()
}
