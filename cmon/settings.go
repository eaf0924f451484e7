package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/itohio/gocmon/pkg/acquire"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createCalibrationTab(state),
		createMeasurementTab(state),
		createMockTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 500))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 500))
	d.Show()
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	ports, err := acquire.Ports()
	portOptions := []string{}
	portMap := make(map[string]string) // Map display name to actual port name

	if err == nil {
		for _, port := range ports {
			displayName := port.Name
			if port.Description != "" && port.Description != port.Name {
				displayName = fmt.Sprintf("%s (%s)", port.Name, port.Description)
			}
			portOptions = append(portOptions, displayName)
			portMap[displayName] = port.Name
		}
	}

	// Add current port if not in list
	currentPort := state.cfg.Serial.Port
	currentDisplay := currentPort
	found := false
	for _, opt := range portOptions {
		if portMap[opt] == currentPort {
			currentDisplay = opt
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
		portMap[currentPort] = currentPort
		currentDisplay = currentPort
	}

	portSelect := widget.NewSelect(portOptions, func(selected string) {})
	if currentDisplay != "" {
		portSelect.SetSelected(currentDisplay)
	}

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
		},
		OnSubmit: func() {
			if portSelect.Selected == "" {
				return
			}
			selectedPort := portMap[portSelect.Selected]
			if selectedPort == "" {
				selectedPort = portSelect.Selected
			}

			portChanged := state.cfg.Serial.Port != selectedPort

			state.mu.Lock()
			wasConnected := state.device != nil && state.device.IsConnected()
			state.mu.Unlock()

			state.cfg.Serial.Port = selectedPort
			if err := state.cfg.Save("config.yaml"); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
				return
			}

			// Reconnect on the new port
			if portChanged && wasConnected {
				state.disconnect()
				handleConnect(state)
			}
		},
	}

	return container.NewTabItem("Serial", form)
}

// createCalibrationTab creates the Calibration configuration tab. The
// lookup tables themselves are edited in the config file; only the scalar
// constants are exposed here.
func createCalibrationTab(state *appState) *container.TabItem {
	voltsPerStepEntry := widget.NewEntry()
	voltsPerStepEntry.SetText(fmt.Sprintf("%.10f", state.cfg.Calibration.VoltsPerStep))

	opAmpGainEntry := widget.NewEntry()
	opAmpGainEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Calibration.OpAmpGain))

	hallGainEntry := widget.NewEntry()
	hallGainEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Calibration.HallGain))

	fieldConstantEntry := widget.NewEntry()
	fieldConstantEntry.SetText(fmt.Sprintf("%.3f", state.cfg.Calibration.FieldConstant))

	currentMaxDistEntry := widget.NewEntry()
	currentMaxDistEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Calibration.CurrentMaxDistMM))

	detectionLimitEntry := widget.NewEntry()
	detectionLimitEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Calibration.DetectionLimitMM))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "ADC Volts per Step", Widget: voltsPerStepEntry},
			{Text: "Op-Amp Gain", Widget: opAmpGainEntry},
			{Text: "Hall Gain", Widget: hallGainEntry},
			{Text: "Field Constant", Widget: fieldConstantEntry},
			{Text: "Current Max Distance (mm)", Widget: currentMaxDistEntry},
			{Text: "Detection Limit (mm)", Widget: detectionLimitEntry},
		},
		OnSubmit: func() {
			if v, err := strconv.ParseFloat(voltsPerStepEntry.Text, 32); err == nil {
				state.cfg.Calibration.VoltsPerStep = float32(v)
			}
			if v, err := strconv.ParseFloat(opAmpGainEntry.Text, 32); err == nil {
				state.cfg.Calibration.OpAmpGain = float32(v)
			}
			if v, err := strconv.ParseFloat(hallGainEntry.Text, 32); err == nil {
				state.cfg.Calibration.HallGain = float32(v)
			}
			if v, err := strconv.ParseFloat(fieldConstantEntry.Text, 32); err == nil {
				state.cfg.Calibration.FieldConstant = float32(v)
			}
			if v, err := strconv.ParseFloat(currentMaxDistEntry.Text, 32); err == nil {
				state.cfg.Calibration.CurrentMaxDistMM = float32(v)
			}
			if v, err := strconv.ParseFloat(detectionLimitEntry.Text, 32); err == nil {
				state.cfg.Calibration.DetectionLimitMM = float32(v)
			}
			if err := state.cfg.Save("config.yaml"); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
			}
		},
	}

	return container.NewTabItem("Calibration", form)
}

// createMeasurementTab creates the Measurement configuration tab.
func createMeasurementTab(state *appState) *container.TabItem {
	scanTimeoutEntry := widget.NewEntry()
	scanTimeoutEntry.SetText(state.cfg.Measurement.ScanTimeout.String())

	touchSettleEntry := widget.NewEntry()
	touchSettleEntry.SetText(state.cfg.Measurement.TouchSettle.String())

	pollIntervalEntry := widget.NewEntry()
	pollIntervalEntry.SetText(state.cfg.Measurement.PollInterval.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Scan Timeout", Widget: scanTimeoutEntry},
			{Text: "Touch Settle", Widget: touchSettleEntry},
			{Text: "Poll Interval", Widget: pollIntervalEntry},
		},
		OnSubmit: func() {
			if d, err := time.ParseDuration(scanTimeoutEntry.Text); err == nil {
				state.cfg.Measurement.ScanTimeout = d
			}
			if d, err := time.ParseDuration(touchSettleEntry.Text); err == nil {
				state.cfg.Measurement.TouchSettle = d
			}
			if d, err := time.ParseDuration(pollIntervalEntry.Text); err == nil {
				state.cfg.Measurement.PollInterval = d
			}
			if err := state.cfg.Save("config.yaml"); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
			}
		},
	}

	return container.NewTabItem("Measurement", form)
}

// createMockTab creates the Mock device configuration tab.
func createMockTab(state *appState) *container.TabItem {
	wpcLeftEntry := widget.NewEntry()
	wpcLeftEntry.SetText(fmt.Sprintf("%.0f", state.cfg.Mock.WpcAmpLeft))

	wpcRightEntry := widget.NewEntry()
	wpcRightEntry.SetText(fmt.Sprintf("%.0f", state.cfg.Mock.WpcAmpRight))

	hallLeftEntry := widget.NewEntry()
	hallLeftEntry.SetText(fmt.Sprintf("%.0f", state.cfg.Mock.HallAmpLeft))

	hallRightEntry := widget.NewEntry()
	hallRightEntry.SetText(fmt.Sprintf("%.0f", state.cfg.Mock.HallAmpRight))

	noiseLevelEntry := widget.NewEntry()
	noiseLevelEntry.SetText(fmt.Sprintf("%.1f", state.cfg.Mock.NoiseLevel))

	scanDelayEntry := widget.NewEntry()
	scanDelayEntry.SetText(state.cfg.Mock.ScanDelay.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "WPC Amplitude Left (steps)", Widget: wpcLeftEntry},
			{Text: "WPC Amplitude Right (steps)", Widget: wpcRightEntry},
			{Text: "Hall Amplitude Left (steps)", Widget: hallLeftEntry},
			{Text: "Hall Amplitude Right (steps)", Widget: hallRightEntry},
			{Text: "Noise Level (steps)", Widget: noiseLevelEntry},
			{Text: "Scan Delay", Widget: scanDelayEntry},
		},
		OnSubmit: func() {
			if v, err := strconv.ParseFloat(wpcLeftEntry.Text, 32); err == nil {
				state.cfg.Mock.WpcAmpLeft = float32(v)
			}
			if v, err := strconv.ParseFloat(wpcRightEntry.Text, 32); err == nil {
				state.cfg.Mock.WpcAmpRight = float32(v)
			}
			if v, err := strconv.ParseFloat(hallLeftEntry.Text, 32); err == nil {
				state.cfg.Mock.HallAmpLeft = float32(v)
			}
			if v, err := strconv.ParseFloat(hallRightEntry.Text, 32); err == nil {
				state.cfg.Mock.HallAmpRight = float32(v)
			}
			if v, err := strconv.ParseFloat(noiseLevelEntry.Text, 32); err == nil {
				state.cfg.Mock.NoiseLevel = float32(v)
			}
			if d, err := time.ParseDuration(scanDelayEntry.Text); err == nil {
				state.cfg.Mock.ScanDelay = d
			}
			if err := state.cfg.Save("config.yaml"); err != nil {
				dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
			}
		},
	}

	return container.NewTabItem("Mock", form)
}
