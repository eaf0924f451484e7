//go:build tinygo

package main

import "machine"

const (
	// Sampling configuration
	// 60 samples at 600 Hz span five 50 Hz mains periods per scan
	SAMPLES_PER_CHANNEL = 60
	SAMPLE_INTERVAL_US  = 1667

	// ADC configuration
	ADC_REFERENCE_MV = 3300 // Reference voltage in millivolts (3.3V)
	ADC_RESOLUTION   = 12   // ADC resolution in bits (12-bit = 0-4095)

	// Sensor pins: one pickup coil pair for cable position, one hall
	// sensor pair for current
	PIN_WPC_LEFT   = machine.A1
	PIN_WPC_RIGHT  = machine.A2
	PIN_HALL_LEFT  = machine.A3
	PIN_HALL_RIGHT = machine.A10

	// Serial configuration
	// Reply format: "kind,l0,r0,l1,r1,...\n" with 120 readings of up to
	// 4 digits = ~620 bytes per scan. Scans are request driven and far
	// apart, so 115200 baud clears a line in ~55ms.
	UART_BAUD_RATE = 115200
)
