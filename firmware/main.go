//go:build tinygo

//go:generate tinygo flash -target=xiao

package main

import (
	"machine"
	"time"
)

var (
	adcWpcLeft   machine.ADC
	adcWpcRight  machine.ADC
	adcHallLeft  machine.ADC
	adcHallRight machine.ADC
	uart         = machine.UART0

	// Sample buffers for one scan
	leftBuf  [SAMPLES_PER_CHANNEL]uint16
	rightBuf [SAMPLES_PER_CHANNEL]uint16

	// Serial buffer for reading command lines
	serialBuffer [16]byte
	serialPos    int
)

func main() {
	// Configure ADC pins and set up ADCs with highest resolution
	PIN_WPC_LEFT.Configure(machine.PinConfig{Mode: machine.PinInput})
	PIN_WPC_RIGHT.Configure(machine.PinConfig{Mode: machine.PinInput})
	PIN_HALL_LEFT.Configure(machine.PinConfig{Mode: machine.PinInput})
	PIN_HALL_RIGHT.Configure(machine.PinConfig{Mode: machine.PinInput})

	adcWpcLeft = machine.ADC{Pin: PIN_WPC_LEFT}
	adcWpcRight = machine.ADC{Pin: PIN_WPC_RIGHT}
	adcHallLeft = machine.ADC{Pin: PIN_HALL_LEFT}
	adcHallRight = machine.ADC{Pin: PIN_HALL_RIGHT}

	adcConfig := machine.ADCConfig{
		Reference:  ADC_REFERENCE_MV,
		Resolution: ADC_RESOLUTION,
	}

	adcWpcLeft.Configure(adcConfig)
	adcWpcRight.Configure(adcConfig)
	adcHallLeft.Configure(adcConfig)
	adcHallRight.Configure(adcConfig)

	// Configure UART for scan commands
	uart.Configure(machine.UARTConfig{
		BaudRate: UART_BAUD_RATE,
	})

	// Main loop: wait for a scan command, burst-sample, reply
	for {
		processSerial()
		time.Sleep(100 * time.Microsecond)
	}
}

func processSerial() {
	// Read available bytes from serial
	for uart.Buffered() > 0 {
		data, err := uart.ReadByte()
		if err != nil {
			break
		}

		// Check for newline (end of line)
		if data == '\n' || data == '\r' {
			handleCommand(string(serialBuffer[:serialPos]))
			serialPos = 0
			continue
		}

		// Ignore whitespace
		if data == ' ' || data == '\t' {
			continue
		}

		if serialPos < len(serialBuffer) {
			serialBuffer[serialPos] = data
			serialPos++
		}
		// Overlong lines are truncated and will fail the command match
	}
}

func handleCommand(cmd string) {
	switch cmd {
	case "wpc":
		runScan(&adcWpcLeft, &adcWpcRight)
		printScan("wpc")
	case "hall":
		runScan(&adcHallLeft, &adcHallRight)
		printScan("hall")
	case "":
		// Stray newline
	default:
		print("err,unknown command\n")
	}
}

// runScan burst-samples one sensor pair into the scan buffers. Both
// channels are read back to back inside each step so they stay aligned
// on the sensed waveform.
func runScan(left, right *machine.ADC) {
	next := time.Now()
	for i := 0; i < SAMPLES_PER_CHANNEL; i++ {
		leftBuf[i] = left.Get() >> 4 // 16-bit reading to 12-bit range
		rightBuf[i] = right.Get() >> 4
		next = next.Add(SAMPLE_INTERVAL_US * time.Microsecond)
		for time.Now().Before(next) {
		}
	}
}

// printScan writes one interleaved CSV scan line.
func printScan(kind string) {
	print(kind)
	for i := 0; i < SAMPLES_PER_CHANNEL; i++ {
		print(",")
		print(leftBuf[i])
		print(",")
		print(rightBuf[i])
	}
	print("\n")
}
