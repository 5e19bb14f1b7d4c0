// tofmon attaches to the flight controller's telemetry UART and
// provides live statistics over the dual ranging stream, with optional
// Teleplot mirroring for plotting.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"flytof/host/monitor"
	"flytof/host/serial"
)

var (
	device   = flag.String("device", "/dev/ttyACM0", "serial device path")
	baud     = flag.Int("baud", 115200, "baud rate (ignored for USB CDC)")
	teleplot = flag.Bool("teleplot", false, "mirror samples to stdout in Teleplot format")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud

	port, err := serial.Open(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tofmon: %v\n", err)
		return 1
	}
	defer port.Close()

	mon := monitor.New()
	if *teleplot {
		mon.Teleplot = os.Stdout
	}

	// The reader goroutine surfaces stream failure through the channel
	// so the port still closes on the way out.
	streamErr := make(chan error, 1)
	go func() {
		err := mon.Run(port)
		if err != nil {
			fmt.Fprintf(os.Stderr, "\ntofmon: stream closed: %v\n", err)
		}
		streamErr <- err
	}()

	fmt.Printf("connected to %s, type 'help' for commands\n", *device)
	console := monitor.NewConsole(mon, os.Stdout)
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		quit, err := console.Execute(scanner.Text())
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
		if quit {
			break
		}
	}

	select {
	case err := <-streamErr:
		if err != nil {
			return 1
		}
	default:
	}
	return 0
}
