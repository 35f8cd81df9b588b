package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/printdesk/print-agent/internal/agent"
	"github.com/printdesk/print-agent/internal/usb"
	"github.com/printdesk/print-agent/pkg/printjob"
)

func main() {
	var (
		jobPath = flag.String("job", "", "Path to a print job JSON file")
		vid     = flag.Uint("vid", 0, "Override the job's vendor id")
		pid     = flag.Uint("pid", 0, "Override the job's product id")
		timeout = flag.Duration("timeout", 30*time.Second, "Overall job timeout")
	)
	flag.Parse()

	if *jobPath == "" {
		printUsage()
		os.Exit(1)
	}

	info, err := printjob.ParseFile(*jobPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *vid != 0 {
		info.VID = uint16(*vid)
	}
	if *pid != 0 {
		info.PID = uint16(*pid)
	}

	service := agent.New(usb.NewTransport())

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	res := service.Submit(ctx, info)
	fmt.Println(res.Status)

	if !res.OK {
		fmt.Fprintf(os.Stderr, "Print failed (%s): %s\n", res.Kind, res.Err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: print-cli -job <file.json> [-vid N] [-pid N]")
	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, "Sends a print job straight to a USB receipt printer.")
	fmt.Fprintln(os.Stderr, "The job file holds a JSON PrintInfo: name, vid, pid, lines.")
	flag.PrintDefaults()
}
