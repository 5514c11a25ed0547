package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/loratools/lorafile/fileio"
	"github.com/loratools/lorafile/transfer"
)

func newSendCmd() *cobra.Command {
	flags := &radioFlags{}

	cmd := &cobra.Command{
		Use:   "send <path>",
		Short: "Broadcast a file over the radio link",
		Long: `Reads the file at path, frames it into fountain-coded blocks, and
broadcasts it repeatedly on the configured channel until interrupted.
There is no acknowledgement: send keeps transmitting the same file
until it is killed.`,
		Example: `  lorafile send --device /dev/ttyUSB0 report.pdf
  lorafile send --device /dev/ttyUSB0 --channel 60 --address 1234 report.pdf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSend(flags, args[0])
		},
	}

	addRadioFlags(cmd, flags)
	return cmd
}

func runSend(flags *radioFlags, path string) error {
	data, err := fileio.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	driver, err := openDriver(flags)
	if err != nil {
		return fmt.Errorf("open radio: %w", err)
	}

	scan, err := driver.Initialize()
	if err != nil {
		return fmt.Errorf("initialize radio: %w", err)
	}
	log.Printf("ambient scan: %+v", scan)

	sender, err := transfer.NewFileSender(driver, path, data)
	if err != nil {
		return fmt.Errorf("prepare sender: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	sender.Start()
	log.Printf("sending %s", path)

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-sigCh:
			log.Print("interrupted, shutting down")
			sender.Terminate()
			return sender.Shutdown()
		case <-ticker.C:
			if sender.Stopped() {
				return sender.Shutdown()
			}
		}
	}
}
