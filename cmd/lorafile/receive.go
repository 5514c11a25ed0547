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

func newReceiveCmd() *cobra.Command {
	flags := &radioFlags{}

	cmd := &cobra.Command{
		Use:   "receive",
		Short: "Listen for a broadcast file and write it to disk",
		Long: `Listens on the configured channel for fountain-coded blocks and
reassembles the first file whose integrity check passes, writing it
to the current directory under its delivered name. Exits after one
successful delivery, or on interrupt.`,
		Example: `  lorafile receive --device /dev/ttyUSB0
  lorafile receive --device /dev/ttyUSB0 --channel 60 --address 1234`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReceive(flags)
		},
	}

	addRadioFlags(cmd, flags)
	return cmd
}

func runReceive(flags *radioFlags) error {
	driver, err := openDriver(flags)
	if err != nil {
		return fmt.Errorf("open radio: %w", err)
	}

	scan, err := driver.Initialize()
	if err != nil {
		return fmt.Errorf("initialize radio: %w", err)
	}
	log.Printf("ambient scan: %+v", scan)

	delivered := make(chan transfer.ProgressEvent, 1)
	receiver := transfer.NewFileReceiver(driver, func(e transfer.ProgressEvent) {
		log.Printf("progress: %.0f%%", e.Progress*100)
		if e.Progress == 1.0 {
			select {
			case delivered <- e:
			default:
			}
		}
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	receiver.Start()
	log.Print("listening")

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-sigCh:
			log.Print("interrupted, shutting down")
			receiver.Terminate()
			return receiver.Shutdown()
		case event := <-delivered:
			receiver.Terminate()
			if err := receiver.Shutdown(); err != nil {
				return err
			}
			if err := fileio.WriteBufferToFile(event.Name, event.Data); err != nil {
				return fmt.Errorf("write %s: %w", event.Name, err)
			}
			log.Printf("received %s (%d bytes)", event.Name, len(event.Data))
			return nil
		case <-ticker.C:
			if receiver.Stopped() {
				return receiver.Shutdown()
			}
		}
	}
}
