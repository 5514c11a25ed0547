// Command lorafile sends or receives a single file over a LoRa module
// attached to a serial UART.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lorafile",
		Short: "Send or receive a file over a LoRa serial link",
		Long: `lorafile transfers a single file over a 915 MHz LoRa module attached
to the host over a serial UART, broadcasting fountain-coded blocks to
whichever receivers are listening on the same channel. There is no
handshake and no per-receiver acknowledgement.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(newSendCmd())
	rootCmd.AddCommand(newReceiveCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
