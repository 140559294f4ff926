// Command artctl uploads, lists and rates artwork on an artboard server.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/Clark-Hu/artboard/internal/apiclient"
)

type options struct {
	server  string
	timeout time.Duration
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "artctl",
		Short:         "Artboard command line client",
		Long:          `Upload media as artwork, list the gallery and submit ratings.`,
		SilenceUsage: true,
	}
	root.SetOut(out)
	root.PersistentFlags().StringVar(&opts.server, "server", envOr("ARTBOARD_URL", "http://localhost:3000"), "artboard server URL")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "request timeout")

	root.AddCommand(
		newUploadCmd(opts),
		newListCmd(opts),
		newRateCmd(opts),
	)
	return root
}

func (o *options) client() (*apiclient.Client, error) {
	client, err := apiclient.New(o.server, o.timeout, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid --server: %w", err)
	}
	return client, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
