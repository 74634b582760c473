package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/jbaikge/boneless/internal/gateway/rest"
)

// cli holds what every subcommand shares once flags are parsed
type cli struct {
	gateway  string
	logLevel string
	timeout  time.Duration

	in     io.Reader
	out    io.Writer
	errOut io.Writer

	logger *slog.Logger
	client *rest.Client
	http   *http.Client
}

func newRootCmd(defaultGateway string, in io.Reader, out, errOut io.Writer) *cobra.Command {
	c := &cli{in: in, out: out, errOut: errOut}

	root := &cobra.Command{
		Use:   "boneless",
		Short: "Boneless CMS admin client",
		Long: `Boneless talks to a content gateway over its REST API.

Examples:
  # Back up every class definition
  boneless classes export -o classes.json

  # Recreate them on another gateway, parents first
  boneless --gateway https://cms.example.com/api classes import classes.json

  # Create a document, uploading its cover image
  boneless documents create --class <id> --path /posts/first \
    --set title="First post" --file cover=./cover.jpg`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	root.PersistentFlags().StringVar(&c.gateway, "gateway", defaultGateway, "Gateway base URL")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "warn", "Log level: debug|info|warn|error")
	root.PersistentFlags().DurationVar(&c.timeout, "timeout", 2*time.Minute, "HTTP timeout per request")

	root.AddCommand(newClassesCmd(c))
	root.AddCommand(newTemplatesCmd(c))
	root.AddCommand(newDocumentsCmd(c))
	return root
}

func (c *cli) setup() error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", c.logLevel, err)
	}
	if c.gateway == "" {
		return fmt.Errorf("--gateway is required")
	}

	c.logger = slog.New(slog.NewTextHandler(c.errOut, &slog.HandlerOptions{Level: level}))
	c.http = &http.Client{Timeout: c.timeout}
	c.client = rest.NewClient(c.gateway, c.http, c.logger)
	return nil
}

func (c *cli) printJSON(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
