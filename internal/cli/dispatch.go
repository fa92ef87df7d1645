package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/institutofocos/consultorpro-sub003/internal/webhook"
)

func newDispatchCommand() *cobra.Command {
	var (
		once        bool
		retryFailed bool
	)

	cmd := &cobra.Command{
		Use:   "dispatch",
		Short: "Deliver queued webhook events",
		Long: `dispatch drains the webhook outbox, POSTing pending events to the
endpoint configured under [webhook]. By default it keeps polling until
interrupted; --once runs a single cycle and exits.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, s, err := setup()
			if err != nil {
				return err
			}
			defer s.Close()

			log := slog.New(slog.NewTextHandler(os.Stderr, nil))
			d := webhook.NewDispatcher(s, cfg.Webhook, log)

			if retryFailed {
				n, err := d.RetryFailed()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Requeued %d failed event(s)\n", n)
			}

			if !cfg.Webhook.Enabled() {
				fmt.Fprintln(cmd.OutOrStdout(), "No webhook endpoint configured; nothing to deliver.")
				return nil
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if once {
				delivered, err := d.DispatchPending(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Delivered %d event(s)\n", delivered)
				return nil
			}

			err = d.Run(ctx)
			if err == context.Canceled {
				return nil
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "run one dispatch cycle and exit")
	cmd.Flags().BoolVar(&retryFailed, "retry-failed", false, "requeue failed events before dispatching")

	return cmd
}
