package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mt5crs/riskcore/risk"
)

func newStatusCmd(rc *RootConfig) *cobra.Command {
	var (
		orderLimit int
		eventLimit int
	)

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show kill-switch state and recent audit history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rc)
			if err != nil {
				return err
			}

			ks, err := risk.NewKillSwitch(cfg.Risk.KillSwitchLockFile, rc.Logger)
			if err != nil {
				return err
			}

			st := ks.Status()
			if st.Active {
				fmt.Printf("kill switch: ACTIVE since %s\n  reason: %s\n",
					st.ActivatedAt.Format("2006-01-02 15:04:05 UTC"), st.Reason)
			} else {
				fmt.Println("kill switch: inactive")
			}

			_, sqlJournal, err := openJournal(cfg)
			if err != nil {
				return err
			}
			if sqlJournal == nil {
				fmt.Println("journal: not configured")
				return nil
			}
			defer sqlJournal.Close()

			orders, err := sqlJournal.ListOrders(orderLimit)
			if err != nil {
				return err
			}
			fmt.Printf("\nrecent orders (%d):\n", len(orders))
			for _, o := range orders {
				line := fmt.Sprintf("  %s  %-6s %-4s %.2f @ %.5f  %s",
					o.OrderID, o.Symbol, o.Action, o.Volume, o.Price, o.Status)
				if o.BrokerTicket != "" {
					line += fmt.Sprintf("  ticket=%s filled %.2f @ %.5f",
						o.BrokerTicket, o.FilledVolume, o.FilledPrice)
				}
				fmt.Println(line)
			}

			events, err := sqlJournal.ListEvents(eventLimit)
			if err != nil {
				return err
			}
			fmt.Printf("\nrecent events (%d):\n", len(events))
			for _, e := range events {
				fmt.Printf("  %s  %-22s %s\n",
					e.Time.Format("2006-01-02 15:04:05"), e.Kind, e.Detail)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&orderLimit, "orders", 20, "Number of recent orders to show")
	cmd.Flags().IntVar(&eventLimit, "events", 20, "Number of recent events to show")
	return cmd
}
