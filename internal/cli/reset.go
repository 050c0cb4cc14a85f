package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mt5crs/riskcore/journal"
	"github.com/mt5crs/riskcore/risk"
)

func newResetCmd(rc *RootConfig) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset the kill switch and resume trading",
		Long: `Clears the kill-switch lock file. Run this only after the condition
that tripped the switch has been investigated. Any authorization of
who may reset belongs to the surrounding ops tooling; the token is
recorded for the audit trail, not validated here.`,
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
			if !st.Active {
				fmt.Println("kill switch already inactive, nothing to do")
				return ks.Reset(token)
			}

			if err := ks.Reset(token); err != nil {
				return err
			}

			j, sqlJournal, err := openJournal(cfg)
			if err == nil {
				_ = j.RecordEvent(journal.EventRecord{
					Time: time.Now().UTC(),
					Kind: "KILL_SWITCH_RESET",
					Detail: fmt.Sprintf("was active since %s, reason: %s",
						st.ActivatedAt.Format(time.RFC3339), st.Reason),
				})
				if sqlJournal != nil {
					sqlJournal.Close()
				}
			}

			fmt.Println("kill switch reset, trading may resume")
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Admin token recorded in the audit trail")
	return cmd
}
