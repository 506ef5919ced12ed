package cli

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// NewScheduleCmd groups the cron-friendly scheduling commands.
func NewScheduleCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Maintain the quiz schedule",
	}
	cmd.AddCommand(newAutoFillCmd(configPath), newActivateCmd(configPath))
	return cmd
}

func newAutoFillCmd(configPath *string) *cobra.Command {
	var horizon int
	cmd := &cobra.Command{
		Use:   "autofill",
		Short: "Assign approved questions to upcoming Monday and Thursday slots",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			assignments, err := rt.services.Scheduler.AutoFill(cmd.Context(), horizon)
			if err != nil {
				return err
			}
			for _, a := range assignments {
				rt.log.WithFields(logrus.Fields{
					"date":        a.Date,
					"kind":        a.Kind,
					"question_id": a.QuestionID,
				}).Info("slot scheduled")
			}
			cmd.Printf("scheduled %d slot(s)\n", len(assignments))
			return nil
		},
	}
	cmd.Flags().IntVar(&horizon, "horizon", 0, "days ahead to fill (0 uses the configured horizon)")
	return cmd
}

func newActivateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "activate",
		Short: "Make today's entry the live quiz",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.Close()

			activated, err := rt.services.Scheduler.ActivateToday(cmd.Context())
			if err != nil {
				return err
			}
			if activated {
				cmd.Println("today's quiz is live")
			} else {
				cmd.Println("no quiz scheduled for today")
			}
			return nil
		},
	}
}
