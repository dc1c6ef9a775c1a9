package main

import (
	"fmt"
	"io"
	"strconv"

	"mediamatrixhub/internal/directory"
	"mediamatrixhub/internal/services/dto"

	"github.com/spf13/cobra"
)

func newRegistrationCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newImportDumpCommand(ctx),
		newListEnabledEventsCommand(ctx),
		newNotifyCommand(ctx, "send-reminders", "Email participants of the events happening in N days (default 1)", false),
		newNotifyCommand(ctx, "send-notice", "Email the postponement notice to participants of the events in N days (default 0)", true),
		newDepartmentsCommand(ctx),
	}
}

func newImportDumpCommand(ctx *commandContext) *cobra.Command {
	var reset bool
	cmd := &cobra.Command{
		Use:   "import-pers-dump <file>",
		Short: "Import subscribers from the personnel JSON dump",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			persons, err := directory.LoadPersons(args[0])
			if err != nil {
				return err
			}
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			report, err := a.Services.RegistrationService.ImportPersonDump(cmd.Context(), a.DB, persons, reset)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, m := range report.NotValid {
				fmt.Fprintf(out, "matricola non valida: %s\n", m)
			}
			fmt.Fprintf(out, "created: %d, existing: %d, not valid: %d, disabled: %d\n",
				report.Created, report.Existing, len(report.NotValid), report.Disabled)
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "Disable subscribers missing from the dump")
	return cmd
}

func newListEnabledEventsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list-enabled-events",
		Short: "List enabled events with their participation counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			events, lines, err := a.Services.RegistrationService.ListEnabledEvents(a.DB)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(out, "No enabled events found.")
				return nil
			}
			rows := make([][]string, 0, len(events))
			for _, e := range events {
				rows = append(rows, []string{
					strconv.FormatUint(uint64(e.ID), 10),
					e.Title,
					e.FormattedDate(),
					strconv.FormatInt(e.ParticipationCount, 10),
				})
			}
			fmt.Fprintln(out, renderTable([]string{"ID", "Title", "Date", "Participants"}, rows,
				[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight}))
			fmt.Fprintln(out, "Enabled events with participation counts:")
			for _, l := range lines {
				fmt.Fprintln(out, l)
			}
			return nil
		},
	}
}

func newNotifyCommand(ctx *commandContext, use, short string, notice bool) *cobra.Command {
	var days int
	var debug bool
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			var daysArg *int
			if cmd.Flags().Changed("days") {
				daysArg = &days
			}
			svc := a.Services.NotificationService
			var report *dto.NotificationReport
			if notice {
				report, err = svc.SendPostponementNotice(cmd.Context(), a.DB, daysArg, debug)
			} else {
				report, err = svc.SendReminders(cmd.Context(), a.DB, daysArg, debug)
			}
			if err != nil {
				return err
			}
			printNotificationReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().IntVar(&days, "days", 0, "Number of days to look ahead")
	cmd.Flags().BoolVar(&debug, "debug", false, "Log the messages instead of sending them")
	return cmd
}

func printNotificationReport(out io.Writer, report *dto.NotificationReport) {
	if report.Debug {
		fmt.Fprintln(out, "Debug mode enabled")
	}
	if len(report.Events) == 0 {
		fmt.Fprintln(out, "No enabled events found.")
		return
	}
	for _, e := range report.Events {
		fmt.Fprintf(out, "#%d, %s: %d email\n", e.EventID, e.Title, e.Sent)
		for _, f := range e.Failed {
			fmt.Fprintf(out, "  error sending email to %s\n", f)
		}
	}
	fmt.Fprintln(out, "Done.")
}

func newDepartmentsCommand(ctx *commandContext) *cobra.Command {
	var sendEmail bool
	var dumpPath string
	cmd := &cobra.Command{
		Use:   "show-last-event-departments",
		Short: "Count the participants of the last event per department",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := ctx.ensureApp()
			if err != nil {
				return err
			}
			if dumpPath == "" {
				dumpPath = a.Config.Registration.PersonsDumpPath
			}
			if dumpPath == "" {
				return fmt.Errorf("no person dump: pass --dump or set registration.persons_dump_path")
			}
			persons, err := directory.LoadPersons(dumpPath)
			if err != nil {
				return err
			}
			report, err := a.Services.NotificationService.DepartmentReport(cmd.Context(), a.DB, persons, sendEmail)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Departments of the last event %q:\n", report.Event.Title)
			rows := make([][]string, 0, len(report.Counts))
			for _, c := range report.Counts {
				rows = append(rows, []string{c.Department, strconv.Itoa(c.Count)})
			}
			fmt.Fprintln(out, renderTable([]string{"Department", "Participants"}, rows,
				[]columnAlignment{alignLeft, alignRight}))
			if report.Sent {
				fmt.Fprintln(out, "Report sent to the monitor addresses.")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&sendEmail, "send-email", false, "Email the report to the monitor addresses")
	cmd.Flags().StringVar(&dumpPath, "dump", "", "Person dump path (defaults to registration.persons_dump_path)")
	return cmd
}
