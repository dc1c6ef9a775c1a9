package main

import (
	"fmt"

	"mediamatrixhub/internal/directory"

	"github.com/spf13/cobra"
)

// newShowSubStructuresCommand works on the dump files alone and needs no
// database.
func newShowSubStructuresCommand() *cobra.Command {
	var personsPath string
	cmd := &cobra.Command{
		Use:   "show-sub-structures <file> <uaf>",
		Short: "List a structure and every structure below it",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			structures, err := directory.LoadStructures(args[0])
			if err != nil {
				return err
			}
			uafs := structures.Descendants(args[1])
			rows := make([][]string, 0, len(uafs))
			for _, u := range uafs {
				rows = append(rows, []string{u, structures.Name(u)})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"UAF", "Name"}, rows, nil))

			if personsPath == "" {
				return nil
			}
			persons, err := directory.LoadPersons(personsPath)
			if err != nil {
				return err
			}
			employees := directory.EmployeesOf(persons, uafs)
			fmt.Fprintf(out, "%d employees in %d structures\n", len(employees), len(uafs))
			return nil
		},
	}
	cmd.Flags().StringVar(&personsPath, "persons", "", "Person dump used to count the employees")
	return cmd
}
