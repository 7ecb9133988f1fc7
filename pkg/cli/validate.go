package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/lumenchat/canopy/pkg/tenantconf"
)

func newValidateCommand() *Command {
	cmd := &Command{
		Name:        "validate",
		Description: "Strictly validate a tenant configuration document",
		Flags:       flag.NewFlagSet("validate", flag.ExitOnError),
		Run: func(args []string) error {
			return runValidate(os.Stdout, args)
		},
	}

	cmd.Flags.String("file", "", "Path to the configuration document")

	return cmd
}

func runValidate(out io.Writer, args []string) error {
	flags := flag.NewFlagSet("validate", flag.ContinueOnError)
	file := flags.String("file", "", "Path to the configuration document")

	if err := flags.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return fmt.Errorf("-file is required")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", *file, err)
	}

	issues := tenantconf.ValidateDocument(string(data))
	for _, issue := range issues {
		fmt.Fprintln(out, issue.String())
	}

	if tenantconf.HasErrors(issues) {
		return fmt.Errorf("%s has validation errors", *file)
	}
	fmt.Fprintf(out, "%s is valid (%d warnings)\n", *file, len(issues))
	return nil
}
