package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/lumenchat/canopy/pkg/tenantconf"
)

func newResolveCommand() *Command {
	cmd := &Command{
		Name:        "resolve",
		Description: "Merge a document over the strict defaults and print the result",
		Flags:       flag.NewFlagSet("resolve", flag.ExitOnError),
		Run: func(args []string) error {
			return runResolve(os.Stdout, args)
		},
	}

	cmd.Flags.String("file", "", "Path to the configuration document")

	return cmd
}

// runResolve applies the same lenient parse + merge the server uses, so an
// operator can see exactly what a document resolves to before uploading it.
func runResolve(out io.Writer, args []string) error {
	flags := flag.NewFlagSet("resolve", flag.ContinueOnError)
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

	cfg := tenantconf.MergeOverDefaults(tenantconf.ParseLenient(string(data)), tenantconf.StrictDefaults())

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(cfg)
}
