package cli

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/lumenchat/canopy/pkg/tenantconf"
)

func newRenderCommand() *Command {
	cmd := &Command{
		Name:        "render",
		Description: "Render the scaffold document a new tenant would receive",
		Flags:       flag.NewFlagSet("render", flag.ExitOnError),
		Run: func(args []string) error {
			return runRender(os.Stdout, args)
		},
	}

	cmd.Flags.String("slug", "", "Tenant slug")

	return cmd
}

func runRender(out io.Writer, args []string) error {
	flags := flag.NewFlagSet("render", flag.ContinueOnError)
	slug := flags.String("slug", "", "Tenant slug")

	if err := flags.Parse(args); err != nil {
		return err
	}
	if *slug == "" {
		return fmt.Errorf("-slug is required")
	}

	fmt.Fprint(out, tenantconf.DefaultDocument(*slug))
	return nil
}
