package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

func (cli *commandLine) seed() error {
	report, err := cli.clsSvc.SeedDefaults(context.Background())
	if err != nil {
		return errors.Wrap(err, "seeding defaults")
	}
	fmt.Fprintf(cli.out, "classes created: %s\n", joinOrNone(report.CreatedClasses))
	fmt.Fprintf(cli.out, "templates created: %s\n", joinOrNone(report.CreatedTemplates))
	if len(report.Skipped) > 0 {
		fmt.Fprintf(cli.out, "templates skipped: %s\n", strings.Join(report.Skipped, ", "))
	}
	return nil
}

func joinOrNone(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
