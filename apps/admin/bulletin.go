package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/bulletin/core"
	"github.com/trezcool/bulletin/core/bulletin"
	"github.com/trezcool/bulletin/core/user"
	pdfsvc "github.com/trezcool/bulletin/services/pdf"
)

// writeBulletin writes the PDF bulletin of the student `uname` to `out` (bulletin.Filename by default).
func (cli *commandLine) writeBulletin(uname, period, out string) error {
	ctx := context.Background()

	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{Username: core.CleanString(uname, true /* lower */)})
	if err != nil {
		return err
	}
	b, err := cli.bltSvc.Compute(ctx, usr.ID, period)
	if err != nil {
		return err
	}

	if out == "" {
		out = bulletin.Filename(b)
	}
	if err = pdfsvc.WriteFile(out, cli.renderer, b); err != nil {
		return errors.Wrap(err, "writing bulletin")
	}
	fmt.Fprintf(cli.out, "%s: %s, average %s (%s)\n", out, b.Period, bulletin.FormatAverage(b.Average), b.Appreciation)
	return nil
}
