// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/jeranaias/realty-tui/internal/config"
)

// HandleLocalities lists the localities the service has data for.
func HandleLocalities(args Args) error {
	return runLocalities(context.Background(), os.Stdout, config.Global(), args)
}

func runLocalities(ctx context.Context, w io.Writer, cfg *config.Config, args Args) error {
	locs, err := newClient(cfg).Localities(ctx)
	if err != nil {
		return NewCommandError("localities", "list", "", err)
	}

	if args.JSON {
		return NewJSONResponse("localities", LocalitiesData{Count: len(locs), Localities: locs}).Write(w)
	}

	if !args.Quiet {
		fmt.Fprintln(w, TitleStyle.Render(fmt.Sprintf("Known localities (%d)", len(locs))))
	}
	for _, l := range locs {
		fmt.Fprintln(w, l)
	}
	return nil
}
