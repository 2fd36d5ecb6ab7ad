package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	cliadapter "github.com/example/boxkeep/internal/adapters/cli"
	"github.com/example/boxkeep/internal/ports/primary"
	"github.com/example/boxkeep/internal/wire"
)

const shellHelp = `Commands:
  place <serial>...                 place items in the next free cells
  retrieve <id>...                  mark committed items as taken out
  delete <id>...                    delete records and free their cells
  pending                           list placements not yet committed
  search [serial=<p>] [date=<d>]    find committed items in storage
  grid                              show occupancy
  save                              save without committing
  commit                            commit pending placements and save
  report [date=<d>] [out=<file>]    export the items placed on a day
  help                              show this help
  quit                              leave the shell`

// ShellCmd returns the shell command
func ShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Work interactively; changes are kept until saved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShell(commandContext(), wire.WarehouseService(), cmd.InOrStdin(), cmd.OutOrStdout(), time.Now)
		},
	}
}

// shell is one interactive session over a WarehouseService.
type shell struct {
	svc     primary.WarehouseService
	adapter *cliadapter.WarehouseAdapter
	in      *bufio.Scanner
	out     io.Writer
	now     func() time.Time
}

var errQuit = errors.New("quit")

func runShell(ctx context.Context, svc primary.WarehouseService, in io.Reader, out io.Writer, now func() time.Time) error {
	sh := &shell{
		svc:     svc,
		adapter: cliadapter.NewWarehouseAdapter(svc, out),
		in:      bufio.NewScanner(in),
		out:     out,
		now:     now,
	}

	if _, err := sh.adapter.Init(ctx, now()); err != nil {
		return err
	}
	fmt.Fprintln(out, "Type help for commands.")

	for {
		fmt.Fprint(out, "boxkeep> ")
		if !sh.in.Scan() {
			fmt.Fprintln(out)
			break
		}
		fields := strings.Fields(sh.in.Text())
		if len(fields) == 0 {
			continue
		}

		err := sh.dispatch(ctx, fields[0], fields[1:])
		if errors.Is(err, errQuit) {
			break
		}
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
	if err := sh.in.Err(); err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	return sh.confirmSave(ctx)
}

func (sh *shell) dispatch(ctx context.Context, name string, args []string) error {
	switch name {
	case "place":
		if len(args) == 0 {
			return fmt.Errorf("usage: place <serial>...")
		}
		_, err := sh.adapter.Place(ctx, args, sh.now())
		return err
	case "retrieve":
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		_, err = sh.adapter.Retrieve(ctx, ids, sh.now())
		return err
	case "delete":
		ids, err := parseIDs(args)
		if err != nil {
			return err
		}
		return sh.adapter.Delete(ctx, ids)
	case "pending":
		_, err := sh.adapter.Pending(ctx)
		return err
	case "search":
		opts, err := keyValues(args, "serial", "date")
		if err != nil {
			return err
		}
		filters := primary.SearchFilters{SerialPrefix: opts["serial"]}
		if d, ok := opts["date"]; ok {
			day, err := parseDay(d, sh.now())
			if err != nil {
				return err
			}
			filters.PlacedOn = &day
		}
		_, err = sh.adapter.Search(ctx, filters)
		return err
	case "grid":
		_, err := sh.adapter.Grid(ctx)
		return err
	case "save":
		return sh.adapter.Save(ctx)
	case "commit":
		return sh.adapter.Commit(ctx, sh.now())
	case "report":
		opts, err := keyValues(args, "date", "out")
		if err != nil {
			return err
		}
		day, err := parseDay(opts["date"], sh.now())
		if err != nil {
			return err
		}
		dest := opts["out"]
		if dest == "" {
			dest = defaultReportName(day)
		}
		_, err = sh.adapter.Report(ctx, day, dest)
		return err
	case "help", "?":
		fmt.Fprintln(sh.out, shellHelp)
		return nil
	case "quit", "exit":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q (type help)", name)
	}
}

// confirmSave asks before discarding unsaved changes.
func (sh *shell) confirmSave(ctx context.Context) error {
	if !sh.svc.Dirty() {
		return nil
	}

	fmt.Fprint(sh.out, "Save changes before quit? [y/N] ")
	answer := ""
	if sh.in.Scan() {
		answer = strings.ToLower(strings.TrimSpace(sh.in.Text()))
	}
	if answer != "y" && answer != "yes" {
		fmt.Fprintln(sh.out, "Changes discarded.")
		return nil
	}
	return sh.adapter.Save(ctx)
}

// keyValues parses key=value arguments restricted to allowed keys.
func keyValues(args []string, allowed ...string) (map[string]string, error) {
	out := make(map[string]string, len(args))
	for _, a := range args {
		k, v, ok := strings.Cut(a, "=")
		if !ok || v == "" {
			return nil, fmt.Errorf("expected key=value, got %q", a)
		}
		known := false
		for _, name := range allowed {
			if k == name {
				known = true
				break
			}
		}
		if !known {
			return nil, fmt.Errorf("unknown option %q (want %s)", k, strings.Join(allowed, ", "))
		}
		out[k] = v
	}
	return out, nil
}
