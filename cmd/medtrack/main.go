package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	domainerrors "medtrack/internal/domain/errors"

	"github.com/pkg/errors"
)

// Supported subcommands:
// - migrate: apply schema migrations and print the version
// - stats:   print user and medicine statistics
// - prune:   delete orders older than N days
// - export:  write a JSON backup of users and medicines
// - import:  replace users and medicines from a JSON backup
// - users:   list or search users
// - pending: print unexported orders per user
// - share:   share a user's pending orders

func main() {
	pruneCmd := flag.NewFlagSet("prune", flag.ExitOnError)
	pruneDays := pruneCmd.Int("days", 0, "Delete orders older than this many days (0 uses retention.orderMaxAgeDays)")

	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	exportOut := exportCmd.String("out", "-", "Output file, - for stdout")
	exportShare := exportCmd.Bool("share", false, "Stage the backup in the share bucket instead of writing a file")

	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	importIn := importCmd.String("in", "", "Backup file produced by export")

	usersCmd := flag.NewFlagSet("users", flag.ExitOnError)
	usersSearch := usersCmd.String("search", "", "Filter by name, phone, company or address")

	shareCmd := flag.NewFlagSet("share", flag.ExitOnError)
	shareUser := shareCmd.Uint("user", 0, "User whose pending orders are shared")
	shareQR := shareCmd.Bool("qr", false, "Share a QR code instead of text")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flags := cliFlags{
		Prune:  pruneFlags{cmd: pruneCmd, days: pruneDays},
		Export: exportFlags{cmd: exportCmd, out: exportOut, share: exportShare},
		Import: importFlags{cmd: importCmd, in: importIn},
		Users:  usersFlags{cmd: usersCmd, search: usersSearch},
		Share:  shareFlags{cmd: shareCmd, user: shareUser, qr: shareQR},
	}

	if err := runSubcommand(ctx, &flags); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", domainerrors.Describe(err))
		os.Exit(1)
	}
}

type cliFlags struct {
	Prune  pruneFlags
	Export exportFlags
	Import importFlags
	Users  usersFlags
	Share  shareFlags
}

type pruneFlags struct {
	cmd  *flag.FlagSet
	days *int
}

type exportFlags struct {
	cmd   *flag.FlagSet
	out   *string
	share *bool
}

type importFlags struct {
	cmd *flag.FlagSet
	in  *string
}

type usersFlags struct {
	cmd    *flag.FlagSet
	search *string
}

type shareFlags struct {
	cmd  *flag.FlagSet
	user *uint
	qr   *bool
}

func runSubcommand(ctx context.Context, flags *cliFlags) error {
	switch os.Args[1] {
	case "migrate":
		return withApp(ctx, runMigrate)
	case "stats":
		return withApp(ctx, runStats)
	case "pending":
		return withApp(ctx, runPending)
	case "prune":
		if err := flags.Prune.cmd.Parse(os.Args[2:]); err != nil {
			return errors.Wrap(err, "failed to parse prune flags")
		}

		return withApp(ctx, pruneCommand(*flags.Prune.days))
	case "export":
		if err := flags.Export.cmd.Parse(os.Args[2:]); err != nil {
			return errors.Wrap(err, "failed to parse export flags")
		}

		return withApp(ctx, exportCommand(*flags.Export.out, *flags.Export.share))
	case "import":
		if err := flags.Import.cmd.Parse(os.Args[2:]); err != nil {
			return errors.Wrap(err, "failed to parse import flags")
		}
		if *flags.Import.in == "" {
			return errors.New("import requires -in")
		}

		return withApp(ctx, importCommand(*flags.Import.in))
	case "users":
		if err := flags.Users.cmd.Parse(os.Args[2:]); err != nil {
			return errors.Wrap(err, "failed to parse users flags")
		}

		return withApp(ctx, usersCommand(*flags.Users.search))
	case "share":
		if err := flags.Share.cmd.Parse(os.Args[2:]); err != nil {
			return errors.Wrap(err, "failed to parse share flags")
		}
		if *flags.Share.user == 0 {
			return errors.New("share requires -user")
		}

		return withApp(ctx, shareCommand(*flags.Share.user, *flags.Share.qr))
	default:
		printUsage()

		return errors.New("unknown subcommand")
	}
}

func printUsage() {
	fmt.Println(`Usage: medtrack <command> [options]

Commands:
  migrate              Apply schema migrations
  stats                Show user and medicine statistics
  prune   [-days N]    Delete orders older than N days
  export  [-out FILE]  Write a JSON backup (-share stages it in the share bucket)
  import  -in FILE     Replace users and medicines from a backup
  users   [-search T]  List or search users
  pending              Show unexported orders per user
  share   -user ID     Share a user's pending orders (-qr for a QR code)`)
}
