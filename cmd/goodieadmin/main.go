// Command goodieadmin manages the goodie catalog and orders from a terminal.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	flag "github.com/spf13/pflag"

	"github.com/tahcohcat/healplay/config"
	"github.com/tahcohcat/healplay/internal/adminclient"
	"github.com/tahcohcat/healplay/internal/auth"
	"github.com/tahcohcat/healplay/internal/logger"
	"github.com/tahcohcat/healplay/internal/models"
)

const usage = `usage: goodieadmin [--server URL] [--password PW] <command> [flags]

commands:
  list                               show orders and goodies
  watch                              stream live order and catalog events
  create --title T --coins N         add a goodie (--description, --image)
  delete <goodie-id> [--yes]         remove a goodie after confirmation
  status <order-id> <status>         set an order to requested or delivered
  hash-password                      print a bcrypt hash for auth.admin_password_hash
                                     (reads the password from stdin)
`

// logNotifier shows board notifications as log warnings.
type logNotifier struct {
	log *logger.Log
}

func (n logNotifier) Notify(msg string) {
	n.log.Warn(msg)
}

// terminalConfirmer asks on out and reads y/N from in.
type terminalConfirmer struct {
	in  *bufio.Reader
	out io.Writer
}

func (c terminalConfirmer) Confirm(_ context.Context, prompt string) (bool, error) {
	fmt.Fprintf(c.out, "%s [y/N] ", prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}

// yesConfirmer backs --yes.
type yesConfirmer struct{}

func (yesConfirmer) Confirm(context.Context, string) (bool, error) { return true, nil }

func main() {
	log := logger.New()
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		var fe adminclient.FieldErrors
		if errors.As(err, &fe) {
			for field, msg := range fe {
				log.Error(fmt.Sprintf("%s: %s", field, msg))
			}
		} else if !errors.Is(err, flag.ErrHelp) {
			log.WithError(err).Error("goodieadmin failed")
		}
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger.SetGlobalLevel(logger.ParseLevel(cfg.Log.Level))
	log := logger.New()

	global := flag.NewFlagSet("goodieadmin", flag.ContinueOnError)
	global.SetInterspersed(false)
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	server := global.String("server", "http://localhost:"+cfg.Server.Port, "server base URL")
	password := global.String("password", os.Getenv("HEALPLAY_ADMIN_PASSWORD"), "admin password")
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		global.Usage()
		return flag.ErrHelp
	}

	if global.Arg(0) == "hash-password" {
		return hashPassword(stdin, stdout)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := adminclient.NewClient(*server)
	if err != nil {
		return err
	}
	if *password != "" {
		if err := client.Login(ctx, *password); err != nil {
			return err
		}
	}

	confirmer := adminclient.Confirmer(terminalConfirmer{in: bufio.NewReader(stdin), out: stdout})
	cmd, rest := global.Arg(0), global.Args()[1:]

	switch cmd {
	case "list":
		board := adminclient.NewBoard(client, logNotifier{log}, confirmer)
		board.Load(ctx)
		printBoard(stdout, board)
		return nil

	case "watch":
		board := adminclient.NewBoard(client, logNotifier{log}, confirmer)
		board.Load(ctx)
		printBoard(stdout, board)
		log.Info("Watching for goodie events, Ctrl+C to stop")
		return client.Subscribe(ctx, func(ev models.Event) {
			if err := board.Apply(ev); err != nil {
				log.WithError(err).Warn("Skipped malformed event")
				return
			}
			fmt.Fprintf(stdout, "%s %s\n", ev.Name, ev.Data)
		})

	case "create":
		fs := flag.NewFlagSet("create", flag.ContinueOnError)
		var d adminclient.GoodieDraft
		fs.StringVar(&d.Title, "title", "", "goodie title")
		fs.IntVar(&d.Coins, "coins", 0, "price in coins")
		fs.StringVar(&d.Description, "description", "", "short description")
		image := fs.String("image", "", "path to an image file")
		if err := fs.Parse(rest); err != nil {
			return err
		}

		board := adminclient.NewBoard(client, logNotifier{log}, confirmer,
			adminclient.WithMinImageBytes(cfg.Goodies.MinImageBytes))
		if *image != "" {
			if err := board.AttachImage(&d, *image); err != nil {
				return err
			}
		}
		g, err := board.SubmitGoodie(ctx, d)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "created %s %q (%d coins)\n", g.ID, g.Title, g.Coins)
		return nil

	case "delete":
		fs := flag.NewFlagSet("delete", flag.ContinueOnError)
		yes := fs.BoolP("yes", "y", false, "skip the confirmation prompt")
		if err := fs.Parse(rest); err != nil {
			return err
		}
		if fs.NArg() != 1 {
			return fmt.Errorf("delete takes exactly one goodie id")
		}
		if *yes {
			confirmer = yesConfirmer{}
		}

		board := adminclient.NewBoard(client, logNotifier{log}, confirmer)
		board.Load(ctx)
		deleted, err := board.DeleteGoodie(ctx, fs.Arg(0))
		if err != nil {
			return err
		}
		if deleted {
			fmt.Fprintf(stdout, "deleted %s\n", fs.Arg(0))
		} else {
			fmt.Fprintln(stdout, "cancelled")
		}
		return nil

	case "status":
		if len(rest) != 2 {
			return fmt.Errorf("status takes an order id and a status")
		}
		board := adminclient.NewBoard(client, logNotifier{log}, confirmer)
		o, err := board.UpdateOrderStatus(ctx, rest[0], models.OrderStatus(rest[1]))
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "order %s is now %s\n", o.ID, o.Status)
		return nil
	}

	global.Usage()
	return fmt.Errorf("unknown command %q", cmd)
}

// hashPassword reads one line from in and prints its bcrypt hash.
func hashPassword(in io.Reader, out io.Writer) error {
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return fmt.Errorf("password must not be empty")
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	fmt.Fprintln(out, hash)
	return nil
}

func printBoard(out io.Writer, board *adminclient.Board) {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	defer tw.Flush()

	fmt.Fprintln(tw, "ORDER\tGOODIE\tCOINS\tPARENT\tSTATUS")
	for _, o := range board.Orders() {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", o.ID, o.GoodieTitle, o.Coins, o.UserName, o.Status)
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "GOODIE\tTITLE\tCOINS\tACTIVE\t")
	for _, g := range board.Goodies() {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%t\t\n", g.ID, g.Title, g.Coins, g.IsActive)
	}
}
