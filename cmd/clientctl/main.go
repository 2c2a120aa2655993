// Command clientctl runs client imports, exports and maintenance jobs against
// the configured storage without going through the HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/sangkips/clientbook-api/internal/application/service"
	"github.com/sangkips/clientbook-api/internal/config"
	"github.com/sangkips/clientbook-api/internal/domain/entity"
	"github.com/sangkips/clientbook-api/internal/infrastructure/notification"
	"github.com/sangkips/clientbook-api/internal/infrastructure/storage"
	"github.com/sangkips/clientbook-api/pkg/logger"
	"github.com/sangkips/clientbook-api/pkg/tabular"
	"github.com/sangkips/clientbook-api/pkg/utils"
	"github.com/schollz/progressbar/v3"
)

const usage = `Usage: clientctl <command> [flags]

Commands:
  import  -business SLUG -file PATH [-format csv|xlsx]
  export  -business SLUG [-file PATH] [-format csv|xlsx]
  token   -business SLUG [-user UUID] [-permissions a,b]
  remind  run the win-back reminder job once
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg := config.Load()
	if err := logger.Init(cfg.Log.LoggerConfig()); err != nil {
		logger.App().WithError(err).Fatal("Failed to initialise logging")
	}
	log := logger.App()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch cmd, args := os.Args[1], os.Args[2:]; cmd {
	case "import":
		err = runImport(ctx, cfg, args)
	case "export":
		err = runExport(ctx, cfg, args)
	case "token":
		err = runToken(ctx, cfg, args)
	case "remind":
		err = runRemind(ctx, cfg)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		log.WithError(err).Fatalf("%s failed", os.Args[1])
	}
}

func runImport(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	slug := fs.String("business", cfg.Seed.BusinessSlug, "business slug")
	path := fs.String("file", "", "CSV or XLSX file to import")
	formatName := fs.String("format", "", "file format, defaults to the file extension")
	_ = fs.Parse(args)

	if *path == "" {
		return fmt.Errorf("-file is required")
	}
	format, err := tabular.ParseFormat(firstNonEmpty(*formatName, *path))
	if err != nil {
		return err
	}

	f, err := os.Open(*path)
	if err != nil {
		return err
	}
	defer f.Close()

	records, err := tabular.Read(f, format)
	if err != nil {
		return fmt.Errorf("read %s: %w", *path, err)
	}
	rows := service.ImportRowsFromRecords(records)

	repos, business, err := openBusiness(ctx, cfg, *slug)
	if err != nil {
		return err
	}
	defer repos.Close()

	bar := progressbar.Default(int64(len(rows)), "importing")
	result, err := service.NewClientTransferService(repos.Clients).Import(ctx, business.ID, rows, func() {
		_ = bar.Add(1)
	})
	_ = bar.Finish()
	if err != nil {
		return err
	}

	for _, r := range result.Rows {
		if r.Outcome == service.ImportOutcomeError {
			fmt.Fprintf(os.Stderr, "row %d: %s\n", r.Row, r.Message)
		}
	}
	fmt.Printf("rows=%d imported=%d duplicates=%d failed=%d\n",
		result.TotalRows, result.Imported, result.Duplicates, result.Failed)
	return nil
}

func runExport(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	slug := fs.String("business", cfg.Seed.BusinessSlug, "business slug")
	path := fs.String("file", "", "output file, stdout when empty")
	formatName := fs.String("format", "", "csv or xlsx, defaults to the file extension or csv")
	_ = fs.Parse(args)

	format, err := tabular.ParseFormat(firstNonEmpty(*formatName, *path, string(tabular.FormatCSV)))
	if err != nil {
		return err
	}

	repos, business, err := openBusiness(ctx, cfg, *slug)
	if err != nil {
		return err
	}
	defer repos.Close()

	var out io.Writer = os.Stdout
	if *path != "" {
		f, err := os.Create(*path)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	w, err := tabular.NewWriter(out, format, service.ExportHeader)
	if err != nil {
		return err
	}
	n, err := service.NewClientTransferService(repos.Clients).Export(ctx, business.ID, func(row service.ExportRow) error {
		return w.WriteRow(row.Values())
	})
	if err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "exported %d clients\n", n)
	return nil
}

func runToken(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	slug := fs.String("business", cfg.Seed.BusinessSlug, "business slug")
	user := fs.String("user", "", "user id, random when empty")
	perms := fs.String("permissions", strings.Join([]string{
		utils.PermissionManageClients, utils.PermissionIngestBookings, utils.PermissionTransfer,
	}, ","), "comma separated permissions")
	_ = fs.Parse(args)

	userID := uuid.New()
	if *user != "" {
		id, err := uuid.Parse(*user)
		if err != nil {
			return fmt.Errorf("invalid user id: %w", err)
		}
		userID = id
	}

	repos, business, err := openBusiness(ctx, cfg, *slug)
	if err != nil {
		return err
	}
	defer repos.Close()

	jwtManager := utils.NewJWTManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ExpiryHours)
	token, err := jwtManager.GenerateAccessToken(userID, business.ID, splitList(*perms))
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

func runRemind(ctx context.Context, cfg *config.Config) error {
	repos, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer repos.Close()

	sender := notification.NewTwilioSender(notification.TwilioConfig{
		AccountSID:     cfg.Reminder.TwilioSID,
		AuthToken:      cfg.Reminder.TwilioToken,
		FromNumber:     cfg.Reminder.TwilioFrom,
		WhatsAppNumber: cfg.Reminder.TwilioWhatsApp,
	})
	segments := service.NewSegmentClassifier(repos.Clients, repos.Businesses, service.SystemClock)
	reminders := service.NewReminderService(repos.Businesses, repos.Clients, repos.Reminders, segments, sender, cfg.Reminder.Cooldown, service.SystemClock)

	summary, err := reminders.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("businesses=%d sent=%d skipped=%d failed=%d\n",
		summary.Businesses, summary.Sent, summary.Skipped, summary.Failed)
	return nil
}

func openBusiness(ctx context.Context, cfg *config.Config, slug string) (*storage.Repositories, *entity.Business, error) {
	if slug == "" {
		return nil, nil, fmt.Errorf("-business is required")
	}
	repos, err := storage.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	business, err := repos.Businesses.GetBySlug(ctx, slug)
	if err != nil {
		repos.Close()
		return nil, nil, err
	}
	if business == nil {
		repos.Close()
		return nil, nil, fmt.Errorf("business %q not found", slug)
	}
	return repos, business, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
