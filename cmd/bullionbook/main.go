package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bullionbook/config"
	"bullionbook/internal/adapter/keystore"
	"bullionbook/internal/adapter/storage/backupdir"
	"bullionbook/internal/adapter/storage/objectstore"
	"bullionbook/internal/adapter/storage/sqlite"
	"bullionbook/internal/core/domain"
	"bullionbook/internal/core/ports"
	"bullionbook/internal/service"
	"bullionbook/pkg/apperror"
	"bullionbook/pkg/logger"

	"github.com/joho/godotenv"
)

const usage = `usage: bullionbook <command> [args]

commands:
  init                      provision device identity and object key
  set-key <passphrase>      derive and store the export key
  export [--since DATE]     manual export (DATE = YYYY-MM-DD, partial)
  export-all                manual full export
  import <file> [--accept-inventory]
                            merge an export bundle into local state
  auto                      run the scheduled backup if due
  gc                        delete object blobs outside the manifest
`

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load(os.Getenv("BBK_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	// Adapters
	secrets, err := keystore.New(filepath.Join(cfg.Vault.Dir, "keys"))
	if err != nil {
		log.Fatal().Err(err).Msg("opening keystore")
	}
	keys := service.NewKeyService(secrets, log)
	objectKey, err := keys.ObjectKey()
	if err != nil {
		log.Fatal().Err(err).Msg("loading object key")
	}

	canon := service.NewCanonicalService()
	hash := service.NewSHA3HashService()
	enc := service.NewGCMEncryptionService()

	objects, err := objectstore.Open(cfg.Vault.Dir, canon, hash, enc, objectKey, log)
	if err != nil {
		log.Fatal().Err(err).Msg("opening object store")
	}

	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		log.Fatal().Err(err).Msg("opening database")
	}
	customers := sqlite.NewCustomerRepo(db)
	transactions := sqlite.NewTransactionRepo(db)
	ledger := sqlite.NewLedgerRepo(db)
	stock := sqlite.NewStockRepo(db)
	inventory := sqlite.NewInventoryRepo(db)

	location := backupdir.New(cfg.Backup.Dir, secrets, log)

	// Services
	exporter := service.NewExportService(customers, transactions, ledger, stock, inventory, objects, enc, keys, location, log)
	importer := service.NewMergeService(customers, transactions, ledger, stock, inventory, enc, keys, location, log)
	scheduler := service.NewSchedulerService(exporter, keys, location, secrets, cfg.Backup.AutoEnabled, cfg.Backup.AutoInterval, log)

	ctx := context.Background()
	cmd, args := os.Args[1], os.Args[2:]

	switch cmd {
	case "init":
		id, err := keys.DeviceID()
		if err != nil {
			fail(err)
		}
		fmt.Printf("device %s ready\n", id)

	case "set-key":
		if len(args) != 1 {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		if err := keys.SetExportPassphrase(args[0]); err != nil {
			fail(err)
		}
		fmt.Println("export key set")

	case "export":
		opts := ports.ExportOptions{Kind: domain.ExportManual}
		if len(args) == 2 && args[0] == "--since" {
			since, err := time.Parse("2006-01-02", args[1])
			if err != nil {
				fmt.Fprintf(os.Stderr, "bad date %q: want YYYY-MM-DD\n", args[1])
				os.Exit(2)
			}
			opts.Since = &since
		}
		res, err := exporter.Export(ctx, opts)
		if err != nil {
			fail(err)
		}
		fmt.Printf("exported %d records to %s\n", res.RecordCount, res.FileName)

	case "export-all":
		res, err := exporter.Export(ctx, ports.ExportOptions{Kind: domain.ExportManual})
		if err != nil {
			fail(err)
		}
		fmt.Printf("exported %d records to %s (%d orphans collected)\n",
			res.RecordCount, res.FileName, res.CleanedObjects)

	case "import":
		if len(args) < 1 {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		var resolver ports.ConflictResolver = promptResolver{}
		if len(args) > 1 && args[1] == "--accept-inventory" {
			resolver = acceptAllResolver{}
		}
		res, err := importer.ImportFile(ctx, args[0], resolver)
		if err != nil {
			fail(err)
		}
		fmt.Printf("merged: %d customers added, %d updated, %d transactions (%d renamed), %d ledger entries, %d stock items\n",
			res.CustomersAdded, res.CustomersUpdated, res.TransactionsApplied,
			res.TransactionsRenamed, res.LedgerRecreated, res.StockRestored)
		if res.InventoryDeclined {
			fmt.Println("base inventory override declined; local values kept")
		}

	case "auto":
		res := scheduler.RunIfDue(ctx)
		switch {
		case res.Err != nil:
			fail(res.Err)
		case !res.Ran:
			fmt.Printf("skipped: %s\n", res.Skipped)
		default:
			fmt.Printf("auto backup written: %s\n", res.Result.FileName)
		}

	case "gc":
		deleted := objects.CleanupOrphanedObjects(objects.LiveHashes())
		fmt.Printf("%d orphaned objects deleted\n", deleted)

	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, apperror.UserMessage(err))
	os.Exit(1)
}

// promptResolver asks the operator on stdin whether to accept an incoming
// base inventory that differs from the local one.
type promptResolver struct{}

func (promptResolver) AcceptInventory(local domain.BaseInventory, incoming domain.InventorySnapshot) bool {
	fmt.Printf("incoming base inventory differs from local (%v changed). overwrite? [y/N] ",
		strings.Join(incoming.Diff(local), ", "))
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// acceptAllResolver accepts every inventory override, for non-interactive use.
type acceptAllResolver struct{}

func (acceptAllResolver) AcceptInventory(domain.BaseInventory, domain.InventorySnapshot) bool {
	return true
}
