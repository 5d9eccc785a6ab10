package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"registrar/internal"
	"registrar/internal/config"
	"registrar/internal/connectors"
	gsheetsconnector "registrar/internal/connectors/gsheets"
	xlsxconnector "registrar/internal/connectors/xlsx"
	"registrar/internal/listener"
	"registrar/internal/pipeline"
	"registrar/internal/registry"
	"registrar/internal/storage"
	"registrar/internal/util"
)

func main() {
	cfg, err := config.Load()
	must(err)

	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	cache := registry.NewCache(time.Duration(cfg.CacheTTLSec) * time.Second)
	readService := registry.NewService(db, cache, cfg.SyncFanOut)

	cmd := os.Args[1]
	switch cmd {
	case "sync":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		source := fs.String("source", "gsheets", "gsheets|xlsx")
		workbook := fs.String("workbook", "", "workbook path when --source=xlsx")
		sheet := fs.String("sheet", "", "sync one tab only")
		_ = fs.Parse(os.Args[2:])
		src, err := makeSource(cfg, *source, *workbook)
		must(err)
		svc := registry.NewSyncService(db, cache, src)
		if strings.TrimSpace(*sheet) != "" {
			must(svc.SyncOne(context.Background(), *sheet))
			fmt.Printf("sync done sheet=%s\n", *sheet)
			return
		}
		result, err := svc.SyncAll(context.Background())
		must(err)
		for _, failure := range result.Failed {
			fmt.Fprintf(os.Stderr, "skipped %s\n", failure)
		}
		fmt.Printf("sync done synced=%d failed=%d\n", result.Synced, len(result.Failed))
	case "company:list":
		summaries, err := readService.ListSummaries()
		must(err)
		printJSON(summaries)
	case "company:get":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		sheet := fs.String("sheet", "", "sheet name")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*sheet) == "" {
			must(fmt.Errorf("--sheet is required"))
		}
		company, err := readService.GetCompany(*sheet)
		must(err)
		printJSON(company)
	case "company:create":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		sheet := fs.String("sheet", "", "sheet name")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*sheet) == "" {
			must(fmt.Errorf("--sheet is required"))
		}
		must(db.CreateCompany(*sheet, time.Now()))
		fmt.Printf("created %s\n", *sheet)
	case "company:delete":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		sheet := fs.String("sheet", "", "sheet name")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*sheet) == "" {
			must(fmt.Errorf("--sheet is required"))
		}
		must(db.DeleteCompany(*sheet))
		cache.Invalidate(*sheet)
		fmt.Printf("deleted %s\n", *sheet)
	case "field:update":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		sheet := fs.String("sheet", "", "sheet name")
		field := fs.String("field", "", "field label, e.g. ทุนจดทะเบียน")
		value := fs.String("value", "", "new value")
		by := fs.String("by", "cli", "author for the change log")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*sheet) == "" || strings.TrimSpace(*field) == "" {
			must(fmt.Errorf("--sheet and --field are required"))
		}
		oldValue, err := db.UpdateCompanyField(*sheet, *field, *value)
		must(err)
		cache.Invalidate(*sheet)
		must(db.AppendVersion(internal.VersionEntry{
			Timestamp: util.Timestamp(time.Now()),
			SheetName: *sheet,
			Field:     *field,
			OldValue:  oldValue,
			NewValue:  *value,
			ChangedBy: *by,
		}))
		fmt.Printf("updated %s.%s\n", *sheet, *field)
	case "doc:add":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		sheet := fs.String("sheet", "", "sheet name")
		name := fs.String("name", "", "document name")
		link := fs.String("link", "", "file link")
		expiry := fs.String("expiry", "", "expiry date DD/MM/YYYY")
		by := fs.String("by", "cli", "author for the change log")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*sheet) == "" || strings.TrimSpace(*name) == "" {
			must(fmt.Errorf("--sheet and --name are required"))
		}
		must(db.AddDocument(*sheet, internal.Document{Name: *name, URL: *link, ExpiryDate: *expiry}, time.Now()))
		cache.Invalidate(*sheet)
		must(db.AppendVersion(internal.VersionEntry{
			Timestamp: util.Timestamp(time.Now()),
			SheetName: *sheet,
			Field:     "document:" + *name,
			NewValue:  *link,
			ChangedBy: *by,
		}))
		fmt.Printf("document added to %s\n", *sheet)
	case "doc:update-link":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		sheet := fs.String("sheet", "", "sheet name")
		name := fs.String("name", "", "document name")
		link := fs.String("link", "", "new file link")
		expiry := fs.String("expiry", "", "expiry date DD/MM/YYYY")
		by := fs.String("by", "cli", "author for the change log")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*sheet) == "" || strings.TrimSpace(*name) == "" {
			must(fmt.Errorf("--sheet and --name are required"))
		}
		oldLink, err := db.UpdateDocumentLink(*sheet, *name, *link, *expiry, time.Now())
		must(err)
		cache.Invalidate(*sheet)
		must(db.AppendVersion(internal.VersionEntry{
			Timestamp: util.Timestamp(time.Now()),
			SheetName: *sheet,
			Field:     "document:" + *name,
			OldValue:  oldLink,
			NewValue:  *link,
			ChangedBy: *by,
		}))
		fmt.Printf("document link updated on %s\n", *sheet)
	case "doc:update-expiry":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		sheet := fs.String("sheet", "", "sheet name")
		name := fs.String("name", "", "document name")
		expiry := fs.String("expiry", "", "expiry date DD/MM/YYYY")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*sheet) == "" || strings.TrimSpace(*name) == "" {
			must(fmt.Errorf("--sheet and --name are required"))
		}
		must(db.UpdateDocumentExpiry(*sheet, *name, *expiry))
		cache.Invalidate(*sheet)
		fmt.Printf("document expiry updated on %s\n", *sheet)
	case "doc:remove":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		sheet := fs.String("sheet", "", "sheet name")
		name := fs.String("name", "", "exact document name")
		by := fs.String("by", "cli", "author for the change log")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*sheet) == "" || strings.TrimSpace(*name) == "" {
			must(fmt.Errorf("--sheet and --name are required"))
		}
		must(db.RemoveDocument(*sheet, *name))
		cache.Invalidate(*sheet)
		must(db.AppendVersion(internal.VersionEntry{
			Timestamp: util.Timestamp(time.Now()),
			SheetName: *sheet,
			Field:     "document:" + *name,
			OldValue:  *name,
			ChangedBy: *by,
		}))
		fmt.Printf("document removed from %s\n", *sheet)
	case "doc:status":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		sheet := fs.String("sheet", "", "sheet name")
		name := fs.String("name", "", "document name")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*sheet) == "" || strings.TrimSpace(*name) == "" {
			must(fmt.Errorf("--sheet and --name are required"))
		}
		status, err := readService.DocumentExpiryStatus(*sheet, *name)
		must(err)
		fmt.Println(string(status))
	case "seal:update":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		sheet := fs.String("sheet", "", "sheet name")
		link := fs.String("link", "", "seal image link")
		by := fs.String("by", "cli", "author for the change log")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*sheet) == "" {
			must(fmt.Errorf("--sheet is required"))
		}
		must(db.UpdateSeal(*sheet, *link))
		cache.Invalidate(*sheet)
		must(db.AppendVersion(internal.VersionEntry{
			Timestamp: util.Timestamp(time.Now()),
			SheetName: *sheet,
			Field:     "ตราประทับ",
			NewValue:  *link,
			ChangedBy: *by,
		}))
		fmt.Printf("seal updated on %s\n", *sheet)
	case "report:expiring":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		out := fs.String("out", "", "optional output xlsx path")
		_ = fs.Parse(os.Args[2:])
		rows, err := readService.ExpiringDocuments()
		must(err)
		if strings.TrimSpace(*out) != "" {
			must(pipeline.ExportExpiringToXLSX(rows, *out))
			fmt.Printf("exported %d rows to %s\n", len(rows), *out)
			return
		}
		printJSON(rows)
	case "history":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		sheet := fs.String("sheet", "", "sheet name")
		limit := fs.Int("limit", 50, "max entries")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*sheet) == "" {
			must(fmt.Errorf("--sheet is required"))
		}
		entries, err := db.ListVersions(*sheet, *limit)
		must(err)
		printJSON(entries)
	case "parse":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		input := fs.String("input", "", "input file path")
		inType := fs.String("type", "xlsx", "xlsx|html")
		sheet := fs.String("sheet", "", "tab name (xlsx) or company key (html)")
		_ = fs.Parse(os.Args[2:])
		if *input == "" {
			must(fmt.Errorf("--input is required"))
		}
		company, err := pipeline.ParseCompanyFromInput(*inType, *input, *sheet)
		must(err)
		printJSON(company)
	case "poll":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		source := fs.String("source", "gsheets", "gsheets|xlsx")
		workbook := fs.String("workbook", "", "workbook path when --source=xlsx")
		_ = fs.Parse(os.Args[2:])
		src, err := makeSource(cfg, *source, *workbook)
		must(err)
		svc := listener.NewService(db, cfg, src, cache)
		must(svc.Run(context.Background()))
	default:
		usage()
		os.Exit(1)
	}
}

func makeSource(cfg config.Config, source, workbook string) (connectors.GridSource, error) {
	switch strings.ToLower(strings.TrimSpace(source)) {
	case "gsheets":
		return gsheetsconnector.NewConnector(context.Background(), cfg)
	case "xlsx":
		if strings.TrimSpace(workbook) == "" {
			return nil, fmt.Errorf("--workbook is required with --source=xlsx")
		}
		if !filepath.IsAbs(workbook) {
			if abs, err := filepath.Abs(workbook); err == nil {
				workbook = abs
			}
		}
		return xlsxconnector.NewConnector(workbook)
	default:
		return nil, fmt.Errorf("unsupported source: %s", source)
	}
}

func printJSON(v any) {
	blob, err := json.MarshalIndent(v, "", "  ")
	must(err)
	fmt.Println(string(blob))
}

func usage() {
	fmt.Println("usage: registrar <command>")
	fmt.Println("commands:")
	fmt.Println("  sync --source=gsheets|xlsx [--workbook=...] [--sheet=...]")
	fmt.Println("  company:list")
	fmt.Println("  company:get --sheet=...")
	fmt.Println("  company:create --sheet=...")
	fmt.Println("  company:delete --sheet=...")
	fmt.Println("  field:update --sheet=... --field=... --value=... [--by=...]")
	fmt.Println("  doc:add --sheet=... --name=... [--link=...] [--expiry=DD/MM/YYYY] [--by=...]")
	fmt.Println("  doc:update-link --sheet=... --name=... --link=... [--expiry=...] [--by=...]")
	fmt.Println("  doc:update-expiry --sheet=... --name=... --expiry=DD/MM/YYYY")
	fmt.Println("  doc:remove --sheet=... --name=... [--by=...]")
	fmt.Println("  doc:status --sheet=... --name=...")
	fmt.Println("  seal:update --sheet=... --link=... [--by=...]")
	fmt.Println("  report:expiring [--out=./out/expiring.xlsx]")
	fmt.Println("  history --sheet=... [--limit=50]")
	fmt.Println("  parse --input=... --type=xlsx|html [--sheet=...]")
	fmt.Println("  poll --source=gsheets|xlsx [--workbook=...]")
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
