package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"fintrack/internal/budget"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/export"
	"fintrack/internal/export/google"
	"fintrack/internal/export/memory"
	"fintrack/internal/export/xlsx"
	apphttp "fintrack/internal/http"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/render"
	"fintrack/internal/report"
	"fintrack/internal/services"
	"fintrack/internal/storage"
	"fintrack/internal/worker"
)

// ErrUsage is returned for unknown commands and bad flags; usage has
// already been printed.
var ErrUsage = errors.New("usage")

const usage = `Usage: fintrack <command> [flags]

Commands:
  add-expense   record an expense   (-amount -category -description [-date])
  add-income    record an income    (-amount -category -description [-date])
  list          list transactions   ([-month] [-from] [-to] [-category ...] [-limit])
  balance       monthly overview    ([-month])
  analyze       spending breakdown  ([-month])
  income        income analysis     ([-month])
  set-budget    set a monthly limit (-category -amount)
  budgets       budget vs actual    ([-month])
  mirror        sync the SQLite mirror
  export        export a month      ([-month] [-format xlsx|sheets|memory] [-dir])
  dashboard     serve the reporting API

-month takes YYYY-MM and defaults to the current month.
`

// App runs one fintrack command against the configured stores.
type App struct {
	Config *config.Config
	Out    io.Writer
	Logger *log.Logger
	// Now is the reference clock for "today" and "this month".
	Now func() time.Time
	// Publisher, when set, is told about every recorded transaction.
	Publisher services.EventPublisher
}

func (a *App) ledger() *ledger.Store { return ledger.NewStore(a.Config.LedgerFile) }
func (a *App) budget() *budget.Store { return budget.NewStore(a.Config.BudgetFile) }

func (a *App) view() render.View {
	return render.View{F: render.NewFormatter(a.Config.CurrencySymbol)}
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// Run dispatches args[0] to its command.
func (a *App) Run(ctx context.Context, args []string) error {
	if a.Logger == nil {
		a.Logger = log.New(log.DefaultConfig())
	}
	if len(args) == 0 {
		fmt.Fprint(a.Out, usage)
		return ErrUsage
	}
	cmd, rest := strings.ToLower(args[0]), args[1:]

	commands := map[string]func(context.Context, []string) error{
		"add-expense": func(ctx context.Context, args []string) error { return a.add(ctx, core.KindExpense, args) },
		"add-income":  func(ctx context.Context, args []string) error { return a.add(ctx, core.KindIncome, args) },
		"list":        a.list,
		"balance":     a.balance,
		"analyze":     a.analyze,
		"income":      a.income,
		"set-budget":  a.setBudget,
		"budgets":     a.budgets,
		"mirror":      a.mirror,
		"export":      a.export,
		"dashboard":   a.dashboard,
	}
	run, ok := commands[cmd]
	if !ok {
		if cmd != "help" && cmd != "-h" && cmd != "--help" {
			fmt.Fprintf(a.Out, "unknown command %q\n\n", cmd)
		}
		fmt.Fprint(a.Out, usage)
		return ErrUsage
	}
	return run(ctx, rest)
}

func (a *App) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.Out)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return ErrUsage
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(fs.Output(), "unexpected arguments: %s\n", strings.Join(fs.Args(), " "))
		return ErrUsage
	}
	return nil
}

// resolveMonth parses a -month value, defaulting to the current month.
func (a *App) resolveMonth(v string) (core.Month, error) {
	if strings.TrimSpace(v) == "" {
		return core.MonthOf(a.now()), nil
	}
	m, err := core.ParseMonth(v)
	if err != nil {
		return core.Month{}, fmt.Errorf("invalid month %q: want YYYY-MM", v)
	}
	return m, nil
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string     { return strings.Join(*s, ",") }
func (s *stringList) Set(v string) error { *s = append(*s, v); return nil }

func (a *App) add(ctx context.Context, kind core.Kind, args []string) error {
	fs := a.flags("add-" + kind.Token())
	date := fs.String("date", "", "date as YYYY-MM-DD (default today)")
	category := fs.String("category", "", "category")
	description := fs.String("description", "", "description")
	amount := fs.String("amount", "", "amount, e.g. 12.50")
	if err := parse(fs, args); err != nil {
		return err
	}

	known := a.Config.ExpenseCategories
	if kind.IsIncome() {
		known = a.Config.IncomeCategories
	}
	if *category != "" && !containsFold(known, *category) {
		a.Logger.WarnContext(ctx, "Category is not in the configured list", log.FieldCategory, *category)
	}

	tx, err := services.NewTransaction(kind, *date, *category, *description, *amount, core.DateOf(a.now()))
	if err != nil {
		return err
	}
	stored, err := services.NewTransactionService(a.ledger(), a.Publisher).Record(ctx, tx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Recorded %s: %s %s (%s) on %s\n",
		stored.Kind.Token(), a.view().F.Money(stored.Amount), stored.Description, stored.Category, stored.Date)
	return nil
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if core.SameCategory(v, s) {
			return true
		}
	}
	return false
}

func (a *App) list(ctx context.Context, args []string) error {
	fs := a.flags("list")
	month := fs.String("month", "", "only this month (YYYY-MM)")
	from := fs.String("from", "", "first date, YYYY-MM-DD")
	to := fs.String("to", "", "last date, YYYY-MM-DD")
	limit := fs.Int("limit", 0, "show at most n transactions (0 = all)")
	var categories stringList
	fs.Var(&categories, "category", "only this category (repeatable)")
	if err := parse(fs, args); err != nil {
		return err
	}

	l, err := a.ledger().Load(ctx)
	if err != nil {
		return err
	}
	all := l
	if *month != "" {
		m, err := a.resolveMonth(*month)
		if err != nil {
			return err
		}
		l = report.InMonth(l, m)
	}
	f := report.Filter{Categories: categories}
	if *from != "" {
		if f.From, err = core.ParseDate(*from); err != nil {
			return fmt.Errorf("invalid -from: %w", err)
		}
	}
	if *to != "" {
		if f.To, err = core.ParseDate(*to); err != nil {
			return fmt.Errorf("invalid -to: %w", err)
		}
	}

	out := report.NewestFirst(f.Apply(l))
	matched := len(out)
	if *limit > 0 && len(out) > *limit {
		out = out[:*limit]
	}
	v := a.view()
	fmt.Fprint(a.Out, v.Transactions(out))
	if len(all) > 0 {
		fmt.Fprintf(a.Out, "Showing %d of %d matching transactions\n", len(out), matched)
		fmt.Fprint(a.Out, v.LedgerSpan(all))
	}
	return nil
}

// monthCommand loads the ledger for commands that only take -month.
func (a *App) monthCommand(ctx context.Context, name string, args []string) (core.Ledger, core.Month, error) {
	fs := a.flags(name)
	month := fs.String("month", "", "month as YYYY-MM")
	if err := parse(fs, args); err != nil {
		return nil, core.Month{}, err
	}
	m, err := a.resolveMonth(*month)
	if err != nil {
		return nil, core.Month{}, err
	}
	l, err := a.ledger().Load(ctx)
	if err != nil {
		return nil, core.Month{}, err
	}
	return l, m, nil
}

func (a *App) balance(ctx context.Context, args []string) error {
	l, m, err := a.monthCommand(ctx, "balance", args)
	if err != nil {
		return err
	}
	fmt.Fprint(a.Out, a.view().Overview(report.MonthlyTotals(l, m)))
	return nil
}

func (a *App) analyze(ctx context.Context, args []string) error {
	l, m, err := a.monthCommand(ctx, "analyze", args)
	if err != nil {
		return err
	}
	b := report.CategoryBreakdown(l, m, core.KindExpense)
	v := a.view()
	fmt.Fprint(a.Out, v.Breakdown(b))
	fmt.Fprint(a.Out, v.TopCategories(report.TopN(b, 3)))
	return nil
}

func (a *App) income(ctx context.Context, args []string) error {
	l, m, err := a.monthCommand(ctx, "income", args)
	if err != nil {
		return err
	}
	fmt.Fprint(a.Out, a.view().Income(report.IncomeComparison(l, m), report.IncomeSources(l, m)))
	return nil
}

func (a *App) setBudget(ctx context.Context, args []string) error {
	fs := a.flags("set-budget")
	category := fs.String("category", "", "category")
	amount := fs.String("amount", "", "monthly limit, e.g. 500 (0 clears)")
	if err := parse(fs, args); err != nil {
		return err
	}

	limit, err := budget.ParseLimit(*amount)
	if err != nil {
		return fmt.Errorf("invalid amount %q: %w", *amount, err)
	}
	b, err := a.budget().Set(ctx, strings.TrimSpace(*category), limit)
	if err != nil {
		return err
	}
	fmt.Fprint(a.Out, a.view().Budgets(b))
	return nil
}

func (a *App) budgets(ctx context.Context, args []string) error {
	l, m, err := a.monthCommand(ctx, "budgets", args)
	if err != nil {
		return err
	}
	b, err := a.budget().Load(ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(a.Out, a.view().Utilization(report.BudgetUtilization(l, b, m, a.Config.ExpenseCategories)))
	return nil
}

func (a *App) mirror(ctx context.Context, args []string) error {
	l, m, err := a.monthCommand(ctx, "mirror", args)
	if err != nil {
		return err
	}
	db, err := storage.NewMirror(a.Config.SQLiteDBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := worker.NewMirrorWorker(a.ledger(), a.budget(), db, a.Config.MirrorInterval).SyncNow(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.Out, "Mirrored %d transactions and %d budgets into %s\n",
		stats.Transactions, stats.Budgets, a.Config.SQLiteDBPath)

	// The loader has already read the ledger once; compare SQL sums with
	// the engine's for the reference month.
	sqlTotals, err := db.MonthTotals(ctx, m)
	if err != nil {
		return err
	}
	engine := report.MonthlyTotals(l, m)
	if sqlTotals.Income != engine.Income || sqlTotals.Expense != engine.Expense {
		a.Logger.WarnContext(ctx, "Mirror totals differ from ledger totals",
			log.FieldMonth, m.String(),
			"sql_income", sqlTotals.Income.Cents,
			"sql_expense", sqlTotals.Expense.Cents,
			"ledger_income", engine.Income.Cents,
			"ledger_expense", engine.Expense.Cents)
	}
	return nil
}

func (a *App) export(ctx context.Context, args []string) error {
	fs := a.flags("export")
	month := fs.String("month", "", "month as YYYY-MM")
	format := fs.String("format", "xlsx", "xlsx, sheets or memory (dry run)")
	dir := fs.String("dir", ".", "output directory for xlsx")
	if err := parse(fs, args); err != nil {
		return err
	}
	m, err := a.resolveMonth(*month)
	if err != nil {
		return err
	}

	var (
		exp export.Exporter
		dry *memory.Exporter
	)
	switch *format {
	case "memory":
		dry = memory.New()
		exp = dry
	case "xlsx":
		exp = xlsx.NewWriter(*dir)
	case "sheets":
		exp, err = google.NewFromOptions(ctx, google.Options{
			SpreadsheetID:   a.Config.GoogleSpreadsheetID,
			SheetName:       a.Config.GoogleSheetName,
			CredentialsFile: a.Config.GoogleServiceAccountFile,
			CredentialsJSON: a.Config.GoogleServiceAccountJSON,
		})
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown export format %q", *format)
	}

	l, err := a.ledger().Load(ctx)
	if err != nil {
		return err
	}
	b, err := a.budget().Load(ctx)
	if err != nil {
		return err
	}
	ref, err := exp.Export(ctx, export.BuildReport(l, b, m, a.Config.ExpenseCategories))
	if err != nil {
		return err
	}
	if dry != nil {
		for _, r := range dry.Reports() {
			fmt.Fprintf(a.Out, "Dry run for %s: %d transaction rows, %d summary rows\n",
				r.Month, len(export.TransactionRows(r))-1, len(export.SummaryRows(r)))
		}
		return nil
	}
	fmt.Fprintf(a.Out, "Exported %s to %s\n", m, ref)
	return nil
}

func (a *App) dashboard(ctx context.Context, args []string) error {
	fs := a.flags("dashboard")
	addr := fs.String("addr", ":"+a.Config.Port, "listen address")
	if err := parse(fs, args); err != nil {
		return err
	}
	return RunDashboard(ctx, a.Config, a.Logger, *addr, a.Now)
}

// RunDashboard serves the reporting API on addr until ctx is cancelled.
func RunDashboard(ctx context.Context, cfg *config.Config, logger *log.Logger, addr string, now func() time.Time) error {
	srv := apphttp.NewServer(addr,
		ledger.NewStore(cfg.LedgerFile),
		budget.NewStore(cfg.BudgetFile),
		apphttp.Options{
			SnapshotTTL: cfg.SnapshotTTL,
			Categories:  cfg.ExpenseCategories,
			Logger:      logger,
			Now:         now,
		})

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Dashboard listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		_ = srv.Shutdown(context.Background())
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("dashboard server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		logger.Info("Shutting down dashboard")
		return srv.Shutdown(shutdownCtx)
	}
}
