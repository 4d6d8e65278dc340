package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/school-dashboard-api/internal/bulkattendance"
	"github.com/noah-isme/school-dashboard-api/internal/models"
	"github.com/noah-isme/school-dashboard-api/pkg/client"
	"github.com/noah-isme/school-dashboard-api/pkg/listfilter"
)

const usage = `usage: dashboard-cli [global flags] <command> [flags]

commands:
  students         list students (--section, --class, --search)
  stats            print dashboard totals
  delete-student   delete a student (--id, --yes)
  mark-attendance  record attendance from a sheet (--file, --class, --batch)

global flags:
`

type globalOptions struct {
	baseURL  string
	token    string
	email    string
	password string
	timeout  time.Duration
	verbose  bool
}

func main() {
	var opts globalOptions
	global := flag.NewFlagSet("dashboard-cli", flag.ExitOnError)
	global.StringVar(&opts.baseURL, "base", envOr("DASHBOARD_API_URL", "http://localhost:8080/api"), "API base URL")
	global.StringVar(&opts.token, "token", os.Getenv("DASHBOARD_API_TOKEN"), "bearer token")
	global.StringVar(&opts.email, "email", os.Getenv("DASHBOARD_EMAIL"), "login email, used when no token is given")
	global.StringVar(&opts.password, "password", os.Getenv("DASHBOARD_PASSWORD"), "login password")
	global.DurationVar(&opts.timeout, "timeout", 30*time.Second, "overall command timeout")
	global.BoolVar(&opts.verbose, "v", false, "verbose logging")
	global.Usage = func() {
		fmt.Fprint(global.Output(), usage)
		global.PrintDefaults()
	}
	_ = global.Parse(os.Args[1:])

	args := global.Args()
	if len(args) == 0 {
		global.Usage()
		os.Exit(2)
	}

	logr := newLogger(opts.verbose)
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, opts.timeout)
	defer cancel()

	api := client.New(opts.baseURL, client.WithToken(opts.token), client.WithLogger(logr))
	if opts.token == "" && opts.email != "" {
		if _, err := api.Login(ctx, opts.email, opts.password); err != nil {
			logr.Fatal("login failed", zap.Error(err))
		}
	}

	app := &cli{api: api, cache: client.NewQueryCache(), logger: logr, out: os.Stdout, in: os.Stdin}
	if err := app.run(ctx, args[0], args[1:]); err != nil {
		logr.Fatal("command failed", zap.String("command", args[0]), zap.Error(err))
	}
}

func newLogger(verbose bool) *zap.Logger {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	}
	logr, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logr
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

type cli struct {
	api    *client.Client
	cache  *client.QueryCache
	logger *zap.Logger
	out    io.Writer
	in     io.Reader
}

func (a *cli) students() *client.Resource[models.Student] {
	return client.NewResource[models.Student](a.api, a.cache, "/students")
}

func (a *cli) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "students":
		return a.listStudents(ctx, args)
	case "stats":
		return a.stats(ctx)
	case "delete-student":
		return a.deleteStudent(ctx, args)
	case "mark-attendance":
		return a.markAttendance(ctx, args)
	default:
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *cli) listStudents(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("students", flag.ContinueOnError)
	section := fs.String("section", "", "primary, secondary or highschool")
	class := fs.String("class", "", "class name")
	search := fs.String("search", "", "name contains")
	if err := fs.Parse(args); err != nil {
		return err
	}

	roster, err := a.students().List(ctx)
	if err != nil {
		return err
	}
	view := listfilter.Apply(roster,
		listfilter.FieldEquals(func(s models.Student) string { return string(s.Section) }, *section),
		listfilter.FieldEquals(func(s models.Student) string { return s.Class }, *class),
		listfilter.NameContains(models.Student.FullName, *search),
	)

	w := bufio.NewWriter(a.out)
	defer w.Flush()
	for _, s := range view {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", s.ID, s.FullName(), s.Section, s.Class)
	}
	fmt.Fprintf(w, "%d of %d students\n", len(view), len(roster))
	return nil
}

func (a *cli) stats(ctx context.Context) error {
	var stats models.DashboardStats
	if err := a.api.Do(ctx, http.MethodGet, "/stats", nil, &stats); err != nil {
		return err
	}

	w := bufio.NewWriter(a.out)
	defer w.Flush()
	fmt.Fprintf(w, "students:   %d\n", stats.TotalStudents)
	fmt.Fprintf(w, "employees:  %d\n", stats.TotalEmployees)
	fmt.Fprintf(w, "classrooms: %d\n", stats.TotalClassrooms)
	for _, section := range models.Sections() {
		fmt.Fprintf(w, "  %-11s %d\n", section, stats.StudentsBySection[section])
	}
	fmt.Fprintln(w, "attendance today:")
	for _, status := range []models.AttendanceStatus{models.AttendanceStatusPresent, models.AttendanceStatusAbsent, models.AttendanceStatusLate} {
		fmt.Fprintf(w, "  %-8s %d\n", status, stats.AttendanceToday[status])
	}
	fmt.Fprintf(w, "payments total: %.2f\n", stats.Payments.TotalAmount)
	statuses := make([]string, 0, len(stats.Payments.ByStatus))
	for status := range stats.Payments.ByStatus {
		statuses = append(statuses, string(status))
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		row := stats.Payments.ByStatus[models.PaymentStatus(status)]
		fmt.Fprintf(w, "  %-8s %.2f (%d)\n", status, row.Amount, row.Count)
	}
	return nil
}

func (a *cli) deleteStudent(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("delete-student", flag.ContinueOnError)
	id := fs.String("id", "", "student id")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("--id is required")
	}

	confirm := func(id string) bool {
		if *yes {
			return true
		}
		fmt.Fprintf(a.out, "Delete student %s? [y/N] ", id)
		answer, _ := bufio.NewReader(a.in).ReadString('\n')
		answer = strings.ToLower(strings.TrimSpace(answer))
		return answer == "y" || answer == "yes"
	}
	if err := a.students().Delete(ctx, *id, confirm); err != nil {
		if errors.Is(err, client.ErrDeleteNotConfirmed) {
			fmt.Fprintln(a.out, "cancelled")
			return nil
		}
		return err
	}
	fmt.Fprintln(a.out, "student deleted")
	return nil
}

func (a *cli) markAttendance(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("mark-attendance", flag.ContinueOnError)
	file := fs.String("file", "", "marks sheet (.csv or .xlsx)")
	class := fs.String("class", "", "only mark students of this class")
	batch := fs.Bool("batch", false, "submit in one request to /attendance/batch")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *file == "" {
		return errors.New("--file is required")
	}

	rows, err := readMarksFile(*file)
	if err != nil {
		return err
	}
	roster, err := a.students().List(ctx)
	if err != nil {
		return err
	}

	var strategy bulkattendance.Strategy = bulkattendance.SequentialStrategy{API: a.api}
	if *batch {
		strategy = bulkattendance.BatchStrategy{API: a.api}
	}
	recorder := bulkattendance.NewRecorder(strategy, bulkattendance.WithLogger(a.logger))
	skipped := applyMarks(recorder, bulkattendance.FilterByClass(roster, *class), rows)
	for _, id := range skipped {
		a.logger.Warn("student not in roster, skipped", zap.String("student_id", id), zap.String("class", *class))
	}

	result, err := recorder.Submit(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, result.Summary())
	for _, failure := range result.Failures {
		fmt.Fprintf(a.out, "  %s: %v\n", failure.StudentID, failure.Err)
	}
	return nil
}

// applyMarks records every row whose student is in roster and returns the ids it skipped.
func applyMarks(recorder *bulkattendance.Recorder, roster []models.Student, rows []markRow) []string {
	known := make(map[string]struct{}, len(roster))
	for _, s := range roster {
		known[s.ID] = struct{}{}
	}
	var skipped []string
	for _, row := range rows {
		if _, ok := known[row.StudentID]; !ok {
			skipped = append(skipped, row.StudentID)
			continue
		}
		if err := recorder.SetStatus(row.StudentID, row.Status); err != nil {
			skipped = append(skipped, row.StudentID)
			continue
		}
		if row.Note != "" {
			recorder.SetNote(row.StudentID, row.Note)
		}
	}
	return skipped
}
