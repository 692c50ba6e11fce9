package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/yungbote/edupulse-backend/internal/app"
	"github.com/yungbote/edupulse-backend/internal/pkg/dbctx"
)

type idList []string

func (l *idList) String() string { return strings.Join(*l, ",") }
func (l *idList) Set(v string) error {
	v = strings.TrimSpace(v)
	if v != "" {
		*l = append(*l, v)
	}
	return nil
}

func parseID(name, raw string) uuid.UUID {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil || id == uuid.Nil {
		fmt.Printf("invalid -%s %q\n", name, raw)
		os.Exit(2)
	}
	return id
}

func main() {
	var (
		teacherRaw    string
		experimentRaw string
		format        string
		split         bool
		reset         bool
		students      idList
	)
	flag.StringVar(&teacherRaw, "teacher", "", "id of the teacher owning the experiment")
	flag.StringVar(&experimentRaw, "experiment", "", "experiment id")
	flag.StringVar(&format, "format", "json", "output format: json or csv")
	flag.BoolVar(&split, "split", false, "run the stratified auto-split before reporting")
	flag.BoolVar(&reset, "reset", false, "with -split, drop existing assignments first")
	flag.Var(&students, "student", "student id to split (repeatable; default enrolled students)")
	flag.Parse()

	teacherID := parseID("teacher", teacherRaw)
	experimentID := parseID("experiment", experimentRaw)
	format = strings.ToLower(strings.TrimSpace(format))
	if format != "json" && format != "csv" {
		fmt.Printf("unknown -format %q\n", format)
		os.Exit(2)
	}

	_ = godotenv.Load()

	ctx := context.Background()
	application, err := app.New(ctx)
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()

	dbc := dbctx.Context{Ctx: ctx}
	svc := application.Services.Experiments

	if split {
		ids := make([]uuid.UUID, 0, len(students))
		for _, s := range students {
			ids = append(ids, parseID("student", s))
		}
		res, err := svc.AutoSplit(dbc, teacherID, experimentID, ids, reset)
		if err != nil {
			fmt.Printf("auto split: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "split: strategy=%s control=%d experimental=%d assigned=%d\n",
			res.Strategy, res.Control, res.Experimental, len(res.Assignments))
	}

	if format == "csv" {
		if err := svc.ExportCSV(dbc, teacherID, experimentID, os.Stdout); err != nil {
			fmt.Printf("export csv: %v\n", err)
			os.Exit(1)
		}
		return
	}

	report, err := svc.Report(dbc, teacherID, experimentID)
	if err != nil {
		fmt.Printf("report: %v\n", err)
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		fmt.Printf("encode report: %v\n", err)
		os.Exit(1)
	}
}
