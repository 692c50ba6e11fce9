package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/yungbote/edupulse-backend/internal/app"
	types "github.com/yungbote/edupulse-backend/internal/domain"
	"github.com/yungbote/edupulse-backend/internal/modules/adaptive"
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

func main() {
	var students idList
	var seedRules bool
	flag.Var(&students, "student", "student id to recompute (repeatable; default all students)")
	flag.BoolVar(&seedRules, "seed-rules", false, "store the default adaptive rules before recomputing")
	flag.Parse()

	_ = godotenv.Load()

	ctx := context.Background()
	application, err := app.New(ctx)
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer application.Close()
	if err := application.Start(ctx); err != nil {
		fmt.Printf("start app: %v\n", err)
		os.Exit(1)
	}

	dbc := dbctx.Context{Ctx: ctx}
	if seedRules {
		if err := application.Services.Personalization.SeedRules(dbc, adaptive.DefaultRules()); err != nil {
			fmt.Printf("seed rules: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("seeded default adaptive rules")
	}

	var rows []*types.User
	if len(students) > 0 {
		ids := make([]uuid.UUID, 0, len(students))
		for _, s := range students {
			id, err := uuid.Parse(s)
			if err == nil && id != uuid.Nil {
				ids = append(ids, id)
			}
		}
		if len(ids) == 0 {
			fmt.Println("no valid student ids provided")
			return
		}
		rows, err = application.Repos.User.GetByIDs(dbc, ids)
	} else {
		rows, err = application.Repos.User.GetByRole(dbc, types.RoleStudent)
	}
	if err != nil {
		fmt.Printf("load students: %v\n", err)
		os.Exit(1)
	}

	recomputed, failed := 0, 0
	for _, u := range rows {
		if !u.IsStudent() {
			continue
		}
		view, err := application.Services.Personalization.RecomputeStudentProfile(dbc, u.ID)
		if err != nil {
			failed++
			fmt.Printf("recompute failed for %s: %v\n", u.Username, err)
			continue
		}
		recomputed++
		fmt.Printf("%s level=%s average=%.2f completion=%.2f action=%s\n",
			u.Username, view.LearningLevel, view.AverageScore, view.CompletionRate, view.AdaptiveAction)
	}

	fmt.Printf("done; recomputed=%d failed=%d\n", recomputed, failed)
	if failed > 0 {
		os.Exit(1)
	}
}
