// Command report prints a user's dashboard numbers straight from the store,
// for operational spot checks without the web layer.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"example.com/minutes/internal/config"
	"example.com/minutes/internal/engine"
	"example.com/minutes/internal/persistence/postgres"
)

func main() {
	userID := flag.Int64("user", 0, "user id to report on")
	activity := flag.String("activity", "", "activity name for the weekly minutes series (optional)")
	days := flag.Int("days", 7, "trailing period in days for totals (0 = all time)")
	flag.Parse()

	if *userID == 0 {
		log.Fatal("missing -user")
	}

	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.QueryTimeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	eng := engine.New(postgres.NewRepository(pool))
	now := time.Now().UTC()

	today, err := eng.LocalDate(ctx, *userID, now)
	if err != nil {
		log.Fatalf("resolve user: %v", err)
	}
	fmt.Printf("local date: %04d-%02d-%02d (%s)\n", today.Year, today.Month, today.Day, today.Label())

	age, err := eng.DaysSinceAccountCreation(ctx, *userID, now)
	if err != nil {
		log.Fatalf("account age: %v", err)
	}
	fmt.Printf("account age: %d days\n", age)

	streak, err := eng.Streak(ctx, *userID, now)
	if err != nil {
		log.Fatalf("streak: %v", err)
	}
	logged, err := eng.LoggedToday(ctx, *userID, now)
	if err != nil {
		log.Fatalf("logged today: %v", err)
	}
	fmt.Printf("streak: %d (logged today: %v)\n", streak, logged)

	dist, err := eng.Distribution(ctx, *userID, *days, now)
	if err != nil {
		log.Fatalf("distribution: %v", err)
	}
	names := make([]string, 0, len(dist))
	for name := range dist {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Printf("distribution over %d days:\n", *days)
	for _, name := range names {
		fmt.Printf("  %-20s %5d min\n", name, dist[name])
	}

	labels, scores, err := eng.QualityScoresLastWeek(ctx, *userID, now)
	if err != nil {
		log.Fatalf("quality scores: %v", err)
	}
	fmt.Println("quality scores:")
	for i, label := range labels {
		fmt.Printf("  %s %3d%%\n", label, scores[i])
	}

	labels, hours, err := eng.SleepHoursLastWeek(ctx, *userID, now)
	if err != nil {
		log.Fatalf("sleep hours: %v", err)
	}
	fmt.Println("sleep hours:")
	for i, label := range labels {
		fmt.Printf("  %s %5.1fh\n", label, hours[i])
	}

	if *activity != "" {
		labels, minutes, err := eng.ActivityMinutesLastWeek(ctx, *userID, *activity, now)
		if err != nil {
			log.Fatalf("weekly minutes for %q: %v", *activity, err)
		}
		fmt.Printf("weekly minutes for %q:\n", *activity)
		for i, label := range labels {
			fmt.Printf("  %s %5d min\n", label, minutes[i])
		}
	}
}
