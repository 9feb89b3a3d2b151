// grubctl is a small operator CLI against a running campusgrub server.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func main() {
	_ = godotenv.Load()

	app := &cli.App{
		Name:  "grubctl",
		Usage: "trigger refreshes and query events on a campusgrub server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Value:   "http://localhost:8080",
				Usage:   "base URL of the campusgrub server",
				EnvVars: []string{"CAMPUSGRUB_ADDR"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "refresh",
				Usage:  "run one ingestion refresh",
				Action: runRefresh,
			},
			{
				Name:  "events",
				Usage: "list events in a time window",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "start", Value: "18:00", Usage: "window start (HH:MM)"},
					&cli.StringFlag{Name: "end", Value: "20:00", Usage: "window end (HH:MM)"},
					&cli.StringFlag{Name: "date", Usage: "window date (YYYY-MM-DD, default today)"},
					&cli.Float64Flag{Name: "lat", Usage: "origin latitude (requires --lng)"},
					&cli.Float64Flag{Name: "lng", Usage: "origin longitude (requires --lat)"},
				},
				Action: runEvents,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runRefresh(c *cli.Context) error {
	endpoint := strings.TrimRight(c.String("addr"), "/") + "/api/refresh"
	client := &http.Client{Timeout: 2 * time.Minute}

	resp, err := client.Post(endpoint, "application/json", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var out struct {
		Success bool   `json:"success"`
		RunID   string `json:"run_id"`
		Events  int    `json:"events"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if !out.Success {
		return fmt.Errorf("refresh %s failed: %s", out.RunID, out.Message)
	}
	fmt.Printf("refresh %s ok: %d events\n", out.RunID, out.Events)
	return nil
}

func runEvents(c *cli.Context) error {
	u, err := url.Parse(strings.TrimRight(c.String("addr"), "/") + "/api/events")
	if err != nil {
		return err
	}
	q := u.Query()
	q.Set("start", c.String("start"))
	q.Set("end", c.String("end"))
	if d := c.String("date"); d != "" {
		q.Set("date", d)
	}
	if c.IsSet("lat") && c.IsSet("lng") {
		q.Set("lat", fmt.Sprintf("%f", c.Float64("lat")))
		q.Set("lng", fmt.Sprintf("%f", c.Float64("lng")))
	}
	u.RawQuery = q.Encode()

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Get(u.String())
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var out struct {
		Events []struct {
			ID            string    `json:"id"`
			Title         string    `json:"title"`
			OrganizerName string    `json:"organizer_name"`
			StartsAt      time.Time `json:"starts_at"`
			EndsAt        time.Time `json:"ends_at"`
			VenueName     string    `json:"venue_name"`
			HasFood       bool      `json:"has_food"`
			FoodNotes     string    `json:"food_notes"`
			Walk          *struct {
				Minutes float64 `json:"minutes"`
				Meters  float64 `json:"meters"`
			} `json:"walk"`
		} `json:"events"`
		LastUpdated *time.Time `json:"last_updated"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 8<<20)).Decode(&out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	if out.LastUpdated != nil {
		fmt.Printf("snapshot from %s\n", out.LastUpdated.Format(time.RFC3339))
	} else {
		fmt.Println("no snapshot yet, run `grubctl refresh` first")
	}
	for _, ev := range out.Events {
		food := ""
		if ev.HasFood {
			food = " [food: " + ev.FoodNotes + "]"
		}
		walk := ""
		if ev.Walk != nil {
			walk = fmt.Sprintf(" (%.0f min walk)", ev.Walk.Minutes)
		}
		fmt.Printf("%s-%s  %s by %s @ %s%s%s\n",
			ev.StartsAt.Format("15:04"), ev.EndsAt.Format("15:04"),
			ev.Title, ev.OrganizerName, ev.VenueName, food, walk)
	}
	return nil
}
