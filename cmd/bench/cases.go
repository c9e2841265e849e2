// README: Bench cases for the quote API; covers quotes, route options, admin reads, booking flow, races and load.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
	StatusSkip = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := pgxpool.New(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		r.redis = redis.NewClient(&redis.Options{Addr: r.cfg.RedisAddr})
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))
	for _, tc := range tests {
		res := tc.Run(ctx, r)
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}
	return results
}

func sampleSimulation(customerID string) map[string]any {
	sim := map[string]any{
		"origin":         "Manchester",
		"destination":    "Leeds",
		"distance":       72,
		"duration":       95,
		"vehicle_type":   "truck",
		"urgency":        "standard",
		"scheduled_date": "2026-03-17",
		"scheduled_time": "07:30",
	}
	if customerID != "" {
		sim["customer_id"] = customerID
	}
	return sim
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	return []TestCase{
		{Name: "Env: Postgres connect", Run: func(ctx context.Context, r *Runner) Result {
			if r.db == nil {
				return Result{Status: StatusFail, Note: "db not configured"}
			}
			ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			defer cancel()
			if err := r.db.Ping(ctx); err != nil {
				return Result{Status: StatusFail, Note: err.Error()}
			}
			return Result{Status: StatusPass}
		}},
		{Name: "Env: Redis connect", Run: func(ctx context.Context, r *Runner) Result {
			if r.redis == nil {
				return Result{Status: StatusSkip, Note: "redis not configured"}
			}
			ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			defer cancel()
			if err := r.redis.Ping(ctx).Err(); err != nil {
				return Result{Status: StatusFail, Note: err.Error()}
			}
			return Result{Status: StatusPass}
		}},
		{Name: "Migration: apply (optional)", Run: func(ctx context.Context, r *Runner) Result {
			if !r.cfg.ApplyMigration {
				return Result{Status: StatusSkip, Note: "apply-migration=false"}
			}
			if r.db == nil {
				return Result{Status: StatusFail, Note: "db not configured"}
			}
			sql, err := os.ReadFile(r.cfg.MigrationPath)
			if err != nil {
				return Result{Status: StatusFail, Note: err.Error()}
			}
			for _, s := range splitSQL(string(sql)) {
				if _, err := r.db.Exec(ctx, s); err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
			}
			return Result{Status: StatusPass}
		}},
		{Name: "Migration: tables exist", Run: func(ctx context.Context, r *Runner) Result {
			if r.db == nil {
				return Result{Status: StatusFail, Note: "db not configured"}
			}
			tables, err := extractTables(r.cfg.MigrationPath)
			if err != nil {
				return Result{Status: StatusFail, Note: err.Error()}
			}
			for _, t := range tables {
				var exists bool
				err := r.db.QueryRow(ctx,
					"SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name=$1)", t,
				).Scan(&exists)
				if err != nil {
					return Result{Status: StatusFail, Note: err.Error()}
				}
				if !exists {
					return Result{Status: StatusFail, Note: "missing table: " + t}
				}
			}
			return Result{Status: StatusPass, Note: fmt.Sprintf("tables=%d", len(tables))}
		}},

		statusCase("API: health", http.MethodGet, base+"/health", nil, http.StatusOK),

		// Quotes
		statusCase("Quote: seeded rate, no customer", http.MethodPost, base+"/api/quotes",
			map[string]any{"simulation": sampleSimulation("")}, http.StatusOK),
		statusCase("Quote: volume customer", http.MethodPost, base+"/api/quotes",
			map[string]any{"simulation": sampleSimulation("cust-global")}, http.StatusOK),
		statusCase("Quote: negative distance -> 400", http.MethodPost, base+"/api/quotes",
			map[string]any{"simulation": map[string]any{"origin": "a", "destination": "b", "distance": -1, "vehicle_type": "truck"}},
			http.StatusBadRequest),
		statusCase("Quote: unknown vehicle rate -> 400", http.MethodPost, base+"/api/quotes",
			map[string]any{"simulation": map[string]any{"origin": "a", "destination": "b", "distance": 10, "duration": 10, "vehicle_type": "zeppelin", "urgency": "standard"}},
			http.StatusBadRequest),
		{Name: "Route options: three labelled options", Run: func(ctx context.Context, r *Runner) Result {
			body := map[string]any{
				"simulation": sampleSimulation(""),
				"candidates": []map[string]any{
					{"id": "motorway", "distance": 72, "duration": 80, "base_price": "420"},
					{"id": "a-road", "distance": 65, "duration": 110, "base_price": "360"},
					{"id": "partner", "distance": 70, "duration": 95, "base_price": "380", "partner_route": true},
				},
			}
			var out struct {
				Options []struct {
					Type        string `json:"type"`
					CandidateID string `json:"candidate_id"`
				} `json:"options"`
			}
			res, code := r.doJSON(ctx, http.MethodPost, base+"/api/route-options", body, &out)
			if res.Status != StatusPass {
				return res
			}
			if code != http.StatusOK || len(out.Options) == 0 {
				return Result{Status: StatusFail, Latency: res.Latency, Note: fmt.Sprintf("status=%d options=%d", code, len(out.Options))}
			}
			if out.Options[0].Type != "fastest" {
				return Result{Status: StatusFail, Latency: res.Latency, Note: "first option is " + out.Options[0].Type}
			}
			res.Note = fmt.Sprintf("options=%d", len(out.Options))
			return res
		}},
		statusCase("Compare: competitor quotes", http.MethodPost, base+"/api/quotes/compare", map[string]any{
			"simulation":  sampleSimulation(""),
			"competitors": []map[string]any{{"name": "RivalCo", "price": "400"}},
		}, http.StatusOK),

		// Admin reads
		statusCase("Admin: list rules", http.MethodGet, base+"/api/rules", nil, http.StatusOK),
		statusCase("Admin: list discounts (gold)", http.MethodGet, base+"/api/discounts?tier=gold", nil, http.StatusOK),
		statusCase("Admin: customer discounts", http.MethodGet, base+"/api/customers/cust-global/discounts", nil, http.StatusOK),
		statusCase("Admin: toggle unknown rule -> 404", http.MethodPost, base+"/api/rules/no-such-rule/active",
			map[string]any{"active": true}, http.StatusNotFound),

		// Bookings
		{Name: "Booking: quoted -> delivered", Run: func(ctx context.Context, r *Runner) Result {
			id, res := r.createBooking(ctx, "cust-fresh")
			if res.Status != StatusPass {
				return res
			}
			if _, code := r.doJSON(ctx, http.MethodPost, base+"/api/bookings/"+id+"/deliver", nil, nil); code != http.StatusBadRequest {
				return Result{Status: StatusFail, Note: fmt.Sprintf("deliver without proof status=%d", code)}
			}
			proof := map[string]any{"recipient_name": "Bench Receiver", "signature": "data:image/png;base64,iVBORw0KGgo="}
			for _, step := range []struct {
				action string
				body   any
			}{{"confirm", nil}, {"dispatch", nil}, {"deliver", proof}} {
				_, code := r.doJSON(ctx, http.MethodPost, base+"/api/bookings/"+id+"/"+step.action, step.body, nil)
				if code != http.StatusOK {
					return Result{Status: StatusFail, Note: fmt.Sprintf("%s status=%d", step.action, code)}
				}
			}
			_, code := r.doJSON(ctx, http.MethodPost, base+"/api/bookings/"+id+"/cancel", map[string]any{"reason": "late"}, nil)
			if code != http.StatusConflict {
				return Result{Status: StatusFail, Note: fmt.Sprintf("cancel after delivery status=%d", code)}
			}
			return r.checkConsistency(ctx, id, 3)
		}},
		{Name: "Concurrency: dispatch vs cancel", Run: func(ctx context.Context, r *Runner) Result {
			id, res := r.createBooking(ctx, "cust-build")
			if res.Status != StatusPass {
				return res
			}
			if _, code := r.doJSON(ctx, http.MethodPost, base+"/api/bookings/"+id+"/confirm", nil, nil); code != http.StatusOK {
				return Result{Status: StatusFail, Note: fmt.Sprintf("confirm status=%d", code)}
			}
			return r.race(ctx, []string{
				base + "/api/bookings/" + id + "/dispatch",
				base + "/api/bookings/" + id + "/cancel",
			})
		}},

		// Load
		{Name: "Perf: quote throughput", Run: func(ctx context.Context, r *Runner) Result {
			return perfLoad(ctx, r, base+"/api/quotes", map[string]any{"simulation": sampleSimulation("cust-global")})
		}},
	}
}

func statusCase(name, method, url string, body any, want int) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			res, code := r.doJSON(ctx, method, url, body, nil)
			if res.Status != StatusPass {
				return res
			}
			res.Note = fmt.Sprintf("status=%d", code)
			if code != want {
				res.Status = StatusFail
			}
			return res
		},
	}
}

// doJSON sends body as JSON and decodes the response into out when out is non-nil.
// The returned Result is PASS whenever a response arrived.
func (r *Runner) doJSON(ctx context.Context, method, url string, body, out any) (Result, int) {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return Result{Status: StatusFail, Note: err.Error()}, 0
	}
	req.Header.Set("Content-Type", "application/json")
	start := time.Now()
	resp, err := r.httpc.Do(req)
	if err != nil {
		return Result{Status: StatusFail, Note: err.Error()}, 0
	}
	defer resp.Body.Close()
	latency := time.Since(start)
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return Result{Status: StatusFail, Latency: latency, Note: "decode: " + err.Error()}, resp.StatusCode
		}
	} else {
		_, _ = io.Copy(io.Discard, resp.Body)
	}
	return Result{Status: StatusPass, Latency: latency}, resp.StatusCode
}

func (r *Runner) createBooking(ctx context.Context, customerID string) (string, Result) {
	var created struct {
		ID string `json:"id"`
	}
	res, code := r.doJSON(ctx, http.MethodPost, r.cfg.BaseURL+"/api/bookings", map[string]any{
		"customer_id": customerID,
		"simulation":  sampleSimulation(""),
	}, &created)
	if res.Status != StatusPass {
		return "", res
	}
	if code != http.StatusCreated || created.ID == "" {
		return "", Result{Status: StatusFail, Note: fmt.Sprintf("create status=%d", code)}
	}
	return created.ID, res
}

// checkConsistency verifies status_version matches the number of transitions and
// that one event exists per state (creation included).
func (r *Runner) checkConsistency(ctx context.Context, id string, transitions int) Result {
	if r.db == nil {
		return Result{Status: StatusSkip, Note: "db not configured"}
	}
	var version, events int
	err := r.db.QueryRow(ctx, `SELECT status_version FROM bookings WHERE id=$1`, id).Scan(&version)
	if err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	err = r.db.QueryRow(ctx, `SELECT COUNT(*) FROM booking_state_events WHERE booking_id=$1`, id).Scan(&events)
	if err != nil {
		return Result{Status: StatusFail, Note: err.Error()}
	}
	if version != transitions || events != transitions+1 {
		return Result{Status: StatusFail, Note: fmt.Sprintf("version=%d events=%d", version, events)}
	}
	return Result{Status: StatusPass, Note: fmt.Sprintf("version=%d events=%d", version, events)}
}

// race fires every url at once; exactly one may succeed.
func (r *Runner) race(ctx context.Context, urls []string) Result {
	var wg sync.WaitGroup
	var mu sync.Mutex
	succ, conflict := 0, 0
	for _, u := range urls {
		wg.Add(1)
		go func(u string) {
			defer wg.Done()
			_, code := r.doJSON(ctx, http.MethodPost, u, nil, nil)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case code >= 200 && code < 300:
				succ++
			case code == http.StatusConflict:
				conflict++
			}
		}(u)
	}
	wg.Wait()
	note := fmt.Sprintf("success=%d conflict=%d", succ, conflict)
	if succ != 1 {
		return Result{Status: StatusFail, Note: note}
	}
	return Result{Status: StatusPass, Note: note}
}

func perfLoad(ctx context.Context, r *Runner, url string, payload any) Result {
	b, _ := json.Marshal(payload)
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount int64
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				req, _ := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(b))
				req.Header.Set("Content-Type", "application/json")
				resp, err := r.httpc.Do(req)
				mu.Lock()
				if err != nil || resp.StatusCode >= 500 {
					errCount++
				} else {
					count++
				}
				mu.Unlock()
				if err == nil {
					_, _ = io.Copy(io.Discard, resp.Body)
					resp.Body.Close()
				}
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: StatusFail, Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: StatusPass, Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}

func extractTables(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	re := regexp.MustCompile(`(?i)create\s+table\s+if\s+not\s+exists\s+([a-zA-Z0-9_]+)`)
	matches := re.FindAllStringSubmatch(string(b), -1)
	tables := make([]string, 0, len(matches))
	for _, m := range matches {
		tables = append(tables, m[1])
	}
	return tables, nil
}

func splitSQL(sql string) []string {
	lines := strings.Split(sql, "\n")
	filtered := make([]string, 0, len(lines))
	for _, line := range lines {
		l := strings.TrimSpace(line)
		if strings.HasPrefix(l, "--") || l == "" {
			continue
		}
		filtered = append(filtered, line)
	}
	parts := strings.Split(strings.Join(filtered, "\n"), ";")
	stmts := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
