// Package store persists plans, steps, and conversation history in SQLite.
// It is the engine's only view of persistence; callers treat it as the Plan
// Store Adapter and never touch SQL themselves.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/glebarez/go-sqlite"
	"github.com/google/uuid"

	"github.com/tripsmith/tripsmith/internal/plan"
)

type Store struct {
	DB *sql.DB
}

func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	// Create tables if not exist
	queries := []string{
		`CREATE TABLE IF NOT EXISTS plans (
			id TEXT PRIMARY KEY,
			user_id TEXT,
			conversation_id TEXT,
			title TEXT,
			destination TEXT,
			start_date TEXT,
			end_date TEXT,
			status TEXT,
			estimated_total_usd REAL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS plan_steps (
			id TEXT PRIMARY KEY,
			plan_id TEXT,
			user_id TEXT,
			step_order INTEGER,
			step_type TEXT,
			title TEXT,
			description TEXT,
			date TEXT,
			start_time TEXT,
			end_time TEXT,
			location TEXT,
			agent TEXT,
			action_payload TEXT,
			estimated_price_usd REAL DEFAULT 0,
			status TEXT,
			result TEXT,
			notes TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			conversation_id TEXT,
			role TEXT,
			content TEXT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return nil, err
		}
	}

	return &Store{DB: db}, nil
}

func (s *Store) Close() error {
	return s.DB.Close()
}

// Create persists a plan and its steps. The caller's EstimatedTotal is
// ignored; the total is recomputed from the steps before writing.
func (s *Store) Create(p *plan.Plan) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	for i := range p.Steps {
		if p.Steps[i].ID == "" {
			p.Steps[i].ID = uuid.NewString()
		}
		if p.Steps[i].Agent == "" {
			p.Steps[i].Agent = plan.AgentFor(p.Steps[i].Type)
		}
		if p.Steps[i].Status == "" {
			p.Steps[i].Status = plan.StepPending
		}
	}
	p.RecalculateTotal()

	_, err := s.DB.Exec(
		`INSERT INTO plans (id, user_id, conversation_id, title, destination, start_date, end_date, status, estimated_total_usd)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.UserID, p.ConversationID, p.Title, p.Destination,
		p.StartDate, p.EndDate, string(p.Status), p.EstimatedTotal,
	)
	if err != nil {
		return fmt.Errorf("failed to insert plan %s: %w", p.ID, err)
	}

	for i := range p.Steps {
		if err := s.insertStep(p.ID, p.UserID, &p.Steps[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) insertStep(planID, userID string, st *plan.Step) error {
	_, err := s.DB.Exec(
		`INSERT INTO plan_steps (id, plan_id, user_id, step_order, step_type, title, description, date,
			start_time, end_time, location, agent, action_payload, estimated_price_usd, status, result, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		st.ID, planID, userID, st.Order, string(st.Type), st.Title, st.Description, st.Date,
		st.StartTime, st.EndTime, marshalJSON(st.Location), st.Agent,
		marshalJSON(st.ActionPayload), st.EstimatedPrice, string(st.Status),
		marshalJSON(st.Result), st.Notes,
	)
	if err != nil {
		return fmt.Errorf("failed to insert step %q: %w", st.Title, err)
	}
	return nil
}

// Get loads one plan with its steps ordered by step_order; equal orders
// keep insertion order. Returns nil when the plan does not exist or
// belongs to another user.
func (s *Store) Get(userID, planID string) (*plan.Plan, error) {
	row := s.DB.QueryRow(
		`SELECT id, user_id, conversation_id, title, destination, start_date, end_date, status,
			estimated_total_usd, created_at, updated_at
		 FROM plans WHERE id = ? AND user_id = ?`, planID, userID)

	p := &plan.Plan{}
	var status string
	err := row.Scan(&p.ID, &p.UserID, &p.ConversationID, &p.Title, &p.Destination,
		&p.StartDate, &p.EndDate, &status, &p.EstimatedTotal, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load plan %s: %w", planID, err)
	}
	p.Status = plan.Status(status)

	rows, err := s.DB.Query(
		`SELECT id, step_order, step_type, title, description, date, start_time, end_time,
			location, agent, action_payload, estimated_price_usd, status, result, notes
		 FROM plan_steps WHERE plan_id = ? ORDER BY step_order, rowid`, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to load steps for plan %s: %w", planID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var st plan.Step
		var stepType, stepStatus string
		var location, actionPayload, result sql.NullString
		if err := rows.Scan(&st.ID, &st.Order, &stepType, &st.Title, &st.Description,
			&st.Date, &st.StartTime, &st.EndTime, &location, &st.Agent,
			&actionPayload, &st.EstimatedPrice, &stepStatus, &result, &st.Notes); err != nil {
			return nil, err
		}
		st.Type = plan.StepType(stepType)
		st.Status = plan.StepStatus(stepStatus)
		st.Location = unmarshalLocation(location)
		st.ActionPayload = unmarshalMap(actionPayload)
		st.Result = unmarshalMap(result)
		p.Steps = append(p.Steps, st)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	p.RecalculateTotal()
	return p, nil
}

// ListByUser returns the user's plans, newest first, headers only (no steps).
func (s *Store) ListByUser(userID string) ([]*plan.Plan, error) {
	rows, err := s.DB.Query(
		`SELECT id, user_id, conversation_id, title, destination, start_date, end_date, status,
			estimated_total_usd, created_at, updated_at
		 FROM plans WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []*plan.Plan
	for rows.Next() {
		p := &plan.Plan{}
		var status string
		if err := rows.Scan(&p.ID, &p.UserID, &p.ConversationID, &p.Title, &p.Destination,
			&p.StartDate, &p.EndDate, &status, &p.EstimatedTotal, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Status = plan.Status(status)
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// stepFieldColumns maps update keys accepted from callers to columns.
var stepFieldColumns = map[string]string{
	"title":               "title",
	"description":         "description",
	"date":                "date",
	"start_time":          "start_time",
	"end_time":            "end_time",
	"notes":               "notes",
	"status":              "status",
	"estimated_price_usd": "estimated_price_usd",
	"order":               "step_order",
}

// UpdateStep applies a partial update to one step and refreshes the plan's
// cached total. Unknown keys are ignored. Returns false when the step does
// not exist in that plan.
func (s *Store) UpdateStep(userID, planID, stepID string, updates map[string]any) (bool, error) {
	var sets []string
	var args []any
	for key, val := range updates {
		switch key {
		case "type":
			raw, _ := val.(string)
			t := plan.ParseStepType(raw)
			sets = append(sets, "step_type = ?", "agent = ?")
			args = append(args, string(t), plan.AgentFor(t))
		case "location", "action_payload", "result":
			sets = append(sets, key+" = ?")
			args = append(args, marshalJSON(val))
		default:
			col, ok := stepFieldColumns[key]
			if !ok {
				continue
			}
			sets = append(sets, col+" = ?")
			args = append(args, val)
		}
	}
	if len(sets) == 0 {
		return false, nil
	}

	query := "UPDATE plan_steps SET " + strings.Join(sets, ", ") + " WHERE id = ? AND plan_id = ? AND user_id = ?"
	args = append(args, stepID, planID, userID)
	res, err := s.DB.Exec(query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to update step %s of plan %s: %w", stepID, planID, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return false, nil
	}
	return true, s.refreshTotal(planID)
}

// AddStep appends a step to an existing plan and refreshes the total.
// Returns false when the plan does not exist for that user.
func (s *Store) AddStep(userID, planID string, st *plan.Step) (bool, error) {
	p, err := s.Get(userID, planID)
	if err != nil {
		return false, err
	}
	if p == nil {
		return false, nil
	}

	if st.ID == "" {
		st.ID = uuid.NewString()
	}
	if st.Agent == "" {
		st.Agent = plan.AgentFor(st.Type)
	}
	if st.Status == "" {
		st.Status = plan.StepPending
	}
	if err := s.insertStep(planID, userID, st); err != nil {
		return false, err
	}
	return true, s.refreshTotal(planID)
}

// RemoveStep deletes a step and refreshes the total. Returns false when
// nothing was deleted.
func (s *Store) RemoveStep(userID, planID, stepID string) (bool, error) {
	res, err := s.DB.Exec(
		`DELETE FROM plan_steps WHERE id = ? AND plan_id = ? AND user_id = ?`,
		stepID, planID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to remove step %s of plan %s: %w", stepID, planID, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return false, nil
	}
	return true, s.refreshTotal(planID)
}

// SetStatus moves a plan to a new lifecycle status.
func (s *Store) SetStatus(planID string, status plan.Status) error {
	_, err := s.DB.Exec(
		`UPDATE plans SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(status), planID)
	if err != nil {
		return fmt.Errorf("failed to set plan %s status to %s: %w", planID, status, err)
	}
	return nil
}

// SetStepResult stores a dispatched step's status and result payload.
func (s *Store) SetStepResult(planID, stepID string, status plan.StepStatus, result map[string]any) error {
	_, err := s.DB.Exec(
		`UPDATE plan_steps SET status = ?, result = ? WHERE id = ? AND plan_id = ?`,
		string(status), marshalJSON(result), stepID, planID)
	if err != nil {
		return fmt.Errorf("failed to store result for step %s of plan %s: %w", stepID, planID, err)
	}
	return nil
}

// refreshTotal keeps the invariant: the plan's cached total always equals
// the sum of its steps' estimated prices.
func (s *Store) refreshTotal(planID string) error {
	_, err := s.DB.Exec(
		`UPDATE plans SET
			estimated_total_usd = ROUND(COALESCE((SELECT SUM(estimated_price_usd) FROM plan_steps WHERE plan_id = ?), 0), 2),
			updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`, planID, planID)
	return err
}

func marshalJSON(v any) string {
	if v == nil {
		return ""
	}
	data, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(data)
}

func unmarshalMap(ns sql.NullString) map[string]any {
	if !ns.Valid || ns.String == "" || ns.String == "null" {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(ns.String), &m); err != nil {
		return nil
	}
	return m
}

func unmarshalLocation(ns sql.NullString) *plan.Location {
	if !ns.Valid || ns.String == "" || ns.String == "null" {
		return nil
	}
	var loc plan.Location
	if err := json.Unmarshal([]byte(ns.String), &loc); err != nil {
		return nil
	}
	return &loc
}
