// Package simulation generates synthetic matching snapshots and exercises
// the ranking pipeline against them.
package simulation

import (
	"context"
	"encoding/csv"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Ishita-2210/teamforge-recommender/internal/domain/model"
	"github.com/Ishita-2210/teamforge-recommender/pkg/logger"
)

const generatedFilePermission = 0o600

var (
	roles  = []string{"Backend", "Frontend", "Mobile", "Data", "Design", "Product"}
	levels = []string{"Beginner", "Intermediate", "Pro"}

	priorities = []string{"Low", "Medium", "High"}

	domains = []string{"fintech", "healthtech", "edtech", "gaming", "climate", "devtools"}

	skillNames = []string{
		"Go", "Python", "TypeScript", "React", "PostgreSQL", "Kubernetes",
		"Rust", "Swift", "Figma", "TensorFlow", "GraphQL", "Terraform",
	}

	projectFragments = []string{
		"realtime collaboration", "payment reconciliation", "health tracking",
		"study planner", "match scheduler", "carbon dashboard", "api gateway",
		"trading simulator", "habit coach", "inventory sync",
	}
)

// Config bounds the generated snapshot.
type Config struct {
	Users         int
	Teams         int
	Events        int
	SkillsPerUser int
	NeedsPerTeam  int
	Seed          int64
}

// Option configures the generator.
type Option func(*Config)

// WithUsers sets the user count.
func WithUsers(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.Users = n
		}
	}
}

// WithTeams sets the team count.
func WithTeams(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.Teams = n
		}
	}
}

// WithEvents sets the event count.
func WithEvents(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.Events = n
		}
	}
}

// WithSeed fixes the random source so runs are reproducible.
func WithSeed(seed int64) Option {
	return func(c *Config) {
		c.Seed = seed
	}
}

// Generate builds a synthetic snapshot: users with skill sets, events with
// domains, teams with needs and owners, and participation rows linking a
// share of the users into past teams.
func Generate(opts ...Option) *model.Snapshot {
	cfg := &Config{
		Users:         200,
		Teams:         20,
		Events:        5,
		SkillsPerUser: 3,
		NeedsPerTeam:  3,
		Seed:          1,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	rng := rand.New(rand.NewSource(cfg.Seed))

	snap := &model.Snapshot{}

	for i := 0; i < cfg.Events; i++ {
		snap.Events = append(snap.Events, model.Event{
			ID:     int64(i + 1),
			Domain: domains[rng.Intn(len(domains))],
		})
	}

	for i := 0; i < cfg.Users; i++ {
		id := int64(i + 1)
		u := model.User{
			ID:     id,
			Role:   roles[rng.Intn(len(roles))],
			Skills: map[string]model.SkillLevel{},
		}
		for len(u.Skills) < cfg.SkillsPerUser {
			name := skillNames[rng.Intn(len(skillNames))]
			if _, ok := u.Skills[name]; ok {
				continue
			}
			level := model.ParseSkillLevel(levels[rng.Intn(len(levels))])
			u.Skills[name] = level
			snap.UserSkills = append(snap.UserSkills, model.UserSkill{
				UserID: id, Skill: name, Level: level,
			})
		}
		snap.Users = append(snap.Users, u)
	}

	for i := 0; i < cfg.Teams; i++ {
		id := int64(i + 1)
		t := model.Team{
			ID:          id,
			OwnerID:     int64(rng.Intn(cfg.Users) + 1),
			EventID:     int64(rng.Intn(cfg.Events) + 1),
			ProjectText: projectFragments[rng.Intn(len(projectFragments))],
		}
		seen := map[string]bool{}
		for len(t.Needs) < cfg.NeedsPerTeam {
			name := skillNames[rng.Intn(len(skillNames))]
			if seen[name] {
				continue
			}
			seen[name] = true
			t.Needs = append(t.Needs, model.SkillRequirement{
				Skill:    name,
				MinLevel: model.ParseSkillLevel(levels[rng.Intn(len(levels))]),
				Priority: model.ParsePriority(priorities[rng.Intn(len(priorities))]),
			})
		}
		snap.Teams = append(snap.Teams, t)
	}

	// Roughly a third of the users have prior team history.
	for i := 0; i < cfg.Users/3; i++ {
		snap.Participation = append(snap.Participation, model.Participation{
			UserID:  int64(rng.Intn(cfg.Users) + 1),
			TeamID:  int64(rng.Intn(cfg.Teams) + 1),
			EventID: int64(rng.Intn(cfg.Events) + 1),
		})
	}

	return snap
}

// WriteCSV dumps the snapshot to dir in the layout the CSV loader reads.
func WriteCSV(ctx context.Context, snap *model.Snapshot, dir string) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	write := func(name string, header []string, rows [][]string) error {
		f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_TRUNC, generatedFilePermission)
		if err != nil {
			return fmt.Errorf("create %s: %w", name, err)
		}
		defer func() { _ = f.Close() }()

		w := csv.NewWriter(f)
		if err := w.Write(header); err != nil {
			return fmt.Errorf("write %s header: %w", name, err)
		}
		for _, row := range rows {
			if err := w.Write(row); err != nil {
				return fmt.Errorf("write %s row: %w", name, err)
			}
		}
		w.Flush()
		return w.Error()
	}

	userRows := make([][]string, len(snap.Users))
	for i, u := range snap.Users {
		userRows[i] = []string{formatID(u.ID), u.Role}
	}
	if err := write("users.csv", []string{"id", "primary_role"}, userRows); err != nil {
		return err
	}

	var skillRows [][]string
	for _, us := range snap.UserSkills {
		skillRows = append(skillRows, []string{formatID(us.UserID), us.Skill, levelName(us.Level)})
	}
	if err := write("user_skills.csv", []string{"user_id", "skill", "level"}, skillRows); err != nil {
		return err
	}

	teamRows := make([][]string, len(snap.Teams))
	var needRows [][]string
	for i, t := range snap.Teams {
		teamRows[i] = []string{formatID(t.ID), formatID(t.OwnerID), formatID(t.EventID), t.ProjectText}
		for _, n := range t.Needs {
			needRows = append(needRows, []string{formatID(t.ID), n.Skill, levelName(n.MinLevel), priorityName(n.Priority)})
		}
	}
	if err := write("teams.csv", []string{"team_id", "owner_id", "event_id", "project_text"}, teamRows); err != nil {
		return err
	}
	if err := write("team_needed_skills.csv", []string{"team_id", "skill", "min_level", "priority"}, needRows); err != nil {
		return err
	}

	partRows := make([][]string, len(snap.Participation))
	for i, p := range snap.Participation {
		partRows[i] = []string{formatID(p.UserID), formatID(p.TeamID), formatID(p.EventID)}
	}
	if err := write("participation.csv", []string{"user_id", "team_id", "event_id"}, partRows); err != nil {
		return err
	}

	eventRows := make([][]string, len(snap.Events))
	for i, e := range snap.Events {
		eventRows[i] = []string{formatID(e.ID), e.Domain}
	}
	if err := write("events.csv", []string{"event_id", "domain"}, eventRows); err != nil {
		return err
	}

	logger.Get().Info(ctx, "snapshot written",
		logger.String("dir", dir),
		logger.Int("users", len(snap.Users)),
		logger.Int("teams", len(snap.Teams)),
	)
	return nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func levelName(l model.SkillLevel) string {
	switch l {
	case model.LevelPro:
		return "Pro"
	case model.LevelIntermediate:
		return "Intermediate"
	default:
		return "Beginner"
	}
}

func priorityName(p model.Priority) string {
	switch p {
	case model.PriorityHigh:
		return "High"
	case model.PriorityLow:
		return "Low"
	default:
		return "Medium"
	}
}
