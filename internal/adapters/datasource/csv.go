// Package datasource loads ranking snapshots from CSV files on disk.
//
// The loader is tolerant by design: alternate column names are accepted
// (id/team_id, event_id/hackathon_id, user_id/profile_id) and malformed
// rows are skipped rather than failing the whole load.
package datasource

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Ishita-2210/teamforge-recommender/internal/domain/model"
)

// Expected file names under the data directory.
const (
	usersFile         = "users.csv"
	userSkillsFile    = "user_skills.csv"
	teamsFile         = "teams.csv"
	teamSkillsFile    = "team_needed_skills.csv"
	participationFile = "participation.csv"
	eventsFile        = "events.csv"
)

// Loader reads snapshot CSVs from a directory.
type Loader struct {
	dir string
}

// Option configures a Loader.
type Option func(*Loader)

// WithDir sets the directory containing the CSV files.
func WithDir(dir string) Option {
	return func(l *Loader) {
		if dir != "" {
			l.dir = dir
		}
	}
}

// NewLoader creates a Loader with the given options.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{dir: "data"}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads all snapshot CSVs. Missing optional files (events,
// participation) yield empty slices; missing users or teams is an error.
func (l *Loader) Load(ctx context.Context) (*model.Snapshot, error) {
	snap := &model.Snapshot{}

	users, err := l.loadUsers(ctx)
	if err != nil {
		return nil, err
	}
	snap.Users = users

	teams, err := l.loadTeams(ctx)
	if err != nil {
		return nil, err
	}
	snap.Teams = teams

	snap.UserSkills, _ = l.loadUserSkills(ctx)
	snap.Participation, _ = l.loadParticipation(ctx)
	snap.Events, _ = l.loadEvents(ctx)

	needs, _ := l.loadTeamNeeds(ctx)
	for i := range snap.Teams {
		snap.Teams[i].Needs = needs[snap.Teams[i].ID]
	}

	skillsByUser := make(map[int64]map[string]model.SkillLevel)
	for _, us := range snap.UserSkills {
		m := skillsByUser[us.UserID]
		if m == nil {
			m = map[string]model.SkillLevel{}
			skillsByUser[us.UserID] = m
		}
		if us.Level > m[us.Skill] {
			m[us.Skill] = us.Level
		}
	}
	for i := range snap.Users {
		if m, ok := skillsByUser[snap.Users[i].ID]; ok {
			snap.Users[i].Skills = m
		}
	}

	return snap, nil
}

func (l *Loader) loadUsers(_ context.Context) ([]model.User, error) {
	rows, header, err := l.readAll(usersFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadFailed, usersFile, err)
	}
	idCol := header.first("id", "user_id")
	roleCol := header.first("primary_role", "role")

	users := make([]model.User, 0, len(rows))
	for _, row := range rows {
		id, ok := header.intAt(row, idCol)
		if !ok || id <= 0 {
			continue
		}
		u := model.User{ID: id, Skills: map[string]model.SkillLevel{}}
		if roleCol >= 0 && roleCol < len(row) {
			u.Role = strings.TrimSpace(row[roleCol])
		}
		users = append(users, u)
	}
	return users, nil
}

func (l *Loader) loadTeams(_ context.Context) ([]model.Team, error) {
	rows, header, err := l.readAll(teamsFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrReadFailed, teamsFile, err)
	}
	idCol := header.first("team_id", "id")
	ownerCol := header.first("owner_id")
	eventCol := header.first("event_id", "hackathon_id")
	textCol := header.first("project_text", "description")

	teams := make([]model.Team, 0, len(rows))
	for _, row := range rows {
		id, ok := header.intAt(row, idCol)
		if !ok || id <= 0 {
			continue
		}
		t := model.Team{ID: id}
		if owner, ok := header.intAt(row, ownerCol); ok {
			t.OwnerID = owner
		}
		if event, ok := header.intAt(row, eventCol); ok {
			t.EventID = event
		}
		if textCol >= 0 && textCol < len(row) {
			t.ProjectText = strings.TrimSpace(row[textCol])
		}
		teams = append(teams, t)
	}
	return teams, nil
}

func (l *Loader) loadUserSkills(_ context.Context) ([]model.UserSkill, error) {
	rows, header, err := l.readAll(userSkillsFile)
	if err != nil {
		return nil, err
	}
	userCol := header.first("user_id", "profile_id")
	skillCol := header.first("skill", "skill_name")
	levelCol := header.first("level")

	out := make([]model.UserSkill, 0, len(rows))
	for _, row := range rows {
		uid, ok := header.intAt(row, userCol)
		if !ok || uid <= 0 || skillCol < 0 || skillCol >= len(row) {
			continue
		}
		skill := strings.TrimSpace(row[skillCol])
		if skill == "" {
			continue
		}
		level := ""
		if levelCol >= 0 && levelCol < len(row) {
			level = row[levelCol]
		}
		out = append(out, model.UserSkill{
			UserID: uid,
			Skill:  skill,
			Level:  model.ParseSkillLevel(level),
		})
	}
	return out, nil
}

func (l *Loader) loadTeamNeeds(_ context.Context) (map[int64][]model.SkillRequirement, error) {
	rows, header, err := l.readAll(teamSkillsFile)
	if err != nil {
		return nil, err
	}
	teamCol := header.first("team_id")
	skillCol := header.first("skill", "skill_name")
	levelCol := header.first("min_level", "level")
	priorityCol := header.first("priority")

	out := make(map[int64][]model.SkillRequirement)
	for _, row := range rows {
		tid, ok := header.intAt(row, teamCol)
		if !ok || tid <= 0 || skillCol < 0 || skillCol >= len(row) {
			continue
		}
		skill := strings.TrimSpace(row[skillCol])
		if skill == "" {
			continue
		}
		level, priority := "", ""
		if levelCol >= 0 && levelCol < len(row) {
			level = row[levelCol]
		}
		if priorityCol >= 0 && priorityCol < len(row) {
			priority = row[priorityCol]
		}
		out[tid] = append(out[tid], model.SkillRequirement{
			Skill:    skill,
			MinLevel: model.ParseSkillLevel(level),
			Priority: model.ParsePriority(priority),
		})
	}
	return out, nil
}

func (l *Loader) loadParticipation(_ context.Context) ([]model.Participation, error) {
	rows, header, err := l.readAll(participationFile)
	if err != nil {
		return nil, err
	}
	userCol := header.first("user_id", "profile_id")
	teamCol := header.first("team_id")
	eventCol := header.first("event_id", "hackathon_id")

	out := make([]model.Participation, 0, len(rows))
	for _, row := range rows {
		uid, ok := header.intAt(row, userCol)
		if !ok || uid <= 0 {
			continue
		}
		p := model.Participation{UserID: uid}
		if tid, ok := header.intAt(row, teamCol); ok {
			p.TeamID = tid
		}
		if eid, ok := header.intAt(row, eventCol); ok {
			p.EventID = eid
		}
		out = append(out, p)
	}
	return out, nil
}

func (l *Loader) loadEvents(_ context.Context) ([]model.Event, error) {
	rows, header, err := l.readAll(eventsFile)
	if err != nil {
		return nil, err
	}
	idCol := header.first("event_id", "id", "hackathon_id")
	domainCol := header.first("domain", "event_type")

	out := make([]model.Event, 0, len(rows))
	for _, row := range rows {
		id, ok := header.intAt(row, idCol)
		if !ok || id <= 0 {
			continue
		}
		e := model.Event{ID: id}
		if domainCol >= 0 && domainCol < len(row) {
			e.Domain = strings.TrimSpace(row[domainCol])
		}
		out = append(out, e)
	}
	return out, nil
}

// columnIndex maps lowercased header names to positions.
type columnIndex map[string]int

func (c columnIndex) first(names ...string) int {
	for _, n := range names {
		if i, ok := c[n]; ok {
			return i
		}
	}
	return -1
}

func (c columnIndex) intAt(row []string, col int) (int64, bool) {
	if col < 0 || col >= len(row) {
		return 0, false
	}
	v, err := strconv.ParseInt(strings.TrimSpace(row[col]), 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// readAll parses one CSV file into rows plus a header index. Rows with
// the wrong field count are skipped.
func (l *Loader) readAll(name string) ([][]string, columnIndex, error) {
	f, err := os.Open(filepath.Join(l.dir, name))
	if err != nil {
		return nil, nil, err
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	r.FieldsPerRecord = -1

	headerRow, err := r.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrMissingHeader, name)
	}
	header := make(columnIndex, len(headerRow))
	for i, h := range headerRow {
		header[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var rows [][]string
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Skip malformed rows and keep going.
			continue
		}
		rows = append(rows, row)
	}
	return rows, header, nil
}
