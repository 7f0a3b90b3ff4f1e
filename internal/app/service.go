// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Ishita-2210/teamforge-recommender/internal/adapters/datasource"
	feedbackqueue "github.com/Ishita-2210/teamforge-recommender/internal/adapters/mq/queue"
	workerpool "github.com/Ishita-2210/teamforge-recommender/internal/adapters/mq/worker"
	"github.com/Ishita-2210/teamforge-recommender/internal/adapters/repository"
	"github.com/Ishita-2210/teamforge-recommender/internal/domain/dedupe"
	"github.com/Ishita-2210/teamforge-recommender/internal/domain/embedding"
	"github.com/Ishita-2210/teamforge-recommender/internal/domain/explore"
	"github.com/Ishita-2210/teamforge-recommender/internal/domain/fusion"
	"github.com/Ishita-2210/teamforge-recommender/internal/domain/graph"
	"github.com/Ishita-2210/teamforge-recommender/internal/domain/model"
	"github.com/Ishita-2210/teamforge-recommender/internal/domain/skills"
	"github.com/Ishita-2210/teamforge-recommender/pkg/logger"
	"github.com/Ishita-2210/teamforge-recommender/pkg/metrics"
)

// ArtifactPaths names the optional on-disk artifacts. Empty paths mean the
// artifact is absent and the pipeline degrades deterministically.
type ArtifactPaths struct {
	TeamVectors    string
	UserVectors    string
	GraphVectors   string
	PrimaryModel   string
	PrimaryScaler  string
	SecondaryModel string
	BanditDB       string
}

// Service implements the ranking pipeline behind the HTTP API.
type Service struct {
	mu sync.RWMutex

	// Core components, built at Start.
	snapshot   *model.Snapshot
	userGraph  *graph.Graph
	edgeScorer *graph.EdgeScorer
	semantic   *embedding.SemanticProvider
	structural *embedding.StructuralProvider
	engine     *fusion.Engine
	bandit     *explore.Bandit
	exposure   *explore.ExposureTracker
	perturber  *explore.Perturber
	queue      feedbackqueue.Queue
	workerPool *workerpool.Pool
	armStore   *repository.BanditStore
	deduper    dedupe.Deduper

	// Configuration
	dataDir        string
	artifacts      ArtifactPaths
	workerCount    int
	queueSize      int
	blendPrimary   float64
	blendSecondary float64
	skillWeight    float64
	semanticWeight float64
	graphWeight    float64
	method         embedding.Method
	epsilon        float64
	explorePool    int
	exposureCap    int
	penaltyRate    float64
	banditDecay    float64
	dedupeSize     int

	// State
	started bool

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithDataDir sets the directory holding the snapshot CSVs.
func WithDataDir(dir string) Option {
	return func(s *Service) {
		if dir != "" {
			s.dataDir = dir
		}
	}
}

// WithSnapshot injects a pre-built snapshot, bypassing the CSV loader.
func WithSnapshot(snap *model.Snapshot) Option {
	return func(s *Service) {
		s.snapshot = snap
	}
}

// WithArtifacts sets the optional artifact paths.
func WithArtifacts(paths ArtifactPaths) Option {
	return func(s *Service) {
		s.artifacts = paths
	}
}

// WithWorkerCount sets the number of feedback workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the feedback queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithBlendWeights sets the ensemble blend weights. Applied literally,
// never renormalized.
func WithBlendWeights(primary, secondary float64) Option {
	return func(s *Service) {
		if primary >= 0 && secondary >= 0 && primary+secondary > 0 {
			s.blendPrimary = primary
			s.blendSecondary = secondary
		}
	}
}

// WithFeatureWeights sets the simple-path feature weights.
func WithFeatureWeights(skill, semantic, graphW float64) Option {
	return func(s *Service) {
		if skill >= 0 && semantic >= 0 && graphW >= 0 {
			s.skillWeight = skill
			s.semanticWeight = semantic
			s.graphWeight = graphW
		}
	}
}

// WithSimilarityMethod selects the structural similarity method.
// Unknown values fall back to cosine.
func WithSimilarityMethod(method string) Option {
	return func(s *Service) {
		switch strings.ToLower(strings.TrimSpace(method)) {
		case "dot":
			s.method = embedding.MethodDot
		case "euclidean":
			s.method = embedding.MethodEuclidean
		default:
			s.method = embedding.MethodCosine
		}
	}
}

// WithEpsilon sets the exploration probability for the simple path.
func WithEpsilon(epsilon float64) Option {
	return func(s *Service) {
		if epsilon >= 0 && epsilon <= 1 {
			s.epsilon = epsilon
		}
	}
}

// WithExplorePoolSize bounds the pool an exploratory pick is drawn from.
func WithExplorePoolSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.explorePool = size
		}
	}
}

// WithExposureCap sets the free-impression budget per candidate.
func WithExposureCap(cap int) Option {
	return func(s *Service) {
		if cap >= 0 {
			s.exposureCap = cap
		}
	}
}

// WithPenaltyRate sets the per-impression penalty above the cap.
func WithPenaltyRate(rate float64) Option {
	return func(s *Service) {
		if rate >= 0 {
			s.penaltyRate = rate
		}
	}
}

// WithBanditDecay sets the bandit's belief decay factor.
func WithBanditDecay(decay float64) Option {
	return func(s *Service) {
		if decay > 0 && decay <= 1 {
			s.banditDecay = decay
		}
	}
}

// WithDedupeSize sets the feedback idempotency retention window.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		dataDir:        "data",
		workerCount:    runtime.NumCPU() * 2,
		queueSize:      10000,
		blendPrimary:   0.45,
		blendSecondary: 0.55,
		skillWeight:    0.5,
		semanticWeight: 0.3,
		graphWeight:    0.2,
		method:         embedding.MethodCosine,
		epsilon:        0.05,
		explorePool:    100,
		exposureCap:    50,
		penaltyRate:    0.0005,
		banditDecay:    0.98,
		dedupeSize:     50000,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start builds all pipeline state eagerly: snapshot, graph, embedding
// repositories, model bundle, bandit, and the feedback workers. Nothing
// is lazily loaded on first request.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting recommender service...")

	if s.snapshot == nil {
		loader := datasource.NewLoader(datasource.WithDir(s.dataDir))
		snap, err := loader.Load(ctx)
		if err != nil {
			return err
		}
		s.snapshot = snap
	}

	s.userGraph = graph.Build(s.snapshot)
	metrics.UpdateGraphSize(s.userGraph.NodeCount(), s.userGraph.EdgeCount())
	s.edgeScorer = graph.NewEdgeScorer()

	s.loadEmbeddings(ctx)
	s.loadModels(ctx)

	if err := s.initBandit(ctx); err != nil {
		return err
	}

	s.exposure = explore.NewExposureTracker(
		explore.WithExposureCap(s.exposureCap),
		explore.WithPenaltyRate(s.penaltyRate),
	)
	s.perturber = explore.NewPerturber(
		explore.WithEpsilon(s.epsilon),
		explore.WithSamplePool(s.explorePool),
	)

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = feedbackqueue.NewInMemoryQueue(
		feedbackqueue.WithCapacity(s.queueSize),
	)
	s.workerPool = workerpool.NewPool(s.workerCount, s.queue, s)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "recommender service started",
		logger.Int("users", len(s.snapshot.Users)),
		logger.Int("teams", len(s.snapshot.Teams)),
		logger.Int("graphNodes", s.userGraph.NodeCount()),
		logger.Int("graphEdges", s.userGraph.EdgeCount()),
		logger.Int("workers", s.workerCount),
	)

	return nil
}

// loadEmbeddings loads whichever vector artifacts exist. A missing or
// unreadable artifact degrades that feature, it never fails Start.
func (s *Service) loadEmbeddings(ctx context.Context) {
	teams := s.loadRepository(ctx, "team_vectors", s.artifacts.TeamVectors)
	users := s.loadRepository(ctx, "user_vectors", s.artifacts.UserVectors)
	graphVecs := s.loadRepository(ctx, "graph_vectors", s.artifacts.GraphVectors)

	s.semantic = embedding.NewSemanticProvider(teams, users)
	s.structural = embedding.NewStructuralProvider(graphVecs)
}

func (s *Service) loadRepository(ctx context.Context, name, path string) *embedding.Repository {
	if path == "" {
		metrics.RecordModelFallback(name)
		return nil
	}
	repo, err := embedding.Load(path)
	if err != nil {
		s.logger.Warn(ctx, "embedding artifact unavailable",
			logger.String("artifact", name),
			logger.String("path", path),
			logger.Error(err),
		)
		metrics.RecordModelFallback(name)
		return nil
	}
	metrics.UpdateEmbeddingVectors(name, repo.Len())
	s.logger.Info(ctx, "embedding artifact loaded",
		logger.String("artifact", name),
		logger.Int("vectors", repo.Len()),
		logger.Int("dim", repo.Dim()),
	)
	return repo
}

// loadModels assembles the fusion engine from whichever models load.
func (s *Service) loadModels(ctx context.Context) {
	var engineOpts []fusion.Option

	if s.artifacts.PrimaryModel != "" {
		m, err := fusion.LoadModel(s.artifacts.PrimaryModel, s.artifacts.PrimaryScaler)
		if err != nil {
			s.logger.Warn(ctx, "primary model unavailable",
				logger.String("path", s.artifacts.PrimaryModel),
				logger.Error(err),
			)
			metrics.RecordModelFallback("primary_model")
		} else {
			engineOpts = append(engineOpts, fusion.WithPrimary(m))
		}
	} else {
		metrics.RecordModelFallback("primary_model")
	}

	if s.artifacts.SecondaryModel != "" {
		m, err := fusion.LoadModel(s.artifacts.SecondaryModel, "")
		if err != nil {
			s.logger.Warn(ctx, "secondary model unavailable",
				logger.String("path", s.artifacts.SecondaryModel),
				logger.Error(err),
			)
			metrics.RecordModelFallback("secondary_model")
		} else {
			engineOpts = append(engineOpts, fusion.WithSecondary(m))
		}
	} else {
		metrics.RecordModelFallback("secondary_model")
	}

	engineOpts = append(engineOpts, fusion.WithBlendWeights(s.blendPrimary, s.blendSecondary))
	s.engine = fusion.New(engineOpts...)
}

func (s *Service) initBandit(ctx context.Context) error {
	banditOpts := []explore.BanditOption{explore.WithDecay(s.banditDecay)}

	if s.artifacts.BanditDB != "" {
		store, err := repository.NewBanditStore(s.artifacts.BanditDB)
		if err != nil {
			return err
		}
		s.armStore = store
		banditOpts = append(banditOpts, explore.WithStore(store))
	}

	s.bandit = explore.NewBandit(banditOpts...)
	if err := s.bandit.Load(ctx); err != nil {
		s.logger.Warn(ctx, "bandit state load failed, starting cold", logger.Error(err))
	}
	metrics.UpdateBanditArms(s.bandit.ArmCount())
	return nil
}

// Stop gracefully shuts down the service.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx := context.Background()
	s.logger.Info(ctx, "stopping recommender service...")

	// Close the queue first so workers observe the drain, then signal
	// shutdown and wait.
	if q, ok := s.queue.(*feedbackqueue.InMemoryQueue); ok {
		_ = q.Close()
	}
	if s.workerPool != nil {
		s.workerPool.Stop()
	}
	if s.armStore != nil {
		_ = s.armStore.Close()
	}

	s.started = false
	s.logger.Info(ctx, "recommender service stopped")
}

// Rank scores every eligible candidate for the team and returns the
// ranked top-K with full per-candidate breakdowns. An unknown team or an
// empty candidate pool yields an empty slice, never an error.
func (s *Service) Rank(ctx context.Context, teamID int64, topK int, roles, requireSkills []string) ([]model.Recommendation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return nil, ErrNotStarted
	}

	start := time.Now()
	metrics.RecordRankingRequest()
	defer func() {
		metrics.ObserveRankingLatency(float64(time.Since(start).Milliseconds()))
	}()

	team, ok := s.snapshot.TeamByID(teamID)
	if !ok {
		s.logger.Debug(ctx, "unknown team", logger.Int64("teamID", teamID))
		metrics.RecordEmptyRanking()
		return []model.Recommendation{}, nil
	}

	candidates := s.candidatePool(team, roles, requireSkills)
	if len(candidates) == 0 {
		metrics.RecordEmptyRanking()
		return []model.Recommendation{}, nil
	}
	metrics.AddCandidatesScored(len(candidates))

	recs := s.scoreCandidates(team, candidates)

	if topK <= 0 || topK > len(recs) {
		topK = len(recs)
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].FusedScore > recs[j].FusedScore
	})

	var out []model.Recommendation
	if s.engine.Enabled() {
		out = recs[:topK]
	} else {
		// Exploration applies only to the deterministic weighted path.
		out = s.perturber.Apply(recs, topK)
		if len(out) > 0 && len(recs) > 0 && out[0].UserID != recs[0].UserID {
			metrics.RecordExploreSwap()
		}
	}

	shown := make([]int64, len(out))
	for i, r := range out {
		shown[i] = r.UserID
	}
	s.exposure.Record(shown)
	metrics.UpdateImpressionsTracked(s.exposure.Tracked())

	return out, nil
}

// candidatePool filters the user table down to eligible candidates:
// optional role filter, optional at-least-one-of skill filter, and
// exclusion of users already committed to the team's event.
func (s *Service) candidatePool(team model.Team, roles, requireSkills []string) []model.User {
	roleSet := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		r = strings.ToLower(strings.TrimSpace(r))
		if r != "" {
			roleSet[r] = struct{}{}
		}
	}
	skillList := make([]string, 0, len(requireSkills))
	for _, sk := range requireSkills {
		sk = strings.TrimSpace(sk)
		if sk != "" {
			skillList = append(skillList, sk)
		}
	}

	taken := make(map[int64]struct{})
	if team.EventID > 0 {
		for _, p := range s.snapshot.Participation {
			if p.EventID == team.EventID {
				taken[p.UserID] = struct{}{}
			}
		}
	}

	var pool []model.User
	for _, u := range s.snapshot.Users {
		if u.ID <= 0 {
			continue
		}
		if _, booked := taken[u.ID]; booked {
			continue
		}
		if len(roleSet) > 0 {
			if _, ok := roleSet[strings.ToLower(u.Role)]; !ok {
				continue
			}
		}
		if len(skillList) > 0 && !hasAnySkill(u.Skills, skillList) {
			continue
		}
		pool = append(pool, u)
	}
	return pool
}

func hasAnySkill(held map[string]model.SkillLevel, wanted []string) bool {
	for _, sk := range wanted {
		if _, ok := held[sk]; ok {
			return true
		}
	}
	return false
}

// scoreCandidates computes the three features for every candidate and
// fuses them, via the model ensemble when at least one model is loaded,
// else via the fixed weighted sum. The exposure penalty applies to both
// paths before the final sort.
func (s *Service) scoreCandidates(team model.Team, candidates []model.User) []model.Recommendation {
	semanticMap := s.semantic.ScoresForTeam(team.ID)

	candidateIDs := make([]int64, len(candidates))
	for i, u := range candidates {
		candidateIDs[i] = u.ID
	}

	var graphMap map[int64]float64
	if team.OwnerID > 0 && s.structural.Loaded() {
		graphMap = s.structural.BatchSimilarity(team.OwnerID, candidateIDs, s.method)
	}

	features := make([][]float64, len(candidates))
	recs := make([]model.Recommendation, len(candidates))
	for i, u := range candidates {
		skillScore := skills.Fit(u.Skills, team.Needs)
		semanticScore := semanticMap[u.ID]

		var graphScore float64
		switch {
		case graphMap != nil:
			graphScore = graphMap[u.ID]
		case team.OwnerID > 0:
			graphScore = s.edgeScorer.Score(s.userGraph, team.OwnerID, u.ID)
		}

		features[i] = []float64{skillScore, semanticScore, graphScore}
		recs[i] = model.Recommendation{
			UserID:        u.ID,
			SkillScore:    skillScore,
			SemanticScore: semanticScore,
			GraphScore:    graphScore,
		}
	}

	if s.engine.Enabled() {
		result := s.engine.Fuse(features)
		for i := range recs {
			recs[i].FusedScore = result.Fused[i]
			recs[i].PrimaryRaw = result.PrimaryRaw[i]
			recs[i].SecondaryRaw = result.SecondaryRaw[i]
		}
	} else {
		for i := range recs {
			recs[i].FusedScore = s.skillWeight*recs[i].SkillScore +
				s.semanticWeight*recs[i].SemanticScore +
				s.graphWeight*recs[i].GraphScore
		}
	}

	for i := range recs {
		penalized := recs[i].FusedScore - s.exposure.Penalty(recs[i].UserID)
		if penalized < 0 {
			penalized = 0
		}
		recs[i].FusedScore = penalized
	}

	return recs
}

// RecordFeedback maps the action to its reward, counts it, and enqueues
// the bandit update for asynchronous processing. The reward is returned
// synchronously so the caller can echo it. A non-empty eventID makes the
// submission idempotent: a resubmission within the retention window is
// acknowledged with duplicate=true and not applied again.
func (s *Service) RecordFeedback(ctx context.Context, eventID string, userID int64, action string) (reward float64, duplicate bool, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return 0, false, ErrNotStarted
	}
	if userID <= 0 {
		return 0, false, ErrInvalidUser
	}

	if eventID == "" {
		eventID = uuid.NewString()
	}
	reward = explore.RewardForAction(action)

	if s.deduper.SeenAndRecord(ctx, eventID) {
		return reward, true, nil
	}

	metrics.RecordFeedback(action)

	event := feedbackqueue.Event{
		ID:     eventID,
		UserID: userID,
		Action: action,
		Reward: reward,
	}
	if !s.queue.Enqueue(ctx, event) {
		// Allow the client to retry the same event ID.
		s.deduper.Unrecord(ctx, eventID)
		return reward, false, ErrQueueFull
	}

	return reward, false, nil
}

// ApplyReward applies one reward to the user's bandit arm. Called by the
// feedback workers. A persistence failure is returned so the worker can
// log and count it; the in-memory arm keeps the update either way.
func (s *Service) ApplyReward(ctx context.Context, userID int64, reward float64) error {
	_, err := s.bandit.Update(ctx, userID, reward)
	metrics.UpdateBanditArms(s.bandit.ArmCount())
	return err
}

// BanditArm exposes the current arm state for diagnostics.
func (s *Service) BanditArm(userID int64) explore.ArmState {
	return s.bandit.Arm(userID)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
	}

	if s.started {
		stats["users"] = len(s.snapshot.Users)
		stats["teams"] = len(s.snapshot.Teams)
		stats["graphNodes"] = s.userGraph.NodeCount()
		stats["graphEdges"] = s.userGraph.EdgeCount()
		stats["modelsLoaded"] = s.engine.Enabled()
		stats["semanticLoaded"] = s.semantic.Loaded()
		stats["structuralLoaded"] = s.structural.Loaded()
		stats["banditArms"] = s.bandit.ArmCount()
		stats["impressionsTracked"] = s.exposure.Tracked()
		stats["queueLength"] = s.queue.Len(context.Background())
		stats["dedupeEntries"] = s.deduper.Size()

		metrics.UpdateBanditArms(s.bandit.ArmCount())
		metrics.UpdateImpressionsTracked(s.exposure.Tracked())
	}

	return stats
}
