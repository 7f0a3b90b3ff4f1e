package simulation

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	service "github.com/Ishita-2210/teamforge-recommender/internal/app"
	"github.com/Ishita-2210/teamforge-recommender/internal/domain/explore"
	"github.com/Ishita-2210/teamforge-recommender/internal/domain/model"
	"github.com/Ishita-2210/teamforge-recommender/pkg/logger"
)

var simulatedActions = []string{
	explore.ActionSwipeRight,
	explore.ActionSwipeLeft,
	explore.ActionAccept,
	explore.ActionReject,
	explore.ActionTeamFormed,
	explore.ActionSpam,
}

// Report summarizes one simulation run.
type Report struct {
	Rankings       int
	EmptyRankings  int
	Recommended    int
	FeedbackSent   int
	FeedbackErrors int
	Elapsed        time.Duration
}

// Run starts an in-process service over the snapshot, ranks every team,
// and feeds back random actions on the returned candidates. It reports
// aggregate counts rather than asserting anything.
func Run(ctx context.Context, snap *model.Snapshot, topK int, seed int64) (*Report, error) {
	svc := service.New(
		service.WithSnapshot(snap),
		service.WithWorkerCount(2),
	)
	if err := svc.Start(ctx); err != nil {
		return nil, fmt.Errorf("start service: %w", err)
	}
	defer svc.Stop()

	rng := rand.New(rand.NewSource(seed))
	report := &Report{}
	start := time.Now()

	for _, team := range snap.Teams {
		recs, err := svc.Rank(ctx, team.ID, topK, nil, nil)
		if err != nil {
			return nil, fmt.Errorf("rank team %d: %w", team.ID, err)
		}
		report.Rankings++
		if len(recs) == 0 {
			report.EmptyRankings++
			continue
		}
		report.Recommended += len(recs)

		for _, rec := range recs {
			action := simulatedActions[rng.Intn(len(simulatedActions))]
			if _, _, err := svc.RecordFeedback(ctx, "", rec.UserID, action); err != nil {
				report.FeedbackErrors++
				continue
			}
			report.FeedbackSent++
		}
	}

	report.Elapsed = time.Since(start)
	logger.Get().Info(ctx, "simulation finished",
		logger.Int("rankings", report.Rankings),
		logger.Int("emptyRankings", report.EmptyRankings),
		logger.Int("recommended", report.Recommended),
		logger.Int("feedbackSent", report.FeedbackSent),
		logger.Int("feedbackErrors", report.FeedbackErrors),
		logger.String("elapsed", report.Elapsed.String()),
	)
	return report, nil
}
