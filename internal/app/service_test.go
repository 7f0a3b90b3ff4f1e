package service_test

import (
	"context"
	"testing"
	"time"

	service "github.com/Ishita-2210/teamforge-recommender/internal/app"
	"github.com/Ishita-2210/teamforge-recommender/internal/domain/model"
	"github.com/Ishita-2210/teamforge-recommender/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	_ = logger.Init()
}

func testSnapshot() *model.Snapshot {
	return &model.Snapshot{
		Users: []model.User{
			{ID: 1, Role: "Backend", Skills: map[string]model.SkillLevel{
				"Go": model.LevelPro, "PostgreSQL": model.LevelIntermediate,
			}},
			{ID: 2, Role: "Frontend", Skills: map[string]model.SkillLevel{
				"React": model.LevelIntermediate,
			}},
			{ID: 3, Role: "Backend", Skills: map[string]model.SkillLevel{
				"Painting": model.LevelPro,
			}},
			{ID: 4, Role: "Backend", Skills: map[string]model.SkillLevel{
				"Go": model.LevelBeginner,
			}},
		},
		Teams: []model.Team{
			{ID: 10, OwnerID: 1, EventID: 100, Needs: []model.SkillRequirement{
				{Skill: "Go", Priority: model.PriorityHigh},
				{Skill: "React", Priority: model.PriorityMedium},
			}},
			{ID: 11, Needs: nil},
		},
		Participation: []model.Participation{
			{UserID: 2, TeamID: 99, EventID: 100},
		},
		Events: []model.Event{{ID: 100, Domain: "fintech"}},
	}
}

func startService(t *testing.T, opts ...service.Option) *service.Service {
	t.Helper()
	base := []service.Option{
		service.WithSnapshot(testSnapshot()),
		service.WithEpsilon(0), // deterministic ordering in tests
		service.WithWorkerCount(1),
	}
	svc := service.New(append(base, opts...)...)
	if err := svc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(svc.Stop)
	return svc
}

func TestServiceRank(t *testing.T) {
	convey.Convey("Given a started service with no model artifacts", t, func() {
		ctx := context.Background()
		svc := startService(t)

		convey.Convey("When ranking candidates for a team", func() {
			recs, err := svc.Rank(ctx, 10, 10, nil, nil)

			convey.Convey("Then stronger skill matches should rank higher", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(recs), convey.ShouldBeGreaterThan, 1)
				convey.So(recs[0].UserID, convey.ShouldEqual, 1) // Go Pro beats everyone
				convey.So(recs[0].FusedScore, convey.ShouldBeGreaterThan, recs[len(recs)-1].FusedScore)
			})

			convey.Convey("Then users committed to the team's event should be excluded", func() {
				convey.So(err, convey.ShouldBeNil)
				for _, r := range recs {
					convey.So(r.UserID, convey.ShouldNotEqual, 2)
				}
			})

			convey.Convey("Then every recommendation should carry its breakdown", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(recs[0].SkillScore, convey.ShouldBeGreaterThan, 0)
				convey.So(recs[0].SkillScore, convey.ShouldBeLessThanOrEqualTo, 1)
			})
		})

		convey.Convey("When ranking for an unknown team", func() {
			recs, err := svc.Rank(ctx, 999, 10, nil, nil)

			convey.Convey("Then it should return an empty result without error", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(recs, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When filtering by role", func() {
			recs, err := svc.Rank(ctx, 10, 10, []string{"backend"}, nil)

			convey.Convey("Then only users with that role should appear", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(recs), convey.ShouldBeGreaterThan, 0)
				for _, r := range recs {
					convey.So(r.UserID, convey.ShouldBeIn, []int64{1, 3, 4})
				}
			})
		})

		convey.Convey("When requiring a skill", func() {
			recs, err := svc.Rank(ctx, 10, 10, nil, []string{"Go"})

			convey.Convey("Then only users holding it should appear", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(recs), convey.ShouldEqual, 2)
				for _, r := range recs {
					convey.So(r.UserID, convey.ShouldBeIn, []int64{1, 4})
				}
			})
		})

		convey.Convey("When the filters eliminate everyone", func() {
			recs, err := svc.Rank(ctx, 10, 10, []string{"Designer"}, nil)

			convey.Convey("Then it should return an empty result without error", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(recs, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When topK is smaller than the pool", func() {
			recs, err := svc.Rank(ctx, 10, 1, nil, nil)

			convey.Convey("Then only topK entries should be returned", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(recs), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When a team has no needs", func() {
			recs, err := svc.Rank(ctx, 11, 10, nil, nil)

			convey.Convey("Then skill scores should all be zero", func() {
				convey.So(err, convey.ShouldBeNil)
				for _, r := range recs {
					convey.So(r.SkillScore, convey.ShouldEqual, 0)
				}
			})
		})
	})
}

func TestServiceFeedback(t *testing.T) {
	convey.Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := startService(t)

		convey.Convey("When recording a positive action", func() {
			reward, duplicate, err := svc.RecordFeedback(ctx, "", 1, "team_formed")

			convey.Convey("Then it should return the mapped reward", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(duplicate, convey.ShouldBeFalse)
				convey.So(reward, convey.ShouldEqual, 3.0)
			})
		})

		convey.Convey("When recording an unknown action", func() {
			reward, _, err := svc.RecordFeedback(ctx, "", 1, "shrug")

			convey.Convey("Then the reward should be zero", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(reward, convey.ShouldEqual, 0.0)
			})
		})

		convey.Convey("When recording feedback for an invalid user", func() {
			_, _, err := svc.RecordFeedback(ctx, "", 0, "accept")

			convey.Convey("Then it should error", func() {
				convey.So(err, convey.ShouldNotBeNil)
			})
		})

		convey.Convey("When resubmitting the same event id", func() {
			first, dup1, err1 := svc.RecordFeedback(ctx, "fb-retry-1", 1, "accept")
			second, dup2, err2 := svc.RecordFeedback(ctx, "fb-retry-1", 1, "accept")

			convey.Convey("Then the retry should be flagged as a duplicate", func() {
				convey.So(err1, convey.ShouldBeNil)
				convey.So(err2, convey.ShouldBeNil)
				convey.So(dup1, convey.ShouldBeFalse)
				convey.So(dup2, convey.ShouldBeTrue)
				convey.So(second, convey.ShouldEqual, first)
			})
		})

		convey.Convey("When the workers have processed a zero-reward action", func() {
			before := svc.BanditArm(7)
			_, _, err := svc.RecordFeedback(ctx, "", 7, "swipe_left")
			convey.So(err, convey.ShouldBeNil)

			// Allow the worker goroutine to drain the queue.
			var after = before
			for i := 0; i < 50; i++ {
				after = svc.BanditArm(7)
				if after.Beta > before.Beta {
					break
				}
				time.Sleep(10 * time.Millisecond)
			}

			convey.Convey("Then the arm's beta should have grown", func() {
				convey.So(after.Beta, convey.ShouldBeGreaterThan, before.Beta)
			})
		})
	})
}

func TestServiceLifecycle(t *testing.T) {
	convey.Convey("Given an unstarted service", t, func() {
		svc := service.New(service.WithSnapshot(testSnapshot()))

		convey.Convey("When ranking before Start", func() {
			_, err := svc.Rank(context.Background(), 10, 10, nil, nil)

			convey.Convey("Then it should return ErrNotStarted", func() {
				convey.So(err, convey.ShouldEqual, service.ErrNotStarted)
			})
		})

		convey.Convey("When starting twice", func() {
			ctx := context.Background()
			convey.So(svc.Start(ctx), convey.ShouldBeNil)
			defer svc.Stop()

			convey.Convey("Then the second Start should be a no-op", func() {
				convey.So(svc.Start(ctx), convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given a started service whose start context stays live", t, func() {
		svc := service.New(
			service.WithSnapshot(testSnapshot()),
			service.WithWorkerCount(1),
		)
		convey.So(svc.Start(context.Background()), convey.ShouldBeNil)

		convey.Convey("When stopping", func() {
			start := time.Now()
			svc.Stop()

			convey.Convey("Then shutdown should not wait out the worker timeout", func() {
				convey.So(time.Since(start), convey.ShouldBeLessThan, 2*time.Second)
			})
		})
	})
}

func TestServiceStats(t *testing.T) {
	convey.Convey("Given a started service", t, func() {
		svc := startService(t)

		convey.Convey("When fetching stats", func() {
			stats := svc.GetStats()

			convey.Convey("Then they should describe the loaded state", func() {
				convey.So(stats["started"], convey.ShouldBeTrue)
				convey.So(stats["users"], convey.ShouldEqual, 4)
				convey.So(stats["teams"], convey.ShouldEqual, 2)
				convey.So(stats["modelsLoaded"], convey.ShouldBeFalse)
			})
		})
	})
}
