package fusion_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Ishita-2210/teamforge-recommender/internal/domain/fusion"
	"github.com/smartystreets/goconvey/convey"
)

func writeArtifact(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return path
}

const linearArtifact = `{"type":"linear","weights":[0.5,0.3,0.2],"bias":0.1}`

const treeArtifact = `{"type":"trees","base_score":0.2,"trees":[
	{"nodes":[
		{"feature":0,"threshold":0.5,"left":1,"right":2},
		{"feature":-1,"value":0.1},
		{"feature":-1,"value":0.8}
	]}
]}`

func TestLoadModel(t *testing.T) {
	convey.Convey("Given model artifacts on disk", t, func() {
		convey.Convey("When loading a linear model", func() {
			m, err := fusion.LoadModel(writeArtifact(t, "linear.json", linearArtifact), "")

			convey.So(err, convey.ShouldBeNil)
			convey.So(m.Predict([]float64{1, 1, 1}), convey.ShouldAlmostEqual, 1.1, 1e-9)
		})

		convey.Convey("When loading a tree model", func() {
			m, err := fusion.LoadModel(writeArtifact(t, "trees.json", treeArtifact), "")

			convey.So(err, convey.ShouldBeNil)
			convey.So(m.Predict([]float64{0.9, 0, 0}), convey.ShouldAlmostEqual, 1.0, 1e-9)
			convey.So(m.Predict([]float64{0.1, 0, 0}), convey.ShouldAlmostEqual, 0.3, 1e-9)
		})

		convey.Convey("When the kind is unknown", func() {
			_, err := fusion.LoadModel(writeArtifact(t, "bad.json", `{"type":"svm"}`), "")
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("When a linear model has the wrong weight count", func() {
			_, err := fusion.LoadModel(writeArtifact(t, "short.json", `{"type":"linear","weights":[1]}`), "")
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("When the file is missing", func() {
			_, err := fusion.LoadModel(filepath.Join(t.TempDir(), "nope.json"), "")
			convey.So(err, convey.ShouldNotBeNil)
		})

		convey.Convey("When the scaler artifact is present", func() {
			scaler := writeArtifact(t, "scaler.json", `{"mean":[0.5,0.5,0.5],"scale":[0.25,0.25,0.25]}`)
			m, err := fusion.LoadModel(writeArtifact(t, "linear.json", linearArtifact), scaler)

			convey.So(err, convey.ShouldBeNil)
			convey.So(m.Scaler(), convey.ShouldNotBeNil)
		})

		convey.Convey("When the scaler artifact is broken", func() {
			scaler := writeArtifact(t, "scaler.json", `{`)
			m, err := fusion.LoadModel(writeArtifact(t, "linear.json", linearArtifact), scaler)

			convey.Convey("Then the model should load without it", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(m.Scaler(), convey.ShouldBeNil)
			})
		})
	})
}

func TestScalerTransform(t *testing.T) {
	convey.Convey("Given a fitted scaler", t, func() {
		s := &fusion.Scaler{Mean: []float64{1, 2}, Scale: []float64{2, 0}}

		convey.Convey("When transforming rows", func() {
			out := s.Transform([][]float64{{3, 2, 9}})

			convey.Convey("Then columns scale, zero scale divides by one, extras pass through", func() {
				convey.So(out[0][0], convey.ShouldAlmostEqual, 1.0, 1e-9)
				convey.So(out[0][1], convey.ShouldAlmostEqual, 0.0, 1e-9)
				convey.So(out[0][2], convey.ShouldAlmostEqual, 9.0, 1e-9)
			})
		})
	})
}

func TestEngineFuse(t *testing.T) {
	convey.Convey("Given an engine with no models", t, func() {
		e := fusion.New()

		convey.Convey("Then it should report disabled", func() {
			convey.So(e.Enabled(), convey.ShouldBeFalse)
		})

		convey.Convey("When fusing anyway", func() {
			res := e.Fuse([][]float64{{1, 1, 1}, {0, 0, 0}})

			convey.Convey("Then all fused scores should be zero", func() {
				convey.So(res.Fused, convey.ShouldResemble, []float64{0, 0})
			})
		})
	})

	convey.Convey("Given an engine with one linear model", t, func() {
		m, err := fusion.LoadModel(writeArtifact(t, "linear.json", linearArtifact), "")
		convey.So(err, convey.ShouldBeNil)
		e := fusion.New(fusion.WithPrimary(m), fusion.WithBlendWeights(0.45, 0.55))

		convey.Convey("Then it should report enabled", func() {
			convey.So(e.Enabled(), convey.ShouldBeTrue)
		})

		convey.Convey("When fusing a batch", func() {
			res := e.Fuse([][]float64{
				{1.0, 0.9, 0.8},
				{0.5, 0.4, 0.3},
				{0.1, 0.0, 0.0},
			})

			convey.Convey("Then higher features should fuse higher, bounded by the weights", func() {
				convey.So(res.Fused[0], convey.ShouldBeGreaterThan, res.Fused[1])
				convey.So(res.Fused[1], convey.ShouldBeGreaterThan, res.Fused[2])
				for _, v := range res.Fused {
					convey.So(v, convey.ShouldBeGreaterThanOrEqualTo, 0.0)
					convey.So(v, convey.ShouldBeLessThanOrEqualTo, 1.0)
				}
			})

			convey.Convey("Then raw outputs should be exposed for diagnostics", func() {
				convey.So(len(res.PrimaryRaw), convey.ShouldEqual, 3)
				convey.So(res.SecondaryRaw, convey.ShouldResemble, []float64{0, 0, 0})
			})
		})

		convey.Convey("When fusing a single candidate", func() {
			res := e.Fuse([][]float64{{1, 1, 1}})

			convey.Convey("Then the degenerate normalization should yield zero", func() {
				convey.So(res.Fused, convey.ShouldResemble, []float64{0})
			})
		})

		convey.Convey("When fusing an empty batch", func() {
			res := e.Fuse(nil)
			convey.So(res.Fused, convey.ShouldBeEmpty)
		})
	})
}

func TestMinMaxHelpers(t *testing.T) {
	convey.Convey("Given score vectors", t, func() {
		convey.Convey("When normalizing a spread vector", func() {
			out := fusion.MinMaxVector([]float64{2, 4, 3})
			convey.So(out, convey.ShouldResemble, []float64{0, 1, 0.5})
		})

		convey.Convey("When normalizing a constant vector", func() {
			out := fusion.MinMaxVector([]float64{5, 5, 5})
			convey.So(out, convey.ShouldResemble, []float64{0, 0, 0})
		})
	})

	convey.Convey("Given feature rows", t, func() {
		convey.Convey("When normalizing columns", func() {
			out := fusion.MinMaxColumns([][]float64{{0, 10}, {2, 10}})

			convey.Convey("Then spread columns map to [0,1] and constant columns to zero", func() {
				convey.So(out[0][0], convey.ShouldEqual, 0.0)
				convey.So(out[1][0], convey.ShouldEqual, 1.0)
				convey.So(out[0][1], convey.ShouldEqual, 0.0)
				convey.So(out[1][1], convey.ShouldEqual, 0.0)
			})
		})
	})
}
