package preprocess

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"weatherchart/internal/csvio"
)

// SchemaVersion tags the artifact file layout.
const SchemaVersion = "weatherchart-preprocess/v1"

// Artifact holds everything needed to turn a raw training row into model
// input without refitting: the encoders, the scaler and the feature order.
// It is immutable once built.
type Artifact struct {
	runID       uuid.UUID
	createdAt   time.Time
	features    []string
	numerical   []string
	categorical []string
	encoders    map[string]*LabelEncoder
	target      *LabelEncoder
	scaler      *StandardScaler
	params      SplitParams

	// numPos maps a feature position to its scaler column, or -1.
	numPos []int
}

// SplitParams records how the partitions were drawn.
type SplitParams struct {
	SampleRows      int     `json:"sample_rows"`
	TestSize        float64 `json:"test_size"`
	RandomState     int64   `json:"random_state"`
	MinClassSamples int     `json:"min_class_samples"`
}

func newArtifact(features, numerical, categorical []string, encoders map[string]*LabelEncoder,
	target *LabelEncoder, scaler *StandardScaler, params SplitParams) (*Artifact, error) {
	a := &Artifact{
		runID:       uuid.New(),
		createdAt:   time.Now().UTC(),
		features:    features,
		numerical:   numerical,
		categorical: categorical,
		encoders:    encoders,
		target:      target,
		scaler:      scaler,
		params:      params,
	}
	return a, a.index()
}

func (a *Artifact) index() error {
	if a.scaler.Width() != len(a.numerical) {
		return fmt.Errorf("scaler width %d, %d numerical columns", a.scaler.Width(), len(a.numerical))
	}
	num := make(map[string]int, len(a.numerical))
	for i, c := range a.numerical {
		num[c] = i
	}
	a.numPos = make([]int, len(a.features))
	for i, f := range a.features {
		a.numPos[i] = -1
		if j, ok := num[f]; ok {
			a.numPos[i] = j
			continue
		}
		if _, ok := a.encoders[f]; !ok {
			return fmt.Errorf("feature %q is neither numerical nor encoded", f)
		}
	}
	return nil
}

func (a *Artifact) RunID() uuid.UUID      { return a.runID }
func (a *Artifact) CreatedAt() time.Time  { return a.createdAt }
func (a *Artifact) Params() SplitParams   { return a.params }
func (a *Artifact) Features() []string    { return append([]string(nil), a.features...) }
func (a *Artifact) Numerical() []string   { return append([]string(nil), a.numerical...) }
func (a *Artifact) Categorical() []string { return append([]string(nil), a.categorical...) }
func (a *Artifact) TargetClasses() []string {
	return a.target.Classes()
}

// Encoder returns the label encoder for a categorical column.
func (a *Artifact) Encoder(col string) (*LabelEncoder, bool) {
	e, ok := a.encoders[col]
	return e, ok
}

// Scaler returns the fitted scaler.
func (a *Artifact) Scaler() *StandardScaler { return a.scaler }

// TransformRow encodes and scales one raw row keyed by column name. The
// result follows Features order.
func (a *Artifact) TransformRow(row map[string]string) ([]float64, error) {
	out := make([]float64, len(a.features))
	num := make([]float64, len(a.numerical))
	for i, f := range a.features {
		raw := row[f]
		if j := a.numPos[i]; j >= 0 {
			v, err := parseNumeric(raw)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", f, err)
			}
			num[j] = v
			continue
		}
		code, err := a.encoders[f].Transform(categoryValue(raw))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f, err)
		}
		out[i] = float64(code)
	}
	a.scaler.Transform(num)
	for i, j := range a.numPos {
		if j >= 0 {
			out[i] = num[j]
		}
	}
	return out, nil
}

// EncodeLabel maps a raw target cell to its class index.
func (a *Artifact) EncodeLabel(raw string) (int, error) {
	return a.target.Transform(PrimaryGenre(raw))
}

type scalerJSON struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

type artifactJSON struct {
	SchemaVersion string              `json:"schema_version"`
	RunID         uuid.UUID           `json:"run_id"`
	CreatedAt     time.Time           `json:"created_at"`
	FeatureNames  []string            `json:"feature_names"`
	Numerical     []string            `json:"numerical_cols"`
	Categorical   []string            `json:"categorical_cols"`
	Encoders      map[string][]string `json:"encoders"`
	TargetClasses []string            `json:"target_classes"`
	Scaler        scalerJSON          `json:"scaler"`
	Split         SplitParams         `json:"split"`
}

func (a *Artifact) MarshalJSON() ([]byte, error) {
	enc := make(map[string][]string, len(a.encoders))
	for col, e := range a.encoders {
		enc[col] = e.classes
	}
	return json.Marshal(artifactJSON{
		SchemaVersion: SchemaVersion,
		RunID:         a.runID,
		CreatedAt:     a.createdAt,
		FeatureNames:  a.features,
		Numerical:     a.numerical,
		Categorical:   a.categorical,
		Encoders:      enc,
		TargetClasses: a.target.classes,
		Scaler:        scalerJSON{Mean: a.scaler.mean, Scale: a.scaler.scale},
		Split:         a.params,
	})
}

func (a *Artifact) UnmarshalJSON(data []byte) error {
	var w artifactJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.SchemaVersion != SchemaVersion {
		return fmt.Errorf("artifact schema %q, want %q", w.SchemaVersion, SchemaVersion)
	}
	scaler, err := newStandardScaler(w.Scaler.Mean, w.Scaler.Scale)
	if err != nil {
		return err
	}
	encoders := make(map[string]*LabelEncoder, len(w.Encoders))
	for col, classes := range w.Encoders {
		encoders[col] = newLabelEncoder(classes)
	}
	*a = Artifact{
		runID:       w.RunID,
		createdAt:   w.CreatedAt,
		features:    w.FeatureNames,
		numerical:   w.Numerical,
		categorical: w.Categorical,
		encoders:    encoders,
		target:      newLabelEncoder(w.TargetClasses),
		scaler:      scaler,
		params:      w.Split,
	}
	return a.index()
}

// Save writes the artifact as indented JSON.
func (a *Artifact) Save(path string) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

// LoadArtifact reads an artifact written by Save.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	a := new(Artifact)
	if err := json.Unmarshal(data, a); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// categoryValue maps a blank cell to the missing-category class.
func categoryValue(raw string) string {
	if csvio.IsBlank(raw) {
		return missingCategory
	}
	return raw
}

// parseNumeric reads a numerical cell; blank and NaN become NaN.
func parseNumeric(raw string) (float64, error) {
	if v, ok := csvio.ParseFloat(raw); ok {
		return v, nil
	}
	if csvio.IsBlank(raw) || strings.EqualFold(strings.TrimSpace(raw), "nan") {
		return math.NaN(), nil
	}
	return 0, fmt.Errorf("not a number: %q", raw)
}
