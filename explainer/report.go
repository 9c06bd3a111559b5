package explainer

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"math"
	"time"

	"github.com/pkg/errors"

	"yashubustudio/explainer/internal/lime"
)

// ReportData is everything rendered into one HTML report.
type ReportData struct {
	Method      Method
	Explanation *lime.Explanation
	Neighbors   []Neighbor
	RunID       string
	NumSamples  int
	Seed        int64
	Generated   time.Time
}

type probabilityBar struct {
	Class   string
	Percent float64
	Top     bool
}

type featureBar struct {
	Word     string
	Position int
	Weight   float64
	Width    float64
	Positive bool
}

type tokenSpan struct {
	Word   string
	Weight float64
	Style  template.CSS
	Marked bool
}

type neighborRow struct {
	Text  string
	Label int
	Score float64
}

type reportView struct {
	Title       string
	MethodName  string
	DisplayName string
	Text        string
	Label       string
	Intercept   float64
	Score       float64
	LocalPred   float64
	Probs       []probabilityBar
	Features    []featureBar
	Tokens      []tokenSpan
	Neighbors   []neighborRow
	RunID       string
	NumSamples  int
	Seed        int64
	Generated   string
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: -apple-system, "Segoe UI", Helvetica, Arial, sans-serif; margin: 2em; color: #222; }
h1 { font-size: 1.4em; }
h2 { font-size: 1.1em; margin-top: 1.6em; }
table { border-collapse: collapse; }
td { padding: 2px 8px; vertical-align: middle; }
.bar { height: 14px; display: inline-block; }
.prob { background: #6a8fc7; }
.prob.top { background: #e08a2c; }
.pos { background: #4c9a5a; }
.neg { background: #c8504a; }
.text span { padding: 1px 2px; border-radius: 3px; }
.meta { color: #777; font-size: 0.85em; margin-top: 2em; }
</style>
</head>
<body>
<h1>{{.DisplayName}} <small>({{.MethodName}})</small></h1>
<p class="original">{{.Text}}</p>

<h2>Prediction probabilities</h2>
<table class="probabilities">
{{- range .Probs}}
<tr><td>{{.Class}}</td><td><span class="bar prob{{if .Top}} top{{end}}" style="width: {{printf "%.1f" .Percent}}px"></span></td><td>{{printf "%.2f" .Percent}}%</td></tr>
{{- end}}
</table>

<h2>Contributions to class {{.Label}}</h2>
<table class="features">
{{- range .Features}}
<tr><td>{{.Word}}</td><td><span class="bar {{if .Positive}}pos{{else}}neg{{end}}" style="width: {{printf "%.1f" .Width}}px"></span></td><td>{{printf "%+.4f" .Weight}}</td></tr>
{{- end}}
</table>
<p>intercept {{printf "%.4f" .Intercept}}, local prediction {{printf "%.4f" .LocalPred}}, score {{printf "%.4f" .Score}}</p>

<h2>Text with highlighted words</h2>
<p class="text">
{{- range .Tokens}}
{{if .Marked}}<span style="{{.Style}}" title="{{printf "%+.4f" .Weight}}">{{.Word}}</span>{{else}}<span>{{.Word}}</span>{{end}}
{{- end}}
</p>

{{- if .Neighbors}}
<h2>Similar training sentences</h2>
<table class="neighbors">
{{- range .Neighbors}}
<tr><td>{{.Label}}</td><td>{{printf "%.3f" .Score}}</td><td>{{.Text}}</td></tr>
{{- end}}
</table>
{{- end}}

<p class="meta">run {{.RunID}} · {{.NumSamples}} samples · seed {{.Seed}} · {{.Generated}}</p>
</body>
</html>
`))

// RenderReport writes the HTML report for data to w.
func RenderReport(w io.Writer, data ReportData) error {
	view, err := buildView(data)
	if err != nil {
		return err
	}
	if err := reportTemplate.Execute(w, view); err != nil {
		return errors.Wrap(err, "render report")
	}
	return nil
}

// WriteReport renders the report and atomically replaces path with it.
func WriteReport(path string, data ReportData) error {
	var buf bytes.Buffer
	if err := RenderReport(&buf, data); err != nil {
		return err
	}
	return writeFileAtomic(path, buf.Bytes())
}

func buildView(data ReportData) (*reportView, error) {
	exp := data.Explanation
	if exp == nil {
		return nil, errors.New("render report: explanation is nil")
	}
	labels := exp.AvailableLabels()
	if len(labels) == 0 {
		return nil, errors.New("render report: explanation has no labels")
	}
	label := labels[0]
	local := exp.Local[label]
	if local == nil {
		return nil, errors.Errorf("render report: label %d missing", label)
	}
	generated := data.Generated
	if generated.IsZero() {
		generated = time.Now()
	}
	view := &reportView{
		Title:       fmt.Sprintf("%s explanation (%s)", data.Method.DisplayName, data.Method.Name),
		MethodName:  data.Method.Name,
		DisplayName: data.Method.DisplayName,
		Text:        exp.Text,
		Label:       exp.ClassName(label),
		Intercept:   local.Intercept,
		Score:       local.Score,
		LocalPred:   local.LocalPred,
		RunID:       data.RunID,
		NumSamples:  data.NumSamples,
		Seed:        data.Seed,
		Generated:   generated.Format(time.RFC3339),
	}
	for i, p := range exp.PredictProba {
		view.Probs = append(view.Probs, probabilityBar{
			Class:   exp.ClassName(i),
			Percent: 100 * p,
			Top:     i == label,
		})
	}

	maxAbs := 0.0
	for _, fw := range local.Weights {
		maxAbs = math.Max(maxAbs, math.Abs(fw.Weight))
	}
	for _, fw := range local.Weights {
		width := 0.0
		if maxAbs > 0 {
			width = 200 * math.Abs(fw.Weight) / maxAbs
		}
		view.Features = append(view.Features, featureBar{
			Word:     fw.Word,
			Position: fw.Feature,
			Weight:   fw.Weight,
			Width:    width,
			Positive: fw.Weight >= 0,
		})
	}

	for _, n := range data.Neighbors {
		view.Neighbors = append(view.Neighbors, neighborRow{Text: n.Text, Label: n.Label, Score: n.Score})
	}

	weights := exp.WordWeights(label)
	for i, word := range exp.Words {
		span := tokenSpan{Word: word}
		if w, ok := weights[i]; ok && maxAbs > 0 {
			span.Marked = true
			span.Weight = w
			span.Style = highlight(w / maxAbs)
		}
		view.Tokens = append(view.Tokens, span)
	}
	return view, nil
}

// highlight maps a weight in [-1, 1] to a translucent green or red background.
func highlight(scaled float64) template.CSS {
	alpha := math.Min(1, math.Abs(scaled))*0.7 + 0.1
	if scaled >= 0 {
		return template.CSS(fmt.Sprintf("background-color: rgba(76, 154, 90, %.2f)", alpha))
	}
	return template.CSS(fmt.Sprintf("background-color: rgba(200, 80, 74, %.2f)", alpha))
}
