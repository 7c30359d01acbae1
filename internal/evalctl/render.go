package evalctl

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"

	"github.com/okian/breedgrade/internal/domain/model"
	"github.com/okian/breedgrade/internal/domain/rubric"
	"github.com/okian/breedgrade/internal/domain/scoring"
)

// bandColor picks the colour of a percentage.
func bandColor(p int) *color.Color {
	switch scoring.Classify(p) {
	case scoring.BandStrong:
		return color.New(color.FgGreen)
	case scoring.BandFair:
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgRed)
	}
}

func percent(p int) string {
	return bandColor(p).Sprintf("%d%%", p)
}

// RenderEvaluations prints a table of evaluations.
func RenderEvaluations(w io.Writer, list []model.Evaluation) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"ID", "Dog", "Owner", "Gender", "Age", "Total", "Score", "Created"})
	for _, e := range list {
		table.Append([]string{
			e.ID,
			e.DogName,
			e.OwnerName,
			string(e.Gender),
			strconv.Itoa(e.AgeMonths) + "m",
			fmt.Sprintf("%d/%d", e.TotalScore, rubric.MaxScore),
			percent(e.Percentage),
			e.CreatedAt.Local().Format(time.DateTime),
		})
	}
	table.Render()
}

// RenderEvaluation prints one evaluation with its per-trait scores.
func RenderEvaluation(w io.Writer, e model.Evaluation) {
	color.New(color.FgCyan).Fprintf(w, "\n%s (%s)\n", e.DogName, e.ID)
	fmt.Fprintf(w, "Owner: %s  Gender: %s  Age: %d months\n", e.OwnerName, e.Gender, e.AgeMonths)
	if e.RegistrationNumber != "" {
		fmt.Fprintf(w, "Registration: %s\n", e.RegistrationNumber)
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Trait", "Score"})
	for _, t := range rubric.Traits() {
		table.Append([]string{t.Label, fmt.Sprintf("%d/%d", e.Scores[t.Key], rubric.MaxTraitScore)})
	}
	table.SetFooter([]string{"Total", fmt.Sprintf("%d/%d (%s)", e.TotalScore, rubric.MaxScore, percent(e.Percentage))})
	table.Render()

	if e.Notes != "" {
		fmt.Fprintf(w, "Notes: %s\n", e.Notes)
	}
}

// RenderStats prints the evaluation summary.
func RenderStats(w io.Writer, s model.Stats) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Total Evaluations", "Average Score"})
	table.Append([]string{strconv.Itoa(s.Total), fmt.Sprintf("%.1f%%", s.AvgScore)})
	table.Render()
}

// RenderRubric prints the scoring traits.
func RenderRubric(w io.Writer, r Rubric) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Key", "Trait", "Description"})
	for _, t := range r.Traits {
		table.Append([]string{t.Key, t.Label, t.Description})
	}
	table.Render()
	fmt.Fprintf(w, "Each trait scores %d-%d; maximum total %d.\n", r.MinTraitScore, r.MaxTraitScore, r.MaxScore)
}

// RenderSeedReport prints the outcome of a seed run.
func RenderSeedReport(w io.Writer, rep SeedReport) {
	color.New(color.FgYellow).Fprintln(w, "\nSeed Summary")
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Value"})
	rows := [][]string{
		{"Generated", strconv.Itoa(rep.Generated)},
		{"Successful", strconv.Itoa(rep.Successful)},
		{"Rejected", strconv.Itoa(rep.Rejected)},
		{"Failed", strconv.Itoa(rep.Failed)},
		{"Total before", strconv.Itoa(rep.Before.Total)},
		{"Total after", strconv.Itoa(rep.After.Total)},
		{"Server average", fmt.Sprintf("%.1f", rep.After.AvgScore)},
		{"Duration", rep.Duration.Round(time.Millisecond).String()},
	}
	if rep.MeanChecked {
		rows = append(rows, []string{"Recomputed average", fmt.Sprintf("%.1f", rep.LocalMean)})
	}
	table.AppendBulk(rows)
	table.Render()
}
