package tui

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/exp/maps"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"arcade-go/internal/game/ranking"
	"arcade-go/internal/stats"
)

// NoScore marks a game without recorded runs.
const NoScore = stats.NoScore

const timeLayout = "2006-01-02 15:04"

var (
	printer = message.NewPrinter(language.English)

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	gameStyle   = lipgloss.NewStyle().Bold(true)
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
)

// FormatScore renders a score with digit grouping and at most two decimals.
func FormatScore(score float64) string {
	return printer.Sprint(number.Decimal(score, number.MaxFractionDigits(2)))
}

func newTable() *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle)
}

// RenderRankings formats one game's best runs, best first, with medals on
// the podium.
func RenderRankings(gameName string, records []stats.ScoreRecord, loc *time.Location) string {
	var sb strings.Builder
	sb.WriteString(gameStyle.Render(gameName))
	sb.WriteString("\n")

	if len(records) == 0 {
		sb.WriteString(emptyStyle.Render("  no scores yet"))
		sb.WriteString("\n")
		return sb.String()
	}

	scores := make([]float64, len(records))
	for i, r := range records {
		scores[i] = r.Score
	}
	standings := ranking.Standings(scores)

	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			standings[i].Medal,
			FormatScore(r.Score),
			r.RecordedAt.In(loc).Format(timeLayout),
		}
	}

	t := newTable().
		Headers("RANK", "SCORE", "PLAYED").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row >= 0 && row < len(standings) {
				if m, ok := ranking.MedalFor(standings[row].Position); ok {
					return cellStyle.Foreground(lipgloss.Color(m.Color))
				}
			}
			return cellStyle
		})

	sb.WriteString(t.String())
	sb.WriteString("\n")
	return sb.String()
}

// RenderAllRankings formats the rankings of every game in name order.
func RenderAllRankings(all map[string][]stats.ScoreRecord, loc *time.Location) string {
	names := maps.Keys(all)
	slices.Sort(names)

	var sb strings.Builder
	for i, name := range names {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(RenderRankings(name, all[name], loc))
	}
	return sb.String()
}

// RenderHistory formats runs in the order given.
func RenderHistory(gameName string, records []stats.ScoreRecord, loc *time.Location) string {
	if len(records) == 0 {
		return fmt.Sprintf("%s\n%s\n", gameStyle.Render(gameName), emptyStyle.Render("  no runs in range"))
	}

	rows := make([][]string, len(records))
	for i, r := range records {
		rows[i] = []string{
			printer.Sprint(r.ID),
			FormatScore(r.Score),
			r.RecordedAt.In(loc).Format(timeLayout),
		}
	}
	t := newTable().
		Headers("RUN", "SCORE", "PLAYED").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	return gameStyle.Render(gameName) + "\n" + t.String() + "\n"
}
