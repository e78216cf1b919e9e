// Package report computes attendance and quiz summaries for a user, plus the
// optional AI narrative over them.
package report

import (
	"context"
	"math"
	"regexp"
	"time"

	"github.com/ST-CK/Sturoom/internal/quiz"
)

var uuidRe = regexp.MustCompile(
	`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

const trendDays = 14

type Aggregator struct {
	store quiz.Store
	now   func() time.Time
}

func NewAggregator(store quiz.Store) *Aggregator {
	return &Aggregator{store: store, now: time.Now}
}

// ResolveUserID accepts either a UUID or an email address.
func (a *Aggregator) ResolveUserID(ctx context.Context, identifier string) (string, error) {
	if uuidRe.MatchString(identifier) {
		return identifier, nil
	}
	p, err := a.store.GetProfileByEmail(ctx, identifier)
	if err != nil {
		return "", err
	}
	return p.ID, nil
}

type DailyEntry struct {
	Date    string `json:"date"`
	Seconds int    `json:"seconds"`
}

type AttendanceSummary struct {
	Days            int          `json:"days"`
	TotalSeconds    int          `json:"total_seconds"`
	TodaySeconds    int          `json:"today_seconds"`
	Sessions        int          `json:"sessions"`
	CurrentStreak   int          `json:"current_streak"`
	BestStreak      int          `json:"best_streak"`
	ThisWeekSeconds int          `json:"this_week_seconds"`
	Daily           []DailyEntry `json:"daily"`
	Trend           []int        `json:"trend"` // minutes/day, oldest first, 14 entries
}

type QuizSummary struct {
	TotalRuns       int     `json:"total_runs"`
	AverageScore    float64 `json:"average_score"`
	BestScore       float64 `json:"best_score"`
	LatestScore     float64 `json:"latest_score"`
	TotalQuestions  int     `json:"total_questions"`
	TotalCorrect    int     `json:"total_correct"`
	TotalIncorrect  int     `json:"total_incorrect"`
	AccuracyOverall float64 `json:"accuracy_overall"`
}

type UserProfile struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type Summary struct {
	User            UserProfile       `json:"user"`
	Attendance      AttendanceSummary `json:"attendance"`
	Quiz            QuizSummary       `json:"quiz"`
	AttendanceCount int               `json:"attendance_count"`
	AttendanceRate  int               `json:"attendance_rate"`
	QuizSummary     LegacyQuizSummary `json:"quiz_summary"`
}

// LegacyQuizSummary duplicates the headline quiz numbers under the shape the
// older report widgets consume.
type LegacyQuizSummary struct {
	TotalRuns    int     `json:"total_runs"`
	AverageScore float64 `json:"average_score"`
	BestScore    float64 `json:"best_score"`
	LatestScore  float64 `json:"latest_score"`
}

const dayFormat = "2006-01-02"

// AttendanceSummary reads all attendance rows for the user (ascending by
// date) and folds them into totals, streaks, and the 14-day minutes trend.
// Streaks and the trend operate purely on calendar dates.
func (a *Aggregator) AttendanceSummary(ctx context.Context, userID string) (AttendanceSummary, error) {
	rows, err := a.store.ListAttendance(ctx, userID)
	if err != nil {
		return AttendanceSummary{}, err
	}

	today := a.now()
	todayKey := today.Format(dayFormat)

	secondsByDay := make(map[string]int, len(rows))
	for _, r := range rows {
		secondsByDay[r.Date] = r.Seconds
	}

	// Trend: minutes per day for the last 14 calendar days, oldest first,
	// zero-filled.
	trend := make([]int, 0, trendDays)
	for i := trendDays - 1; i >= 0; i-- {
		d := today.AddDate(0, 0, -i).Format(dayFormat)
		trend = append(trend, int(math.Round(float64(secondsByDay[d])/60)))
	}

	out := AttendanceSummary{Daily: []DailyEntry{}, Trend: trend}
	if len(rows) == 0 {
		return out, nil
	}

	// Monday of the current week, inclusive.
	weekday := int(today.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	monday := today.AddDate(0, 0, -(weekday - 1)).Format(dayFormat)

	dates := make([]string, 0, len(rows))
	for _, r := range rows {
		out.TotalSeconds += r.Seconds
		out.Sessions += r.SessionCount
		dates = append(dates, r.Date)
		if r.Date >= monday {
			out.ThisWeekSeconds += r.Seconds
		}
		out.Daily = append(out.Daily, DailyEntry{Date: r.Date, Seconds: r.Seconds})
	}
	out.Days = len(dates)
	out.TodaySeconds = secondsByDay[todayKey]

	// Best streak: longest run of consecutive calendar dates. Rows arrive
	// date-ascending.
	best, cur := 0, 0
	var prev time.Time
	for i, ds := range dates {
		d, err := time.Parse(dayFormat, ds)
		if err != nil {
			continue
		}
		if i == 0 || d.Sub(prev) == 24*time.Hour {
			cur++
		} else {
			cur = 1
		}
		if cur > best {
			best = cur
		}
		prev = d
	}
	out.BestStreak = best

	// Current streak: consecutive days present ending today, walking back.
	cursor := today
	for {
		if _, ok := secondsByDay[cursor.Format(dayFormat)]; !ok {
			break
		}
		out.CurrentStreak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return out, nil
}

// QuizSummary aggregates per-run answer stats. Answers are keyed by run, so
// runs sharing a session do not pollute each other. Latest is the run with
// the latest start time.
func (a *Aggregator) QuizSummary(ctx context.Context, userID string) (QuizSummary, error) {
	runs, err := a.store.ListRuns(ctx, userID)
	if err != nil {
		return QuizSummary{}, err
	}
	if len(runs) == 0 {
		return QuizSummary{}, nil
	}

	var out QuizSummary
	scores := make([]float64, 0, len(runs))
	for _, r := range runs {
		answers, err := a.store.ListAnswersByRun(ctx, r.ID)
		if err != nil {
			return QuizSummary{}, err
		}
		total := len(answers)
		correct := 0
		for _, ans := range answers {
			if ans.IsCorrect {
				correct++
			}
		}
		score := 0.0
		if total > 0 {
			score = float64(correct) / float64(total) * 100
		}
		out.TotalQuestions += total
		out.TotalCorrect += correct
		out.TotalIncorrect += total - correct
		scores = append(scores, score)
	}

	sum, best := 0.0, 0.0
	for _, s := range scores {
		sum += s
		if s > best {
			best = s
		}
	}
	out.TotalRuns = len(scores)
	out.AverageScore = round2(sum / float64(len(scores)))
	out.BestScore = round2(best)
	// Runs are ordered by started_at ascending; the last one is the latest.
	out.LatestScore = round2(scores[len(scores)-1])
	if out.TotalQuestions > 0 {
		out.AccuracyOverall = round2(float64(out.TotalCorrect) / float64(out.TotalQuestions) * 100)
	}
	return out, nil
}

// Summary composes profile, attendance and quiz stats into the report body.
func (a *Aggregator) Summary(ctx context.Context, identifier string) (Summary, error) {
	userID, err := a.ResolveUserID(ctx, identifier)
	if err != nil {
		return Summary{}, err
	}

	user := UserProfile{ID: userID}
	if p, err := a.store.GetProfile(ctx, userID); err == nil {
		user.Name = p.FullName
		user.Email = p.Email
	}

	attendance, err := a.AttendanceSummary(ctx, userID)
	if err != nil {
		return Summary{}, err
	}
	quizSum, err := a.QuizSummary(ctx, userID)
	if err != nil {
		return Summary{}, err
	}

	rate := attendance.Days * 10
	if rate > 100 {
		rate = 100
	}
	return Summary{
		User:            user,
		Attendance:      attendance,
		Quiz:            quizSum,
		AttendanceCount: attendance.Days,
		AttendanceRate:  rate,
		QuizSummary: LegacyQuizSummary{
			TotalRuns:    quizSum.TotalRuns,
			AverageScore: quizSum.AverageScore,
			BestScore:    quizSum.BestScore,
			LatestScore:  quizSum.LatestScore,
		},
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
