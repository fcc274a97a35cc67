package social

import (
	"fmt"
	"time"
)

// Without history the analyzer recommends Tuesday 10:00 UTC, a common B2B
// engagement peak.
const (
	defaultBestHour    = 10
	defaultBestWeekday = time.Tuesday
)

// AnalyzeTiming buckets published posts by hour of day and weekday (UTC) and
// picks the slot with the highest average engagement score. A post's score is
// its engagement divided by impressions, or raw engagement when impressions are
// unknown. Ties go to the earlier slot.
func AnalyzeTiming(posts []Post, platform Platform) TimingReport {
	report := TimingReport{Platform: platform}

	var (
		hourScores    [24]float64
		hourCounts    [24]int
		weekdayScores [7]float64
		weekdayCounts [7]int
	)

	for _, post := range posts {
		if post.PublishedAt == nil {
			continue
		}
		at := post.PublishedAt.UTC()
		score := engagementScore(post)

		hourScores[at.Hour()] += score
		hourCounts[at.Hour()]++
		weekdayScores[at.Weekday()] += score
		weekdayCounts[at.Weekday()]++
		report.SampleSize++
	}

	if report.SampleSize == 0 {
		report.BestHour = defaultBestHour
		report.BestWeekday = defaultBestWeekday.String()
		report.Default = true
		return report
	}

	report.Hours = make([]Bucket, 0, 24)
	bestHour, bestHourScore := -1, 0.0
	for hour := 0; hour < 24; hour++ {
		if hourCounts[hour] == 0 {
			continue
		}
		avg := hourScores[hour] / float64(hourCounts[hour])
		report.Hours = append(report.Hours, Bucket{Label: hourLabel(hour), Posts: hourCounts[hour], AverageScore: avg})
		if bestHour < 0 || avg > bestHourScore {
			bestHour, bestHourScore = hour, avg
		}
	}

	report.Weekdays = make([]Bucket, 0, 7)
	bestDay, bestDayScore := -1, 0.0
	for day := 0; day < 7; day++ {
		if weekdayCounts[day] == 0 {
			continue
		}
		avg := weekdayScores[day] / float64(weekdayCounts[day])
		report.Weekdays = append(report.Weekdays, Bucket{Label: time.Weekday(day).String(), Posts: weekdayCounts[day], AverageScore: avg})
		if bestDay < 0 || avg > bestDayScore {
			bestDay, bestDayScore = day, avg
		}
	}

	report.BestHour = bestHour
	report.BestWeekday = time.Weekday(bestDay).String()
	return report
}

func engagementScore(post Post) float64 {
	engagement := float64(post.Engagement())
	if post.Impressions > 0 {
		return engagement / float64(post.Impressions)
	}
	return engagement
}

func hourLabel(hour int) string {
	return fmt.Sprintf("%02d:00", hour)
}
