package dataprocessing

import (
	"reportcards/pkg/contracts/domain"
)

// Aggregate groups clean records by student id. Groups come out in the order
// their id first appears; subjects keep input order within a group.
func Aggregate(records []domain.CleanRecord) []domain.StudentGroup {
	index := make(map[string]int)
	var groups []domain.StudentGroup

	for _, rec := range records {
		i, ok := index[rec.StudentID]
		if !ok {
			i = len(groups)
			index[rec.StudentID] = i
			groups = append(groups, domain.StudentGroup{
				StudentID: rec.StudentID,
				Name:      rec.Name,
			})
		}

		g := &groups[i]
		if !containsString(g.Names, rec.Name) {
			g.Names = append(g.Names, rec.Name)
		}
		g.Subjects = append(g.Subjects, domain.SubjectScore{Subject: rec.Subject, Score: rec.Score})
		g.Total += rec.Score
	}

	// partitions are never empty, so the division is safe
	for i := range groups {
		groups[i].Average = groups[i].Total / float64(len(groups[i].Subjects))
	}

	return groups
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
